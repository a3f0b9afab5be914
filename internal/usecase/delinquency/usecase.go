package delinquency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loan-engine/internal/domain/allocation"
	"loan-engine/internal/domain/audit"
	"loan-engine/internal/domain/loan"
	"loan-engine/internal/domain/npl"
	"loan-engine/internal/domain/repayment"
	"loan-engine/internal/domain/uow"
	"loan-engine/internal/usecase/shared"

	"gorm.io/gorm"
)

const (
	lockKey = "loan-engine:sweep:delinquency"
	lockTTL = 5 * time.Minute

	sweepActor = "system:sweep"
)

type Option func(*Usecase)

// WithLocker serialises sweeps across instances.
func WithLocker(l Locker) Option { return func(u *Usecase) { u.locker = l } }

// WithObserver is told the outcome of every sweep: ok, partial, busy or error.
func WithObserver(fn func(outcome string)) Option {
	return func(u *Usecase) { u.observe = fn }
}

type Usecase struct {
	env     shared.Env
	locker  Locker
	observe func(outcome string)
}

func NewUsecase(env shared.Env, opts ...Option) *Usecase {
	u := &Usecase{env: env.WithDefaults(), observe: func(string) {}}
	for _, o := range opts {
		o(u)
	}
	return u
}

// Sweep flags every loan in repayment whose worst installment is more than
// the policy threshold past due, defaulting the loan and its allocations.
// Running it twice flags nothing new.
func (u *Usecase) Sweep(ctx context.Context) (*SweepResult, error) {
	if u.locker != nil {
		release, ok, err := u.locker.TryLock(ctx, lockKey, lockTTL)
		if err != nil {
			u.observe("error")
			return nil, fmt.Errorf("acquire sweep lock: %w", err)
		}
		if !ok {
			u.observe("busy")
			return nil, ErrSweepInProgress
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				u.env.Logger.WarnContext(ctx, "release sweep lock", "error", err)
			}
		}()
	}

	res := &SweepResult{RanAt: u.env.Now()}
	var ids []string
	err := u.env.UoW.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		ids, err = r.Loans.ListIDsByStates(ctx, loan.StateDisbursed, loan.StateRepaying)
		return err
	})
	if err != nil {
		u.observe("error")
		return nil, err
	}

	for _, loanID := range ids {
		if err := ctx.Err(); err != nil {
			u.observe("error")
			return res, err
		}
		res.Scanned++
		flagged, skipped, err := u.classify(ctx, loanID)
		switch {
		case err != nil:
			res.Failed = append(res.Failed, loanID)
			u.env.Logger.ErrorContext(ctx, "sweep loan failed", "loan_id", loanID, "error", err)
		case flagged:
			res.Flagged++
		case skipped:
			res.Skipped++
		}
	}

	outcome := "ok"
	if len(res.Failed) > 0 {
		outcome = "partial"
	}
	u.observe(outcome)
	u.env.Logger.InfoContext(ctx, "delinquency sweep done",
		"scanned", res.Scanned,
		"flagged", res.Flagged,
		"skipped", res.Skipped,
		"failed", len(res.Failed),
	)
	return res, nil
}

// classify re-checks one loan under its row lock.
func (u *Usecase) classify(ctx context.Context, loanID string) (flagged, skipped bool, err error) {
	var trail *audit.Trail
	err = u.env.UoW.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if !l.State.InRepayment() {
			skipped = true
			return nil
		}
		if _, err := r.Flags.GetActiveByLoan(ctx, l.ID); err == nil {
			skipped = true
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := u.env.Now()
		items, err := r.Installments.ListByLoan(ctx, l.ID)
		if err != nil {
			return err
		}
		if repayment.Refresh(items, now) > 0 {
			if err := r.Installments.SaveAll(ctx, items); err != nil {
				return err
			}
		}
		days := repayment.MaxDaysPastDue(items, now)
		if days <= u.env.Policy.NPLThresholdDays {
			return nil
		}

		if err := r.Flags.Create(ctx, &npl.Flag{LoanID: l.ID, DaysOverdue: days, FlaggedAt: now}); err != nil {
			return err
		}
		from := l.State
		if err := l.MarkDefaulted(now); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Allocations.UpdateStatusByLoan(ctx, l.ID, allocation.StatusDefaulted); err != nil {
			return err
		}

		trail = audit.NewTrail(r.Activities, now)
		if err := trail.Record(ctx, shared.Transition(l, from, audit.ActionDefaulted, sweepActor)); err != nil {
			return err
		}
		if err := trail.Record(ctx, audit.Activity{
			LoanID:  l.LoanID,
			Action:  audit.ActionFlagged,
			ActorID: sweepActor,
			Detail:  fmt.Sprintf("days_overdue=%d", days),
		}); err != nil {
			return err
		}
		flagged = true
		return nil
	})
	if err != nil {
		return false, false, err
	}
	if trail != nil {
		u.env.Publish(ctx, trail.Activities())
	}
	return flagged, skipped, nil
}

// Recover clears the loan's active NPL flag. The loan itself stays defaulted.
func (u *Usecase) Recover(ctx context.Context, loanID, actorID, note string) (*FlagDTO, error) {
	var (
		out   *FlagDTO
		trail *audit.Trail
	)
	err := u.env.UoW.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		f, err := r.Flags.GetActiveByLoan(ctx, l.ID)
		if err != nil {
			return shared.NotFound(err, "active npl flag for loan", loanID)
		}
		now := u.env.Now()
		f.Clear(actorID, note, now)
		if err := r.Flags.Save(ctx, f); err != nil {
			return err
		}
		trail = audit.NewTrail(r.Activities, now)
		if err := trail.Record(ctx, audit.Activity{
			LoanID:  l.LoanID,
			Action:  audit.ActionRecovered,
			ActorID: actorID,
			Detail:  note,
		}); err != nil {
			return err
		}
		out = toFlagDTO(l.LoanID, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.env.Publish(ctx, trail.Activities())
	u.env.Logger.InfoContext(ctx, "npl flag cleared", "loan_id", loanID, "actor_id", actorID)
	return out, nil
}

// Flag returns the loan's active flag.
func (u *Usecase) Flag(ctx context.Context, loanID string) (*FlagDTO, error) {
	var out *FlagDTO
	err := u.env.UoW.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return shared.NotFound(err, "loan", loanID)
		}
		f, err := r.Flags.GetActiveByLoan(ctx, l.ID)
		if err != nil {
			return shared.NotFound(err, "active npl flag for loan", loanID)
		}
		out = toFlagDTO(l.LoanID, f)
		return nil
	})
	return out, err
}

func toFlagDTO(loanID string, f *npl.Flag) *FlagDTO {
	return &FlagDTO{
		LoanID:      loanID,
		DaysOverdue: f.DaysOverdue,
		FlaggedAt:   f.FlaggedAt,
		ClearedAt:   f.ClearedAt,
		ClearedBy:   f.ClearedBy,
		ClearNote:   f.ClearNote,
	}
}
