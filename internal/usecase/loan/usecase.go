package loan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"loan-engine/internal/domain/allocation"
	"loan-engine/internal/domain/audit"
	"loan-engine/internal/domain/loan"
	"loan-engine/internal/domain/repayment"
	"loan-engine/internal/domain/uow"
	"loan-engine/internal/usecase/shared"
	"loan-engine/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Usecase struct{ env shared.Env }

func NewUsecase(env shared.Env) *Usecase { return &Usecase{env: env.WithDefaults()} }

// Create opens a draft. The applicant may hold one pending loan at a time.
func (u *Usecase) Create(ctx context.Context, in CreateLoanInput) (*LoanDTO, error) {
	applicant := strings.TrimSpace(in.ApplicantID)
	if applicant == "" {
		return nil, loan.Validationf("applicant id is required")
	}
	t := loan.Type(strings.ToLower(strings.TrimSpace(in.Type)))
	if !t.Valid() {
		return nil, loan.Validationf("unknown loan type %q", in.Type)
	}
	if !in.RequestedAmount.IsPositive() {
		return nil, loan.Validationf("requested amount must be positive")
	}
	if in.TenureMonths <= 0 {
		return nil, loan.Validationf("tenure must be positive")
	}

	now := u.env.Now()
	var (
		out   *LoanDTO
		trail *audit.Trail
	)
	err := u.env.UoW.WithinTx(ctx, func(r uow.Repos) error {
		pending, err := r.Loans.GetPendingLoanByApplicantID(ctx, applicant)
		switch {
		case err == nil:
			return fmt.Errorf("%w (%s)", loan.ErrPendingLoanExists, pending.LoanID)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		l := &loan.Loan{
			LoanID:          id.NewID32(),
			ApplicantID:     applicant,
			Type:            t,
			RequestedAmount: in.RequestedAmount.Round(2),
			TenureMonths:    in.TenureMonths,
			Purpose:         strings.TrimSpace(in.Purpose),
			State:           loan.StateDraft,
			StateUpdatedAt:  now,
			CreatedAt:       now,
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			// a concurrent Create won the pending slot after our read
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w (%s)", loan.ErrPendingLoanExists, applicant)
			}
			return err
		}
		trail = audit.NewTrail(r.Activities, now)
		if err := trail.Record(ctx, audit.Activity{
			LoanID:  l.LoanID,
			Action:  audit.ActionCreated,
			ActorID: applicant,
			ToState: string(l.State),
			Amount:  decimal.NewNullDecimal(l.RequestedAmount),
		}); err != nil {
			return err
		}
		out = shared.ToLoanDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.env.Publish(ctx, trail.Activities())
	u.env.Logger.InfoContext(ctx, "loan drafted", "loan_id", out.LoanID, "applicant_id", applicant)
	return out, nil
}

func (u *Usecase) Submit(ctx context.Context, loanID, actorID string) (*LoanDTO, error) {
	return u.transition(ctx, loanID, audit.ActionSubmitted, actorID, func(_ uow.Repos, l *loan.Loan) (bool, error) {
		return true, l.Submit(u.env.Policy, u.env.Now())
	})
}

// StartReview is idempotent for a loan already under review.
func (u *Usecase) StartReview(ctx context.Context, loanID, reviewerID string) (*LoanDTO, error) {
	return u.transition(ctx, loanID, audit.ActionReviewStarted, reviewerID, func(_ uow.Repos, l *loan.Loan) (bool, error) {
		return l.StartReview(reviewerID, u.env.Now())
	})
}

// Complete closes a loan whose schedule is fully paid.
func (u *Usecase) Complete(ctx context.Context, loanID, actorID string) (*LoanDTO, error) {
	return u.transition(ctx, loanID, audit.ActionCompleted, actorID, func(r uow.Repos, l *loan.Loan) (bool, error) {
		items, err := r.Installments.ListByLoan(ctx, l.ID)
		if err != nil {
			return false, err
		}
		if err := l.Complete(repayment.AllPaid(items), u.env.Now()); err != nil {
			return false, err
		}
		return true, r.Allocations.UpdateStatusByLoan(ctx, l.ID, allocation.StatusCompleted)
	})
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	var out *LoanDTO
	err := u.env.UoW.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return shared.NotFound(err, "loan", loanID)
		}
		out = shared.ToLoanDTO(l)
		return nil
	})
	return out, err
}

// History lists the audit trail of a loan, oldest first.
func (u *Usecase) History(ctx context.Context, loanID string) ([]ActivityDTO, error) {
	var out []ActivityDTO
	err := u.env.UoW.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Loans.GetByLoanID(ctx, loanID); err != nil {
			return shared.NotFound(err, "loan", loanID)
		}
		items, err := r.Activities.ListByLoan(ctx, loanID)
		out = items
		return err
	})
	return out, err
}

// transition runs step on the locked loan, saves it and records one activity
// when step reports a change.
func (u *Usecase) transition(ctx context.Context, loanID string, action audit.Action, actorID string,
	step func(r uow.Repos, l *loan.Loan) (bool, error)) (*LoanDTO, error) {
	var (
		out   *LoanDTO
		trail *audit.Trail
	)
	err := u.env.UoW.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		from := l.State
		changed, err := step(r, l)
		if err != nil {
			return err
		}
		trail = audit.NewTrail(r.Activities, u.env.Now())
		if changed {
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
			if err := trail.Record(ctx, shared.Transition(l, from, action, actorID)); err != nil {
				return err
			}
		}
		out = shared.ToLoanDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.env.Publish(ctx, trail.Activities())
	if len(trail.Activities()) > 0 {
		u.env.Logger.InfoContext(ctx, "loan transitioned", "loan_id", loanID, "action", action, "state", out.State)
	}
	return out, nil
}
