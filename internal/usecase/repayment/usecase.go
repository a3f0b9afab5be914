package repayment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"loan-engine/internal/domain/allocation"
	"loan-engine/internal/domain/audit"
	"loan-engine/internal/domain/loan"
	"loan-engine/internal/domain/repayment"
	"loan-engine/internal/domain/uow"
	"loan-engine/internal/usecase/shared"
	"loan-engine/pkg/id"
)

type Usecase struct{ env shared.Env }

func NewUsecase(env shared.Env) *Usecase { return &Usecase{env: env.WithDefaults()} }

// RecordPayment applies a payment oldest installment first, parks any
// leftover in the loan's credit balance, credits investors with the interest
// share and completes the loan once the schedule is settled.
func (u *Usecase) RecordPayment(ctx context.Context, in PaymentInput) (*PaymentDTO, error) {
	if !in.Amount.IsPositive() {
		return nil, loan.Validationf("amount must be positive")
	}
	method := repayment.Method(strings.ToLower(strings.TrimSpace(in.Method)))
	if !method.Valid() {
		return nil, loan.Validationf("unknown payment method %q", in.Method)
	}
	category := repayment.CategoryInstallment
	if in.Category != "" {
		category = repayment.Category(strings.ToLower(strings.TrimSpace(in.Category)))
	}
	if !category.Valid() {
		return nil, loan.Validationf("unknown payment category %q", in.Category)
	}
	amount := in.Amount.Round(2)

	var (
		out   *PaymentDTO
		trail *audit.Trail
	)
	err := u.env.UoW.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if !l.State.InRepayment() {
			return loan.Validationf("loan in state %s does not accept payments", l.State)
		}
		now := u.env.Now()
		paidAt := now
		if in.PaidAt != nil {
			paidAt = in.PaidAt.UTC()
		}
		trail = audit.NewTrail(r.Activities, now)

		from := l.State
		started, err := l.StartRepaying(now)
		if err != nil {
			return err
		}
		if started {
			if err := trail.Record(ctx, shared.Transition(l, from, audit.ActionRepaying, in.ActorID)); err != nil {
				return err
			}
		}

		items, err := r.Installments.ListByLoan(ctx, l.ID)
		if err != nil {
			return err
		}
		dist := repayment.Apply(items, amount, paidAt, now)
		if err := r.Installments.SaveAll(ctx, items); err != nil {
			return err
		}
		l.CreditBalance = l.CreditBalance.Add(dist.Credit)

		// interest is attributed cumulatively so per-payment rounding never drifts
		paid := totalPaid(items)
		earned := interestEarned(l, items, paid)
		interest := earned.Sub(interestEarned(l, items, paid.Sub(dist.Applied)))
		if interest.IsPositive() {
			allocs, err := r.Allocations.ListByLoan(ctx, l.ID)
			if err != nil {
				return err
			}
			if len(allocs) > 0 {
				allocation.AttributeInterest(allocs, earned, l.Principal())
				if err := r.Allocations.SaveAll(ctx, allocs); err != nil {
					return err
				}
			}
		}

		entry := &repayment.Entry{
			EntryID:    id.NewUUID(),
			LoanID:     l.ID,
			Amount:     amount,
			Method:     method,
			Category:   category,
			Reference:  in.Reference,
			PaidAt:     paidAt,
			Applied:    dist.Applied,
			Credited:   dist.Credit,
			Interest:   interest,
			RecordedAt: now,
		}
		if err := r.Entries.Create(ctx, entry); err != nil {
			return err
		}
		if err := trail.Record(ctx, audit.Activity{
			LoanID:  l.LoanID,
			Action:  audit.ActionPayment,
			ActorID: in.ActorID,
			Amount:  decimal.NewNullDecimal(amount),
			Detail:  fmt.Sprintf("applied=%s credited=%s method=%s", dist.Applied.StringFixed(2), dist.Credit.StringFixed(2), method),
		}); err != nil {
			return err
		}

		if repayment.AllPaid(items) {
			from := l.State
			if err := l.Complete(true, now); err != nil {
				return err
			}
			if err := r.Allocations.UpdateStatusByLoan(ctx, l.ID, allocation.StatusCompleted); err != nil {
				return err
			}
			if err := trail.Record(ctx, shared.Transition(l, from, audit.ActionCompleted, in.ActorID)); err != nil {
				return err
			}
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		out = &PaymentDTO{Entry: *entry, Balance: balance(l, items, now), Loan: shared.ToLoanDTO(l)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.env.Publish(ctx, trail.Activities())
	u.env.Logger.InfoContext(ctx, "payment recorded",
		"loan_id", in.LoanID,
		"amount", amount.String(),
		"applied", out.Entry.Applied.String(),
		"credited", out.Entry.Credited.String(),
		"state", out.Loan.State,
	)
	return out, nil
}

// Balance reports what is still owed, with statuses derived as of now.
func (u *Usecase) Balance(ctx context.Context, loanID string) (*BalanceDTO, error) {
	var out *BalanceDTO
	err := u.read(ctx, loanID, func(l *loan.Loan, items []repayment.Installment) {
		b := balance(l, items, u.env.Now())
		out = &b
	})
	return out, err
}

// Schedule lists the installments with statuses derived as of now.
func (u *Usecase) Schedule(ctx context.Context, loanID string) ([]repayment.Installment, error) {
	var out []repayment.Installment
	err := u.read(ctx, loanID, func(_ *loan.Loan, items []repayment.Installment) { out = items })
	return out, err
}

// Entries lists the payment ledger of a loan in recording order.
func (u *Usecase) Entries(ctx context.Context, loanID string) ([]repayment.Entry, error) {
	var out []repayment.Entry
	err := u.env.UoW.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return shared.NotFound(err, "loan", loanID)
		}
		out, err = r.Entries.ListByLoan(ctx, l.ID)
		return err
	})
	return out, err
}

func (u *Usecase) read(ctx context.Context, loanID string, fn func(l *loan.Loan, items []repayment.Installment)) error {
	return u.env.UoW.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return shared.NotFound(err, "loan", loanID)
		}
		items, err := r.Installments.ListByLoan(ctx, l.ID)
		if err != nil {
			return err
		}
		repayment.Refresh(items, u.env.Now())
		fn(l, items)
		return nil
	})
}

// interestEarned is the interest part of paid under a constant ratio split:
// paid * totalInterest / totalRepayable, rounded to cents. Once paid reaches
// the total repayable it equals the schedule's interest exactly.
func interestEarned(l *loan.Loan, items []repayment.Installment, paid decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].AmountDue)
	}
	interest := total.Sub(l.Principal())
	if !total.IsPositive() || !interest.IsPositive() {
		return decimal.Zero
	}
	return paid.Mul(interest).Div(total).Round(2)
}

func totalPaid(items []repayment.Installment) decimal.Decimal {
	paid := decimal.Zero
	for i := range items {
		paid = paid.Add(items[i].AmountPaid)
	}
	return paid
}

func balance(l *loan.Loan, items []repayment.Installment, asOf time.Time) BalanceDTO {
	due, paid := decimal.Zero, decimal.Zero
	for i := range items {
		due = due.Add(items[i].AmountDue)
		paid = paid.Add(items[i].AmountPaid)
	}
	return BalanceDTO{
		LoanID:         l.LoanID,
		State:          string(l.State),
		Outstanding:    repayment.Outstanding(items),
		CreditBalance:  l.CreditBalance,
		TotalRepayable: due,
		TotalPaid:      paid,
		MaxDaysPastDue: repayment.MaxDaysPastDue(items, asOf),
		Counts:         repayment.CountByStatus(items),
		AsOf:           asOf,
	}
}
