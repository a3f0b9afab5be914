package disbursement

import (
	"context"
	"strings"

	"loan-engine/internal/domain/amortization"
	"loan-engine/internal/domain/audit"
	"loan-engine/internal/domain/loan"
	"loan-engine/internal/domain/repayment"
	"loan-engine/internal/domain/uow"
	"loan-engine/internal/usecase/shared"
)

type Usecase struct{ env shared.Env }

func NewUsecase(env shared.Env) *Usecase { return &Usecase{env: env.WithDefaults()} }

// Disburse moves an approved loan to disbursed and writes its whole
// installment schedule in the same transaction.
func (u *Usecase) Disburse(ctx context.Context, loanID, actorID string) (*DisbursementDTO, error) {
	var (
		out   *DisbursementDTO
		trail *audit.Trail
	)
	err := u.env.UoW.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		from := l.State
		n, err := r.Installments.CountByLoan(ctx, l.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return loan.Transitionf("loan %s already has a schedule", l.LoanID)
		}
		if err := l.Disburse(u.env.Now()); err != nil {
			return err
		}

		s, err := amortization.Build(l.Principal(), l.InterestRate.Decimal, l.TenureMonths, *l.DisbursedAt)
		if err != nil {
			return loan.Validationf("%v", err)
		}
		if err := r.Installments.CreateBatch(ctx, repayment.FromSchedule(l.ID, s)); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		trail = audit.NewTrail(r.Activities, u.env.Now())
		act := shared.Transition(l, from, audit.ActionDisbursed, actorID)
		act.Amount = l.ApprovedAmount
		if err := trail.Record(ctx, act); err != nil {
			return err
		}
		out = &DisbursementDTO{Loan: shared.ToLoanDTO(l), Schedule: toScheduleDTO(s)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.env.Publish(ctx, trail.Activities())
	u.env.Logger.InfoContext(ctx, "loan disbursed",
		"loan_id", loanID,
		"principal", out.Schedule.Principal.String(),
		"installment", out.Schedule.Installment.String(),
		"tenure_months", out.Schedule.TenureMonths,
	)
	return out, nil
}

// Quote shows the schedule a loan would get if disbursed now. It goes through
// the same Build as Disburse.
func (u *Usecase) Quote(_ context.Context, in QuoteInput) (*ScheduleDTO, error) {
	if err := u.env.Policy.CheckTerms(in.Amount, in.TenureMonths); err != nil {
		return nil, err
	}
	rate := u.env.Policy.DefaultRate
	switch {
	case in.Rate != nil:
		if in.Rate.IsNegative() {
			return nil, loan.Validationf("rate must not be negative")
		}
		rate = *in.Rate
	case in.Type != "":
		t := loan.Type(strings.ToLower(in.Type))
		if !t.Valid() {
			return nil, loan.Validationf("unknown loan type %q", in.Type)
		}
		rate = u.env.Policy.RateFor(t)
	}
	s, err := amortization.Build(in.Amount, rate, in.TenureMonths, u.env.Now())
	if err != nil {
		return nil, loan.Validationf("%v", err)
	}
	dto := toScheduleDTO(s)
	return &dto, nil
}
