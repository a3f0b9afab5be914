package investment

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"loan-engine/internal/domain/allocation"
	"loan-engine/internal/domain/audit"
	"loan-engine/internal/domain/loan"
	"loan-engine/internal/domain/uow"
	"loan-engine/internal/usecase/shared"
	"loan-engine/pkg/id"
)

type Usecase struct{ env shared.Env }

func NewUsecase(env shared.Env) *Usecase { return &Usecase{env: env.WithDefaults()} }

// Allocate commits part of an approved loan to an investor. The cap check
// runs under the loan row lock so concurrent allocations cannot overfund.
func (u *Usecase) Allocate(ctx context.Context, in AllocateInput) (*AllocationDTO, error) {
	investorID := strings.TrimSpace(in.InvestorID)
	if investorID == "" {
		return nil, loan.Validationf("investor_id is required")
	}
	amount := in.Amount.Round(2)
	if amount.LessThan(u.env.Policy.MinInvestment) {
		return nil, loan.Validationf("amount %s below minimum investment %s",
			amount.StringFixed(2), u.env.Policy.MinInvestment.StringFixed(2))
	}

	var (
		out   *AllocationDTO
		trail *audit.Trail
	)
	err := u.env.UoW.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if l.State != loan.StateApproved {
			return loan.Transitionf("loan in state %s is not open for funding", l.State)
		}
		existing, err := r.Allocations.ListByLoan(ctx, l.ID)
		if err != nil {
			return err
		}
		if err := allocation.CheckCapacity(existing, amount, l.Principal()); err != nil {
			return err
		}

		a := &allocation.Allocation{
			AllocationID:   id.NewID32(),
			InvestorID:     investorID,
			LoanID:         l.ID,
			Amount:         amount,
			ExpectedReturn: allocation.ExpectedReturn(amount, l.InterestRate.Decimal, l.TenureMonths),
			ActualReturn:   decimal.Zero,
			Status:         allocation.StatusFor(l.State),
		}
		if err := r.Allocations.Create(ctx, a); err != nil {
			return err
		}

		trail = audit.NewTrail(r.Activities, u.env.Now())
		if err := trail.Record(ctx, audit.Activity{
			LoanID:  l.LoanID,
			Action:  audit.ActionAllocated,
			ActorID: investorID,
			Amount:  decimal.NewNullDecimal(amount),
			Detail:  a.AllocationID,
		}); err != nil {
			return err
		}
		out = &AllocationDTO{Allocation: *a, LoanID: l.LoanID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.env.Publish(ctx, trail.Activities())
	u.env.Logger.InfoContext(ctx, "allocation created",
		"loan_id", in.LoanID,
		"investor_id", investorID,
		"amount", amount.String(),
	)
	return out, nil
}

// ListByLoan returns the loan's allocations with its funding totals.
func (u *Usecase) ListByLoan(ctx context.Context, loanID string) (*FundingDTO, error) {
	var out *FundingDTO
	err := u.env.UoW.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByLoanID(ctx, loanID)
		if err != nil {
			return shared.NotFound(err, "loan", loanID)
		}
		items, err := r.Allocations.ListByLoan(ctx, l.ID)
		if err != nil {
			return err
		}
		funded := allocation.Funded(items)
		approved := decimal.Zero
		if l.ApprovedAmount.Valid {
			approved = l.ApprovedAmount.Decimal
		}
		out = &FundingDTO{
			LoanID:      l.LoanID,
			Approved:    approved,
			Funded:      funded,
			Remaining:   decimal.Max(approved.Sub(funded), decimal.Zero),
			Allocations: toDTOs(l.LoanID, items),
		}
		return nil
	})
	return out, err
}

// ByInvestor lists every allocation an investor holds, oldest first.
func (u *Usecase) ByInvestor(ctx context.Context, investorID string) ([]AllocationDTO, error) {
	var out []AllocationDTO
	err := u.env.UoW.WithinTx(ctx, func(r uow.Repos) error {
		items, err := r.Allocations.ListByInvestor(ctx, investorID)
		if err != nil {
			return err
		}
		// public loan ids, looked up once per loan
		ids := make(map[uint64]string)
		out = make([]AllocationDTO, 0, len(items))
		for _, a := range items {
			loanID, ok := ids[a.LoanID]
			if !ok {
				l, err := r.Loans.GetByID(ctx, a.LoanID)
				if err != nil {
					return err
				}
				loanID = l.LoanID
				ids[a.LoanID] = loanID
			}
			out = append(out, AllocationDTO{Allocation: a, LoanID: loanID})
		}
		return nil
	})
	return out, err
}
