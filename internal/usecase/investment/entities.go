package investment

import (
	"github.com/shopspring/decimal"

	"loan-engine/internal/domain/allocation"
)

type AllocateInput struct {
	LoanID     string
	InvestorID string
	Amount     decimal.Decimal
}

type AllocationDTO struct {
	allocation.Allocation
	LoanID string `json:"loan_id"`
}

// FundingDTO is a loan's allocation book.
type FundingDTO struct {
	LoanID      string          `json:"loan_id"`
	Approved    decimal.Decimal `json:"approved_amount"`
	Funded      decimal.Decimal `json:"funded_amount"`
	Remaining   decimal.Decimal `json:"remaining_amount"`
	Allocations []AllocationDTO `json:"allocations"`
}

func toDTOs(loanID string, items []allocation.Allocation) []AllocationDTO {
	out := make([]AllocationDTO, 0, len(items))
	for _, a := range items {
		out = append(out, AllocationDTO{Allocation: a, LoanID: loanID})
	}
	return out
}
