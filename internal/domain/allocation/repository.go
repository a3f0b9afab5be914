package allocation

import "context"

type Repository interface {
	Create(ctx context.Context, a *Allocation) error
	ListByLoan(ctx context.Context, loanID uint64) ([]Allocation, error)
	ListByInvestor(ctx context.Context, investorID string) ([]Allocation, error)
	SaveAll(ctx context.Context, items []Allocation) error
	UpdateStatusByLoan(ctx context.Context, loanID uint64, s Status) error
}
