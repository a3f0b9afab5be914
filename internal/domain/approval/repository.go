package approval

import "context"

type Repository interface {
	// Create a new decision (DB uniqueness ensures at most one per loan)
	Create(ctx context.Context, a *Approval) error

	// Get the decision by loan numeric ID
	GetByLoanID(ctx context.Context, loanID uint64) (*Approval, error)
}
