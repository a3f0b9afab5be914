package npl

import "context"

type Repository interface {
	Create(ctx context.Context, f *Flag) error
	Save(ctx context.Context, f *Flag) error
	// GetActiveByLoan returns the uncleared flag, or gorm.ErrRecordNotFound.
	GetActiveByLoan(ctx context.Context, loanID uint64) (*Flag, error)
}
