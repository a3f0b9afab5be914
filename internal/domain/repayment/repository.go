package repayment

import "context"

type InstallmentRepository interface {
	CreateBatch(ctx context.Context, items []Installment) error
	// ListByLoan returns installments ordered by due date, oldest first.
	ListByLoan(ctx context.Context, loanID uint64) ([]Installment, error)
	CountByLoan(ctx context.Context, loanID uint64) (int64, error)
	SaveAll(ctx context.Context, items []Installment) error
}

type EntryRepository interface {
	Create(ctx context.Context, e *Entry) error
	ListByLoan(ctx context.Context, loanID uint64) ([]Entry, error)
}
