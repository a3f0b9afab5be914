package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	// GetByLoanIDForUpdate locks the row until the surrounding tx ends.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	GetPendingLoanByApplicantID(ctx context.Context, applicantID string) (*Loan, error)
	ListIDsByStates(ctx context.Context, states ...State) ([]string, error)
}
