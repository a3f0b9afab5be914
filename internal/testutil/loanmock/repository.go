package loanmock

import (
	"context"

	domain "loan-engine/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return context.Canceled so a forgotten stub fails loudly.
type Repo struct {
	CreateFn                      func(ctx context.Context, l *domain.Loan) error
	SaveFn                        func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn                 func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByIDFn                     func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetByLoanIDForUpdateFn        func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetPendingLoanByApplicantIDFn func(ctx context.Context, applicantID string) (*domain.Loan, error)
	ListIDsByStatesFn             func(ctx context.Context, states ...domain.State) ([]string, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetPendingLoanByApplicantID(ctx context.Context, applicantID string) (*domain.Loan, error) {
	if m.GetPendingLoanByApplicantIDFn != nil {
		return m.GetPendingLoanByApplicantIDFn(ctx, applicantID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListIDsByStates(ctx context.Context, states ...domain.State) ([]string, error) {
	if m.ListIDsByStatesFn != nil {
		return m.ListIDsByStatesFn(ctx, states...)
	}
	return nil, nil
}
