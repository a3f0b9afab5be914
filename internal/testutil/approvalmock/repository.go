package approvalmock

import (
	"context"

	domain "loan-engine/internal/domain/approval"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn      func(ctx context.Context, a *domain.Approval) error
	GetByLoanIDFn func(ctx context.Context, loanNumericID uint64) (*domain.Approval, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.Approval) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanNumericID uint64) (*domain.Approval, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanNumericID)
	}
	return nil, context.Canceled
}
