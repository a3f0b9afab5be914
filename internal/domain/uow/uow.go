package uow

import (
	"context"

	"loan-engine/internal/domain/allocation"
	"loan-engine/internal/domain/approval"
	"loan-engine/internal/domain/audit"
	"loan-engine/internal/domain/loan"
	"loan-engine/internal/domain/npl"
	"loan-engine/internal/domain/repayment"
)

// Repos is the set of repositories bound to one transaction.
type Repos struct {
	Loans        loan.Repository
	Approvals    approval.Repository
	Installments repayment.InstallmentRepository
	Entries      repayment.EntryRepository
	Allocations  allocation.Repository
	Flags        npl.Repository
	Activities   audit.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the loan row first, then pass it in; every write to a loan's
	// aggregate goes through here
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
