package mysql

import (
	"context"
	"errors"
	"fmt"

	"loan-engine/internal/domain/loan"
	"loan-engine/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func bind(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Loans:        &LoanRepository{db: tx},
		Approvals:    &ApprovalRepository{db: tx},
		Installments: &InstallmentRepository{db: tx},
		Entries:      &EntryRepository{db: tx},
		Allocations:  &AllocationRepository{db: tx},
		Flags:        &FlagRepository{db: tx},
		Activities:   &ActivityRepository{db: tx},
	}
}

// Repos returns repositories on the plain connection, for reads.
func (u *GormUoW) Repos() uow.Repos { return bind(u.db) }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(bind(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := bind(tx)
		// lock the loan row up-front to prevent races
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, loanID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: loan %s", loan.ErrNotFound, loanID)
		}
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
