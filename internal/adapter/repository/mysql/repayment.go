package mysql

import (
	"context"

	"loan-engine/internal/domain/repayment"

	"gorm.io/gorm"
)

type InstallmentRepository struct{ db *gorm.DB }

func NewInstallmentRepository(db *gorm.DB) *InstallmentRepository {
	return &InstallmentRepository{db: db}
}

func (r *InstallmentRepository) CreateBatch(ctx context.Context, items []repayment.Installment) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(items, 100).Error
}

func (r *InstallmentRepository) ListByLoan(ctx context.Context, loanID uint64) ([]repayment.Installment, error) {
	var out []repayment.Installment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("due_date ASC, sequence ASC").
		Find(&out).Error
	return out, err
}

func (r *InstallmentRepository) CountByLoan(ctx context.Context, loanID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&repayment.Installment{}).
		Where("loan_id = ?", loanID).
		Count(&n).Error
	return n, err
}

// SaveAll writes back every row; callers hold the loan lock.
func (r *InstallmentRepository) SaveAll(ctx context.Context, items []repayment.Installment) error {
	db := r.db.WithContext(ctx)
	for i := range items {
		if err := db.Save(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

type EntryRepository struct{ db *gorm.DB }

func NewEntryRepository(db *gorm.DB) *EntryRepository { return &EntryRepository{db: db} }

func (r *EntryRepository) Create(ctx context.Context, e *repayment.Entry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EntryRepository) ListByLoan(ctx context.Context, loanID uint64) ([]repayment.Entry, error) {
	var out []repayment.Entry
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("recorded_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
