package mysql

import (
	"context"

	"loan-engine/internal/domain/allocation"

	"gorm.io/gorm"
)

type AllocationRepository struct{ db *gorm.DB }

func NewAllocationRepository(db *gorm.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

func (r *AllocationRepository) Create(ctx context.Context, a *allocation.Allocation) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AllocationRepository) ListByLoan(ctx context.Context, loanID uint64) ([]allocation.Allocation, error) {
	var out []allocation.Allocation
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *AllocationRepository) ListByInvestor(ctx context.Context, investorID string) ([]allocation.Allocation, error) {
	var out []allocation.Allocation
	err := r.db.WithContext(ctx).
		Where("investor_id = ?", investorID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *AllocationRepository) SaveAll(ctx context.Context, items []allocation.Allocation) error {
	db := r.db.WithContext(ctx)
	for i := range items {
		if err := db.Save(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *AllocationRepository) UpdateStatusByLoan(ctx context.Context, loanID uint64, s allocation.Status) error {
	return r.db.WithContext(ctx).
		Model(&allocation.Allocation{}).
		Where("loan_id = ?", loanID).
		Update("status", s).Error
}
