package mysql

import (
	"context"

	"loan-engine/internal/domain/npl"

	"gorm.io/gorm"
)

type FlagRepository struct{ db *gorm.DB }

func NewFlagRepository(db *gorm.DB) *FlagRepository { return &FlagRepository{db: db} }

func (r *FlagRepository) Create(ctx context.Context, f *npl.Flag) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FlagRepository) Save(ctx context.Context, f *npl.Flag) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *FlagRepository) GetActiveByLoan(ctx context.Context, loanID uint64) (*npl.Flag, error) {
	var out npl.Flag
	res := r.db.WithContext(ctx).
		Where("loan_id = ? AND cleared_at IS NULL", loanID).
		Order("id DESC").
		First(&out)
	return &out, res.Error
}
