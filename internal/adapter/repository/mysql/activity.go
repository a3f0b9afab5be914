package mysql

import (
	"context"

	"loan-engine/internal/domain/audit"

	"gorm.io/gorm"
)

type ActivityRepository struct{ db *gorm.DB }

func NewActivityRepository(db *gorm.DB) *ActivityRepository { return &ActivityRepository{db: db} }

func (r *ActivityRepository) Create(ctx context.Context, a *audit.Activity) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ActivityRepository) ListByLoan(ctx context.Context, loanID string) ([]audit.Activity, error) {
	var out []audit.Activity
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}
