package db

import (
	"loan-engine/internal/domain/allocation"
	"loan-engine/internal/domain/approval"
	"loan-engine/internal/domain/audit"
	"loan-engine/internal/domain/loan"
	"loan-engine/internal/domain/npl"
	"loan-engine/internal/domain/repayment"

	"gorm.io/gorm"
)

// Models lists every persisted entity in dependency order.
func Models() []any {
	return []any{
		&loan.Loan{},
		&approval.Approval{},
		&repayment.Installment{},
		&repayment.Entry{},
		&allocation.Allocation{},
		&npl.Flag{},
		&audit.Activity{},
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
