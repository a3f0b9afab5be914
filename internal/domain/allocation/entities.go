package allocation

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusDefaulted Status = "defaulted"
)

// Allocation is an investor's committed share of one loan.
type Allocation struct {
	ID             uint64          `gorm:"primaryKey;column:id" json:"-"`
	AllocationID   string          `gorm:"column:allocation_id;size:32;uniqueIndex:ux_allocations_allocation_id" json:"allocation_id"`
	InvestorID     string          `gorm:"column:investor_id;size:32;not null;index" json:"investor_id"`
	LoanID         uint64          `gorm:"column:loan_id;not null;index" json:"-"`
	Amount         decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	ExpectedReturn decimal.Decimal `gorm:"column:expected_return;type:decimal(18,2);not null" json:"expected_return"`
	ActualReturn   decimal.Decimal `gorm:"column:actual_return;type:decimal(18,2);not null" json:"actual_return"`
	Status         Status          `gorm:"column:status;size:16;not null" json:"status"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Allocation) TableName() string { return "investor_allocations" }
