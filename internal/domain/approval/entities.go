package approval

import (
	"time"

	"github.com/shopspring/decimal"
)

type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// Approval is the review decision taken on a loan. The unique index on
// loan_id keeps at most one decision per loan.
type Approval struct {
	// Internal numeric PK
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Public identifier (32-char lowercase hex)
	ApprovalID     string              `gorm:"column:approval_id;type:char(32);not null;uniqueIndex:ux_approvals_approval_id"`
	LoanID         uint64              `gorm:"column:loan_id;not null;uniqueIndex:ux_approvals_loan"`
	ReviewerID     string              `gorm:"column:reviewer_id;size:64;not null"`
	Decision       Decision            `gorm:"column:decision;size:16;not null"`
	ApprovedAmount decimal.NullDecimal `gorm:"column:approved_amount;type:decimal(18,2)"`
	InterestRate   decimal.NullDecimal `gorm:"column:interest_rate;type:decimal(7,3)"`
	Reason         *string             `gorm:"column:reason;type:text"`
	DecidedAt      time.Time           `gorm:"column:decided_at;not null"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (Approval) TableName() string { return "approvals" }
