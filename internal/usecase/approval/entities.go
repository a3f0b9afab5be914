package approval

import (
	"time"

	"github.com/shopspring/decimal"

	"loan-engine/internal/usecase/shared"
)

type ApproveInput struct {
	LoanID     string
	ReviewerID string
	// Amount defaults to the requested amount when nil.
	Amount        *decimal.Decimal
	AllowOverride bool
}

type RejectInput struct {
	LoanID     string
	ReviewerID string
	Reason     string
}

type DecisionDTO struct {
	ApprovalID     string           `json:"approval_id"`
	LoanID         string           `json:"loan_id"`
	Decision       string           `json:"decision"`
	ReviewerID     string           `json:"reviewer_id"`
	ApprovedAmount *decimal.Decimal `json:"approved_amount,omitempty"`
	InterestRate   *decimal.Decimal `json:"interest_rate,omitempty"`
	Reason         *string          `json:"reason,omitempty"`
	DecidedAt      time.Time        `json:"decided_at"`
	Loan           *shared.LoanDTO  `json:"loan"`
}
