package loan

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type State string

const (
	StateDraft       State = "draft"
	StateSubmitted   State = "submitted"
	StateUnderReview State = "under_review"
	StateApproved    State = "approved"
	StateRejected    State = "rejected"
	StateDisbursed   State = "disbursed"
	StateRepaying    State = "repaying"
	StateCompleted   State = "completed"
	StateDefaulted   State = "defaulted"
)

// Terminal states accept no further transitions.
func (s State) Terminal() bool {
	return s == StateRejected || s == StateCompleted || s == StateDefaulted
}

// InRepayment reports whether installments are being collected. A disbursed
// loan is treated as repaying before its first payment arrives.
func (s State) InRepayment() bool { return s == StateDisbursed || s == StateRepaying }

// Pending states block the applicant from opening another loan.
func (s State) Pending() bool {
	return s == StateDraft || s == StateSubmitted || s == StateUnderReview
}

type Type string

const (
	TypePersonal  Type = "personal"
	TypeBusiness  Type = "business"
	TypeMortgage  Type = "mortgage"
	TypeAuto      Type = "auto"
	TypeEducation Type = "education"
)

func (t Type) Valid() bool {
	switch t {
	case TypePersonal, TypeBusiness, TypeMortgage, TypeAuto, TypeEducation:
		return true
	}
	return false
}

type Loan struct {
	ID          uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID      string `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	ApplicantID string `gorm:"size:32;index:idx_loans_applicant" json:"applicant_id"`
	// set only while pending; the unique index allows one pending loan per applicant
	PendingApplicantID *string             `gorm:"size:32;uniqueIndex:ux_loans_pending_applicant" json:"-"`
	Type               Type                `gorm:"column:loan_type;size:16" json:"loan_type"`
	RequestedAmount    decimal.Decimal     `gorm:"type:decimal(18,2)" json:"requested_amount"`
	ApprovedAmount     decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"approved_amount"`
	InterestRate       decimal.NullDecimal `gorm:"type:decimal(7,3)" json:"interest_rate"`
	TenureMonths       int                 `json:"tenure_months"`
	Purpose            string              `gorm:"type:text" json:"purpose"`
	State              State               `gorm:"size:16;index:idx_loans_state" json:"state"`
	RejectionReason    *string             `gorm:"type:text" json:"rejection_reason,omitempty"`
	ReviewerID         string              `gorm:"size:64" json:"reviewer_id,omitempty"`
	CreditBalance      decimal.Decimal     `gorm:"type:decimal(18,2)" json:"credit_balance"`
	StateUpdatedAt     time.Time           `json:"state_updated_at"`
	SubmittedAt        *time.Time          `json:"submitted_at,omitempty"`
	ReviewedAt         *time.Time          `json:"reviewed_at,omitempty"`
	ApprovedAt         *time.Time          `json:"approved_at,omitempty"`
	RejectedAt         *time.Time          `json:"rejected_at,omitempty"`
	DisbursedAt        *time.Time          `json:"disbursed_at,omitempty"`
	CompletedAt        *time.Time          `json:"completed_at,omitempty"`
	DefaultedAt        *time.Time          `json:"defaulted_at,omitempty"`
	CreatedAt          time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt      `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// BeforeSave keeps PendingApplicantID in step with State on every write.
func (l *Loan) BeforeSave(*gorm.DB) error {
	l.PendingApplicantID = nil
	if l.State.Pending() {
		applicant := l.ApplicantID
		l.PendingApplicantID = &applicant
	}
	return nil
}
