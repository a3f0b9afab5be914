package shared

import (
	"time"

	"github.com/shopspring/decimal"

	"loan-engine/internal/domain/loan"
)

type LoanDTO struct {
	LoanID          string           `json:"loan_id"`
	ApplicantID     string           `json:"applicant_id"`
	Type            string           `json:"loan_type"`
	RequestedAmount decimal.Decimal  `json:"requested_amount"`
	ApprovedAmount  *decimal.Decimal `json:"approved_amount,omitempty"`
	InterestRate    *decimal.Decimal `json:"interest_rate,omitempty"`
	TenureMonths    int              `json:"tenure_months"`
	Purpose         string           `json:"purpose"`
	State           string           `json:"state"`
	RejectionReason *string          `json:"rejection_reason,omitempty"`
	ReviewerID      string           `json:"reviewer_id,omitempty"`
	CreditBalance   decimal.Decimal  `json:"credit_balance"`
	CreatedAt       time.Time        `json:"created_at"`
	SubmittedAt     *time.Time       `json:"submitted_at,omitempty"`
	ReviewedAt      *time.Time       `json:"reviewed_at,omitempty"`
	ApprovedAt      *time.Time       `json:"approved_at,omitempty"`
	RejectedAt      *time.Time       `json:"rejected_at,omitempty"`
	DisbursedAt     *time.Time       `json:"disbursed_at,omitempty"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	DefaultedAt     *time.Time       `json:"defaulted_at,omitempty"`
}

func ToLoanDTO(l *loan.Loan) *LoanDTO {
	dto := &LoanDTO{
		LoanID:          l.LoanID,
		ApplicantID:     l.ApplicantID,
		Type:            string(l.Type),
		RequestedAmount: l.RequestedAmount,
		TenureMonths:    l.TenureMonths,
		Purpose:         l.Purpose,
		State:           string(l.State),
		RejectionReason: l.RejectionReason,
		ReviewerID:      l.ReviewerID,
		CreditBalance:   l.CreditBalance,
		CreatedAt:       l.CreatedAt,
		SubmittedAt:     l.SubmittedAt,
		ReviewedAt:      l.ReviewedAt,
		ApprovedAt:      l.ApprovedAt,
		RejectedAt:      l.RejectedAt,
		DisbursedAt:     l.DisbursedAt,
		CompletedAt:     l.CompletedAt,
		DefaultedAt:     l.DefaultedAt,
	}
	if l.ApprovedAmount.Valid {
		v := l.ApprovedAmount.Decimal
		dto.ApprovedAmount = &v
	}
	if l.InterestRate.Valid {
		v := l.InterestRate.Decimal
		dto.InterestRate = &v
	}
	return dto
}
