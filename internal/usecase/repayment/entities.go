package repayment

import (
	"time"

	"github.com/shopspring/decimal"

	"loan-engine/internal/domain/repayment"
	"loan-engine/internal/usecase/shared"
)

type PaymentInput struct {
	LoanID   string
	Amount   decimal.Decimal
	Method   string
	Category string
	// PaidAt defaults to now.
	PaidAt    *time.Time
	Reference *string
	ActorID   string
}

type BalanceDTO struct {
	LoanID         string                              `json:"loan_id"`
	State          string                              `json:"state"`
	Outstanding    decimal.Decimal                     `json:"outstanding"`
	CreditBalance  decimal.Decimal                     `json:"credit_balance"`
	TotalRepayable decimal.Decimal                     `json:"total_repayable"`
	TotalPaid      decimal.Decimal                     `json:"total_paid"`
	MaxDaysPastDue int                                 `json:"max_days_past_due"`
	Counts         map[repayment.InstallmentStatus]int `json:"installments"`
	AsOf           time.Time                           `json:"as_of"`
}

type PaymentDTO struct {
	Entry   repayment.Entry `json:"entry"`
	Balance BalanceDTO      `json:"balance"`
	Loan    *shared.LoanDTO `json:"loan"`
}
