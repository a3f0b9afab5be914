package disbursement

import (
	"time"

	"github.com/shopspring/decimal"

	"loan-engine/internal/domain/amortization"
	"loan-engine/internal/usecase/shared"
)

type QuoteInput struct {
	Amount       decimal.Decimal
	TenureMonths int
	// Type picks the rate from the policy table when Rate is nil.
	Type string
	Rate *decimal.Decimal
}

type InstallmentDTO struct {
	Sequence int             `json:"sequence"`
	DueDate  time.Time       `json:"due_date"`
	Amount   decimal.Decimal `json:"amount"`
}

type ScheduleDTO struct {
	Principal      decimal.Decimal  `json:"principal"`
	AnnualRate     decimal.Decimal  `json:"annual_rate"`
	TenureMonths   int              `json:"tenure_months"`
	Payment        decimal.Decimal  `json:"payment"`
	Installment    decimal.Decimal  `json:"installment"`
	TotalRepayable decimal.Decimal  `json:"total_repayable"`
	TotalInterest  decimal.Decimal  `json:"total_interest"`
	Installments   []InstallmentDTO `json:"installments"`
}

type DisbursementDTO struct {
	Loan     *shared.LoanDTO `json:"loan"`
	Schedule ScheduleDTO     `json:"schedule"`
}

func toScheduleDTO(s amortization.Schedule) ScheduleDTO {
	out := ScheduleDTO{
		Principal:      s.Principal,
		AnnualRate:     s.AnnualRate,
		TenureMonths:   s.TermMonths,
		Payment:        s.Payment.Round(6),
		Installment:    s.Installment,
		TotalRepayable: s.TotalRepayable,
		TotalInterest:  s.TotalInterest,
		Installments:   make([]InstallmentDTO, 0, len(s.Entries)),
	}
	for _, e := range s.Entries {
		out.Installments = append(out.Installments, InstallmentDTO{Sequence: e.Sequence, DueDate: e.DueDate, Amount: e.Amount})
	}
	return out
}
