package repayment

import (
	"github.com/shopspring/decimal"

	"loan-engine/internal/domain/amortization"
)

// FromSchedule materializes the amortization entries as pending installments
// owned by loanID.
func FromSchedule(loanID uint64, s amortization.Schedule) []Installment {
	items := make([]Installment, 0, len(s.Entries))
	for _, e := range s.Entries {
		items = append(items, Installment{
			LoanID:     loanID,
			Sequence:   e.Sequence,
			DueDate:    e.DueDate.UTC(),
			AmountDue:  e.Amount,
			AmountPaid: decimal.Zero,
			Status:     StatusPending,
		})
	}
	return items
}
