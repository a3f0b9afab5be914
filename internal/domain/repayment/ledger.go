package repayment

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// calendarDay truncates t to midnight of its UTC date.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DeriveStatus applies the installment status rule in order: paid, partial,
// overdue, pending. Overdue compares calendar dates, so an installment is
// never overdue on its own due day.
func DeriveStatus(amountDue, amountPaid decimal.Decimal, dueDate, asOf time.Time) InstallmentStatus {
	switch {
	case amountPaid.GreaterThanOrEqual(amountDue):
		return StatusPaid
	case amountPaid.IsPositive():
		return StatusPartial
	case calendarDay(dueDate).Before(calendarDay(asOf)):
		return StatusOverdue
	default:
		return StatusPending
	}
}

// Remaining is what is still owed on the installment, never negative.
func (i *Installment) Remaining() decimal.Decimal {
	r := i.AmountDue.Sub(i.AmountPaid)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

func (i *Installment) Settled() bool { return i.AmountPaid.GreaterThanOrEqual(i.AmountDue) }

// DaysPastDue counts calendar days an unsettled installment is behind. Settled
// or not-yet-due installments report zero.
func (i *Installment) DaysPastDue(asOf time.Time) int {
	due, today := calendarDay(i.DueDate), calendarDay(asOf)
	if i.Settled() || !due.Before(today) {
		return 0
	}
	return int(today.Sub(due) / (24 * time.Hour))
}

// SortByDue orders installments oldest due date first.
func SortByDue(items []Installment) {
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].DueDate.Equal(items[b].DueDate) {
			return items[a].Sequence < items[b].Sequence
		}
		return items[a].DueDate.Before(items[b].DueDate)
	})
}

// Distribution describes how a payment was spread.
type Distribution struct {
	Applied decimal.Decimal
	Credit  decimal.Decimal
	// Touched holds indexes (into the sorted slice) of installments that
	// received money.
	Touched []int
}

// Apply spreads amount over items oldest-due first. Each installment takes
// min(remaining payment, amount still owed); anything left once every
// installment is settled is returned as Credit. items is sorted in place and
// statuses are refreshed as of asOf.
func Apply(items []Installment, amount decimal.Decimal, paidAt, asOf time.Time) Distribution {
	SortByDue(items)
	left := amount
	var touched []int
	for idx := range items {
		if !left.IsPositive() {
			break
		}
		it := &items[idx]
		owed := it.Remaining()
		if !owed.IsPositive() {
			continue
		}
		take := decimal.Min(left, owed)
		it.AmountPaid = it.AmountPaid.Add(take)
		left = left.Sub(take)
		if it.Settled() && it.PaidAt == nil {
			at := paidAt.UTC()
			it.PaidAt = &at
		}
		touched = append(touched, idx)
	}
	Refresh(items, asOf)
	return Distribution{
		Applied: amount.Sub(left),
		Credit:  left,
		Touched: touched,
	}
}

// Refresh re-derives every status as of asOf and returns how many changed.
func Refresh(items []Installment, asOf time.Time) int {
	changed := 0
	for idx := range items {
		it := &items[idx]
		s := DeriveStatus(it.AmountDue, it.AmountPaid, it.DueDate, asOf)
		if s != it.Status {
			it.Status = s
			changed++
		}
	}
	return changed
}

// Outstanding sums what is still owed across the schedule.
func Outstanding(items []Installment) decimal.Decimal {
	total := decimal.Zero
	for idx := range items {
		total = total.Add(items[idx].Remaining())
	}
	return total
}

func AllPaid(items []Installment) bool {
	if len(items) == 0 {
		return false
	}
	for idx := range items {
		if !items[idx].Settled() {
			return false
		}
	}
	return true
}

// MaxDaysPastDue is the worst delinquency across the schedule.
func MaxDaysPastDue(items []Installment, asOf time.Time) int {
	worst := 0
	for idx := range items {
		if d := items[idx].DaysPastDue(asOf); d > worst {
			worst = d
		}
	}
	return worst
}

// CountByStatus tallies installment statuses.
func CountByStatus(items []Installment) map[InstallmentStatus]int {
	out := make(map[InstallmentStatus]int, 4)
	for idx := range items {
		out[items[idx].Status]++
	}
	return out
}
