// Package amortization turns (principal, annual rate, term) into an equal
// installment schedule. It is the single source of installment math for the
// engine: persisted schedules and displayed quotes both come from Build.
package amortization

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPrincipal = errors.New("principal must be positive")
	ErrInvalidTerm      = errors.New("term must be at least one month")
	ErrNegativeRate     = errors.New("annual rate must not be negative")
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
	one     = decimal.NewFromInt(1)
)

// Entry is one scheduled obligation.
type Entry struct {
	Sequence int
	DueDate  time.Time
	Amount   decimal.Decimal
}

type Schedule struct {
	Principal decimal.Decimal
	// AnnualRate is in percent, e.g. 12.5.
	AnnualRate decimal.Decimal
	TermMonths int
	// Payment is the unrounded periodic installment.
	Payment decimal.Decimal
	// Installment is Payment rounded half-up to cents.
	Installment    decimal.Decimal
	TotalRepayable decimal.Decimal
	TotalInterest  decimal.Decimal
	Entries        []Entry
}

// MonthlyRate converts an annual percentage into a per-month fraction.
func MonthlyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.Div(hundred).Div(twelve)
}

// Payment returns the exact annuity installment:
//
//	P * r * (1+r)^n / ((1+r)^n - 1)
//
// or P/n when r is zero.
func Payment(principal, annualRatePercent decimal.Decimal, termMonths int) decimal.Decimal {
	n := decimal.NewFromInt(int64(termMonths))
	r := MonthlyRate(annualRatePercent)
	if r.IsZero() {
		return principal.Div(n)
	}
	factor := r.Add(one).Pow(n)
	return principal.Mul(r).Mul(factor).Div(factor.Sub(one))
}

// Build produces termMonths installments due one month apart, starting one
// month after disbursedAt. Every installment but the last is Installment; the
// last absorbs the rounding residue so the schedule sums to TotalRepayable,
// which is Payment*term rounded to the cent.
func Build(principal, annualRatePercent decimal.Decimal, termMonths int, disbursedAt time.Time) (Schedule, error) {
	if !principal.IsPositive() {
		return Schedule{}, ErrInvalidPrincipal
	}
	if termMonths < 1 {
		return Schedule{}, ErrInvalidTerm
	}
	if annualRatePercent.IsNegative() {
		return Schedule{}, ErrNegativeRate
	}

	payment := Payment(principal, annualRatePercent, termMonths)
	installment := roundHalfUp(payment)
	n := decimal.NewFromInt(int64(termMonths))
	total := roundHalfUp(payment.Mul(n))
	last := total.Sub(installment.Mul(decimal.NewFromInt(int64(termMonths - 1))))

	entries := make([]Entry, 0, termMonths)
	for i := 1; i <= termMonths; i++ {
		amount := installment
		if i == termMonths {
			amount = last
		}
		entries = append(entries, Entry{
			Sequence: i,
			DueDate:  AddMonths(disbursedAt, i),
			Amount:   amount,
		})
	}

	return Schedule{
		Principal:      principal,
		AnnualRate:     annualRatePercent,
		TermMonths:     termMonths,
		Payment:        payment,
		Installment:    installment,
		TotalRepayable: total,
		TotalInterest:  total.Sub(principal),
		Entries:        entries,
	}, nil
}

// InterestRatio is the share of every collected unit that counts as interest
// under a constant-ratio split.
func (s Schedule) InterestRatio() decimal.Decimal {
	if !s.TotalRepayable.IsPositive() {
		return decimal.Zero
	}
	return s.TotalInterest.Div(s.TotalRepayable)
}

// AddMonths moves t forward by n calendar months, clamping to the last day of
// the target month (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// roundHalfUp rounds to cents; decimal.Round is half away from zero, which is
// half-up for the positive amounts used here.
func roundHalfUp(d decimal.Decimal) decimal.Decimal { return d.Round(2) }
