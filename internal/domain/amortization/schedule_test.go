package amortization

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sum(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}

func TestBuild_TwelvePercentOneYear(t *testing.T) {
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	s, err := Build(dec("100000"), dec("12"), 12, start)
	require.NoError(t, err)
	require.Len(t, s.Entries, 12)

	// closed form: 8884.878867...
	assert.True(t, s.Payment.Sub(dec("8884.878868")).Abs().LessThan(dec("0.000001")), "payment = %s", s.Payment)
	assert.True(t, s.Installment.Equal(dec("8884.88")), "installment = %s", s.Installment)

	for i, e := range s.Entries {
		assert.Equal(t, i+1, e.Sequence)
		assert.True(t, e.Amount.Sub(s.Payment).Abs().LessThanOrEqual(dec("0.01")),
			"entry %d = %s", e.Sequence, e.Amount)
	}

	assert.True(t, s.TotalRepayable.Equal(dec("106618.55")), "total = %s", s.TotalRepayable)
	assert.True(t, sum(s.Entries).Equal(s.TotalRepayable))
	assert.True(t, sum(s.Entries).Sub(dec("100000")).Equal(s.TotalInterest), "interest = %s", s.TotalInterest)
	assert.True(t, s.Entries[11].Amount.Equal(dec("8884.87")), "last = %s", s.Entries[11].Amount)
}

func TestBuild_ZeroRateIsFlat(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	s, err := Build(dec("1200"), decimal.Zero, 12, start)
	require.NoError(t, err)
	for _, e := range s.Entries {
		assert.True(t, e.Amount.Equal(dec("100")), "entry %d = %s", e.Sequence, e.Amount)
	}
	assert.True(t, sum(s.Entries).Equal(dec("1200")))
	assert.True(t, s.TotalInterest.IsZero())

	// 1000/3 does not divide evenly: the last installment picks up the cent.
	s, err = Build(dec("1000"), decimal.Zero, 3, start)
	require.NoError(t, err)
	assert.True(t, s.Entries[0].Amount.Equal(dec("333.33")))
	assert.True(t, s.Entries[2].Amount.Equal(dec("333.34")))
	assert.True(t, sum(s.Entries).Equal(dec("1000")))
}

func TestBuild_PersonalLoanTwoYears(t *testing.T) {
	s, err := Build(dec("25000"), dec("12.5"), 24, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, s.Entries, 24)
	assert.True(t, s.Installment.Equal(dec("1182.68")), "installment = %s", s.Installment)
	assert.True(t, s.TotalRepayable.Equal(dec("28384.38")), "total = %s", s.TotalRepayable)
	assert.True(t, sum(s.Entries).Equal(s.TotalRepayable))
}

func TestBuild_DueDatesMonthly(t *testing.T) {
	start := time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC)
	s, err := Build(dec("3000"), dec("9"), 3, start)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 2, 28, 9, 0, 0, 0, time.UTC), s.Entries[0].DueDate)
	assert.Equal(t, time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC), s.Entries[1].DueDate)
	assert.Equal(t, time.Date(2025, 4, 30, 9, 0, 0, 0, time.UTC), s.Entries[2].DueDate)
}

func TestBuild_LongMortgageStaysConsistent(t *testing.T) {
	s, err := Build(dec("250000"), dec("7.5"), 360, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, s.Entries, 360)
	assert.True(t, sum(s.Entries).Equal(s.TotalRepayable))
	assert.True(t, s.TotalInterest.IsPositive())
	assert.True(t, s.Entries[359].Amount.Equal(dec("1746.70")), "last = %s", s.Entries[359].Amount)
}

func TestBuild_InvalidInput(t *testing.T) {
	now := time.Now()
	_, err := Build(decimal.Zero, dec("10"), 12, now)
	assert.ErrorIs(t, err, ErrInvalidPrincipal)
	_, err = Build(dec("100"), dec("10"), 0, now)
	assert.ErrorIs(t, err, ErrInvalidTerm)
	_, err = Build(dec("100"), dec("-1"), 12, now)
	assert.ErrorIs(t, err, ErrNegativeRate)
}

func TestInterestRatio(t *testing.T) {
	s, err := Build(dec("1200"), decimal.Zero, 12, time.Now())
	require.NoError(t, err)
	assert.True(t, s.InterestRatio().IsZero())

	s, err = Build(dec("100000"), dec("12"), 12, time.Now())
	require.NoError(t, err)
	want := s.TotalInterest.Div(s.TotalRepayable)
	assert.True(t, s.InterestRatio().Equal(want))
	assert.True(t, s.InterestRatio().LessThan(dec("0.07")))
}
