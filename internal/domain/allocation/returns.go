package allocation

import (
	"github.com/shopspring/decimal"

	"loan-engine/internal/domain/loan"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// ExpectedReturn is the simple-interest return on amount over the loan tenure:
// amount * rate/100 * tenure/12, rounded to cents.
func ExpectedReturn(amount, annualRatePercent decimal.Decimal, tenureMonths int) decimal.Decimal {
	return amount.
		Mul(annualRatePercent).Div(hundred).
		Mul(decimal.NewFromInt(int64(tenureMonths))).Div(twelve).
		Round(2)
}

// Funded sums the allocated amounts.
func Funded(items []Allocation) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].Amount)
	}
	return total
}

// CheckCapacity fails with ErrOverallocation when amount does not fit in the
// room left under approved.
func CheckCapacity(existing []Allocation, amount, approved decimal.Decimal) error {
	funded := Funded(existing)
	if funded.Add(amount).GreaterThan(approved) {
		return fmtOverallocation(amount, approved.Sub(funded))
	}
	return nil
}

// AttributeInterest brings each allocation's ActualReturn up to its share of
// earned, the loan's cumulative interest so far. The share is the allocation
// amount over approved, rounded to cents, so the unfunded part of a partly
// funded loan stays unattributed. When the loan is fully funded the last
// allocation absorbs the cent residue and the returns sum to earned exactly.
// It returns what each allocation gained, index-aligned with items.
func AttributeInterest(items []Allocation, earned, approved decimal.Decimal) []decimal.Decimal {
	gained := make([]decimal.Decimal, len(items))
	if len(items) == 0 || !approved.IsPositive() || earned.IsNegative() {
		return gained
	}
	full := Funded(items).Equal(approved)
	given := decimal.Zero
	for i := range items {
		target := earned.Mul(items[i].Amount).Div(approved).Round(2)
		if full && i == len(items)-1 {
			target = earned.Sub(given)
		}
		given = given.Add(target)
		gained[i] = target.Sub(items[i].ActualReturn)
		items[i].ActualReturn = target
	}
	return gained
}

// StatusFor derives the allocation status from its loan's state.
func StatusFor(s loan.State) Status {
	switch s {
	case loan.StateCompleted:
		return StatusCompleted
	case loan.StateDefaulted:
		return StatusDefaulted
	default:
		return StatusActive
	}
}
