package loan

import "github.com/shopspring/decimal"

// RateTable maps a loan type to its annual interest rate in percent.
type RateTable map[Type]decimal.Decimal

// Policy carries the configurable limits the engine enforces. It is built by
// the config layer and injected into the use cases.
type Policy struct {
	Rates            RateTable
	DefaultRate      decimal.Decimal
	MinAmount        decimal.Decimal
	MaxAmount        decimal.Decimal
	MinTenureMonths  int
	MaxTenureMonths  int
	MinInvestment    decimal.Decimal
	NPLThresholdDays int
}

func DefaultRates() RateTable {
	return RateTable{
		TypePersonal:  decimal.RequireFromString("12.5"),
		TypeBusiness:  decimal.RequireFromString("15.0"),
		TypeMortgage:  decimal.RequireFromString("7.5"),
		TypeAuto:      decimal.RequireFromString("9.0"),
		TypeEducation: decimal.RequireFromString("6.5"),
	}
}

func DefaultPolicy() Policy {
	return Policy{
		Rates:            DefaultRates(),
		DefaultRate:      decimal.NewFromInt(10),
		MinAmount:        decimal.NewFromInt(500),
		MaxAmount:        decimal.NewFromInt(10_000_000),
		MinTenureMonths:  1,
		MaxTenureMonths:  360,
		MinInvestment:    decimal.NewFromInt(100),
		NPLThresholdDays: 90,
	}
}

// RateFor returns the annual rate for t, falling back to DefaultRate.
func (p Policy) RateFor(t Type) decimal.Decimal {
	if r, ok := p.Rates[t]; ok {
		return r
	}
	return p.DefaultRate
}

// CheckTerms validates the amount and tenure against the policy bounds.
func (p Policy) CheckTerms(amount decimal.Decimal, tenureMonths int) error {
	if !amount.IsPositive() {
		return Validationf("amount must be positive")
	}
	if amount.LessThan(p.MinAmount) {
		return Validationf("amount %s below minimum %s", amount, p.MinAmount)
	}
	if p.MaxAmount.IsPositive() && amount.GreaterThan(p.MaxAmount) {
		return Validationf("amount %s above maximum %s", amount, p.MaxAmount)
	}
	if tenureMonths <= 0 {
		return Validationf("tenure must be positive")
	}
	if tenureMonths < p.MinTenureMonths || (p.MaxTenureMonths > 0 && tenureMonths > p.MaxTenureMonths) {
		return Validationf("tenure %d outside %d..%d months", tenureMonths, p.MinTenureMonths, p.MaxTenureMonths)
	}
	return nil
}
