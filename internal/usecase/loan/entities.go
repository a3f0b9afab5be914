package loan

import (
	"github.com/shopspring/decimal"

	"loan-engine/internal/domain/audit"
	"loan-engine/internal/usecase/shared"
)

type CreateLoanInput struct {
	ApplicantID     string
	Type            string
	RequestedAmount decimal.Decimal
	TenureMonths    int
	Purpose         string
}

type LoanDTO = shared.LoanDTO

type ActivityDTO = audit.Activity
