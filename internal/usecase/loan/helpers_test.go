package loan

import (
	"context"

	"loan-engine/internal/domain/repayment"
)

type emptyInstallments struct{}

func (emptyInstallments) CreateBatch(context.Context, []repayment.Installment) error { return nil }
func (emptyInstallments) ListByLoan(context.Context, uint64) ([]repayment.Installment, error) {
	return nil, nil
}
func (emptyInstallments) CountByLoan(context.Context, uint64) (int64, error)     { return 0, nil }
func (emptyInstallments) SaveAll(context.Context, []repayment.Installment) error { return nil }
