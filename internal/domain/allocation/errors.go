package allocation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"loan-engine/internal/domain/loan"
)

func fmtOverallocation(amount, room decimal.Decimal) error {
	if room.IsNegative() {
		room = decimal.Zero
	}
	return fmt.Errorf("%w: requested %s, remaining %s", loan.ErrOverallocation, amount.StringFixed(2), room.StringFixed(2))
}
