package repayment

import (
	"time"

	"github.com/shopspring/decimal"
)

type InstallmentStatus string

const (
	StatusPending InstallmentStatus = "pending"
	StatusPartial InstallmentStatus = "partial"
	StatusPaid    InstallmentStatus = "paid"
	StatusOverdue InstallmentStatus = "overdue"
)

type Method string

const (
	MethodCash        Method = "cash"
	MethodBank        Method = "bank"
	MethodMobileMoney Method = "mobile_money"
)

func (m Method) Valid() bool {
	return m == MethodCash || m == MethodBank || m == MethodMobileMoney
}

type Category string

const (
	CategoryInstallment Category = "installment"
	CategoryPenalty     Category = "penalty"
	CategoryFee         Category = "fee"
	CategoryOther       Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryInstallment, CategoryPenalty, CategoryFee, CategoryOther:
		return true
	}
	return false
}

// Installment is one schedule row. Rows are created together at disbursement
// and never deleted.
type Installment struct {
	ID         uint64            `gorm:"primaryKey;column:id" json:"-"`
	LoanID     uint64            `gorm:"column:loan_id;not null;uniqueIndex:ux_installments_loan_seq" json:"-"`
	Sequence   int               `gorm:"column:sequence;not null;uniqueIndex:ux_installments_loan_seq" json:"sequence"`
	DueDate    time.Time         `gorm:"column:due_date;not null;index" json:"due_date"`
	AmountDue  decimal.Decimal   `gorm:"column:amount_due;type:decimal(18,2);not null" json:"amount_due"`
	AmountPaid decimal.Decimal   `gorm:"column:amount_paid;type:decimal(18,2);not null" json:"amount_paid"`
	Status     InstallmentStatus `gorm:"column:status;size:16;not null" json:"status"`
	PaidAt     *time.Time        `gorm:"column:paid_at" json:"paid_at,omitempty"`
	CreatedAt  time.Time         `gorm:"autoCreateTime" json:"-"`
	UpdatedAt  time.Time         `gorm:"autoUpdateTime" json:"-"`
}

func (Installment) TableName() string { return "repayment_installments" }

// Entry is the append-only record of one received payment.
type Entry struct {
	ID        uint64          `gorm:"primaryKey;column:id" json:"-"`
	EntryID   string          `gorm:"column:entry_id;size:36;uniqueIndex:ux_entries_entry_id" json:"entry_id"`
	LoanID    uint64          `gorm:"column:loan_id;not null;index" json:"-"`
	Amount    decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Method    Method          `gorm:"column:method;size:16;not null" json:"method"`
	Category  Category        `gorm:"column:category;size:16;not null" json:"category"`
	Reference *string         `gorm:"column:reference;size:128" json:"reference,omitempty"`
	PaidAt    time.Time       `gorm:"column:paid_at;not null" json:"paid_at"`
	// Applied went to installments; Credited went to the loan's credit balance.
	Applied  decimal.Decimal `gorm:"column:applied;type:decimal(18,2);not null" json:"applied"`
	Credited decimal.Decimal `gorm:"column:credited;type:decimal(18,2);not null" json:"credited"`
	Interest decimal.Decimal `gorm:"column:interest;type:decimal(18,2);not null" json:"interest"`
	// RecordedAt is when the engine accepted the payment; PaidAt is the
	// caller-supplied payment date.
	RecordedAt time.Time `gorm:"column:recorded_at;autoCreateTime" json:"recorded_at"`
}

func (Entry) TableName() string { return "repayment_entries" }
