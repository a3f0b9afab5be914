package audit

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Action string

const (
	ActionCreated       Action = "created"
	ActionSubmitted     Action = "submitted"
	ActionReviewStarted Action = "review_started"
	ActionApproved      Action = "approved"
	ActionRejected      Action = "rejected"
	ActionDisbursed     Action = "disbursed"
	ActionRepaying      Action = "repaying"
	ActionPayment       Action = "payment_recorded"
	ActionCompleted     Action = "completed"
	ActionDefaulted     Action = "defaulted"
	ActionFlagged       Action = "npl_flagged"
	ActionRecovered     Action = "npl_cleared"
	ActionAllocated     Action = "allocated"
)

// Activity is one audit record. It is written in the same transaction as the
// change it describes.
type Activity struct {
	ID         uint64              `gorm:"primaryKey;column:id" json:"-"`
	ActivityID string              `gorm:"column:activity_id;size:36;uniqueIndex:ux_activities_activity_id" json:"activity_id"`
	LoanID     string              `gorm:"column:loan_id;size:32;not null;index" json:"loan_id"`
	Action     Action              `gorm:"column:action;size:32;not null" json:"action"`
	ActorID    string              `gorm:"column:actor_id;size:64" json:"actor_id,omitempty"`
	FromState  string              `gorm:"column:from_state;size:16" json:"from_state,omitempty"`
	ToState    string              `gorm:"column:to_state;size:16" json:"to_state,omitempty"`
	Amount     decimal.NullDecimal `gorm:"column:amount;type:decimal(18,2)" json:"amount,omitempty"`
	Detail     string              `gorm:"column:detail;type:text" json:"detail,omitempty"`
	CreatedAt  time.Time           `gorm:"column:created_at" json:"created_at"`
}

func (Activity) TableName() string { return "loan_activities" }

type Repository interface {
	Create(ctx context.Context, a *Activity) error
	ListByLoan(ctx context.Context, loanID string) ([]Activity, error)
}

// Publisher receives activities after their transaction committed. Delivery
// is best effort; the table stays the source of truth.
type Publisher interface {
	Publish(ctx context.Context, activities ...Activity) error
}
