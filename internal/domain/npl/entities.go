package npl

import "time"

// Flag marks a loan as non-performing. It is only cleared through an explicit
// recovery action; clearing keeps the row for history.
type Flag struct {
	ID          uint64     `gorm:"primaryKey;column:id" json:"-"`
	LoanID      uint64     `gorm:"column:loan_id;not null;index" json:"-"`
	DaysOverdue int        `gorm:"column:days_overdue;not null" json:"days_overdue"`
	FlaggedAt   time.Time  `gorm:"column:flagged_at;not null" json:"flagged_at"`
	ClearedAt   *time.Time `gorm:"column:cleared_at" json:"cleared_at,omitempty"`
	ClearedBy   *string    `gorm:"column:cleared_by;size:64" json:"cleared_by,omitempty"`
	ClearNote   *string    `gorm:"column:clear_note;type:text" json:"clear_note,omitempty"`
}

func (Flag) TableName() string { return "npl_flags" }

func (f *Flag) Active() bool { return f.ClearedAt == nil }

// Clear records the recovery action on the flag.
func (f *Flag) Clear(actorID, note string, now time.Time) {
	at := now.UTC()
	f.ClearedAt = &at
	f.ClearedBy = &actorID
	if note != "" {
		f.ClearNote = &note
	}
}
