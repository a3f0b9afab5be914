package delinquency

import (
	"context"
	"errors"
	"time"
)

// ErrSweepInProgress is returned when another sweep holds the lock.
var ErrSweepInProgress = errors.New("delinquency sweep already running")

// Locker guards the sweep across instances. release is only non-nil when ok.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

type SweepResult struct {
	Scanned int `json:"scanned"`
	Flagged int `json:"flagged"`
	// Skipped loans already carried an active flag.
	Skipped int       `json:"skipped"`
	Failed  []string  `json:"failed,omitempty"`
	RanAt   time.Time `json:"ran_at"`
}

type FlagDTO struct {
	LoanID      string     `json:"loan_id"`
	DaysOverdue int        `json:"days_overdue"`
	FlaggedAt   time.Time  `json:"flagged_at"`
	ClearedAt   *time.Time `json:"cleared_at,omitempty"`
	ClearedBy   *string    `json:"cleared_by,omitempty"`
	ClearNote   *string    `json:"clear_note,omitempty"`
}
