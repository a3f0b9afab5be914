// Package shared holds what every use case is built from.
package shared

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-engine/internal/domain/audit"
	"loan-engine/internal/domain/loan"
	"loan-engine/internal/domain/uow"

	"gorm.io/gorm"
)

type Env struct {
	UoW       uow.UnitOfWork
	Policy    loan.Policy
	Logger    *slog.Logger
	Publisher audit.Publisher
	Now       func() time.Time
}

// WithDefaults fills anything left zero.
func (e Env) WithDefaults() Env {
	if e.Policy.Rates == nil {
		e.Policy = loan.DefaultPolicy()
	}
	if e.Logger == nil {
		e.Logger = slog.Default()
	}
	if e.Publisher == nil {
		e.Publisher = audit.NopPublisher()
	}
	if e.Now == nil {
		e.Now = func() time.Time { return time.Now().UTC() }
	}
	return e
}

// Publish hands committed activities to the publisher. A failure is logged
// and swallowed: the activity table already holds the record.
func (e Env) Publish(ctx context.Context, acts []audit.Activity) {
	if len(acts) == 0 {
		return
	}
	if err := e.Publisher.Publish(ctx, acts...); err != nil {
		e.Logger.WarnContext(ctx, "publish activities failed", "count", len(acts), "error", err)
	}
}

// NotFound turns gorm's record-not-found into loan.ErrNotFound.
func NotFound(err error, what, key string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %s", loan.ErrNotFound, what, key)
	}
	return err
}

// Transition builds the audit row for a state change.
func Transition(l *loan.Loan, from loan.State, action audit.Action, actorID string) audit.Activity {
	return audit.Activity{
		LoanID:    l.LoanID,
		Action:    action,
		ActorID:   actorID,
		FromState: string(from),
		ToState:   string(l.State),
	}
}
