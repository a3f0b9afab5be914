package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"loan-engine/internal/domain/audit"
	"loan-engine/internal/infrastructure/messaging"
)

// Sink is where encoded activities go; *messaging.Producer satisfies it.
type Sink interface {
	Publish(ctx context.Context, messages ...messaging.Message) error
}

// ActivityPublisher streams committed activities, keyed by loan id so one
// loan's history stays ordered on a single partition.
type ActivityPublisher struct {
	sink   Sink
	logger *slog.Logger
}

func NewActivityPublisher(sink Sink, logger *slog.Logger) *ActivityPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityPublisher{sink: sink, logger: logger}
}

func (p *ActivityPublisher) Publish(ctx context.Context, activities ...audit.Activity) error {
	msgs := make([]messaging.Message, 0, len(activities))
	for _, a := range activities {
		payload, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("marshal activity %s: %w", a.ActivityID, err)
		}
		p.logger.DebugContext(ctx, "publishing loan activity",
			"activity_id", a.ActivityID,
			"loan_id", a.LoanID,
			"action", a.Action,
		)
		msgs = append(msgs, messaging.Message{
			Key:   []byte(a.LoanID),
			Value: payload,
			Headers: map[string]string{
				"action":      string(a.Action),
				"activity_id": a.ActivityID,
			},
		})
	}
	return p.sink.Publish(ctx, msgs...)
}
