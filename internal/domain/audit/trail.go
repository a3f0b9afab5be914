package audit

import (
	"context"
	"errors"
	"time"

	"loan-engine/pkg/id"
)

// Trail collects the activities written during one transaction so they can be
// published once it commits.
type Trail struct {
	repo  Repository
	now   time.Time
	items []Activity
}

func NewTrail(repo Repository, now time.Time) *Trail {
	return &Trail{repo: repo, now: now.UTC()}
}

func (t *Trail) Record(ctx context.Context, a Activity) error {
	if a.ActivityID == "" {
		a.ActivityID = id.NewUUID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = t.now
	}
	if err := t.repo.Create(ctx, &a); err != nil {
		return err
	}
	t.items = append(t.items, a)
	return nil
}

func (t *Trail) Activities() []Activity { return t.items }

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, ...Activity) error { return nil }

// NopPublisher drops everything.
func NopPublisher() Publisher { return nopPublisher{} }

type multiPublisher []Publisher

func (m multiPublisher) Publish(ctx context.Context, activities ...Activity) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, activities...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Fanout publishes to every publisher and joins their errors.
func Fanout(ps ...Publisher) Publisher { return multiPublisher(ps) }
