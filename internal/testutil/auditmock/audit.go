package auditmock

import (
	"context"
	"sync"

	"loan-engine/internal/domain/audit"
)

var (
	_ audit.Repository = (*Repo)(nil)
	_ audit.Publisher  = (*Publisher)(nil)
)

// Repo keeps activities in memory.
type Repo struct {
	mu    sync.Mutex
	Items []audit.Activity
	Err   error
}

func (r *Repo) Create(_ context.Context, a *audit.Activity) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Items = append(r.Items, *a)
	return nil
}

func (r *Repo) ListByLoan(_ context.Context, loanID string) ([]audit.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []audit.Activity
	for _, a := range r.Items {
		if a.LoanID == loanID {
			out = append(out, a)
		}
	}
	return out, nil
}

// Publisher records what was published.
type Publisher struct {
	mu  sync.Mutex
	got []audit.Activity
	Err error
}

func (p *Publisher) Publish(_ context.Context, activities ...audit.Activity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, activities...)
	return p.Err
}

func (p *Publisher) Published() []audit.Activity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]audit.Activity(nil), p.got...)
}

// Actions lists the published actions in order.
func (p *Publisher) Actions() []audit.Action {
	var out []audit.Action
	for _, a := range p.Published() {
		out = append(out, a.Action)
	}
	return out
}
