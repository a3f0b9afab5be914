package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// a reservation not finished within this window is abandoned
const pendingTTL = 60 * time.Second

// storedResponse is the redis value behind an idempotency key. Pending is
// set while the first request is still running.
type storedResponse struct {
	Pending     bool      `json:"pending"`
	Status      int       `json:"status,omitempty"`
	Body        []byte    `json:"body,omitempty"`
	Digest      string    `json:"digest"`
	RequestAtMS int64     `json:"request_at_ms"`
	StoredAt    time.Time `json:"stored_at"`
}

func (s storedResponse) replayable() bool {
	return !s.Pending && s.Status != 0 && len(s.Body) > 0
}

type replayStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// reserve claims key for a new request. false means someone already holds it.
func (s replayStore) reserve(ctx context.Context, key string, pending storedResponse) (bool, error) {
	pending.Pending = true
	raw, err := json.Marshal(pending)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, raw, pendingTTL).Result()
}

func (s replayStore) lookup(ctx context.Context, key string) (storedResponse, error) {
	var out storedResponse
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}

// commit replaces the reservation with the final response for the store TTL.
func (s replayStore) commit(ctx context.Context, key string, resp storedResponse) error {
	resp.Pending = false
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, raw, s.ttl).Err()
}

func (s replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
