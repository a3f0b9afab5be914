package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"
	HeaderActorID   = "Ax-Actor-Id"
	HeaderReplay    = "Ax-Idempotent-Replay"

	// Ax-Request-At may drift this far either side of the server clock.
	maxClockSkew = 10 * time.Minute
)

var (
	reUUID  = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)
	reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
	// opaque caller id
	reActor = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9:._-]{0,63}$`)
)

// retryRequest is what a caller sends to make a mutation safe to resend.
type retryRequest struct {
	ActorID   string
	RequestID string
	At        time.Time
}

// parseRetryHeaders reads and checks the three retry headers against now.
func parseRetryHeaders(h http.Header, now time.Time) (retryRequest, error) {
	var r retryRequest

	r.RequestID = strings.TrimSpace(h.Get(HeaderRequestID))
	switch {
	case r.RequestID == "":
		return r, errors.New("missing " + HeaderRequestID)
	case !validRequestID(r.RequestID):
		return r, errors.New("invalid " + HeaderRequestID + " format")
	}

	at, err := parseRequestAt(h.Get(HeaderRequestAt))
	if err != nil {
		return r, err
	}
	if at.Before(now.Add(-maxClockSkew)) || at.After(now.Add(maxClockSkew)) {
		return r, errors.New(HeaderRequestAt + " too skewed")
	}
	r.At = at

	r.ActorID = strings.TrimSpace(h.Get(HeaderActorID))
	switch {
	case r.ActorID == "":
		return r, errors.New("missing " + HeaderActorID)
	case !reActor.MatchString(r.ActorID):
		return r, errors.New("invalid " + HeaderActorID)
	}
	return r, nil
}

// key scopes a request id to one actor on one route.
func (r retryRequest) key(method, route string) string {
	return fmt.Sprintf("idemp:loan-engine:%s:%s:%s:%s",
		strings.ToLower(method), route, r.ActorID, r.RequestID)
}

// validRequestID accepts a UUID (v1-v5) or 32 hex characters, lowercase only.
func validRequestID(id string) bool {
	return reUUID.MatchString(id) || reHex32.MatchString(id)
}

// parseRequestAt takes epoch seconds, epoch milliseconds or RFC3339 with a
// zone. Timestamps without a zone are refused.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
}

func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
