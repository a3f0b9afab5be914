package id

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes). Used for
// public loan and allocation ids.
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// NewUUID returns a random RFC 4122 id for ledger and audit rows.
func NewUUID() string { return uuid.NewString() }
