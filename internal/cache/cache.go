// Package cache defines the key-value cache contract and deterministic key
// derivation used for job state, step payloads, and aggregate results.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// keyHashLen is the number of hex characters of the digest appended to a
// key prefix. Existing cached entries depend on this value.
const keyHashLen = 16

// Store is a TTL'd key-value store. Implementations must degrade
// gracefully: when the backing store is unreachable every read is a miss
// and every write a no-op, so callers never see an error from these
// methods. Orchestration correctness must not depend on cache availability.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool
	Delete(ctx context.Context, key string) bool
	Exists(ctx context.Context, key string) bool
	Ping(ctx context.Context) error
	Close() error
}

// Key derives a deterministic cache key: the prefix plus a short SHA-256
// digest of the colon-joined parts. Identical inputs always yield the
// identical key.
func Key(prefix string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, ":")))
	return prefix + ":" + hex.EncodeToString(sum[:])[:keyHashLen]
}
