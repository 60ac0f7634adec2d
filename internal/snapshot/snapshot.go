// Package snapshot archives the raw HTML captured for a job so an analysis
// can be audited or replayed later. Implementations return a URI naming the
// stored object. Archival is best-effort: the worker logs failures and moves
// on, and a job never fails because its snapshot could not be written.
package snapshot

import (
	"context"
	"fmt"
	"time"
)

// DefaultPrefix is the object prefix used when none is configured.
const DefaultPrefix = "snapshots"

// ObjectKey builds the canonical object path for a job's page snapshot,
// partitioned by capture date so buckets stay listable.
func ObjectKey(prefix, jobID string, captured time.Time) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return fmt.Sprintf("%s/%s/%s.html", prefix, captured.UTC().Format("2006/01/02"), jobID)
}

// Nop discards snapshots. Wired when archival is not configured; the empty
// URI tells callers nothing was stored.
type Nop struct{}

// Put drops the data and reports an empty URI.
func (Nop) Put(_ context.Context, _ string, _ string, _ []byte) (string, error) {
	return "", nil
}
