package snapshot

import (
	"context"
	"testing"
	"time"
)

func TestObjectKeyPartitionsByDate(t *testing.T) {
	t.Parallel()

	captured := time.Date(2024, 1, 2, 23, 59, 0, 0, time.UTC)
	key := ObjectKey("", "job-1", captured)
	if key != "snapshots/2024/01/02/job-1.html" {
		t.Fatalf("unexpected key %s", key)
	}
	key = ObjectKey("archive", "job-1", captured)
	if key != "archive/2024/01/02/job-1.html" {
		t.Fatalf("unexpected key %s", key)
	}
}

func TestNopReportsEmptyURI(t *testing.T) {
	t.Parallel()

	uri, err := Nop{}.Put(context.Background(), "k", "text/html", []byte("x"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if uri != "" {
		t.Fatalf("expected empty uri, got %s", uri)
	}
}
