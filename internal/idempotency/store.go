package idempotency

import (
	"context"
	"time"
)

type Status string

const (
	StatusAbsent     Status = ""
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusFailed     Status = "failed"
)

// TTLs control how long each processing state survives. Processing is short
// (bridges duplicate concurrent delivery), processed is long (suppresses
// replays), failed is in between (allows retry after backoff).
type TTLs struct {
	Processing time.Duration
	Processed  time.Duration
	Failed     time.Duration
}

func DefaultTTLs() TTLs {
	return TTLs{
		Processing: 5 * time.Minute,
		Processed:  24 * time.Hour,
		Failed:     time.Hour,
	}
}

// Store tracks per-event processing state with TTLs. Claim must be atomic:
// of N concurrent claims for the same event id, exactly one succeeds unless
// the existing record is failed (failed records may be reclaimed for retry).
type Store interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID string) error
	MarkFailed(ctx context.Context, eventID string) error
	Status(ctx context.Context, eventID string) (Status, error)
}
