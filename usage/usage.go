// Package usage records per-call token consumption and estimated cost.
// Records are append-only: the resilience wrapper writes one after every
// successful generation, and nothing ever updates or deletes them.
package usage

import (
	"context"
	"time"
)

// Record is a single usage event.
type Record struct {
	Provider         string
	Model            string
	Operation        string
	TotalTokens      int64
	PromptTokens     int64
	CompletionTokens int64
	// Cost is an estimate in USD; zero when no pricing is known.
	Cost      float64
	CreatedAt time.Time
}

// Recorder appends usage records. Implementations must tolerate being called
// once per successful generation; a Recorder failure is a best-effort side
// channel and callers log and drop it rather than failing the generation.
type Recorder interface {
	Record(ctx context.Context, rec *Record) error
}

// NopRecorder discards every record.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(context.Context, *Record) error { return nil }

var _ Recorder = NopRecorder{}
