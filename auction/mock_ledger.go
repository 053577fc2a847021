package auction

import (
	"context"
	"sync"
)

// RecordingLedger is a Ledger double for tests. It records every settled
// batch and can be told to fail the next Settle call.
type RecordingLedger struct {
	mu      sync.Mutex
	batches [][]Entry

	// FailWith, when set, is returned by Settle without recording.
	FailWith error
}

// NewRecordingLedger creates an empty recording ledger.
func NewRecordingLedger() *RecordingLedger {
	return &RecordingLedger{}
}

// Settle records the batch, or fails with FailWith.
func (l *RecordingLedger) Settle(_ context.Context, entries []Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.FailWith != nil {
		return l.FailWith
	}
	batch := make([]Entry, len(entries))
	copy(batch, entries)
	l.batches = append(l.batches, batch)
	return nil
}

// Batches returns all recorded settlement batches in order.
func (l *RecordingLedger) Batches() [][]Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([][]Entry, len(l.batches))
	copy(out, l.batches)
	return out
}
