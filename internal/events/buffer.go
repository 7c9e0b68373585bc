package events

import (
	"golang.org/x/sync/errgroup"
)

const defaultBatchSize = 500

// DeliverFunc attempts delivery of one batch of events, returning nil on success.
type DeliverFunc func(batch []Event) error

// Buffer accumulates pending telemetry events between flushes.
//
// The buffer itself is not synchronized; it is owned by the coordinator goroutine, which
// is the only caller of Append and Flush.
//
// There is no cap on the pending set: if delivery keeps failing, the buffer keeps the
// undelivered events and grows without bound. Callers can watch the count returned by
// Flush to detect a growing backlog.
type Buffer struct {
	pending   []Event
	batchSize int
}

// NewBuffer creates an empty Buffer that flushes in batches of batchSize events.
func NewBuffer(batchSize int) *Buffer {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Buffer{batchSize: batchSize}
}

// Append adds an event to the pending set.
func (b *Buffer) Append(e Event) {
	b.pending = append(b.pending, e)
}

// Len returns the number of pending events.
func (b *Buffer) Len() int {
	return len(b.pending)
}

// Flush partitions the pending set into batches, preserving order, and attempts delivery
// of each batch. Every batch is attempted even if an earlier one fails. Batches that fail
// delivery become the new pending set, in their original relative order, to be retried on
// the next flush. The return value is the number of events that remain unsent.
//
// Batches are delivered on separate goroutines; Flush blocks until all attempts finish.
func (b *Buffer) Flush(deliver DeliverFunc) int {
	if len(b.pending) == 0 {
		return 0
	}

	var batches [][]Event
	for start := 0; start < len(b.pending); start += b.batchSize {
		end := start + b.batchSize
		if end > len(b.pending) {
			end = len(b.pending)
		}
		batches = append(batches, b.pending[start:end])
	}

	results := make([]error, len(batches))
	var group errgroup.Group
	for i, batch := range batches {
		i, batch := i, batch
		group.Go(func() error {
			results[i] = deliver(batch)
			return nil
		})
	}
	_ = group.Wait()

	var remaining []Event
	for i, batch := range batches {
		if results[i] != nil {
			remaining = append(remaining, batch...)
		}
	}
	b.pending = remaining
	return len(remaining)
}
