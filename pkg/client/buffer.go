// Package client composes the buffer, the context propagator, and the
// configured publishers into the telemetry pipeline's public surface.
package client

import (
	"sync"

	"github.com/meterbridge/telemetry-go/pkg/contracts"
)

// Buffer is the unbounded queue of pending telemetry. It is safe for any
// number of concurrent producers interleaved with drains; each record added
// lands in exactly one drain result.
type Buffer struct {
	mu    sync.Mutex
	items []contracts.Telemetry
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Add enqueues one record. It never blocks on I/O and never fails; nil
// records are a caller bug and panic immediately rather than surfacing as a
// serialization error later.
func (b *Buffer) Add(item contracts.Telemetry) {
	if item == nil {
		panic("client: Add called with nil telemetry")
	}
	b.mu.Lock()
	b.items = append(b.items, item)
	b.mu.Unlock()
}

// Len reports the number of pending records.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Drain atomically removes and returns every pending record in insertion
// order. Records added concurrently with a drain appear in a subsequent
// drain, never the current one and never twice. An empty buffer drains to
// nil without allocating.
func (b *Buffer) Drain() []contracts.Telemetry {
	b.mu.Lock()
	items := b.items
	b.items = nil
	b.mu.Unlock()
	return items
}
