package client

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/meterbridge/telemetry-go/pkg/contracts"
)

func TestBufferDrainPreservesInsertionOrder(t *testing.T) {
	buf := NewBuffer()
	for i := 0; i < 10; i++ {
		buf.Add(&contracts.Event{Name: fmt.Sprintf("event-%d", i)})
	}

	items := buf.Drain()
	require.Len(t, items, 10)
	for i, item := range items {
		assert.Equal(t, fmt.Sprintf("event-%d", i), item.(*contracts.Event).Name)
	}
}

func TestBufferDrainEmptyReturnsNil(t *testing.T) {
	buf := NewBuffer()
	assert.Nil(t, buf.Drain())
	assert.Zero(t, buf.Len())
}

func TestBufferDrainLeavesBufferEmpty(t *testing.T) {
	buf := NewBuffer()
	buf.Add(&contracts.Event{Name: "a"})
	buf.Add(&contracts.Event{Name: "b"})

	require.Len(t, buf.Drain(), 2)
	assert.Nil(t, buf.Drain())
}

func TestBufferAddNilPanics(t *testing.T) {
	buf := NewBuffer()
	assert.Panics(t, func() { buf.Add(nil) })
}

// Every record added concurrently with drains must land in exactly one
// drain result: no loss, no duplication.
func TestBufferDrainAtomicity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		producers := rapid.IntRange(1, 8).Draw(t, "producers")
		perProducer := rapid.IntRange(1, 50).Draw(t, "perProducer")
		drains := rapid.IntRange(1, 10).Draw(t, "drains")

		buf := NewBuffer()
		var wg sync.WaitGroup
		for p := 0; p < producers; p++ {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				for i := 0; i < perProducer; i++ {
					buf.Add(&contracts.Event{Name: fmt.Sprintf("%d/%d", p, i)})
				}
			}(p)
		}

		collected := make(chan []contracts.Telemetry, drains+1)
		var drainWg sync.WaitGroup
		drainWg.Add(1)
		go func() {
			defer drainWg.Done()
			for i := 0; i < drains; i++ {
				collected <- buf.Drain()
			}
		}()

		wg.Wait()
		drainWg.Wait()
		// Final drain picks up whatever the concurrent drains missed.
		collected <- buf.Drain()
		close(collected)

		seen := make(map[string]int)
		total := 0
		for batch := range collected {
			for _, item := range batch {
				seen[item.(*contracts.Event).Name]++
				total++
			}
		}

		if total != producers*perProducer {
			t.Fatalf("drained %d records, added %d", total, producers*perProducer)
		}
		for name, count := range seen {
			if count != 1 {
				t.Fatalf("record %s drained %d times", name, count)
			}
		}
	})
}
