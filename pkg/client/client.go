package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/meterbridge/telemetry-go/pkg/contracts"
	"github.com/meterbridge/telemetry-go/pkg/metrics"
	"github.com/meterbridge/telemetry-go/pkg/transport"
)

// ErrNoPublishers is returned at construction when the publisher list is
// empty; a client that can never deliver is a configuration bug.
var ErrNoPublishers = errors.New("client: no publishers configured")

// Client is the pipeline facade: Add buffers records, PublishAsync drains
// the buffer once and fans the batch out to every configured publisher
// concurrently.
type Client struct {
	buffer     *Buffer
	commonTags map[string]string
	logger     *slog.Logger
	pipeline   *metrics.Pipeline

	mu         sync.RWMutex
	publishers []transport.Publisher
}

// Option customizes a Client.
type Option func(*Client)

// WithCommonTags attaches tags to every envelope the client publishes.
func WithCommonTags(tags map[string]string) Option {
	return func(c *Client) { c.commonTags = tags }
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics records pipeline metrics into the given collector.
func WithMetrics(p *metrics.Pipeline) Option {
	return func(c *Client) { c.pipeline = p }
}

// New builds a client over the given publishers. At least one publisher is
// required.
func New(publishers []transport.Publisher, opts ...Option) (*Client, error) {
	if len(publishers) == 0 {
		return nil, ErrNoPublishers
	}
	c := &Client{
		buffer:     NewBuffer(),
		publishers: publishers,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SwapPublishers atomically replaces the publisher set, e.g. after a
// configuration reload. In-flight publishes keep the set they started with;
// an empty set is rejected for the same reason New rejects it.
func (c *Client) SwapPublishers(publishers []transport.Publisher) error {
	if len(publishers) == 0 {
		return ErrNoPublishers
	}
	c.mu.Lock()
	c.publishers = publishers
	c.mu.Unlock()
	return nil
}

// Add buffers one record for the next publish. Never blocks, never fails.
func (c *Client) Add(item contracts.Telemetry) {
	c.buffer.Add(item)
	if c.pipeline != nil {
		c.pipeline.ItemBuffered()
	}
}

// PublishAsync drains the buffer once and publishes the batch to every
// configured publisher concurrently. Results come back in configured
// publisher order regardless of individual success or completion order; no
// result is dropped because another publisher failed. An empty buffer is a
// no-op: no publisher is called and the result set is empty.
func (c *Client) PublishAsync(ctx context.Context) []transport.Result {
	batch := c.buffer.Drain()
	if len(batch) == 0 {
		return nil
	}
	if c.pipeline != nil {
		c.pipeline.ItemsDrained(len(batch))
	}

	c.mu.RLock()
	publishers := c.publishers
	c.mu.RUnlock()

	results := make([]transport.Result, len(publishers))
	var wg sync.WaitGroup
	for i, pub := range publishers {
		wg.Add(1)
		go func(i int, pub transport.Publisher) {
			defer wg.Done()
			results[i] = pub.Publish(ctx, batch, c.commonTags)
		}(i, pub)
	}
	wg.Wait()

	for i, res := range results {
		if c.pipeline != nil {
			c.pipeline.PublishObserved(publishers[i].Endpoint(), res)
		}
		if res.Err != nil {
			c.logger.Warn("telemetry publish failed",
				"endpoint", publishers[i].Endpoint(), "error", res.Err, "items", res.ItemCount)
		}
	}
	return results
}
