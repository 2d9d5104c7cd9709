// Package transport delivers serialized telemetry batches to ingestion
// endpoints and maps the structured partial-failure response back onto the
// submitted batch.
package transport

import (
	"context"
	"errors"
	"time"

	"github.com/meterbridge/telemetry-go/pkg/contracts"
)

// Construction errors. Remote-side problems are never surfaced as errors;
// they come back inside a failed Result.
var (
	ErrEmptyEndpoint      = errors.New("transport: endpoint URL is empty")
	ErrInvalidEndpoint    = errors.New("transport: endpoint URL is invalid")
	ErrEmptyInstrumentKey = errors.New("transport: instrumentation key is empty")
)

// Publisher ships one drained batch. Publish never returns an error for
// remote-side problems; transport failures, non-200 statuses, and
// cancellation all come back as a Result with Success=false.
type Publisher interface {
	Publish(ctx context.Context, items []contracts.Telemetry, extraTags map[string]string) Result
	Endpoint() string
}

// ItemError is one rejected record in a partial failure. Index is the
// position of the record in the submitted batch.
type ItemError struct {
	Index      int    `json:"index"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// Result describes one publisher's outcome for one publish call. It is
// created fresh per call and never mutated after return.
type Result struct {
	// Time the publish attempt started; Duration spans authentication,
	// send, and response parsing.
	Time     time.Time
	Duration time.Duration
	// Success means every submitted item was accepted.
	Success bool
	// ItemCount is the number of records in the submitted batch.
	ItemCount int
	// StatusCode is the HTTP status, 0 when the request never completed.
	StatusCode int
	// Response is the raw response body, kept for diagnostics on failure.
	Response string
	// ItemErrors lists rejected items on a partial failure.
	ItemErrors []ItemError
	// Err carries the transport-level cause when the request itself
	// failed (connection error, cancellation). Nil for HTTP-level
	// failures.
	Err error
}

// backendResponse is the ingestion service's reply to a batch POST.
type backendResponse struct {
	ItemsReceived int         `json:"itemsReceived"`
	ItemsAccepted int         `json:"itemsAccepted"`
	Errors        []ItemError `json:"errors"`
}
