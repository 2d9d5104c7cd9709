package operation

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/meterbridge/telemetry-go/pkg/contracts"
)

// IDGenerator produces activity and operation identifiers. The pipeline
// never invents ids itself; callers pick the format their backend expects.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator emits random UUID strings.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// TraceIDGenerator emits 32-hex-digit W3C trace ids, for interop with
// trace-context aware backends.
type TraceIDGenerator struct{}

func (TraceIDGenerator) NewID() string {
	var tid trace.TraceID
	// rand.Read never fails on supported platforms.
	_, _ = rand.Read(tid[:])
	return tid.String()
}

// SpanIDGenerator emits 16-hex-digit W3C span ids, suitable for per-scope
// activity ids under a trace-id operation.
type SpanIDGenerator struct{}

func (SpanIDGenerator) NewID() string {
	var sid trace.SpanID
	_, _ = rand.Read(sid[:])
	return sid.String()
}

// FromTraceParent derives an Operation from a W3C traceparent header value
// ("00-<trace-id>-<parent-id>-<flags>"). It returns false for malformed or
// all-zero components.
func FromTraceParent(header string) (contracts.Operation, bool) {
	parts := strings.Split(strings.TrimSpace(header), "-")
	if len(parts) != 4 {
		return contracts.Operation{}, false
	}
	tid, err := trace.TraceIDFromHex(parts[1])
	if err != nil || !tid.IsValid() {
		return contracts.Operation{}, false
	}
	sid, err := trace.SpanIDFromHex(parts[2])
	if err != nil || !sid.IsValid() {
		return contracts.Operation{}, false
	}
	return contracts.Operation{ID: tid.String(), ParentID: sid.String()}, true
}

// TraceParent renders the operation as a W3C traceparent header value, or
// "" when its ids are not valid trace-context hex ids.
func TraceParent(op contracts.Operation) string {
	tid, err := trace.TraceIDFromHex(op.ID)
	if err != nil || !tid.IsValid() {
		return ""
	}
	sid, err := trace.SpanIDFromHex(op.ParentID)
	if err != nil || !sid.IsValid() {
		return ""
	}
	return fmt.Sprintf("00-%s-%s-01", tid, sid)
}
