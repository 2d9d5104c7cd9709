// Package operation propagates the current distributed operation through
// call graphs and implements the begin/end scope protocol used to time and
// nest activities.
//
// The current operation rides on a context.Context value. Writes are
// copy-on-write: WithOperation derives a new context, it never mutates the
// value a sibling goroutine might be reading, so concurrent flows branched
// from the same parent never observe each other's scopes.
package operation

import (
	"context"

	"github.com/meterbridge/telemetry-go/pkg/contracts"
)

type contextKey struct{}

// WithOperation returns a context carrying op as the current distributed
// operation. The parent context is left untouched.
func WithOperation(ctx context.Context, op contracts.Operation) context.Context {
	return context.WithValue(ctx, contextKey{}, op)
}

// FromContext returns the current distributed operation, or the zero
// Operation when none has been set.
func FromContext(ctx context.Context) contracts.Operation {
	op, _ := ctx.Value(contextKey{}).(contracts.Operation)
	return op
}
