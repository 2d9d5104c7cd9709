package operation

import (
	"context"
	"time"

	"github.com/meterbridge/telemetry-go/pkg/contracts"
)

// Scope is the token returned by ScopeBeginTimed. It holds everything
// needed to close the scope: the operation to restore, the monotonic start
// reading for duration, the wall-clock start for the record timestamp, and
// the activity id that became the parent of telemetry inside the scope.
//
// A Scope is consumed exactly once by the matching ScopeEndTimed; nesting
// works because each end restores the operation its own begin saved, not
// through any explicit stack.
type Scope struct {
	Previous   contracts.Operation
	StartTicks int64
	StartTime  time.Time
	ActivityID string
}

// ScopeBegin makes activityID the parent for telemetry recorded in the
// returned context and returns the operation to hand back to ScopeEnd.
func ScopeBegin(ctx context.Context, activityID string) (context.Context, contracts.Operation) {
	prev := FromContext(ctx)
	return WithOperation(ctx, prev.WithParent(activityID)), prev
}

// ScopeEnd restores the operation saved by the matching ScopeBegin.
func ScopeEnd(ctx context.Context, previous contracts.Operation) context.Context {
	return WithOperation(ctx, previous)
}

// ScopeBeginTimed is ScopeBegin plus timing capture: it reads the wall
// clock and the monotonic source, then generates a fresh activity id. The
// clock reads happen before id generation so the measured interval does not
// include the generator's cost.
func ScopeBeginTimed(ctx context.Context, gen IDGenerator, clock Clock, ticks TickSource) (context.Context, Scope) {
	startTime := clock.Now()
	startTicks := ticks.Ticks()
	id := gen.NewID()

	ctx, prev := ScopeBegin(ctx, id)
	return ctx, Scope{
		Previous:   prev,
		StartTicks: startTicks,
		StartTime:  startTime,
		ActivityID: id,
	}
}

// ScopeEndTimed restores the saved operation and returns the elapsed
// duration measured on the monotonic source.
func ScopeEndTimed(ctx context.Context, scope Scope, ticks TickSource) (context.Context, time.Duration) {
	d := DurationBetween(scope.StartTicks, ticks.Ticks(), ticks.Frequency())
	return ScopeEnd(ctx, scope.Previous), d
}
