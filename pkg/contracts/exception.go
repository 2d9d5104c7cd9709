package contracts

import (
	"errors"
	"fmt"
	"runtime"
)

// Bounds applied while linearizing an error chain. Message and frame limits
// come from the ingestion contract; depth keeps pathological Unwrap chains
// from producing unbounded snapshots.
const (
	DefaultMaxExceptionDepth = 16
	MaxExceptionMessageLen   = 32768
	DefaultMaxStackFrames    = 64
)

// ExceptionDetails is one entry of a linearized error chain. ID is unique
// within the snapshot and OuterID links to the wrapping entry (0 for the
// outermost error), so the wire format can reconstruct the chain without
// pointers.
type ExceptionDetails struct {
	ID           int
	OuterID      int
	TypeName     string
	Message      string
	HasFullStack bool
	Stack        []StackFrame
}

// StackFrame is one captured call-stack entry. FileName may be empty when
// symbol information is unavailable; the serializer omits it then.
type StackFrame struct {
	Level    int
	Method   string
	FileName string
	Line     int
}

// NewExceptionDetails linearizes err and its Unwrap chain into numbered
// entries, outermost first. Messages are truncated to the wire limit and the
// chain is cut off at maxDepth (DefaultMaxExceptionDepth when maxDepth <= 0).
func NewExceptionDetails(err error, maxDepth int) []ExceptionDetails {
	if err == nil {
		return nil
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxExceptionDepth
	}

	var details []ExceptionDetails
	outerID := 0
	for id := 1; err != nil && id <= maxDepth; id++ {
		details = append(details, ExceptionDetails{
			ID:           id,
			OuterID:      outerID,
			TypeName:     fmt.Sprintf("%T", err),
			Message:      TruncateString(err.Error(), MaxExceptionMessageLen),
			HasFullStack: false,
		})
		outerID = id
		err = errors.Unwrap(err)
	}
	return details
}

// CaptureStack records up to maxFrames frames of the current goroutine's
// stack, skipping skip frames above the caller. Level 0 is the innermost
// captured frame, matching the wire format's parsedStack ordering.
func CaptureStack(skip, maxFrames int) []StackFrame {
	if maxFrames <= 0 {
		maxFrames = DefaultMaxStackFrames
	}
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	var out []StackFrame
	for level := 0; ; level++ {
		frame, more := frames.Next()
		out = append(out, StackFrame{
			Level:    level,
			Method:   frame.Function,
			FileName: frame.File,
			Line:     frame.Line,
		})
		if !more {
			break
		}
	}
	return out
}
