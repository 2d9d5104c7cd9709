package operation

import "time"

// TickSource is a monotonic clock expressed as integer ticks. The system
// source ticks in nanoseconds; tests substitute coarser frequencies to
// exercise the scaling arithmetic.
type TickSource interface {
	// Ticks is the current monotonic reading.
	Ticks() int64
	// Frequency is the number of ticks per second.
	Frequency() int64
}

// Clock supplies wall-clock time. Split from TickSource because durations
// must come from the monotonic source, never from wall-clock subtraction.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// SystemTicks is the process monotonic clock at nanosecond resolution.
type SystemTicks struct{}

var processStart = time.Now()

func (SystemTicks) Ticks() int64     { return int64(time.Since(processStart)) }
func (SystemTicks) Frequency() int64 { return int64(time.Second) }

// DurationBetween converts a tick interval to a time.Duration without
// losing precision: whole seconds are converted separately from the
// remainder so the intermediate product cannot overflow for any realistic
// frequency. Results are exact whenever the frequency divides a second.
func DurationBetween(startTicks, endTicks, frequency int64) time.Duration {
	if frequency <= 0 {
		return 0
	}
	delta := endTicks - startTicks
	if delta < 0 {
		return 0
	}
	whole := delta / frequency
	rem := delta % frequency
	return time.Duration(whole)*time.Second + time.Duration(rem*int64(time.Second)/frequency)
}
