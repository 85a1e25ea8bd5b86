package utils

import "time"

type DeltaTimer struct {
	time.Time
}

func (d *DeltaTimer) Next() time.Duration {
	// acquire timestamp exactly once to ensure we're not accumulating error
	now := time.Now()

	defer d.Set(now)
	if d.IsZero() {
		return 0
	}
	return now.Sub(d.Time)
}

func (d *DeltaTimer) Set(t time.Time) {
	d.Time = t
}

// Stopwatch measures time since Start on the monotonic clock.
type Stopwatch struct {
	start time.Time
}

func StartStopwatch() Stopwatch {
	return Stopwatch{start: time.Now()}
}

// ElapsedMillis is zero for a stopwatch that was never started.
func (s Stopwatch) ElapsedMillis() int64 {
	if s.start.IsZero() {
		return 0
	}
	return time.Since(s.start).Milliseconds()
}
