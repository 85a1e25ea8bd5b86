package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeltaTimer(t *testing.T) {
	var d DeltaTimer
	assert.Equal(t, time.Duration(0), d.Next())

	d.Set(time.Now().Add(-50 * time.Millisecond))
	assert.GreaterOrEqual(t, d.Next(), 50*time.Millisecond)
}

func TestStopwatch(t *testing.T) {
	var zero Stopwatch
	assert.Equal(t, int64(0), zero.ElapsedMillis())

	s := Stopwatch{start: time.Now().Add(-1500 * time.Millisecond)}
	assert.GreaterOrEqual(t, s.ElapsedMillis(), int64(1500))

	started := StartStopwatch()
	assert.Less(t, started.ElapsedMillis(), int64(1000))
}
