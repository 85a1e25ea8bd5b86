package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func newWithClock() (*Stats, *fakeClock) {
	c := &fakeClock{t: time.Date(2024, 2, 3, 9, 0, 0, 0, time.UTC)}
	s := New()
	s.now = c.now
	s.start = c.t
	s.frameTimer = c.t
	return s, c
}

func TestFPS(t *testing.T) {
	s, c := newWithClock()

	for range 59 {
		c.t = c.t.Add(16 * time.Millisecond)
		s.Update(16 * time.Millisecond)
	}
	assert.Equal(t, uint64(0), s.Snapshot().FPS)

	c.t = c.t.Add(100 * time.Millisecond)
	s.Update(16 * time.Millisecond)

	snap := s.Snapshot()
	assert.Equal(t, uint64(60), snap.FPS)
	assert.Equal(t, uint64(60), snap.Frames)
	assert.InDelta(t, 16.0, snap.FrameTimeMs, 0.001)
	assert.InDelta(t, 1.044, snap.Uptime, 0.001)
}

func TestCounters(t *testing.T) {
	s, _ := newWithClock()
	s.Idle()
	s.Idle()
	s.Reloaded()
	s.SetWsClients(3)

	snap := s.Snapshot()
	assert.Equal(t, uint64(2), snap.IdleTicks)
	assert.Equal(t, uint64(1), snap.Reloads)
	assert.Equal(t, 3, snap.WsClients)
}
