package stats

import (
	"sync"
	"time"
)

// Stats is written by the render loop and read by the API goroutines.
type Stats struct {
	mu sync.Mutex

	frames       uint64
	idleTicks    uint64
	fps          uint64
	frameTime    time.Duration
	reloads      uint64
	wsClients    int
	frameCounter uint64
	frameTimer   time.Time
	start        time.Time

	now func() time.Time
}

// Snapshot is the JSON form served by the API.
type Snapshot struct {
	Frames      uint64  `json:"frames"`
	IdleTicks   uint64  `json:"idle_ticks"`
	FPS         uint64  `json:"fps"`
	FrameTimeMs float64 `json:"frame_time_ms"`
	Uptime      float64 `json:"uptime"`
	Reloads     uint64  `json:"reloads"`
	WsClients   int     `json:"ws_clients"`
}

func New() *Stats {
	s := &Stats{now: time.Now}
	s.start = s.now()
	s.frameTimer = s.start
	return s
}

// Update is called once per presented frame with the time since the
// previous one.
func (s *Stats) Update(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frames++
	s.frameCounter++
	s.frameTime = dt
	now := s.now()
	if now.Sub(s.frameTimer) >= 1*time.Second {
		s.fps = s.frameCounter
		s.frameCounter = 0
		s.frameTimer = now
	}
}

func (s *Stats) Idle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idleTicks++
}

func (s *Stats) Reloaded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloads++
}

func (s *Stats) SetWsClients(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wsClients = n
}

func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Frames:      s.frames,
		IdleTicks:   s.idleTicks,
		FPS:         s.fps,
		FrameTimeMs: float64(s.frameTime.Microseconds()) / 1000,
		Uptime:      s.now().Sub(s.start).Seconds(),
		Reloads:     s.reloads,
		WsClients:   s.wsClients,
	}
}
