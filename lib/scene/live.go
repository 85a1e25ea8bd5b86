package scene

import (
	"log/slog"
	"sync/atomic"

	"github.com/fosdem/trianglix/lib/gpu"
	"github.com/fosdem/trianglix/lib/metrics"
	"github.com/fosdem/trianglix/lib/stats"
)

// Live forwards to one RenderContext and can replace it with a freshly
// built one, e.g. after the shader files were edited. The replacement is
// only swapped in when it initialised cleanly.
type Live struct {
	fn    gpu.Functions
	host  Host
	opts  Options
	stats *stats.Stats

	current *RenderContext
	pending atomic.Bool
	logger  *slog.Logger
}

func NewLive(fn gpu.Functions, host Host, opts Options, st *stats.Stats) *Live {
	return &Live{
		fn:     fn,
		host:   host,
		opts:   opts,
		stats:  st,
		logger: slog.Default().With(slog.String("module", "scene")),
	}
}

func (l *Live) build() (*RenderContext, error) {
	c := New(l.fn, l.host, l.opts)
	c.SetStats(l.stats)
	return c, c.Initialize()
}

// Initialize builds the first context. On failure the partial context is
// kept so that Shutdown can release it.
func (l *Live) Initialize() error {
	c, err := l.build()
	l.current = c
	return err
}

func (l *Live) Current() *RenderContext {
	return l.current
}

// RequestReload may be called from any goroutine. The rebuild happens on
// the next idle tick.
func (l *Live) RequestReload() {
	l.pending.Store(true)
}

func (l *Live) reload() {
	next, err := l.build()
	if err != nil {
		LogError(l.logger, err)
		l.logger.Warn("keeping the previous shaders")
		next.Shutdown()
		metrics.ShaderReloads.WithLabelValues("failed").Inc()
		return
	}
	if l.current != nil {
		l.current.Shutdown()
	}
	l.current = next
	if l.stats != nil {
		l.stats.Reloaded()
	}
	metrics.ShaderReloads.WithLabelValues("ok").Inc()
	l.logger.Info("shaders reloaded")
}

func (l *Live) OnIdle(elapsedMillis int64) {
	if l.pending.Swap(false) {
		l.reload()
	}
	if l.current != nil {
		l.current.OnIdle(elapsedMillis)
	}
}

func (l *Live) OnDisplay() {
	if l.current != nil {
		l.current.OnDisplay()
	}
}

func (l *Live) Shutdown() {
	if l.current != nil {
		l.current.Shutdown()
	}
}
