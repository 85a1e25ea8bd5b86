package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FramesRendered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trianglix_frames_rendered_total",
		Help: "Total number of frames rendered and presented",
	})
	DrawCalls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trianglix_draw_calls_total",
		Help: "Total number of draw calls issued",
	})
	VerticesDrawn = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trianglix_vertices_drawn_total",
		Help: "Total number of vertices submitted in draw calls",
	})
	IdleTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trianglix_idle_ticks_total",
		Help: "Total number of idle ticks handled by the scene",
	})
	ShaderReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trianglix_shader_reloads_total",
		Help: "Total number of shader reload attempts by outcome",
	}, []string{"outcome"})
	InitFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trianglix_init_failures_total",
		Help: "Total number of failed scene initialisations by error kind",
	}, []string{"kind"})
)

// Handler should usually be mounted at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
