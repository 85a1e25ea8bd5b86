package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/fosdem/trianglix/lib/config"
	"github.com/fosdem/trianglix/lib/log"
	"github.com/fosdem/trianglix/lib/metrics"
	"github.com/fosdem/trianglix/lib/stats"
	"github.com/gorilla/websocket"
)

// Shutdowner is whatever owns the render loop.
type Shutdowner interface {
	RequestShutdown()
}

type Api struct {
	srv    http.Server
	mux    *http.ServeMux
	cfg    *config.Config
	quit   Shutdowner
	logger *slog.Logger

	Stats *stats.Stats

	wsMutex      sync.Mutex
	wsClients    map[*websocket.Conn]bool
	pushInterval time.Duration
}

func New(cfg *config.Config, st *stats.Stats, quit Shutdowner) *Api {
	a := &Api{}
	a.cfg = cfg
	a.quit = quit
	a.Stats = st
	a.logger = log.Module("api")
	a.mux = http.NewServeMux()
	a.srv.Addr = cfg.Api.Bind
	a.srv.Handler = a.mux
	a.wsClients = make(map[*websocket.Conn]bool)
	a.pushInterval = 2 * time.Second

	if cfg.Api.EnableProfiler {
		a.mux.HandleFunc("/prof", a.profileCPU)
	}
	a.mux.HandleFunc("/api/kill", a.suicide)
	a.mux.HandleFunc("/api/stats", a.getStats)
	a.mux.HandleFunc("/api/config", a.handleConfig)
	a.mux.HandleFunc("/api/ws", a.handleWebsocket)
	a.mux.Handle("/metrics", metrics.Handler())
	return a
}

func (a *Api) Handler() http.Handler {
	return a.mux
}

func (a *Api) Serve() error {
	return a.srv.ListenAndServe()
}

// @Summary	Record a 10 second CPU profile
// @Router		/prof [get]
// @Tags		debug
// @Success	200
// @Produce	octet-stream
func (a *Api) profileCPU(w http.ResponseWriter, _ *http.Request) {
	err := pprof.StartCPUProfile(w)
	if err != nil {
		http.Error(w, fmt.Sprintf("Could not start CPU profile: %s", err), http.StatusInternalServerError)
		return
	}
	time.Sleep(10 * time.Second)
	pprof.StopCPUProfile()
}

// @Summary	Close the window and exit
// @Router		/api/kill [post]
// @Tags		base
// @Success	200
func (a *Api) suicide(w http.ResponseWriter, _ *http.Request) {
	a.logger.Info("shutting down as per api request")
	a.quit.RequestShutdown()
	_, err := fmt.Fprintf(w, "\"ok\"\n")
	if err != nil {
		a.logger.Error("could not write response", slog.String("error", err.Error()))
		return
	}
}

// @Summary	Frame and reload counters
// @Router		/api/stats [get]
// @Tags		base
// @Produce	json
// @Success	200	{object}	stats.Snapshot
func (a *Api) getStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	err := encoder.Encode(a.Stats.Snapshot())
	if err != nil {
		http.Error(w, fmt.Sprintf("could encode stats: %s", err), http.StatusInternalServerError)
		return
	}
}

type Config struct {
	Title     string `json:"title"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Mesh      string `json:"mesh"`
	Animation string `json:"animation"`
	Profile   string `json:"profile"`
	Vertex    string `json:"vertex,omitempty"`
	Fragment  string `json:"fragment,omitempty"`
	Watch     bool   `json:"watch"`
}

// @Summary	The scene configuration currently in use
// @Router		/api/config [get]
// @Tags		base
// @Produce	json
// @Success	200	{object}	Config
func (a *Api) handleConfig(w http.ResponseWriter, _ *http.Request) {
	result := &Config{
		Title:     a.cfg.Window.Title,
		Width:     a.cfg.Window.Width,
		Height:    a.cfg.Window.Height,
		Mesh:      a.cfg.Mesh,
		Animation: a.cfg.Animation,
		Profile:   a.cfg.Profile,
		Vertex:    string(a.cfg.Shaders.Vertex),
		Fragment:  string(a.cfg.Shaders.Fragment),
		Watch:     a.cfg.Shaders.Watch,
	}
	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	err := encoder.Encode(result)
	if err != nil {
		http.Error(w, fmt.Sprintf("couldn't encode config: %s", err), http.StatusInternalServerError)
		return
	}
}

// ServeInBackground returns nil when the config has no api section.
func ServeInBackground(cfg *config.Config, st *stats.Stats, quit Shutdowner) *Api {
	if cfg.Api == nil {
		return nil
	}
	theApi := New(cfg, st, quit)

	theApi.logger.Info("starting web server", slog.String("bind", cfg.Api.Bind))
	go func() {
		err := theApi.Serve()
		if err != nil && err != http.ErrServerClosed {
			theApi.logger.Error("could not start web server", slog.String("error", err.Error()))
		}
	}()
	return theApi
}

func (a *Api) Close() error {
	return a.srv.Close()
}
