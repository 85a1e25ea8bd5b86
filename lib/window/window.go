// Package window owns the glfw window and its GL context, and plays the
// windowing side of the scene: it queues redraws, swaps buffers and tells
// the run loop when to stop.
package window

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/fosdem/trianglix/lib/config"
	"github.com/fosdem/trianglix/lib/gpu"
	"github.com/fosdem/trianglix/lib/gpu/gldriver"
	"github.com/fosdem/trianglix/lib/log"
	"github.com/fosdem/trianglix/lib/utils"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type Window struct {
	Window *glfw.Window

	fn        *gldriver.Functions
	clock     utils.Stopwatch
	redisplay bool
	logger    *slog.Logger

	shutdownRequested atomic.Bool
}

// New initialises glfw, opens a non-resizable window with an OpenGL 2.0
// context and makes that context current on the calling thread, which must
// stay locked for the rest of the program.
func New(cfg *config.WindowCfg) (*Window, error) {
	w := &Window{logger: log.Module("window")}
	w.logger.Debug("Initializing window")

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 0)
	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("could not create window: %w", err)
	}
	w.Window = window

	window.MakeContextCurrent()
	if cfg.Vsync == nil || *cfg.Vsync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	w.fn, err = gldriver.Init()
	if err != nil {
		w.Destroy()
		return nil, err
	}

	window.SetRefreshCallback(func(*glfw.Window) {
		w.PostRedisplay()
	})

	w.clock = utils.StartStopwatch()
	w.redisplay = true
	return w, nil
}

// Functions is the GL driver bound to this window's context.
func (w *Window) Functions() gpu.Functions {
	return w.fn
}

func (w *Window) PostRedisplay() {
	w.redisplay = true
}

func (w *Window) TakeRedisplay() bool {
	r := w.redisplay
	w.redisplay = false
	return r
}

func (w *Window) SwapBuffers() {
	w.Window.SwapBuffers()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

// ElapsedMillis counts from window creation.
func (w *Window) ElapsedMillis() int64 {
	return w.clock.ElapsedMillis()
}

// RequestShutdown may be called from any goroutine; the loop notices it on
// its next iteration.
func (w *Window) RequestShutdown() {
	w.shutdownRequested.Store(true)
}

func (w *Window) ShouldClose() bool {
	return w.shutdownRequested.Load() || w.Window.ShouldClose()
}

func (w *Window) Destroy() {
	if w.Window != nil {
		w.Window.Destroy()
		w.Window = nil
	}
	glfw.Terminate()
}
