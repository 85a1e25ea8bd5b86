package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/fosdem/trianglix/lib/api"
	"github.com/fosdem/trianglix/lib/config"
	"github.com/fosdem/trianglix/lib/kbdctl"
	"github.com/fosdem/trianglix/lib/log"
	"github.com/fosdem/trianglix/lib/metrics"
	"github.com/fosdem/trianglix/lib/scene"
	"github.com/fosdem/trianglix/lib/shadersrc"
	"github.com/fosdem/trianglix/lib/stats"
	"github.com/fosdem/trianglix/lib/window"
)

func init() {
	// The OpenGL stuff must be in one thread
	runtime.LockOSThread()
}

func main() {
	os.Exit(run())
}

func run() int {
	noColour := flag.Bool("no-colour", false, "Disable coloured log output")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [config file]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := config.Default()
	if flag.NArg() > 0 {
		var err error
		cfg, err = config.Parse(flag.Arg(0))
		if err != nil {
			slog.Error("config invalid", slog.String("error", err.Error()))
			return 1
		}
	}

	var level slog.Level
	err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel)))
	if err != nil {
		slog.Error("log level invalid", slog.String("error", err.Error()))
		return 1
	}
	handler := log.NewHandler(&log.Options{
		HandlerOptions: slog.HandlerOptions{Level: level},
		NoColour:       *noColour,
	})
	slog.SetDefault(slog.New(handler))
	logger := log.Module("main")

	opts, err := cfg.SceneOptions()
	if err != nil {
		logger.Error(err.Error())
		return 1
	}

	win, err := window.New(cfg.Window)
	if err != nil {
		logger.Error("could not open window", slog.String("error", err.Error()))
		metrics.InitFailures.WithLabelValues("window").Inc()
		return 1
	}
	defer win.Destroy()
	kbdctl.SetupShortcutKeys(win.Window, win)

	st := stats.New()
	live := scene.NewLive(win.Functions(), win, opts, st)
	err = live.Initialize()
	if err != nil {
		scene.LogError(logger, err)
		live.Shutdown()
		return 1
	}
	defer live.Shutdown()

	if cfg.Shaders.Watch {
		watcher, err := shadersrc.Watch(
			[]string{string(cfg.Shaders.Vertex), string(cfg.Shaders.Fragment)},
			func(path string) {
				logger.Info("shader changed, reloading", slog.String("path", path))
				live.RequestReload()
			},
		)
		if err != nil {
			logger.Error("could not watch shaders", slog.String("error", err.Error()))
			return 1
		}
		defer func() {
			err := watcher.Close()
			if err != nil {
				logger.Warn("shader watcher failed", slog.String("error", err.Error()))
			}
		}()
	}

	theApi := api.ServeInBackground(cfg, st, win)
	if theApi != nil {
		defer func() {
			_ = theApi.Close()
		}()
	}

	logger.Info("rendering", slog.String("mesh", cfg.Mesh), slog.String("animation", cfg.Animation))
	scene.Run(win, live)
	logger.Info("window closed, shutting down")
	return 0
}
