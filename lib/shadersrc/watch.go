package shadersrc

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jhenstridge/go-inotify"
)

const (
	// settleTime gives editors a moment to finish writing before we react.
	settleTime = 100 * time.Millisecond
	// rewatchAttempts bounds how long we wait for a replaced file to show
	// up again.
	rewatchAttempts = 20
)

// Watcher calls a function whenever one of its files has been rewritten.
type Watcher struct {
	watcher  *inotify.Watcher
	onChange func(path string)
	done     chan struct{}
	closing  atomic.Bool
	logger   *slog.Logger
}

// Watch starts watching paths. onChange runs on the watcher's goroutine,
// so it must only do thread-safe things such as setting a flag.
func Watch(paths []string, onChange func(path string)) (*Watcher, error) {
	watcher, err := inotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		_, err = watcher.Watch(path)
		if err != nil {
			_ = watcher.Close()
			return nil, err
		}
	}

	w := &Watcher{
		watcher:  watcher,
		onChange: onChange,
		done:     make(chan struct{}),
		logger:   slog.Default().With(slog.String("module", "shadersrc")),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)

	for ev := range w.watcher.Event {
		if w.closing.Load() || ev.Watch == nil {
			continue
		}
		// Name is only set for entries of a watched directory, we watch
		// the files themselves
		path := ev.Watch.Path

		switch {
		case ev.Mask&inotify.IN_CLOSE_WRITE != 0:
			w.logger.Debug("shader source rewritten", slog.String("path", path))
			time.Sleep(settleTime)
			w.onChange(path)
		case ev.Mask&inotify.IN_MOVE_SELF != 0:
			// the file was moved away, e.g. to a backup name; stop following
			// it and pick up whatever appears at the old path once the
			// IN_IGNORED for this watch arrives
			err := w.watcher.RemoveWatch(ev.Watch)
			if err != nil {
				w.logger.Debug("could not drop moved watch", slog.String("path", path), slog.Any("err", err))
			}
		case ev.Mask&inotify.IN_IGNORED != 0:
			// the watched inode is gone, usually because an editor renamed
			// a new file over it
			if w.rewatch(path) {
				w.onChange(path)
			}
		}
	}
}

func (w *Watcher) rewatch(path string) bool {
	for range rewatchAttempts {
		time.Sleep(settleTime)
		if w.closing.Load() {
			return false
		}
		_, err := w.watcher.Watch(path)
		if err == nil {
			w.logger.Debug("following replaced shader source", slog.String("path", path))
			return true
		}
	}
	w.logger.Warn("could not re-watch shader source, live reload stopped for it", slog.String("path", path))
	return false
}

// Close stops the watcher. Errors from reading the inotify descriptor are
// reported here.
func (w *Watcher) Close() error {
	w.closing.Store(true)
	err := w.watcher.Close()
	<-w.done
	return err
}
