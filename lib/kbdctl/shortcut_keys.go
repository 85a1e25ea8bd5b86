package kbdctl

import (
	"github.com/fosdem/trianglix/lib/log"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Quitter is told when a quit shortcut was pressed.
type Quitter interface {
	RequestShutdown()
}

func SetupShortcutKeys(w *glfw.Window, q Quitter) {
	w.SetKeyCallback(keyCallback(q))
}

func keyCallback(q Quitter) glfw.KeyCallback {
	logger := log.Module("kbdctl")
	return func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if IsQuit(key, action, mods) {
			logger.Info("told to quit, exiting")
			q.RequestShutdown()
		}
	}
}

// IsQuit matches Escape on press and ctrl+shift+q on release.
func IsQuit(key glfw.Key, action glfw.Action, mods glfw.ModifierKey) bool {
	if action == glfw.Press && key == glfw.KeyEscape {
		return true
	}
	return action == glfw.Release &&
		key == glfw.KeyQ &&
		mods&glfw.ModControl != 0 &&
		mods&glfw.ModShift != 0
}
