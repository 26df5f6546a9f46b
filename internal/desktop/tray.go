package desktop

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/Aman-CERP/nexus/internal/daemon"
)

// errTrayUnsupported is returned where this build has no tray backend.
var errTrayUnsupported = errors.New("system tray is not supported on this platform")

// menuEntry is one tray menu item and the command-surface method it sends.
type menuEntry struct {
	title   string
	tooltip string
	method  string
}

var trayMenu = []menuEntry{
	{"Show", "Open the search window", daemon.MethodShow},
	{"Hide", "Hide the search window", daemon.MethodHide},
	{"Check for updates", "Ask whether a newer version exists", daemon.MethodCheckUpdates},
	{"Exit", "Stop nexus", daemon.MethodExit},
}

// Tray is a status notifier icon whose menu drives the launcher.
//
// The icon is created on the first Open and lives until Quit. Close only
// detaches the command handler, so watchdog recovery can reopen the tray
// without tearing down the session's icon.
type Tray struct {
	logger    *slog.Logger
	supported func() error
	start     func(entries []menuEntry, dispatch func(method string)) (end func(), err error)

	mu      sync.Mutex
	handler func(string)
	end     func()
}

// NewTray returns a Tray backed by the platform tray.
func NewTray(logger *slog.Logger) *Tray {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tray{logger: logger, supported: traySupported, start: startTray}
}

// Open implements lifecycle.Tray.
func (t *Tray) Open(onCommand func(method string)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.end == nil {
		if err := t.supported(); err != nil {
			return err
		}
		end, err := t.start(trayMenu, t.dispatch)
		if err != nil {
			return err
		}
		t.end = end
		t.logger.Info("tray icon shown")
	}
	t.handler = onCommand
	return nil
}

// Close implements lifecycle.Tray. Menu clicks are dropped until the next
// Open.
func (t *Tray) Close() error {
	t.mu.Lock()
	t.handler = nil
	t.mu.Unlock()
	return nil
}

// Quit removes the icon from the session.
func (t *Tray) Quit() {
	t.mu.Lock()
	end := t.end
	t.end, t.handler = nil, nil
	t.mu.Unlock()
	if end != nil {
		end()
	}
}

func (t *Tray) dispatch(method string) {
	t.mu.Lock()
	h := t.handler
	t.mu.Unlock()
	if h == nil {
		t.logger.Debug("tray click while detached", "method", method)
		return
	}
	h(method)
}

// forward sends method for every click until quit closes.
func forward(clicks <-chan struct{}, method string, dispatch func(string), quit <-chan struct{}) {
	for {
		select {
		case <-quit:
			return
		case _, ok := <-clicks:
			if !ok {
				return
			}
			dispatch(method)
		}
	}
}
