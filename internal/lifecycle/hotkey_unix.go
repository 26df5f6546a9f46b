//go:build !windows

package lifecycle

import (
	"os"
	"os/signal"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/Aman-CERP/nexus/internal/config"
)

// SignalHotkey delivers activation through SIGUSR1. The window manager
// owns the physical key binding and either runs 'nexus toggle' or sends
// the signal to the resident process; the configured binding is only
// recorded for status.
type SignalHotkey struct {
	mu      sync.Mutex
	ch      chan os.Signal
	done    chan struct{}
	binding config.Hotkey
}

// NewSignalHotkey returns an unregistered SignalHotkey.
func NewSignalHotkey() *SignalHotkey {
	return &SignalHotkey{}
}

// Register implements HotkeyRegistrar.
func (s *SignalHotkey) Register(hk config.Hotkey, fire func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()

	s.ch = make(chan os.Signal, 1)
	s.done = make(chan struct{})
	s.binding = hk
	signal.Notify(s.ch, unix.SIGUSR1)

	ch, done := s.ch, s.done
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ch:
				fire()
			}
		}
	}()
	return nil
}

// Unregister implements HotkeyRegistrar.
func (s *SignalHotkey) Unregister() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	return nil
}

func (s *SignalHotkey) stopLocked() {
	if s.ch == nil {
		return
	}
	signal.Stop(s.ch)
	close(s.done)
	s.ch, s.done = nil, nil
}
