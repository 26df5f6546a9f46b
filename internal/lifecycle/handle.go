package lifecycle

import "github.com/Aman-CERP/nexus/internal/entry"

// Handle is the presentation's view of the Manager. Its methods never
// block on the event loop, so they are safe to call from a UI loop that
// the Manager itself pushes into.
type Handle struct {
	m *Manager
}

// Handle returns the presentation handle.
func (m *Manager) Handle() Handle {
	return Handle{m: m}
}

// Query submits the current input text and returns its sequence number.
// Results arrive through Presenter.Results.
func (h Handle) Query(text string) uint64 {
	return h.m.pipeline.Submit(text)
}

// Launch runs the selected entry and hides the window on success.
func (h Handle) Launch(e entry.Entry) {
	h.m.post(command{kind: cmdLaunch, entry: e})
}

// Close hides the window. The process stays resident.
func (h Handle) Close() {
	h.m.post(command{kind: cmdHide})
}

// Exit terminates the process.
func (h Handle) Exit() {
	h.m.post(command{kind: cmdExit})
}
