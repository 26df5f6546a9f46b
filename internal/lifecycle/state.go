// Package lifecycle owns the resident launcher process: single-instance
// locking, the visibility state machine, hotkey and tray registration,
// the watchdog, and the command surface shared by the UI and IPC.
package lifecycle

// State is the process lifecycle state.
type State int32

const (
	NotRunning State = iota
	Starting
	RunningHidden
	RunningVisible
	ShuttingDown
)

// String returns the state name used in logs and IPC status.
func (s State) String() string {
	switch s {
	case NotRunning:
		return "not_running"
	case Starting:
		return "starting"
	case RunningHidden:
		return "running_hidden"
	case RunningVisible:
		return "running_visible"
	case ShuttingDown:
		return "shutting_down"
	default:
		return "unknown"
	}
}

// Running reports whether the process is serving (hidden or visible).
func (s State) Running() bool {
	return s == RunningHidden || s == RunningVisible
}
