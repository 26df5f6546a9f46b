package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrPIDFileNotFound is returned when no resident process recorded itself.
var ErrPIDFileNotFound = errors.New("PID file not found")

// ErrStalePID is returned when the recorded process no longer exists.
var ErrStalePID = errors.New("PID file names a process that is not running")

// Liveness is what the PID file says about the resident process.
type Liveness int

const (
	// Absent means no PID file exists.
	Absent Liveness = iota
	// Stale means the file names a process that has exited.
	Stale
	// Alive means the named process exists, whether or not it answers IPC.
	Alive
)

func (l Liveness) String() string {
	switch l {
	case Stale:
		return "stale"
	case Alive:
		return "alive"
	default:
		return "absent"
	}
}

// PIDFile records the resident process ID next to its socket. Key
// bindings and the CLI fallback use it to signal the process directly.
type PIDFile struct {
	path string
}

// NewPIDFile returns a PIDFile at path.
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the PID file path.
func (p *PIDFile) Path() string {
	return p.path
}

// Write records the current PID, creating the directory as needed.
func (p *PIDFile) Write() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create PID directory: %w", err)
	}
	if err := writeFileAtomic(p.path, []byte(strconv.Itoa(os.Getpid())+"\n")); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// Read returns the recorded PID.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, ErrPIDFileNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid PID in %s: %q", p.path, strings.TrimSpace(string(data)))
	}
	return pid, nil
}

// Check reads the file and classifies the process it names. An unreadable
// or malformed file counts as stale.
func (p *PIDFile) Check() (int, Liveness) {
	pid, err := p.Read()
	switch {
	case errors.Is(err, ErrPIDFileNotFound):
		return 0, Absent
	case err != nil:
		return 0, Stale
	case !processExists(pid):
		return pid, Stale
	}
	return pid, Alive
}

// Remove deletes the file. A missing file is not an error.
func (p *PIDFile) Remove() error {
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// Signal delivers sig to the recorded process. It fails with
// ErrPIDFileNotFound or ErrStalePID when there is no live process.
func (p *PIDFile) Signal(sig os.Signal) (int, error) {
	pid, live := p.Check()
	switch live {
	case Absent:
		return 0, ErrPIDFileNotFound
	case Stale:
		return pid, ErrStalePID
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return pid, fmt.Errorf("failed to find process %d: %w", pid, err)
	}
	if err := proc.Signal(sig); err != nil {
		return pid, fmt.Errorf("failed to signal process %d: %w", pid, err)
	}
	return pid, nil
}
