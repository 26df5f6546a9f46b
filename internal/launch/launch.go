// Package launch performs the action behind a selected entry.
//
// Dispatcher.Launch is the single place that branches on the entry
// payload; every kind is handled there and nowhere else.
package launch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/google/shlex"

	"github.com/Aman-CERP/nexus/internal/entry"
	nxerrors "github.com/Aman-CERP/nexus/internal/errors"
)

// Runner starts external processes without waiting for them.
type Runner interface {
	Start(ctx context.Context, name string, args ...string) error
}

// Clipboard receives calculation results.
type Clipboard interface {
	WriteAll(text string) error
}

// ExecRunner starts detached processes with os/exec.
type ExecRunner struct{}

// Start implements Runner. The child is reaped in the background so
// launched applications never become zombies.
func (ExecRunner) Start(_ context.Context, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = nil, nil, nil
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// SystemClipboard writes through the OS clipboard.
type SystemClipboard struct{}

// WriteAll implements Clipboard.
func (SystemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Dispatcher launches entries.
type Dispatcher struct {
	runner    Runner
	clipboard Clipboard
	goos      string
	stat      func(string) (fs.FileInfo, error)
	logger    *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option { return func(d *Dispatcher) { d.runner = r } }

// WithClipboard replaces the clipboard.
func WithClipboard(c Clipboard) Option { return func(d *Dispatcher) { d.clipboard = c } }

// WithOS selects the platform command table (runtime.GOOS by default).
func WithOS(goos string) Option { return func(d *Dispatcher) { d.goos = goos } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(d *Dispatcher) { d.logger = l } }

// NewDispatcher creates a Dispatcher for the current platform.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		runner:    ExecRunner{},
		clipboard: SystemClipboard{},
		goos:      runtime.GOOS,
		stat:      os.Stat,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Launch performs e's action. Failures are returned as LaunchFailed errors.
func (d *Dispatcher) Launch(ctx context.Context, e entry.Entry) error {
	var err error
	switch p := e.Payload.(type) {
	case entry.Application:
		err = d.application(ctx, p, e.Target)
	case entry.File:
		err = d.open(ctx, p.Path)
	case entry.SystemAction:
		err = d.system(ctx, p.Action)
	case entry.Calculation:
		err = d.clipboard.WriteAll(p.Value)
	case entry.WebSearch:
		err = d.open(ctx, p.URL)
	default:
		err = fmt.Errorf("unsupported payload %T", e.Payload)
	}
	if err != nil {
		return nxerrors.LaunchError(e.Name, err)
	}
	d.logger.Info("launched", slog.String("name", e.Name), slog.String("kind", e.Kind.String()))
	return nil
}

func (d *Dispatcher) application(ctx context.Context, p entry.Application, target string) error {
	command := p.Command
	if command == "" {
		command = target
	}
	if command == "" {
		return fmt.Errorf("empty command")
	}

	// A discovered executable or bundle is a path that may contain spaces.
	if info, err := d.stat(command); err == nil {
		if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
			return d.open(ctx, command)
		}
		return d.runner.Start(ctx, command)
	}

	argv, err := shlex.Split(command)
	if err != nil {
		return fmt.Errorf("parse command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return fmt.Errorf("empty command")
	}
	return d.runner.Start(ctx, argv[0], argv[1:]...)
}

func (d *Dispatcher) open(ctx context.Context, target string) error {
	switch d.goos {
	case "darwin":
		return d.runner.Start(ctx, "open", target)
	case "windows":
		return d.runner.Start(ctx, "rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return d.runner.Start(ctx, "xdg-open", target)
	}
}

// SystemCommand returns the argv that performs action on goos.
func SystemCommand(goos string, action entry.Action) ([]string, bool) {
	table := linuxActions
	switch goos {
	case "darwin":
		table = darwinActions
	case "windows":
		table = windowsActions
	}
	argv, ok := table[action]
	return argv, ok
}

var linuxActions = map[entry.Action][]string{
	entry.ActionLock:       {"loginctl", "lock-session"},
	entry.ActionSleep:      {"systemctl", "suspend"},
	entry.ActionRestart:    {"systemctl", "reboot"},
	entry.ActionShutdown:   {"systemctl", "poweroff"},
	entry.ActionLogout:     {"loginctl", "terminate-user", "$USER"},
	entry.ActionEmptyTrash: {"gio", "trash", "--empty"},
}

var darwinActions = map[entry.Action][]string{
	entry.ActionLock:       {"pmset", "displaysleepnow"},
	entry.ActionSleep:      {"pmset", "sleepnow"},
	entry.ActionRestart:    {"osascript", "-e", `tell application "System Events" to restart`},
	entry.ActionShutdown:   {"osascript", "-e", `tell application "System Events" to shut down`},
	entry.ActionLogout:     {"osascript", "-e", `tell application "System Events" to log out`},
	entry.ActionEmptyTrash: {"osascript", "-e", `tell application "Finder" to empty trash`},
}

var windowsActions = map[entry.Action][]string{
	entry.ActionLock:     {"rundll32.exe", "user32.dll,LockWorkStation"},
	entry.ActionSleep:    {"rundll32.exe", "powrprof.dll,SetSuspendState", "0,1,0"},
	entry.ActionRestart:  {"shutdown", "/r", "/t", "0"},
	entry.ActionShutdown: {"shutdown", "/s", "/t", "0"},
	entry.ActionLogout:   {"shutdown", "/l"},
}

func (d *Dispatcher) system(ctx context.Context, action entry.Action) error {
	argv, ok := SystemCommand(d.goos, action)
	if !ok {
		return fmt.Errorf("system action %q not supported on %s", action, d.goos)
	}
	args := make([]string, len(argv)-1)
	for i, a := range argv[1:] {
		args[i] = os.ExpandEnv(a)
	}
	return d.runner.Start(ctx, argv[0], args...)
}
