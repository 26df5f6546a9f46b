// Package ui renders the launcher in a terminal: an interactive bubbletea
// window when attached to a TTY and a line-oriented presenter otherwise.
package ui

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/Aman-CERP/nexus/internal/entry"
	"github.com/Aman-CERP/nexus/internal/search"
)

// Controller is what the presentation may ask of the core. Every method
// returns without waiting for the core's event loop.
type Controller interface {
	Query(text string) uint64
	Launch(e entry.Entry)
	Close()
	Exit()
}

// Presenter receives pushes from the core and forwards user intent to
// the attached Controller.
type Presenter interface {
	Show()
	Hide()
	Results(rs search.ResultSet)
	Notice(msg string)
	Attach(c Controller)
}

// Config configures the presenter.
type Config struct {
	Output     io.Writer
	Input      io.Reader
	ForcePlain bool
	NoColor    bool
}

// ConfigOption is a function that modifies Config.
type ConfigOption func(*Config)

// WithForcePlain forces the line-oriented presenter.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) {
		c.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// WithInput sets the keyboard input of the interactive presenter.
func WithInput(in io.Reader) ConfigOption {
	return func(c *Config) {
		c.Input = in
	}
}

// NewConfig creates a new Config with the given output and options.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{
		Output:  output,
		Input:   os.Stdin,
		NoColor: DetectNoColor(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewPresenter returns the interactive presenter for terminals and the
// plain presenter for pipes, services and forced plain mode.
func NewPresenter(cfg Config) Presenter {
	if cfg.ForcePlain || !IsTTY(cfg.Output) {
		return NewPlain(cfg)
	}
	tui, err := NewTUI(cfg)
	if err != nil {
		return NewPlain(cfg)
	}
	return tui
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}
