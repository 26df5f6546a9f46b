package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Aman-CERP/nexus/internal/search"
)

// Plain writes launcher activity as lines of text. It is used when the
// resident process has no terminal, for example under a service manager,
// where the output ends up in a journal.
type Plain struct {
	mu   sync.Mutex
	out  io.Writer
	ctrl Controller
}

// NewPlain creates a line-oriented presenter.
func NewPlain(cfg Config) *Plain {
	out := cfg.Output
	if out == nil {
		out = io.Discard
	}
	return &Plain{out: out}
}

// Attach implements Presenter.
func (p *Plain) Attach(c Controller) {
	p.mu.Lock()
	p.ctrl = c
	p.mu.Unlock()
}

// Show implements Presenter.
func (p *Plain) Show() { p.println("[shown]") }

// Hide implements Presenter.
func (p *Plain) Hide() { p.println("[hidden]") }

// Results implements Presenter.
func (p *Plain) Results(rs search.ResultSet) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.out, "[results #%d] %q: %d\n", rs.Seq, rs.Query, rs.Len())
	for i, r := range rs.Results {
		_, _ = fmt.Fprintf(p.out, "  %d. %s (%s, %d)\n", i+1, r.Entry.Name, r.Tier, r.Score)
	}
}

// Notice implements Presenter.
func (p *Plain) Notice(msg string) {
	for _, line := range strings.Split(strings.TrimSpace(msg), "\n") {
		p.println("[notice] " + strings.TrimSpace(line))
	}
}

func (p *Plain) println(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.out, s)
}
