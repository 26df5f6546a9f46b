package ui

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Aman-CERP/nexus/internal/daemon"
)

// StatusRenderer displays resident process status.
type StatusRenderer struct {
	out    io.Writer
	styles Styles
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{
		out:    out,
		styles: GetStyles(noColor),
	}
}

// Render displays status to the terminal.
func (r *StatusRenderer) Render(s daemon.StatusResult) error {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Nexus Status"))

	_, _ = fmt.Fprintf(r.out, "  State:    %s\n", r.renderStatus(s.State))
	_, _ = fmt.Fprintf(r.out, "  PID:      %d\n", s.PID)
	_, _ = fmt.Fprintf(r.out, "  Uptime:   %s\n", s.Uptime)
	_, _ = fmt.Fprintln(r.out)

	_, _ = fmt.Fprintln(r.out, "  Index:")
	_, _ = fmt.Fprintf(r.out, "    Entries:    %d\n", s.Entries)
	_, _ = fmt.Fprintf(r.out, "    Generation: %d\n", s.Generation)
	for _, src := range s.Sources {
		if src.Error != "" {
			_, _ = fmt.Fprintf(r.out, "    %s: %s\n", src.Name, r.styles.Error.Render(src.Error))
			continue
		}
		_, _ = fmt.Fprintf(r.out, "    %s: %d\n", r.styles.Label.Render(src.Name), src.Entries)
	}
	_, _ = fmt.Fprintln(r.out)

	hotkey := s.Hotkey
	if hotkey == "" {
		hotkey = "none"
	}
	_, _ = fmt.Fprintf(r.out, "  Hotkey:   %s (%s)\n", hotkey, r.renderStatus(s.HotkeyStatus))
	_, _ = fmt.Fprintf(r.out, "  Tray:     %s\n", r.renderStatus(s.TrayStatus))
	_, _ = fmt.Fprintf(r.out, "  Restarts: %d\n", s.RestartsUsed)
	return nil
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(s daemon.StatusResult) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(s)
}

// renderStatus colors a status word.
func (r *StatusRenderer) renderStatus(status string) string {
	switch status {
	case "running_visible", "running_hidden", "registered", "ok":
		return r.styles.Success.Render(status)
	case "fallback", "starting", "degraded":
		return r.styles.Warning.Render(status)
	case "shutting_down", "not_running":
		return r.styles.Error.Render(status)
	default:
		return status
	}
}
