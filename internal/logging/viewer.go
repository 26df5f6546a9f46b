package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// followInterval is how often Follow polls the file for new lines.
const followInterval = 100 * time.Millisecond

// maxLineBytes bounds a single log line.
const maxLineBytes = 1 << 20

var levelStyles = map[string]lipgloss.Style{
	"DEBUG": lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	"INFO":  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	"WARN":  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	"ERROR": lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
}

// Record is one parsed line of the JSON log.
type Record struct {
	Time  time.Time
	Level string
	Msg   string
	Attrs map[string]any
	// Raw is the line as written. Lines that are not JSON only have Raw.
	Raw   string
	Valid bool
}

// ViewerConfig filters and styles the records a Viewer prints.
type ViewerConfig struct {
	// Level is the minimum level shown. Empty shows everything.
	Level   string
	Pattern *regexp.Regexp
	NoColor bool
}

// Viewer reads the log file written by Setup.
type Viewer struct {
	cfg ViewerConfig
	out io.Writer
}

// NewViewer creates a Viewer printing to out.
func NewViewer(cfg ViewerConfig, out io.Writer) *Viewer {
	return &Viewer{cfg: cfg, out: out}
}

// Tail returns the last n records of path that pass the filters.
func (v *Viewer) Tail(path string, n int) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var kept []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	for sc.Scan() {
		rec := ParseRecord(sc.Text())
		if !v.matches(rec) {
			continue
		}
		kept = append(kept, rec)
		if n > 0 && len(kept) > n {
			kept = kept[1:]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}
	return kept, nil
}

// Follow sends records appended to path after the call until ctx is done.
func (v *Viewer) Follow(ctx context.Context, path string, out chan<- Record) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	r := bufio.NewReader(f)
	var partial string
	ticker := time.NewTicker(followInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		for {
			chunk, err := r.ReadString('\n')
			partial += chunk
			if err != nil {
				// Incomplete line; the rest arrives with a later poll.
				break
			}
			line := strings.TrimSuffix(partial, "\n")
			partial = ""
			if line == "" {
				continue
			}
			if rec := ParseRecord(line); v.matches(rec) {
				select {
				case out <- rec:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

// Print writes records to the viewer output.
func (v *Viewer) Print(records []Record) {
	for _, rec := range records {
		_, _ = fmt.Fprintln(v.out, v.Format(rec))
	}
}

// Format renders a record as "15:04:05.000 LEVEL msg key=value ...".
func (v *Viewer) Format(rec Record) string {
	if !rec.Valid {
		return rec.Raw
	}

	level := fmt.Sprintf("%-5s", strings.ToUpper(rec.Level))
	if style, ok := levelStyles[strings.TrimSpace(level)]; ok && !v.cfg.NoColor {
		level = style.Render(level)
	}

	var b strings.Builder
	b.WriteString(rec.Time.Format("15:04:05.000"))
	b.WriteString(" ")
	b.WriteString(level)
	b.WriteString(" ")
	b.WriteString(rec.Msg)

	keys := make([]string, 0, len(rec.Attrs))
	for k := range rec.Attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, rec.Attrs[k])
	}
	return b.String()
}

// ParseRecord decodes one line of slog JSON output.
func ParseRecord(line string) Record {
	rec := Record{Raw: line}

	var data map[string]any
	if err := json.Unmarshal([]byte(line), &data); err != nil {
		return rec
	}
	rec.Valid = true

	if s, ok := data["time"].(string); ok {
		rec.Time, _ = time.Parse(time.RFC3339Nano, s)
	}
	rec.Level, _ = data["level"].(string)
	rec.Msg, _ = data["msg"].(string)

	rec.Attrs = make(map[string]any, len(data))
	for k, val := range data {
		switch k {
		case "time", "level", "msg":
		default:
			rec.Attrs[k] = val
		}
	}
	return rec
}

func (v *Viewer) matches(rec Record) bool {
	if v.cfg.Level != "" && rec.Valid && parseLevel(rec.Level) < parseLevel(v.cfg.Level) {
		return false
	}
	if v.cfg.Pattern != nil && !v.cfg.Pattern.MatchString(rec.Raw) {
		return false
	}
	return true
}
