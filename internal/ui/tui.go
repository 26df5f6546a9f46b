package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/nexus/internal/entry"
	"github.com/Aman-CERP/nexus/internal/search"
)

// TUI is the interactive launcher window drawn with bubbletea. Core pushes
// are queued and forwarded to the program in order, so they never block
// the caller.
type TUI struct {
	model   *launcherModel
	program *tea.Program
	box     *mailbox
	done    chan struct{}
	once    sync.Once
}

// NewTUI creates the interactive presenter. Output must be a terminal.
func NewTUI(cfg Config) (*TUI, error) {
	if !IsTTY(cfg.Output) {
		return nil, fmt.Errorf("output is not a TTY")
	}

	model := newLauncherModel(GetStyles(cfg.NoColor))
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if f, ok := cfg.Output.(*os.File); ok {
		opts = append(opts, tea.WithOutput(f))
	}
	if cfg.Input != nil {
		opts = append(opts, tea.WithInput(cfg.Input))
	}

	return &TUI{
		model:   model,
		program: tea.NewProgram(model, opts...),
		box:     newMailbox(),
		done:    make(chan struct{}),
	}, nil
}

// Attach implements Presenter. It must be called before Run.
func (t *TUI) Attach(c Controller) { t.model.ctrl = c }

// Show implements Presenter.
func (t *TUI) Show() { t.push(showMsg{}) }

// Hide implements Presenter.
func (t *TUI) Hide() { t.push(hideMsg{}) }

// Results implements Presenter.
func (t *TUI) Results(rs search.ResultSet) { t.push(resultsMsg(rs)) }

// Notice implements Presenter.
func (t *TUI) Notice(msg string) { t.push(noticeMsg(msg)) }

func (t *TUI) push(msg tea.Msg) { t.box.put(msg) }

// Run draws the window until ctx is done or Stop is called.
func (t *TUI) Run(ctx context.Context) error {
	go func() {
		for {
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.done:
				return
			case <-t.box.ready():
				for _, msg := range t.box.take() {
					t.program.Send(msg)
				}
			}
		}
	}()

	_, err := t.program.Run()
	t.once.Do(func() { close(t.done) })
	return err
}

// Stop quits the program.
func (t *TUI) Stop() {
	t.program.Quit()
}

type showMsg struct{}
type hideMsg struct{}
type resultsMsg search.ResultSet
type noticeMsg string

// launcherModel is the bubbletea model of the launcher window.
type launcherModel struct {
	ctrl     Controller
	input    textinput.Model
	results  []search.MatchResult
	selected int
	visible  bool
	query    string
	notice   string
	width    int
	styles   Styles
}

func newLauncherModel(styles Styles) *launcherModel {
	in := textinput.New()
	in.Prompt = styles.Prompt.Render("› ")
	in.Placeholder = "Type to search apps, files and actions"
	in.CharLimit = 256

	return &launcherModel{
		input:  in,
		styles: styles,
		width:  72,
	}
}

// Init implements tea.Model.
func (m *launcherModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *launcherModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = min(msg.Width-2, 96)
		m.input.Width = m.width - 6
		return m, nil

	case showMsg:
		m.visible = true
		m.query = ""
		m.results = nil
		m.selected = 0
		m.notice = ""
		m.input.Reset()
		return m, m.input.Focus()

	case hideMsg:
		m.visible = false
		m.input.Blur()
		return m, nil

	case resultsMsg:
		m.results = msg.Results
		m.selected = min(m.selected, max(len(m.results)-1, 0))
		return m, nil

	case noticeMsg:
		m.notice = strings.TrimSpace(string(msg))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *launcherModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "ctrl+q":
		if m.ctrl != nil {
			m.ctrl.Exit()
		}
		return m, nil
	}
	if !m.visible {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		if m.ctrl != nil {
			m.ctrl.Close()
		}
		return m, nil
	case "up", "ctrl+p", "shift+tab":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "ctrl+n", "tab":
		if m.selected < len(m.results)-1 {
			m.selected++
		}
		return m, nil
	case "enter":
		if m.ctrl != nil && m.selected < len(m.results) {
			m.ctrl.Launch(m.results[m.selected].Entry)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != m.query {
		m.query = v
		m.selected = 0
		if m.ctrl != nil {
			m.ctrl.Query(v)
		}
	}
	return m, cmd
}

// View implements tea.Model.
func (m *launcherModel) View() string {
	if !m.visible {
		return m.styles.Dim.Render("nexus is running in the background. Press your hotkey or run 'nexus show'.") + "\n"
	}

	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if len(m.results) == 0 && m.query != "" {
		b.WriteString(m.styles.Dim.Render("  No matches"))
		b.WriteString("\n")
	}
	for i, r := range m.results {
		marker, nameStyle := "  ", m.styles.Item
		if i == m.selected {
			marker, nameStyle = m.styles.Selected.Render("▸ "), m.styles.Selected
		}
		b.WriteString(marker)
		b.WriteString(m.highlight(r, nameStyle))
		if d := detail(r.Entry); d != "" {
			b.WriteString("  ")
			b.WriteString(m.styles.Kind.Render(d))
		}
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Warning.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Dim.Render("enter launch  ↑/↓ select  esc hide  ctrl+q quit"))

	return m.styles.Panel.Width(m.width).Render(b.String())
}

// highlight underlines matched runes. Positions index the folded name, so
// they are only applied when it lines up rune for rune with the display
// name.
func (m *launcherModel) highlight(r search.MatchResult, base lipgloss.Style) string {
	name := r.Entry.Name
	if len(r.Positions) == 0 || utf8.RuneCountInString(name) != utf8.RuneCountInString(r.Entry.Folded) {
		return base.Render(name)
	}
	hit := make(map[int]bool, len(r.Positions))
	for _, p := range r.Positions {
		hit[p] = true
	}
	var b strings.Builder
	i := 0
	for _, c := range name {
		if hit[i] {
			b.WriteString(m.styles.Match.Inherit(base).Render(string(c)))
		} else {
			b.WriteString(base.Render(string(c)))
		}
		i++
	}
	return b.String()
}

// detail is the secondary text shown next to a result.
func detail(e entry.Entry) string {
	switch p := e.Payload.(type) {
	case entry.Application:
		return p.Description
	case entry.File:
		return p.Path
	case entry.SystemAction:
		return "system"
	case entry.Calculation:
		return "enter to copy"
	case entry.WebSearch:
		return "search " + p.Engine
	default:
		return ""
	}
}
