package source

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
	"github.com/rkoesters/xdg/desktop"

	"github.com/Aman-CERP/nexus/internal/entry"
	"github.com/Aman-CERP/nexus/internal/exclude"
)

// skipWords mark installer and documentation shortcuts that clutter results.
var skipWords = []string{"uninstall", "readme", "help", "manual"}

// launchableExts are non-executable files that still launch an application.
var launchableExts = map[string]bool{
	".appimage": true,
	".exe":      true,
	".lnk":      true,
}

// AppDir yields applications found below Root: freedesktop .desktop files,
// macOS .app bundles and executables.
type AppDir struct {
	Root     string
	MaxDepth int
	Exclude  *exclude.Matcher
}

// Name implements Source.
func (a AppDir) Name() string { return "apps:" + a.Root }

// Entries implements Source.
func (a AppDir) Entries(ctx context.Context) iter.Seq2[entry.Raw, error] {
	return walk(ctx, a.Root, max(a.MaxDepth, 1), a.Exclude, func(path string, d fs.DirEntry) (entry.Raw, bool, bool) {
		name := d.Name()
		if hidden(name) {
			return entry.Raw{}, false, d.IsDir()
		}

		if d.IsDir() {
			if strings.EqualFold(filepath.Ext(name), ".app") {
				raw, ok := application(strings.TrimSuffix(name, filepath.Ext(name)), path, "")
				return raw, ok, true
			}
			return entry.Raw{}, false, false
		}

		ext := strings.ToLower(filepath.Ext(name))
		if ext == ".desktop" {
			de, err := ParseDesktopFile(path)
			if err != nil || !de.Launchable() {
				return entry.Raw{}, false, false
			}
			raw, ok := application(de.Name, de.Exec, de.Comment)
			return raw, ok, false
		}

		if launchableExts[ext] || isExecutable(d) {
			raw, ok := application(strings.TrimSuffix(name, filepath.Ext(name)), path, "")
			return raw, ok, false
		}
		return entry.Raw{}, false, false
	})
}

// application applies the naming rules shared by every app kind.
func application(name, command, description string) (entry.Raw, bool) {
	name = strings.TrimSpace(strings.TrimSuffix(name, " - Shortcut"))
	if name == "" || command == "" || hidden(name) {
		return entry.Raw{}, false
	}
	lower := strings.ToLower(name)
	for _, w := range skipWords {
		if strings.Contains(lower, w) {
			return entry.Raw{}, false
		}
	}
	return entry.Raw{
		Name:    name,
		Target:  command,
		Kind:    entry.KindApplication,
		Payload: entry.Application{Command: command, Description: description},
	}, true
}

func isExecutable(d fs.DirEntry) bool {
	if !d.Type().IsRegular() {
		return false
	}
	info, err := d.Info()
	if err != nil {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}

// DesktopEntry is the subset of a freedesktop .desktop file Nexus uses.
// Name and Comment are already resolved for the session locale.
type DesktopEntry struct {
	Name       string
	Exec       string
	Comment    string
	Type       desktop.Type
	NoDisplay  bool
	Hidden     bool
	TryExec    string
	OnlyShowIn []string
	NotShowIn  []string
}

// Launchable reports whether the entry should be indexed in the current
// session.
func (d DesktopEntry) Launchable() bool {
	return d.LaunchableIn(currentDesktops(), exec.LookPath)
}

// LaunchableIn reports whether the entry should be indexed under the
// given XDG_CURRENT_DESKTOP names, resolving TryExec with lookPath.
func (d DesktopEntry) LaunchableIn(desktops []string, lookPath func(string) (string, error)) bool {
	if d.Type != desktop.Application || d.NoDisplay || d.Hidden || d.Name == "" || d.Exec == "" {
		return false
	}
	if len(d.OnlyShowIn) > 0 && !overlaps(d.OnlyShowIn, desktops) {
		return false
	}
	if overlaps(d.NotShowIn, desktops) {
		return false
	}
	if d.TryExec != "" {
		if _, err := lookPath(d.TryExec); err != nil {
			return false
		}
	}
	return true
}

// currentDesktops splits XDG_CURRENT_DESKTOP, e.g. "ubuntu:GNOME".
func currentDesktops() []string {
	v := os.Getenv("XDG_CURRENT_DESKTOP")
	if v == "" {
		return nil
	}
	return strings.Split(v, ":")
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if strings.EqualFold(x, y) {
				return true
			}
		}
	}
	return false
}

// ParseDesktopFile reads the [Desktop Entry] group of a .desktop file.
// Localized keys follow LC_ALL, LC_MESSAGES and LANG. Field codes
// (%f, %U, ...) are removed from Exec.
func ParseDesktopFile(path string) (DesktopEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return DesktopEntry{}, err
	}
	defer func() { _ = f.Close() }()

	e, err := desktop.New(f)
	if err != nil {
		return DesktopEntry{}, fmt.Errorf("parse %s: %w", path, err)
	}
	de := DesktopEntry{
		Name:       e.Name,
		Comment:    e.Comment,
		Type:       e.Type,
		NoDisplay:  e.NoDisplay,
		Hidden:     e.Hidden,
		TryExec:    e.TryExec,
		OnlyShowIn: e.OnlyShowIn,
		NotShowIn:  e.NotShowIn,
	}
	if e.Exec != "" {
		execLine, err := stripFieldCodes(e.Exec)
		if err != nil {
			return DesktopEntry{}, fmt.Errorf("%s: bad Exec: %w", path, err)
		}
		de.Exec = execLine
	}
	return de, nil
}

// stripFieldCodes drops %-codes from an Exec line and re-quotes the argv.
func stripFieldCodes(execLine string) (string, error) {
	args, err := shlex.Split(execLine)
	if err != nil {
		return "", err
	}
	kept := make([]string, 0, len(args))
	for _, a := range args {
		if len(a) == 2 && a[0] == '%' {
			if a == "%%" {
				kept = append(kept, "%")
			}
			continue
		}
		kept = append(kept, quoteArg(a))
	}
	return strings.Join(kept, " "), nil
}

func quoteArg(a string) string {
	if a != "" && !strings.ContainsAny(a, " \t\"'\\") {
		return a
	}
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(a) + `"`
}
