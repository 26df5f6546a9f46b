package lifecycle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Aman-CERP/nexus/internal/search"
)

// Presenter is the presentation layer as seen from the core. Calls arrive
// on core goroutines and must not block on the presentation's own loop.
type Presenter interface {
	Show()
	Hide()
	Results(rs search.ResultSet)
	Notice(msg string)
}

// Tray is the system tray presence. onCommand receives command-surface
// method names ("show", "exit", ...) chosen from the tray menu.
type Tray interface {
	Open(onCommand func(method string)) error
	Close() error
}

// Updater answers CheckForUpdates.
type Updater interface {
	CheckForUpdates(ctx context.Context) (string, error)
}

// Tray statuses reported in status.
const (
	TrayOK       = "ok"
	TrayDegraded = "degraded"
)

// LogTray is the tray used when no desktop tray is available: it only
// records that the process is resident.
type LogTray struct {
	Logger *slog.Logger
}

// Open implements Tray.
func (t LogTray) Open(func(string)) error {
	t.logger().Info("resident without tray icon")
	return nil
}

// Close implements Tray.
func (t LogTray) Close() error { return nil }

func (t LogTray) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}

// VersionUpdater reports the running version. There is no update channel.
type VersionUpdater struct {
	Version string
}

// CheckForUpdates implements Updater.
func (u VersionUpdater) CheckForUpdates(context.Context) (string, error) {
	return fmt.Sprintf("nexus %s: no update channel configured", u.Version), nil
}

// NopPresenter discards everything. Used when the resident process runs
// without a terminal.
type NopPresenter struct{}

func (NopPresenter) Show()                    {}
func (NopPresenter) Hide()                    {}
func (NopPresenter) Results(search.ResultSet) {}
func (NopPresenter) Notice(string)            {}
