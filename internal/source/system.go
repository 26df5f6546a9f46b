package source

import (
	"context"
	"iter"

	"github.com/Aman-CERP/nexus/internal/entry"
)

// System yields the built-in session and power actions.
type System struct{}

// Name implements Source.
func (System) Name() string { return "system" }

// Entries implements Source.
func (System) Entries(ctx context.Context) iter.Seq2[entry.Raw, error] {
	return Static{Label: "system", Items: SystemActions()}.Entries(ctx)
}

// SystemActions returns the built-in system action entries.
func SystemActions() []entry.Raw {
	action := func(name string, a entry.Action, keywords ...string) entry.Raw {
		return entry.Raw{
			Name:     name,
			Target:   string(a),
			Kind:     entry.KindSystemAction,
			Payload:  entry.SystemAction{Action: a},
			Keywords: keywords,
		}
	}
	return []entry.Raw{
		action("Lock Screen", entry.ActionLock, "lock computer"),
		action("Sleep", entry.ActionSleep, "suspend"),
		action("Restart", entry.ActionRestart, "reboot"),
		action("Shut Down", entry.ActionShutdown, "shutdown", "power off"),
		action("Log Out", entry.ActionLogout, "logout", "sign out"),
		action("Empty Trash", entry.ActionEmptyTrash, "recycle bin"),
	}
}
