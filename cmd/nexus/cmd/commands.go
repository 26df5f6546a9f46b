package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/nexus/internal/config"
	"github.com/Aman-CERP/nexus/internal/daemon"
	nxerrors "github.com/Aman-CERP/nexus/internal/errors"
	"github.com/Aman-CERP/nexus/internal/lifecycle"
	"github.com/Aman-CERP/nexus/internal/output"
	"github.com/Aman-CERP/nexus/internal/ui"
)

// commandSpec describes a client command forwarded to the running instance.
type commandSpec struct {
	use, short, long, method string
}

var commandSpecs = []commandSpec{
	{
		use:    "show",
		short:  "Show the launcher window",
		long:   `Ask the running instance to show its window. Bind this to a key in your window manager when the global hotkey cannot be registered.`,
		method: daemon.MethodShow,
	},
	{
		use:    "hide",
		short:  "Hide the launcher window",
		long:   `Ask the running instance to hide its window. The process keeps running.`,
		method: daemon.MethodHide,
	},
	{
		use:    "toggle",
		short:  "Show the window if hidden, hide it if visible",
		long:   `Toggle the launcher window, exactly as the global hotkey does.`,
		method: daemon.MethodToggle,
	},
	{
		use:    "exit",
		short:  "Stop the running instance",
		long:   `Terminate the running instance. Closing the window only hides it; this is the only way to stop nexus besides a signal.`,
		method: daemon.MethodExit,
	},
	{
		use:    "check-updates",
		short:  "Ask the running instance to check for updates",
		long:   `Forward an update check to the running instance and print its answer.`,
		method: daemon.MethodCheckUpdates,
	},
}

func newCommandCmds(g *globalOptions) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(commandSpecs))
	for _, cs := range commandSpecs {
		cmds = append(cmds, &cobra.Command{
			Use:   cs.use,
			Short: cs.short,
			Long:  cs.long,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runCommand(cmd.Context(), cmd, g, cs.method)
			},
		})
	}
	return cmds
}

// newClient returns an IPC client and the IPC settings for the instance
// selected by the config.
func newClient(g *globalOptions) (*daemon.Client, daemon.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, daemon.Config{}, err
	}
	ipc := lifecycle.DaemonConfig(cfg)
	return daemon.NewClient(ipc), ipc, nil
}

func runCommand(ctx context.Context, cmd *cobra.Command, g *globalOptions, method string) error {
	client, ipc, err := newClient(g)
	if err != nil {
		return err
	}

	out := output.New(cmd.OutOrStdout(), output.WithColor(!ui.DetectNoColor() && ui.IsTTY(cmd.OutOrStdout())))
	res, err := client.Command(ctx, method)
	if err != nil {
		// A live process that lost its socket still takes the hotkey signal.
		if method == daemon.MethodToggle && nxerrors.HasCode(err, nxerrors.ErrCodeIPCUnavailable) {
			if pid, serr := signalToggle(daemon.NewPIDFile(ipc.PIDPath)); serr == nil {
				out.Successf("toggle sent to pid %d by signal", pid)
				return nil
			}
		}
		return err
	}

	if res.Message != "" {
		out.Status("", res.Message)
	}
	out.Successf("%s (state: %s)", method, res.State)
	return nil
}
