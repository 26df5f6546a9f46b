package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/nexus/internal/daemon"
	nxerrors "github.com/Aman-CERP/nexus/internal/errors"
	"github.com/Aman-CERP/nexus/internal/ui"
)

func newStatusCmd(g *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the running instance",
		Long: `Display information about the running instance including:
  - Lifecycle state, PID and uptime
  - Index size, generation and per-source entry counts
  - Hotkey and tray registration
  - Automatic restarts used in the current window

When nothing answers on the socket, the PID file tells apart a process
that is alive but unresponsive from one that exited without cleaning up.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, ipc, err := newClient(g)
			if err != nil {
				return err
			}
			if !client.IsRunning() {
				return notRunning(ipc)
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}

			renderer := ui.NewStatusRenderer(cmd.OutOrStdout(), ui.DetectNoColor() || !ui.IsTTY(cmd.OutOrStdout()))
			if jsonOutput {
				return renderer.RenderJSON(*status)
			}
			return renderer.Render(*status)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// notRunning explains an unreachable socket using the PID file.
func notRunning(ipc daemon.Config) error {
	pid, live := daemon.NewPIDFile(ipc.PIDPath).Check()
	switch live {
	case daemon.Alive:
		return nxerrors.New(nxerrors.ErrCodeIPCUnavailable,
			fmt.Sprintf("nexus (pid %d) is running but not answering", pid), nil).
			WithDetail("socket", ipc.SocketPath).
			WithDetail("pid", strconv.Itoa(pid)).
			WithSuggestion("Check 'nexus logs' for errors")
	case daemon.Stale:
		return nxerrors.New(nxerrors.ErrCodeIPCUnavailable, "nexus is not running (stale PID file)", nil).
			WithDetail("pid_file", ipc.PIDPath).
			WithSuggestion("The last instance exited without cleaning up. Start it with 'nexus'")
	}
	return nxerrors.New(nxerrors.ErrCodeIPCUnavailable, "nexus is not running", nil).
		WithDetail("socket", ipc.SocketPath).
		WithSuggestion("Start it with 'nexus'")
}
