// Package cmd provides the CLI commands for nexus.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	nxerrors "github.com/Aman-CERP/nexus/internal/errors"
	"github.com/Aman-CERP/nexus/internal/logging"
	"github.com/Aman-CERP/nexus/internal/profiling"
	"github.com/Aman-CERP/nexus/pkg/version"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	debug      bool
	configPath string
	profile    profiling.Options
	// cleanup is set while debug logging is active.
	cleanup  func()
	profiler *profiling.Session
}

// NewRootCmd creates the root command for the nexus CLI.
func NewRootCmd() *cobra.Command {
	var (
		g    = &globalOptions{}
		opts runOptions
	)

	cmd := &cobra.Command{
		Use:   "nexus",
		Short: "Keyboard-driven application launcher",
		Long: `nexus stays resident in the background and opens a search window on a
global hotkey. Type a few letters, press enter, and the application, file
or system action you picked is launched.

Running 'nexus' starts the launcher. Running it again while an instance is
active shows the existing window instead of starting a second one.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return cmd.Help()
			}
			return runLauncher(cmd.Context(), cmd, g, opts)
		},
	}

	cmd.SetVersionTemplate("nexus version {{.Version}}\n")

	opts.bind(cmd)

	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Enable debug logging to ~/.nexus/logs/")
	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Additional config file layered over the user config")

	cmd.PersistentFlags().StringVar(&g.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&g.profile.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&g.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = func(*cobra.Command, []string) error { return g.start() }
	cmd.PersistentPostRunE = func(*cobra.Command, []string) error { return g.stop() }

	cmd.AddCommand(newRunCmd(g))
	cmd.AddCommand(newCommandCmds(g)...)
	cmd.AddCommand(newStatusCmd(g))
	cmd.AddCommand(newSearchCmd(g))
	cmd.AddCommand(newConfigCmd(g))
	cmd.AddCommand(newLogsCmd(g))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// start enables debug logging and profiling when requested.
func (g *globalOptions) start() error {
	if g.profile.Enabled() {
		s, err := profiling.Start(g.profile)
		if err != nil {
			return err
		}
		g.profiler = s
	}
	if !g.debug {
		return nil
	}
	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return fmt.Errorf("failed to setup debug logging: %w", err)
	}
	g.cleanup = cleanup
	slog.SetDefault(logger)
	slog.Info("Debug logging enabled",
		slog.String("log_file", logging.DefaultLogPath()),
		slog.String("version", version.Version))
	return nil
}

func (g *globalOptions) stop() error {
	if g.cleanup != nil {
		slog.Info("Debug logging stopped")
		g.cleanup()
		g.cleanup = nil
	}
	if g.profiler != nil {
		err := g.profiler.Stop()
		g.profiler = nil
		return err
	}
	return nil
}

// Execute runs the root command. A hand-off to an already running
// instance is not reported as an error.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil && !nxerrors.HasCode(err, nxerrors.ErrCodeInstanceAlreadyRunning) {
		fmt.Fprint(os.Stderr, nxerrors.FormatForCLI(err))
	}
	return err
}
