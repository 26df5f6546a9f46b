package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/nexus/internal/config"
	"github.com/Aman-CERP/nexus/internal/logging"
	"github.com/Aman-CERP/nexus/internal/ui"
)

type logsOptions struct {
	follow  bool
	lines   int
	level   string
	filter  string
	noColor bool
	file    string
}

func newLogsCmd(g *globalOptions) *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View launcher logs",
		Long: `Print recent entries of the launcher log, optionally following new ones.

The log file is taken from --file, then from logging.file_path in the
configuration, then from the default location.`,
		Example: `  nexus logs
  nexus logs -f --level warn
  nexus logs --filter "hotkey|watchdog" -n 200`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd, g, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Follow new entries")
	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of entries to show")
	cmd.Flags().StringVar(&opts.level, "level", "", "Minimum level: debug, info, warn, error")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Only show entries matching this regular expression")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colors")
	cmd.Flags().StringVar(&opts.file, "file", "", "Log file to read")

	return cmd
}

func runLogs(cmd *cobra.Command, g *globalOptions, opts logsOptions) error {
	if opts.level != "" && !logging.ValidLevel(opts.level) {
		return fmt.Errorf("invalid level: %s (use: debug, info, warn, error)", opts.level)
	}

	vc := logging.ViewerConfig{
		Level:   opts.level,
		NoColor: opts.noColor || ui.DetectNoColor() || !ui.IsTTY(cmd.OutOrStdout()),
	}
	if opts.filter != "" {
		re, err := regexp.Compile(opts.filter)
		if err != nil {
			return fmt.Errorf("invalid filter: %w", err)
		}
		vc.Pattern = re
	}

	path, err := logFilePath(g, opts.file)
	if err != nil {
		return err
	}

	v := logging.NewViewer(vc, cmd.OutOrStdout())
	records, err := v.Tail(path, opts.lines)
	if err != nil {
		return err
	}
	v.Print(records)

	if !opts.follow {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return follow(ctx, v, path)
}

func follow(ctx context.Context, v *logging.Viewer, path string) error {
	recs := make(chan logging.Record, 64)
	errCh := make(chan error, 1)
	go func() { errCh <- v.Follow(ctx, path, recs) }()

	for {
		select {
		case rec := <-recs:
			v.Print([]logging.Record{rec})
		case err := <-errCh:
			return err
		}
	}
}

// logFilePath picks the explicit file, the configured one, or the default.
func logFilePath(g *globalOptions, explicit string) (string, error) {
	if explicit == "" {
		if cfg, err := config.Load(g.configPath); err == nil && cfg.Logging.FilePath != "" {
			explicit = config.ResolveDir(cfg.Logging.FilePath)
		}
	}
	return logging.FindLogFile(explicit)
}
