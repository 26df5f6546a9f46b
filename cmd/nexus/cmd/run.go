package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"

	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/nexus/internal/config"
	"github.com/Aman-CERP/nexus/internal/desktop"
	nxerrors "github.com/Aman-CERP/nexus/internal/errors"
	"github.com/Aman-CERP/nexus/internal/index"
	"github.com/Aman-CERP/nexus/internal/launch"
	"github.com/Aman-CERP/nexus/internal/lifecycle"
	"github.com/Aman-CERP/nexus/internal/logging"
	"github.com/Aman-CERP/nexus/internal/mru"
	"github.com/Aman-CERP/nexus/internal/search"
	"github.com/Aman-CERP/nexus/internal/ui"
	"github.com/Aman-CERP/nexus/pkg/version"
)

// mruHistoryLimit caps how many launch records are loaded at startup.
const mruHistoryLimit = 1000

type runOptions struct {
	plain   bool
	noColor bool
}

// runner is implemented by presenters that own an event loop.
type runner interface {
	Run(ctx context.Context) error
}

func newRunCmd(g *globalOptions) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the launcher (same as running nexus without a command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLauncher(cmd.Context(), cmd, g, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func (o *runOptions) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.plain, "plain", false, "Use the line-oriented presenter even on a terminal")
	cmd.Flags().BoolVar(&o.noColor, "no-color", false, "Disable colors")
}

// runLauncher starts the resident launcher and blocks until it exits.
func runLauncher(ctx context.Context, cmd *cobra.Command, g *globalOptions, opts runOptions) error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}

	ipc := lifecycle.DaemonConfig(cfg)
	lock, err := lifecycle.Acquire(ctx, ipc, slog.Default())
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	logger := slog.Default()
	if g.cleanup == nil {
		l, cleanup, err := logging.Setup(loggingConfig(cfg))
		if err != nil {
			return nxerrors.ConfigError("failed to open log file", err)
		}
		defer cleanup()
		logger = l
		slog.SetDefault(logger)
	}
	logger.Info("nexus starting", slog.String("version", version.Version))

	db, err := mru.OpenSQLite(filepath.Join(filepath.Dir(ipc.PIDPath), "mru.db"))
	if err != nil {
		return nxerrors.New(nxerrors.ErrCodeMRUStorage, "failed to open launch history", err)
	}
	usage := mru.NewStore(db)
	defer func() { _ = usage.Close() }()
	if err := usage.Load(ctx, mruHistoryLimit); err != nil {
		logger.Warn("launch history unavailable", nxerrors.FormatForLog(err)...)
	}

	pool, err := ants.NewPool(runtime.NumCPU())
	if err != nil {
		return nxerrors.InternalError("failed to create scoring pool", err)
	}
	defer pool.Release()

	builder := index.NewBuilder(lifecycle.SourcesFor(cfg), index.WithLogger(logger))
	coord, err := search.NewCoordinator(builder, usage,
		search.WithScorer(search.NewScorer(search.DefaultWeights(), pool)),
		search.WithOptions(lifecycle.SearchOptions(cfg)),
		search.WithLogger(logger),
	)
	if err != nil {
		return nxerrors.InternalError("failed to create search coordinator", err)
	}

	presenter := ui.NewPresenter(ui.NewConfig(cmd.OutOrStdout(),
		ui.WithForcePlain(opts.plain),
		ui.WithNoColor(opts.noColor || ui.DetectNoColor()),
	))

	tray := desktop.NewTray(logger)
	defer tray.Quit()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigs)

	m, err := lifecycle.New(lifecycle.Deps{
		Config:     cfg,
		ConfigPath: g.configPath,
		IPC:        &ipc,
		Lock:       lock,
		Index:      builder,
		Search:     coord,
		MRU:        usage,
		Launcher:   launch.NewDispatcher(launch.WithLogger(logger)),
		Presenter:  presenter,
		Hotkeys:    desktop.NewHotkey(logger),
		Tray:       tray,
		Updater:    lifecycle.VersionUpdater{Version: version.Version},
		Signals:    sigs,
		Logger:     logger,
	})
	if err != nil {
		return nxerrors.InternalError("failed to create launcher", err)
	}
	presenter.Attach(m.Handle())

	return serve(ctx, m, presenter, logger)
}

// serve runs the manager and, once it owns the instance lock, the
// presenter's event loop. The presenter stops when the manager returns.
func serve(ctx context.Context, m *lifecycle.Manager, presenter ui.Presenter, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	uiCtx, stopUI := context.WithCancel(gctx)
	defer stopUI()

	owned := make(chan struct{})
	var once sync.Once
	m.Subscribe(func(s lifecycle.State) {
		if s == lifecycle.Starting {
			once.Do(func() { close(owned) })
		}
	})

	g.Go(func() error {
		defer stopUI()
		return m.Run(gctx)
	})

	if r, ok := presenter.(runner); ok {
		g.Go(func() error {
			select {
			case <-owned:
			case <-uiCtx.Done():
				return nil
			}
			if err := r.Run(uiCtx); err != nil {
				logger.Warn("presenter stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	return g.Wait()
}

// loggingConfig maps the logging section onto the rotating file logger.
func loggingConfig(cfg *config.Config) logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = cfg.Logging.Level
	lc.MaxSizeMB = cfg.Logging.MaxSizeMB
	lc.MaxFiles = cfg.Logging.MaxFiles
	if cfg.Logging.FilePath != "" {
		lc.FilePath = config.ResolveDir(cfg.Logging.FilePath)
	}
	return lc
}
