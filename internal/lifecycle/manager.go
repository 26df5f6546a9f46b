package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/Aman-CERP/nexus/internal/config"
	"github.com/Aman-CERP/nexus/internal/daemon"
	"github.com/Aman-CERP/nexus/internal/entry"
	nxerrors "github.com/Aman-CERP/nexus/internal/errors"
	"github.com/Aman-CERP/nexus/internal/index"
	"github.com/Aman-CERP/nexus/internal/mru"
	"github.com/Aman-CERP/nexus/internal/pipeline"
	"github.com/Aman-CERP/nexus/internal/search"
	"github.com/Aman-CERP/nexus/internal/watcher"
)

// Exit codes returned by the resident process.
const (
	ExitOK                = 0
	ExitError             = 1
	ExitWatchdogExhausted = 3
)

// trayUpdateTimeout bounds an update check started from the tray menu.
const trayUpdateTimeout = 30 * time.Second

var (
	// ErrNotRunning is returned by command methods when Run is not active.
	ErrNotRunning = errors.New("launcher is not running")
	// ErrAlreadyStarted is returned when Run is called a second time.
	ErrAlreadyStarted = errors.New("manager already started")
)

// Launcher performs the action of an entry.
type Launcher interface {
	Launch(ctx context.Context, e entry.Entry) error
}

// Deps are the collaborators of a Manager. Config, Index, Search, MRU and
// Launcher are required; the rest have headless defaults.
type Deps struct {
	Config *config.Config
	// ConfigPath is the explicit --config file, reloaded on change.
	ConfigPath string
	// IPC overrides the paths derived from Config.
	IPC *daemon.Config

	Index    *index.Builder
	Search   *search.Coordinator
	MRU      *mru.Store
	Launcher Launcher

	Presenter Presenter
	Hotkeys   HotkeyRegistrar
	Tray      Tray
	Updater   Updater

	// Lock is an instance lock already taken with Acquire. When nil, Run
	// acquires it itself.
	Lock *InstanceLock

	// Signals carries SIGTERM/SIGINT (exit) and SIGHUP (reload).
	Signals <-chan os.Signal
	Logger  *slog.Logger
}

type commandKind int

const (
	cmdShow commandKind = iota
	cmdHide
	cmdToggle
	cmdExit
	cmdCheckUpdates
	cmdReady
	cmdLaunch
	cmdLaunched
	cmdReload
	cmdRefresh
)

type reply struct {
	result daemon.CommandResult
	err    error
}

type command struct {
	kind  commandKind
	entry entry.Entry
	err   error
	reply chan reply
}

func (c command) respond(r reply) {
	if c.reply != nil {
		c.reply <- r
	}
}

type loopExit struct {
	panic any
}

// Manager owns the resident process. All state transitions happen on its
// event loop; other goroutines talk to it through commands.
type Manager struct {
	deps     Deps
	ipc      daemon.Config
	logger   *slog.Logger
	lock     *InstanceLock
	pidFile  *daemon.PIDFile
	pipeline *pipeline.Pipeline
	watchdog *Watchdog

	state   atomic.Int32
	started atomic.Bool
	cmds    chan command
	done    chan struct{}

	exhausted   chan struct{}
	exhaustOnce sync.Once

	// loop-owned
	showPending bool

	mu          sync.Mutex
	cfg         *config.Config
	subscribers []func(State)
	hotkey      hotkeyResult
	trayStatus  string
	surfaced    map[string]bool
}

// New creates a Manager. Nothing runs until Run.
func New(deps Deps) (*Manager, error) {
	switch {
	case deps.Config == nil:
		return nil, nxerrors.InternalError("lifecycle: config is required", nil)
	case deps.Index == nil || deps.Search == nil || deps.MRU == nil:
		return nil, nxerrors.InternalError("lifecycle: index, search and mru are required", nil)
	case deps.Launcher == nil:
		return nil, nxerrors.InternalError("lifecycle: launcher is required", nil)
	}
	if deps.Presenter == nil {
		deps.Presenter = NopPresenter{}
	}
	if deps.Hotkeys == nil {
		deps.Hotkeys = NewSignalHotkey()
	}
	if deps.Tray == nil {
		deps.Tray = LogTray{Logger: deps.Logger}
	}
	if deps.Updater == nil {
		deps.Updater = VersionUpdater{Version: "dev"}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	ipc := DaemonConfig(deps.Config)
	if deps.IPC != nil {
		ipc = *deps.IPC
	}
	if err := ipc.Validate(); err != nil {
		return nil, nxerrors.ConfigError("invalid IPC paths", err)
	}

	cfg := deps.Config
	m := &Manager{
		deps:      deps,
		ipc:       ipc,
		logger:    deps.Logger,
		lock:      deps.Lock,
		pidFile:   daemon.NewPIDFile(ipc.PIDPath),
		watchdog:  NewWatchdog(cfg.Watchdog.MaxRestarts, cfg.RestartWindow(), cfg.StallTimeout()),
		cmds:      make(chan command, 64),
		done:      make(chan struct{}),
		exhausted: make(chan struct{}),
		cfg:       cfg,
		surfaced:  make(map[string]bool),
	}
	m.pipeline = pipeline.New(deps.Search, m.deliver,
		pipeline.WithDebounce(cfg.Debounce()),
		pipeline.WithLogger(deps.Logger))

	deps.Index.OnSwap(func(*index.Snapshot) { deps.Search.Invalidate() })
	deps.MRU.OnChange(func(entry.ID) { deps.Search.Invalidate() })
	return m, nil
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Subscribe registers fn to be called on every state change. Calls are
// made in order from the goroutine performing the transition.
func (m *Manager) Subscribe(fn func(State)) {
	m.mu.Lock()
	m.subscribers = append(m.subscribers, fn)
	m.mu.Unlock()
}

func (m *Manager) setState(s State) {
	old := State(m.state.Swap(int32(s)))
	if old == s {
		return
	}
	m.logger.Debug("state changed", "from", old.String(), "to", s.String())

	m.mu.Lock()
	subs := slices.Clone(m.subscribers)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(s)
	}
}

func (m *Manager) config() *config.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// Run acquires the instance lock and serves until Exit, ctx cancellation or
// watchdog exhaustion. When another instance holds the lock, Run asks it to
// show itself and returns an InstanceAlreadyRunning error.
func (m *Manager) Run(ctx context.Context) error {
	if !m.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	defer close(m.done)

	if m.lock == nil || !m.lock.Held() {
		lock, err := Acquire(ctx, m.ipc, m.logger)
		if err != nil {
			return err
		}
		m.lock = lock
	}
	defer func() {
		if err := m.lock.Release(); err != nil {
			m.logger.Warn("failed to release instance lock", "error", err)
		}
	}()

	m.setState(Starting)
	m.logger.Info("launcher starting", "pid", os.Getpid(), "lock", m.lock.Path())

	runCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	if err := m.startBackground(runCtx, &wg); err != nil {
		cancel()
		wg.Wait()
		_ = m.pidFile.Remove()
		m.setState(NotRunning)
		return err
	}

	runErr := m.supervise(runCtx)
	m.shutdown(cancel, &wg)
	return runErr
}

func (m *Manager) startBackground(ctx context.Context, wg *sync.WaitGroup) error {
	cfg := m.config()

	if err := m.pidFile.Write(); err != nil {
		m.logger.Warn("failed to write PID file", "path", m.pidFile.Path(), "error", err)
	}

	srv, err := daemon.NewServer(m.ipc.SocketPath)
	if err != nil {
		return nxerrors.New(nxerrors.ErrCodeIPCUnavailable, "failed to create IPC server", err)
	}
	srv.SetHandler(m)
	listenErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := srv.ListenAndServe(ctx)
		if err != nil && ctx.Err() == nil {
			m.logger.Error("IPC server stopped", "error", err)
		}
		listenErr <- err
	}()

	// A second instance may already be dialing; be reachable before
	// anything else starts.
	select {
	case <-srv.Ready():
	case err := <-listenErr:
		m.logger.Warn("IPC unavailable, hand-off and CLI commands disabled",
			nxerrors.FormatForLog(nxerrors.New(nxerrors.ErrCodeIPCUnavailable, "failed to listen", err))...)
	case <-ctx.Done():
		return ctx.Err()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		m.pipeline.Run(ctx)
	}()

	m.deps.Index.Start(ctx, cfg.RefreshInterval())
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-m.deps.Index.Ready():
			m.post(command{kind: cmdReady})
		case <-ctx.Done():
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		m.watchdog.Run(ctx, cfg.Heartbeat(), func(f Fault) {
			m.recoverFrom(ctx, f)
		})
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		m.registerSurfaces(ctx)
	}()

	m.startWatcher(ctx, wg)
	return nil
}

// supervise runs the event loop, restarting it after a panic while the
// watchdog budget allows.
func (m *Manager) supervise(ctx context.Context) error {
	for {
		exit := make(chan loopExit, 1)
		go func() { exit <- m.loop(ctx) }()

		select {
		case <-m.exhausted:
			return m.exhaustedError()
		case ex := <-exit:
			if ex.panic == nil {
				return nil
			}
			fault := Fault{Reason: fmt.Sprintf("event loop panic: %v", ex.panic), At: time.Now()}
			if !m.recoverFrom(ctx, fault) {
				return m.exhaustedError()
			}
		}
	}
}

func (m *Manager) loop(ctx context.Context) (exit loopExit) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("event loop panic", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			exit = loopExit{panic: r}
		}
	}()

	ticker := time.NewTicker(m.config().Heartbeat())
	defer ticker.Stop()

	for {
		m.watchdog.Beat()
		select {
		case <-ctx.Done():
			return loopExit{}
		case <-ticker.C:
		case sig := <-m.deps.Signals:
			if sig == syscall.SIGHUP {
				m.reload(ctx)
				continue
			}
			m.logger.Info("exit requested by signal", "signal", sig.String())
			m.beginExit()
			return loopExit{}
		case cmd := <-m.cmds:
			if m.handle(ctx, cmd) {
				return loopExit{}
			}
		}
	}
}

// handle applies one command. It returns true when the loop should stop.
func (m *Manager) handle(ctx context.Context, cmd command) bool {
	switch cmd.kind {
	case cmdShow:
		m.show()
	case cmdHide:
		m.hide()
	case cmdToggle:
		if m.State() == RunningVisible {
			m.hide()
		} else {
			m.show()
		}
	case cmdExit:
		m.logger.Info("exit requested")
		m.beginExit()
		cmd.respond(reply{result: m.result("")})
		return true
	case cmdCheckUpdates:
		go func() {
			msg, err := m.deps.Updater.CheckForUpdates(ctx)
			cmd.respond(reply{result: m.result(msg), err: err})
		}()
		return false
	case cmdReady:
		m.ready()
	case cmdLaunch:
		go func() {
			err := m.deps.Launcher.Launch(ctx, cmd.entry)
			m.post(command{kind: cmdLaunched, entry: cmd.entry, err: err})
		}()
	case cmdLaunched:
		m.launched(ctx, cmd.entry, cmd.err)
	case cmdReload:
		m.reload(ctx)
	case cmdRefresh:
		m.refresh(ctx)
	}
	cmd.respond(reply{result: m.result("")})
	return false
}

func (m *Manager) result(msg string) daemon.CommandResult {
	return daemon.CommandResult{State: m.State().String(), Message: msg}
}

func (m *Manager) ready() {
	if m.State() != Starting {
		return
	}
	snap := m.deps.Index.Current()
	m.logger.Info("launcher ready", "entries", snap.Len(), "generation", snap.Generation)
	m.setState(RunningHidden)
	if m.showPending || m.config().Startup.ShowOnStartup {
		m.showPending = false
		m.show()
	}
}

func (m *Manager) show() {
	switch m.State() {
	case Starting:
		m.showPending = true
	case RunningHidden:
		m.deps.Search.Invalidate()
		m.pipeline.Reset()
		m.deps.Presenter.Show()
		m.setState(RunningVisible)
		m.pipeline.Submit("")
	case RunningVisible:
		m.deps.Presenter.Show()
	}
}

// hide never terminates the process; only Exit does.
func (m *Manager) hide() {
	switch m.State() {
	case Starting:
		m.showPending = false
	case RunningVisible:
		m.pipeline.Reset()
		m.deps.Presenter.Hide()
		m.setState(RunningHidden)
	}
}

func (m *Manager) launched(ctx context.Context, e entry.Entry, err error) {
	if err != nil {
		m.logger.Warn("launch failed", nxerrors.FormatForLog(err)...)
		m.deps.Presenter.Notice(nxerrors.FormatForCLI(err))
		return
	}
	if _, indexed := m.deps.Index.Current().Get(e.ID); indexed {
		if _, err := m.deps.MRU.RecordUse(ctx, e.ID); err != nil {
			m.logger.Warn("failed to record use", nxerrors.FormatForLog(err)...)
		}
	}
	m.deps.Search.Invalidate()
	m.hide()
}

func (m *Manager) refresh(ctx context.Context) {
	go func() {
		if _, err := m.deps.Index.Refresh(ctx); err != nil && ctx.Err() == nil {
			m.logger.Warn("index refresh failed", "error", err)
		}
	}()
}

// reload re-reads the configuration. An invalid file keeps the previous
// configuration in force.
func (m *Manager) reload(ctx context.Context) {
	cfg, err := config.Load(m.deps.ConfigPath)
	if err != nil {
		m.logger.Warn("config reload failed, keeping previous configuration", nxerrors.FormatForLog(err)...)
		return
	}

	m.mu.Lock()
	old := m.cfg
	m.cfg = cfg
	m.mu.Unlock()

	m.deps.Search.SetOptions(SearchOptions(cfg))
	m.pipeline.SetDebounce(cfg.Debounce())

	if indexChanged(old.Index, cfg.Index) {
		m.deps.Index.SetSources(SourcesFor(cfg))
		m.refresh(ctx)
	}
	if old.Hotkey != cfg.Hotkey {
		if err := m.deps.Hotkeys.Unregister(); err != nil {
			m.logger.Warn("failed to unregister hotkey", "error", err)
		}
		m.registerHotkey(ctx, cfg)
	}
	m.logger.Info("configuration reloaded",
		"max_results", cfg.Search.MaxResults,
		"fuzzy", cfg.Search.Fuzzy,
		"debounce_ms", cfg.Search.DebounceMS)
}

func indexChanged(a, b config.IndexConfig) bool {
	return !slices.Equal(a.AppDirs, b.AppDirs) ||
		!slices.Equal(a.FileDirs, b.FileDirs) ||
		!slices.Equal(a.Exclude, b.Exclude) ||
		a.MaxDepth != b.MaxDepth ||
		a.SystemActions != b.SystemActions
}

func (m *Manager) registerSurfaces(ctx context.Context) {
	m.registerHotkey(ctx, m.config())

	status := TrayOK
	if err := m.deps.Tray.Open(m.trayCommand); err != nil {
		status = TrayDegraded
		m.surfaceOnce(nxerrors.New(nxerrors.ErrCodeTrayUnavailable, "system tray unavailable", err))
	}
	m.mu.Lock()
	m.trayStatus = status
	m.mu.Unlock()
}

func (m *Manager) registerHotkey(ctx context.Context, cfg *config.Config) {
	res, err := registerHotkey(ctx, m.deps.Hotkeys, cfg.Hotkey, func() {
		m.post(command{kind: cmdToggle})
	})
	m.mu.Lock()
	m.hotkey = res
	m.mu.Unlock()
	if err != nil {
		m.surfaceOnce(err)
		return
	}
	m.logger.Info("hotkey registered", "binding", res.Binding, "status", res.Status)
}

func (m *Manager) trayCommand(method string) {
	if method == daemon.MethodCheckUpdates {
		go m.trayCheckUpdates()
		return
	}
	kinds := map[string]commandKind{
		daemon.MethodShow:   cmdShow,
		daemon.MethodHide:   cmdHide,
		daemon.MethodToggle: cmdToggle,
		daemon.MethodExit:   cmdExit,
	}
	if kind, ok := kinds[method]; ok {
		m.post(command{kind: kind})
	}
}

// trayCheckUpdates runs an update check picked from the tray menu and
// shows the answer as a notice.
func (m *Manager) trayCheckUpdates() {
	ctx, cancel := context.WithTimeout(context.Background(), trayUpdateTimeout)
	defer cancel()
	res, err := m.do(ctx, cmdCheckUpdates)
	if err != nil {
		m.logger.Warn("update check from tray failed", "error", err)
		m.deps.Presenter.Notice("Update check failed: " + err.Error())
		return
	}
	m.deps.Presenter.Notice(res.Message)
}

// surfaceOnce logs err and shows it through the presenter the first time
// its code is seen.
func (m *Manager) surfaceOnce(err error) {
	code := nxerrors.GetCode(err)
	m.mu.Lock()
	seen := m.surfaced[code]
	m.surfaced[code] = true
	m.mu.Unlock()

	m.logger.Warn("running degraded", nxerrors.FormatForLog(err)...)
	if !seen {
		m.deps.Presenter.Notice(nxerrors.FormatForCLI(err))
	}
}

// recoverFrom handles a watchdog fault. It returns false once the restart
// budget is exhausted.
func (m *Manager) recoverFrom(ctx context.Context, f Fault) bool {
	m.logger.Warn("watchdog fault", "reason", f.Reason)
	if !m.watchdog.AllowRestart() {
		m.logger.Error("watchdog restart budget exhausted",
			"restarts_used", m.watchdog.RestartsUsed())
		m.exhaustOnce.Do(func() { close(m.exhausted) })
		return false
	}

	if err := m.deps.Hotkeys.Unregister(); err != nil {
		m.logger.Debug("hotkey unregister during recovery", "error", err)
	}
	if err := m.deps.Tray.Close(); err != nil {
		m.logger.Debug("tray close during recovery", "error", err)
	}
	m.registerSurfaces(ctx)
	m.watchdog.Beat()
	m.logger.Info("recovered", "restarts_used", m.watchdog.RestartsUsed())
	return true
}

func (m *Manager) exhaustedError() error {
	return nxerrors.New(nxerrors.ErrCodeWatchdogExhausted,
		fmt.Sprintf("watchdog restart budget exhausted after %d restarts", m.watchdog.RestartsUsed()), nil)
}

// beginExit hides the window and enters ShuttingDown. Idempotent.
func (m *Manager) beginExit() {
	if m.State() == RunningVisible {
		m.deps.Presenter.Hide()
	}
	m.setState(ShuttingDown)
}

func (m *Manager) shutdown(cancel context.CancelFunc, wg *sync.WaitGroup) {
	m.beginExit()

	if err := m.deps.Hotkeys.Unregister(); err != nil {
		m.logger.Warn("failed to unregister hotkey", "error", err)
	}
	if err := m.deps.Tray.Close(); err != nil {
		m.logger.Warn("failed to close tray", "error", err)
	}
	cancel()
	wg.Wait()

	if err := m.pidFile.Remove(); err != nil {
		m.logger.Warn("failed to remove PID file", "error", err)
	}
	m.setState(NotRunning)
	m.logger.Info("launcher stopped")
}

// startWatcher watches the config files for hot reload and, when enabled,
// the application directories for index refresh.
func (m *Manager) startWatcher(ctx context.Context, wg *sync.WaitGroup) {
	cfg := m.config()
	w, err := watcher.New(watcher.Options{Exclude: cfg.Index.Exclude})
	if err != nil {
		m.logger.Warn("file watching unavailable, relying on periodic refresh", "error", err)
		return
	}

	configFiles := make(map[string]bool)
	for _, p := range []string{config.GetUserConfigPath(), m.deps.ConfigPath} {
		if p == "" {
			continue
		}
		if err := w.AddFile(p); err != nil {
			m.logger.Debug("not watching config file", "path", p, "error", err)
			continue
		}
		configFiles[absPath(p)] = true
	}
	if cfg.Index.WatchDirs {
		for _, d := range cfg.Index.AppDirs {
			depth := d.MaxDepth
			if depth <= 0 {
				depth = cfg.Index.MaxDepth
			}
			if err := w.AddDir(config.ResolveDir(d.Path), depth); err != nil {
				m.logger.Debug("not watching app directory", "path", d.Path, "error", err)
			}
		}
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			m.logger.Warn("file watcher stopped", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		defer func() { _ = w.Stop() }()
		for {
			select {
			case <-ctx.Done():
				return
			case batch, ok := <-w.Events():
				if !ok {
					return
				}
				kind := cmdRefresh
				for _, ev := range batch {
					if configFiles[ev.Path] {
						kind = cmdReload
						break
					}
				}
				m.post(command{kind: kind})
			case err, ok := <-w.Errors():
				if !ok {
					return
				}
				m.logger.Warn("file watcher error", "error", err)
			}
		}
	}()
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// post queues a command for the event loop without waiting for it.
func (m *Manager) post(c command) bool {
	select {
	case m.cmds <- c:
		return true
	case <-m.done:
		return false
	}
}

// do queues a command and waits for the loop's reply.
func (m *Manager) do(ctx context.Context, kind commandKind) (daemon.CommandResult, error) {
	if !m.started.Load() {
		return daemon.CommandResult{}, ErrNotRunning
	}
	rc := make(chan reply, 1)
	select {
	case m.cmds <- command{kind: kind, reply: rc}:
	case <-ctx.Done():
		return daemon.CommandResult{}, ctx.Err()
	case <-m.done:
		return daemon.CommandResult{}, ErrNotRunning
	}

	select {
	case r := <-rc:
		return r.result, r.err
	case <-ctx.Done():
		return daemon.CommandResult{}, ctx.Err()
	case <-m.done:
		select {
		case r := <-rc:
			return r.result, r.err
		default:
			return daemon.CommandResult{}, ErrNotRunning
		}
	}
}

// Show makes the launcher visible. During startup the request is held
// until the index is ready.
func (m *Manager) Show(ctx context.Context) error {
	_, err := m.do(ctx, cmdShow)
	return err
}

// Hide hides the launcher. The process keeps running.
func (m *Manager) Hide(ctx context.Context) error {
	_, err := m.do(ctx, cmdHide)
	return err
}

// ToggleVisibility shows a hidden launcher and hides a visible one.
func (m *Manager) ToggleVisibility(ctx context.Context) error {
	_, err := m.do(ctx, cmdToggle)
	return err
}

// Exit shuts the process down. It is the only command that does.
func (m *Manager) Exit(ctx context.Context) error {
	_, err := m.do(ctx, cmdExit)
	return err
}

// CheckForUpdates forwards to the Updater and returns its message.
func (m *Manager) CheckForUpdates(ctx context.Context) (string, error) {
	res, err := m.do(ctx, cmdCheckUpdates)
	return res.Message, err
}

func (m *Manager) deliver(rs search.ResultSet) {
	if m.State() != RunningVisible {
		return
	}
	m.deps.Presenter.Results(rs)
}

// HandleCommand implements daemon.RequestHandler.
func (m *Manager) HandleCommand(ctx context.Context, method string) (daemon.CommandResult, error) {
	kinds := map[string]commandKind{
		daemon.MethodShow:         cmdShow,
		daemon.MethodHide:         cmdHide,
		daemon.MethodToggle:       cmdToggle,
		daemon.MethodExit:         cmdExit,
		daemon.MethodCheckUpdates: cmdCheckUpdates,
	}
	kind, ok := kinds[method]
	if !ok {
		return daemon.CommandResult{}, fmt.Errorf("unknown command %q", method)
	}
	return m.do(ctx, kind)
}

// HandleSearch implements daemon.RequestHandler.
func (m *Manager) HandleSearch(ctx context.Context, params daemon.SearchParams) ([]daemon.SearchResult, error) {
	rs := m.deps.Search.Search(ctx, params.Query)
	results := rs.Results
	if params.Limit > 0 && len(results) > params.Limit {
		results = results[:params.Limit]
	}
	out := make([]daemon.SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, daemon.SearchResult{
			ID:     r.Entry.ID.String(),
			Name:   r.Entry.Name,
			Kind:   r.Entry.Kind.String(),
			Target: r.Entry.Target,
			Score:  r.Score,
			Tier:   r.Tier.String(),
		})
	}
	return out, nil
}

// GetStatus implements daemon.RequestHandler.
func (m *Manager) GetStatus() daemon.StatusResult {
	snap := m.deps.Index.Current()
	m.mu.Lock()
	hk, tray := m.hotkey, m.trayStatus
	m.mu.Unlock()

	status := daemon.StatusResult{
		State:        m.State().String(),
		Entries:      snap.Len(),
		Generation:   snap.Generation,
		Hotkey:       hk.Binding,
		HotkeyStatus: hk.Status,
		TrayStatus:   tray,
		RestartsUsed: m.watchdog.RestartsUsed(),
	}
	for _, s := range snap.Sources {
		status.Sources = append(status.Sources, daemon.SourceStatus{
			Name:    s.Name,
			Entries: s.Entries,
			Error:   s.Error,
		})
	}
	return status
}

// ExitCode maps the error returned by Run to a process exit code. A
// hand-off to a running instance is a success.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case nxerrors.HasCode(err, nxerrors.ErrCodeInstanceAlreadyRunning):
		return ExitOK
	case nxerrors.HasCode(err, nxerrors.ErrCodeWatchdogExhausted):
		return ExitWatchdogExhausted
	default:
		return ExitError
	}
}
