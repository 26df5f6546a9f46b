package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/nexus/internal/config"
	"github.com/Aman-CERP/nexus/internal/daemon"
	nxerrors "github.com/Aman-CERP/nexus/internal/errors"
	"github.com/Aman-CERP/nexus/pkg/version"
)

// syncBuffer is a bytes.Buffer safe for the launcher's presenter goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// isolate points the user config at an empty directory and hides the
// desktop session, so the launcher runs with the signal hotkey and no tray.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("DISPLAY", "")
	t.Setenv("DBUS_SESSION_BUS_ADDRESS", "")
	t.Setenv("XDG_RUNTIME_DIR", "")
	return dir
}

// writeTestConfig writes a config file whose IPC paths, history and logs
// live in a fresh directory under /tmp (socket paths must stay short).
func writeTestConfig(t *testing.T) (string, daemon.Config) {
	t.Helper()
	dir, err := os.MkdirTemp("/tmp", "nexus-cmd-")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	cfg := config.NewConfig()
	cfg.Index.AppDirs = []config.DirConfig{}
	cfg.Index.WatchDirs = false
	cfg.Index.RefreshInterval = "0s"
	cfg.Search.DebounceMS = 0
	cfg.IPC = config.IPCConfig{
		SocketPath: filepath.Join(dir, "nexus.sock"),
		PIDPath:    filepath.Join(dir, "nexus.pid"),
		LockPath:   filepath.Join(dir, "nexus.lock"),
	}
	cfg.Logging.FilePath = filepath.Join(dir, "nexus.log")

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	return path, daemon.Config{
		SocketPath: cfg.IPC.SocketPath,
		PIDPath:    cfg.IPC.PIDPath,
		LockPath:   cfg.IPC.LockPath,
		Timeout:    time.Second,
	}
}

// execute runs one CLI invocation and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCmd_Short(t *testing.T) {
	out, err := execute(t, "version", "--short")

	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", out)
}

func TestVersionCmd_JSON(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var info version.BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, version.Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}

func TestRootCmd_RegistersClientCommands(t *testing.T) {
	// Given: the root command
	root := NewRootCmd()

	// When/Then: every lifecycle command and helper is reachable
	for _, name := range []string{"run", "show", "hide", "toggle", "exit", "check-updates", "status", "search", "config", "logs", "version"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestClientCommand_NotRunning(t *testing.T) {
	// Given: no instance listening on the configured socket
	isolate(t)
	cfgPath, _ := writeTestConfig(t)

	// When: asking it to show
	_, err := execute(t, "--config", cfgPath, "show")

	// Then: the error says the launcher is unavailable
	require.Error(t, err)
	assert.True(t, nxerrors.HasCode(err, nxerrors.ErrCodeIPCUnavailable))
	assert.Contains(t, nxerrors.FormatForCLI(err), "nexus is not running")
}

func TestClientCommand_MissingConfigFile(t *testing.T) {
	isolate(t)

	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "status")

	require.Error(t, err)
	assert.True(t, nxerrors.HasCode(err, nxerrors.ErrCodeConfigNotFound))
}

func TestLauncher_EndToEnd(t *testing.T) {
	// Given: a launcher started with the plain presenter
	isolate(t)
	cfgPath, ipc := writeTestConfig(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	root := NewRootCmd()
	screen := &syncBuffer{}
	root.SetOut(screen)
	root.SetErr(screen)
	root.SetArgs([]string{"--plain", "--config", cfgPath})
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	client := daemon.NewClient(ipc)
	require.Eventually(t, func() bool {
		st, err := client.Status(ctx)
		return err == nil && st.State == "running_hidden"
	}, 10*time.Second, 20*time.Millisecond)

	// When: querying status over the CLI
	out, err := execute(t, "--config", cfgPath, "status", "--json")
	require.NoError(t, err)
	var status daemon.StatusResult
	require.NoError(t, json.Unmarshal([]byte(out), &status))

	// Then: the system actions are indexed
	assert.Equal(t, 6, status.Entries)
	assert.Equal(t, os.Getpid(), status.PID)
	if runtime.GOOS == "linux" {
		assert.Equal(t, "degraded", status.TrayStatus, "no session bus, no tray")
	}

	// When: searching
	out, err = execute(t, "--config", cfgPath, "search", "lock")
	require.NoError(t, err)

	// Then: the prefix match is listed first
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Contains(t, lines[1], "Lock Screen")
	assert.Contains(t, lines[1], "prefix")

	// When: toggling the window
	out, err = execute(t, "--config", cfgPath, "toggle")
	require.NoError(t, err)

	// Then: it becomes visible and the presenter is told
	assert.Contains(t, out, "running_visible")
	require.Eventually(t, func() bool {
		return strings.Contains(screen.String(), "[shown]")
	}, 5*time.Second, 10*time.Millisecond)

	// When: asking it to exit
	_, err = execute(t, "--config", cfgPath, "exit")
	require.NoError(t, err)

	// Then: the launcher returns cleanly and releases its files
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("launcher did not exit")
	}
	assert.NoFileExists(t, ipc.PIDPath)
	assert.FileExists(t, filepath.Join(filepath.Dir(ipc.PIDPath), "mru.db"))
}

func TestRootCmd_ProfileFlags(t *testing.T) {
	// Given: profile paths for a short command
	dir := t.TempDir()
	heap := filepath.Join(dir, "heap.prof")
	cpu := filepath.Join(dir, "cpu.prof")

	// When: running it
	_, err := execute(t, "--profile-mem", heap, "--profile-cpu", cpu, "version", "--short")

	// Then: both profiles are written
	require.NoError(t, err)
	assert.FileExists(t, heap)
	assert.FileExists(t, cpu)
}
