package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/nexus/internal/config"
	nxerrors "github.com/Aman-CERP/nexus/internal/errors"
)

// fakeHotkeys refuses any binding listed in fail.
type fakeHotkeys struct {
	mu           sync.Mutex
	fail         map[string]bool
	attempts     []string
	active       string
	fire         func()
	unregistered int
}

func newFakeHotkeys(fail ...string) *fakeHotkeys {
	f := &fakeHotkeys{fail: make(map[string]bool)}
	for _, b := range fail {
		f.fail[b] = true
	}
	return f
}

func (f *fakeHotkeys) Register(hk config.Hotkey, fire func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, hk.String())
	if f.fail[hk.String()] {
		return errors.New("binding grabbed by another client")
	}
	f.active = hk.String()
	f.fire = fire
	return nil
}

func (f *fakeHotkeys) Unregister() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unregistered++
	f.active = ""
	return nil
}

func (f *fakeHotkeys) press() {
	f.mu.Lock()
	fire := f.fire
	f.mu.Unlock()
	if fire != nil {
		fire()
	}
}

func (f *fakeHotkeys) Attempts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.attempts...)
}

func TestRegisterHotkey_Primary(t *testing.T) {
	reg := newFakeHotkeys()
	res, err := registerHotkey(context.Background(), reg,
		config.HotkeyConfig{Binding: "alt+space", Fallback: "Ctrl+Alt+Space"}, func() {})

	require.NoError(t, err)
	assert.Equal(t, HotkeyRegistered, res.Status)
	assert.Equal(t, "alt+space", res.Binding)
	assert.Equal(t, []string{"Alt+Space"}, reg.Attempts())
}

func TestRegisterHotkey_RetriesThenFallsBack(t *testing.T) {
	// Given: the primary binding is taken
	reg := newFakeHotkeys("Alt+Space")

	// When: registering
	res, err := registerHotkey(context.Background(), reg,
		config.HotkeyConfig{Binding: "Alt+Space", Fallback: "Ctrl+Alt+Space"}, func() {})

	// Then: the primary is tried twice and the fallback wins
	require.NoError(t, err)
	assert.Equal(t, HotkeyFallback, res.Status)
	assert.Equal(t, "Ctrl+Alt+Space", res.Binding)
	assert.Equal(t, []string{"Alt+Space", "Alt+Space", "Ctrl+Alt+Space"}, reg.Attempts())
}

func TestRegisterHotkey_Degraded(t *testing.T) {
	reg := newFakeHotkeys("Alt+Space", "Ctrl+Alt+Space")

	res, err := registerHotkey(context.Background(), reg,
		config.HotkeyConfig{Binding: "Alt+Space", Fallback: "Ctrl+Alt+Space"}, func() {})

	require.Error(t, err)
	assert.True(t, nxerrors.HasCode(err, nxerrors.ErrCodeHotkeyRegistrationFailed))
	assert.Equal(t, HotkeyDegraded, res.Status)
	assert.Len(t, reg.Attempts(), 4)
}

func TestRegisterHotkey_UnparseableBinding(t *testing.T) {
	reg := newFakeHotkeys()

	res, err := registerHotkey(context.Background(), reg,
		config.HotkeyConfig{Binding: "Hyper+Space", Fallback: ""}, func() {})

	require.Error(t, err)
	assert.Equal(t, HotkeyDegraded, res.Status)
	assert.Empty(t, reg.Attempts(), "an invalid binding is never registered")
}
