package ui

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/nexus/internal/daemon"
)

func sampleStatus() daemon.StatusResult {
	return daemon.StatusResult{
		Running:      true,
		PID:          4242,
		Uptime:       "3m0s",
		State:        "running_hidden",
		Entries:      128,
		Generation:   4,
		Hotkey:       "Ctrl+Alt+Space",
		HotkeyStatus: "fallback",
		TrayStatus:   "ok",
		RestartsUsed: 1,
		Sources: []daemon.SourceStatus{
			{Name: "apps:/usr/share/applications", Entries: 120},
			{Name: "folder:/mnt/gone", Error: "no such file or directory"},
		},
	}
}

func TestStatusRenderer_Render(t *testing.T) {
	// Given: a status renderer without color
	buf := &bytes.Buffer{}
	r := NewStatusRenderer(buf, true)

	// When: rendering a status
	require.NoError(t, r.Render(sampleStatus()))

	// Then: every section appears
	out := buf.String()
	assert.Contains(t, out, "Nexus Status")
	assert.Contains(t, out, "State:    running_hidden")
	assert.Contains(t, out, "PID:      4242")
	assert.Contains(t, out, "Entries:    128")
	assert.Contains(t, out, "apps:/usr/share/applications: 120")
	assert.Contains(t, out, "folder:/mnt/gone: no such file or directory")
	assert.Contains(t, out, "Hotkey:   Ctrl+Alt+Space (fallback)")
	assert.Contains(t, out, "Restarts: 1")
}

func TestStatusRenderer_NoHotkey(t *testing.T) {
	buf := &bytes.Buffer{}
	s := sampleStatus()
	s.Hotkey, s.HotkeyStatus = "", "degraded"

	require.NoError(t, NewStatusRenderer(buf, true).Render(s))
	assert.Contains(t, buf.String(), "Hotkey:   none (degraded)")
}

func TestStatusRenderer_RenderJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, NewStatusRenderer(buf, true).RenderJSON(sampleStatus()))

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "running_hidden", parsed["state"])
	assert.Equal(t, float64(128), parsed["entries"])
	assert.Equal(t, "fallback", parsed["hotkey_status"])
}
