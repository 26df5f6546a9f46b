package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/nexus/internal/entry"
	"github.com/Aman-CERP/nexus/internal/search"
)

func TestPlain_WritesActivity(t *testing.T) {
	// Given: a plain presenter
	buf := &bytes.Buffer{}
	p := NewPlain(NewConfig(buf))

	// When: the core pushes a show, results and a notice
	p.Show()
	p.Results(search.ResultSet{Seq: 3, Query: "fire", Results: []search.MatchResult{
		result("Firefox", entry.Application{Command: "firefox"}),
	}})
	p.Notice("Error: system tray unavailable\n  Code: ERR_603_TRAY_UNAVAILABLE\n")
	p.Hide()

	// Then: each push becomes readable lines
	out := buf.String()
	assert.Contains(t, out, "[shown]")
	assert.Contains(t, out, `[results #3] "fire": 1`)
	assert.Contains(t, out, "1. Firefox (prefix, 1000)")
	assert.Contains(t, out, "[notice] Error: system tray unavailable")
	assert.Contains(t, out, "[notice] Code: ERR_603_TRAY_UNAVAILABLE")
	assert.Contains(t, out, "[hidden]")
}

func TestPlain_NilOutput(t *testing.T) {
	p := NewPlain(Config{})
	assert.NotPanics(t, func() {
		p.Show()
		p.Attach(&fakeController{})
	})
}
