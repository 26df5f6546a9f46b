package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `{"time":"2026-01-02T10:00:00.000Z","level":"DEBUG","msg":"state changed","from":"starting","to":"running_hidden"}
{"time":"2026-01-02T10:00:01.000Z","level":"INFO","msg":"index swapped","generation":1,"entries":42}
not json at all
{"time":"2026-01-02T10:00:02.000Z","level":"WARN","msg":"hotkey degraded","error_code":"ERR_602_HOTKEY_REGISTRATION_FAILED"}
{"time":"2026-01-02T10:00:03.000Z","level":"ERROR","msg":"launch failed","entry":"Firefox"}
`

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nexus.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestViewer_Tail_LastN(t *testing.T) {
	path := writeLog(t, sampleLog)
	v := NewViewer(ViewerConfig{NoColor: true}, &bytes.Buffer{})

	recs, err := v.Tail(path, 2)

	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "hotkey degraded", recs[0].Msg)
	assert.Equal(t, "launch failed", recs[1].Msg)
}

func TestViewer_Tail_LevelFilter(t *testing.T) {
	// Given: a viewer showing warnings and above
	path := writeLog(t, sampleLog)
	v := NewViewer(ViewerConfig{Level: "warn", NoColor: true}, &bytes.Buffer{})

	// When: tailing everything
	recs, err := v.Tail(path, 0)

	// Then: lower levels are dropped, unparsed lines are kept
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.False(t, recs[0].Valid)
	assert.Equal(t, "WARN", recs[1].Level)
	assert.Equal(t, "ERROR", recs[2].Level)
}

func TestViewer_Tail_PatternFilter(t *testing.T) {
	path := writeLog(t, sampleLog)
	v := NewViewer(ViewerConfig{Pattern: regexp.MustCompile(`generation`)}, &bytes.Buffer{})

	recs, err := v.Tail(path, 50)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, float64(42), recs[0].Attrs["entries"])
}

func TestViewer_Tail_MissingFile(t *testing.T) {
	v := NewViewer(ViewerConfig{}, &bytes.Buffer{})

	_, err := v.Tail(filepath.Join(t.TempDir(), "absent.log"), 10)

	assert.Error(t, err)
}

func TestViewer_Format(t *testing.T) {
	v := NewViewer(ViewerConfig{NoColor: true}, &bytes.Buffer{})

	rec := ParseRecord(`{"time":"2026-01-02T10:00:01.5Z","level":"INFO","msg":"index swapped","generation":1,"entries":42}`)

	assert.Equal(t, "10:00:01.500 INFO  index swapped entries=42 generation=1", v.Format(rec))
	assert.Equal(t, "plain text", v.Format(ParseRecord("plain text")))
}

func TestViewer_Print(t *testing.T) {
	buf := &bytes.Buffer{}
	v := NewViewer(ViewerConfig{NoColor: true}, buf)

	v.Print([]Record{ParseRecord("one"), ParseRecord("two")})

	assert.Equal(t, "one\ntwo\n", buf.String())
}

func TestViewer_Follow_SeesAppendedLines(t *testing.T) {
	// Given: a followed log with existing content
	path := writeLog(t, sampleLog)
	v := NewViewer(ViewerConfig{Level: "info"}, &bytes.Buffer{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	recs := make(chan Record, 4)
	errCh := make(chan error, 1)
	go func() { errCh <- v.Follow(ctx, path, recs) }()
	time.Sleep(2 * followInterval)

	// When: new lines are appended, one below the level filter
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(strings.Join([]string{
		`{"time":"2026-01-02T10:01:00Z","level":"DEBUG","msg":"noise"}`,
		`{"time":"2026-01-02T10:01:01Z","level":"INFO","msg":"window shown"}`,
	}, "\n") + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// Then: only the new matching record arrives
	select {
	case rec := <-recs:
		assert.Equal(t, "window shown", rec.Msg)
	case <-ctx.Done():
		t.Fatal("no record followed")
	}
	cancel()
	require.NoError(t, <-errCh)
}
