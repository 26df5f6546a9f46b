package exclude

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_Match(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		isDir   bool
		want    bool
	}{
		{"component name", "node_modules", "/home/u/proj/node_modules", true, true},
		{"file under excluded component", "node_modules", "/home/u/proj/node_modules/x/y.js", false, true},
		{"component name no match", "node_modules", "/home/u/proj/src/app.js", false, false},
		{"glob extension", "*.tmp", "/home/u/notes.tmp", false, true},
		{"glob no match", "*.tmp", "/home/u/notes.txt", false, false},
		{"question mark", "file?.txt", "/a/file1.txt", false, true},
		{"question mark too long", "file?.txt", "/a/file12.txt", false, false},
		{"dir only on dir", ".cache/", "/home/u/.cache", true, true},
		{"dir only on file with same name", ".cache/", "/home/u/.cache", false, false},
		{"dir only below dir", ".cache/", "/home/u/.cache/thumbnails/a.png", false, true},
		{"absolute folder", "/home/u/tmp", "/home/u/tmp", true, true},
		{"absolute folder child", "/home/u/tmp", "/home/u/tmp/a/b.txt", false, true},
		{"absolute folder sibling", "/home/u/tmp", "/home/u/tmpfiles/a.txt", false, false},
		{"double star prefix", "**/build/out", "/src/app/build/out/bin", false, true},
		{"double star middle", "/opt/**/share", "/opt/a/b/share", true, true},
		{"unanchored multi component", "build/out", "/x/build/out", true, true},
		{"character class", "[Tt]rash", "/home/u/Trash", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.pattern)
			assert.Equal(t, tt.want, m.Match(tt.path, tt.isDir))
		})
	}
}

func TestMatcher_NegationLastRuleWins(t *testing.T) {
	// Given: a broad exclusion followed by a re-include
	m := New("*.AppImage", "!Obsidian.AppImage")

	// Then: the re-included file is not excluded, others are
	assert.False(t, m.Match("/home/u/Apps/Obsidian.AppImage", false))
	assert.True(t, m.Match("/home/u/Apps/Other.AppImage", false))
}

func TestMatcher_HomeExpansion(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	m := New("~/Downloads")

	assert.True(t, m.Match(filepath.Join(home, "Downloads", "a.zip"), false))
	assert.False(t, m.Match(filepath.Join(home, "Documents", "a.txt"), false))
}

func TestMatcher_SkipsCommentsAndBlanks(t *testing.T) {
	m := New("", "  ", "# comment", "node_modules")

	assert.Equal(t, []string{"node_modules"}, m.Patterns())
}

func TestMatcher_ConcurrentUse(t *testing.T) {
	m := New("vendor")
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Add("tmp" + string(rune('a'+i)))
		}()
		go func() {
			defer wg.Done()
			_ = m.Match("/x/vendor/y", false)
		}()
	}
	wg.Wait()
	require.Len(t, m.Patterns(), 11)
}
