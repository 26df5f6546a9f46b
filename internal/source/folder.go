package source

import (
	"context"
	"io/fs"
	"iter"

	"github.com/Aman-CERP/nexus/internal/entry"
	"github.com/Aman-CERP/nexus/internal/exclude"
)

// Folder yields the files below a user folder as File entries.
type Folder struct {
	Root     string
	MaxDepth int
	Exclude  *exclude.Matcher
}

// Name implements Source.
func (f Folder) Name() string { return "folder:" + f.Root }

// Entries implements Source.
func (f Folder) Entries(ctx context.Context) iter.Seq2[entry.Raw, error] {
	return walk(ctx, f.Root, max(f.MaxDepth, 1), f.Exclude, func(path string, d fs.DirEntry) (entry.Raw, bool, bool) {
		if hidden(d.Name()) {
			return entry.Raw{}, false, d.IsDir()
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return entry.Raw{}, false, false
		}
		return entry.Raw{
			Name:    d.Name(),
			Target:  path,
			Kind:    entry.KindFile,
			Payload: entry.File{Path: path},
		}, true, false
	})
}
