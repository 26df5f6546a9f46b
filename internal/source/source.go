// Package source provides the index sources Nexus scans for launchable
// entries. Every source is a lazy, finite and restartable sequence: calling
// Entries again rescans from scratch.
package source

import (
	"context"
	"io/fs"
	"iter"
	"path/filepath"
	"strings"

	"github.com/Aman-CERP/nexus/internal/entry"
	"github.com/Aman-CERP/nexus/internal/exclude"
)

// Source yields raw entries. A non-nil error ends the sequence and marks
// the whole source unavailable for that build.
type Source interface {
	Name() string
	Entries(ctx context.Context) iter.Seq2[entry.Raw, error]
}

// Static is a fixed list of raw entries.
type Static struct {
	Label string
	Items []entry.Raw
}

// Name implements Source.
func (s Static) Name() string { return s.Label }

// Entries implements Source.
func (s Static) Entries(ctx context.Context) iter.Seq2[entry.Raw, error] {
	return func(yield func(entry.Raw, error) bool) {
		for _, raw := range s.Items {
			if err := ctx.Err(); err != nil {
				yield(entry.Raw{}, err)
				return
			}
			if !yield(raw, nil) {
				return
			}
		}
	}
}

// Func adapts a function to Source. Useful in tests.
type Func struct {
	Label string
	Fn    func(ctx context.Context) iter.Seq2[entry.Raw, error]
}

// Name implements Source.
func (f Func) Name() string { return f.Label }

// Entries implements Source.
func (f Func) Entries(ctx context.Context) iter.Seq2[entry.Raw, error] { return f.Fn(ctx) }

// walk visits regular files and directories under root up to maxDepth
// levels deep, skipping excluded paths and unreadable subtrees. visit
// returns (raw, ok, skipDir): ok emits raw, skipDir prunes a directory.
// Only an unreadable root is reported as an error.
func walk(
	ctx context.Context,
	root string,
	maxDepth int,
	excl *exclude.Matcher,
	visit func(path string, d fs.DirEntry) (entry.Raw, bool, bool),
) iter.Seq2[entry.Raw, error] {
	return func(yield func(entry.Raw, error) bool) {
		stopped := false
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				if path == root {
					return err
				}
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if path == root {
				return nil
			}

			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return nil
			}
			depth := strings.Count(filepath.ToSlash(rel), "/") + 1

			if excl != nil && excl.Match(path, d.IsDir()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			raw, ok, skipDir := visit(path, d)
			if ok && !yield(raw, nil) {
				stopped = true
				return filepath.SkipAll
			}
			if d.IsDir() && (skipDir || depth >= maxDepth) {
				return filepath.SkipDir
			}
			return nil
		})
		if err != nil && !stopped {
			yield(entry.Raw{}, err)
		}
	}
}

// hidden reports dot-files and dot-directories.
func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
