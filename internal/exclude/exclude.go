// Package exclude matches paths against folder exclusion patterns.
//
// Patterns use gitignore-like syntax:
//
//	node_modules     any path component named node_modules
//	*.tmp            any component matching the glob
//	.cache/          directories only (and everything below them)
//	/home/me/tmp     an absolute folder and everything below it
//	~/Downloads      same, relative to the home directory
//	**/build/out     "build/out" at any depth
//	!keep            re-include a previously excluded path
package exclude

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Matcher holds compiled exclusion patterns. It is safe for concurrent use.
type Matcher struct {
	mu    sync.RWMutex
	rules []rule
}

type rule struct {
	source   string
	re       *regexp.Regexp
	negate   bool
	dirOnly  bool
	anchored bool
	multi    bool // pattern spans path separators
}

// New compiles patterns into a Matcher. Blank lines and #comments are skipped.
func New(patterns ...string) *Matcher {
	m := &Matcher{}
	m.Add(patterns...)
	return m
}

// Add appends patterns to the matcher.
func (m *Matcher) Add(patterns ...string) {
	var compiled []rule
	for _, p := range patterns {
		if r, ok := compile(p); ok {
			compiled = append(compiled, r)
		}
	}

	m.mu.Lock()
	m.rules = append(m.rules, compiled...)
	m.mu.Unlock()
}

// Patterns returns the source patterns in order.
func (m *Matcher) Patterns() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.rules))
	for i, r := range m.rules {
		out[i] = r.source
	}
	return out
}

// Match reports whether path is excluded. The last matching rule wins.
func (m *Matcher) Match(path string, isDir bool) bool {
	path = filepath.ToSlash(filepath.Clean(path))

	m.mu.RLock()
	defer m.mu.RUnlock()

	excluded := false
	for _, r := range m.rules {
		if r.matches(path, isDir) {
			excluded = !r.negate
		}
	}
	return excluded
}

func compile(pattern string) (rule, bool) {
	p := strings.TrimSpace(pattern)
	if p == "" || strings.HasPrefix(p, "#") {
		return rule{}, false
	}

	r := rule{source: p}
	if strings.HasPrefix(p, "!") {
		r.negate = true
		p = p[1:]
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.ToSlash(home) + p[1:]
		}
	}
	if strings.HasSuffix(p, "/") && len(p) > 1 {
		r.dirOnly = true
		p = strings.TrimRight(p, "/")
	}
	switch {
	case strings.HasPrefix(p, "/"):
		r.anchored = true
	case strings.HasPrefix(p, "**/"):
		p = p[3:]
	}
	if p == "" {
		return rule{}, false
	}

	r.multi = r.anchored || strings.Contains(p, "/")
	prefix := "^"
	if !r.anchored && r.multi {
		// Unanchored multi-component patterns match at any depth.
		prefix = "^(?:.*/)?"
	}
	r.re = regexp.MustCompile(prefix + globToRegex(p) + "$")
	return r, true
}

// matches tests the rule against path and each of its ancestors, so an
// excluded folder also excludes everything below it.
func (r rule) matches(path string, isDir bool) bool {
	if r.multi {
		for candidate, dir := path, isDir; ; dir = true {
			if r.re.MatchString(candidate) && (!r.dirOnly || dir) {
				return true
			}
			i := strings.LastIndex(candidate, "/")
			if i <= 0 {
				return false
			}
			candidate = candidate[:i]
		}
	}

	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, part := range parts {
		if !r.re.MatchString(part) {
			continue
		}
		last := i == len(parts)-1
		if !r.dirOnly || !last || isDir {
			return true
		}
	}
	return false
}

// globToRegex translates *, ** and ? into regular expression syntax.
func globToRegex(glob string) string {
	var b strings.Builder
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				if i+2 < len(glob) && glob[i+2] == '/' {
					b.WriteString("(?:.*/)?")
					i += 2
				} else {
					b.WriteString(".*")
					i++
				}
				continue
			}
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		case '[':
			j := strings.IndexByte(glob[i:], ']')
			if j > 0 {
				b.WriteString(glob[i : i+j+1])
				i += j
				continue
			}
			b.WriteString(`\[`)
		case '\\':
			if i+1 < len(glob) {
				b.WriteString(regexp.QuoteMeta(glob[i+1 : i+2]))
				i++
				continue
			}
			b.WriteString(`\\`)
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return b.String()
}
