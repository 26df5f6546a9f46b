package entry

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips combining marks, so "Café" and "cafe" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Normalize turns raw query text into its canonical form: folded,
// trimmed, with internal whitespace collapsed to single spaces.
func Normalize(text string) string {
	return strings.Join(strings.Fields(Fold(text)), " ")
}

// Segments splits a display name into ordered lowercase words, breaking on
// anything that is not a letter or digit and on camelCase boundaries.
//
//	"Visual Studio Code" -> [visual studio code]
//	"VSCode"             -> [vs code]
func Segments(name string) []string {
	var out []string
	for _, word := range fieldsAlnum(name) {
		for _, part := range splitCamelCase(word) {
			out = append(out, Fold(part))
		}
	}
	return out
}

// Tokenize returns the searchable words for a display name: every segment
// plus each separator-delimited word as a whole, deduplicated in order.
func Tokenize(name string) []string {
	seen := make(map[string]struct{})
	var words []string
	add := func(w string) {
		if w == "" {
			return
		}
		if _, ok := seen[w]; ok {
			return
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}

	for _, word := range fieldsAlnum(name) {
		parts := splitCamelCase(word)
		for _, p := range parts {
			add(Fold(p))
		}
		if len(parts) > 1 {
			add(Fold(word))
		}
	}
	return words
}

// Initials returns the first letter of each segment when there are at
// least two ("visual studio code" -> "vsc"), otherwise "".
func Initials(segments []string) string {
	if len(segments) < 2 {
		return ""
	}
	var b strings.Builder
	for _, s := range segments {
		r := []rune(s)
		if len(r) > 0 {
			b.WriteRune(r[0])
		}
	}
	return b.String()
}

// QueryWords splits normalized query text on the same boundaries as
// display names, so "visual-studio" looks up [visual studio] and
// "notepad++" looks up [notepad].
func QueryWords(norm string) []string {
	return fieldsAlnum(norm)
}

func fieldsAlnum(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// splitCamelCase splits camelCase and PascalCase words, keeping acronyms together.
//
//	"VSCode"    -> [VS Code]
//	"iTunes"    -> [i Tunes]
//	"HTTPie"    -> [HTT Pie]
func splitCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var (
		result  []string
		current []rune
	)
	rs := []rune(s)
	for i, r := range rs {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(rs[i-1])
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if (prevLower || nextLower) && len(current) > 0 {
				result = append(result, string(current))
				current = current[:0:0]
			}
		}
		current = append(current, r)
	}
	if len(current) > 0 {
		result = append(result, string(current))
	}
	return result
}
