package search

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/expr-lang/expr"

	"github.com/Aman-CERP/nexus/internal/entry"
)

// Scores for computed results. Both sit above every indexed prefix match.
const (
	scoreCalculation = 2000
	scoreWebSearch   = 1900
)

// Provider synthesizes an entry from the query text itself.
type Provider interface {
	// Provide returns a result for raw (trimmed user text) and norm (its
	// normalized form), or false if the query is not meant for it.
	Provide(raw, norm string) (MatchResult, bool)
}

// Calculator evaluates arithmetic queries such as "2+2*3" or "sqrt(16)".
type Calculator struct{}

var calcFuncs = []string{"sqrt", "sin", "cos", "tan", "log", "ln", "abs", "round", "floor", "ceil"}

// calcEnv is shared read-only by every evaluation.
var calcEnv = map[string]any{
	"pi":    math.Pi,
	"e":     math.E,
	"sqrt":  unary(math.Sqrt),
	"sin":   unary(math.Sin),
	"cos":   unary(math.Cos),
	"tan":   unary(math.Tan),
	"log":   unary(math.Log10),
	"ln":    unary(math.Log),
	"abs":   unary(math.Abs),
	"round": unary(math.Round),
	"floor": unary(math.Floor),
	"ceil":  unary(math.Ceil),
}

func unary(f func(float64) float64) func(any) float64 {
	return func(v any) float64 {
		x, ok := toFloat(v)
		if !ok {
			return math.NaN()
		}
		return f(x)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

// Provide implements Provider.
func (Calculator) Provide(_, norm string) (MatchResult, bool) {
	src := strings.TrimSpace(strings.TrimPrefix(norm, "="))
	if !looksLikeMath(src) {
		return MatchResult{}, false
	}
	value, ok := Calculate(src)
	if !ok {
		return MatchResult{}, false
	}
	e, err := entry.New(entry.Raw{
		Name:    src + " = " + value,
		Target:  value,
		Kind:    entry.KindCalculation,
		Payload: entry.Calculation{Expression: src, Value: value},
	})
	if err != nil {
		return MatchResult{}, false
	}
	return MatchResult{Entry: e, Score: scoreCalculation, Tier: TierPrefix}, true
}

func looksLikeMath(s string) bool {
	if s == "" || !strings.ContainsAny(s, "0123456789") && !strings.Contains(s, "pi") {
		return false
	}
	if strings.ContainsAny(s, "+-*/^()%") {
		return true
	}
	for _, f := range calcFuncs {
		if strings.Contains(s, f+"(") {
			return true
		}
	}
	return false
}

// Calculate evaluates an arithmetic expression and formats the result:
// integral values without decimals, others with at most six.
func Calculate(src string) (string, bool) {
	if strings.Contains(src, "..") || strings.ContainsFunc(src, notArithmetic) {
		return "", false
	}
	program, err := expr.Compile(src,
		expr.Env(calcEnv),
		expr.DisableAllBuiltins(),
		expr.AsFloat64(),
	)
	if err != nil {
		return "", false
	}
	out, err := expr.Run(program, calcEnv)
	if err != nil {
		return "", false
	}
	v, ok := toFloat(out)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return "", false
	}
	return formatNumber(v), true
}

// notArithmetic rejects quotes, brackets and other syntax that could build
// strings, arrays or maps.
func notArithmetic(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
		return false
	}
	return !strings.ContainsRune(".,+-*/^()%", r)
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// engine is a web search shortcut.
type engine struct {
	name     string
	prefixes []string
	url      string // %s is replaced by the escaped terms
}

var engines = []engine{
	{"Google", []string{"g ", "google "}, "https://www.google.com/search?q=%s"},
	{"YouTube", []string{"yt ", "youtube "}, "https://www.youtube.com/results?search_query=%s"},
	{"GitHub", []string{"gh ", "github "}, "https://github.com/search?q=%s"},
	{"Wikipedia", []string{"wiki ", "wikipedia "}, "https://en.wikipedia.org/w/index.php?search=%s"},
	{"DuckDuckGo", []string{"ddg "}, "https://duckduckgo.com/?q=%s"},
}

// WebSearch turns "g golang generics" into a Google search and raw
// http(s) URLs into an open-URL result.
type WebSearch struct{}

// Provide implements Provider.
func (WebSearch) Provide(raw, norm string) (MatchResult, bool) {
	lowerRaw := strings.ToLower(raw)
	if strings.HasPrefix(lowerRaw, "http://") || strings.HasPrefix(lowerRaw, "https://") {
		if _, err := url.ParseRequestURI(raw); err != nil || strings.ContainsAny(raw, " \t") {
			return MatchResult{}, false
		}
		return webResult("Open "+raw, "", raw, raw)
	}

	for _, eng := range engines {
		for _, p := range eng.prefixes {
			if !strings.HasPrefix(norm, p) || len(raw) < len(p) {
				continue
			}
			// Keep the user's casing for the terms.
			terms := strings.TrimSpace(raw[len(p):])
			if terms == "" {
				return MatchResult{}, false
			}
			target := strings.Replace(eng.url, "%s", url.QueryEscape(terms), 1)
			return webResult("Search "+eng.name+" for "+terms, eng.name, terms, target)
		}
	}
	return MatchResult{}, false
}

func webResult(name, engineName, terms, target string) (MatchResult, bool) {
	e, err := entry.New(entry.Raw{
		Name:    name,
		Target:  target,
		Kind:    entry.KindWebSearch,
		Payload: entry.WebSearch{Engine: engineName, Terms: terms, URL: target},
	})
	if err != nil {
		return MatchResult{}, false
	}
	return MatchResult{Entry: e, Score: scoreWebSearch, Tier: TierPrefix}, true
}
