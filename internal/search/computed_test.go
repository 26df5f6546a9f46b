package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/nexus/internal/entry"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		expr string
		want string
		ok   bool
	}{
		{"2+2", "4", true},
		{"10/4", "2.5", true},
		{"1/3", "0.333333", true},
		{"2^10", "1024", true},
		{"(1+2)*3", "9", true},
		{"7 % 3", "1", true},
		{"sqrt(16)", "4", true},
		{"sqrt(2)", "1.414214", true},
		{"cos(0)", "1", true},
		{"pi*2", "6.283185", true},
		{"1/0", "", false},
		{"firefox", "", false},
		{"2+", "", false},
		{"range(1, 999999999)", "", false},
		{`repeat("x", 1e9)`, "", false},
		{"(1..999999999)", "", false},
		{"len([1, 2, 3]) + 1", "", false},
		{"max(1, 2)", "", false},
		{"abs(-3)", "3", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, ok := Calculate(tt.expr)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculator_Provide(t *testing.T) {
	r, ok := Calculator{}.Provide("= 6*7", "= 6*7")
	require.True(t, ok)
	assert.Equal(t, "6*7 = 42", r.Entry.Name)
	assert.Equal(t, entry.Calculation{Expression: "6*7", Value: "42"}, r.Entry.Payload)
	assert.Equal(t, scoreCalculation, r.Score)

	for _, q := range []string{"firefox", "vs-code", "7zip", "c++", ""} {
		_, ok := Calculator{}.Provide(q, q)
		assert.False(t, ok, q)
	}
}

func TestWebSearch_Provide(t *testing.T) {
	tests := []struct {
		raw    string
		engine string
		url    string
	}{
		{"g golang generics", "Google", "https://www.google.com/search?q=golang+generics"},
		{"YT Lo-Fi Beats", "YouTube", "https://www.youtube.com/results?search_query=Lo-Fi+Beats"},
		{"gh sahilm/fuzzy", "GitHub", "https://github.com/search?q=sahilm%2Ffuzzy"},
		{"wiki Go (language)", "Wikipedia", "https://en.wikipedia.org/w/index.php?search=Go+%28language%29"},
		{"https://Go.dev/Doc", "", "https://Go.dev/Doc"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			r, ok := WebSearch{}.Provide(tt.raw, entry.Normalize(tt.raw))
			require.True(t, ok)
			p := r.Entry.Payload.(entry.WebSearch)
			assert.Equal(t, tt.engine, p.Engine)
			assert.Equal(t, tt.url, p.URL)
			assert.Equal(t, entry.KindWebSearch, r.Entry.Kind)
		})
	}

	for _, q := range []string{"g", "g ", "google", "gimp", "http://bad url"} {
		_, ok := WebSearch{}.Provide(q, entry.Normalize(q))
		assert.False(t, ok, q)
	}
}
