package search

import (
	"context"
	"math"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"
	"github.com/sahilm/fuzzy"

	"github.com/Aman-CERP/nexus/internal/entry"
	"github.com/Aman-CERP/nexus/internal/mru"
)

// Weights are the tunable constants of the fuzzy score. Only the band
// [FuzzyFloor, FuzzyCeiling) is fixed; everything inside it is policy.
type Weights struct {
	// Base is added to every match before bonuses.
	Base int
	// MatchScale multiplies the raw subsequence score, which rewards
	// consecutive runs and word-boundary hits and penalizes skipped characters.
	MatchScale int
	// FrequencyStep is the bonus per doubling of the use count.
	FrequencyStep int
	// FrequencyCap bounds the frequency bonus.
	FrequencyCap int
	// RecencyMax is the bonus for the most recently launched entry.
	RecencyMax int
	// RecencyWindow is how many recent entries receive a (linearly decaying) bonus.
	RecencyWindow int
}

// DefaultWeights returns the weights used by the launcher.
func DefaultWeights() Weights {
	return Weights{
		Base:          120,
		MatchScale:    3,
		FrequencyStep: 15,
		FrequencyCap:  90,
		RecencyMax:    60,
		RecencyWindow: 20,
	}
}

// chunkSize is the number of candidates scored per pool task.
const chunkSize = 256

// Match is a fuzzy hit before it is turned into a MatchResult.
type Match struct {
	Entry     entry.Entry
	Score     int
	Positions []int
}

// Scorer computes fuzzy-tier scores. It is stateless per entry and safe
// for concurrent use.
type Scorer struct {
	weights Weights
	pool    *ants.Pool
}

// NewScorer creates a Scorer. A nil pool scores on the calling goroutine.
func NewScorer(w Weights, pool *ants.Pool) *Scorer {
	return &Scorer{weights: w, pool: pool}
}

// Score matches query as an ordered subsequence of the entry name, or of
// its description at half weight. It returns false when neither matches.
func (s *Scorer) Score(query string, e entry.Entry, usage *mru.Snapshot) (Match, bool) {
	pattern := fuzzyPattern(query)
	if pattern == "" {
		return Match{}, false
	}
	out := s.scoreChunk(pattern, []entry.Entry{e}, usage)
	if len(out) == 0 {
		return Match{}, false
	}
	return out[0], true
}

// ScoreAll scores candidates in parallel and returns the matches in
// candidate order.
func (s *Scorer) ScoreAll(ctx context.Context, query string, candidates []entry.Entry, usage *mru.Snapshot) []Match {
	pattern := fuzzyPattern(query)
	if pattern == "" || len(candidates) == 0 {
		return nil
	}

	chunks := (len(candidates) + chunkSize - 1) / chunkSize
	results := make([][]Match, chunks)

	var wg sync.WaitGroup
	for i := range chunks {
		if ctx.Err() != nil {
			break
		}
		lo := i * chunkSize
		hi := min(lo+chunkSize, len(candidates))
		task := func() {
			defer wg.Done()
			results[i] = s.scoreChunk(pattern, candidates[lo:hi], usage)
		}
		wg.Add(1)
		if s.pool == nil || s.pool.Submit(task) != nil {
			task()
		}
	}
	wg.Wait()

	var out []Match
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

func (s *Scorer) scoreChunk(pattern string, chunk []entry.Entry, usage *mru.Snapshot) []Match {
	name := make([]*fuzzy.Match, len(chunk))
	for _, h := range fuzzy.FindFrom(pattern, foldedNames(chunk)) {
		name[h.Index] = &h
	}
	desc := make([]*fuzzy.Match, len(chunk))
	for _, h := range fuzzy.FindFrom(pattern, details(chunk)) {
		desc[h.Index] = &h
	}

	var out []Match
	for i, e := range chunk {
		n, d := name[i], desc[i]
		switch {
		case n != nil && (d == nil || n.Score >= d.Score/2):
			out = append(out, s.match(e, n.Score, n.Str, n.MatchedIndexes, usage))
		case d != nil:
			out = append(out, s.match(e, d.Score/2, "", nil, usage))
		}
	}
	return out
}

// match builds the fuzzy-tier result for a raw subsequence score. Positions
// are only reported for name matches.
func (s *Scorer) match(e entry.Entry, raw int, str string, matched []int, usage *mru.Snapshot) Match {
	w := s.weights
	score := w.Base + raw*w.MatchScale + s.usageBonus(e.ID, usage)
	score = max(FuzzyFloor, min(FuzzyCeiling-1, score))
	return Match{Entry: e, Score: score, Positions: runeOffsets(str, matched)}
}

// usageBonus rewards frequent use with diminishing returns and recent use
// by rank, so the result depends only on the MRU snapshot.
func (s *Scorer) usageBonus(id entry.ID, usage *mru.Snapshot) int {
	if usage == nil {
		return 0
	}
	w := s.weights
	bonus := 0
	if u := usage.Get(id); u.UseCount > 0 {
		bonus += min(w.FrequencyCap, int(math.Log2(float64(u.UseCount)+1)*float64(w.FrequencyStep)))
	}
	if rank, ok := usage.Rank(id); ok && rank < w.RecencyWindow {
		bonus += w.RecencyMax * (w.RecencyWindow - rank) / w.RecencyWindow
	}
	return bonus
}

// fuzzyPattern keeps only letters and digits, so "vs code" and
// "visual-studio" still match "visual studio code".
func fuzzyPattern(query string) string {
	out := make([]rune, 0, len(query))
	for _, r := range query {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, r)
		}
	}
	return string(out)
}

type foldedNames []entry.Entry

func (f foldedNames) String(i int) string { return f[i].Folded }
func (f foldedNames) Len() int            { return len(f) }

type details []entry.Entry

func (d details) String(i int) string { return d[i].Detail }
func (d details) Len() int            { return len(d) }

// runeOffsets converts byte offsets in s to rune offsets.
func runeOffsets(s string, byteIdx []int) []int {
	if len(byteIdx) == 0 {
		return nil
	}
	out := make([]int, len(byteIdx))
	for i, b := range byteIdx {
		out[i] = utf8.RuneCountInString(s[:b])
	}
	return out
}
