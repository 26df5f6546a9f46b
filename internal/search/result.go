package search

import (
	"fmt"

	"github.com/Aman-CERP/nexus/internal/entry"
)

// Score bands. Every prefix-tier score is at least PrefixFloor; every
// fuzzy-tier score lies in [FuzzyFloor, FuzzyCeiling).
const (
	PrefixFloor  = 1000
	FuzzyFloor   = 10
	FuzzyCeiling = 500
)

// Tier is the priority class of a result.
type Tier uint8

const (
	// TierPrefix results have a word starting with the query.
	TierPrefix Tier = iota + 1
	// TierFuzzy results match the query as a subsequence only.
	TierFuzzy
	// TierRecent results answer the empty query from launch history.
	TierRecent
)

func (t Tier) String() string {
	switch t {
	case TierPrefix:
		return "prefix"
	case TierFuzzy:
		return "fuzzy"
	case TierRecent:
		return "recent"
	}
	return fmt.Sprintf("tier(%d)", uint8(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// MatchResult is one ranked entry. Entry carries the MRU fields as of the
// search.
type MatchResult struct {
	Entry entry.Entry
	Score int
	Tier  Tier
	// Positions are rune offsets into the folded name that matched, if known.
	Positions []int
}

// ResultSet is the answer to one query.
type ResultSet struct {
	// Seq is the sequence number of the query; zero outside the pipeline.
	Seq     uint64
	Query   string
	Results []MatchResult
}

// Len returns the number of results.
func (r ResultSet) Len() int { return len(r.Results) }
