package match

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/antzucaro/matchr"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/cognicore/foodlog/pkg/foodlog/internalerr"
)

// Metric scores whole-string similarity in [0, 1].
type Metric interface {
	// Prepare fixes the query and returns a scorer for candidates.
	Prepare(query string) func(candidate string) float64
}

// Metric names accepted by MetricByName.
const (
	MetricRatcliff    = "ratcliff"
	MetricLevenshtein = "levenshtein"
	MetricJaroWinkler = "jarowinkler"
)

// MetricByName resolves a configured metric. An empty name selects Ratcliff/Obershelp.
func MetricByName(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", MetricRatcliff:
		return Ratcliff{}, nil
	case MetricLevenshtein:
		return Levenshtein{}, nil
	case MetricJaroWinkler:
		return JaroWinkler{}, nil
	default:
		return nil, fmt.Errorf("unknown similarity metric %q: %w", name, internalerr.ErrInvalidConfig)
	}
}

// Ratcliff is the Ratcliff/Obershelp ratio 2·M/T over code points, with the
// junk heuristics of go-difflib's SequenceMatcher.
type Ratcliff struct{}

// Prepare implements Metric.
func (Ratcliff) Prepare(query string) func(string) float64 {
	sm := difflib.NewMatcher(nil, runeStrings(query))
	return func(candidate string) float64 {
		sm.SetSeq1(runeStrings(candidate))
		return sm.Ratio()
	}
}

// Levenshtein scores 1 - distance/max(len(a), len(b)).
type Levenshtein struct{}

// Prepare implements Metric.
func (Levenshtein) Prepare(query string) func(string) float64 {
	qLen := utf8.RuneCountInString(query)
	return func(candidate string) float64 {
		if query == candidate {
			return 1.0
		}
		maxLen := qLen
		if l := utf8.RuneCountInString(candidate); l > maxLen {
			maxLen = l
		}
		if maxLen == 0 {
			return 1.0
		}
		dist := levenshtein.ComputeDistance(query, candidate)
		return 1.0 - float64(dist)/float64(maxLen)
	}
}

// JaroWinkler scores with the Jaro-Winkler similarity.
type JaroWinkler struct{}

// Prepare implements Metric.
func (JaroWinkler) Prepare(query string) func(string) float64 {
	return func(candidate string) float64 {
		return matchr.JaroWinkler(query, candidate, false)
	}
}

func runeStrings(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// closest returns the index of the best candidate scoring at least cutoff.
// Equal scores prefer the lexicographically greater candidate; among equal
// candidates the first index wins.
func closest(query string, candidates []string, metric Metric, cutoff float64) (int, float64, bool) {
	score := metric.Prepare(query)
	best := -1
	bestScore := 0.0
	for i, c := range candidates {
		s := score(c)
		if s < cutoff {
			continue
		}
		if best < 0 || s > bestScore || (s == bestScore && c > candidates[best]) {
			best = i
			bestScore = s
		}
	}
	return best, bestScore, best >= 0
}
