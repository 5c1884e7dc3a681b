package match

import (
	"strings"

	"github.com/cognicore/foodlog/pkg/foodlog/dataset"
	"github.com/cognicore/foodlog/pkg/foodlog/ingest"
)

// Kind tells which pass produced a match.
type Kind int

const (
	// TokenMatch scores are the fraction of query tokens found in the record.
	TokenMatch Kind = iota + 1
	// FuzzyMatch scores are always FuzzySentinelScore.
	FuzzyMatch
)

func (k Kind) String() string {
	switch k {
	case TokenMatch:
		return "token"
	case FuzzyMatch:
		return "fuzzy"
	default:
		return "none"
	}
}

// FuzzySentinelScore marks a whole-string fallback match. It is a fixed
// label, not a measure of how close the strings were.
const FuzzySentinelScore = 0.5

// Result is a matched reference row.
type Result struct {
	Record *dataset.Record
	Row    int
	Kind   Kind
	Score  float64
	Tokens []string // query tokens after stopword filtering
}

// Config holds the matcher thresholds.
type Config struct {
	// TokenThreshold is the containment score below which the fuzzy pass runs.
	TokenThreshold float64 `yaml:"token_threshold"`
	// FuzzyCutoff is the minimum similarity (inclusive) for a fuzzy match.
	FuzzyCutoff float64 `yaml:"fuzzy_cutoff"`
	// KeepWeakTokenMatch returns a non-zero token match below the threshold
	// when the fuzzy pass finds nothing.
	KeepWeakTokenMatch bool `yaml:"keep_weak_token_match"`
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		TokenThreshold: 0.3,
		FuzzyCutoff:    0.3,
	}
}

// Matcher finds the reference row that best fits a cleaned description.
// It only reads its dataset and is safe for concurrent use.
type Matcher struct {
	dataset   *dataset.Dataset
	tokenizer *ingest.Tokenizer
	metric    Metric
	cfg       Config
	descs     []string
}

// New creates a matcher. A nil metric selects Ratcliff/Obershelp.
func New(ds *dataset.Dataset, tokenizer *ingest.Tokenizer, metric Metric, cfg Config) *Matcher {
	if metric == nil {
		metric = Ratcliff{}
	}
	return &Matcher{
		dataset:   ds,
		tokenizer: tokenizer,
		metric:    metric,
		cfg:       cfg,
		descs:     ds.Descriptions(),
	}
}

// Match scores description against every row. Rows are scanned in dataset
// order and a later row must score strictly higher to replace an earlier one.
func (m *Matcher) Match(description string) (Result, bool) {
	tokens := m.tokenizer.Tokenize(description)
	if len(tokens) == 0 {
		return Result{}, false
	}

	best := -1
	bestScore := 0.0
	for i := 0; i < m.dataset.Len(); i++ {
		desc := m.dataset.At(i).LowerDescription()
		if desc == "" {
			continue
		}
		hits := 0
		for _, tok := range tokens {
			if strings.Contains(desc, tok) {
				hits++
			}
		}
		score := float64(hits) / float64(len(tokens))
		if score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best >= 0 && bestScore >= m.cfg.TokenThreshold {
		return m.result(best, TokenMatch, bestScore, tokens), true
	}

	if row, _, ok := closest(description, m.descs, m.metric, m.cfg.FuzzyCutoff); ok {
		return m.result(row, FuzzyMatch, FuzzySentinelScore, tokens), true
	}

	if m.cfg.KeepWeakTokenMatch && best >= 0 {
		return m.result(best, TokenMatch, bestScore, tokens), true
	}
	return Result{}, false
}

func (m *Matcher) result(row int, kind Kind, score float64, tokens []string) Result {
	return Result{
		Record: m.dataset.At(row),
		Row:    row,
		Kind:   kind,
		Score:  score,
		Tokens: tokens,
	}
}
