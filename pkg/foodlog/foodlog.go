// Package foodlog turns free-text food logs ("2 cups bhat/ chicken curry")
// into gram amounts keyed by reference food identifier.
package foodlog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cognicore/foodlog/pkg/foodlog/convert"
	"github.com/cognicore/foodlog/pkg/foodlog/ingest"
	"github.com/cognicore/foodlog/pkg/foodlog/internalerr"
	"github.com/cognicore/foodlog/pkg/foodlog/match"
)

// Parser is the main food-log facade. It is immutable after New and safe
// for concurrent use.
type Parser struct {
	pipeline  *ingest.Pipeline
	matcher   *match.Matcher
	converter *convert.Converter
	log       zerolog.Logger
}

// Options configures a Parser
type Options struct {
	Pipeline  *ingest.Pipeline
	Matcher   *match.Matcher
	Converter *convert.Converter
	Logger    *zerolog.Logger // nil disables logging
}

// New creates a Parser with the given dependencies
func New(opts Options) (*Parser, error) {
	if opts.Pipeline == nil || opts.Matcher == nil || opts.Converter == nil {
		return nil, fmt.Errorf("parser needs a pipeline, matcher and converter: %w", internalerr.ErrInvalidInput)
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Parser{
		pipeline:  opts.Pipeline,
		matcher:   opts.Matcher,
		converter: opts.Converter,
		log:       logger,
	}, nil
}

// Entry is one food in a log.
type Entry struct {
	AmountGrams float64 `json:"amount_gm"`
	Description string  `json:"description"`
}

// Log maps a reference food identifier to the amount eaten.
type Log map[string]Entry

// Reasons a mention left no entry in the log.
const (
	SkipEmptyDescription = "empty description"
	SkipNoMatch          = "no match"
	SkipNoIdentifier     = "matched row has no identifier"
)

// MentionResult traces one mention through matching and conversion.
type MentionResult struct {
	Mention ingest.Mention
	Match   match.Result // zero when Skipped is SkipEmptyDescription or SkipNoMatch
	Grams   float64      // rounded to one decimal
	Key     string
	Skipped string // empty when the mention produced a log entry
}

// Parse turns a sentence into a log. Mentions that match nothing are
// dropped; when two mentions resolve to the same food the later one
// replaces the earlier entry.
func (p *Parser) Parse(sentence string) (Log, error) {
	_, log, err := p.ParseDetailed(sentence)
	return log, err
}

// ParseDetailed is Parse plus the per-mention trace, in mention order.
func (p *Parser) ParseDetailed(sentence string) ([]MentionResult, Log, error) {
	mentions := p.pipeline.Process(sentence)
	results := make([]MentionResult, 0, len(mentions))
	log := make(Log, len(mentions))

	for _, m := range mentions {
		res := MentionResult{Mention: m}
		p.log.Debug().
			Str("mention", m.Raw).
			Str("description", m.Description).
			Float64("quantity", m.Quantity).
			Str("unit", m.Unit).
			Msg("extracted")

		if m.Description == "" {
			res.Skipped = SkipEmptyDescription
			results = append(results, res)
			continue
		}

		matched, ok := p.matcher.Match(m.Description)
		if !ok {
			p.log.Debug().Str("description", m.Description).Msg("no match")
			res.Skipped = SkipNoMatch
			results = append(results, res)
			continue
		}
		res.Match = matched
		p.log.Debug().
			Str("description", m.Description).
			Str("food", matched.Record.Description).
			Stringer("kind", matched.Kind).
			Float64("score", matched.Score).
			Msg("matched")

		grams, err := p.converter.ToGrams(m.Quantity, m.Unit, matched.Record)
		if err != nil {
			return nil, nil, fmt.Errorf("convert %q: %w", m.Raw, err)
		}
		res.Grams = round1(grams)

		key, ok := matched.Record.Key()
		if !ok {
			p.log.Warn().
				Str("food", matched.Record.Description).
				Int("row", matched.Row).
				Msg("matched row has no identifier, skipping")
			res.Skipped = SkipNoIdentifier
			results = append(results, res)
			continue
		}
		res.Key = key

		log[key] = Entry{
			AmountGrams: res.Grams,
			Description: strings.ToUpper(matched.Record.Description),
		}
		results = append(results, res)
	}

	return results, log, nil
}

// round1 rounds half to even on the exact binary value, so 0.25 becomes
// 0.2 and 0.35 (stored as 0.34999...) becomes 0.3.
func round1(x float64) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	if err != nil {
		return x
	}
	return v
}
