package lexicon

import (
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Lexicon stores the dialect table: informal or transliterated food words
// mapped to the canonical English words used by the reference dataset.
//
//	rice        <- bhat, vat, vaat
//	rice lentil <- khichuri, khichdi
//
// Canonical forms may span several words; variants are matched as whole words.
// Variants are applied in declaration order, each one against the text left
// by the previous substitutions.
type Lexicon struct {
	// canonical -> variants, in declaration order
	synonyms map[string][]string

	// variant -> canonical
	reverseIndex map[string]string

	// every variant once, in the order it was first declared
	order []string
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		synonyms:     make(map[string][]string),
		reverseIndex: make(map[string]string),
	}
}

// Group is one canonical form and the dialect words that expand to it.
type Group struct {
	Canonical string   `yaml:"canonical"`
	Variants  []string `yaml:"variants"`
}

// FromGroups builds a lexicon from groups in declaration order.
func FromGroups(groups []Group) *Lexicon {
	lex := New()
	for _, g := range groups {
		lex.AddSynonymGroup(g.Canonical, g.Variants)
	}
	return lex
}

// LoadFromYAML loads dialect mappings from a YAML file.
//
// Expected format:
//
//	synonyms:
//	  - canonical: rice
//	    variants: [bhat, vat, vaat]
//	  - canonical: lentil
//	    variants: [daal, dal, dhal]
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config struct {
		Synonyms []Group `yaml:"synonyms"`
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return FromGroups(config.Synonyms), nil
}

// AddSynonymGroup registers variants that expand to canonical.
// Re-adding a canonical replaces its variant list; a variant claimed by an
// earlier group moves to this one but keeps its first position.
func (l *Lexicon) AddSynonymGroup(canonical string, variants []string) {
	canonical = strings.ToLower(strings.TrimSpace(canonical))
	if canonical == "" {
		return
	}

	if oldVariants, exists := l.synonyms[canonical]; exists {
		for _, oldV := range oldVariants {
			if l.reverseIndex[oldV] == canonical {
				delete(l.reverseIndex, oldV)
				l.removeFromOrder(oldV)
			}
		}
	}

	normalized := make([]string, 0, len(variants))
	seen := make(map[string]bool, len(variants))
	for _, v := range variants {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		normalized = append(normalized, v)
	}
	l.synonyms[canonical] = normalized

	for _, v := range normalized {
		if prev, ok := l.reverseIndex[v]; ok {
			if prev != canonical {
				l.synonyms[prev] = remove(l.synonyms[prev], v)
			}
		} else {
			l.order = append(l.order, v)
		}
		l.reverseIndex[v] = canonical
	}
}

// Normalize returns the canonical expansion of a single word, or the word
// itself when it is not a dialect entry.
func (l *Lexicon) Normalize(token string) string {
	token = strings.ToLower(token)
	if canonical, ok := l.reverseIndex[token]; ok {
		return canonical
	}
	return token
}

// Substitute replaces whole-word occurrences of every variant with its
// canonical form. The input is expected to be lower-cased already.
func (l *Lexicon) Substitute(text string) string {
	for _, v := range l.order {
		text = replaceWord(text, v, l.reverseIndex[v])
	}
	return text
}

func (l *Lexicon) removeFromOrder(v string) {
	l.order = remove(l.order, v)
}

// replaceWord replaces non-overlapping occurrences of word that are not
// adjacent to another word character.
func replaceWord(text, word, repl string) string {
	if word == "" || !strings.Contains(text, word) {
		return text
	}

	var b strings.Builder
	i := 0
	for i < len(text) {
		j := strings.Index(text[i:], word)
		if j < 0 {
			break
		}
		start := i + j
		end := start + len(word)
		if atBoundary(text, start, end) {
			b.WriteString(text[i:start])
			b.WriteString(repl)
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		b.WriteString(text[i : start+size])
		i = start + size
	}
	b.WriteString(text[i:])
	return b.String()
}

func atBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func remove(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() LexiconStats {
	return LexiconStats{
		SynonymGroups: len(l.synonyms),
		TotalVariants: len(l.order),
	}
}

// LexiconStats holds statistics about lexicon contents.
type LexiconStats struct {
	SynonymGroups int // Number of canonical forms
	TotalVariants int // Number of dialect words across all groups
}
