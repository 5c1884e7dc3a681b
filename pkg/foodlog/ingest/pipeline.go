package ingest

// Pipeline orchestrates the per-sentence flow:
// sentence → split → normalize → quantity extraction
type Pipeline struct {
	extractor *QuantityExtractor
}

// NewPipeline creates a pipeline around the given extractor
func NewPipeline(extractor *QuantityExtractor) *Pipeline {
	return &Pipeline{extractor: extractor}
}

// Process splits a sentence and extracts every mention in order. Mentions
// whose description came out empty are kept so callers can report them;
// they never match anything.
func (p *Pipeline) Process(sentence string) []Mention {
	parts := Split(sentence)
	mentions := make([]Mention, 0, len(parts))
	for _, raw := range parts {
		desc, qty, unit := p.extractor.Extract(raw)
		mentions = append(mentions, Mention{
			Raw:         raw,
			Description: desc,
			Quantity:    qty,
			Unit:        unit,
		})
	}
	return mentions
}
