package epubtl

// Plan describes how a set of texts splits into blank, cached and pending
// work, and how the pending texts would be chunked.
type Plan struct {
	// Blank contains requested texts that are empty after trimming.
	Blank []string

	// Cached contains distinct texts already present in the store.
	Cached []string

	// Pending contains distinct texts that need translation, in first
	// appearance order.
	Pending []string

	// Chunks is the chunking of Pending.
	Chunks []Chunk

	// Errors contains InvalidTextErrors for pending texts that cannot be chunked.
	Errors []error
}

// PlanStats contains summary statistics for a plan.
type PlanStats struct {
	Blank   int
	Cached  int
	Pending int
	Chunks  int
	Invalid int
	Bytes   int // Total bytes that would be sent
}

// Stats returns summary statistics for the plan.
func (p *Plan) Stats() PlanStats {
	s := PlanStats{
		Blank:   len(p.Blank),
		Cached:  len(p.Cached),
		Pending: len(p.Pending),
		Chunks:  len(p.Chunks),
		Invalid: len(p.Errors),
	}
	for _, c := range p.Chunks {
		s.Bytes += c.Size
	}
	return s
}

// NeedsTranslation returns true if any text would be sent to the provider.
func (p *Plan) NeedsTranslation() bool {
	return len(p.Chunks) > 0
}

// newPlan classifies texts against the store entries. Each distinct text is
// listed once; blank texts are listed as requested.
func newPlan(texts []string, entries map[string]string, chunkSize int) *Plan {
	p := &Plan{}
	seen := make(map[string]bool, len(texts))

	for _, text := range texts {
		if isBlank(text) {
			p.Blank = append(p.Blank, text)
			continue
		}
		if seen[text] {
			continue
		}
		seen[text] = true

		if _, ok := entries[text]; ok {
			p.Cached = append(p.Cached, text)
			continue
		}
		p.Pending = append(p.Pending, text)
	}

	if len(p.Pending) > 0 {
		p.Chunks, p.Errors = ChunkTexts(p.Pending, chunkSize)
	}

	return p
}
