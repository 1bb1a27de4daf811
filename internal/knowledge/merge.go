package knowledge

// Payload is one batch of extracted knowledge headed for the ledger.
// The extraction package produces these from raw agent output.
type Payload struct {
	Facts      []Fact      `json:"facts"`
	Sources    []SourceRef `json:"sources"`
	Exceptions []string    `json:"exceptions"`
	Unknowns   []string    `json:"unknowns"`
}

// Empty reports whether the payload carries nothing worth merging.
func (p Payload) Empty() bool {
	return len(p.Facts) == 0 && len(p.Sources) == 0 &&
		len(p.Exceptions) == 0 && len(p.Unknowns) == 0
}

// MergeStats summarizes what a Merge actually changed.
type MergeStats struct {
	FactsAdded      int `json:"facts_added"`
	SourcesAdded    int `json:"sources_added"`
	ExceptionsAdded int `json:"exceptions_added"`
	UnknownsAdded   int `json:"unknowns_added"`
}

// Total returns the number of items appended across all sections.
func (s MergeStats) Total() int {
	return s.FactsAdded + s.SourcesAdded + s.ExceptionsAdded + s.UnknownsAdded
}

// Merge folds a payload into the ledger. Merging the same payload twice
// is a no-op the second time: every section deduplicates.
func (l *Ledger) Merge(p Payload) MergeStats {
	return MergeStats{
		FactsAdded:      l.Ingest(p.Facts),
		SourcesAdded:    l.AddSources(p.Sources),
		ExceptionsAdded: l.AddExceptions(p.Exceptions),
		UnknownsAdded:   l.AddUnknowns(p.Unknowns),
	}
}
