// Package knowledge implements the append-only, deduplicating fact
// ledger that feeds the gap analyzer and the deliverable generators.
//
// A fact's identity is (category, normalized text): ingesting the same
// fact twice is a no-op, never an overwrite. Facts are immutable once
// stored and kept in insertion order.
package knowledge

import "strings"

// Fact is a single atomic piece of extracted knowledge.
type Fact struct {
	Category   string  `json:"category"`
	Text       string  `json:"fact"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
}

// SourceRef identifies a system or team referenced by the knowledge base.
type SourceRef struct {
	System      string `json:"system"`
	Description string `json:"description,omitempty"`
}

// Ledger is the per-project knowledge base. It is exclusively mutated
// through Ingest/Merge and read by everything downstream.
type Ledger struct {
	Facts       []Fact      `json:"facts"`
	Sources     []SourceRef `json:"sources"`
	Exceptions  []string    `json:"exceptions"`
	Unknowns    []string    `json:"unknowns"`
	LastUpdated string      `json:"last_updated,omitempty"`
}

// NewLedger returns an empty ledger with non-nil slices, so a freshly
// persisted ledger serializes as empty arrays rather than nulls.
func NewLedger() *Ledger {
	return &Ledger{
		Facts:      []Fact{},
		Sources:    []SourceRef{},
		Exceptions: []string{},
		Unknowns:   []string{},
	}
}

// Normalize lowercases and collapses whitespace. Fact identity and all
// field matching run over normalized text.
func Normalize(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// identityKey is the dedup key for a fact.
func identityKey(f Fact) string {
	return f.Category + "\x00" + Normalize(f.Text)
}

// Ingest appends candidate facts, skipping duplicates and discarding
// malformed candidates (missing category or text). Returns the number
// actually appended. Confidence is clamped to [0,1].
func (l *Ledger) Ingest(facts []Fact) int {
	seen := make(map[string]bool, len(l.Facts))
	for _, f := range l.Facts {
		seen[identityKey(f)] = true
	}

	appended := 0
	for _, f := range facts {
		if strings.TrimSpace(f.Category) == "" || strings.TrimSpace(f.Text) == "" {
			continue // malformed: discard, never store empty
		}
		key := identityKey(f)
		if seen[key] {
			continue
		}
		seen[key] = true
		f.Confidence = clampConfidence(f.Confidence)
		l.Facts = append(l.Facts, f)
		appended++
	}

	if appended > 0 {
		l.LastUpdated = timeNow().UTC().Format(timeLayout)
	}
	return appended
}

// AddSources appends source references, deduplicating on system name.
func (l *Ledger) AddSources(sources []SourceRef) int {
	seen := make(map[string]bool, len(l.Sources))
	for _, s := range l.Sources {
		seen[s.System] = true
	}

	appended := 0
	for _, s := range sources {
		if strings.TrimSpace(s.System) == "" || seen[s.System] {
			continue
		}
		seen[s.System] = true
		l.Sources = append(l.Sources, s)
		appended++
	}
	return appended
}

// AddExceptions appends exception descriptions, skipping exact duplicates.
func (l *Ledger) AddExceptions(exceptions []string) int {
	return appendUnique(&l.Exceptions, exceptions)
}

// AddUnknowns appends open questions, skipping exact duplicates.
func (l *Ledger) AddUnknowns(unknowns []string) int {
	return appendUnique(&l.Unknowns, unknowns)
}

// Query returns facts, optionally filtered by category, in insertion
// order. An empty category returns everything.
func (l *Ledger) Query(category string) []Fact {
	if category == "" {
		out := make([]Fact, len(l.Facts))
		copy(out, l.Facts)
		return out
	}
	var out []Fact
	for _, f := range l.Facts {
		if f.Category == category {
			out = append(out, f)
		}
	}
	return out
}

// CategoryCounts returns the number of facts per category.
func (l *Ledger) CategoryCounts() map[string]int {
	counts := make(map[string]int)
	for _, f := range l.Facts {
		counts[f.Category]++
	}
	return counts
}

func appendUnique(dst *[]string, items []string) int {
	seen := make(map[string]bool, len(*dst))
	for _, s := range *dst {
		seen[Normalize(s)] = true
	}

	appended := 0
	for _, s := range items {
		if strings.TrimSpace(s) == "" {
			continue
		}
		key := Normalize(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		*dst = append(*dst, s)
		appended++
	}
	return appended
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
