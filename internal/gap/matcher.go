package gap

import (
	"strings"

	"roadmap/internal/knowledge"
)

// FieldMatcher decides whether the ledger covers a required field.
// Swappable so smarter matching (synonyms, embeddings) can replace the
// default without touching the analyzer.
type FieldMatcher interface {
	Matches(field string, facts []knowledge.Fact) bool
}

// SubstringMatcher is the default: a field counts as covered when its
// name appears, case-insensitively, anywhere in a fact's text or
// category. Crude by construction — "time" matches "overtime" — but it
// errs toward under-reporting gaps only for fields with common-word
// names, and those are reviewed at the gate anyway.
type SubstringMatcher struct{}

func (SubstringMatcher) Matches(field string, facts []knowledge.Fact) bool {
	needle := knowledge.Normalize(strings.ReplaceAll(field, "_", " "))
	if needle == "" {
		return false
	}
	for _, f := range facts {
		if strings.Contains(knowledge.Normalize(f.Text), needle) {
			return true
		}
		if strings.Contains(knowledge.Normalize(f.Category), needle) {
			return true
		}
	}
	return false
}
