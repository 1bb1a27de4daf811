package knowledge

import (
	"testing"
	"time"
)

func init() {
	timeNow = func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	}
}

// --- Normalize ---

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SAP", "sap"},
		{"  SAP  ", "sap"},
		{"Invoice   Booking\tProcess", "invoice booking process"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// --- Ingest ---

func TestIngest_AppendsNewFacts(t *testing.T) {
	l := NewLedger()
	n := l.Ingest([]Fact{
		{Category: "systems", Text: "SAP", Confidence: 0.9},
		{Category: "inputs", Text: "PDF invoices arrive by email", Confidence: 0.8},
	})
	if n != 2 {
		t.Errorf("Ingest appended %d, want 2", n)
	}
	if len(l.Facts) != 2 {
		t.Errorf("ledger holds %d facts, want 2", len(l.Facts))
	}
	if l.LastUpdated == "" {
		t.Error("LastUpdated should be stamped after a successful ingest")
	}
}

func TestIngest_DedupIsIdempotent(t *testing.T) {
	l := NewLedger()
	fact := Fact{Category: "systems", Text: "SAP", Confidence: 0.9}

	if n := l.Ingest([]Fact{fact}); n != 1 {
		t.Fatalf("first ingest appended %d, want 1", n)
	}
	if n := l.Ingest([]Fact{fact}); n != 0 {
		t.Errorf("second ingest appended %d, want 0", n)
	}
	if len(l.Facts) != 1 {
		t.Errorf("ledger holds %d facts, want 1", len(l.Facts))
	}
}

func TestIngest_DedupNormalizesText(t *testing.T) {
	l := NewLedger()
	l.Ingest([]Fact{{Category: "systems", Text: "SAP", Confidence: 0.9}})
	n := l.Ingest([]Fact{{Category: "systems", Text: "  sap ", Confidence: 0.5}})
	if n != 0 {
		t.Errorf("case/whitespace variant appended %d, want 0", n)
	}
	// Original fact untouched: dedup never overwrites.
	if l.Facts[0].Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9 (no overwrite)", l.Facts[0].Confidence)
	}
}

func TestIngest_SameTextDifferentCategory(t *testing.T) {
	l := NewLedger()
	l.Ingest([]Fact{{Category: "systems", Text: "SAP"}})
	if n := l.Ingest([]Fact{{Category: "outputs", Text: "SAP"}}); n != 1 {
		t.Errorf("same text in a different category appended %d, want 1", n)
	}
}

func TestIngest_DiscardsMalformed(t *testing.T) {
	l := NewLedger()
	n := l.Ingest([]Fact{
		{Category: "", Text: "orphan"},
		{Category: "systems", Text: "   "},
	})
	if n != 0 || len(l.Facts) != 0 {
		t.Errorf("malformed facts must be discarded, appended %d", n)
	}
}

func TestIngest_ClampsConfidence(t *testing.T) {
	l := NewLedger()
	l.Ingest([]Fact{
		{Category: "systems", Text: "a", Confidence: 1.7},
		{Category: "systems", Text: "b", Confidence: -0.3},
	})
	if l.Facts[0].Confidence != 1 {
		t.Errorf("confidence = %v, want clamped to 1", l.Facts[0].Confidence)
	}
	if l.Facts[1].Confidence != 0 {
		t.Errorf("confidence = %v, want clamped to 0", l.Facts[1].Confidence)
	}
}

func TestIngest_PreservesInsertionOrder(t *testing.T) {
	l := NewLedger()
	l.Ingest([]Fact{
		{Category: "steps", Text: "receive invoice"},
		{Category: "steps", Text: "validate amounts"},
		{Category: "steps", Text: "post to ledger"},
	})
	want := []string{"receive invoice", "validate amounts", "post to ledger"}
	for i, w := range want {
		if l.Facts[i].Text != w {
			t.Errorf("Facts[%d] = %q, want %q", i, l.Facts[i].Text, w)
		}
	}
}

// --- Query ---

func TestQuery_FiltersByCategory(t *testing.T) {
	l := NewLedger()
	l.Ingest([]Fact{
		{Category: "systems", Text: "SAP"},
		{Category: "inputs", Text: "email"},
		{Category: "systems", Text: "Excel"},
	})

	got := l.Query("systems")
	if len(got) != 2 {
		t.Fatalf("Query(systems) length = %d, want 2", len(got))
	}
	if got[0].Text != "SAP" || got[1].Text != "Excel" {
		t.Errorf("Query(systems) = %v, out of order", got)
	}

	if all := l.Query(""); len(all) != 3 {
		t.Errorf("Query(\"\") length = %d, want 3", len(all))
	}
}

func TestCategoryCounts(t *testing.T) {
	l := NewLedger()
	l.Ingest([]Fact{
		{Category: "systems", Text: "SAP"},
		{Category: "systems", Text: "Excel"},
		{Category: "inputs", Text: "email"},
	})
	counts := l.CategoryCounts()
	if counts["systems"] != 2 || counts["inputs"] != 1 {
		t.Errorf("CategoryCounts = %v", counts)
	}
}

// --- Merge ---

func TestMerge_AllSections(t *testing.T) {
	l := NewLedger()
	p := Payload{
		Facts:      []Fact{{Category: "systems", Text: "SAP"}},
		Sources:    []SourceRef{{System: "SAP", Description: "ERP"}},
		Exceptions: []string{"invoices over 10k need manager approval"},
		Unknowns:   []string{"who owns the vendor master data?"},
	}

	stats := l.Merge(p)
	if stats.Total() != 4 {
		t.Errorf("Merge total = %d, want 4 (%+v)", stats.Total(), stats)
	}

	// Merging the same payload again changes nothing.
	if again := l.Merge(p); again.Total() != 0 {
		t.Errorf("second Merge total = %d, want 0 (%+v)", again.Total(), again)
	}
}

func TestMerge_DedupsSourcesBySystem(t *testing.T) {
	l := NewLedger()
	l.Merge(Payload{Sources: []SourceRef{{System: "SAP", Description: "ERP"}}})
	stats := l.Merge(Payload{Sources: []SourceRef{{System: "SAP", Description: "different text"}}})
	if stats.SourcesAdded != 0 {
		t.Errorf("duplicate system appended %d sources, want 0", stats.SourcesAdded)
	}
}

func TestPayload_Empty(t *testing.T) {
	if !(Payload{}).Empty() {
		t.Error("zero payload should be empty")
	}
	if (Payload{Unknowns: []string{"x"}}).Empty() {
		t.Error("payload with unknowns should not be empty")
	}
}
