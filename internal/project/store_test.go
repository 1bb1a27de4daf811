package project

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"roadmap/internal/errs"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(t.TempDir())
}

// --- Create ---

func TestCreate_WritesProjectJSON(t *testing.T) {
	fs := newTestStore(t)
	p := NewProject("invoice-2024", "Invoice 2024", "daily invoice booking")

	if err := fs.Create(p); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(fs.ProjectDir("invoice-2024"), ProjectFile)); err != nil {
		t.Errorf("project.json not written: %v", err)
	}
}

func TestCreate_BuildsDirectoryStructure(t *testing.T) {
	fs := newTestStore(t)
	if err := fs.Create(NewProject("p1", "P1", "")); err != nil {
		t.Fatal(err)
	}

	dirs := []string{
		filepath.Join(fs.ProjectDir("p1"), "knowledge", "uploaded"),
		filepath.Join(fs.ProjectDir("p1"), "knowledge", "sessions"),
		filepath.Join(fs.ProjectDir("p1"), "knowledge", "extracted"),
		filepath.Join(fs.ProjectDir("p1"), "gate_reviews"),
		fs.DeliverablesDir("p1", PhaseStandardization),
		fs.DeliverablesDir("p1", PhaseAutonomization),
	}
	for _, d := range dirs {
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			t.Errorf("directory %s missing", d)
		}
	}
}

func TestCreate_RejectsDuplicate(t *testing.T) {
	fs := newTestStore(t)
	if err := fs.Create(NewProject("p1", "P1", "")); err != nil {
		t.Fatal(err)
	}
	err := fs.Create(NewProject("p1", "P1 again", ""))
	if err == nil {
		t.Error("creating a duplicate project should fail")
	}
}

func TestCreate_RejectsInvalidID(t *testing.T) {
	fs := newTestStore(t)
	p := NewProject("Bad ID", "Bad", "")
	if err := fs.Create(p); errs.KindOf(err) != errs.Validation {
		t.Errorf("expected ValidationError, got: %v", err)
	}
}

// --- Load / Save round trip ---

func TestLoadSave_RoundTrip(t *testing.T) {
	fs := newTestStore(t)
	p := NewProject("p1", "P1", "desc")
	if err := fs.Create(p); err != nil {
		t.Fatal(err)
	}

	if err := p.UpdateDeliverable(PhaseStandardization, "sipoc", DeliverableUpdate{Completeness: intPtr(70)}); err != nil {
		t.Fatal(err)
	}
	if err := fs.Save(p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := fs.Load("p1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := loaded.Phases[PhaseStandardization].Deliverables["sipoc"].Completeness; got != 70 {
		t.Errorf("round-tripped completeness = %d, want 70", got)
	}
	if loaded.Name != "P1" || loaded.Description != "desc" {
		t.Errorf("metadata lost in round trip: %+v", loaded)
	}
}

func TestLoad_NotFound(t *testing.T) {
	fs := newTestStore(t)
	_, err := fs.Load("missing")
	if !errs.IsNotFound(err) {
		t.Errorf("expected NotFound, got: %v", err)
	}
}

func TestLoad_RejectsTraversalID(t *testing.T) {
	fs := newTestStore(t)
	_, err := fs.Load("../etc/passwd")
	if errs.KindOf(err) != errs.Validation {
		t.Errorf("expected ValidationError before any I/O, got: %v", err)
	}
}

func TestLoad_RejectsCorruptWeights(t *testing.T) {
	fs := newTestStore(t)
	p := NewProject("p1", "P1", "")
	if err := fs.Create(p); err != nil {
		t.Fatal(err)
	}

	// Corrupt the stored record: weights no longer sum to 100.
	p.Phases[PhaseOptimization].GateCriteria.Weights["waste_analysis"] = 99
	if err := fs.write(p); err != nil {
		t.Fatal(err)
	}

	if _, err := fs.Load("p1"); errs.KindOf(err) != errs.Validation {
		t.Errorf("loading bad weight sum should be a ValidationError, got: %v", err)
	}
}

// --- Mutate ---

func TestMutate_AppliesAndPersists(t *testing.T) {
	fs := newTestStore(t)
	if err := fs.Create(NewProject("p1", "P1", "")); err != nil {
		t.Fatal(err)
	}

	_, err := fs.Mutate("p1", func(p *Project) error {
		return p.UpdateDeliverable(PhaseStandardization, "flowchart", DeliverableUpdate{Completeness: intPtr(50)})
	})
	if err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}

	loaded, _ := fs.Load("p1")
	if got := loaded.Phases[PhaseStandardization].Deliverables["flowchart"].Completeness; got != 50 {
		t.Errorf("persisted completeness = %d, want 50", got)
	}
}

func TestMutate_ErrorDoesNotPersist(t *testing.T) {
	fs := newTestStore(t)
	if err := fs.Create(NewProject("p1", "P1", "")); err != nil {
		t.Fatal(err)
	}

	_, err := fs.Mutate("p1", func(p *Project) error {
		p.Name = "mutated"
		return p.UpdateDeliverable(PhaseStandardization, "bogus", DeliverableUpdate{})
	})
	if !errs.IsNotFound(err) {
		t.Fatalf("expected NotFound from fn, got: %v", err)
	}

	loaded, _ := fs.Load("p1")
	if loaded.Name != "P1" {
		t.Error("failed Mutate must not persist partial changes")
	}
}

func TestMutate_SerializesConcurrentWriters(t *testing.T) {
	fs := newTestStore(t)
	if err := fs.Create(NewProject("p1", "P1", "")); err != nil {
		t.Fatal(err)
	}

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = fs.Mutate("p1", func(p *Project) error {
				p.AddKnowledgeSource("uploaded/file.txt", "notes", "tester")
				return nil
			})
		}()
	}
	wg.Wait()

	loaded, err := fs.Load("p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.KnowledgeSources) != writers {
		t.Errorf("knowledge sources = %d, want %d (lost update)", len(loaded.KnowledgeSources), writers)
	}
}

// --- List / Archive ---

func TestList_NewestFirst(t *testing.T) {
	fs := newTestStore(t)

	older := NewProject("older", "Older", "")
	older.Created = "2026-01-01T00:00:00Z"
	newer := NewProject("newer", "Newer", "")
	newer.Created = "2026-06-01T00:00:00Z"

	if err := fs.Create(older); err != nil {
		t.Fatal(err)
	}
	if err := fs.Create(newer); err != nil {
		t.Fatal(err)
	}

	list, err := fs.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("List length = %d, want 2", len(list))
	}
	if list[0].ID != "newer" {
		t.Errorf("List[0] = %s, want newer", list[0].ID)
	}
}

func TestList_EmptyRoot(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "nonexistent"))
	list, err := fs.List()
	if err != nil {
		t.Fatalf("List on missing root should not error: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("List length = %d, want 0", len(list))
	}
}

func TestArchive_MovesAndExcludesFromList(t *testing.T) {
	fs := newTestStore(t)
	if err := fs.Create(NewProject("p1", "P1", "")); err != nil {
		t.Fatal(err)
	}

	if err := fs.Archive("p1"); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	if _, err := fs.Load("p1"); !errs.IsNotFound(err) {
		t.Error("archived project should not load from active root")
	}
	list, _ := fs.List()
	if len(list) != 0 {
		t.Errorf("List length after archive = %d, want 0", len(list))
	}
}

func TestArchive_NotFound(t *testing.T) {
	fs := newTestStore(t)
	if err := fs.Archive("missing"); !errs.IsNotFound(err) {
		t.Errorf("expected NotFound, got: %v", err)
	}
}
