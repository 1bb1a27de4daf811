package session

import (
	"strings"
	"testing"

	"roadmap/internal/errs"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{DataDir: t.TempDir(), MaxTurnLength: 4000})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStartSession_Idempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.StartSession("sess-1", "invoice-2024"); err != nil {
		t.Fatal(err)
	}
	if err := s.StartSession("sess-1", "invoice-2024"); err != nil {
		t.Fatalf("re-registering a session should be a no-op: %v", err)
	}

	sess, err := s.GetSession("sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if sess.Project != "invoice-2024" {
		t.Errorf("project = %q", sess.Project)
	}
	if sess.EndedAt != nil {
		t.Error("fresh session should not be ended")
	}
}

func TestGetSession_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetSession("missing"); !errs.IsNotFound(err) {
		t.Errorf("expected NotFound, got: %v", err)
	}
}

func TestEndSession_SetsSummary(t *testing.T) {
	s := newTestStore(t)
	if err := s.StartSession("sess-1", "p1"); err != nil {
		t.Fatal(err)
	}
	if err := s.EndSession("sess-1", "covered SIPOC suppliers and inputs"); err != nil {
		t.Fatal(err)
	}

	sess, err := s.GetSession("sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if sess.EndedAt == nil {
		t.Error("ended session should have ended_at")
	}
	if sess.Summary == nil || *sess.Summary != "covered SIPOC suppliers and inputs" {
		t.Errorf("summary = %v", sess.Summary)
	}
}

func TestAddTurn_RejectsUnknownSpeaker(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddTurn(AddTurnParams{SessionID: "sess-1", Project: "p1", Speaker: "narrator", Content: "hi"})
	if errs.KindOf(err) != errs.Validation {
		t.Errorf("expected ValidationError, got: %v", err)
	}
}

func TestAddTurn_TruncatesLongContent(t *testing.T) {
	s, err := New(Config{DataDir: t.TempDir(), MaxTurnLength: 20})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close() }()

	if err := s.StartSession("sess-1", "p1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddTurn(AddTurnParams{
		SessionID: "sess-1", Project: "p1", Speaker: SpeakerUser,
		Content: strings.Repeat("a", 100),
	}); err != nil {
		t.Fatal(err)
	}

	turns, err := s.RecentTurns("sess-1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(turns[0].Content, "... [truncated]") {
		t.Errorf("long content not truncated: %q", turns[0].Content)
	}
}

func TestRecentTurns_ChronologicalWindow(t *testing.T) {
	s := newTestStore(t)
	if err := s.StartSession("sess-1", "p1"); err != nil {
		t.Fatal(err)
	}

	contents := []string{"first", "second", "third", "fourth"}
	speakers := []Speaker{SpeakerUser, SpeakerAssistant, SpeakerUser, SpeakerAssistant}
	for i, c := range contents {
		if _, err := s.AddTurn(AddTurnParams{
			SessionID: "sess-1", Project: "p1", Speaker: speakers[i], Content: c,
		}); err != nil {
			t.Fatal(err)
		}
	}

	// Default window is 3: the detector's replay depth.
	turns, err := s.RecentTurns("sess-1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 3 {
		t.Fatalf("turns = %d, want 3", len(turns))
	}
	if turns[0].Content != "second" || turns[2].Content != "fourth" {
		t.Errorf("window out of order: %q ... %q", turns[0].Content, turns[2].Content)
	}
}

func TestRecentTurns_CarriesAnnotations(t *testing.T) {
	s := newTestStore(t)
	if err := s.StartSession("sess-1", "p1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddTurn(AddTurnParams{
		SessionID: "sess-1", Project: "p1", Speaker: SpeakerUser,
		Content: "yes", Completeness: 85, State: "triggered",
	}); err != nil {
		t.Fatal(err)
	}

	turns, err := s.RecentTurns("sess-1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if turns[0].Completeness != 85 || turns[0].State != "triggered" {
		t.Errorf("annotations lost: %+v", turns[0])
	}
}

func TestSearchTurns_FindsContent(t *testing.T) {
	s := newTestStore(t)
	if err := s.StartSession("sess-1", "p1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddTurn(AddTurnParams{
		SessionID: "sess-1", Project: "p1", Speaker: SpeakerUser,
		Content: "invoices over ten thousand need manager approval",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddTurn(AddTurnParams{
		SessionID: "sess-1", Project: "p1", Speaker: SpeakerAssistant,
		Content: "noted, adding that to the exception register",
	}); err != nil {
		t.Fatal(err)
	}

	results, err := s.SearchTurns("manager approval", "p1", 10)
	if err != nil {
		t.Fatalf("SearchTurns failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Speaker != SpeakerUser {
		t.Errorf("speaker = %s", results[0].Speaker)
	}
}

func TestSearchTurns_ScopedToProject(t *testing.T) {
	s := newTestStore(t)
	for _, p := range []string{"p1", "p2"} {
		if err := s.StartSession("sess-"+p, p); err != nil {
			t.Fatal(err)
		}
		if _, err := s.AddTurn(AddTurnParams{
			SessionID: "sess-" + p, Project: p, Speaker: SpeakerUser,
			Content: "the approval flow differs here",
		}); err != nil {
			t.Fatal(err)
		}
	}

	results, err := s.SearchTurns("approval", "p1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Project != "p1" {
		t.Errorf("results = %+v, want only p1", results)
	}
}

func TestSearchTurns_EmptyQuery(t *testing.T) {
	s := newTestStore(t)
	results, err := s.SearchTurns("   ", "p1", 10)
	if err != nil {
		t.Fatalf("empty query should not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %d, want 0", len(results))
	}
}

func TestSearchTurns_QuotesFTSSyntax(t *testing.T) {
	s := newTestStore(t)
	if err := s.StartSession("sess-1", "p1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddTurn(AddTurnParams{
		SessionID: "sess-1", Project: "p1", Speaker: SpeakerUser, Content: "plain text",
	}); err != nil {
		t.Fatal(err)
	}

	// Raw FTS operators must not reach the engine as syntax.
	if _, err := s.SearchTurns(`AND OR NOT "`, "p1", 10); err != nil {
		t.Errorf("operator-laden query should be sanitized, got: %v", err)
	}
}

func TestSessionsForProject_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	if err := s.StartSession("sess-a", "p1"); err != nil {
		t.Fatal(err)
	}
	if err := s.StartSession("sess-b", "p1"); err != nil {
		t.Fatal(err)
	}
	if err := s.StartSession("sess-c", "p2"); err != nil {
		t.Fatal(err)
	}

	sessions, err := s.SessionsForProject("p1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 {
		t.Errorf("sessions = %d, want 2", len(sessions))
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	if err := s.StartSession("sess-1", "p1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddTurn(AddTurnParams{
		SessionID: "sess-1", Project: "p1", Speaker: SpeakerUser, Content: "hello",
	}); err != nil {
		t.Fatal(err)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalSessions != 1 || stats.TotalTurns != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if len(stats.Projects) != 1 || stats.Projects[0] != "p1" {
		t.Errorf("projects = %v", stats.Projects)
	}
}

func TestStats_ClosedStoreReturnsError(t *testing.T) {
	s := newTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Stats(); err == nil {
		t.Error("Stats on a closed store should surface the query error")
	}
}

func TestSanitizeFTS(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"manager approval", `"manager" "approval"`},
		{`inject" OR 1`, `"inject" "OR" "1"`},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := sanitizeFTS(tt.in); got != tt.want {
			t.Errorf("sanitizeFTS(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
