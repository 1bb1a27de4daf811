// Package session persists conversation turns per project in SQLite
// with FTS5 full-text search. The trigger detector replays the recent
// turns of a session after a restart, and facilitators can search past
// conversations for what a stakeholder actually said.
package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"roadmap/internal/errs"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Speaker identifies who produced a turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// ValidateSpeaker rejects anything but the two known speakers.
func ValidateSpeaker(s Speaker) error {
	if s != SpeakerUser && s != SpeakerAssistant {
		return errs.New(errs.Validation, "invalid speaker %q (want user or assistant)", s)
	}
	return nil
}

// Session is one knowledge-gathering conversation for a project.
type Session struct {
	ID        string  `json:"id"`
	Project   string  `json:"project"`
	StartedAt string  `json:"started_at"`
	EndedAt   *string `json:"ended_at,omitempty"`
	Summary   *string `json:"summary,omitempty"`
}

// Turn is one utterance in a session, annotated with the detector state
// and the deliverable completeness at the time it was spoken.
type Turn struct {
	ID           int64   `json:"id"`
	SessionID    string  `json:"session_id"`
	Project      string  `json:"project"`
	Speaker      Speaker `json:"speaker"`
	Content      string  `json:"content"`
	Completeness int     `json:"completeness_pct"`
	State        string  `json:"state,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// SearchResult embeds a Turn with its FTS5 rank score.
type SearchResult struct {
	Turn
	Rank float64 `json:"rank"`
}

// Stats holds aggregate session statistics.
type Stats struct {
	TotalSessions int      `json:"total_sessions"`
	TotalTurns    int      `json:"total_turns"`
	Projects      []string `json:"projects"`
}

// AddTurnParams holds the input for recording a turn.
type AddTurnParams struct {
	SessionID    string  `json:"session_id"`
	Project      string  `json:"project"`
	Speaker      Speaker `json:"speaker"`
	Content      string  `json:"content"`
	Completeness int     `json:"completeness_pct"`
	State        string  `json:"state,omitempty"`
}

// Config holds session store configuration.
type Config struct {
	DataDir       string
	MaxTurnLength int
}

// DefaultConfig stores the database under the user's home directory.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:       filepath.Join(home, ".roadmap"),
		MaxTurnLength: 4000,
	}
}

// Store is the conversation history engine backed by SQLite + FTS5.
type Store struct {
	db  *sql.DB
	cfg Config
}

// New opens the session database with WAL mode and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("session: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "sessions.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("session: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("session: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("session: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			project    TEXT NOT NULL,
			started_at TEXT NOT NULL DEFAULT (datetime('now')),
			ended_at   TEXT,
			summary    TEXT
		);

		CREATE TABLE IF NOT EXISTS turns (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id       TEXT    NOT NULL,
			project          TEXT    NOT NULL,
			speaker          TEXT    NOT NULL,
			content          TEXT    NOT NULL,
			completeness_pct INTEGER NOT NULL DEFAULT 0,
			state            TEXT,
			created_at       TEXT    NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		);

		CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id);
		CREATE INDEX IF NOT EXISTS idx_turns_project ON turns(project);
		CREATE INDEX IF NOT EXISTS idx_turns_created ON turns(created_at DESC);

		CREATE VIRTUAL TABLE IF NOT EXISTS turns_fts USING fts5(
			content,
			project,
			speaker,
			content='turns',
			content_rowid='id'
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// FTS triggers (idempotent)
	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='trigger' AND name='turns_fts_insert'",
	).Scan(&name)
	if err == sql.ErrNoRows {
		triggers := `
			CREATE TRIGGER turns_fts_insert AFTER INSERT ON turns BEGIN
				INSERT INTO turns_fts(rowid, content, project, speaker)
				VALUES (new.id, new.content, new.project, new.speaker);
			END;

			CREATE TRIGGER turns_fts_delete AFTER DELETE ON turns BEGIN
				INSERT INTO turns_fts(turns_fts, rowid, content, project, speaker)
				VALUES ('delete', old.id, old.content, old.project, old.speaker);
			END;
		`
		if _, err := s.db.Exec(triggers); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	return nil
}

// StartSession registers a new conversation session. Re-registering an
// existing ID is a no-op.
func (s *Store) StartSession(id, projectID string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO sessions (id, project) VALUES (?, ?)`,
		id, projectID,
	)
	return err
}

// EndSession marks a session as completed with an optional summary.
func (s *Store) EndSession(id, summary string) error {
	_, err := s.db.Exec(
		`UPDATE sessions SET ended_at = datetime('now'), summary = ? WHERE id = ?`,
		nullableString(summary), id,
	)
	return err
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(id string) (*Session, error) {
	row := s.db.QueryRow(
		`SELECT id, project, started_at, ended_at, summary FROM sessions WHERE id = ?`, id,
	)
	var sess Session
	if err := row.Scan(&sess.ID, &sess.Project, &sess.StartedAt, &sess.EndedAt, &sess.Summary); err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.New(errs.NotFound, "session %q not found", id)
		}
		return nil, err
	}
	return &sess, nil
}

// AddTurn records one turn. Long content is truncated, never rejected —
// losing the tail of a rambling answer beats losing the whole turn.
func (s *Store) AddTurn(p AddTurnParams) (int64, error) {
	if err := ValidateSpeaker(p.Speaker); err != nil {
		return 0, err
	}
	content := p.Content
	if s.cfg.MaxTurnLength > 0 && len(content) > s.cfg.MaxTurnLength {
		content = content[:s.cfg.MaxTurnLength] + "... [truncated]"
	}

	res, err := s.db.Exec(
		`INSERT INTO turns (session_id, project, speaker, content, completeness_pct, state)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.SessionID, p.Project, string(p.Speaker), content, p.Completeness, nullableString(p.State),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecentTurns returns the latest turns of a session in chronological
// order. The default window of 3 is what the trigger detector replays.
func (s *Store) RecentTurns(sessionID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = 3
	}

	rows, err := s.db.Query(
		`SELECT id, session_id, project, speaker, content, completeness_pct, ifnull(state, ''), created_at
		 FROM turns WHERE session_id = ?
		 ORDER BY id DESC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var turns []Turn
	for rows.Next() {
		var t Turn
		var speaker string
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Project, &speaker, &t.Content, &t.Completeness, &t.State, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Speaker = Speaker(speaker)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// SearchTurns performs full-text search across a project's turns.
func (s *Store) SearchTurns(query, projectID string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	ftsQuery := sanitizeFTS(query)
	if ftsQuery == "" {
		return nil, nil
	}

	sqlStr := `
		SELECT t.id, t.session_id, t.project, t.speaker, t.content, t.completeness_pct,
		       ifnull(t.state, ''), t.created_at, fts.rank
		FROM turns_fts fts
		JOIN turns t ON t.id = fts.rowid
		WHERE turns_fts MATCH ?
	`
	args := []any{ftsQuery}

	if projectID != "" {
		sqlStr += " AND t.project = ?"
		args = append(args, projectID)
	}
	sqlStr += " ORDER BY fts.rank LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("search turns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []SearchResult
	for rows.Next() {
		var sr SearchResult
		var speaker string
		if err := rows.Scan(&sr.ID, &sr.SessionID, &sr.Project, &speaker, &sr.Content,
			&sr.Completeness, &sr.State, &sr.CreatedAt, &sr.Rank); err != nil {
			return nil, err
		}
		sr.Speaker = Speaker(speaker)
		results = append(results, sr)
	}
	return results, rows.Err()
}

// SessionsForProject returns a project's sessions, newest first.
func (s *Store) SessionsForProject(projectID string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT id, project, started_at, ended_at, summary
		 FROM sessions WHERE project = ?
		 ORDER BY started_at DESC LIMIT ?`,
		projectID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Project, &sess.StartedAt, &sess.EndedAt, &sess.Summary); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Stats returns aggregate session statistics.
func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&stats.TotalSessions); err != nil {
		return nil, err
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM turns").Scan(&stats.TotalTurns); err != nil {
		return nil, err
	}

	rows, err := s.db.Query("SELECT project FROM sessions GROUP BY project ORDER BY MAX(started_at) DESC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		stats.Projects = append(stats.Projects, p)
	}
	return stats, rows.Err()
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// sanitizeFTS quotes each token so user input can't inject FTS5 query
// syntax. Empty input yields an empty query.
func sanitizeFTS(query string) string {
	var quoted []string
	for _, f := range strings.Fields(query) {
		f = strings.ReplaceAll(f, `"`, ``)
		if f == "" {
			continue
		}
		quoted = append(quoted, `"`+f+`"`)
	}
	return strings.Join(quoted, " ")
}
