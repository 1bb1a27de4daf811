package knowledge

import (
	"encoding/json"
	"os"
	"path/filepath"

	"roadmap/internal/errs"
)

// LedgerFile is the filename for a project's persisted knowledge base.
const LedgerFile = "knowledge_base.json"

// Store persists one ledger per project.
type Store interface {
	Load(projectID string) (*Ledger, error)
	LoadOrInit(projectID string) (*Ledger, error)
	Save(projectID string, l *Ledger) error
}

// FileStore writes each project's ledger to
// <project dir>/knowledge/extracted/knowledge_base.json. The project
// directory itself is resolved through dirFor so the store composes
// with whatever project layout the caller uses.
type FileStore struct {
	dirFor func(projectID string) string
}

// NewFileStore creates a ledger store. dirFor maps a project ID to its
// root directory.
func NewFileStore(dirFor func(projectID string) string) *FileStore {
	return &FileStore{dirFor: dirFor}
}

// Path returns the ledger file location for a project.
func (fs *FileStore) Path(projectID string) string {
	return filepath.Join(fs.dirFor(projectID), "knowledge", "extracted", LedgerFile)
}

// Load reads a project's ledger. Returns NotFound when the ledger has
// never been written.
func (fs *FileStore) Load(projectID string) (*Ledger, error) {
	path := fs.Path(projectID)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.New(errs.NotFound, "no knowledge base for project %q", projectID)
		}
		return nil, errs.Wrap(errs.Persistence, err, "reading %s", path)
	}

	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, errs.Wrap(errs.Persistence, err, "parsing %s", path)
	}
	return &l, nil
}

// LoadOrInit reads a project's ledger, returning a fresh empty one when
// none exists yet. Ingest flows use this; read-only flows use Load so a
// missing ledger surfaces as NotFound.
func (fs *FileStore) LoadOrInit(projectID string) (*Ledger, error) {
	l, err := fs.Load(projectID)
	if errs.IsNotFound(err) {
		return NewLedger(), nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Save writes a project's ledger, creating parent directories as needed.
func (fs *FileStore) Save(projectID string, l *Ledger) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return errs.Wrap(errs.Persistence, err, "marshaling knowledge base for %q", projectID)
	}

	path := fs.Path(projectID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(errs.Persistence, err, "creating knowledge directory for %q", projectID)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Wrap(errs.Persistence, err, "writing %s", path)
	}
	return nil
}
