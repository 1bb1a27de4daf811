package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"roadmap/internal/errs"
)

const (
	// ProjectFile is the filename for project records.
	ProjectFile = "project.json"
	// ArchiveDir is the subdirectory where archived projects move.
	ArchiveDir = "archive"
)

// Store defines the persistence interface for project records.
// Abstracted so tools and the gate engine depend on the contract,
// not the filesystem.
type Store interface {
	Create(p *Project) error
	Load(id string) (*Project, error)
	Save(p *Project) error
	List() ([]Project, error)
	Archive(id string) error
	// Mutate loads a project, applies fn, and saves the result as one
	// serialized read-modify-write. All writers for a given project id
	// are funnelled through here — the record has no version field, so
	// serialization is what prevents lost updates.
	Mutate(id string, fn func(*Project) error) (*Project, error)
	ProjectDir(id string) string
	DeliverablesDir(id string, phase PhaseName) string
	GateReviewPath(id string, phase PhaseName) string
}

// FileStore implements Store using one directory per project under a
// common root. A per-project mutex serializes writers (single-writer
// assumption made explicit).
type FileStore struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileStore creates a filesystem-backed project store rooted at root.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root, locks: make(map[string]*sync.Mutex)}
}

// lockFor returns the mutex for a project id, creating it on first use.
func (fs *FileStore) lockFor(id string) *sync.Mutex {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	l, ok := fs.locks[id]
	if !ok {
		l = &sync.Mutex{}
		fs.locks[id] = l
	}
	return l
}

// ProjectDir returns the absolute path to a project's directory.
func (fs *FileStore) ProjectDir(id string) string {
	return filepath.Join(fs.root, id)
}

// projectPath returns the absolute path to a project's project.json.
func (fs *FileStore) projectPath(id string) string {
	return filepath.Join(fs.ProjectDir(id), ProjectFile)
}

// Create persists a new project record, creating the full directory
// structure: knowledge/{uploaded,sessions,extracted}, one deliverables
// directory per phase, and gate_reviews/.
func (fs *FileStore) Create(p *Project) error {
	if err := ValidateProjectID(p.ID); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	lock := fs.lockFor(p.ID)
	lock.Lock()
	defer lock.Unlock()

	dir := fs.ProjectDir(p.ID)
	if _, err := os.Stat(fs.projectPath(p.ID)); err == nil {
		return errs.New(errs.Validation, "project %q already exists", p.ID)
	}

	subdirs := []string{
		filepath.Join(dir, "knowledge", "uploaded"),
		filepath.Join(dir, "knowledge", "sessions"),
		filepath.Join(dir, "knowledge", "extracted"),
		filepath.Join(dir, "gate_reviews"),
	}
	for _, phase := range PhaseOrder {
		subdirs = append(subdirs, filepath.Join(dir, "deliverables", PhaseDir(phase)))
	}
	for _, d := range subdirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return errs.Wrap(errs.Persistence, err, "creating project directory %s", d)
		}
	}

	return fs.write(p)
}

// Load reads a project record by ID.
func (fs *FileStore) Load(id string) (*Project, error) {
	if err := ValidateProjectID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fs.projectPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.New(errs.NotFound, "project %q not found", id)
		}
		return nil, errs.Wrap(errs.Persistence, err, "reading project %q", id)
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errs.Wrap(errs.Persistence, err, "parsing project.json for %q", id)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Save writes an existing project record back to disk.
func (fs *FileStore) Save(p *Project) error {
	if err := ValidateProjectID(p.ID); err != nil {
		return err
	}
	lock := fs.lockFor(p.ID)
	lock.Lock()
	defer lock.Unlock()
	return fs.write(p)
}

// Mutate performs a serialized read-modify-write on one project.
func (fs *FileStore) Mutate(id string, fn func(*Project) error) (*Project, error) {
	if err := ValidateProjectID(id); err != nil {
		return nil, err
	}
	lock := fs.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	p, err := fs.Load(id)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := fs.write(p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns all projects sorted by creation date, newest first.
// Unreadable entries are skipped, matching the tolerant listing
// behavior of the change store.
func (fs *FileStore) List() ([]Project, error) {
	entries, err := os.ReadDir(fs.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.Persistence, err, "reading projects root")
	}

	var result []Project
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == ArchiveDir {
			continue
		}
		p, err := fs.Load(entry.Name())
		if err != nil {
			continue // skip unreadable projects
		}
		result = append(result, *p)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Created > result[j].Created
	})
	return result, nil
}

// Archive moves a project directory under archive/. Projects are never
// deleted — archiving is the terminal operation.
func (fs *FileStore) Archive(id string) error {
	if err := ValidateProjectID(id); err != nil {
		return err
	}
	lock := fs.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	srcDir := fs.ProjectDir(id)
	if _, err := os.Stat(fs.projectPath(id)); err != nil {
		if os.IsNotExist(err) {
			return errs.New(errs.NotFound, "project %q not found", id)
		}
		return errs.Wrap(errs.Persistence, err, "checking project %q", id)
	}

	archiveRoot := filepath.Join(fs.root, ArchiveDir)
	if err := os.MkdirAll(archiveRoot, 0o755); err != nil {
		return errs.Wrap(errs.Persistence, err, "creating archive directory")
	}

	dstDir := filepath.Join(archiveRoot, id)
	if _, err := os.Stat(dstDir); err == nil {
		return errs.New(errs.Validation, "project %q already exists in archive", id)
	}

	if err := os.Rename(srcDir, dstDir); err != nil {
		return errs.Wrap(errs.Persistence, err, "moving project %q to archive", id)
	}
	return nil
}

// write marshals and writes a project record to its project.json.
// Write failures always propagate — a swallowed save is silent data loss.
func (fs *FileStore) write(p *Project) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return errs.Wrap(errs.Persistence, err, "marshaling project %q", p.ID)
	}

	path := fs.projectPath(p.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(errs.Persistence, err, "creating project directory for %q", p.ID)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Wrap(errs.Persistence, err, "writing %s", path)
	}
	return nil
}

// KnowledgeDir returns the knowledge folder for a project.
func (fs *FileStore) KnowledgeDir(id string) string {
	return filepath.Join(fs.ProjectDir(id), "knowledge")
}

// DeliverablesDir returns the deliverables folder for one phase of a
// project, e.g. <root>/<id>/deliverables/1-standardization.
func (fs *FileStore) DeliverablesDir(id string, phase PhaseName) string {
	return filepath.Join(fs.ProjectDir(id), "deliverables", PhaseDir(phase))
}

// GateReviewPath returns where a phase's gate review record is written.
func (fs *FileStore) GateReviewPath(id string, phase PhaseName) string {
	return filepath.Join(fs.ProjectDir(id), "gate_reviews", fmt.Sprintf("%s.json", phase))
}
