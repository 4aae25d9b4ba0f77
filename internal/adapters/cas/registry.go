// Package cas persists the workspace's hash registry: the last-observed
// input digest for every task, across invocations.
package cas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.nabs.build/nabs/internal/core/domain"
	"go.nabs.build/nabs/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	dirPerm  = 0o750
	filePerm = 0o644

	registryVersion = 1
)

// wireRecord is the on-disk shape of one task's hashes.
type wireRecord struct {
	Project     string `json:"project"`
	Task        string `json:"task"`
	InputsHash  string `json:"inputs_hash,omitempty"`
	OutputsHash string `json:"outputs_hash,omitempty"`
}

// wireDocument is the tagged-union document persisted at
// "<workspace_root>/.nabs/hashes.json".
type wireDocument struct {
	Version int          `json:"version"`
	Records []wireRecord `json:"records"`
}

var _ ports.HashRegistry = (*Registry)(nil)

// Registry implements ports.HashRegistry backed by a single versioned JSON
// document, loaded fully into memory at construction and written back
// atomically on Save.
type Registry struct {
	path string
	mu   sync.RWMutex
	// entries is keyed on TaskRef.String() since TaskRef is not itself
	// comparable across process runs (ProjectRef wraps a ValidPath rooted
	// at this run's WorkspaceRoot instance).
	entries map[string]wireRecord
}

// NewRegistry loads (or initializes empty) the hash registry rooted at
// workspaceDir/.nabs/hashes.json. A missing file is not an error. A file
// whose version is not registryVersion is rejected with
// ErrRegistryVersionUnsupported rather than migrated. g is the current
// workspace graph: any loaded record whose (project, task) no longer
// resolves against it (a renamed or deleted project/task) is discarded
// on load rather than carried forward forever.
func NewRegistry(workspaceDir string, g *domain.Graph) (*Registry, error) {
	path := filepath.Join(workspaceDir, ".nabs", "hashes.json")

	r := &Registry{path: path, entries: make(map[string]wireRecord)}

	//nolint:gosec // path is derived from a canonicalised workspace root, not user input
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrRegistryRead.Error()), "path", path)
	}

	var doc wireDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrRegistryRead.Error()), "path", path)
	}
	if doc.Version != registryVersion {
		return nil, zerr.With(domain.ErrRegistryVersionUnsupported, "version", doc.Version)
	}

	live := liveTaskKeys(g)
	for _, rec := range doc.Records {
		key := rec.Project + "::" + rec.Task
		if _, ok := live[key]; !ok {
			continue
		}
		r.entries[key] = rec
	}
	return r, nil
}

// liveTaskKeys returns the "<project>::<task>" key of every task g currently
// resolves, the set a loaded record must belong to in order to survive.
func liveTaskKeys(g *domain.Graph) map[string]struct{} {
	keys := make(map[string]struct{})
	if g == nil {
		return keys
	}
	for _, project := range g.Projects() {
		for _, task := range g.ProjectTasks(project) {
			keys[project.String()+"::"+task.Name] = struct{}{}
		}
	}
	return keys
}

// Get retrieves the stored hashes for ref.
func (r *Registry) Get(ref domain.TaskRef) (domain.Hashes, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.entries[ref.String()]
	if !ok {
		return domain.Hashes{}, false
	}
	return rec.toHashes(), true
}

// Put records hashes for ref, overwriting any prior record.
func (r *Registry) Put(ref domain.TaskRef, hashes domain.Hashes) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[ref.String()] = wireRecord{
		Project:     ref.Project.String(),
		Task:        ref.Name,
		InputsHash:  hexOrEmpty(hashes.InputsHash),
		OutputsHash: hexOrEmpty(hashes.OutputsHash),
	}
}

// Save persists the registry to its backing file atomically: write to a
// temp file in the same directory, then rename over the target.
func (r *Registry) Save() error {
	r.mu.RLock()
	doc := wireDocument{Version: registryVersion, Records: make([]wireRecord, 0, len(r.entries))}
	for _, rec := range r.entries {
		doc.Records = append(doc.Records, rec)
	}
	r.mu.RUnlock()

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrRegistryWrite.Error()), "path", dir)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrRegistryWrite.Error())
	}

	tmp, err := os.CreateTemp(dir, ".hashes-*.json.tmp")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrRegistryWrite.Error()), "path", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck // best effort; os.Remove below reports the real failure
		os.Remove(tmpName)
		return zerr.Wrap(err, domain.ErrRegistryWrite.Error())
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return zerr.Wrap(err, domain.ErrRegistryWrite.Error())
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		os.Remove(tmpName)
		return zerr.Wrap(err, domain.ErrRegistryWrite.Error())
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, domain.ErrRegistryWrite.Error()), "path", r.path)
	}
	return nil
}

func (rec wireRecord) toHashes() domain.Hashes {
	var h domain.Hashes
	if d, ok := domain.DigestFromHex(rec.InputsHash); ok {
		h.InputsHash = &d
	}
	if d, ok := domain.DigestFromHex(rec.OutputsHash); ok {
		h.OutputsHash = &d
	}
	return h
}

func hexOrEmpty(d *domain.Digest) string {
	if d == nil {
		return ""
	}
	return d.String()
}
