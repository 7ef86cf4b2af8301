package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/keagan/promoreel/pkg/util"
	"gopkg.in/yaml.v3"
)

// ManifestName is the file backend's manifest inside the work directory
const ManifestName = "artifacts.yaml"

type manifest struct {
	Artifacts []*Artifact `yaml:"artifacts"`
}

// FileStore keeps artifacts in a YAML manifest. Every call rereads the file so
// separate CLI invocations see each other's writes.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore opens (or prepares) the manifest at path
func NewFileStore(path string) (*FileStore, error) {
	if err := util.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the manifest location
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) load() (*manifest, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return &manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", f.path, err)
	}
	return &m, nil
}

func (f *FileStore) save(m *manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return os.Rename(tmp, f.path)
}

// Put adds or replaces an artifact
func (f *FileStore) Put(_ context.Context, a *Artifact) error {
	if err := validate(a); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.load()
	if err != nil {
		return err
	}
	cp := *a
	for i, existing := range m.Artifacts {
		if existing.ID == a.ID {
			m.Artifacts[i] = &cp
			return f.save(m)
		}
	}
	m.Artifacts = append(m.Artifacts, &cp)
	return f.save(m)
}

// Get retrieves an artifact by ID
func (f *FileStore) Get(_ context.Context, id string) (*Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.load()
	if err != nil {
		return nil, err
	}
	for _, a := range m.Artifacts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (f *FileStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.load()
	if err != nil {
		return err
	}
	for i, a := range m.Artifacts {
		if a.ID == id {
			m.Artifacts = append(m.Artifacts[:i], m.Artifacts[i+1:]...)
			return f.save(m)
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// List returns all artifacts
func (f *FileStore) List(_ context.Context) ([]*Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.load()
	if err != nil {
		return nil, err
	}
	sortByCreated(m.Artifacts)
	return m.Artifacts, nil
}

func (f *FileStore) Close() error { return nil }
