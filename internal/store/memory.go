package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps artifacts for the lifetime of the process
type MemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]*Artifact
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		artifacts: make(map[string]*Artifact),
	}
}

// Put adds or replaces an artifact
func (m *MemoryStore) Put(_ context.Context, a *Artifact) error {
	if err := validate(a); err != nil {
		return err
	}
	cp := *a
	m.mu.Lock()
	m.artifacts[a.ID] = &cp
	m.mu.Unlock()
	return nil
}

// Get retrieves an artifact by ID
func (m *MemoryStore) Get(_ context.Context, id string) (*Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.artifacts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.artifacts[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.artifacts, id)
	return nil
}

// List returns all artifacts
func (m *MemoryStore) List(_ context.Context) ([]*Artifact, error) {
	m.mu.RLock()
	list := make([]*Artifact, 0, len(m.artifacts))
	for _, a := range m.artifacts {
		cp := *a
		list = append(list, &cp)
	}
	m.mu.RUnlock()
	sortByCreated(list)
	return list, nil
}

func (m *MemoryStore) Close() error { return nil }
