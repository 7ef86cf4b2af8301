package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/keagan/promoreel/internal/config"
)

// ErrNotFound is returned when no artifact matches
var ErrNotFound = errors.New("store: artifact not found")

// Artifact describes a Pass 1 output that Pass 2 can re-render from
type Artifact struct {
	ID         string    `yaml:"id" json:"id"`
	Path       string    `yaml:"path" json:"path"`
	Width      int       `yaml:"width" json:"width"`
	Height     int       `yaml:"height" json:"height"`
	Duration   float64   `yaml:"duration" json:"duration"`
	FPS        float64   `yaml:"fps" json:"fps"`
	HasAudio   bool      `yaml:"has_audio" json:"has_audio"`
	Transition string    `yaml:"transition" json:"transition"`
	Fade       float64   `yaml:"fade" json:"fade"`
	Sources    []string  `yaml:"sources,omitempty" json:"sources,omitempty"`
	Warnings   []string  `yaml:"warnings,omitempty" json:"warnings,omitempty"`
	CreatedAt  time.Time `yaml:"created_at" json:"created_at"`
}

// NewArtifact returns an artifact with a fresh ID
func NewArtifact() *Artifact {
	return &Artifact{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
}

// Store persists artifacts by ID
type Store interface {
	Put(ctx context.Context, a *Artifact) error
	Get(ctx context.Context, id string) (*Artifact, error)
	Delete(ctx context.Context, id string) error
	// List returns artifacts oldest first
	List(ctx context.Context) ([]*Artifact, error)
	Close() error
}

// New builds the backend named in cfg. The file backend keeps its manifest in dir.
func New(ctx context.Context, cfg config.StoreConfig, dir string) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(filepath.Join(dir, ManifestName))
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPrefix)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

// Find resolves an artifact by ID, or by the path of its video
func Find(ctx context.Context, s Store, ref string) (*Artifact, error) {
	a, err := s.Get(ctx, ref)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return a, err
	}

	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	abs, _ := filepath.Abs(ref)
	for _, a := range all {
		if a.Path == ref || (abs != "" && a.Path == abs) {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
}

// Prune deletes artifacts created before cutoff together with their video files
func Prune(ctx context.Context, s Store, cutoff time.Time) ([]*Artifact, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var pruned []*Artifact
	for _, a := range all {
		if !a.CreatedAt.Before(cutoff) {
			continue
		}
		if err := s.Delete(ctx, a.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return pruned, fmt.Errorf("prune %s: %w", a.ID, err)
		}
		if a.Path != "" {
			_ = os.Remove(a.Path)
		}
		pruned = append(pruned, a)
	}
	return pruned, nil
}

func sortByCreated(list []*Artifact) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}

func validate(a *Artifact) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("store: artifact ID is required")
	}
	return nil
}
