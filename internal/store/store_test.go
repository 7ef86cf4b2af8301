package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/keagan/promoreel/internal/config"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	old := NewArtifact()
	old.Path = "/work/pass1_old.mp4"
	old.CreatedAt = time.Now().Add(-48 * time.Hour)
	fresh := NewArtifact()
	fresh.Path = "/work/pass1_new.mp4"
	fresh.Width, fresh.Height, fresh.Duration = 720, 1280, 30.5

	for _, a := range []*Artifact{fresh, old} {
		if err := s.Put(ctx, a); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	got, err := s.Get(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Width != 720 || got.Duration != 30.5 || got.Path != fresh.Path {
		t.Errorf("round trip mismatch: %+v", got)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != old.ID {
		t.Errorf("List should be oldest first, got %d entries", len(list))
	}

	byPath, err := Find(ctx, s, "/work/pass1_new.mp4")
	if err != nil || byPath.ID != fresh.ID {
		t.Errorf("Find by path: %v", err)
	}

	pruned, err := Prune(ctx, s, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if len(pruned) != 1 || pruned[0].ID != old.ID {
		t.Errorf("expected only the old artifact pruned, got %d", len(pruned))
	}

	if err := s.Delete(ctx, fresh.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, fresh.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, fresh.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete: %v", err)
	}
	if err := s.Put(ctx, &Artifact{}); err == nil {
		t.Error("expected error for artifact without ID")
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopies(t *testing.T) {
	s := NewMemoryStore()
	a := NewArtifact()
	if err := s.Put(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	a.Width = 99
	got, _ := s.Get(context.Background(), a.ID)
	if got.Width == 99 {
		t.Error("store must not alias caller's artifact")
	}
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ManifestName)
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	exerciseStore(t, s)
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestName)
	first, _ := NewFileStore(path)
	a := NewArtifact()
	a.Transition = "crossfade"
	if err := first.Put(context.Background(), a); err != nil {
		t.Fatal(err)
	}

	second, _ := NewFileStore(path)
	got, err := second.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("second store cannot see artifact: %v", err)
	}
	if got.Transition != "crossfade" {
		t.Errorf("transition = %q", got.Transition)
	}
}

func TestFileStoreCorruptManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestName)
	if err := os.WriteFile(path, []byte("artifacts: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	s, _ := NewFileStore(path)
	if _, err := s.List(context.Background()); err == nil {
		t.Error("expected parse error")
	}
}

func TestPruneRemovesVideo(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "pass1_x.mp4")
	if err := os.WriteFile(video, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	s := NewMemoryStore()
	a := NewArtifact()
	a.Path = video
	a.CreatedAt = time.Now().Add(-time.Hour)
	_ = s.Put(context.Background(), a)

	if _, err := Prune(context.Background(), s, time.Now()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(video); !os.IsNotExist(err) {
		t.Error("pruned artifact video should be removed")
	}
}

func TestNewBackends(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, config.StoreConfig{Backend: "memory"}, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("expected MemoryStore, got %T", s)
	}
	if _, err := New(ctx, config.StoreConfig{Backend: "etcd"}, ""); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	prefix := "promoreel:test:" + NewArtifact().ID + ":"
	s, err := NewRedisStore(context.Background(), addr, prefix)
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}
