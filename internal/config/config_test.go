package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.FFmpeg.FPS != 24 {
		t.Errorf("expected fps 24, got %v", cfg.FFmpeg.FPS)
	}
	if cfg.Captions.Count != 3 || cfg.CTA.Label != "HUBUNGI :" {
		t.Errorf("unexpected caption defaults: %+v %+v", cfg.Captions, cfg.CTA)
	}
	if cfg.Layout.SafeBottom != 0.78 {
		t.Errorf("expected safe bottom 0.78, got %v", cfg.Layout.SafeBottom)
	}
}

func TestLoadOverridesAndRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "promoreel.yaml")
	data := []byte(`
concurrency: 2
timeline:
  transition: none
  min_segment: 3
  max_segment: 5
store:
  retention: 2h
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Concurrency != 2 || cfg.Timeline.Transition != "none" {
		t.Errorf("overrides not applied: %+v", cfg.Timeline)
	}
	if cfg.Store.Retention != 2*time.Hour {
		t.Errorf("expected 2h retention, got %v", cfg.Store.Retention)
	}
	// untouched keys keep defaults
	if cfg.Grade.Contrast != 1.10 {
		t.Errorf("expected default contrast, got %v", cfg.Grade.Contrast)
	}

	out := filepath.Join(t.TempDir(), "nested", "saved.yaml")
	if err := cfg.Save(out); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	again, err := Load(out)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if again.Timeline.MinSegment != 3 || again.Store.Retention != 2*time.Hour {
		t.Errorf("round trip lost values: %+v", again.Timeline)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("store:\n  backend: etcd\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for unknown backend")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("PROMOREEL_CONCURRENCY", "7")
	t.Setenv("PROMOREEL_MEDIA_ROOT", "/srv/media")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Store.RedisAddr != "redis:6380" {
		t.Errorf("expected env redis addr, got %q", cfg.Store.RedisAddr)
	}
	if cfg.Concurrency != 7 {
		t.Errorf("expected concurrency 7, got %d", cfg.Concurrency)
	}
	if cfg.Server.MediaRoot != "/srv/media" {
		t.Errorf("expected env media root, got %q", cfg.Server.MediaRoot)
	}
}

func TestContextCarriage(t *testing.T) {
	cfg := Default()
	cfg.WorkDir = "/srv/work"
	ctx := WithConfig(context.Background(), cfg)
	if got := FromContext(ctx); got.WorkDir != "/srv/work" {
		t.Errorf("expected stored config, got %q", got.WorkDir)
	}
	if got := FromContext(context.Background()); got.WorkDir != "./work" {
		t.Errorf("expected default config, got %q", got.WorkDir)
	}
}
