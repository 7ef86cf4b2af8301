package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"24", 24},
		{"0/0", 0},
		{"abc", 0},
		{"1/2/3", 0},
	}
	for _, tt := range tests {
		if got := ParseFrameRate(tt.in); got != tt.want {
			t.Errorf("ParseFrameRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := FormatSeconds(3725.5); got != "01:02:05.500" {
		t.Errorf("unexpected timestamp %q", got)
	}
	if got := FormatSeconds(-3); got != "00:00:00.000" {
		t.Errorf("negative should clamp, got %q", got)
	}
	if got := FormatArg(4.25); got != "4.25" {
		t.Errorf("FormatArg = %q", got)
	}
}

func TestCleanupSession(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"bgm.f32", "pass1.mp4"} {
		if err := os.WriteFile(SessionPath(dir, "abc", name), []byte("x"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	keep := filepath.Join(dir, "tmp_other_bgm.f32")
	if err := os.WriteFile(keep, []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if n := CleanupSession(dir, "abc"); n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}
	if !FileExists(keep) {
		t.Error("other session file was removed")
	}
}

func TestIsImagePath(t *testing.T) {
	if !IsImagePath("a/B.JPG") || IsImagePath("clip.mp4") {
		t.Error("image detection mismatch")
	}
}
