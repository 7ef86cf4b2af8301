package util

import (
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a regular file exists
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// FileSize returns the size of a file in bytes, or -1 if it can't be read
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return info.Size()
}

// SessionPath builds a session-scoped file name inside dir (e.g. tmp_<sid>_bgm.f32)
func SessionPath(dir, sid, name string) string {
	return filepath.Join(dir, "tmp_"+sid+"_"+name)
}

// CleanupFiles removes multiple files, ignoring errors
func CleanupFiles(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		_ = os.Remove(path)
	}
}

// CleanupSession removes every session-scoped temp file for sid in dir
func CleanupSession(dir, sid string) int {
	matches, err := filepath.Glob(filepath.Join(dir, "tmp_"+sid+"_*"))
	if err != nil {
		return 0
	}
	CleanupFiles(matches...)
	return len(matches)
}

// IsImagePath reports whether the path has a still-image extension
func IsImagePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	}
	return false
}
