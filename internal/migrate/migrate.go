// Package migrate moves notes saved by an older install into the configured
// root directory. It runs once per start and is a no-op after the first
// successful run.
package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/wailsapp/wails/v2/pkg/logger"

	"decknotes/internal/logging"
)

// Report describes what a migration did. Paths are relative to the legacy
// directory.
type Report struct {
	Renamed bool     `json:"renamed"` // whole legacy dir became the root
	Moved   []string `json:"moved"`
	Skipped []string `json:"skipped"` // already present under root, left alone
	Removed bool     `json:"removed"` // legacy dir deleted after moving
}

// Run relocates legacyDir into rootDir. Existing files under rootDir are never
// overwritten. An empty legacyDir, a missing legacy directory or
// legacyDir == rootDir is a no-op.
func Run(legacyDir, rootDir string, log logger.Logger) (Report, error) {
	var r Report
	if log == nil {
		log = logging.Discard()
	}
	if legacyDir == "" || filepath.Clean(legacyDir) == filepath.Clean(rootDir) {
		return r, nil
	}

	info, err := os.Stat(legacyDir)
	if errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return r, fmt.Errorf("stat legacy dir: %w", err)
	}
	if !info.IsDir() {
		return r, fmt.Errorf("legacy path %s is not a directory", legacyDir)
	}

	if _, err := os.Stat(rootDir); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(rootDir), 0755); err != nil {
			return r, fmt.Errorf("create root parent: %w", err)
		}
		if err := os.Rename(legacyDir, rootDir); err == nil {
			r.Renamed = true
			logging.Infof(log, "[migrate] moved %s to %s", legacyDir, rootDir)
			return r, nil
		}
		// Cross-device rename: fall through to per-entry moves.
		if err := os.MkdirAll(rootDir, 0755); err != nil {
			return r, fmt.Errorf("create root dir: %w", err)
		}
	}

	if err := mergeDir(legacyDir, rootDir, "", &r); err != nil {
		return r, err
	}

	if removeIfEmpty(legacyDir) {
		r.Removed = true
	}
	logging.Infof(log, "[migrate] %s -> %s: moved %d, skipped %d", legacyDir, rootDir, len(r.Moved), len(r.Skipped))
	return r, nil
}

// mergeDir moves every entry of src/rel into dst/rel that does not exist
// there yet, descending into directories present on both sides.
func mergeDir(src, dst, rel string, r *Report) error {
	entries, err := os.ReadDir(filepath.Join(src, rel))
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Join(src, rel), err)
	}
	for _, e := range entries {
		name := filepath.Join(rel, e.Name())
		from := filepath.Join(src, name)
		to := filepath.Join(dst, name)

		target, err := os.Lstat(to)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			if err := moveEntry(from, to); err != nil {
				return err
			}
			r.Moved = append(r.Moved, name)
		case err != nil:
			return fmt.Errorf("stat %s: %w", to, err)
		case e.IsDir() && target.IsDir():
			if err := mergeDir(src, dst, name, r); err != nil {
				return err
			}
			removeIfEmpty(from)
		default:
			r.Skipped = append(r.Skipped, name)
		}
	}
	return nil
}

// moveEntry renames from to to, copying regular files when rename fails
// (legacy and root on different devices).
func moveEntry(from, to string) error {
	if err := os.Rename(from, to); err == nil {
		return nil
	}
	info, err := os.Lstat(from)
	if err != nil {
		return fmt.Errorf("stat %s: %w", from, err)
	}
	if info.IsDir() {
		if err := os.MkdirAll(to, info.Mode().Perm()); err != nil {
			return fmt.Errorf("create %s: %w", to, err)
		}
		entries, err := os.ReadDir(from)
		if err != nil {
			return fmt.Errorf("read %s: %w", from, err)
		}
		for _, e := range entries {
			if err := moveEntry(filepath.Join(from, e.Name()), filepath.Join(to, e.Name())); err != nil {
				return err
			}
		}
		return os.Remove(from)
	}
	data, err := os.ReadFile(from)
	if err != nil {
		return fmt.Errorf("read %s: %w", from, err)
	}
	if err := os.WriteFile(to, data, info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", to, err)
	}
	// Keep mtimes: they are the page timestamps shown to the user.
	if err := os.Chtimes(to, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("chtimes %s: %w", to, err)
	}
	return os.Remove(from)
}

func removeIfEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return false
	}
	return os.Remove(dir) == nil
}
