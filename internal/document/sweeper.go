package document

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Sweeper removes stale uploaded and generated files. Every deletion is
// independent and best-effort: failures are logged, the sweep continues,
// and the caller never sees an error.
type Sweeper struct {
	layout    Layout
	store     *Store
	retention time.Duration
	log       *slog.Logger
}

func NewSweeper(layout Layout, store *Store, retention time.Duration, log *slog.Logger) *Sweeper {
	if retention <= 0 {
		retention = time.Hour
	}
	return &Sweeper{
		layout:    layout,
		store:     store,
		retention: retention,
		log:       log,
	}
}

// Sweep removes temp audio artifacts older than the retention window. With
// force it additionally removes the active document, its derived artifacts,
// and all audio regardless of age, and clears the store slot. Returns the
// number of files removed.
func (s *Sweeper) Sweep(force bool) int {
	removed := 0
	cutoff := time.Now().Add(-s.retention)

	for _, path := range s.glob(s.layout.AudioGlob()) {
		if !force {
			info, err := os.Stat(path)
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
		}
		removed += s.remove(path)
	}

	if !force {
		return removed
	}

	removed += s.remove(s.layout.DocumentPath())
	removed += s.remove(s.layout.ContentPath())
	removed += s.remove(s.layout.MetadataPath())
	for _, path := range s.glob(s.layout.HistoryGlob()) {
		removed += s.remove(path)
	}

	s.store.Clear()
	return removed
}

func (s *Sweeper) glob(pattern string) []string {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		s.log.Warn("bad glob pattern", "pattern", pattern, "error", err)
		return nil
	}
	return matches
}

func (s *Sweeper) remove(path string) int {
	err := os.Remove(path)
	if err == nil {
		return 1
	}
	if !os.IsNotExist(err) {
		s.log.Warn("cleanup failed for file", "path", path, "error", err)
	}
	return 0
}
