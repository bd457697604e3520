// Package sweeper removes aged locally-stored video files. Only the
// call-based providers write to disk, so everything in the serving directory
// is fair game once older than the retention window.
package sweeper

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically deletes files in dir whose modification time is older
// than maxAge. Failures are logged and never stop subsequent sweeps.
type Sweeper struct {
	dir      string
	maxAge   time.Duration
	interval time.Duration
	logger   zerolog.Logger
}

// New builds a sweeper over dir. interval and maxAge both default to one hour.
func New(dir string, maxAge, interval time.Duration, logger zerolog.Logger) *Sweeper {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{dir: dir, maxAge: maxAge, interval: interval, logger: logger}
}

// Run sweeps on a fixed interval until ctx is canceled. Intended to run on
// its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep performs a single pass. The directory listing is the only source of
// truth; a missing directory simply means nothing has been stored yet.
func (s *Sweeper) Sweep() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("dir", s.dir).Msg("sweeper: cannot list video dir")
		}
		return
	}
	cutoff := time.Now().Add(-s.maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.logger.Warn().Err(err).Str("file", entry.Name()).Msg("sweeper: cannot stat file")
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn().Err(err).Str("file", entry.Name()).Msg("sweeper: cannot delete file")
			continue
		}
		s.logger.Info().Str("file", entry.Name()).Msg("sweeper: cleaned up old video")
	}
}
