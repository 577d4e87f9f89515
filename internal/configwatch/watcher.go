package configwatch

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Watcher polls one file and calls onChange when its modification time moves.
type Watcher struct {
	path     string
	interval time.Duration
	logger   *slog.Logger
	onChange func()

	modTime time.Time
}

// New creates a Watcher for path. The current modification time is the
// baseline, so onChange only fires for later edits.
func New(path string, interval time.Duration, logger *slog.Logger, onChange func()) *Watcher {
	return &Watcher{
		path:     path,
		interval: interval,
		logger:   logger,
		onChange: onChange,
		modTime:  fileModTime(path),
	}
}

// Run polls until the context is cancelled. It blocks, so call it in a goroutine.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check compares the file against the last seen modification time and
// reports whether onChange was called. Not safe for concurrent use.
func (w *Watcher) Check() bool {
	current := fileModTime(w.path)

	// A missing file may be mid-save.
	if current.IsZero() || current.Equal(w.modTime) {
		return false
	}

	w.modTime = current
	w.logger.Info("config file changed", "path", w.path)
	w.onChange()
	return true
}

func fileModTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
