package intake

// watcher.go is the poll loop: a single cooperative loop that scans the
// incoming directory and processes candidate files strictly sequentially.
//
// The seen-set is deliberately volatile. Restart safety comes from the
// terminal move: a file absent from incoming/ cannot be rescanned. The
// in-memory set is only a same-run fast path that keeps a file whose
// terminal move failed from being hammered every few seconds.

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/JonMunkholm/sensorpipe/internal/logging"
)

// Watcher scans an incoming directory on a fixed interval and hands each
// new CSV file to the processor.
type Watcher struct {
	processor *Processor
	dir       string
	interval  time.Duration

	// seen holds file names already attempted in this process run.
	// Not persisted; see the file comment.
	seen map[string]struct{}
}

// NewWatcher creates a watcher over dir, scanning every interval.
func NewWatcher(processor *Processor, dir string, interval time.Duration) *Watcher {
	return &Watcher{
		processor: processor,
		dir:       dir,
		interval:  interval,
		seen:      make(map[string]struct{}),
	}
}

// Run scans immediately, then on every tick, until ctx is cancelled. A file
// mid-processing finishes its terminal action before the loop observes the
// cancellation.
func (w *Watcher) Run(ctx context.Context) {
	logger := logging.FromContext(ctx)
	logger.Info("intake loop started", "dir", w.dir, "interval", w.interval)

	w.Scan(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("intake loop stopped")
			return
		case <-ticker.C:
			w.Scan(ctx)
		}
	}
}

// Scan performs one pass over the incoming directory: candidate files in
// lexical name order, processed one at a time. Single-file failures never
// abort the scan.
func (w *Watcher) Scan(ctx context.Context) {
	logger := logging.FromContext(ctx)

	paths, err := filepath.Glob(filepath.Join(w.dir, "*.csv"))
	if err != nil {
		logger.Error("scanning incoming directory failed", "dir", w.dir, "error", err)
		return
	}
	sort.Strings(paths)

	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		name := filepath.Base(path)

		if _, ok := w.seen[name]; ok {
			continue
		}
		if hasDoneMarker(path) {
			w.seen[name] = struct{}{}
			continue
		}

		// Zero-byte or unstat-able files stay pending: they are usually
		// still being written and will be complete on a later scan.
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			continue
		}

		w.seen[name] = struct{}{}
		outcome := w.processor.ProcessFile(ctx, path)
		logger.Debug("scan handled file", "file", name, "outcome", outcome.String())
	}
}
