// Package watch wires filesystem changes to recalculation: every write to
// the quote file becomes a scheduleCalculation call for the components
// that actually changed.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"netquote/internal/orchestrator"
)

// Reloader re-reads the quote source and reports which components changed.
type Reloader interface {
	Reload() ([]string, error)
}

// Watcher drives the orchestrator from quote-file edits.
type Watcher struct {
	path  string
	quote Reloader
	orch  *orchestrator.Orchestrator
	log   *slog.Logger
	delay time.Duration
}

// New builds a watcher for the quote file at path. delay is passed
// through to ScheduleCalculation (zero means the orchestrator default).
func New(path string, quote Reloader, orch *orchestrator.Orchestrator, delay time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{path: path, quote: quote, orch: orch, log: logger, delay: delay}
}

// Run blocks, scheduling recalculations on every quote edit until ctx is
// cancelled. The parent directory is watched rather than the file itself
// because most editors replace files by rename.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.log.Info("watching quote", "path", w.path)

	target := filepath.Clean(w.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.handleEdit()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEdit() {
	changed, err := w.quote.Reload()
	if err != nil {
		// Mid-save truncation or invalid JSON; keep the previous quote.
		w.log.Warn("quote reload failed", "error", err)
		return
	}
	for _, id := range changed {
		if err := w.orch.ScheduleCalculation(id, w.delay, "file-watch"); err != nil {
			w.log.Warn("component in quote is not in the catalog", "component", id, "error", err)
		}
	}
	if len(changed) > 0 {
		w.log.Debug("quote edit scheduled", "changed", len(changed))
	}
}
