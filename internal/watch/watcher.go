package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rendis/bpmnport/internal/analysis"
	"github.com/rendis/bpmnport/internal/logging"
	"github.com/rendis/bpmnport/internal/store"
)

// Watcher re-analyzes a drop directory of BPMN documents on a cron schedule
// and persists each fresh report to the run-history store.
type Watcher struct {
	dir      string
	schedule cron.Schedule
	analyzer *analysis.Analyzer
	store    store.Store
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	seenMu sync.Mutex
	seen   map[string]time.Time // path -> mod time at last analysis
}

// NewWatcher parses the cron expression (standard 5-field syntax) and builds
// a Watcher over the given directory.
func NewWatcher(dir, cronExpr string, analyzer *analysis.Analyzer, s store.Store, logger *slog.Logger) (*Watcher, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", cronExpr, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		dir:      dir,
		schedule: schedule,
		analyzer: analyzer,
		store:    s,
		logger:   logger,
		seen:     make(map[string]time.Time),
	}, nil
}

// Start launches the background loop. An initial scan runs immediately;
// subsequent scans fire per the cron schedule.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.done != nil {
		w.mu.Unlock()
		return fmt.Errorf("watcher already started")
	}
	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.loop(watchCtx)
	w.logger.Info("watcher started", slog.String("dir", w.dir))
	return nil
}

// Stop cancels the loop and waits for it to drain.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	w.ScanOnce(ctx)
	next := w.schedule.Next(time.Now())

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Before(next) {
				continue
			}
			w.ScanOnce(ctx)
			next = w.schedule.Next(now)
		}
	}
}

// ScanOnce walks the directory, analyzes every new or modified .bpmn
// document and persists the reports. One bad document never stops the scan.
func (w *Watcher) ScanOnce(ctx context.Context) {
	err := filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".bpmn" && ext != ".xml" {
			return nil
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil // vanished between walk and stat
		}
		if !w.needsAnalysis(path, info.ModTime()) {
			return nil
		}
		w.analyzeOne(ctx, path, info.ModTime())
		return nil
	})
	if err != nil {
		w.logger.Error("directory scan failed",
			slog.String("dir", w.dir),
			slog.String("error", err.Error()))
	}
}

func (w *Watcher) needsAnalysis(path string, modTime time.Time) bool {
	w.seenMu.Lock()
	defer w.seenMu.Unlock()
	last, ok := w.seen[path]
	return !ok || modTime.After(last)
}

func (w *Watcher) analyzeOne(ctx context.Context, path string, modTime time.Time) {
	ctx = logging.WithDocumentID(ctx, filepath.Base(path))
	report := w.analyzer.AnalyzeFile(path)

	id, err := w.store.SaveReport(ctx, report)
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to persist report",
			slog.String("error", err.Error()))
		return
	}

	w.seenMu.Lock()
	w.seen[path] = modTime
	w.seenMu.Unlock()

	w.logger.InfoContext(ctx, "document analyzed",
		slog.String("report_id", id),
		slog.Float64("feasibility", report.FeasibilityPercentage),
		slog.String("complexity", string(report.Complexity)))
}
