package workers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"imgrelay/internal/logger"
	"imgrelay/internal/storage"
)

// ScratchWorker удаляет staging-файлы, которые пережили свой запрос
// (например, после падения процесса посреди загрузки).
type ScratchWorker struct {
	scratch  *storage.LocalStorage
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time
}

func NewScratchWorker(scratch *storage.LocalStorage, interval, maxAge time.Duration) *ScratchWorker {
	return &ScratchWorker{
		scratch:  scratch,
		interval: interval,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Start делает один проход сразу и дальше раз в interval, пока жив ctx
func (w *ScratchWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		return
	}
	go w.run(ctx)
}

func (w *ScratchWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Scratch worker stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep удаляет файлы upload_* старше maxAge и возвращает их число
func (w *ScratchWorker) Sweep(ctx context.Context) int {
	entries, err := os.ReadDir(w.scratch.BasePath())
	if err != nil {
		logger.Error("Error reading scratch directory", "path", w.scratch.BasePath(), "error", err)
		return 0
	}

	cutoff := w.now().Add(-w.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "upload_") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := w.scratch.Delete(ctx, entry.Name()); err != nil {
			logger.Warn("Error removing stale scratch file", "path", filepath.Join(w.scratch.BasePath(), entry.Name()), "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		logger.Info("Removed stale scratch files", "count", removed)
	}
	return removed
}
