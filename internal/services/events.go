package services

import (
	"context"
	"time"

	"imgrelay/internal/logger"
)

// EventKind - стадия конвейера relay
type EventKind string

const (
	EventDecoded       EventKind = "decoded"
	EventStaged        EventKind = "staged"
	EventUploaded      EventKind = "uploaded"
	EventFailed        EventKind = "failed"
	EventCleanupFailed EventKind = "cleanup_failed"
)

// RelayEvent - одна диагностическая запись. Заполнены только поля, относящиеся к Kind.
type RelayEvent struct {
	Kind      EventKind
	Provider  string
	MimeType  string
	Extension string
	Size      int
	Width     int
	Height    int
	Path      string
	Duration  time.Duration
	Code      string
	Err       error
}

// EventRecorder получает события конвейера. Реализации не должны блокировать.
type EventRecorder interface {
	Record(ctx context.Context, event RelayEvent)
}

// EventRecorderFunc - адаптер для функций
type EventRecorderFunc func(ctx context.Context, event RelayEvent)

func (f EventRecorderFunc) Record(ctx context.Context, event RelayEvent) {
	f(ctx, event)
}

// MultiRecorder рассылает событие всем получателям по порядку
type MultiRecorder []EventRecorder

func (m MultiRecorder) Record(ctx context.Context, event RelayEvent) {
	for _, r := range m {
		if r != nil {
			r.Record(ctx, event)
		}
	}
}

// NopRecorder ничего не делает
var NopRecorder EventRecorder = EventRecorderFunc(func(context.Context, RelayEvent) {})

// ============================================
// SLOG RECORDER
// ============================================

type logRecorder struct{}

// NewLogRecorder пишет события в контекстный логгер
func NewLogRecorder() EventRecorder {
	return logRecorder{}
}

func (logRecorder) Record(ctx context.Context, e RelayEvent) {
	switch e.Kind {
	case EventDecoded:
		args := []any{"provider", e.Provider, "mime", e.MimeType, "ext", e.Extension, "size", e.Size}
		if e.Width > 0 {
			args = append(args, "width", e.Width, "height", e.Height)
		}
		logger.CtxDebug(ctx, "Data URI decoded", args...)
	case EventStaged:
		logger.CtxDebug(ctx, "Scratch file written", "provider", e.Provider, "path", e.Path, "size", e.Size)
	case EventUploaded:
		logger.CtxInfo(ctx, "Relay upload completed", "provider", e.Provider, "duration", e.Duration)
	case EventFailed:
		logger.CtxWarn(ctx, "Relay upload failed", "provider", e.Provider, "code", e.Code, "error", errString(e.Err))
	case EventCleanupFailed:
		logger.CtxWarn(ctx, "Failed to remove scratch file", "path", e.Path, "error", errString(e.Err))
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
