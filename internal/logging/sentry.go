package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry configures the global Sentry client. An empty dsn disables
// Sentry and is not an error.
func InitSentry(dsn, environment, release string) error {
	if dsn == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
	})
}

// FlushSentry waits for buffered events to be delivered.
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}

// SentryHandler forwards error-level records to Sentry before passing them
// on to the wrapped handler.
type SentryHandler struct {
	next    slog.Handler
	attrs   []slog.Attr
	capture func(*sentry.Event)
}

func NewSentryHandler(next slog.Handler) *SentryHandler {
	return &SentryHandler{
		next: next,
		capture: func(e *sentry.Event) {
			sentry.CaptureEvent(e)
		},
	}
}

func (h *SentryHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *SentryHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		event := sentry.NewEvent()
		event.Level = sentry.LevelError
		event.Message = r.Message
		event.Timestamp = r.Time

		extra := make(map[string]any, len(h.attrs)+r.NumAttrs())
		for _, a := range h.attrs {
			extra[a.Key] = a.Value.Any()
		}
		r.Attrs(func(a slog.Attr) bool {
			extra[a.Key] = a.Value.Any()
			return true
		})
		event.Extra = extra

		h.capture(event)
	}

	return h.next.Handle(ctx, r)
}

func (h *SentryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &SentryHandler{next: h.next.WithAttrs(attrs), attrs: merged, capture: h.capture}
}

func (h *SentryHandler) WithGroup(name string) slog.Handler {
	return &SentryHandler{next: h.next.WithGroup(name), attrs: h.attrs, capture: h.capture}
}
