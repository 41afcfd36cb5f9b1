package notifications

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

// Publisher доставляет события пользователя.
type Publisher interface {
	Publish(ctx context.Context, userID uuid.UUID, event Event) error
}

type Fanout struct {
	targets []Publisher
	logger  *slog.Logger
}

// NewFanout рассылает событие во все переданные публикаторы. nil пропускаются.
func NewFanout(logger *slog.Logger, targets ...Publisher) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}

	f := &Fanout{logger: logger}
	for _, target := range targets {
		if target != nil {
			f.targets = append(f.targets, target)
		}
	}
	return f
}

// Publish отправляет событие во все публикаторы и объединяет ошибки.
func (f *Fanout) Publish(ctx context.Context, userID uuid.UUID, event Event) error {
	var errs []error
	for _, target := range f.targets {
		if err := target.Publish(ctx, userID, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Notify публикует событие и только логирует ошибку доставки.
func Notify(ctx context.Context, publisher Publisher, logger *slog.Logger, userID uuid.UUID, eventType string, data interface{}) {
	if publisher == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := publisher.Publish(ctx, userID, Event{Type: eventType, Data: data}); err != nil {
		logger.WarnContext(ctx, "event publish failed",
			slog.String("user_id", userID.String()),
			slog.String("type", eventType),
			slog.String("error", err.Error()),
		)
	}
}
