// Package common holds helpers shared by event handlers.
package common

import (
	"context"
	"log/slog"

	"github.com/amirasaad/fintechflow/pkg/domain/events"
	"github.com/amirasaad/fintechflow/pkg/eventbus"
	"github.com/amirasaad/fintechflow/pkg/idempotency"
	"github.com/google/uuid"
)

// KeyExtractor extracts an idempotency key from an event
type KeyExtractor func(events.Event) string

// EventIDKey keys an event by its emission id, so redelivered copies of the
// same event share a key.
func EventIDKey(e events.Event) string {
	identified, ok := e.(interface{ EventID() uuid.UUID })
	if !ok || identified.EventID() == uuid.Nil {
		return ""
	}
	return "event:" + e.Type() + ":" + identified.EventID().String()
}

// WithIdempotency wraps a handler so each key is handled successfully at
// most once. Failed attempts are not remembered and may be retried.
func WithIdempotency(
	handler eventbus.HandlerFunc,
	guard *idempotency.Guard,
	keyExtractor KeyExtractor,
	handlerName string,
	logger *slog.Logger,
) eventbus.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, e events.Event) error {
		key := keyExtractor(e)
		if key == "" {
			return handler(ctx, e)
		}
		key = handlerName + ":" + key

		_, replayed, err := guard.Do(ctx, key, func() (*idempotency.Result, error) {
			if err := handler(ctx, e); err != nil {
				return nil, err
			}
			return &idempotency.Result{}, nil
		})
		if replayed {
			logger.Info("🔁 [SKIP] Event already processed",
				"handler", handlerName,
				"event_type", e.Type(),
				"idempotency_key", key,
			)
		}
		return err
	}
}
