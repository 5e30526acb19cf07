package app

import (
	"github.com/amirasaad/fintechflow/pkg/domain/events"
	"github.com/amirasaad/fintechflow/pkg/handler/audit"
	"github.com/amirasaad/fintechflow/pkg/handler/common"
)

// setupEventBus registers the post-commit handlers. Transports may redeliver,
// so every handler is keyed by event id.
func (a *App) setupEventBus() {
	bus := a.Deps.EventBus
	if bus == nil {
		return
	}
	logger := a.Deps.Logger.With("component", "audit")
	for eventType := range events.EventTypes {
		bus.Register(
			eventType,
			common.WithIdempotency(
				audit.Handle(logger),
				a.Idempotency,
				common.EventIDKey,
				"audit",
				logger,
			),
		)
	}
}
