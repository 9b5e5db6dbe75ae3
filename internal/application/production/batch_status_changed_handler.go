package production

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mrp/backend/internal/domain/production"
	"github.com/mrp/backend/internal/domain/shared"
)

// BatchNotifier pushes batch lifecycle notifications to an external channel
type BatchNotifier interface {
	// NotifyStatusChanged publishes a status change notification
	NotifyStatusChanged(ctx context.Context, notification BatchStatusNotification) error
}

// BatchStatusNotification is the payload pushed when a batch changes status
type BatchStatusNotification struct {
	BatchID        string `json:"batch_id"`
	Reference      string `json:"reference"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
	Actor          string `json:"actor"`
	OccurredAt     string `json:"occurred_at"`
}

// BatchStatusChangedHandler reacts to BatchStatusChanged events. Production
// floor displays subscribe to the notification channel; delivery is fire and
// forget and never blocks or fails the transition that triggered it.
type BatchStatusChangedHandler struct {
	logger   *zap.Logger
	notifier BatchNotifier
}

// NewBatchStatusChangedHandler creates a new handler for status change events
func NewBatchStatusChangedHandler(logger *zap.Logger) *BatchStatusChangedHandler {
	return &BatchStatusChangedHandler{logger: logger}
}

// WithNotifier sets the notifier for pushing notifications
func (h *BatchStatusChangedHandler) WithNotifier(notifier BatchNotifier) *BatchStatusChangedHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *BatchStatusChangedHandler) EventTypes() []string {
	return []string{production.EventTypeBatchStatusChanged}
}

// Handle processes a BatchStatusChangedEvent
func (h *BatchStatusChangedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	statusEvent, ok := event.(*production.BatchStatusChangedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", production.EventTypeBatchStatusChanged),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			production.EventTypeBatchStatusChanged, event.EventType())
	}

	h.logger.Info("batch status changed",
		zap.String("batch_ref", statusEvent.Reference),
		zap.String("previous", statusEvent.PreviousStatus.String()),
		zap.String("new", statusEvent.NewStatus.String()),
		zap.String("actor", statusEvent.Actor),
	)

	// Only production starts are pushed to the floor displays
	if h.notifier == nil || statusEvent.NewStatus != production.BatchStatusInProduction {
		return nil
	}

	notification := BatchStatusNotification{
		BatchID:        event.AggregateID().String(),
		Reference:      statusEvent.Reference,
		PreviousStatus: statusEvent.PreviousStatus.String(),
		NewStatus:      statusEvent.NewStatus.String(),
		Actor:          statusEvent.Actor,
		OccurredAt:     event.OccurredAt().UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if err := h.notifier.NotifyStatusChanged(ctx, notification); err != nil {
		h.logger.Error("failed to push batch notification",
			zap.String("batch_ref", notification.Reference),
			zap.Error(err),
		)
	}

	return nil
}

var _ shared.EventHandler = (*BatchStatusChangedHandler)(nil)
