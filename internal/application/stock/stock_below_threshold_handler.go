package stock

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mrp/backend/internal/domain/shared"
	"github.com/mrp/backend/internal/domain/stock"
)

// StockAlertNotifier is the interface for pushing stock alerts to an
// external channel
type StockAlertNotifier interface {
	// SendAlert sends a stock alert notification
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert represents a stock level alert
type StockAlert struct {
	MaterialID      string `json:"material_id"`
	MaterialCode    string `json:"material_code"`
	Available       string `json:"available"`
	MinimumQuantity string `json:"minimum_quantity"`
	AlertType       string `json:"alert_type"` // "low_stock", "out_of_stock"
}

// StockBelowThresholdHandler reacts to StockBelowThreshold events by logging
// and, when a notifier is configured, pushing an alert
type StockBelowThresholdHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// NewStockBelowThresholdHandler creates a new handler for below-threshold events
func NewStockBelowThresholdHandler(logger *zap.Logger) *StockBelowThresholdHandler {
	return &StockBelowThresholdHandler{logger: logger}
}

// WithNotifier sets the notifier for sending alerts
func (h *StockBelowThresholdHandler) WithNotifier(notifier StockAlertNotifier) *StockBelowThresholdHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *StockBelowThresholdHandler) EventTypes() []string {
	return []string{stock.EventTypeStockBelowThreshold}
}

// Handle processes a StockBelowThresholdEvent
func (h *StockBelowThresholdHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	thresholdEvent, ok := event.(*stock.StockBelowThresholdEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", stock.EventTypeStockBelowThreshold),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			stock.EventTypeStockBelowThreshold, event.EventType())
	}

	h.logger.Warn("stock below threshold detected",
		zap.String("material_id", event.AggregateID().String()),
		zap.String("material_code", thresholdEvent.MaterialCode),
		zap.String("available", thresholdEvent.Available.String()),
		zap.String("min_quantity", thresholdEvent.MinQuantity.String()),
	)

	if h.notifier == nil {
		return nil
	}

	alertType := "low_stock"
	if thresholdEvent.Available.IsZero() {
		alertType = "out_of_stock"
	}

	alert := StockAlert{
		MaterialID:      event.AggregateID().String(),
		MaterialCode:    thresholdEvent.MaterialCode,
		Available:       thresholdEvent.Available.String(),
		MinimumQuantity: thresholdEvent.MinQuantity.String(),
		AlertType:       alertType,
	}
	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		// Alert delivery is best effort; the deduction already committed
		h.logger.Error("failed to send stock alert",
			zap.String("material_code", alert.MaterialCode),
			zap.Error(err),
		)
	}

	return nil
}

var _ shared.EventHandler = (*StockBelowThresholdHandler)(nil)
