package reconcile

import (
	"context"

	"go.uber.org/zap"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/erp/stockcore/internal/domain/stock"
)

// Alert classification for stock that crossed its minimum threshold.
const (
	AlertTypeLowStock   = "low_stock"
	AlertTypeOutOfStock = "out_of_stock"
)

// StockAlert describes a balance that fell below its configured minimum.
type StockAlert struct {
	TenantID      string
	StockRecordID string
	ProductID     string
	CurrentStock  int64
	MinStock      int64
	AlertType     string
}

// StockAlertNotifier forwards low stock alerts to an external channel.
type StockAlertNotifier interface {
	NotifyLowStock(ctx context.Context, alert StockAlert) error
}

// LowStockHandler reacts to threshold events emitted when a
// reconciliation drives a balance below its minimum. It always logs the
// condition and forwards an alert when a notifier is configured.
type LowStockHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

func NewLowStockHandler(logger *zap.Logger) *LowStockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LowStockHandler{
		logger: logger.Named("low-stock-handler"),
	}
}

// WithNotifier wires an external alert channel into the handler.
func (h *LowStockHandler) WithNotifier(notifier StockAlertNotifier) *LowStockHandler {
	h.notifier = notifier
	return h
}

func (h *LowStockHandler) EventTypes() []string {
	return []string{stock.EventTypeStockBelowThreshold}
}

func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	thresholdEvent, ok := event.(*stock.StockBelowThresholdEvent)
	if !ok {
		return nil
	}

	alertType := AlertTypeLowStock
	if thresholdEvent.CurrentStock <= 0 {
		alertType = AlertTypeOutOfStock
	}

	h.logger.Warn("Stock below minimum threshold",
		zap.String("tenant_id", thresholdEvent.TenantID().String()),
		zap.String("stock_record_id", thresholdEvent.StockRecordID.String()),
		zap.String("product_id", thresholdEvent.ProductID.String()),
		zap.Int64("current_stock", thresholdEvent.CurrentStock),
		zap.Int64("min_stock", thresholdEvent.MinStock),
		zap.String("alert_type", alertType))

	if h.notifier == nil {
		return nil
	}

	return h.notifier.NotifyLowStock(ctx, StockAlert{
		TenantID:      thresholdEvent.TenantID().String(),
		StockRecordID: thresholdEvent.StockRecordID.String(),
		ProductID:     thresholdEvent.ProductID.String(),
		CurrentStock:  thresholdEvent.CurrentStock,
		MinStock:      thresholdEvent.MinStock,
		AlertType:     alertType,
	})
}

var _ shared.EventHandler = (*LowStockHandler)(nil)
