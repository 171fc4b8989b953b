package stock

import (
	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeStockRecord = "StockRecord"

// Event type constants
const (
	EventTypeStockIncreased      = "StockIncreased"
	EventTypeStockDecreased      = "StockDecreased"
	EventTypeStockBelowThreshold = "StockBelowThreshold"
)

// StockIncreasedEvent is raised when a stock record's balance is increased
type StockIncreasedEvent struct {
	shared.BaseDomainEvent
	StockRecordID uuid.UUID `json:"stock_record_id"`
	ProductID     uuid.UUID `json:"product_id"`
	Quantity      int64     `json:"quantity"`
	CurrentStock  int64     `json:"current_stock"`
}

// NewStockIncreasedEvent creates a new StockIncreasedEvent
func NewStockIncreasedEvent(record *StockRecord, quantity int64) *StockIncreasedEvent {
	return &StockIncreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockIncreased, AggregateTypeStockRecord, record.ID, record.TenantID),
		StockRecordID:   record.ID,
		ProductID:       record.ProductID,
		Quantity:        quantity,
		CurrentStock:    record.CurrentStock,
	}
}

// EventType returns the event type name
func (e *StockIncreasedEvent) EventType() string {
	return EventTypeStockIncreased
}

// StockDecreasedEvent is raised when a stock record's balance is decreased
type StockDecreasedEvent struct {
	shared.BaseDomainEvent
	StockRecordID uuid.UUID `json:"stock_record_id"`
	ProductID     uuid.UUID `json:"product_id"`
	Quantity      int64     `json:"quantity"`
	CurrentStock  int64     `json:"current_stock"`
}

// NewStockDecreasedEvent creates a new StockDecreasedEvent
func NewStockDecreasedEvent(record *StockRecord, quantity int64) *StockDecreasedEvent {
	return &StockDecreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDecreased, AggregateTypeStockRecord, record.ID, record.TenantID),
		StockRecordID:   record.ID,
		ProductID:       record.ProductID,
		Quantity:        quantity,
		CurrentStock:    record.CurrentStock,
	}
}

// EventType returns the event type name
func (e *StockDecreasedEvent) EventType() string {
	return EventTypeStockDecreased
}

// StockBelowThresholdEvent is raised when a decrease leaves the balance below
// the record's reorder threshold
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	StockRecordID uuid.UUID `json:"stock_record_id"`
	ProductID     uuid.UUID `json:"product_id"`
	CurrentStock  int64     `json:"current_stock"`
	MinStock      int64     `json:"min_stock"`
}

// NewStockBelowThresholdEvent creates a new StockBelowThresholdEvent
func NewStockBelowThresholdEvent(record *StockRecord) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, AggregateTypeStockRecord, record.ID, record.TenantID),
		StockRecordID:   record.ID,
		ProductID:       record.ProductID,
		CurrentStock:    record.CurrentStock,
		MinStock:        record.MinStock,
	}
}

// EventType returns the event type name
func (e *StockBelowThresholdEvent) EventType() string {
	return EventTypeStockBelowThreshold
}
