package stock

import (
	"time"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
)

// StockRecord tracks the on-hand quantity for a single product.
// It is the aggregate root for stock operations. One record exists per
// tenant-product combination.
//
// CurrentStock is intentionally allowed to go negative: reverts and sales are
// never blocked by the available level. Sufficiency checking is advisory only
// (see SaleService.CheckAvailability) and enforcement is a caller policy.
//
// Version holds the load-time token for optimistic concurrency. Domain methods
// mutate state without bumping it; the repository bumps it once per persisted
// write and rejects stale tokens with ErrConcurrencyConflict.
type StockRecord struct {
	shared.TenantAggregateRoot
	ProductID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_record_tenant_product,priority:2"`
	CurrentStock int64     `gorm:"not null;default:0"` // Live on-hand quantity, signed
	MinStock     int64     `gorm:"not null;default:0"` // Reorder threshold, informational
}

// TableName returns the table name for GORM
func (StockRecord) TableName() string {
	return "stock_records"
}

// NewStockRecord creates a new stock record for a product
func NewStockRecord(tenantID, productID uuid.UUID) (*StockRecord, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}

	return &StockRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
	}, nil
}

// Increase adds a positive quantity to the current stock
func (r *StockRecord) Increase(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	r.CurrentStock += quantity
	r.UpdatedAt = time.Now()

	r.AddDomainEvent(NewStockIncreasedEvent(r, quantity))

	return nil
}

// Decrease subtracts a positive quantity from the current stock.
// There is no floor check: the balance may become negative.
func (r *StockRecord) Decrease(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	r.CurrentStock -= quantity
	r.UpdatedAt = time.Now()

	r.AddDomainEvent(NewStockDecreasedEvent(r, quantity))

	if r.IsBelowMinimum() {
		r.AddDomainEvent(NewStockBelowThresholdEvent(r))
	}

	return nil
}

// SetMinStock sets the reorder threshold
func (r *StockRecord) SetMinStock(quantity int64) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Minimum stock cannot be negative")
	}

	r.MinStock = quantity
	r.UpdatedAt = time.Now()

	return nil
}

// IsBelowMinimum returns true if current stock is below the reorder threshold
func (r *StockRecord) IsBelowMinimum() bool {
	return r.MinStock > 0 && r.CurrentStock < r.MinStock
}

// CanFulfill returns true if the current stock covers the requested quantity
func (r *StockRecord) CanFulfill(quantity int64) bool {
	return r.CurrentStock >= quantity
}
