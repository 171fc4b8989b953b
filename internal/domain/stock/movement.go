package stock

import (
	"time"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction represents the direction of a stock movement
type Direction string

const (
	// DirectionIn increases stock (purchase receiving, sale reversal)
	DirectionIn Direction = "IN"
	// DirectionOut decreases stock (sale shipment, purchase reversal)
	DirectionOut Direction = "OUT"
)

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// IsValid returns true if the direction is valid
func (d Direction) IsValid() bool {
	return d == DirectionIn || d == DirectionOut
}

// Opposite returns the inverted direction
func (d Direction) Opposite() Direction {
	if d == DirectionIn {
		return DirectionOut
	}
	return DirectionIn
}

// SourceType represents the source document type for a movement
type SourceType string

const (
	// SourceTypePurchase is a purchase document
	SourceTypePurchase SourceType = "PURCHASE"
	// SourceTypeSale is a sale document
	SourceTypeSale SourceType = "SALE"
)

// String returns the string representation of SourceType
func (s SourceType) String() string {
	return string(s)
}

// IsValid returns true if the source type is valid
func (s SourceType) IsValid() bool {
	return s == SourceTypePurchase || s == SourceTypeSale
}

// Movement is an immutable journal entry recording one directional change to a
// stock record. Once created, movements are never modified or deleted;
// corrections are expressed as new movements. The journal is the audit trail
// that must be able to reconstruct CurrentStock for any record.
type Movement struct {
	shared.BaseEntity
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_tenant_time,priority:1"`
	StockRecordID uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_record"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_product"`
	Quantity      int64           `gorm:"not null"`                                            // Always positive, direction carries the sign
	Direction     Direction       `gorm:"type:varchar(10);not null"`
	SourceType    SourceType      `gorm:"type:varchar(20);not null;index:idx_movement_source"` // Type of source document
	SourceID      string          `gorm:"type:varchar(50);not null;index:idx_movement_source"` // ID of source document
	SourceLineID  string          `gorm:"type:varchar(50)"`                                    // ID of source line item (optional)
	UnitCost      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`               // Price context at time of movement
	Reason        string          `gorm:"type:varchar(255)"`                                   // Human-readable cause
	OperatorID    *uuid.UUID      `gorm:"type:uuid"`                                           // User who triggered the movement
	OccurredAt    time.Time       `gorm:"type:timestamptz;not null;index:idx_movement_tenant_time,priority:2"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "stock_movements"
}

// NewMovement creates a new stock movement
func NewMovement(
	tenantID uuid.UUID,
	stockRecordID uuid.UUID,
	productID uuid.UUID,
	direction Direction,
	quantity int64,
	sourceType SourceType,
	sourceID string,
) (*Movement, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if stockRecordID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STOCK_RECORD", "Stock record ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Invalid movement direction")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !sourceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE_TYPE", "Invalid source type")
	}
	if sourceID == "" {
		return nil, shared.NewDomainError("INVALID_SOURCE_ID", "Source ID cannot be empty")
	}

	return &Movement{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      tenantID,
		StockRecordID: stockRecordID,
		ProductID:     productID,
		Quantity:      quantity,
		Direction:     direction,
		SourceType:    sourceType,
		SourceID:      sourceID,
		OccurredAt:    time.Now(),
	}, nil
}

// WithSourceLineID sets the source line ID for the movement
func (m *Movement) WithSourceLineID(lineID string) *Movement {
	m.SourceLineID = lineID
	return m
}

// WithUnitCost sets the unit cost context for the movement
func (m *Movement) WithUnitCost(unitCost decimal.Decimal) *Movement {
	m.UnitCost = unitCost.Round(2)
	return m
}

// WithReason sets the reason for the movement
func (m *Movement) WithReason(reason string) *Movement {
	m.Reason = reason
	return m
}

// WithOperatorID sets the operator ID for the movement
func (m *Movement) WithOperatorID(operatorID uuid.UUID) *Movement {
	m.OperatorID = &operatorID
	return m
}

// WithOccurredAt sets the movement timestamp
func (m *Movement) WithOccurredAt(t time.Time) *Movement {
	m.OccurredAt = t
	return m
}

// SignedQuantity returns the quantity with sign based on direction.
// Positive for In, negative for Out.
func (m *Movement) SignedQuantity() int64 {
	if m.Direction == DirectionOut {
		return -m.Quantity
	}
	return m.Quantity
}

// IsInbound returns true if this movement increases stock
func (m *Movement) IsInbound() bool {
	return m.Direction == DirectionIn
}

// IsOutbound returns true if this movement decreases stock
func (m *Movement) IsOutbound() bool {
	return m.Direction == DirectionOut
}
