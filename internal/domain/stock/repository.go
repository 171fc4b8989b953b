package stock

import (
	"context"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/google/uuid"
)

// StockRecordRepository defines the interface for stock record persistence
type StockRecordRepository interface {
	// FindByID finds a stock record by its ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*StockRecord, error)

	// FindByProductID finds the stock record for a product
	FindByProductID(ctx context.Context, tenantID, productID uuid.UUID) (*StockRecord, error)

	// FindByProductIDs batch-loads stock records for a set of products in one
	// round-trip. Products without a record are simply absent from the result.
	FindByProductIDs(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID) ([]StockRecord, error)

	// FindAllForTenant finds all stock records for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockRecord, error)

	// FindBelowMinimum finds records below their reorder threshold
	FindBelowMinimum(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockRecord, error)

	// GetOrCreate gets the existing stock record for a product or creates a new one
	GetOrCreate(ctx context.Context, tenantID, productID uuid.UUID) (*StockRecord, error)

	// Save creates or updates a stock record
	Save(ctx context.Context, record *StockRecord) error

	// SaveMany persists a batch of updated stock records as one bulk operation.
	// Every write checks the record's version token; a stale write returns
	// shared.ErrConcurrencyConflict and callers are expected to retry.
	SaveMany(ctx context.Context, records []*StockRecord) error

	// CountForTenant counts stock records matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// MovementRepository defines the interface for movement journal persistence.
// The journal is append-only: there are no update or delete operations.
type MovementRepository interface {
	// Append creates a single movement record
	Append(ctx context.Context, movement *Movement) error

	// AppendMany creates a batch of movement records as one bulk operation
	AppendMany(ctx context.Context, movements []*Movement) error

	// FindBySource finds movements by source document
	FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType SourceType, sourceID string) ([]Movement, error)

	// FindByProduct finds movements for a product
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]Movement, error)

	// FindForTenant finds all movements for a tenant
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Movement, error)

	// SumSignedQuantityByProduct replays the journal for a product and returns
	// the signed quantity sum (In positive, Out negative). Used to audit the
	// conservation invariant against the live counter.
	SumSignedQuantityByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error)

	// CountForTenant counts movements matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// MovementFilter extends shared.Filter with movement-specific filters
type MovementFilter struct {
	shared.Filter
	ProductID  *uuid.UUID
	Direction  *Direction
	SourceType *SourceType
	SourceID   string
	OperatorID *uuid.UUID
}
