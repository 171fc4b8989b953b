package reconcile

import (
	"context"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/erp/stockcore/internal/domain/stock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PurchaseService reconciles stock with the lifecycle of a purchase document.
// A new purchase increases stock, an edit applies the line-item diff, and a
// deletion reverses the purchase's effect. Each operation performs one batch
// read, computes in memory, and hands the outcome to the batch applier in a
// single call.
type PurchaseService struct {
	stockRepo      stock.StockRecordRepository
	applier        *BatchApplier
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(stockRepo stock.StockRecordRepository, applier *BatchApplier, logger *zap.Logger) *PurchaseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseService{
		stockRepo: stockRepo,
		applier:   applier,
		logger:    logger.Named("reconcile.purchase"),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ApplyNew reconciles stock for a newly created purchase: every line emits an
// In movement and increases the product's stock. Lines whose product has no
// stock record are skipped with a warning.
func (s *PurchaseService) ApplyNew(ctx context.Context, tenantID uuid.UUID, purchaseID string, items []stock.LineItem, operatorID *uuid.UUID) (*Result, error) {
	index, err := loadStockIndex(ctx, s.stockRepo, tenantID, productUnion(items))
	if err != nil {
		return nil, err
	}

	result := newResult()
	for _, line := range items {
		record, ok := index[line.ProductID]
		if !ok {
			s.warnMissing(tenantID, line.ProductID, purchaseID)
			result.addSkipped(line.ProductID)
			continue
		}

		movement, err := s.newMovement(tenantID, record, line, stock.DirectionIn, purchaseID, operatorID)
		if err != nil {
			return nil, err
		}
		movement.WithUnitCost(line.UnitPrice)

		if err := record.Increase(line.Quantity); err != nil {
			return nil, err
		}

		result.addMovement(movement)
		result.addRecord(record)
	}

	if err := s.applier.Apply(ctx, result.Movements, result.Records); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, result.Records)
	return result, nil
}

// ApplyEdit reconciles stock for an edited purchase. The line-item diff drives
// the corrections: removed lines undo their effect with Out movements, added
// lines emit In movements, and quantity changes emit a movement for the signed
// delta.
func (s *PurchaseService) ApplyEdit(ctx context.Context, tenantID uuid.UUID, purchaseID string, existingItems, proposedItems []stock.LineItem, operatorID *uuid.UUID) (*Result, error) {
	diff := stock.DiffLineItems(existingItems, proposedItems)
	if diff.IsEmpty() {
		return newResult(), nil
	}

	existingByID := indexByLineID(existingItems)

	index, err := loadStockIndex(ctx, s.stockRepo, tenantID, productUnion(existingItems, proposedItems))
	if err != nil {
		return nil, err
	}

	result := newResult()

	for _, line := range diff.Removed {
		record, ok := index[line.ProductID]
		if !ok {
			s.warnMissing(tenantID, line.ProductID, purchaseID)
			result.addSkipped(line.ProductID)
			continue
		}

		movement, err := s.newMovement(tenantID, record, line, stock.DirectionOut, purchaseID, operatorID)
		if err != nil {
			return nil, err
		}
		movement.WithReason("purchase line removed")

		if err := record.Decrease(line.Quantity); err != nil {
			return nil, err
		}

		result.addMovement(movement)
		result.addRecord(record)
	}

	for _, change := range diff.Changed {
		if _, ok := existingByID[change.LineID]; !ok {
			return nil, errDiffContract(change.LineID)
		}

		record, ok := index[change.ProductID]
		if !ok {
			s.warnMissing(tenantID, change.ProductID, purchaseID)
			result.addSkipped(change.ProductID)
			continue
		}

		delta := change.Delta()
		direction := stock.DirectionIn
		quantity := delta
		if delta < 0 {
			direction = stock.DirectionOut
			quantity = -delta
		}

		movement, err := stock.NewMovement(tenantID, record.ID, change.ProductID, direction, quantity, stock.SourceTypePurchase, purchaseID)
		if err != nil {
			return nil, err
		}
		movement.WithSourceLineID(change.LineID.String()).WithReason("purchase quantity adjusted")
		if operatorID != nil {
			movement.WithOperatorID(*operatorID)
		}

		if delta > 0 {
			err = record.Increase(quantity)
		} else {
			err = record.Decrease(quantity)
		}
		if err != nil {
			return nil, err
		}

		result.addMovement(movement)
		result.addRecord(record)
	}

	for _, line := range diff.Added {
		record, ok := index[line.ProductID]
		if !ok {
			s.warnMissing(tenantID, line.ProductID, purchaseID)
			result.addSkipped(line.ProductID)
			continue
		}

		movement, err := s.newMovement(tenantID, record, line, stock.DirectionIn, purchaseID, operatorID)
		if err != nil {
			return nil, err
		}
		movement.WithUnitCost(line.UnitPrice).WithReason("purchase line added")

		if err := record.Increase(line.Quantity); err != nil {
			return nil, err
		}

		result.addMovement(movement)
		result.addRecord(record)
	}

	if err := s.applier.Apply(ctx, result.Movements, result.Records); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, result.Records)
	return result, nil
}

// Revert reverses a purchase's effect on stock when the document is deleted:
// every line emits an Out movement and decreases stock, regardless of the
// current level. Stock may go negative.
func (s *PurchaseService) Revert(ctx context.Context, tenantID uuid.UUID, purchaseID string, items []stock.LineItem, operatorID *uuid.UUID) (*Result, error) {
	index, err := loadStockIndex(ctx, s.stockRepo, tenantID, productUnion(items))
	if err != nil {
		return nil, err
	}

	result := newResult()
	for _, line := range items {
		record, ok := index[line.ProductID]
		if !ok {
			s.warnMissing(tenantID, line.ProductID, purchaseID)
			result.addSkipped(line.ProductID)
			continue
		}

		movement, err := s.newMovement(tenantID, record, line, stock.DirectionOut, purchaseID, operatorID)
		if err != nil {
			return nil, err
		}
		movement.WithReason("purchase deleted")

		if err := record.Decrease(line.Quantity); err != nil {
			return nil, err
		}

		result.addMovement(movement)
		result.addRecord(record)
	}

	if err := s.applier.Apply(ctx, result.Movements, result.Records); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, result.Records)
	return result, nil
}

// newMovement builds a movement for a line against a loaded stock record
func (s *PurchaseService) newMovement(tenantID uuid.UUID, record *stock.StockRecord, line stock.LineItem, direction stock.Direction, purchaseID string, operatorID *uuid.UUID) (*stock.Movement, error) {
	movement, err := stock.NewMovement(tenantID, record.ID, line.ProductID, direction, line.Quantity, stock.SourceTypePurchase, purchaseID)
	if err != nil {
		return nil, err
	}
	if line.ID != nil {
		movement.WithSourceLineID(line.ID.String())
	}
	if operatorID != nil {
		movement.WithOperatorID(*operatorID)
	}
	return movement, nil
}

func (s *PurchaseService) warnMissing(tenantID, productID uuid.UUID, purchaseID string) {
	s.logger.Warn("no stock record for product, line skipped",
		zap.String("tenant_id", tenantID.String()),
		zap.String("product_id", productID.String()),
		zap.String("purchase_id", purchaseID),
	)
}

func (s *PurchaseService) publishDomainEvents(ctx context.Context, records []*stock.StockRecord) {
	if s.eventPublisher == nil {
		for _, record := range records {
			record.ClearDomainEvents()
		}
		return
	}
	for _, record := range records {
		events := record.GetDomainEvents()
		if len(events) > 0 {
			// Errors are logged by the event bus, not propagated.
			_ = s.eventPublisher.Publish(ctx, events...)
		}
		record.ClearDomainEvents()
	}
}

// indexByLineID indexes persisted line items by their identity
func indexByLineID(items []stock.LineItem) map[uuid.UUID]stock.LineItem {
	index := make(map[uuid.UUID]stock.LineItem, len(items))
	for _, line := range items {
		if line.ID != nil {
			index[*line.ID] = line
		}
	}
	return index
}
