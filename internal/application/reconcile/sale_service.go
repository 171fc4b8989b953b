package reconcile

import (
	"context"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/erp/stockcore/internal/domain/stock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaleService reconciles stock with the lifecycle of a sale document. It is
// the mirror image of PurchaseService with inverted direction: new sales
// decrease stock, deleting a sale returns it. CheckAvailability offers a
// pre-flight sufficiency check, but the engine itself never blocks a sale:
// stock is allowed to go negative and enforcement is left to the caller.
type SaleService struct {
	stockRepo      stock.StockRecordRepository
	applier        *BatchApplier
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(stockRepo stock.StockRecordRepository, applier *BatchApplier, logger *zap.Logger) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		stockRepo: stockRepo,
		applier:   applier,
		logger:    logger.Named("reconcile.sale"),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SaleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CheckAvailability reports, without mutating anything, which sale lines are
// not covered by current stock: products with no stock record configured and
// lines whose required quantity exceeds the available balance. The report is
// advisory. The caller decides whether to proceed.
func (s *SaleService) CheckAvailability(ctx context.Context, tenantID uuid.UUID, items []stock.LineItem) (*AvailabilityReport, error) {
	index, err := loadStockIndex(ctx, s.stockRepo, tenantID, productUnion(items))
	if err != nil {
		return nil, err
	}

	report := &AvailabilityReport{
		Missing:      make([]uuid.UUID, 0),
		Insufficient: make([]InsufficientLine, 0),
	}

	seenMissing := make(map[uuid.UUID]struct{})
	for _, line := range items {
		record, ok := index[line.ProductID]
		if !ok {
			if _, dup := seenMissing[line.ProductID]; !dup {
				seenMissing[line.ProductID] = struct{}{}
				report.Missing = append(report.Missing, line.ProductID)
			}
			continue
		}
		if !record.CanFulfill(line.Quantity) {
			report.Insufficient = append(report.Insufficient, InsufficientLine{
				ProductID: line.ProductID,
				Required:  line.Quantity,
				Available: record.CurrentStock,
			})
		}
	}

	return report, nil
}

// ApplyNew reconciles stock for a newly created sale: every line emits an Out
// movement and decreases the product's stock. Lines whose product has no stock
// record are skipped with a warning. Insufficient stock does not block the
// operation.
func (s *SaleService) ApplyNew(ctx context.Context, tenantID uuid.UUID, saleID string, items []stock.LineItem, operatorID *uuid.UUID) (*Result, error) {
	index, err := loadStockIndex(ctx, s.stockRepo, tenantID, productUnion(items))
	if err != nil {
		return nil, err
	}

	result := newResult()
	for _, line := range items {
		record, ok := index[line.ProductID]
		if !ok {
			s.warnMissing(tenantID, line.ProductID, saleID)
			result.addSkipped(line.ProductID)
			continue
		}

		if !record.CanFulfill(line.Quantity) {
			s.warnInsufficient(tenantID, line.ProductID, saleID, line.Quantity, record.CurrentStock)
		}

		movement, err := s.newMovement(tenantID, record, line, stock.DirectionOut, saleID, operatorID)
		if err != nil {
			return nil, err
		}
		movement.WithUnitCost(line.UnitPrice)

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

// ApplyEdit reconciles stock for an edited sale. The diff logic mirrors the
// purchase edit with signs flipped: removed lines return stock with In
// movements, added lines ship more with Out movements, a quantity increase
// emits an additional Out and a decrease emits a compensating In.
func (s *SaleService) ApplyEdit(ctx context.Context, tenantID uuid.UUID, saleID string, existingItems, proposedItems []stock.LineItem, operatorID *uuid.UUID) (*Result, error) {
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
			s.warnMissing(tenantID, line.ProductID, saleID)
			result.addSkipped(line.ProductID)
			continue
		}

		movement, err := s.newMovement(tenantID, record, line, stock.DirectionIn, saleID, operatorID)
		if err != nil {
			return nil, err
		}
		movement.WithReason("sale line removed")

		if err := record.Increase(line.Quantity); err != nil {
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
			s.warnMissing(tenantID, change.ProductID, saleID)
			result.addSkipped(change.ProductID)
			continue
		}

		delta := change.Delta()
		direction := stock.DirectionOut
		quantity := delta
		if delta < 0 {
			direction = stock.DirectionIn
			quantity = -delta
		}

		movement, err := stock.NewMovement(tenantID, record.ID, change.ProductID, direction, quantity, stock.SourceTypeSale, saleID)
		if err != nil {
			return nil, err
		}
		movement.WithSourceLineID(change.LineID.String()).WithReason("sale quantity adjusted")
		if operatorID != nil {
			movement.WithOperatorID(*operatorID)
		}

		if delta > 0 {
			err = record.Decrease(quantity)
		} else {
			err = record.Increase(quantity)
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
			s.warnMissing(tenantID, line.ProductID, saleID)
			result.addSkipped(line.ProductID)
			continue
		}

		movement, err := s.newMovement(tenantID, record, line, stock.DirectionOut, saleID, operatorID)
		if err != nil {
			return nil, err
		}
		movement.WithUnitCost(line.UnitPrice).WithReason("sale line added")

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

// Revert returns a sale's stock when the document is deleted: every line emits
// an In movement and increases stock.
func (s *SaleService) Revert(ctx context.Context, tenantID uuid.UUID, saleID string, items []stock.LineItem, operatorID *uuid.UUID) (*Result, error) {
	index, err := loadStockIndex(ctx, s.stockRepo, tenantID, productUnion(items))
	if err != nil {
		return nil, err
	}

	result := newResult()
	for _, line := range items {
		record, ok := index[line.ProductID]
		if !ok {
			s.warnMissing(tenantID, line.ProductID, saleID)
			result.addSkipped(line.ProductID)
			continue
		}

		movement, err := s.newMovement(tenantID, record, line, stock.DirectionIn, saleID, operatorID)
		if err != nil {
			return nil, err
		}
		movement.WithReason("sale deleted")

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

// newMovement builds a movement for a line against a loaded stock record
func (s *SaleService) newMovement(tenantID uuid.UUID, record *stock.StockRecord, line stock.LineItem, direction stock.Direction, saleID string, operatorID *uuid.UUID) (*stock.Movement, error) {
	movement, err := stock.NewMovement(tenantID, record.ID, line.ProductID, direction, line.Quantity, stock.SourceTypeSale, saleID)
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

func (s *SaleService) warnMissing(tenantID, productID uuid.UUID, saleID string) {
	s.logger.Warn("no stock record for product, line skipped",
		zap.String("tenant_id", tenantID.String()),
		zap.String("product_id", productID.String()),
		zap.String("sale_id", saleID),
	)
}

func (s *SaleService) warnInsufficient(tenantID, productID uuid.UUID, saleID string, required, available int64) {
	s.logger.Warn("sale exceeds available stock",
		zap.String("tenant_id", tenantID.String()),
		zap.String("product_id", productID.String()),
		zap.String("sale_id", saleID),
		zap.Int64("required", required),
		zap.Int64("available", available),
	)
}

func (s *SaleService) publishDomainEvents(ctx context.Context, records []*stock.StockRecord) {
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
