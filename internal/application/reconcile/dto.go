package reconcile

import (
	"context"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/erp/stockcore/internal/domain/stock"
	"github.com/google/uuid"
)

// Result summarizes one reconciliation operation: the movements appended to
// the journal, the stock records that were mutated, and the products that had
// to be skipped because no stock record is configured for them. Skipped
// products are a warning, not an error. Inventory-less products are tolerated.
type Result struct {
	Movements       []*stock.Movement
	Records         []*stock.StockRecord
	SkippedProducts []uuid.UUID

	recordIndex  map[uuid.UUID]struct{}
	skippedIndex map[uuid.UUID]struct{}
}

func newResult() *Result {
	return &Result{
		Movements:       make([]*stock.Movement, 0),
		Records:         make([]*stock.StockRecord, 0),
		SkippedProducts: make([]uuid.UUID, 0),
		recordIndex:     make(map[uuid.UUID]struct{}),
		skippedIndex:    make(map[uuid.UUID]struct{}),
	}
}

func (r *Result) addMovement(m *stock.Movement) {
	r.Movements = append(r.Movements, m)
}

func (r *Result) addRecord(rec *stock.StockRecord) {
	if _, ok := r.recordIndex[rec.ID]; ok {
		return
	}
	r.recordIndex[rec.ID] = struct{}{}
	r.Records = append(r.Records, rec)
}

func (r *Result) addSkipped(productID uuid.UUID) {
	if _, ok := r.skippedIndex[productID]; ok {
		return
	}
	r.skippedIndex[productID] = struct{}{}
	r.SkippedProducts = append(r.SkippedProducts, productID)
}

// HasSkippedProducts returns true if any line was skipped for lack of a stock record
func (r *Result) HasSkippedProducts() bool {
	return len(r.SkippedProducts) > 0
}

// InsufficientLine reports one sale line whose required quantity exceeds the
// available stock.
type InsufficientLine struct {
	ProductID uuid.UUID
	Required  int64
	Available int64
}

// AvailabilityReport is the outcome of a pre-flight stock-sufficiency check.
// It is advisory: the engine never blocks a sale on it, the caller decides
// policy.
type AvailabilityReport struct {
	// Missing lists products with no stock record configured
	Missing []uuid.UUID
	// Insufficient lists lines whose required quantity exceeds the available stock
	Insufficient []InsufficientLine
}

// OK returns true if every line is covered by configured, sufficient stock
func (r *AvailabilityReport) OK() bool {
	return len(r.Missing) == 0 && len(r.Insufficient) == 0
}

// loadStockIndex batch-loads the stock records for every product referenced by
// the given line items in a single round-trip and indexes them by product ID.
func loadStockIndex(ctx context.Context, repo stock.StockRecordRepository, tenantID uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID]*stock.StockRecord, error) {
	if len(productIDs) == 0 {
		return map[uuid.UUID]*stock.StockRecord{}, nil
	}

	records, err := repo.FindByProductIDs(ctx, tenantID, productIDs)
	if err != nil {
		return nil, err
	}

	index := make(map[uuid.UUID]*stock.StockRecord, len(records))
	for i := range records {
		index[records[i].ProductID] = &records[i]
	}
	return index, nil
}

// productUnion collects the distinct product IDs referenced by the given line
// item sets, preserving first-seen order.
func productUnion(sets ...[]stock.LineItem) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, set := range sets {
		for _, line := range set {
			if _, ok := seen[line.ProductID]; ok {
				continue
			}
			seen[line.ProductID] = struct{}{}
			ids = append(ids, line.ProductID)
		}
	}
	return ids
}

// errDiffContract is returned when a changed line's identity cannot be found
// in the existing item set at apply time. The diff phase guarantees identity
// membership, so hitting this is a programming-contract violation, not a
// recoverable condition.
func errDiffContract(lineID uuid.UUID) error {
	return shared.NewDomainError("DIFF_CONTRACT_VIOLATION", "Changed line "+lineID.String()+" not found in existing items")
}
