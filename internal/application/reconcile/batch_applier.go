package reconcile

import (
	"context"
	"fmt"

	"github.com/erp/stockcore/internal/domain/stock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BatchApplier persists the outcome of one reconciliation operation as a
// single logical write: all movements are appended to the journal first, then
// all touched stock records are saved, each as one bulk operation. The applier
// performs no retries and no rollback of its own; partial-write protection
// comes from the TransactionScope it runs in.
type BatchApplier struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewBatchApplier creates a new BatchApplier
func NewBatchApplier(scope TransactionScope, logger *zap.Logger) *BatchApplier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchApplier{
		scope:  scope,
		logger: logger.Named("reconcile.applier"),
	}
}

// Apply persists the given movements and stock records. Records are
// de-duplicated by identity; empty sub-steps are skipped. Persistence failures
// are propagated to the caller unmodified apart from wrapping.
func (a *BatchApplier) Apply(ctx context.Context, movements []*stock.Movement, records []*stock.StockRecord) error {
	if len(movements) == 0 && len(records) == 0 {
		return nil
	}

	records = dedupeRecords(records)

	err := a.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if len(movements) > 0 {
			if err := repos.MovementRepo().AppendMany(ctx, movements); err != nil {
				return fmt.Errorf("append movements: %w", err)
			}
		}
		if len(records) > 0 {
			if err := repos.StockRepo().SaveMany(ctx, records); err != nil {
				return fmt.Errorf("save stock records: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		a.logger.Error("batch apply failed",
			zap.Int("movements", len(movements)),
			zap.Int("records", len(records)),
			zap.Error(err),
		)
		return err
	}

	a.logger.Debug("batch applied",
		zap.Int("movements", len(movements)),
		zap.Int("records", len(records)),
	)
	return nil
}

// dedupeRecords removes duplicate records by aggregate identity, keeping the
// first occurrence. Callers mutate records in place, so duplicates point at
// the same state anyway.
func dedupeRecords(records []*stock.StockRecord) []*stock.StockRecord {
	if len(records) < 2 {
		return records
	}
	seen := make(map[uuid.UUID]struct{}, len(records))
	out := records[:0]
	for _, rec := range records {
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		seen[rec.ID] = struct{}{}
		out = append(out, rec)
	}
	return out
}
