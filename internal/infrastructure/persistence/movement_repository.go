package persistence

import (
	"context"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/erp/stockcore/internal/domain/stock"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// movementBatchSize bounds the INSERT size so large reconciliations do not
// exceed the driver's parameter limit.
const movementBatchSize = 100

// GormMovementRepository implements MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Append creates a single movement record
func (r *GormMovementRepository) Append(ctx context.Context, movement *stock.Movement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// AppendMany creates a batch of movement records
func (r *GormMovementRepository) AppendMany(ctx context.Context, movements []*stock.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(movements, movementBatchSize).Error
}

// FindBySource finds movements by source document
func (r *GormMovementRepository) FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType stock.SourceType, sourceID string) ([]stock.Movement, error) {
	var movements []stock.Movement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND source_type = ? AND source_id = ?", tenantID, sourceType, sourceID).
		Order("occurred_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByProduct finds movements for a product
func (r *GormMovementRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]stock.Movement, error) {
	var movements []stock.Movement
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&stock.Movement{}).
			Where("tenant_id = ? AND product_id = ?", tenantID, productID),
		filter,
	)

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindForTenant finds all movements for a tenant
func (r *GormMovementRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.Movement, error) {
	var movements []stock.Movement
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&stock.Movement{}).
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// SumSignedQuantityByProduct replays the journal for a product and returns
// the signed quantity sum (inbound positive, outbound negative)
func (r *GormMovementRepository) SumSignedQuantityByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error) {
	var result struct {
		Total int64
	}
	if err := r.db.WithContext(ctx).
		Model(&stock.Movement{}).
		Select("COALESCE(SUM(CASE WHEN direction = ? THEN quantity ELSE -quantity END), 0) as total", stock.DirectionIn).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Scan(&result).Error; err != nil {
		return 0, err
	}
	return result.Total, nil
}

// CountForTenant counts movements matching the filter
func (r *GormMovementRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&stock.Movement{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormMovementRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, movementSortFields, "occurred_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("occurred_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormMovementRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "direction":
			query = query.Where("direction = ?", value)
		case "source_type":
			query = query.Where("source_type = ?", value)
		case "source_id":
			query = query.Where("source_id = ?", value)
		case "operator_id":
			query = query.Where("operator_id = ?", value)
		case "occurred_after":
			query = query.Where("occurred_at >= ?", value)
		case "occurred_before":
			query = query.Where("occurred_at < ?", value)
		}
	}
	return query
}

// Ensure GormMovementRepository implements MovementRepository
var _ stock.MovementRepository = (*GormMovementRepository)(nil)
