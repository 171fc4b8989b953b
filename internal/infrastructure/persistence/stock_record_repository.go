package persistence

import (
	"context"
	"errors"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/erp/stockcore/internal/domain/stock"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockRecordRepository implements StockRecordRepository using GORM
type GormStockRecordRepository struct {
	db *gorm.DB
}

// NewGormStockRecordRepository creates a new GormStockRecordRepository
func NewGormStockRecordRepository(db *gorm.DB) *GormStockRecordRepository {
	return &GormStockRecordRepository{db: db}
}

// FindByID finds a stock record by its ID within a tenant
func (r *GormStockRecordRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*stock.StockRecord, error) {
	var record stock.StockRecord
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByProductID finds the stock record for a product
func (r *GormStockRecordRepository) FindByProductID(ctx context.Context, tenantID, productID uuid.UUID) (*stock.StockRecord, error) {
	var record stock.StockRecord
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByProductIDs batch-loads stock records for a set of products
func (r *GormStockRecordRepository) FindByProductIDs(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID) ([]stock.StockRecord, error) {
	if len(productIDs) == 0 {
		return []stock.StockRecord{}, nil
	}

	var records []stock.StockRecord
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id IN ?", tenantID, productIDs).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindAllForTenant finds all stock records for a tenant
func (r *GormStockRecordRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.StockRecord, error) {
	var records []stock.StockRecord
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&stock.StockRecord{}).
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindBelowMinimum finds records below their reorder threshold
func (r *GormStockRecordRepository) FindBelowMinimum(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.StockRecord, error) {
	var records []stock.StockRecord
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&stock.StockRecord{}).
			Where("tenant_id = ? AND min_stock > 0 AND current_stock < min_stock", tenantID),
		filter,
	)

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// GetOrCreate gets the existing stock record for a product or creates a new one
func (r *GormStockRecordRepository) GetOrCreate(ctx context.Context, tenantID, productID uuid.UUID) (*stock.StockRecord, error) {
	record, err := r.FindByProductID(ctx, tenantID, productID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	record, err = stock.NewStockRecord(tenantID, productID)
	if err != nil {
		return nil, err
	}

	// ON CONFLICT covers the race where two writers create the same product
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(record).Error; err != nil {
		return nil, err
	}

	if record.ID == uuid.Nil {
		return r.FindByProductID(ctx, tenantID, productID)
	}

	return record, nil
}

// Save creates or updates a stock record
func (r *GormStockRecordRepository) Save(ctx context.Context, record *stock.StockRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// SaveMany persists a batch of updated stock records with optimistic locking.
// Each write checks the record's load-time version token and bumps it by one;
// a stale token means another writer committed first and the whole batch
// fails with ErrConcurrencyConflict so the caller can reload and retry.
func (r *GormStockRecordRepository) SaveMany(ctx context.Context, records []*stock.StockRecord) error {
	if len(records) == 0 {
		return nil
	}

	for _, record := range records {
		result := r.db.WithContext(ctx).
			Model(record).
			Where("id = ? AND version = ?", record.ID, record.Version).
			Updates(map[string]interface{}{
				"current_stock": record.CurrentStock,
				"min_stock":     record.MinStock,
				"version":       record.Version + 1,
				"updated_at":    record.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		record.Version++
	}
	return nil
}

// CountForTenant counts stock records matching the filter
func (r *GormStockRecordRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&stock.StockRecord{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormStockRecordRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, stockRecordSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormStockRecordRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "below_minimum":
			if value == true {
				query = query.Where("min_stock > 0 AND current_stock < min_stock")
			}
		case "negative":
			if value == true {
				query = query.Where("current_stock < 0")
			}
		}
	}

	return query
}

// Ensure GormStockRecordRepository implements StockRecordRepository
var _ stock.StockRecordRepository = (*GormStockRecordRepository)(nil)
