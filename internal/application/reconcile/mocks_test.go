package reconcile

import (
	"context"
	"sync"

	"github.com/erp/stockcore/internal/domain/shared"
	"github.com/erp/stockcore/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockEventPublisher collects published events for assertions
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		events: make([]shared.DomainEvent, 0),
	}
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEvents() []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, len(m.events))
	copy(result, m.events)
	return result
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// MockStockRecordRepository is a mock implementation of StockRecordRepository
type MockStockRecordRepository struct {
	mock.Mock
}

func (m *MockStockRecordRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*stock.StockRecord, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.StockRecord), args.Error(1)
}

func (m *MockStockRecordRepository) FindByProductID(ctx context.Context, tenantID, productID uuid.UUID) (*stock.StockRecord, error) {
	args := m.Called(ctx, tenantID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.StockRecord), args.Error(1)
}

func (m *MockStockRecordRepository) FindByProductIDs(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID) ([]stock.StockRecord, error) {
	args := m.Called(ctx, tenantID, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stock.StockRecord), args.Error(1)
}

func (m *MockStockRecordRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.StockRecord, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]stock.StockRecord), args.Error(1)
}

func (m *MockStockRecordRepository) FindBelowMinimum(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.StockRecord, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]stock.StockRecord), args.Error(1)
}

func (m *MockStockRecordRepository) GetOrCreate(ctx context.Context, tenantID, productID uuid.UUID) (*stock.StockRecord, error) {
	args := m.Called(ctx, tenantID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.StockRecord), args.Error(1)
}

func (m *MockStockRecordRepository) Save(ctx context.Context, record *stock.StockRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockStockRecordRepository) SaveMany(ctx context.Context, records []*stock.StockRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockStockRecordRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockMovementRepository is a mock implementation of MovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Append(ctx context.Context, movement *stock.Movement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) AppendMany(ctx context.Context, movements []*stock.Movement) error {
	args := m.Called(ctx, movements)
	return args.Error(0)
}

func (m *MockMovementRepository) FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType stock.SourceType, sourceID string) ([]stock.Movement, error) {
	args := m.Called(ctx, tenantID, sourceType, sourceID)
	return args.Get(0).([]stock.Movement), args.Error(1)
}

func (m *MockMovementRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]stock.Movement, error) {
	args := m.Called(ctx, tenantID, productID, filter)
	return args.Get(0).([]stock.Movement), args.Error(1)
}

func (m *MockMovementRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.Movement, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]stock.Movement), args.Error(1)
}

func (m *MockMovementRepository) SumSignedQuantityByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMovementRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}
