package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
)

// MockAppointmentRecordRepository is a mock implementation of
// repositories.AppointmentRecordRepository
type MockAppointmentRecordRepository struct {
	mock.Mock
}

func (m *MockAppointmentRecordRepository) InsertBatch(ctx context.Context, records []*entities.AppointmentRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockAppointmentRecordRepository) ListDates(ctx context.Context, sourceKind string, from, to time.Time) ([]time.Time, error) {
	args := m.Called(ctx, sourceKind, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *MockAppointmentRecordRepository) DeleteBySourceAndDate(ctx context.Context, sourceKind string, date time.Time) (int64, error) {
	args := m.Called(ctx, sourceKind, date)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAppointmentRecordRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]*entities.AppointmentRecord, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AppointmentRecord), args.Error(1)
}

// MockPartnerRepository is a mock implementation of
// repositories.PartnerRepository
type MockPartnerRepository struct {
	mock.Mock
}

func (m *MockPartnerRepository) List(ctx context.Context) ([]*entities.Partner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Partner), args.Error(1)
}

func (m *MockPartnerRepository) GetByID(ctx context.Context, id string) (*entities.Partner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Partner), args.Error(1)
}

func (m *MockPartnerRepository) UpdateStats(ctx context.Context, stats *entities.PartnerStats) error {
	args := m.Called(ctx, stats)
	return args.Error(0)
}

func (m *MockPartnerRepository) ResetStats(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSyncHistoryRepository is a mock implementation of
// repositories.SyncHistoryRepository
type MockSyncHistoryRepository struct {
	mock.Mock
}

func (m *MockSyncHistoryRepository) Create(ctx context.Context, record *entities.SyncRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSyncHistoryRepository) ListRecent(ctx context.Context, limit int) ([]*entities.SyncRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.SyncRecord), args.Error(1)
}

// MockCacheProvider is a mock implementation of providers.CacheProvider
type MockCacheProvider struct {
	mock.Mock
}

func (m *MockCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheProvider) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	args := m.Called(ctx, key, value, expirationSeconds)
	return args.Error(0)
}

func (m *MockCacheProvider) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheProvider) DeleteByPrefix(ctx context.Context, prefix string) error {
	args := m.Called(ctx, prefix)
	return args.Error(0)
}

func (m *MockCacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockEventBus is a mock implementation of providers.EventBus
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.IngestionEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.IngestionEvent, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.IngestionEvent), args.Error(1)
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	args := m.Called()
	return args.Error(0)
}
