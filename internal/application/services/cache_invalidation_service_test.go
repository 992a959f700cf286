package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/Clinicreportanalytics/internal/application/services"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
)

func TestCacheInvalidationService_DropsAnalyticsCacheOnIngestion(t *testing.T) {
	cacheMock := new(MockCacheProvider)
	eventBus := new(MockEventBus)

	eventChan := make(chan *entities.IngestionEvent, 1)
	var recv <-chan *entities.IngestionEvent = eventChan
	eventBus.On("Subscribe", mock.Anything, "ingestion:events").Return(recv, nil)

	invalidated := make(chan struct{})
	cacheMock.On("DeleteByPrefix", mock.Anything, services.AnalyticsCachePrefix).
		Run(func(mock.Arguments) { close(invalidated) }).
		Return(nil)

	service := services.NewCacheInvalidationService(cacheMock, eventBus)
	require.NoError(t, service.Start())
	defer service.Stop()

	eventChan <- entities.NewIngestionEvent(
		entities.IngestionEventTypeCompleted, "weekly_tracking", "batch-1", 42, nil, nil)

	select {
	case <-invalidated:
	case <-time.After(2 * time.Second):
		t.Fatal("analytics cache was not invalidated")
	}
	cacheMock.AssertExpectations(t)
}

func TestCacheInvalidationService_SubscribeFailure(t *testing.T) {
	cacheMock := new(MockCacheProvider)
	eventBus := new(MockEventBus)

	eventBus.On("Subscribe", mock.Anything, "ingestion:events").
		Return(nil, assert.AnError)

	service := services.NewCacheInvalidationService(cacheMock, eventBus)
	err := service.Start()

	assert.Error(t, err)
	cacheMock.AssertNotCalled(t, "DeleteByPrefix", mock.Anything, mock.Anything)
}
