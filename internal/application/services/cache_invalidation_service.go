package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/providers"
)

// AnalyticsCachePrefix is where the response-cache middleware stores
// analytics responses; ingestion invalidates everything under it.
const AnalyticsCachePrefix = "http:cache:GET:/api/analytics"

// CacheInvalidationService drops cached aggregation responses whenever a
// batch of records lands, so the analytics endpoint never serves totals
// from before the upload.
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for ingestion events
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelIngestion)
	if err != nil {
		return fmt.Errorf("failed to subscribe to ingestion events: %w", err)
	}

	go s.processEvents(eventChan)
	log.Info().Msg("cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	log.Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.IngestionEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event := <-eventChan:
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *CacheInvalidationService) handleEvent(event *entities.IngestionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.cache.DeleteByPrefix(ctx, AnalyticsCachePrefix); err != nil {
		log.Warn().Err(err).
			Str("event_id", event.ID).
			Str("batch_id", event.BatchID).
			Msg("failed to invalidate analytics cache")
		return
	}

	log.Info().
		Str("event_id", event.ID).
		Str("event_type", string(event.EventType)).
		Str("batch_id", event.BatchID).
		Int("inserted", event.Inserted).
		Msg("analytics cache invalidated")
}
