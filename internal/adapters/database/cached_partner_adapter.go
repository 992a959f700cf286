package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/providers"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/repositories"
)

// CachedPartnerAdapter wraps PartnerAdapter with caching
type CachedPartnerAdapter struct {
	adapter repositories.PartnerRepository
	cache   providers.CacheProvider
}

// NewCachedPartnerAdapter creates a new cached partner adapter
func NewCachedPartnerAdapter(adapter repositories.PartnerRepository, cache providers.CacheProvider) repositories.PartnerRepository {
	return &CachedPartnerAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds)
const (
	partnerByIDTTL  = 300 // 5 minutes for single partner
	partnersListTTL = 180 // 3 minutes for the full registry
)

const partnersListCacheKey = "partners:all"

func partnerCacheKey(id string) string {
	return fmt.Sprintf("partner:%s", id)
}

// List retrieves the partner registry with caching
func (a *CachedPartnerAdapter) List(ctx context.Context) ([]*entities.Partner, error) {
	if cached, err := a.cache.Get(ctx, partnersListCacheKey); err == nil {
		var partners []*entities.Partner
		if err := json.Unmarshal(cached, &partners); err == nil {
			return partners, nil
		}
		log.Warn().Err(err).Msg("failed to unmarshal cached partner list")
	}

	partners, err := a.adapter.List(ctx)
	if err != nil {
		return nil, err
	}

	// Update cache asynchronously to avoid blocking the response
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(partners); err == nil {
			if err := a.cache.Set(bgCtx, partnersListCacheKey, data, partnersListTTL); err != nil {
				log.Warn().Err(err).Msg("failed to cache partner list")
			}
		}
	}()

	return partners, nil
}

// GetByID retrieves a partner by ID with caching
func (a *CachedPartnerAdapter) GetByID(ctx context.Context, id string) (*entities.Partner, error) {
	cacheKey := partnerCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var partner entities.Partner
		if err := json.Unmarshal(cached, &partner); err == nil {
			return &partner, nil
		}
		log.Warn().Err(err).Str("partner_id", id).Msg("failed to unmarshal cached partner")
	}

	partner, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(partner); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, partnerByIDTTL); err != nil {
				log.Warn().Err(err).Str("partner_id", id).Msg("failed to cache partner")
			}
		}
	}()

	return partner, nil
}

// UpdateStats writes stats through and invalidates the partner's caches
func (a *CachedPartnerAdapter) UpdateStats(ctx context.Context, stats *entities.PartnerStats) error {
	if err := a.adapter.UpdateStats(ctx, stats); err != nil {
		return err
	}

	go func() {
		bgCtx := context.Background()
		if err := a.cache.Delete(bgCtx, partnerCacheKey(stats.PartnerID)); err != nil {
			log.Warn().Err(err).Str("partner_id", stats.PartnerID).Msg("failed to invalidate partner cache")
		}
		if err := a.cache.Delete(bgCtx, partnersListCacheKey); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate partner list cache")
		}
	}()

	return nil
}

// ResetStats resets stats through and drops every partner cache entry
func (a *CachedPartnerAdapter) ResetStats(ctx context.Context) error {
	if err := a.adapter.ResetStats(ctx); err != nil {
		return err
	}

	go func() {
		bgCtx := context.Background()
		if err := a.cache.DeleteByPrefix(bgCtx, "partner:"); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate partner caches")
		}
		if err := a.cache.Delete(bgCtx, partnersListCacheKey); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate partner list cache")
		}
	}()

	return nil
}
