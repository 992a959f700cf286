package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/providers"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/repositories"
	"github.com/zatekoja/Clinicreportanalytics/internal/match"
	"github.com/zatekoja/Clinicreportanalytics/internal/reports"
	apperrors "github.com/zatekoja/Clinicreportanalytics/pkg/errors"
)

// ReferralReport is one referral document to feed into a rebuild.
type ReferralReport struct {
	FileName string
	Text     string
}

// MatchedClinic records one resolved clinic and where its stats landed.
type MatchedClinic struct {
	ClinicName  string  `json:"clinic_name"`
	PartnerID   string  `json:"partner_id"`
	PartnerName string  `json:"partner_name"`
	Score       float64 `json:"score"`
	Visits      int     `json:"visits"`
	Revenue     float64 `json:"revenue"`
}

// UnmatchedClinic records a clinic no registry entry scored high enough
// for; kept for manual review.
type UnmatchedClinic struct {
	Name    string  `json:"name"`
	Visits  int     `json:"visits"`
	Revenue float64 `json:"revenue"`
}

// RebuildResult summarises one referral rebuild run.
type RebuildResult struct {
	Reports         int               `json:"reports"`
	PartnersUpdated int               `json:"partners_updated"`
	TotalVisits     int               `json:"total_visits"`
	TotalRevenue    float64           `json:"total_revenue"`
	Matched         []MatchedClinic   `json:"matched"`
	Unmatched       []UnmatchedClinic `json:"unmatched"`
}

// ReferralImportService rebuilds partner referral statistics from referral
// reports. A rebuild is a single-run lifecycle: stats reset first, every
// report contributes to in-memory accumulators, and totals are written once
// at the end. Stats are never incremented across runs.
type ReferralImportService struct {
	partners    repositories.PartnerRepository
	syncHistory repositories.SyncHistoryRepository
	parser      *reports.ReferralParser
	resolver    *match.Resolver
	eventBus    providers.EventBus
}

// NewReferralImportService creates a referral import service.
func NewReferralImportService(
	partners repositories.PartnerRepository,
	syncHistory repositories.SyncHistoryRepository,
	parser *reports.ReferralParser,
	resolver *match.Resolver,
) *ReferralImportService {
	return &ReferralImportService{
		partners:    partners,
		syncHistory: syncHistory,
		parser:      parser,
		resolver:    resolver,
	}
}

// SetEventBus wires the event bus for rebuild announcements.
func (s *ReferralImportService) SetEventBus(bus providers.EventBus) {
	s.eventBus = bus
}

// Rebuild resets all partner stats and rebuilds them from the given
// reports.
func (s *ReferralImportService) Rebuild(ctx context.Context, docs ...ReferralReport) (*RebuildResult, error) {
	if len(docs) == 0 {
		return nil, apperrors.NewValidationError("no referral reports provided")
	}

	partners, err := s.partners.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load partner registry", err)
	}
	candidates := make([]match.Candidate, len(partners))
	partnerByID := make(map[string]*entities.Partner, len(partners))
	for i, p := range partners {
		candidates[i] = match.Candidate{ID: p.ID, Name: p.Name}
		partnerByID[p.ID] = p
	}

	if err := s.partners.ResetStats(ctx); err != nil {
		return nil, apperrors.NewInternalError("failed to reset partner stats", err)
	}
	log.Info().Int("partners", len(partners)).Msg("partner stats reset")

	result := &RebuildResult{Reports: len(docs)}
	accumulated := map[string]*entities.PartnerStats{}

	for _, doc := range docs {
		parsed := s.parser.Parse(doc.Text)
		log.Info().
			Str("file", doc.FileName).
			Int("section_headers", parsed.SectionHeaders).
			Int("appointments", parsed.Appointments).
			Int("clinics", len(parsed.Entries)).
			Msg("referral report parsed")

		matched, revenue := 0, 0.0
		for _, entry := range parsed.Entries {
			best, ok := s.resolver.Resolve(entry.ClinicName, candidates)
			if !ok {
				result.Unmatched = append(result.Unmatched, UnmatchedClinic{
					Name:    entry.ClinicName,
					Visits:  entry.Visits,
					Revenue: entry.Revenue,
				})
				continue
			}

			stats, exists := accumulated[best.ID]
			if !exists {
				stats = &entities.PartnerStats{PartnerID: best.ID, PartnerName: best.Name}
				accumulated[best.ID] = stats
			}
			stats.TotalVisits += entry.Visits
			stats.TotalRevenue += entry.Revenue

			result.Matched = append(result.Matched, MatchedClinic{
				ClinicName:  entry.ClinicName,
				PartnerID:   best.ID,
				PartnerName: best.Name,
				Score:       best.Score,
				Visits:      entry.Visits,
				Revenue:     entry.Revenue,
			})
			matched++
			revenue += entry.Revenue
		}

		s.writeSyncRecord(ctx, doc, parsed, matched, revenue)
	}

	// Write accumulated totals once, at the end of the run
	for _, stats := range accumulated {
		stats.TotalRevenue = math.Round(stats.TotalRevenue*100) / 100
		if err := s.partners.UpdateStats(ctx, stats); err != nil {
			log.Error().Err(err).
				Str("partner_id", stats.PartnerID).
				Str("partner", stats.PartnerName).
				Msg("failed to update partner stats")
			continue
		}
		result.PartnersUpdated++
		result.TotalVisits += stats.TotalVisits
		result.TotalRevenue += stats.TotalRevenue
	}
	result.TotalRevenue = math.Round(result.TotalRevenue*100) / 100

	if s.eventBus != nil {
		event := entities.NewIngestionEvent(
			entities.IngestionEventTypeRebuilt, "referral_report", "", result.TotalVisits, nil, nil)
		if err := s.eventBus.Publish(ctx, providers.EventChannelIngestion, event); err != nil {
			log.Warn().Err(err).Msg("failed to publish rebuild event")
		}
	}

	log.Info().
		Int("partners_updated", result.PartnersUpdated).
		Int("total_visits", result.TotalVisits).
		Float64("total_revenue", result.TotalRevenue).
		Int("unmatched", len(result.Unmatched)).
		Msg("referral rebuild completed")

	return result, nil
}

func (s *ReferralImportService) writeSyncRecord(ctx context.Context, doc ReferralReport, parsed *reports.ReferralParseResult, matched int, revenue float64) {
	if s.syncHistory == nil {
		return
	}
	record := &entities.SyncRecord{
		ID:           uuid.NewString(),
		FileName:     doc.FileName,
		SourceKind:   "referral_report",
		Mode:         "rebuild",
		RangeStart:   parsed.RangeStart,
		RangeEnd:     parsed.RangeEnd,
		ParsedCount:  len(parsed.Entries),
		MatchedCount: matched,
		SkippedCount: len(parsed.Entries) - matched,
		RevenueAdded: math.Round(revenue*100) / 100,
		CreatedAt:    time.Now(),
	}
	if err := s.syncHistory.Create(ctx, record); err != nil {
		log.Warn().Err(err).Str("file", doc.FileName).Msg("failed to write sync history")
	}
}
