package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/Clinicreportanalytics/internal/application/services"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/repositories"
	"github.com/zatekoja/Clinicreportanalytics/internal/match"
	"github.com/zatekoja/Clinicreportanalytics/internal/reports"
	apperrors "github.com/zatekoja/Clinicreportanalytics/pkg/errors"
)

// Two Sunset appointments, one for a clinic the registry does not know.
const rebuildReferralText = `START 01-01-2026 END 01-31-2026
12-31-2025
Sunset Animal Hospital
450.00
01-05-2026
Green Dog
Sherman Oaks
150.00
Green Dog
Sherman Oaks
300.00
Harbor Animal Clinic
200.00
01-06-2026
Green Dog
Sherman Oaks
200.00
`

func newRebuildService(partnerRepo repositories.PartnerRepository, syncRepo repositories.SyncHistoryRepository) *services.ReferralImportService {
	parser := reports.NewReferralParser(reports.ReferralConfig{})
	resolver := match.NewResolver(match.Options{})
	return services.NewReferralImportService(partnerRepo, syncRepo, parser, resolver)
}

func TestReferralImportService_Rebuild(t *testing.T) {
	partnerRepo := new(MockPartnerRepository)
	syncRepo := new(MockSyncHistoryRepository)
	service := newRebuildService(partnerRepo, syncRepo)

	var calls []string
	partnerRepo.On("List", mock.Anything).Return([]*entities.Partner{
		{ID: "p1", Name: "Sunset Animal Hospital"},
		{ID: "p2", Name: "Valley Pet Clinic"},
	}, nil)
	partnerRepo.On("ResetStats", mock.Anything).Run(func(mock.Arguments) {
		calls = append(calls, "reset")
	}).Return(nil)
	partnerRepo.On("UpdateStats", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		calls = append(calls, "update")
	}).Return(nil)
	syncRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := service.Rebuild(context.Background(), services.ReferralReport{
		FileName: "january.txt",
		Text:     rebuildReferralText,
	})
	require.NoError(t, err)

	t.Run("stats reset before any write", func(t *testing.T) {
		assert.Equal(t, []string{"reset", "update"}, calls)
	})

	t.Run("matched clinic lands on its partner with absolute totals", func(t *testing.T) {
		partnerRepo.AssertCalled(t, "UpdateStats", mock.Anything, &entities.PartnerStats{
			PartnerID:    "p1",
			PartnerName:  "Sunset Animal Hospital",
			TotalVisits:  2,
			TotalRevenue: 450.00,
		})
		partnerRepo.AssertNumberOfCalls(t, "UpdateStats", 1)

		assert.Equal(t, 1, result.PartnersUpdated)
		assert.Equal(t, 2, result.TotalVisits)
		assert.Equal(t, 450.00, result.TotalRevenue)
		require.Len(t, result.Matched, 1)
		assert.Equal(t, "p1", result.Matched[0].PartnerID)
		assert.Equal(t, 1.0, result.Matched[0].Score)
	})

	t.Run("unmatched clinic kept for review", func(t *testing.T) {
		require.Len(t, result.Unmatched, 1)
		assert.Equal(t, services.UnmatchedClinic{
			Name:    "Harbor Animal Clinic",
			Visits:  1,
			Revenue: 200.00,
		}, result.Unmatched[0])
	})

	t.Run("audit row per report", func(t *testing.T) {
		syncRepo.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(rec *entities.SyncRecord) bool {
			return rec.FileName == "january.txt" &&
				rec.SourceKind == "referral_report" &&
				rec.Mode == "rebuild" &&
				rec.ParsedCount == 2 &&
				rec.MatchedCount == 1 &&
				rec.SkippedCount == 1 &&
				rec.RevenueAdded == 450.00
		}))
		syncRepo.AssertNumberOfCalls(t, "Create", 1)
	})
}

func TestReferralImportService_RebuildAccumulatesAcrossReports(t *testing.T) {
	partnerRepo := new(MockPartnerRepository)
	syncRepo := new(MockSyncHistoryRepository)
	service := newRebuildService(partnerRepo, syncRepo)

	partnerRepo.On("List", mock.Anything).Return([]*entities.Partner{
		{ID: "p1", Name: "Sunset Animal Hospital"},
	}, nil)
	partnerRepo.On("ResetStats", mock.Anything).Return(nil)
	partnerRepo.On("UpdateStats", mock.Anything, mock.Anything).Return(nil)
	syncRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	doc := services.ReferralReport{FileName: "january.txt", Text: rebuildReferralText}
	result, err := service.Rebuild(context.Background(), doc, doc)
	require.NoError(t, err)

	// Two identical reports: totals accumulate in memory, one write at the end
	assert.Equal(t, 2, result.Reports)
	assert.Equal(t, 4, result.TotalVisits)
	assert.Equal(t, 900.00, result.TotalRevenue)
	partnerRepo.AssertNumberOfCalls(t, "UpdateStats", 1)
	partnerRepo.AssertNumberOfCalls(t, "ResetStats", 1)
	syncRepo.AssertNumberOfCalls(t, "Create", 2)
}

func TestReferralImportService_RebuildWithoutReports(t *testing.T) {
	service := newRebuildService(new(MockPartnerRepository), new(MockSyncHistoryRepository))

	_, err := service.Rebuild(context.Background())

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
}

func TestReferralImportService_PublishesRebuildEvent(t *testing.T) {
	partnerRepo := new(MockPartnerRepository)
	eventBus := new(MockEventBus)
	service := newRebuildService(partnerRepo, nil)
	service.SetEventBus(eventBus)

	partnerRepo.On("List", mock.Anything).Return([]*entities.Partner{
		{ID: "p1", Name: "Sunset Animal Hospital"},
	}, nil)
	partnerRepo.On("ResetStats", mock.Anything).Return(nil)
	partnerRepo.On("UpdateStats", mock.Anything, mock.Anything).Return(nil)
	eventBus.On("Publish", mock.Anything, "ingestion:events", mock.MatchedBy(func(event *entities.IngestionEvent) bool {
		return event.EventType == entities.IngestionEventTypeRebuilt && event.SourceKind == "referral_report"
	})).Return(nil)

	_, err := service.Rebuild(context.Background(), services.ReferralReport{
		FileName: "january.txt",
		Text:     rebuildReferralText,
	})

	require.NoError(t, err)
	eventBus.AssertExpectations(t)
}
