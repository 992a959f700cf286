package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/Clinicreportanalytics/internal/api/handlers"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
	apperrors "github.com/zatekoja/Clinicreportanalytics/pkg/errors"
)

type stubAnalyticsService struct {
	summary  *entities.PerformanceSummary
	err      error
	gotStart time.Time
	gotEnd   time.Time
}

func (s *stubAnalyticsService) GetPerformance(_ context.Context, start, end time.Time) (*entities.PerformanceSummary, error) {
	s.gotStart = start
	s.gotEnd = end
	if s.err != nil {
		return nil, s.err
	}
	return s.summary, nil
}

func TestAnalyticsHandler_GetPerformance(t *testing.T) {
	service := &stubAnalyticsService{
		summary: &entities.PerformanceSummary{TotalAppointments: 42},
	}
	handler := handlers.NewAnalyticsHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/performance?start=2026-01-01&end=2026-01-31", nil)
	rec := httptest.NewRecorder()
	handler.GetPerformance(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), service.gotStart)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), service.gotEnd)

	var resp entities.PerformanceSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 42, resp.TotalAppointments)
}

func TestAnalyticsHandler_GetPerformanceDefaultsToTrailingWindow(t *testing.T) {
	service := &stubAnalyticsService{summary: &entities.PerformanceSummary{}}
	handler := handlers.NewAnalyticsHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/performance", nil)
	rec := httptest.NewRecorder()
	handler.GetPerformance(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	window := service.gotEnd.Sub(service.gotStart)
	assert.InDelta(t, 90*24, window.Hours(), 25)
}

func TestAnalyticsHandler_GetPerformanceBadDate(t *testing.T) {
	handler := handlers.NewAnalyticsHandler(&stubAnalyticsService{})

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/performance?start=01-05-2026", nil)
	rec := httptest.NewRecorder()
	handler.GetPerformance(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsHandler_GetPerformanceServiceError(t *testing.T) {
	service := &stubAnalyticsService{err: apperrors.NewValidationError("end date before start date")}
	handler := handlers.NewAnalyticsHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/performance?start=2026-01-31&end=2026-01-01", nil)
	rec := httptest.NewRecorder()
	handler.GetPerformance(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
