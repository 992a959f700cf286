package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
)

const dateFormat = "2006-01-02"

// AnalyticsService defines the interface for performance summaries
type AnalyticsService interface {
	GetPerformance(ctx context.Context, start, end time.Time) (*entities.PerformanceSummary, error)
}

// AnalyticsHandler handles analytics requests
type AnalyticsHandler struct {
	service AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
	}
}

// GetPerformance handles GET /api/analytics/performance
func (h *AnalyticsHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	// Default to the trailing 90 days
	end := time.Now()
	start := end.AddDate(0, 0, -90)

	var err error
	if startStr != "" {
		start, err = time.Parse(dateFormat, startStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid start date format (use YYYY-MM-DD)")
			return
		}
	}
	if endStr != "" {
		end, err = time.Parse(dateFormat, endStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid end date format (use YYYY-MM-DD)")
			return
		}
	}

	summary, err := h.service.GetPerformance(r.Context(), start, end)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}
