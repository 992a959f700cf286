package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/zatekoja/Clinicreportanalytics/internal/application/services"
	"github.com/zatekoja/Clinicreportanalytics/internal/classify"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
	"github.com/zatekoja/Clinicreportanalytics/internal/reports"
)

// IngestionService defines the interface for report ingestion
type IngestionService interface {
	Ingest(ctx context.Context, records []*entities.AppointmentRecord, mode services.IngestMode, meta services.UploadMeta) (*services.IngestResult, error)
}

// SyncHistoryService exposes the upload audit trail
type SyncHistoryService interface {
	ListRecent(ctx context.Context, limit int) ([]*entities.SyncRecord, error)
}

// ReportHandler handles weekly tracking report uploads
type ReportHandler struct {
	parser      *reports.WeeklyParser
	classifier  *classify.Classifier
	service     IngestionService
	syncHistory SyncHistoryService
}

// NewReportHandler creates a new report handler
func NewReportHandler(parser *reports.WeeklyParser, classifier *classify.Classifier, service IngestionService, syncHistory SyncHistoryService) *ReportHandler {
	return &ReportHandler{
		parser:      parser,
		classifier:  classifier,
		service:     service,
		syncHistory: syncHistory,
	}
}

type trackingUploadRequest struct {
	CSVText  string `json:"csv_text"`
	FileName string `json:"file_name"`
	Mode     string `json:"mode"`
}

type trackingUploadResponse struct {
	Result      *services.IngestResult `json:"result"`
	WeekTitle   string                 `json:"week_title"`
	WeekStart   string                 `json:"week_start,omitempty"`
	WeekEnd     string                 `json:"week_end,omitempty"`
	Diagnostics reports.Diagnostics    `json:"diagnostics"`
}

// UploadTracking handles POST /api/reports/tracking
func (h *ReportHandler) UploadTracking(w http.ResponseWriter, r *http.Request) {
	var req trackingUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.CSVText == "" {
		respondWithError(w, http.StatusBadRequest, "csv_text is required")
		return
	}
	if req.Mode == "" {
		req.Mode = string(services.ModeCheck)
	}

	report, err := h.parser.Parse(req.CSVText)
	if err != nil {
		var parseErr *reports.ParseError
		if errors.As(err, &parseErr) {
			respondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":       parseErr.Message,
				"diagnostics": parseErr.Diagnostics,
			})
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	records := h.parser.Flatten(report, "")
	h.enrich(records)

	booked := make([]*entities.AppointmentRecord, 0, len(records))
	for _, rec := range records {
		if rec.IsAvailability {
			continue
		}
		booked = append(booked, rec)
	}
	if len(booked) == 0 {
		respondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":       "no booked appointments found in report",
			"diagnostics": report.Diagnostics,
		})
		return
	}

	hash := sha256.Sum256([]byte(req.CSVText))
	meta := services.UploadMeta{
		FileName:    req.FileName,
		ContentHash: hex.EncodeToString(hash[:]),
	}

	result, err := h.service.Ingest(r.Context(), booked, services.IngestMode(req.Mode), meta)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	resp := trackingUploadResponse{
		Result:      result,
		WeekTitle:   report.WeekTitle,
		Diagnostics: report.Diagnostics,
	}
	if !report.WeekStart.IsZero() {
		resp.WeekStart = report.WeekStart.Format("2006-01-02")
	}
	if !report.WeekEnd.IsZero() {
		resp.WeekEnd = report.WeekEnd.Format("2006-01-02")
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// enrich refines each record's category and department from its label.
// The section header already gave a coarse category; the per-label taxonomy
// wins when it knows the label.
func (h *ReportHandler) enrich(records []*entities.AppointmentRecord) {
	if h.classifier == nil {
		return
	}
	for _, rec := range records {
		if rec.IsAvailability {
			continue
		}
		if mapping, ok := h.classifier.Classify(rec.AppointmentType); ok {
			rec.ServiceCategory = mapping.Category
			rec.Department = mapping.Department
		}
	}
}

// ListSyncHistory handles GET /api/sync-history
func (h *ReportHandler) ListSyncHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			respondWithError(w, http.StatusBadRequest, "limit must be an integer between 1 and 200")
			return
		}
		limit = parsed
	}

	records, err := h.syncHistory.ListRecent(r.Context(), limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"history": records,
	})
}
