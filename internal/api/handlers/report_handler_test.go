package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/Clinicreportanalytics/internal/api/handlers"
	"github.com/zatekoja/Clinicreportanalytics/internal/application/services"
	"github.com/zatekoja/Clinicreportanalytics/internal/classify"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
	"github.com/zatekoja/Clinicreportanalytics/internal/reports"
	apperrors "github.com/zatekoja/Clinicreportanalytics/pkg/errors"
)

const uploadCSV = `January Week 1 ( 1/4/26 - 1/10/26 ),,,,,,,,,
"Edit: Jan 12, 2026",Monday 1/5,,,Tuesday 1/6,,,Totals,,
,SO,VN,VE,SO,VN,VE,SO,VN,VE
,Dentistry,,,,,,,,
NAD New,2,1,,3,,1,5,1,1
Dental Avail,4,0,0,2,0,0,6,0,0
`

type stubIngestionService struct {
	result     *services.IngestResult
	err        error
	gotRecords []*entities.AppointmentRecord
	gotMode    services.IngestMode
	gotMeta    services.UploadMeta
}

func (s *stubIngestionService) Ingest(_ context.Context, records []*entities.AppointmentRecord, mode services.IngestMode, meta services.UploadMeta) (*services.IngestResult, error) {
	s.gotRecords = records
	s.gotMode = mode
	s.gotMeta = meta
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubSyncHistoryService struct {
	records  []*entities.SyncRecord
	err      error
	gotLimit int
}

func (s *stubSyncHistoryService) ListRecent(_ context.Context, limit int) ([]*entities.SyncRecord, error) {
	s.gotLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func newReportHandler(service handlers.IngestionService, syncHistory handlers.SyncHistoryService) *handlers.ReportHandler {
	parser := reports.NewWeeklyParser(reports.ReportLayout{})
	classifier := classify.NewClassifier(nil)
	return handlers.NewReportHandler(parser, classifier, service, syncHistory)
}

func uploadRequest(t *testing.T, payload interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/api/reports/tracking", bytes.NewReader(body))
}

func TestReportHandler_UploadTracking(t *testing.T) {
	service := &stubIngestionService{
		result: &services.IngestResult{BatchID: "batch-1", Mode: services.ModeSkip, Inserted: 4},
	}
	handler := newReportHandler(service, nil)

	req := uploadRequest(t, map[string]string{
		"csv_text":  uploadCSV,
		"file_name": "week1.csv",
		"mode":      "skip",
	})
	rec := httptest.NewRecorder()
	handler.UploadTracking(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("availability rows never reach ingestion", func(t *testing.T) {
		require.Len(t, service.gotRecords, 4)
		for _, r := range service.gotRecords {
			assert.Equal(t, "NAD New", r.AppointmentType)
			assert.False(t, r.IsAvailability)
		}
	})

	t.Run("mode and audit metadata forwarded", func(t *testing.T) {
		assert.Equal(t, services.ModeSkip, service.gotMode)
		assert.Equal(t, "week1.csv", service.gotMeta.FileName)
		assert.Len(t, service.gotMeta.ContentHash, 64)
	})

	t.Run("response carries the parsed week", func(t *testing.T) {
		var resp struct {
			Result    *services.IngestResult `json:"result"`
			WeekTitle string                 `json:"week_title"`
			WeekStart string                 `json:"week_start"`
			WeekEnd   string                 `json:"week_end"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "batch-1", resp.Result.BatchID)
		assert.Equal(t, "January Week 1 ( 1/4/26 - 1/10/26 )", resp.WeekTitle)
		assert.Equal(t, "2026-01-04", resp.WeekStart)
		assert.Equal(t, "2026-01-10", resp.WeekEnd)
	})
}

func TestReportHandler_UploadTrackingDefaultsToCheckMode(t *testing.T) {
	service := &stubIngestionService{result: &services.IngestResult{Mode: services.ModeCheck}}
	handler := newReportHandler(service, nil)

	req := uploadRequest(t, map[string]string{"csv_text": uploadCSV})
	rec := httptest.NewRecorder()
	handler.UploadTracking(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.ModeCheck, service.gotMode)
}

func TestReportHandler_UploadTrackingMissingText(t *testing.T) {
	handler := newReportHandler(&stubIngestionService{}, nil)

	req := uploadRequest(t, map[string]string{"mode": "skip"})
	rec := httptest.NewRecorder()
	handler.UploadTracking(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandler_UploadTrackingInvalidJSON(t *testing.T) {
	handler := newReportHandler(&stubIngestionService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/reports/tracking", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.UploadTracking(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandler_UploadTrackingUnparseableReport(t *testing.T) {
	service := &stubIngestionService{}
	handler := newReportHandler(service, nil)

	req := uploadRequest(t, map[string]string{"csv_text": "garbage,1,2\nmore garbage,3,4\n"})
	rec := httptest.NewRecorder()
	handler.UploadTracking(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error       string              `json:"error"`
		Diagnostics reports.Diagnostics `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
	assert.Equal(t, 3, resp.Diagnostics.LineCount)
	assert.Nil(t, service.gotRecords)
}

func TestReportHandler_UploadTrackingServiceError(t *testing.T) {
	service := &stubIngestionService{err: apperrors.NewValidationError("invalid ingest mode: merge")}
	handler := newReportHandler(service, nil)

	req := uploadRequest(t, map[string]string{"csv_text": uploadCSV, "mode": "merge"})
	rec := httptest.NewRecorder()
	handler.UploadTracking(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandler_ListSyncHistory(t *testing.T) {
	now := time.Now()
	syncHistory := &stubSyncHistoryService{
		records: []*entities.SyncRecord{
			{ID: "s1", FileName: "week1.csv", SourceKind: "weekly_tracking", CreatedAt: now},
		},
	}
	handler := newReportHandler(&stubIngestionService{}, syncHistory)

	req := httptest.NewRequest(http.MethodGet, "/api/sync-history", nil)
	rec := httptest.NewRecorder()
	handler.ListSyncHistory(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, syncHistory.gotLimit)

	var resp struct {
		History []*entities.SyncRecord `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.History, 1)
	assert.Equal(t, "week1.csv", resp.History[0].FileName)
}

func TestReportHandler_ListSyncHistoryLimit(t *testing.T) {
	syncHistory := &stubSyncHistoryService{}
	handler := newReportHandler(&stubIngestionService{}, syncHistory)

	t.Run("custom limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sync-history?limit=5", nil)
		rec := httptest.NewRecorder()
		handler.ListSyncHistory(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 5, syncHistory.gotLimit)
	})

	t.Run("limit out of range", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sync-history?limit=500", nil)
		rec := httptest.NewRecorder()
		handler.ListSyncHistory(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
