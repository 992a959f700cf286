package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/Clinicreportanalytics/internal/application/services"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
	apperrors "github.com/zatekoja/Clinicreportanalytics/pkg/errors"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func trackingRecords(dates ...time.Time) []*entities.AppointmentRecord {
	records := make([]*entities.AppointmentRecord, 0, len(dates))
	for _, d := range dates {
		records = append(records, &entities.AppointmentRecord{
			Date:            d,
			AppointmentType: "NAD New",
			ServiceCategory: entities.CategoryDental,
			Department:      "Dentistry",
			Location:        "Sherman Oaks",
			Count:           1,
		})
	}
	return records
}

func TestIngestionService_CheckModeWritesNothing(t *testing.T) {
	recordRepo := new(MockAppointmentRecordRepository)
	syncRepo := new(MockSyncHistoryRepository)
	service := services.NewIngestionService(recordRepo, syncRepo, 500, "weekly_tracking")

	records := trackingRecords(day(2026, 1, 5), day(2026, 1, 5), day(2026, 1, 6))
	recordRepo.On("ListDates", mock.Anything, "weekly_tracking", day(2026, 1, 5), day(2026, 1, 6)).
		Return([]time.Time{day(2026, 1, 5)}, nil)

	result, err := service.Ingest(context.Background(), records, services.ModeCheck, services.UploadMeta{})

	require.NoError(t, err)
	assert.Empty(t, result.BatchID)
	assert.Equal(t, 3, result.TotalRecords)
	assert.Equal(t, []string{"2026-01-05"}, result.OverlappingDates)
	assert.Equal(t, 2, result.DuplicateRecordCount)
	assert.Equal(t, 1, result.NewRecordCount)
	assert.Zero(t, result.Inserted)

	recordRepo.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
	recordRepo.AssertNotCalled(t, "DeleteBySourceAndDate", mock.Anything, mock.Anything, mock.Anything)
	syncRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestIngestionService_SkipModeInsertsOnlyNewDates(t *testing.T) {
	recordRepo := new(MockAppointmentRecordRepository)
	syncRepo := new(MockSyncHistoryRepository)
	service := services.NewIngestionService(recordRepo, syncRepo, 500, "weekly_tracking")

	records := trackingRecords(day(2026, 1, 5), day(2026, 1, 6))
	recordRepo.On("ListDates", mock.Anything, "weekly_tracking", day(2026, 1, 5), day(2026, 1, 6)).
		Return([]time.Time{day(2026, 1, 5)}, nil)
	recordRepo.On("InsertBatch", mock.Anything, mock.MatchedBy(func(chunk []*entities.AppointmentRecord) bool {
		return len(chunk) == 1 && chunk[0].Date.Equal(day(2026, 1, 6))
	})).Return(nil)
	syncRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := service.Ingest(context.Background(), records, services.ModeSkip, services.UploadMeta{
		FileName: "week1.csv",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.BatchID)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, records[1].BatchID, result.BatchID)

	recordRepo.AssertNotCalled(t, "DeleteBySourceAndDate", mock.Anything, mock.Anything, mock.Anything)
	syncRepo.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(rec *entities.SyncRecord) bool {
		return rec.FileName == "week1.csv" && rec.BatchID == result.BatchID && rec.Mode == "skip"
	}))
}

func TestIngestionService_ReplaceModeDeletesOverlappingDates(t *testing.T) {
	recordRepo := new(MockAppointmentRecordRepository)
	syncRepo := new(MockSyncHistoryRepository)
	service := services.NewIngestionService(recordRepo, syncRepo, 500, "weekly_tracking")

	records := trackingRecords(day(2026, 1, 5), day(2026, 1, 6))
	recordRepo.On("ListDates", mock.Anything, "weekly_tracking", day(2026, 1, 5), day(2026, 1, 6)).
		Return([]time.Time{day(2026, 1, 5)}, nil)
	recordRepo.On("DeleteBySourceAndDate", mock.Anything, "weekly_tracking", day(2026, 1, 5)).
		Return(int64(3), nil)
	recordRepo.On("InsertBatch", mock.Anything, mock.MatchedBy(func(chunk []*entities.AppointmentRecord) bool {
		return len(chunk) == 2
	})).Return(nil)
	syncRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := service.Ingest(context.Background(), records, services.ModeReplace, services.UploadMeta{})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Zero(t, result.Skipped)
	assert.Equal(t, []string{"2026-01-05"}, result.ReplacedDates)
	recordRepo.AssertExpectations(t)
}

func TestIngestionService_InvalidMode(t *testing.T) {
	recordRepo := new(MockAppointmentRecordRepository)
	service := services.NewIngestionService(recordRepo, nil, 500, "weekly_tracking")

	_, err := service.Ingest(context.Background(), trackingRecords(day(2026, 1, 5)), "merge", services.UploadMeta{})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	recordRepo.AssertNotCalled(t, "ListDates", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestionService_EmptyBatch(t *testing.T) {
	service := services.NewIngestionService(new(MockAppointmentRecordRepository), nil, 500, "weekly_tracking")

	_, err := service.Ingest(context.Background(), nil, services.ModeSkip, services.UploadMeta{})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
}

func TestIngestionService_ChunkFailureDoesNotAbortRun(t *testing.T) {
	recordRepo := new(MockAppointmentRecordRepository)
	syncRepo := new(MockSyncHistoryRepository)
	service := services.NewIngestionService(recordRepo, syncRepo, 2, "weekly_tracking")

	records := trackingRecords(
		day(2026, 1, 5), day(2026, 1, 5), day(2026, 1, 6), day(2026, 1, 6), day(2026, 1, 7))
	recordRepo.On("ListDates", mock.Anything, "weekly_tracking", day(2026, 1, 5), day(2026, 1, 7)).
		Return(nil, nil)
	recordRepo.On("InsertBatch", mock.Anything, mock.Anything).Return(nil).Once()
	recordRepo.On("InsertBatch", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()
	recordRepo.On("InsertBatch", mock.Anything, mock.Anything).Return(nil).Once()
	syncRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := service.Ingest(context.Background(), records, services.ModeSkip, services.UploadMeta{})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Inserted)
	assert.Equal(t, 2, result.Errored)
	recordRepo.AssertNumberOfCalls(t, "InsertBatch", 3)
}

func TestIngestionService_PublishesCompletionEvent(t *testing.T) {
	recordRepo := new(MockAppointmentRecordRepository)
	eventBus := new(MockEventBus)
	service := services.NewIngestionService(recordRepo, nil, 500, "weekly_tracking")
	service.SetEventBus(eventBus)

	recordRepo.On("ListDates", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil)
	recordRepo.On("InsertBatch", mock.Anything, mock.Anything).Return(nil)
	eventBus.On("Publish", mock.Anything, "ingestion:events", mock.MatchedBy(func(event *entities.IngestionEvent) bool {
		return event.EventType == entities.IngestionEventTypeCompleted && event.Inserted == 1
	})).Return(nil)

	_, err := service.Ingest(context.Background(), trackingRecords(day(2026, 1, 5)), services.ModeSkip, services.UploadMeta{})

	require.NoError(t, err)
	eventBus.AssertExpectations(t)
}
