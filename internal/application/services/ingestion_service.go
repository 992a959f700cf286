package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/providers"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/repositories"
	apperrors "github.com/zatekoja/Clinicreportanalytics/pkg/errors"
)

// IngestMode controls how an upload treats dates that already have records.
type IngestMode string

const (
	// ModeCheck reports overlap without writing anything.
	ModeCheck IngestMode = "check"
	// ModeSkip inserts only records on dates not yet stored.
	ModeSkip IngestMode = "skip"
	// ModeReplace deletes stored records on overlapping dates, then inserts.
	ModeReplace IngestMode = "replace"
)

const dateKeyFormat = "2006-01-02"

// UploadMeta identifies the uploaded file for the audit trail.
type UploadMeta struct {
	FileName    string
	ContentHash string
}

// IngestResult reports what one ingestion run did (or, in check mode, would
// do).
type IngestResult struct {
	BatchID              string     `json:"batch_id,omitempty"`
	Mode                 IngestMode `json:"mode"`
	TotalRecords         int        `json:"total_records"`
	Inserted             int        `json:"inserted"`
	Skipped              int        `json:"skipped"`
	Errored              int        `json:"errored"`
	OverlappingDates     []string   `json:"overlapping_dates"`
	ReplacedDates        []string   `json:"replaced_dates,omitempty"`
	DuplicateRecordCount int        `json:"duplicate_record_count"`
	NewRecordCount       int        `json:"new_record_count"`
}

// IngestionService lands parsed appointment records in the store with
// duplicate-date handling, writes the upload audit row, and announces
// completed batches on the event bus.
type IngestionService struct {
	records     repositories.AppointmentRecordRepository
	syncHistory repositories.SyncHistoryRepository
	eventBus    providers.EventBus
	chunkSize   int
	sourceKind  string
}

// NewIngestionService creates an ingestion service. chunkSize bounds the
// size of each insert statement; values below 1 fall back to 500.
func NewIngestionService(
	records repositories.AppointmentRecordRepository,
	syncHistory repositories.SyncHistoryRepository,
	chunkSize int,
	sourceKind string,
) *IngestionService {
	if chunkSize < 1 {
		chunkSize = 500
	}
	if sourceKind == "" {
		sourceKind = "weekly_tracking"
	}
	return &IngestionService{
		records:     records,
		syncHistory: syncHistory,
		chunkSize:   chunkSize,
		sourceKind:  sourceKind,
	}
}

// SetEventBus wires the event bus for batch-completed announcements.
func (s *IngestionService) SetEventBus(bus providers.EventBus) {
	s.eventBus = bus
}

// Ingest lands a batch of records under the given mode.
//
// The overlap check and the insert are separate statements; a concurrent
// upload for the same dates can slip between them. Uploads are a manual,
// low-frequency operation, so serialization is left to the caller's
// deployment.
func (s *IngestionService) Ingest(ctx context.Context, records []*entities.AppointmentRecord, mode IngestMode, meta UploadMeta) (*IngestResult, error) {
	switch mode {
	case ModeCheck, ModeSkip, ModeReplace:
	default:
		return nil, apperrors.NewValidationError("invalid ingest mode: " + string(mode))
	}
	if len(records) == 0 {
		return nil, apperrors.NewValidationError("no records to ingest")
	}

	minDate, maxDate := dateBounds(records)

	existing, err := s.records.ListDates(ctx, s.sourceKind, minDate, maxDate)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to check existing dates", err)
	}
	existingSet := make(map[string]struct{}, len(existing))
	for _, d := range existing {
		existingSet[d.Format(dateKeyFormat)] = struct{}{}
	}

	result := &IngestResult{
		Mode:         mode,
		TotalRecords: len(records),
	}

	seen := map[string]struct{}{}
	for _, r := range records {
		key := r.Date.Format(dateKeyFormat)
		if _, dup := existingSet[key]; dup {
			result.DuplicateRecordCount++
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				result.OverlappingDates = append(result.OverlappingDates, key)
			}
		}
	}
	sort.Strings(result.OverlappingDates)
	result.NewRecordCount = len(records) - result.DuplicateRecordCount

	if mode == ModeCheck {
		return result, nil
	}

	batchID := uuid.NewString()
	result.BatchID = batchID

	toInsert := records
	switch mode {
	case ModeSkip:
		toInsert = make([]*entities.AppointmentRecord, 0, len(records))
		for _, r := range records {
			if _, dup := existingSet[r.Date.Format(dateKeyFormat)]; dup {
				result.Skipped++
				continue
			}
			toInsert = append(toInsert, r)
		}
	case ModeReplace:
		for _, key := range result.OverlappingDates {
			date, _ := time.Parse(dateKeyFormat, key)
			if _, err := s.records.DeleteBySourceAndDate(ctx, s.sourceKind, date); err != nil {
				return nil, apperrors.NewInternalError("failed to replace records for "+key, err)
			}
			result.ReplacedDates = append(result.ReplacedDates, key)
		}
	}

	for _, r := range toInsert {
		r.BatchID = batchID
		if r.SourceKind == "" {
			r.SourceKind = s.sourceKind
		}
	}

	// Chunked insert; one failed chunk does not abort the rest
	for start := 0; start < len(toInsert); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(toInsert) {
			end = len(toInsert)
		}
		chunk := toInsert[start:end]
		if err := s.records.InsertBatch(ctx, chunk); err != nil {
			log.Error().Err(err).
				Str("batch_id", batchID).
				Int("chunk_start", start).
				Int("chunk_size", len(chunk)).
				Msg("insert chunk failed")
			result.Errored += len(chunk)
			continue
		}
		result.Inserted += len(chunk)
	}

	s.writeSyncRecord(ctx, result, meta, minDate, maxDate)
	s.publishCompleted(ctx, result, minDate, maxDate)

	log.Info().
		Str("batch_id", batchID).
		Str("mode", string(mode)).
		Int("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Int("errored", result.Errored).
		Strs("replaced_dates", result.ReplacedDates).
		Msg("ingestion completed")

	return result, nil
}

func (s *IngestionService) writeSyncRecord(ctx context.Context, result *IngestResult, meta UploadMeta, minDate, maxDate time.Time) {
	if s.syncHistory == nil {
		return
	}
	record := &entities.SyncRecord{
		ID:           uuid.NewString(),
		FileName:     meta.FileName,
		ContentHash:  meta.ContentHash,
		SourceKind:   s.sourceKind,
		BatchID:      result.BatchID,
		Mode:         string(result.Mode),
		RangeStart:   &minDate,
		RangeEnd:     &maxDate,
		ParsedCount:  result.TotalRecords,
		MatchedCount: result.Inserted,
		SkippedCount: result.Skipped,
	}
	if err := s.syncHistory.Create(ctx, record); err != nil {
		log.Warn().Err(err).Str("batch_id", result.BatchID).Msg("failed to write sync history")
	}
}

func (s *IngestionService) publishCompleted(ctx context.Context, result *IngestResult, minDate, maxDate time.Time) {
	if s.eventBus == nil {
		return
	}
	event := entities.NewIngestionEvent(
		entities.IngestionEventTypeCompleted,
		s.sourceKind,
		result.BatchID,
		result.Inserted,
		&minDate,
		&maxDate,
	)
	if err := s.eventBus.Publish(ctx, providers.EventChannelIngestion, event); err != nil {
		log.Warn().Err(err).Str("batch_id", result.BatchID).Msg("failed to publish ingestion event")
	}
}

func dateBounds(records []*entities.AppointmentRecord) (time.Time, time.Time) {
	minDate, maxDate := records[0].Date, records[0].Date
	for _, r := range records[1:] {
		if r.Date.Before(minDate) {
			minDate = r.Date
		}
		if r.Date.After(maxDate) {
			maxDate = r.Date
		}
	}
	return minDate, maxDate
}
