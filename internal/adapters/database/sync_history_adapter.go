package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/repositories"
	"github.com/zatekoja/Clinicreportanalytics/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/Clinicreportanalytics/pkg/errors"
)

const syncHistoryTable = "sync_history"

// SyncHistoryAdapter implements SyncHistoryRepository using PostgreSQL
type SyncHistoryAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSyncHistoryAdapter creates a new PostgreSQL sync history adapter
func NewSyncHistoryAdapter(client *postgres.Client) repositories.SyncHistoryRepository {
	return &SyncHistoryAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create writes one audit row
func (a *SyncHistoryAdapter) Create(ctx context.Context, record *entities.SyncRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	query, args, err := a.db.Insert(syncHistoryTable).Rows(goqu.Record{
		"id":            record.ID,
		"file_name":     record.FileName,
		"content_hash":  record.ContentHash,
		"source_kind":   record.SourceKind,
		"batch_id":      record.BatchID,
		"mode":          record.Mode,
		"range_start":   record.RangeStart,
		"range_end":     record.RangeEnd,
		"parsed_count":  record.ParsedCount,
		"matched_count": record.MatchedCount,
		"skipped_count": record.SkippedCount,
		"revenue_added": record.RevenueAdded,
		"created_at":    record.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create sync record", err)
	}
	return nil
}

// ListRecent retrieves the most recent audit rows, newest first
func (a *SyncHistoryAdapter) ListRecent(ctx context.Context, limit int) ([]*entities.SyncRecord, error) {
	if limit < 1 {
		limit = 20
	}

	query, args, err := a.db.From(syncHistoryTable).
		Select(
			"id", "file_name", "content_hash", "source_kind", "batch_id", "mode",
			"range_start", "range_end", "parsed_count", "matched_count",
			"skipped_count", "revenue_added", "created_at",
		).
		Order(goqu.I("created_at").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list sync history", err)
	}
	defer rows.Close()

	var records []*entities.SyncRecord
	for rows.Next() {
		var r entities.SyncRecord
		var rangeStart, rangeEnd sql.NullTime
		if err := rows.Scan(
			&r.ID, &r.FileName, &r.ContentHash, &r.SourceKind, &r.BatchID, &r.Mode,
			&rangeStart, &rangeEnd, &r.ParsedCount, &r.MatchedCount,
			&r.SkippedCount, &r.RevenueAdded, &r.CreatedAt,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan sync record", err)
		}
		if rangeStart.Valid {
			r.RangeStart = &rangeStart.Time
		}
		if rangeEnd.Valid {
			r.RangeEnd = &rangeEnd.Time
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate sync history", err)
	}
	return records, nil
}
