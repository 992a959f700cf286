package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/repositories"
	"github.com/zatekoja/Clinicreportanalytics/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/Clinicreportanalytics/pkg/errors"
)

const appointmentRecordsTable = "appointment_records"

// AppointmentRecordAdapter implements AppointmentRecordRepository using PostgreSQL
type AppointmentRecordAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAppointmentRecordAdapter creates a new PostgreSQL appointment record adapter
func NewAppointmentRecordAdapter(client *postgres.Client) repositories.AppointmentRecordRepository {
	return &AppointmentRecordAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// InsertBatch inserts a slice of records in one statement
func (a *AppointmentRecordAdapter) InsertBatch(ctx context.Context, records []*entities.AppointmentRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]goqu.Record, len(records))
	for i, r := range records {
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		rows[i] = goqu.Record{
			"date":             r.Date,
			"appointment_type": r.AppointmentType,
			"department":       r.Department,
			"service_category": r.ServiceCategory,
			"location":         r.Location,
			"count":            r.Count,
			"is_availability":  r.IsAvailability,
			"batch_id":         r.BatchID,
			"source_kind":      r.SourceKind,
			"created_at":       r.CreatedAt,
		}
	}

	sql, args, err := a.db.Insert(appointmentRecordsTable).Rows(rows).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, sql, args...); err != nil {
		return apperrors.NewInternalError("failed to insert appointment records", err)
	}
	return nil
}

// ListDates returns the distinct dates already stored for a source kind
// within [from, to]
func (a *AppointmentRecordAdapter) ListDates(ctx context.Context, sourceKind string, from, to time.Time) ([]time.Time, error) {
	sql, args, err := a.db.From(appointmentRecordsTable).
		Select(goqu.DISTINCT("date")).
		Where(
			goqu.Ex{"source_kind": sourceKind},
			goqu.C("date").Gte(from),
			goqu.C("date").Lte(to),
		).
		Order(goqu.I("date").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list stored dates", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, apperrors.NewInternalError("failed to scan date", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate dates", err)
	}
	return dates, nil
}

// DeleteBySourceAndDate removes all records for a source kind on a date and
// returns the number of rows deleted
func (a *AppointmentRecordAdapter) DeleteBySourceAndDate(ctx context.Context, sourceKind string, date time.Time) (int64, error) {
	sql, args, err := a.db.Delete(appointmentRecordsTable).
		Where(goqu.Ex{
			"source_kind": sourceKind,
			"date":        date,
		}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, sql, args...)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to delete appointment records", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to read rows affected", err)
	}
	return affected, nil
}

// ListByDateRange retrieves records within [from, to], ordered by date
func (a *AppointmentRecordAdapter) ListByDateRange(ctx context.Context, from, to time.Time) ([]*entities.AppointmentRecord, error) {
	sql, args, err := a.db.From(appointmentRecordsTable).
		Select(
			"id", "date", "appointment_type", "department", "service_category",
			"location", "count", "is_availability", "batch_id", "source_kind", "created_at",
		).
		Where(
			goqu.C("date").Gte(from),
			goqu.C("date").Lte(to),
		).
		Order(goqu.I("date").Asc(), goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list appointment records", err)
	}
	defer rows.Close()

	var records []*entities.AppointmentRecord
	for rows.Next() {
		var r entities.AppointmentRecord
		if err := rows.Scan(
			&r.ID, &r.Date, &r.AppointmentType, &r.Department, &r.ServiceCategory,
			&r.Location, &r.Count, &r.IsAvailability, &r.BatchID, &r.SourceKind, &r.CreatedAt,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan appointment record", err)
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate appointment records", err)
	}
	return records, nil
}
