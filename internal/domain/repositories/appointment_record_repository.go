package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
)

// AppointmentRecordRepository defines the interface for appointment record
// data operations
type AppointmentRecordRepository interface {
	// InsertBatch inserts a slice of records in one statement
	InsertBatch(ctx context.Context, records []*entities.AppointmentRecord) error

	// ListDates returns the distinct dates already stored for a source kind
	// within [from, to]
	ListDates(ctx context.Context, sourceKind string, from, to time.Time) ([]time.Time, error)

	// DeleteBySourceAndDate removes all records for a source kind on a date
	DeleteBySourceAndDate(ctx context.Context, sourceKind string, date time.Time) (int64, error)

	// ListByDateRange retrieves records within [from, to], ordered by date
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*entities.AppointmentRecord, error)
}
