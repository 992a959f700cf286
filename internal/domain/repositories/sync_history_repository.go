package repositories

import (
	"context"

	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
)

// SyncHistoryRepository defines the interface for upload audit operations
type SyncHistoryRepository interface {
	// Create writes a sync history row
	Create(ctx context.Context, record *entities.SyncRecord) error

	// ListRecent retrieves the most recent sync rows, newest first
	ListRecent(ctx context.Context, limit int) ([]*entities.SyncRecord, error)
}
