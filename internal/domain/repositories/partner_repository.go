package repositories

import (
	"context"

	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
)

// PartnerRepository defines the interface for referral partner operations
type PartnerRepository interface {
	// List retrieves the full partner registry
	List(ctx context.Context) ([]*entities.Partner, error)

	// GetByID retrieves a partner by ID
	GetByID(ctx context.Context, id string) (*entities.Partner, error)

	// UpdateStats writes absolute visit/revenue totals for a partner and
	// stamps LastSyncAt
	UpdateStats(ctx context.Context, stats *entities.PartnerStats) error

	// ResetStats zeroes visit/revenue totals for every partner
	ResetStats(ctx context.Context) error
}
