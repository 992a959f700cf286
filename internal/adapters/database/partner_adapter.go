package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/repositories"
	"github.com/zatekoja/Clinicreportanalytics/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/Clinicreportanalytics/pkg/errors"
)

const partnersTable = "referral_partners"

// PartnerAdapter implements PartnerRepository using PostgreSQL
type PartnerAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPartnerAdapter creates a new PostgreSQL partner adapter
func NewPartnerAdapter(client *postgres.Client) repositories.PartnerRepository {
	return &PartnerAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// List retrieves all partners ordered by name
func (a *PartnerAdapter) List(ctx context.Context) ([]*entities.Partner, error) {
	sql, args, err := a.db.From(partnersTable).
		Select("id", "name", "total_visits", "total_revenue", "last_sync_at", "created_at", "updated_at").
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list partners", err)
	}
	defer rows.Close()

	var partners []*entities.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan partner", err)
		}
		partners = append(partners, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate partners", err)
	}
	return partners, nil
}

// GetByID retrieves a partner by its ID
func (a *PartnerAdapter) GetByID(ctx context.Context, id string) (*entities.Partner, error) {
	query, args, err := a.db.From(partnersTable).
		Select("id", "name", "total_visits", "total_revenue", "last_sync_at", "created_at", "updated_at").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	row := a.client.DB().QueryRowContext(ctx, query, args...)
	p, err := scanPartner(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("partner not found: " + id)
		}
		return nil, apperrors.NewInternalError("failed to get partner", err)
	}
	return p, nil
}

// UpdateStats writes a partner's rebuilt totals and stamps last_sync_at
func (a *PartnerAdapter) UpdateStats(ctx context.Context, stats *entities.PartnerStats) error {
	now := time.Now()
	query, args, err := a.db.Update(partnersTable).
		Set(goqu.Record{
			"total_visits":  stats.TotalVisits,
			"total_revenue": stats.TotalRevenue,
			"last_sync_at":  now,
			"updated_at":    now,
		}).
		Where(goqu.Ex{"id": stats.PartnerID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update partner stats", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to read rows affected", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("partner not found: " + stats.PartnerID)
	}
	return nil
}

// ResetStats zeroes visits and revenue for every partner
func (a *PartnerAdapter) ResetStats(ctx context.Context) error {
	query, args, err := a.db.Update(partnersTable).
		Set(goqu.Record{
			"total_visits":  0,
			"total_revenue": 0,
			"updated_at":    time.Now(),
		}).
		Where(goqu.C("id").IsNotNull()).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build reset query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to reset partner stats", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPartner(row rowScanner) (*entities.Partner, error) {
	var p entities.Partner
	var lastSync sql.NullTime
	if err := row.Scan(
		&p.ID, &p.Name, &p.TotalVisits, &p.TotalRevenue, &lastSync, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lastSync.Valid {
		p.LastSyncAt = &lastSync.Time
	}
	return &p, nil
}
