package entities

import (
	"time"
)

// Partner represents a referring clinic in the partner registry.
type Partner struct {
	ID           string     `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	TotalVisits  int        `json:"total_visits" db:"total_visits"`
	TotalRevenue float64    `json:"total_revenue" db:"total_revenue"`
	LastSyncAt   *time.Time `json:"last_sync_at" db:"last_sync_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// PartnerStats accumulates visits and revenue for one partner within a
// single rebuild run. Stats are absolute for the run, not increments on top
// of previous runs.
type PartnerStats struct {
	PartnerID    string  `json:"partner_id"`
	PartnerName  string  `json:"partner_name"`
	TotalVisits  int     `json:"total_visits"`
	TotalRevenue float64 `json:"total_revenue"`
}
