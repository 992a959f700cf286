package entities

import (
	"time"
)

// Service category codes shared by the report parser and the classifier.
const (
	CategoryDental     = "DENTAL"
	CategoryAP         = "AP"
	CategoryWellness   = "WELLNESS"
	CategoryAddon      = "ADDON"
	CategoryImaging    = "IMAGING"
	CategorySurgery    = "SURG"
	CategoryExotic     = "EXOTIC"
	CategoryInternalMed = "IM"
	CategoryCardiology = "CARDIO"
	CategoryMobile     = "MPMV"
	CategoryOther      = "OTHER"
)

// AppointmentRecord is the canonical fact row produced by report ingestion.
// One record counts appointments of one type, at one location, on one date.
// Count is always positive; zero-count cells are never materialised.
// ServiceCategory is never empty; unresolvable labels carry CategoryOther.
type AppointmentRecord struct {
	ID              int64     `json:"id" db:"id"`
	Date            time.Time `json:"date" db:"date"`
	AppointmentType string    `json:"appointment_type" db:"appointment_type"`
	Department      string    `json:"department" db:"department"`
	ServiceCategory string    `json:"service_category" db:"service_category"`
	Location        string    `json:"location" db:"location"`
	Count           int       `json:"count" db:"count"`
	IsAvailability  bool      `json:"is_availability" db:"is_availability"`
	BatchID         string    `json:"batch_id" db:"batch_id"`
	SourceKind      string    `json:"source_kind" db:"source_kind"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// ServiceMapping describes how a raw appointment-type label maps onto the
// clinic's service catalog.
type ServiceMapping struct {
	Category        string `json:"category"`
	Department      string `json:"department"`
	RequiresDVM     bool   `json:"requires_dvm"`
	DurationMinutes int    `json:"duration_minutes"`
}
