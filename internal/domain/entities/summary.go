package entities

import (
	"time"
)

// TypeSummary totals appointments for one appointment-type label.
type TypeSummary struct {
	AppointmentType string         `json:"appointment_type"`
	Total           int            `json:"total"`
	ByLocation      map[string]int `json:"by_location"`
}

// CategorySummary totals appointments for one service category.
type CategorySummary struct {
	Category   string         `json:"category"`
	Total      int            `json:"total"`
	ByLocation map[string]int `json:"by_location"`
}

// DaySummary totals appointments for one day of the week.
type DaySummary struct {
	Weekday    string         `json:"weekday"`
	Total      int            `json:"total"`
	ByLocation map[string]int `json:"by_location"`
}

// WeekSummary totals appointments for one ISO week (Monday start).
type WeekSummary struct {
	Year       int            `json:"year"`
	Week       int            `json:"week"`
	Total      int            `json:"total"`
	ByLocation map[string]int `json:"by_location"`
}

// MonthSummary totals appointments for one calendar month, keyed YYYY-MM.
type MonthSummary struct {
	Month      string         `json:"month"`
	Total      int            `json:"total"`
	ByLocation map[string]int `json:"by_location"`
}

// LocationSummary totals appointments for one location.
type LocationSummary struct {
	Location string `json:"location"`
	Total    int    `json:"total"`
}

// PerformanceSummary is the full aggregation response for a date range.
type PerformanceSummary struct {
	Start             time.Time         `json:"start"`
	End               time.Time         `json:"end"`
	TotalAppointments int               `json:"total_appointments"`
	ByType            []TypeSummary     `json:"by_type"`
	ByCategory        []CategorySummary `json:"by_category"`
	ByDayOfWeek       []DaySummary      `json:"by_day_of_week"`
	ByWeek            []WeekSummary     `json:"by_week"`
	ByMonth           []MonthSummary    `json:"by_month"`
	ByLocation        []LocationSummary `json:"by_location"`
}
