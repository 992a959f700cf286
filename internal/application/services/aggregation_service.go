package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
	"github.com/zatekoja/Clinicreportanalytics/internal/domain/repositories"
	apperrors "github.com/zatekoja/Clinicreportanalytics/pkg/errors"
)

// AggregationConfig tunes which records count towards the performance
// summaries.
type AggregationConfig struct {
	// LocationAliases maps lowercased raw location labels to canonical
	// location names.
	LocationAliases map[string]string

	// RevenueLocations are the canonical clinic locations the summaries
	// cover; everything else is excluded.
	RevenueLocations []string

	// GarbageLabels are lowercased appointment-type labels that are
	// bookkeeping noise, not appointments.
	GarbageLabels []string

	// BrandPrefix marks facility names stored as appointment types
	// ("green dog -"); such rows are excluded.
	BrandPrefix string

	// ClosedWeekday is excluded entirely; counts there are data errors.
	ClosedWeekday time.Weekday

	// TypedSourceKind restricts type and category breakdowns to the source
	// whose labels are real appointment types.
	TypedSourceKind string

	// AvailabilityMarkers catch availability rows whose flag was lost
	// upstream.
	AvailabilityMarkers []string
}

// DefaultAggregationConfig returns the production filter set.
func DefaultAggregationConfig() AggregationConfig {
	return AggregationConfig{
		LocationAliases: map[string]string{
			"green dog - venice (bu)":  "Venice",
			"green dog - venice":       "Venice",
			"green dog - van nuys":     "Van Nuys",
			"green dog - sherman oaks": "Sherman Oaks",
			"gdd & mpmv":               "MPMV",
			"venice":                   "Venice",
			"van nuys":                 "Van Nuys",
			"sherman oaks":             "Sherman Oaks",
		},
		RevenueLocations: []string{"Sherman Oaks", "Van Nuys", "Venice"},
		GarbageLabels: []string{
			"zvet services only",
			"venice - green dog facility",
			"sherman oaks - main facility",
			"waitlist - not confirmed",
		},
		BrandPrefix:         "green dog -",
		ClosedWeekday:       time.Sunday,
		TypedSourceKind:     "weekly_tracking",
		AvailabilityMarkers: []string{"avail", "uc openings", "same day uc"},
	}
}

// AggregationService computes the performance summaries served by the
// analytics endpoint.
type AggregationService struct {
	records    repositories.AppointmentRecordRepository
	cfg        AggregationConfig
	garbageSet map[string]struct{}
	revenueSet map[string]struct{}
}

// NewAggregationService creates an aggregation service. A zero-value config
// falls back to DefaultAggregationConfig.
func NewAggregationService(records repositories.AppointmentRecordRepository, cfg AggregationConfig) *AggregationService {
	def := DefaultAggregationConfig()
	if cfg.LocationAliases == nil {
		cfg.LocationAliases = def.LocationAliases
	}
	if cfg.RevenueLocations == nil {
		cfg.RevenueLocations = def.RevenueLocations
	}
	if cfg.GarbageLabels == nil {
		cfg.GarbageLabels = def.GarbageLabels
	}
	if cfg.BrandPrefix == "" {
		cfg.BrandPrefix = def.BrandPrefix
	}
	if cfg.TypedSourceKind == "" {
		cfg.TypedSourceKind = def.TypedSourceKind
	}
	if cfg.AvailabilityMarkers == nil {
		cfg.AvailabilityMarkers = def.AvailabilityMarkers
	}

	garbage := make(map[string]struct{}, len(cfg.GarbageLabels))
	for _, label := range cfg.GarbageLabels {
		garbage[strings.ToLower(label)] = struct{}{}
	}
	revenue := make(map[string]struct{}, len(cfg.RevenueLocations))
	for _, loc := range cfg.RevenueLocations {
		revenue[loc] = struct{}{}
	}

	return &AggregationService{
		records:    records,
		cfg:        cfg,
		garbageSet: garbage,
		revenueSet: revenue,
	}
}

// GetPerformance aggregates booked appointments in [start, end].
//
// Filters apply in order: availability rows, garbage labels, the closed
// weekday, then non-revenue locations. The surviving records feed every
// bucket; type and category buckets additionally require the typed source.
func (s *AggregationService) GetPerformance(ctx context.Context, start, end time.Time) (*entities.PerformanceSummary, error) {
	if end.Before(start) {
		return nil, apperrors.NewValidationError("end date before start date")
	}

	records, err := s.records.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load appointment records", err)
	}

	summary := &entities.PerformanceSummary{Start: start, End: end}

	typeMap := map[string]*entities.TypeSummary{}
	catMap := map[string]*entities.CategorySummary{}
	dowMap := map[time.Weekday]*entities.DaySummary{}
	weekMap := map[[2]int]*entities.WeekSummary{}
	monthMap := map[string]*entities.MonthSummary{}
	locMap := map[string]int{}

	kept := 0
	for _, r := range records {
		if s.isAvailability(r) {
			continue
		}
		if s.isGarbage(r.AppointmentType) {
			continue
		}
		if r.Date.Weekday() == s.cfg.ClosedWeekday {
			continue
		}
		location := s.normalizeLocation(r.Location)
		if _, ok := s.revenueSet[location]; !ok {
			continue
		}
		kept++

		summary.TotalAppointments += r.Count
		locMap[location] += r.Count

		wd := r.Date.Weekday()
		day, ok := dowMap[wd]
		if !ok {
			day = &entities.DaySummary{Weekday: wd.String(), ByLocation: map[string]int{}}
			dowMap[wd] = day
		}
		day.Total += r.Count
		day.ByLocation[location] += r.Count

		year, week := r.Date.ISOWeek()
		wk, ok := weekMap[[2]int{year, week}]
		if !ok {
			wk = &entities.WeekSummary{Year: year, Week: week, ByLocation: map[string]int{}}
			weekMap[[2]int{year, week}] = wk
		}
		wk.Total += r.Count
		wk.ByLocation[location] += r.Count

		monthKey := r.Date.Format("2006-01")
		mo, ok := monthMap[monthKey]
		if !ok {
			mo = &entities.MonthSummary{Month: monthKey, ByLocation: map[string]int{}}
			monthMap[monthKey] = mo
		}
		mo.Total += r.Count
		mo.ByLocation[location] += r.Count

		if r.SourceKind != s.cfg.TypedSourceKind {
			continue
		}

		ts, ok := typeMap[r.AppointmentType]
		if !ok {
			ts = &entities.TypeSummary{AppointmentType: r.AppointmentType, ByLocation: map[string]int{}}
			typeMap[r.AppointmentType] = ts
		}
		ts.Total += r.Count
		ts.ByLocation[location] += r.Count

		category := r.ServiceCategory
		if category == "" {
			category = entities.CategoryOther
		}
		cs, ok := catMap[category]
		if !ok {
			cs = &entities.CategorySummary{Category: category, ByLocation: map[string]int{}}
			catMap[category] = cs
		}
		cs.Total += r.Count
		cs.ByLocation[location] += r.Count
	}

	for _, ts := range typeMap {
		summary.ByType = append(summary.ByType, *ts)
	}
	sort.Slice(summary.ByType, func(i, j int) bool {
		if summary.ByType[i].Total != summary.ByType[j].Total {
			return summary.ByType[i].Total > summary.ByType[j].Total
		}
		return summary.ByType[i].AppointmentType < summary.ByType[j].AppointmentType
	})

	for _, cs := range catMap {
		summary.ByCategory = append(summary.ByCategory, *cs)
	}
	sort.Slice(summary.ByCategory, func(i, j int) bool {
		if summary.ByCategory[i].Total != summary.ByCategory[j].Total {
			return summary.ByCategory[i].Total > summary.ByCategory[j].Total
		}
		return summary.ByCategory[i].Category < summary.ByCategory[j].Category
	})

	for _, day := range dowMap {
		summary.ByDayOfWeek = append(summary.ByDayOfWeek, *day)
	}
	sort.Slice(summary.ByDayOfWeek, func(i, j int) bool {
		return weekdayIndex(summary.ByDayOfWeek[i].Weekday) < weekdayIndex(summary.ByDayOfWeek[j].Weekday)
	})

	for _, wk := range weekMap {
		summary.ByWeek = append(summary.ByWeek, *wk)
	}
	sort.Slice(summary.ByWeek, func(i, j int) bool {
		if summary.ByWeek[i].Year != summary.ByWeek[j].Year {
			return summary.ByWeek[i].Year < summary.ByWeek[j].Year
		}
		return summary.ByWeek[i].Week < summary.ByWeek[j].Week
	})

	for _, mo := range monthMap {
		summary.ByMonth = append(summary.ByMonth, *mo)
	}
	sort.Slice(summary.ByMonth, func(i, j int) bool {
		return summary.ByMonth[i].Month < summary.ByMonth[j].Month
	})

	for loc, total := range locMap {
		summary.ByLocation = append(summary.ByLocation, entities.LocationSummary{Location: loc, Total: total})
	}
	sort.Slice(summary.ByLocation, func(i, j int) bool {
		if summary.ByLocation[i].Total != summary.ByLocation[j].Total {
			return summary.ByLocation[i].Total > summary.ByLocation[j].Total
		}
		return summary.ByLocation[i].Location < summary.ByLocation[j].Location
	})

	log.Debug().
		Int("records", len(records)).
		Int("kept", kept).
		Time("start", start).
		Time("end", end).
		Msg("performance summary computed")

	return summary, nil
}

func (s *AggregationService) isAvailability(r *entities.AppointmentRecord) bool {
	if r.IsAvailability {
		return true
	}
	lower := strings.ToLower(r.AppointmentType)
	for _, marker := range s.cfg.AvailabilityMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func (s *AggregationService) isGarbage(label string) bool {
	lower := strings.ToLower(strings.TrimSpace(label))
	if _, ok := s.garbageSet[lower]; ok {
		return true
	}
	return strings.HasPrefix(lower, s.cfg.BrandPrefix)
}

func (s *AggregationService) normalizeLocation(raw string) string {
	if raw == "" {
		return "Other"
	}
	if canonical, ok := s.cfg.LocationAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return canonical
	}
	return raw
}

func weekdayIndex(name string) int {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == name {
			return int(d)
		}
	}
	return 7
}
