package reports

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
)

// ReportLayout describes the shape of the weekly tracking export: which
// locations appear (in column order), how day blocks are labelled, and the
// markers that distinguish totals and availability rows.
type ReportLayout struct {
	LocationCodes       []string
	LocationNames       map[string]string
	Lexicon             SectionLexicon
	AvailabilityMarkers []string
	TotalsMarker        string
	PivotYear           int
	SourceKind          string
}

// DefaultReportLayout returns the layout of the clinic's current exports.
func DefaultReportLayout() ReportLayout {
	return ReportLayout{
		LocationCodes: []string{"SO", "VN", "VE"},
		LocationNames: map[string]string{
			"SO": "Sherman Oaks",
			"VN": "Van Nuys",
			"VE": "Venice",
		},
		Lexicon:             DefaultSectionLexicon(),
		AvailabilityMarkers: []string{"avail", "uc opening", "same day uc"},
		TotalsMarker:        "totals booked",
		PivotYear:           2026,
		SourceKind:          "weekly_tracking",
	}
}

// WeekDay is one day column block in the report header.
type WeekDay struct {
	DayName   string
	Date      time.Time
	DayOfWeek time.Weekday
}

// DailyCount holds the per-location counts of one row for one day.
type DailyCount struct {
	Date      time.Time
	DayOfWeek time.Weekday
	Counts    map[string]int
}

// SectionRow is one appointment-type line within a section.
type SectionRow struct {
	AppointmentType string
	IsAvailability  bool
	DailyCounts     []DailyCount
	WeeklyTotals    map[string]int
}

// ReportSection groups the rows under one department header.
type ReportSection struct {
	Category    string
	ServiceCode string
	Department  string
	Rows        []SectionRow
	TotalBooked map[string]int
}

// Diagnostics carries what the parser saw, for error reporting and for the
// upload response.
type Diagnostics struct {
	LineCount        int      `json:"line_count"`
	DayCount         int      `json:"day_count"`
	SectionCount     int      `json:"section_count"`
	ShortRows        int      `json:"short_rows"`
	UnattachedLabels []string `json:"unattached_labels,omitempty"`
	FirstLines       []string `json:"first_lines,omitempty"`
}

// ParsedWeeklyReport is the full parse tree of one weekly tracking report.
type ParsedWeeklyReport struct {
	WeekTitle   string
	WeekStart   time.Time
	WeekEnd     time.Time
	EditDate    string
	Days        []WeekDay
	Sections    []ReportSection
	Diagnostics Diagnostics
}

// ParseError reports an unparseable document together with diagnostics.
type ParseError struct {
	Message     string
	Diagnostics Diagnostics
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (lines=%d days=%d sections=%d)",
		e.Message, e.Diagnostics.LineCount, e.Diagnostics.DayCount, e.Diagnostics.SectionCount)
}

var (
	dateRangePattern = regexp.MustCompile(`\(\s*(\d+/\d+/\d+)\s*-\s*(\d+/\d+/\d+)\s*\)`)
	editDatePattern  = regexp.MustCompile(`Edit:\s*(.+?),`)
	dayHeaderPattern = regexp.MustCompile(`(?i)(Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)\s+(\d+/\d+)`)
)

// WeeklyParser parses the clinic's matrix-format weekly tracking reports.
// One parser is safe for concurrent use; all state lives per call.
type WeeklyParser struct {
	layout ReportLayout
}

// NewWeeklyParser creates a parser for the given layout. Zero-value layout
// fields fall back to the default layout.
func NewWeeklyParser(layout ReportLayout) *WeeklyParser {
	def := DefaultReportLayout()
	if len(layout.LocationCodes) == 0 {
		layout.LocationCodes = def.LocationCodes
	}
	if layout.LocationNames == nil {
		layout.LocationNames = def.LocationNames
	}
	if layout.Lexicon == nil {
		layout.Lexicon = def.Lexicon
	}
	if len(layout.AvailabilityMarkers) == 0 {
		layout.AvailabilityMarkers = def.AvailabilityMarkers
	}
	if layout.TotalsMarker == "" {
		layout.TotalsMarker = def.TotalsMarker
	}
	if layout.PivotYear == 0 {
		layout.PivotYear = def.PivotYear
	}
	if layout.SourceKind == "" {
		layout.SourceKind = def.SourceKind
	}
	return &WeeklyParser{layout: layout}
}

// Layout returns the layout the parser was built with.
func (p *WeeklyParser) Layout() ReportLayout {
	return p.layout
}

// Parse parses one weekly tracking report. It returns a *ParseError when the
// document yields neither day headers nor a week date range.
func (p *WeeklyParser) Parse(text string) (*ParsedWeeklyReport, error) {
	lines := normalizeLines(text)

	report := &ParsedWeeklyReport{}
	report.Diagnostics.LineCount = len(lines)
	for i := 0; i < len(lines) && i < 3; i++ {
		report.Diagnostics.FirstLines = append(report.Diagnostics.FirstLines, lines[i])
	}

	// Row 0: title with the week range
	var titleLine string
	if len(lines) > 0 {
		titleLine = lines[0]
	}
	report.WeekTitle = strings.TrimSpace(strings.Trim(titleLine, ","))

	if m := dateRangePattern.FindStringSubmatch(report.WeekTitle); m != nil {
		if start, ok := ParseShortDate(m[1], p.layout.PivotYear); ok {
			report.WeekStart = start
		}
		if end, ok := ParseShortDate(m[2], p.layout.PivotYear); ok {
			report.WeekEnd = end
		}
	}

	// Row 1: day headers and edit date
	var headerLine string
	if len(lines) > 1 {
		headerLine = lines[1]
	}
	if m := editDatePattern.FindStringSubmatch(headerLine); m != nil {
		report.EditDate = strings.TrimSpace(m[1])
	}

	report.Days = p.scanDays(headerLine)
	if len(report.Days) == 0 {
		// Some exports shift the header; scan the first few lines
		for i := 0; i < len(lines) && i < 5; i++ {
			report.Days = p.scanDays(lines[i])
			if len(report.Days) > 0 {
				break
			}
		}
	}
	if len(report.Days) == 0 && !report.WeekStart.IsZero() && !report.WeekEnd.IsZero() {
		report.Days = synthesizeDays(report.WeekStart, report.WeekEnd)
	}
	report.Diagnostics.DayCount = len(report.Days)

	p.parseSections(lines, report)
	report.Diagnostics.SectionCount = len(report.Sections)

	if len(report.Days) == 0 {
		return nil, &ParseError{
			Message:     "no day headers and no week date range found",
			Diagnostics: report.Diagnostics,
		}
	}

	return report, nil
}

func (p *WeeklyParser) scanDays(line string) []WeekDay {
	var days []WeekDay
	for _, m := range dayHeaderPattern.FindAllStringSubmatch(line, -1) {
		date, ok := ParseShortDate(m[2], p.layout.PivotYear)
		if !ok {
			continue
		}
		wd, _ := WeekdayFromName(m[1])
		days = append(days, WeekDay{DayName: m[1], Date: date, DayOfWeek: wd})
	}
	return days
}

func synthesizeDays(start, end time.Time) []WeekDay {
	var days []WeekDay
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, WeekDay{
			DayName:   d.Weekday().String(),
			Date:      d,
			DayOfWeek: d.Weekday(),
		})
	}
	return days
}

func (p *WeeklyParser) parseSections(lines []string, report *ParsedWeeklyReport) {
	locs := len(p.layout.LocationCodes)
	expectedWidth := 1 + len(report.Days)*locs

	var current *ReportSection
	for i := 3; i < len(lines); i++ {
		cells := splitCells(lines[i])
		if len(cells) == 0 {
			continue
		}

		firstCell := cells.Cell(0)
		secondCell := cells.Cell(1)

		// Section header: label in column 1 with empty column 0, or label in
		// column 0 with every other column empty.
		var info ServiceInfo
		var matched bool
		var label string
		if firstCell == "" && secondCell != "" {
			info, matched = p.layout.Lexicon.Match(secondCell)
			label = secondCell
		}
		if !matched && firstCell != "" && onlyFirstCellSet(cells) {
			info, matched = p.layout.Lexicon.Match(firstCell)
			label = firstCell
		}

		if matched {
			report.Sections = append(report.Sections, ReportSection{
				Category:    label,
				ServiceCode: info.Code,
				Department:  info.Department,
				TotalBooked: map[string]int{},
			})
			current = &report.Sections[len(report.Sections)-1]
			continue
		}

		if firstCell == "" && secondCell == "" {
			continue
		}
		if firstCell == "" && secondCell != "" && restEmpty(cells, 2) {
			// Looks like a section header but the lexicon has no entry
			report.Diagnostics.UnattachedLabels = append(report.Diagnostics.UnattachedLabels, secondCell)
			continue
		}
		if current == nil {
			continue
		}

		if len(report.Days) > 0 && firstCell != "" && len(cells) < expectedWidth {
			report.Diagnostics.ShortRows++
		}

		lower := strings.ToLower(firstCell)
		isTotals := strings.HasPrefix(lower, p.layout.TotalsMarker)
		isAvail := p.isAvailabilityLabel(lower)

		dailyCounts := p.parseDailyCounts(cells, report.Days)
		weeklyTotals := p.parseWeeklyTotals(cells, len(report.Days))

		if isTotals {
			current.TotalBooked = weeklyTotals
		} else if firstCell != "" {
			current.Rows = append(current.Rows, SectionRow{
				AppointmentType: firstCell,
				IsAvailability:  isAvail,
				DailyCounts:     dailyCounts,
				WeeklyTotals:    weeklyTotals,
			})
		}
	}
}

func (p *WeeklyParser) isAvailabilityLabel(lower string) bool {
	for _, marker := range p.layout.AvailabilityMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// parseDailyCounts reads the fixed-offset day blocks: one sub-column per
// location per day, starting at column 1.
func (p *WeeklyParser) parseDailyCounts(cells Row, days []WeekDay) []DailyCount {
	locs := len(p.layout.LocationCodes)
	counts := make([]DailyCount, 0, len(days))
	for d, day := range days {
		base := 1 + d*locs
		dc := DailyCount{
			Date:      day.Date,
			DayOfWeek: day.DayOfWeek,
			Counts:    make(map[string]int, locs),
		}
		for l, code := range p.layout.LocationCodes {
			dc.Counts[code] = cells.Int(base + l)
		}
		counts = append(counts, dc)
	}
	return counts
}

// parseWeeklyTotals reads the totals block that follows the last day.
func (p *WeeklyParser) parseWeeklyTotals(cells Row, dayCount int) map[string]int {
	locs := len(p.layout.LocationCodes)
	base := 1 + dayCount*locs
	totals := make(map[string]int, locs)
	for l, code := range p.layout.LocationCodes {
		totals[code] = cells.Int(base + l)
	}
	return totals
}

func onlyFirstCellSet(cells Row) bool {
	return restEmpty(cells, 1)
}

func restEmpty(cells Row, from int) bool {
	for i := from; i < len(cells); i++ {
		if cells.Cell(i) != "" {
			return false
		}
	}
	return true
}

// Flatten turns the parse tree into canonical records: one per
// (section, row, day, location) with a positive count. Availability rows are
// emitted flagged rather than dropped; sections that never resolved carry
// CategoryOther with the raw label as department.
func (p *WeeklyParser) Flatten(report *ParsedWeeklyReport, batchID string) []*entities.AppointmentRecord {
	var records []*entities.AppointmentRecord

	for _, section := range report.Sections {
		code := section.ServiceCode
		department := section.Department
		if code == "" {
			code = entities.CategoryOther
			department = section.Category
		}

		for _, row := range section.Rows {
			for _, daily := range row.DailyCounts {
				for _, loc := range p.layout.LocationCodes {
					count := daily.Counts[loc]
					if count <= 0 {
						continue
					}
					name := p.layout.LocationNames[loc]
					if name == "" {
						name = loc
					}
					records = append(records, &entities.AppointmentRecord{
						Date:            daily.Date,
						AppointmentType: row.AppointmentType,
						Department:      department,
						ServiceCategory: code,
						Location:        name,
						Count:           count,
						IsAvailability:  row.IsAvailability,
						BatchID:         batchID,
						SourceKind:      p.layout.SourceKind,
					})
				}
			}
		}
	}

	return records
}
