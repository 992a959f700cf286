package reports

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ReferralEntry is the per-clinic aggregate of one referral report.
type ReferralEntry struct {
	ClinicName string  `json:"clinic_name"`
	Visits     int     `json:"visits"`
	Revenue    float64 `json:"revenue"`
}

// ReferralParseResult carries the aggregated entries plus scan statistics.
type ReferralParseResult struct {
	Entries        []ReferralEntry `json:"entries"`
	SectionHeaders int             `json:"section_headers"`
	Appointments   int             `json:"appointments"`
	RangeStart     *time.Time      `json:"range_start,omitempty"`
	RangeEnd       *time.Time      `json:"range_end,omitempty"`
}

// ReferralConfig describes the markers the referral report text carries.
type ReferralConfig struct {
	// BrandMarker is the lowercased destination-clinic marker that precedes
	// every appointment line ("green dog").
	BrandMarker string

	// BrandLocation is the lowercased location that follows the brand
	// marker; text extraction sometimes splits it across lines.
	BrandLocation string

	// ExtraClinicMarkers extends the structural clinic-name validity rules
	// with known partner names that carry none of the usual words.
	ExtraClinicMarkers []string

	// CleanName normalises a raw clinic name before aggregation.
	// Defaults to whitespace trimming.
	CleanName func(string) string
}

// DefaultReferralConfig returns the markers of the clinic's referral exports.
func DefaultReferralConfig() ReferralConfig {
	return ReferralConfig{
		BrandMarker:   "green dog",
		BrandLocation: "sherman oaks",
		ExtraClinicMarkers: []string{
			"southpaw", "modern animal", "partyanimals", "larchmont",
			"access specialty",
		},
	}
}

var (
	referralDatePattern   = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	referralAmountPattern = regexp.MustCompile(`^\d+(?:\.\d{1,2})?$`)
	referralTimePattern   = regexp.MustCompile(`^(?i)\d{1,2}:\d{2}(am|pm)?$`)
	personNamePattern     = regexp.MustCompile(`^[A-Za-z]+,\s*[A-Za-z]*$`)
	rangeStartPattern     = regexp.MustCompile(`START\s+(\d{2}-\d{2}-\d{4})`)
	rangeEndPattern       = regexp.MustCompile(`END\s+(\d{2}-\d{2}-\d{4})`)
	vcaPattern            = regexp.MustCompile(`\bvca\b`)
)

// ReferralParser parses text extracted from referral revenue reports.
//
// The text is a flat stream of short lines. Clinic sections open with the
// clinic's name lines followed by a total amount and a date; individual
// appointments carry the brand marker, the brand location, and an amount.
// The parse runs in two phases: first find the section headers, then
// attribute every appointment to the nearest preceding header.
type ReferralParser struct {
	cfg ReferralConfig
}

// NewReferralParser creates a parser, filling unset config fields from
// DefaultReferralConfig.
func NewReferralParser(cfg ReferralConfig) *ReferralParser {
	def := DefaultReferralConfig()
	if cfg.BrandMarker == "" {
		cfg.BrandMarker = def.BrandMarker
	}
	if cfg.BrandLocation == "" {
		cfg.BrandLocation = def.BrandLocation
	}
	if cfg.ExtraClinicMarkers == nil {
		cfg.ExtraClinicMarkers = def.ExtraClinicMarkers
	}
	if cfg.CleanName == nil {
		cfg.CleanName = strings.TrimSpace
	}
	return &ReferralParser{cfg: cfg}
}

type clinicSection struct {
	name       string
	headerLine int
}

// Parse scans one referral report text and aggregates visits and revenue
// per referring clinic. Entries after the "Unknown" section are dropped.
func (p *ReferralParser) Parse(text string) *ReferralParseResult {
	result := &ReferralParseResult{}

	if m := rangeStartPattern.FindStringSubmatch(text); m != nil {
		if t, err := time.Parse("01-02-2006", m[1]); err == nil {
			result.RangeStart = &t
		}
	}
	if m := rangeEndPattern.FindStringSubmatch(text); m != nil {
		if t, err := time.Parse("01-02-2006", m[1]); err == nil {
			result.RangeEnd = &t
		}
	}

	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(l); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	headers, unknownLine := p.scanSectionHeaders(lines)
	result.SectionHeaders = len(headers)

	type appointment struct {
		clinic string
		amount float64
	}
	var appointments []appointment

	// Phase 2: every appointment is [brand marker] [brand location] [amount],
	// attributed to the closest header above it.
	for i := 0; i < len(lines); i++ {
		if !strings.Contains(strings.ToLower(lines[i]), p.cfg.BrandMarker) {
			continue
		}
		amountLine := p.matchLocationThenAmount(lines, i+1)
		if amountLine == -1 {
			continue
		}
		if unknownLine != -1 && amountLine >= unknownLine {
			continue
		}

		clinic := ""
		for s := len(headers) - 1; s >= 0; s-- {
			if headers[s].headerLine < amountLine {
				clinic = headers[s].name
				break
			}
		}
		if clinic == "" {
			continue
		}

		amount, err := strconv.ParseFloat(lines[amountLine], 64)
		if err != nil {
			continue
		}
		appointments = append(appointments, appointment{clinic: clinic, amount: amount})
	}
	result.Appointments = len(appointments)

	// Aggregate per clinic, preserving first-seen order
	totals := map[string]*ReferralEntry{}
	var order []string
	for _, appt := range appointments {
		entry, ok := totals[appt.clinic]
		if !ok {
			entry = &ReferralEntry{ClinicName: appt.clinic}
			totals[appt.clinic] = entry
			order = append(order, appt.clinic)
		}
		entry.Visits++
		entry.Revenue += appt.amount
	}
	for _, name := range order {
		entry := totals[name]
		entry.Revenue = math.Round(entry.Revenue*100) / 100
		result.Entries = append(result.Entries, *entry)
	}

	return result
}

// scanSectionHeaders finds [clinic name lines] [amount] [date] groups that
// carry no brand marker. It also notes where the trailing "Unknown" section
// starts, so appointments past it can be dropped.
func (p *ReferralParser) scanSectionHeaders(lines []string) ([]clinicSection, int) {
	var headers []clinicSection
	unknownLine := -1

	for i := 0; i < len(lines)-1; i++ {
		if !referralAmountPattern.MatchString(lines[i]) || !referralDatePattern.MatchString(lines[i+1]) {
			continue
		}

		hasBrand := false
		var clinicLines []string
		for j := i - 1; j >= 0 && j >= i-8; j-- {
			line := lines[j]
			lower := strings.ToLower(line)

			if strings.Contains(lower, p.cfg.BrandMarker) {
				hasBrand = true
				break
			}
			if p.isBrandLocationFragment(lower) {
				continue
			}
			if referralAmountPattern.MatchString(line) || referralDatePattern.MatchString(line) || referralTimePattern.MatchString(line) {
				break
			}
			if isColumnHeading(lower) || strings.Contains(lower, "printed") || strings.Contains(lower, "sheet") {
				continue
			}
			if lower == "unknown vet" {
				continue
			}
			if personNamePattern.MatchString(line) {
				continue
			}
			clinicLines = append([]string{line}, clinicLines...)
		}

		if hasBrand || len(clinicLines) == 0 {
			continue
		}

		name := strings.Join(clinicLines, " ")
		lower := strings.ToLower(name)
		if lower == "unknown" || strings.Contains(lower, "unknown clinic") {
			unknownLine = i
		} else if p.isValidClinicName(lower) {
			headers = append(headers, clinicSection{
				name:       p.cfg.CleanName(name),
				headerLine: i,
			})
		}
	}

	return headers, unknownLine
}

// matchLocationThenAmount consumes the brand-location words starting at
// index i, either whole on one line or split one word per line, and returns
// the index of the amount line that follows, or -1.
func (p *ReferralParser) matchLocationThenAmount(lines []string, i int) int {
	if i < len(lines)-1 &&
		strings.ToLower(lines[i]) == p.cfg.BrandLocation &&
		referralAmountPattern.MatchString(lines[i+1]) {
		return i + 1
	}

	words := strings.Fields(p.cfg.BrandLocation)
	if len(words) < 2 || i+len(words) >= len(lines) {
		return -1
	}
	for w, word := range words {
		if strings.ToLower(lines[i+w]) != word {
			return -1
		}
	}
	if referralAmountPattern.MatchString(lines[i+len(words)]) {
		return i + len(words)
	}
	return -1
}

func (p *ReferralParser) isBrandLocationFragment(lower string) bool {
	if lower == p.cfg.BrandLocation {
		return true
	}
	words := strings.Fields(p.cfg.BrandLocation)
	if len(words) < 2 {
		return false
	}
	// Text extraction can emit the trailing word alone ("oaks")
	return lower == words[len(words)-1]
}

func isColumnHeading(lower string) bool {
	switch lower {
	case "amount", "division", "client", "referring vet", "date/time":
		return true
	}
	return false
}

// isValidClinicName keeps only names that plausibly belong to a veterinary
// practice; the report's lookback capture otherwise picks up stray cells.
func (p *ReferralParser) isValidClinicName(lower string) bool {
	for _, marker := range p.cfg.ExtraClinicMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	switch {
	case strings.Contains(lower, "veterinary"),
		strings.Contains(lower, "veterinarian"),
		strings.Contains(lower, " vet "),
		strings.Contains(lower, " vets"),
		strings.HasSuffix(lower, " vet"),
		strings.Contains(lower, "animal hospital"),
		strings.Contains(lower, "animal clinic"),
		strings.Contains(lower, "pet hospital"),
		strings.Contains(lower, "pet clinic"),
		strings.Contains(lower, "pet medical"),
		strings.Contains(lower, "pet care"),
		strings.Contains(lower, "pet doctors"),
		strings.Contains(lower, "dog and cat"):
		return true
	}
	if vcaPattern.MatchString(lower) {
		return true
	}
	if strings.Contains(lower, "hospital") &&
		(strings.Contains(lower, "animal") || strings.Contains(lower, "cat") || strings.Contains(lower, "dog")) {
		return true
	}
	if strings.Contains(lower, "clinic") &&
		(strings.Contains(lower, "animal") || strings.Contains(lower, "pet")) {
		return true
	}
	if strings.Contains(lower, "center") &&
		(strings.Contains(lower, "animal") || strings.Contains(lower, "medical") || strings.Contains(lower, "veterinary")) {
		return true
	}
	return false
}
