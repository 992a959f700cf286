package reports_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/Clinicreportanalytics/internal/reports"
)

const sampleReferralText = `Referral Revenue Report
START 01-01-2026 END 01-31-2026
12-31-2025
Sunset Animal Hospital
450.00
01-05-2026
Green Dog
Sherman Oaks
150.00
Green Dog
Sherman
Oaks
300.00
Valley Pet Clinic
200
01-06-2026
Green Dog
Sherman Oaks
200.00
Unknown
100.00
01-07-2026
Green Dog
Sherman Oaks
75.00
`

func TestReferralParser_Parse(t *testing.T) {
	parser := reports.NewReferralParser(reports.ReferralConfig{})

	result := parser.Parse(sampleReferralText)

	t.Run("report date range", func(t *testing.T) {
		require.NotNil(t, result.RangeStart)
		require.NotNil(t, result.RangeEnd)
		assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *result.RangeStart)
		assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), *result.RangeEnd)
	})

	t.Run("section headers found by amount-then-date groups", func(t *testing.T) {
		assert.Equal(t, 2, result.SectionHeaders)
	})

	t.Run("appointments attributed to the nearest preceding clinic", func(t *testing.T) {
		// The brand-location line split across two lines still counts, and the
		// appointment after the Unknown section is dropped.
		assert.Equal(t, 3, result.Appointments)

		require.Len(t, result.Entries, 2)
		assert.Equal(t, reports.ReferralEntry{
			ClinicName: "Sunset Animal Hospital",
			Visits:     2,
			Revenue:    450.00,
		}, result.Entries[0])
		assert.Equal(t, reports.ReferralEntry{
			ClinicName: "Valley Pet Clinic",
			Visits:     1,
			Revenue:    200.00,
		}, result.Entries[1])
	})
}

func TestReferralParser_EmptyText(t *testing.T) {
	parser := reports.NewReferralParser(reports.ReferralConfig{})

	result := parser.Parse("")

	assert.Zero(t, result.SectionHeaders)
	assert.Zero(t, result.Appointments)
	assert.Empty(t, result.Entries)
	assert.Nil(t, result.RangeStart)
}

func TestReferralParser_RejectsNonClinicHeaders(t *testing.T) {
	parser := reports.NewReferralParser(reports.ReferralConfig{})

	// "Totally Unrelated Business" forms an amount-then-date group but never
	// passes the clinic-name validity rules.
	text := `Totally Unrelated Business
100.00
01-05-2026
Green Dog
Sherman Oaks
50.00
`
	result := parser.Parse(text)

	assert.Equal(t, 0, result.SectionHeaders)
	assert.Empty(t, result.Entries)
}

func TestReferralParser_ExtraClinicMarkers(t *testing.T) {
	cfg := reports.ReferralConfig{
		ExtraClinicMarkers: []string{"houndstooth"},
	}
	parser := reports.NewReferralParser(cfg)

	text := `Houndstooth LA
100.00
01-05-2026
Green Dog
Sherman Oaks
50.00
`
	result := parser.Parse(text)

	assert.Equal(t, 1, result.SectionHeaders)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "Houndstooth LA", result.Entries[0].ClinicName)
	assert.Equal(t, 50.00, result.Entries[0].Revenue)
}
