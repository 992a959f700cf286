package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/Clinicreportanalytics/internal/match"
)

func TestResolver_CleanName(t *testing.T) {
	resolver := match.NewResolver(match.Options{})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "city prefix followed by number is stripped",
			in:   "33 Sherman Oaks 12 Animal Hospital",
			want: "Animal Hospital",
		},
		{
			name: "city that is part of the name stays",
			in:   "Venice Animal Clinic",
			want: "Venice Animal Clinic",
		},
		{
			name: "leading numeral goes",
			in:   "101 Happy Pet Clinic",
			want: "Happy Pet Clinic",
		},
		{
			name: "already clean",
			in:   "Sunset Animal Hospital",
			want: "Sunset Animal Hospital",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, resolver.CleanName(tc.in))
		})
	}
}

func TestResolver_Score(t *testing.T) {
	resolver := match.NewResolver(match.Options{})

	t.Run("identical names ignoring case", func(t *testing.T) {
		assert.Equal(t, 1.0, resolver.Score("Sunset Animal Hospital", "sunset animal hospital"))
	})

	t.Run("containment", func(t *testing.T) {
		assert.Equal(t, 0.9, resolver.Score("Sunset Animal Hospital", "Sunset Animal"))
	})

	t.Run("abbreviations normalise to the same words", func(t *testing.T) {
		score := resolver.Score("Sunset Veterinary Hosp", "Sunset Vet Hospital")
		assert.Equal(t, 1.0, score)
	})

	t.Run("unrelated names", func(t *testing.T) {
		assert.Equal(t, 0.0, resolver.Score("Sunset Animal Hospital", "Valley Pet Clinic"))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, 0.0, resolver.Score("", "Valley Pet Clinic"))
	})
}

func TestResolver_Resolve(t *testing.T) {
	resolver := match.NewResolver(match.Options{})

	candidates := []match.Candidate{
		{ID: "p1", Name: "Sunset Animal Hospital"},
		{ID: "p2", Name: "Valley Pet Clinic"},
	}

	t.Run("best candidate wins", func(t *testing.T) {
		m, ok := resolver.Resolve("Sunset Veterinary Hosp", candidates)
		require.True(t, ok)
		assert.Equal(t, "p1", m.ID)
		assert.Equal(t, "Sunset Animal Hospital", m.Name)
	})

	t.Run("nothing above the threshold", func(t *testing.T) {
		_, ok := resolver.Resolve("Harbor Exotic Bird Rescue", candidates)
		assert.False(t, ok)
	})

	t.Run("threshold is configurable", func(t *testing.T) {
		strict := match.NewResolver(match.Options{Threshold: 0.95})
		_, ok := strict.Resolve("Sunset Animal", candidates)
		assert.False(t, ok)

		m, ok := strict.Resolve("Sunset Animal Hospital", candidates)
		require.True(t, ok)
		assert.Equal(t, 1.0, m.Score)
	})
}
