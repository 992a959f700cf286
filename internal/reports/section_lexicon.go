package reports

import (
	"sort"
	"strings"

	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
)

// ServiceInfo identifies the service a report section belongs to.
type ServiceInfo struct {
	Code       string
	Department string
}

// SectionLexicon maps lowercased section-header labels to their service.
// Labels in the source reports are hand-typed, so Match tolerates
// punctuation, hyphen/space swaps, and partial labels.
type SectionLexicon map[string]ServiceInfo

// DefaultSectionLexicon returns the lexicon for the clinic's department
// headers as they appear in current exports.
func DefaultSectionLexicon() SectionLexicon {
	return SectionLexicon{
		"dentistry":           {entities.CategoryDental, "Dentistry"},
		"dental":              {entities.CategoryDental, "Dentistry"},
		"neat":                {entities.CategoryDental, "Dentistry"},
		"advanced procedures": {entities.CategoryAP, "Advanced Procedures"},
		"advanced procedure":  {entities.CategoryAP, "Advanced Procedures"},
		"ap":                  {entities.CategoryAP, "Advanced Procedures"},
		"wellness":            {entities.CategoryWellness, "Wellness"},
		"veterinary exams":    {entities.CategoryWellness, "Wellness"},
		"vet exams":           {entities.CategoryWellness, "Wellness"},
		"add-on services":     {entities.CategoryAddon, "Add-on Services"},
		"add on services":     {entities.CategoryAddon, "Add-on Services"},
		"addon services":      {entities.CategoryAddon, "Add-on Services"},
		"add-ons":             {entities.CategoryAddon, "Add-on Services"},
		"imaging":             {entities.CategoryImaging, "Imaging"},
		"radiology":           {entities.CategoryImaging, "Imaging"},
		"surgery":             {entities.CategorySurgery, "Surgery"},
		"exotics":             {entities.CategoryExotic, "Exotics"},
		"exotic":              {entities.CategoryExotic, "Exotics"},
		"internal medicine":   {entities.CategoryInternalMed, "Internal Medicine"},
		"im":                  {entities.CategoryInternalMed, "Internal Medicine"},
		"cardiology":          {entities.CategoryCardiology, "Cardiology"},
		"cardio":              {entities.CategoryCardiology, "Cardiology"},
		"dog ppl":             {entities.CategoryOther, "DOG PPL"},
		"dogppl":              {entities.CategoryOther, "DOG PPL"},
	}
}

// Match resolves a raw section label against the lexicon. Stages: exact,
// hyphens swapped for spaces (and back), prefix either way, then substring
// either way for keys of at least three characters.
func (lx SectionLexicon) Match(raw string) (ServiceInfo, bool) {
	cleaned := cleanLabel(raw)
	if cleaned == "" {
		return ServiceInfo{}, false
	}

	if info, ok := lx[cleaned]; ok {
		return info, true
	}

	noHyphens := strings.ReplaceAll(cleaned, "-", " ")
	if info, ok := lx[noHyphens]; ok {
		return info, true
	}

	withHyphens := strings.Join(strings.Fields(cleaned), "-")
	if info, ok := lx[withHyphens]; ok {
		return info, true
	}

	// Longest keys first so "advanced procedures" wins over "ap"
	keys := lx.sortedKeys()

	for _, key := range keys {
		if strings.HasPrefix(cleaned, key) || strings.HasPrefix(key, cleaned) {
			return lx[key], true
		}
	}

	for _, key := range keys {
		if len(key) >= 3 && (strings.Contains(cleaned, key) || strings.Contains(key, cleaned)) {
			return lx[key], true
		}
	}

	return ServiceInfo{}, false
}

func (lx SectionLexicon) sortedKeys() []string {
	keys := make([]string, 0, len(lx))
	for key := range lx {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

func cleanLabel(raw string) string {
	var b strings.Builder
	for _, ch := range strings.ToLower(raw) {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9', ch == ' ', ch == '-':
			b.WriteRune(ch)
		}
	}
	return strings.TrimSpace(b.String())
}
