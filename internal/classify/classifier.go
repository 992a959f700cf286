package classify

import (
	"sort"
	"strings"

	"github.com/zatekoja/Clinicreportanalytics/internal/domain/entities"
)

// Classifier resolves raw appointment-type labels to service mappings.
// Resolution runs in stages: exact label, case-insensitive label, two-way
// substring against known labels, then keyword rules. Safe for concurrent
// use once constructed.
type Classifier struct {
	taxonomy     Taxonomy
	sortedLabels []string
	lowerIndex   map[string]string
}

// NewClassifier builds a classifier over the given taxonomy; a nil taxonomy
// uses DefaultTaxonomy.
func NewClassifier(taxonomy Taxonomy) *Classifier {
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy()
	}

	labels := make([]string, 0, len(taxonomy))
	lower := make(map[string]string, len(taxonomy))
	for label := range taxonomy {
		labels = append(labels, label)
		lower[strings.ToLower(label)] = label
	}
	// Longest first so substring matching prefers the most specific label
	sort.Slice(labels, func(i, j int) bool {
		if len(labels[i]) != len(labels[j]) {
			return len(labels[i]) > len(labels[j])
		}
		return labels[i] < labels[j]
	})

	return &Classifier{taxonomy: taxonomy, sortedLabels: labels, lowerIndex: lower}
}

// Taxonomy returns the classifier's taxonomy.
func (c *Classifier) Taxonomy() Taxonomy {
	return c.taxonomy
}

// Classify resolves a label. The second return value reports whether any
// stage matched; callers map misses to CategoryOther.
func (c *Classifier) Classify(label string) (entities.ServiceMapping, bool) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return entities.ServiceMapping{}, false
	}

	if mapping, ok := c.taxonomy[trimmed]; ok {
		return mapping, true
	}

	lower := strings.ToLower(trimmed)
	if exact, ok := c.lowerIndex[lower]; ok {
		return c.taxonomy[exact], true
	}

	for _, known := range c.sortedLabels {
		kLower := strings.ToLower(known)
		if strings.Contains(lower, kLower) || strings.Contains(kLower, lower) {
			return c.taxonomy[known], true
		}
	}

	return c.classifyByKeyword(lower)
}

// classifyByKeyword is the last-resort stage for labels the taxonomy has
// never seen. Rules run in priority order; the first hit wins.
func (c *Classifier) classifyByKeyword(lower string) (entities.ServiceMapping, bool) {
	has := func(s string) bool { return strings.Contains(lower, s) }
	startsWith := func(s string) bool { return strings.HasPrefix(lower, s) }

	switch {
	case has("dental"), has("neat"), has("nad"), has("oral exam"), has("gdd"):
		return entities.ServiceMapping{
			Category:        entities.CategoryDental,
			Department:      "Dentistry",
			RequiresDVM:     has("new") || has("nad"),
			DurationMinutes: 30,
		}, true
	case has("surg"):
		return entities.ServiceMapping{Category: entities.CategorySurgery, Department: "Surgery", RequiresDVM: true, DurationMinutes: 120}, true
	case has("exotic"), startsWith("ex "), startsWith("ex-"):
		return entities.ServiceMapping{Category: entities.CategoryExotic, Department: "Exotics", RequiresDVM: true, DurationMinutes: 30}, true
	case has("internal"), startsWith("im "), startsWith("im-"):
		return entities.ServiceMapping{Category: entities.CategoryInternalMed, Department: "Internal Medicine", RequiresDVM: true, DurationMinutes: 45}, true
	case has("cardio"), has("echo"):
		return entities.ServiceMapping{Category: entities.CategoryCardiology, Department: "Cardiology", RequiresDVM: true, DurationMinutes: 60}, true
	case has("wellness"), has("veterinary exam"), startsWith("ve "):
		return entities.ServiceMapping{Category: entities.CategoryWellness, Department: "Wellness", RequiresDVM: true, DurationMinutes: 30}, true
	case has("urgent"), has("uc "):
		return entities.ServiceMapping{Category: entities.CategoryWellness, Department: "Wellness", RequiresDVM: true, DurationMinutes: 30}, true
	case has("tech"), has("bloodwork"), has("add-on"):
		return entities.ServiceMapping{Category: entities.CategoryAddon, Department: "Add-on Services", RequiresDVM: false, DurationMinutes: 15}, true
	case has("imaging"), has("x-ray"), has("radiograph"):
		return entities.ServiceMapping{Category: entities.CategoryImaging, Department: "Imaging", RequiresDVM: true, DurationMinutes: 30}, true
	case has("mp "), has("mpmv"), has("mobile"), has("pickup"), has("shipment"):
		return entities.ServiceMapping{Category: entities.CategoryMobile, Department: "Mobile/MPMV", RequiresDVM: false, DurationMinutes: 15}, true
	case has("advanced"), has(" ap"), lower == "ap":
		return entities.ServiceMapping{Category: entities.CategoryAP, Department: "Advanced Procedures", RequiresDVM: true, DurationMinutes: 90}, true
	}

	return entities.ServiceMapping{}, false
}
