// Package match resolves free-text clinic names against the partner
// registry using word-overlap scoring. Names coming out of the referral
// reports are noisy: stray numerals, city prefixes, and abbreviated words
// like "Hosp" or "Ctr" are all common.
package match

import (
	"strings"
)

// Candidate is one registry entry a name can resolve to.
type Candidate struct {
	ID   string
	Name string
}

// Match is a successful resolution.
type Match struct {
	ID    string
	Name  string
	Score float64
}

// Options tunes the resolver. Zero values fall back to DefaultOptions.
type Options struct {
	// Threshold is the minimum score for a match; below it Resolve reports
	// no match rather than guessing.
	Threshold float64

	// StopWords are dropped before word comparison.
	StopWords []string

	// Synonyms maps abbreviated words onto their canonical form.
	Synonyms map[string]string

	// PrefixSynonyms maps any word starting with the key onto the value
	// ("veterinarian", "veterinary" -> "vet").
	PrefixSynonyms map[string]string

	// CityLexicon lists city names that may prefix a clinic name and get
	// stripped when followed by a number.
	CityLexicon []string
}

// DefaultOptions returns the production tuning.
func DefaultOptions() Options {
	return Options{
		Threshold: 0.6,
		StopWords: []string{"the", "and", "of", "for", "in", "at", "llc", "inc", "corp", "pc"},
		Synonyms: map[string]string{
			"vet":      "vet",
			"hosp":     "hospital",
			"hospital": "hospital",
			"ctr":      "center",
			"center":   "center",
			"anim":     "animal",
			"animal":   "animal",
		},
		PrefixSynonyms: map[string]string{
			"veterinar": "vet",
		},
		CityLexicon: []string{
			"sherman oaks", "studio city", "encino", "tarzana", "woodland hills",
			"van nuys", "north hollywood", "burbank", "glendale", "pasadena",
			"los angeles", "west hollywood", "beverly hills", "santa monica",
			"culver city", "mar vista", "playa vista", "venice", "marina del rey",
			"westchester", "el segundo", "manhattan beach", "redondo beach",
			"torrance", "palos verdes", "san pedro", "long beach", "lakewood",
			"downey", "whittier", "la mirada", "fullerton", "anaheim", "irvine",
			"costa mesa", "newport beach", "huntington beach", "orange", "tustin",
			"mission viejo", "laguna", "san clemente", "oceanside", "carlsbad",
			"la jolla", "san diego", "chula vista", "north hills", "reseda",
			"canoga park", "chatsworth", "northridge", "granada hills", "sylmar",
			"sun valley", "arleta", "pacoima", "panorama city", "lake balboa",
			"west hills", "calabasas", "agoura hills", "thousand oaks", "simi valley",
		},
	}
}

// Resolver scores and resolves clinic names. Safe for concurrent use.
type Resolver struct {
	opts      Options
	stopWords map[string]struct{}
}

// NewResolver creates a resolver, filling unset options from DefaultOptions.
func NewResolver(opts Options) *Resolver {
	def := DefaultOptions()
	if opts.Threshold == 0 {
		opts.Threshold = def.Threshold
	}
	if opts.StopWords == nil {
		opts.StopWords = def.StopWords
	}
	if opts.Synonyms == nil {
		opts.Synonyms = def.Synonyms
	}
	if opts.PrefixSynonyms == nil {
		opts.PrefixSynonyms = def.PrefixSynonyms
	}
	if opts.CityLexicon == nil {
		opts.CityLexicon = def.CityLexicon
	}

	stop := make(map[string]struct{}, len(opts.StopWords))
	for _, w := range opts.StopWords {
		stop[w] = struct{}{}
	}
	return &Resolver{opts: opts, stopWords: stop}
}

// CleanName normalises a raw clinic name: leading numerals go, a city prefix
// goes only when followed by a number (so "Venice Animal Clinic" keeps its
// city), any numeral that surfaces next goes too, and the remainder is
// title-cased.
func (r *Resolver) CleanName(name string) string {
	cleaned := strings.ToLower(strings.TrimSpace(name))

	cleaned = stripLeadingNumber(cleaned)

	for _, city := range r.opts.CityLexicon {
		if rest, ok := stripCityPrefix(cleaned, city); ok {
			cleaned = rest
			break
		}
	}

	cleaned = stripLeadingNumber(cleaned)

	words := strings.Fields(cleaned)
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

// Score compares two clinic names. Identical strings score 1.0, containment
// scores 0.9, otherwise the score is the matched-word ratio damped by how
// different the word counts are.
func (r *Resolver) Score(a, b string) float64 {
	s1 := strings.ToLower(strings.TrimSpace(a))
	s2 := strings.ToLower(strings.TrimSpace(b))

	if s1 == s2 {
		return 1.0
	}
	if s1 != "" && s2 != "" && (strings.Contains(s1, s2) || strings.Contains(s2, s1)) {
		return 0.9
	}

	words1 := r.significantWords(s1)
	words2 := r.significantWords(s2)

	minWords := len(words1)
	maxWords := len(words2)
	if maxWords < minWords {
		minWords, maxWords = maxWords, minWords
	}
	if minWords == 0 {
		return 0
	}

	matched := 0
	for _, w1 := range words1 {
		for _, w2 := range words2 {
			if wordsEquivalent(w1, w2) {
				matched++
				break
			}
		}
	}

	baseScore := float64(matched) / float64(minWords)
	lengthRatio := float64(minWords) / float64(maxWords)
	return baseScore * (0.7 + 0.3*lengthRatio)
}

// Resolve returns the best-scoring candidate at or above the threshold.
func (r *Resolver) Resolve(name string, candidates []Candidate) (Match, bool) {
	var best Match
	for _, c := range candidates {
		score := r.Score(name, c.Name)
		if score >= r.opts.Threshold && score > best.Score {
			best = Match{ID: c.ID, Name: c.Name, Score: score}
		}
	}
	return best, best.Score > 0
}

func (r *Resolver) significantWords(s string) []string {
	var out []string
	for _, w := range strings.Fields(s) {
		if len(w) <= 1 {
			continue
		}
		if _, stop := r.stopWords[w]; stop {
			continue
		}
		out = append(out, r.normalizeWord(w))
	}
	return out
}

func (r *Resolver) normalizeWord(w string) string {
	for prefix, canon := range r.opts.PrefixSynonyms {
		if strings.HasPrefix(w, prefix) {
			return canon
		}
	}
	if canon, ok := r.opts.Synonyms[w]; ok {
		return canon
	}
	return w
}

// wordsEquivalent treats two words as the same when they are equal, when
// both are longer than three characters and one contains the other, or when
// both are at least three characters and share a 3-char prefix.
func wordsEquivalent(w1, w2 string) bool {
	if w1 == w2 {
		return true
	}
	if len(w1) > 3 && len(w2) > 3 && (strings.Contains(w1, w2) || strings.Contains(w2, w1)) {
		return true
	}
	if len(w1) >= 3 && len(w2) >= 3 && w1[:3] == w2[:3] {
		return true
	}
	return false
}

func stripLeadingNumber(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(s) || s[i] != ' ' {
		return s
	}
	return strings.TrimLeft(s[i:], " ")
}

// stripCityPrefix removes "<city> <number> " from the front of s. A city
// prefix not followed by a number stays, since it is part of the name.
func stripCityPrefix(s, city string) (string, bool) {
	if !strings.HasPrefix(s, city+" ") {
		return s, false
	}
	rest := strings.TrimLeft(s[len(city):], " ")
	stripped := stripLeadingNumber(rest)
	if stripped == rest {
		return s, false
	}
	return stripped, true
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
