package services

import (
	"math"
	"regexp"
	"strings"
)

const (
	MatchMethodMissing      = "missing"
	MatchMethodExact        = "exact"
	MatchMethodPartsAny     = "parts_match_any_order"
	MatchMethodSubstring    = "substring"
	MatchMethodCharOverlap  = "character_similarity"
	charSimilarityThreshold = 70
)

type NameMatchResult struct {
	Match      bool   `json:"match"`
	Confidence int    `json:"confidence"`
	Method     string `json:"method"`
}

// NameMatcherService compares the claimed student name against the name the
// vision model read off the certificate. Pure and stateless.
type NameMatcherService interface {
	CompareNames(name1, name2 string) NameMatchResult
}

type nameMatcherService struct{}

func NewNameMatcherService() NameMatcherService {
	return &nameMatcherService{}
}

var nonAlphaSpace = regexp.MustCompile(`[^a-z\s]`)
var multiSpace = regexp.MustCompile(`\s+`)

func normalizeName(name string) string {
	name = strings.ToLower(name)
	name = nonAlphaSpace.ReplaceAllString(name, "")
	name = multiSpace.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// CompareNames implements NameMatcherService. The cascade is ordered; the
// first satisfied rule wins.
func (m *nameMatcherService) CompareNames(name1, name2 string) NameMatchResult {
	if name1 == "" || name2 == "" {
		return NameMatchResult{Match: false, Confidence: 0, Method: MatchMethodMissing}
	}

	normalized1 := normalizeName(name1)
	normalized2 := normalizeName(name2)

	// Exact match
	if normalized1 == normalized2 {
		return NameMatchResult{Match: true, Confidence: 100, Method: MatchMethodExact}
	}

	// Same parts in any order, e.g. "M Navaneeth" vs "Navaneeth M"
	parts1 := strings.Fields(normalized1)
	parts2 := strings.Fields(normalized2)

	if len(parts1) >= 2 && len(parts2) >= 2 &&
		(allPartsIn(parts1, parts2) || allPartsIn(parts2, parts1)) {
		return NameMatchResult{Match: true, Confidence: 95, Method: MatchMethodPartsAny}
	}

	// Substring match
	if strings.Contains(normalized1, normalized2) || strings.Contains(normalized2, normalized1) {
		return NameMatchResult{Match: true, Confidence: 85, Method: MatchMethodSubstring}
	}

	// Coarse character-overlap similarity. Not an edit distance: each
	// character of the shorter string scores if it occurs anywhere in the
	// longer one, so it is order-insensitive on purpose.
	longer, shorter := normalized1, normalized2
	if len(normalized2) > len(normalized1) {
		longer, shorter = normalized2, normalized1
	}

	matches := 0
	for _, ch := range shorter {
		if strings.ContainsRune(longer, ch) {
			matches++
		}
	}

	confidence := int(math.Round(float64(matches) / float64(len(longer)) * 100))

	return NameMatchResult{
		Match:      confidence >= charSimilarityThreshold,
		Confidence: confidence,
		Method:     MatchMethodCharOverlap,
	}
}

func allPartsIn(parts, within []string) bool {
	for _, p := range parts {
		found := false
		for _, w := range within {
			if p == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
