package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareNames(t *testing.T) {
	matcher := NewNameMatcherService()

	tests := []struct {
		name           string
		name1          string
		name2          string
		wantMatch      bool
		wantConfidence int
		wantMethod     string
	}{
		{
			name:           "exact match",
			name1:          "Navaneeth M",
			name2:          "Navaneeth M",
			wantMatch:      true,
			wantConfidence: 100,
			wantMethod:     MatchMethodExact,
		},
		{
			name:           "exact after normalization",
			name1:          "  John   SMITH ",
			name2:          "john smith",
			wantMatch:      true,
			wantConfidence: 100,
			wantMethod:     MatchMethodExact,
		},
		{
			name:           "punctuation stripped",
			name1:          "O'Brien, Mary",
			name2:          "obrien mary",
			wantMatch:      true,
			wantConfidence: 100,
			wantMethod:     MatchMethodExact,
		},
		{
			name:           "parts in any order",
			name1:          "M Navaneeth",
			name2:          "Navaneeth M",
			wantMatch:      true,
			wantConfidence: 95,
			wantMethod:     MatchMethodPartsAny,
		},
		{
			name:           "middle name permutation",
			name1:          "Mary Jane Watson",
			name2:          "Watson Mary Jane",
			wantMatch:      true,
			wantConfidence: 95,
			wantMethod:     MatchMethodPartsAny,
		},
		{
			name:           "subset of tokens needs both lists",
			name1:          "Navaneeth",
			name2:          "Navaneeth M",
			wantMatch:      true,
			wantConfidence: 85,
			wantMethod:     MatchMethodSubstring,
		},
		{
			name:           "substring match",
			name1:          "Jo",
			name2:          "John",
			wantMatch:      true,
			wantConfidence: 85,
			wantMethod:     MatchMethodSubstring,
		},
		{
			// Every character of "jon smithh" occurs in "john smith",
			// so the overlap score is 10/10 = 100.
			name:           "typo falls through to character similarity",
			name1:          "John Smith",
			name2:          "Jon Smithh",
			wantMatch:      true,
			wantConfidence: 100,
			wantMethod:     MatchMethodCharOverlap,
		},
		{
			// "jane doe" against "john smith": j, n, space and o
			// overlap, 4/10 = 40.
			name:           "unrelated names score low",
			name1:          "John Smith",
			name2:          "Jane Doe",
			wantMatch:      false,
			wantConfidence: 40,
			wantMethod:     MatchMethodCharOverlap,
		},
		{
			name:           "empty first name",
			name1:          "",
			name2:          "anything",
			wantMatch:      false,
			wantConfidence: 0,
			wantMethod:     MatchMethodMissing,
		},
		{
			name:           "empty second name",
			name1:          "anything",
			name2:          "",
			wantMatch:      false,
			wantConfidence: 0,
			wantMethod:     MatchMethodMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matcher.CompareNames(tt.name1, tt.name2)
			assert.Equal(t, tt.wantMatch, got.Match)
			assert.Equal(t, tt.wantConfidence, got.Confidence)
			assert.Equal(t, tt.wantMethod, got.Method)
		})
	}
}

// CompareNames must be symmetric in its match verdict.
func TestCompareNamesSymmetry(t *testing.T) {
	matcher := NewNameMatcherService()

	pairs := [][2]string{
		{"M Navaneeth", "Navaneeth M"},
		{"John Smith", "Jon Smithh"},
		{"Jo", "John"},
		{"", "anything"},
		{"Mary Jane Watson", "Watson Mary Jane"},
		{"John Smith", "Jane Doe"},
	}

	for _, pair := range pairs {
		forward := matcher.CompareNames(pair[0], pair[1])
		backward := matcher.CompareNames(pair[1], pair[0])
		assert.Equal(t, forward.Match, backward.Match, "match verdict must be symmetric for %q vs %q", pair[0], pair[1])
		assert.Equal(t, forward.Confidence, backward.Confidence, "confidence must be symmetric for %q vs %q", pair[0], pair[1])
	}
}
