package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeChapterTokenDelimiterSafe(t *testing.T) {
	names := []string{
		"Motion",
		"Laws of Motion",
		"रसायन विज्ञान",
		"Ch. 4: Work | Energy & Power",
		"  spaced  out  ",
	}
	for _, name := range names {
		tok := EncodeChapterToken(name)
		assert.NotContains(t, tok, "|", "token must survive payload framing: %q", name)
		assert.NotContains(t, tok, ":", "token must survive field separation: %q", name)
		assert.Equal(t, tok, EncodeChapterToken(name), "encoding must be deterministic")
	}
}

func TestDecodeChapterTokenRoundTrip(t *testing.T) {
	name := "Laws of Motion"
	tok := EncodeChapterToken(name)
	decoded, exact := DecodeChapterToken(tok)
	require.True(t, exact)
	assert.Equal(t, name, decoded)
}

func TestEncodeChapterTokenLongNameFallsBackToSlug(t *testing.T) {
	name := strings.Repeat("Electromagnetic Induction ", 4)
	tok := EncodeChapterToken(name)
	require.NotContains(t, tok, tokenPrefix)
	_, exact := DecodeChapterToken(tok)
	assert.False(t, exact, "slug tokens are lossy")
	assert.Equal(t, Slug(name), tok)
}

func TestEncodeChapterTokenNeverExceedsBudget(t *testing.T) {
	names := []string{
		"Motion",
		"Electromagnetic Induction II",
		"रसायन विज्ञान और उसकी शाखाएँ",
		strings.Repeat("x", 200),
	}
	for _, name := range names {
		tok := EncodeChapterToken(name)
		assert.LessOrEqual(t, len(tok), maxEncodedToken, "token for %q", name)
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Laws of Motion":      "laws-of-motion",
		"  Work & Energy!  ":  "work-energy",
		"UNITS--and--MEASURE": "units-and-measure",
		"α β γ":               "α-β-γ",
		// truncated at the token budget, no trailing dash
		"Electromagnetic Induction II": "electromagnetic-inductio",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slug(in), "slug(%q)", in)
	}
}

func TestSortLectureNos(t *testing.T) {
	nos := []string{"10", "2", "3A", "1"}
	SortLectureNos(nos)
	assert.Equal(t, []string{"1", "2", "10", "3A"}, nos)

	mixed := []string{"2.1", "2", "x", "11", "2A"}
	SortLectureNos(mixed)
	assert.Equal(t, []string{"2", "2.1", "11", "2A", "x"}, mixed)
}

func TestNextLectureNo(t *testing.T) {
	assert.Equal(t, "1", NextLectureNo(nil))
	assert.Equal(t, "4", NextLectureNo([]string{"1", "2", "3"}))
	assert.Equal(t, "11", NextLectureNo([]string{"10", "2.5", "3A"}))
}

func TestValidLectureNo(t *testing.T) {
	for _, ok := range []string{"3", "2.1", "4A", "10", "12.34b"} {
		assert.True(t, ValidLectureNo(ok), ok)
	}
	for _, bad := range []string{"", "A", "3AB", "1.", ".5", "1 2", "-1", "123456789"} {
		assert.False(t, ValidLectureNo(bad), bad)
	}
}
