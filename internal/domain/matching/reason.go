package matching

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Keywords is checked in order; the first term found in both texts names the match.
var Keywords = []string{
	"product", "demo", "demonstration", "app", "application",
	"office", "work", "working", "code", "coding", "programming",
	"team", "collaboration", "data", "analytics", "visualization",
	"typing", "keyboard", "interface", "screen",
}

var tiers = []struct {
	min   float64
	label string
}{
	{0.85, "highly relevant"},
	{0.75, "relevant"},
}

const fallbackTier = "somewhat relevant"

// Reason explains a match in one short sentence. It never affects selection.
func Reason(segmentText, clipDescription string, similarity float64) string {
	tier := capitalize(tierFor(similarity))
	a := strings.ToLower(segmentText)
	b := strings.ToLower(clipDescription)
	for _, kw := range Keywords {
		if strings.Contains(a, kw) && strings.Contains(b, kw) {
			return tier + " match: both mention '" + kw + "'"
		}
	}
	return tier + " semantic match"
}

func tierFor(sim float64) string {
	for _, t := range tiers {
		if sim >= t.min {
			return t.label
		}
	}
	return fallbackTier
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
