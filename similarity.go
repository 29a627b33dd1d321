package lhdiff

import (
	"regexp"

	slowlevenshtein "github.com/agext/levenshtein"

	"github.com/BigDonalds/lhdiff-go/levenshtein"
)

var (
	// identifierTokenRegex matches identifier-shaped tokens for content_similarity's
	// structural masking.
	identifierTokenRegex = regexp.MustCompile(`\b[_a-zA-Z]\w*\b`)

	// integerLiteralRegex matches bare integer literals for the same masking.
	integerLiteralRegex = regexp.MustCompile(`\b\d+\b`)
)

// normalizeForContentSimilarity replaces identifier tokens with VAR and
// integer literals with NUM, so content_similarity compares structure
// rather than specific names — the line-level analogue of an
// alpha-renaming-invariant diff.
func normalizeForContentSimilarity(s string) string {
	s = identifierTokenRegex.ReplaceAllString(s, "VAR")
	s = integerLiteralRegex.ReplaceAllString(s, "NUM")

	return s
}

// contentSimilarity returns 1 minus the normalized Levenshtein distance
// between a and b after VAR/NUM masking. Two empty strings are identical
// (1.0); exactly one empty is completely different (0.0).
func contentSimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}

	if a == "" || b == "" {
		return 0
	}

	normA := normalizeForContentSimilarity(a)
	normB := normalizeForContentSimilarity(b)

	if normA == normB {
		return 1
	}

	maxLen := runeLen(normA)
	if l := runeLen(normB); l > maxLen {
		maxLen = l
	}

	if maxLen == 0 {
		return 1
	}

	return 1 - float64(editDistance(normA, normB))/float64(maxLen)
}

// combinedSimilarity mixes contentSimilarity and contextSimilarity with
// weights wc and wx.
func combinedSimilarity(a, b, aContext, bContext string, wc, wx float64) float64 {
	return wc*contentSimilarity(a, b) + wx*contextSimilarity(aContext, bContext)
}

// buildContext concatenates the window of ±window lines around index,
// space-separated, to produce the context string combinedSimilarity's
// context term is scored against.
func buildContext(lines []string, index, window int) string {
	start := index - window
	if start < 0 {
		start = 0
	}

	end := index + window + 1
	if end > len(lines) {
		end = len(lines)
	}

	out := ""

	for i := start; i < end; i++ {
		if i > start {
			out += " "
		}

		out += lines[i]
	}

	return out
}

// editDistance returns the Levenshtein distance between a and b, using the
// package's fast bit-parallel implementation unless either string contains
// a rune outside the Basic Multilingual Plane, in which case it falls back
// to the slower general-purpose implementation — the same dispatch rule
// the teacher uses for file lines, applied here to masked line pairs.
func editDistance(a, b string) int {
	if needsSlowLevenshtein(a) || needsSlowLevenshtein(b) {
		return slowlevenshtein.Distance(a, b, nil)
	}

	return levenshtein.Distance(a, b)
}

// needsSlowLevenshtein reports whether s contains any rune outside the
// Basic Multilingual Plane, which the bit-parallel implementation's
// 0x10000-entry peq table cannot index.
func needsSlowLevenshtein(s string) bool {
	for _, r := range s {
		if r > 0xFFFF {
			return true
		}
	}

	return false
}

// runeLen returns the length of s in runes.
func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}

	return n
}
