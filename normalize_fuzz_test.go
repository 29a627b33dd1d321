package lhdiff

import (
	"strings"
	"testing"
)

// FuzzNormalize checks the invariants Normalize promises regardless of
// input: it never panics on malformed text, it always returns one output
// line per input line, and running it again over its own output changes
// nothing further (the normalized form is a fixed point).
func FuzzNormalize(f *testing.F) {
	const maxLines = 50

	f.Add("line1\nline2\nline3", true, true)
	f.Add("", false, false)
	f.Add("single line", true, false)
	f.Add("/* unterminated block comment\nstill inside\nmore", true, true)
	f.Add("code(); // trailing comment", true, false)
	f.Add("  messy   whitespace   here  \t\t", true, false)
	f.Add("'''triple\nquoted\nstring'''", true, true)
	f.Add("\"\"\"docstring\nspans lines\n\"\"\"", true, true)
	f.Add("# shell style comment\nactual code", true, true)
	f.Add("𨊂 € 🚀 unicode line", true, false)

	f.Fuzz(func(t *testing.T, content string, removeComments, lowercase bool) {
		lines := strings.Split(content, "\n")
		if len(lines) > maxLines {
			t.SkipNow()
		}

		opts := Options{
			RemoveComments: removeComments,
			Lowercase:      lowercase,
		}

		out := Normalize(lines, opts)

		if len(out) != len(lines) {
			t.Fatalf("Normalize changed line count: got %d, want %d", len(out), len(lines))
		}

		again := Normalize(out, opts)
		for i := range out {
			if again[i] != out[i] {
				t.Fatalf("Normalize is not a fixed point at line %d: %q -> %q", i, out[i], again[i])
			}
		}
	})
}
