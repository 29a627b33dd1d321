package lhdiff

import (
	"regexp"
	"strings"
)

var (
	// whitespaceRunRegex matches a run of whitespace to collapse to one space.
	whitespaceRunRegex = regexp.MustCompile(`\s+`)

	// doubleSlashCommentRegex and hashCommentRegex match C/Java "//" and
	// shell/Python "#" line comments; sameLineBlockComment matches block
	// comments that open and close on the same line.
	doubleSlashCommentRegex = regexp.MustCompile(`//.*`)
	hashCommentRegex        = regexp.MustCompile(`#.*`)
	sameLineBlockComment    = regexp.MustCompile(`/\*.*?\*/`)

	// structuralPunctuationRegex strips the punctuation set the spec calls a
	// deliberate structural-noise reducer.
	structuralPunctuationRegex = regexp.MustCompile(`[;,(){}\[\]]`)
)

// blockCommentDelimiter is one of the three multi-line comment delimiter
// families the normalizer recognizes.
type blockCommentDelimiter struct {
	open  string
	close string
}

var blockCommentDelimiters = []blockCommentDelimiter{
	{open: "/*", close: "*/"},
	{open: "'''", close: "'''"},
	{open: `"""`, close: `"""`},
}

// Normalize converts raw lines into their canonical, comparable form: trim
// surrounding whitespace, collapse internal whitespace runs, strip line-
// and same-line block-comments, strip structural punctuation, optionally
// lowercase, then erase any lines that fall inside a block comment that
// spans multiple lines. The result always has the same length as rawLines;
// empty lines are preserved as empty strings. Normalize never fails:
// malformed input is simply normalized lossily, same as any other line.
func Normalize(rawLines []string, opts Options) []string {
	out := make([]string, len(rawLines))

	for i, raw := range rawLines {
		out[i] = normalizeOneLine(raw, opts)
	}

	eraseMultilineBlockComments(out)

	return out
}

// normalizeOneLine applies the single-line normalization steps, in the
// order the spec fixes: trim, collapse whitespace, strip comments, strip
// punctuation, optionally lowercase.
func normalizeOneLine(line string, opts Options) string {
	line = strings.TrimSpace(line)
	line = whitespaceRunRegex.ReplaceAllString(line, " ")

	if opts.RemoveComments {
		line = doubleSlashCommentRegex.ReplaceAllString(line, "")
		line = hashCommentRegex.ReplaceAllString(line, "")
		line = sameLineBlockComment.ReplaceAllString(line, "")
	}

	line = structuralPunctuationRegex.ReplaceAllString(line, "")

	if opts.RemoveComments {
		// Removing punctuation can join a new comment marker ("/(/" becomes
		// "//"), so strip once more to leave nothing for a second pass.
		line = doubleSlashCommentRegex.ReplaceAllString(line, "")
		line = sameLineBlockComment.ReplaceAllString(line, "")
	}

	// Comment and punctuation removal can leave whitespace runs behind
	// ("a ( b" becomes "a  b"); collapse them again.
	line = whitespaceRunRegex.ReplaceAllString(line, " ")

	if opts.Lowercase {
		line = strings.ToLower(line)
	}

	return strings.TrimSpace(line)
}

// structuralText applies the same trim/whitespace-collapse/comment-strip
// steps as normalizeOneLine but skips punctuation stripping and
// lowercasing, so braces, parens, and semicolons survive for callers that
// need to see code shape rather than compare masked content (see
// LineSide.Structural).
func structuralText(rawLines []string, opts Options) []string {
	out := make([]string, len(rawLines))

	for i, raw := range rawLines {
		line := strings.TrimSpace(raw)
		line = whitespaceRunRegex.ReplaceAllString(line, " ")

		if opts.RemoveComments {
			line = doubleSlashCommentRegex.ReplaceAllString(line, "")
			line = hashCommentRegex.ReplaceAllString(line, "")
			line = sameLineBlockComment.ReplaceAllString(line, "")
		}

		out[i] = strings.TrimSpace(line)
	}

	return out
}

// eraseMultilineBlockComments runs the second normalization pass in place:
// it scans for an opening delimiter with no matching closer on the same
// line, truncates the opener's tail, blanks every intermediate line, and
// truncates the closer's head. Nesting is not supported — the first
// matching closer wins.
func eraseMultilineBlockComments(lines []string) {
	for i := 0; i < len(lines); i++ {
		delim, openIdx := firstUnclosedOpener(lines[i])
		if delim == nil {
			continue
		}

		lines[i] = strings.TrimSpace(lines[i][:openIdx])

		closeLine, closeIdx := findCloser(lines, i+1, delim.close)
		if closeLine < 0 {
			// No closer anywhere in the file: blank the rest and stop.
			for j := i + 1; j < len(lines); j++ {
				lines[j] = ""
			}

			return
		}

		for j := i + 1; j < closeLine; j++ {
			lines[j] = ""
		}

		lines[closeLine] = strings.TrimSpace(lines[closeLine][closeIdx+len(delim.close):])

		// Resume scanning at the closing line in case it opens a new comment.
		i = closeLine - 1
	}
}

// firstUnclosedOpener returns the delimiter family (if any) that opens in
// line without a matching closer later in the same line, and the byte
// offset of that opener.
func firstUnclosedOpener(line string) (*blockCommentDelimiter, int) {
	bestIdx := -1

	var best *blockCommentDelimiter

	for i := range blockCommentDelimiters {
		d := &blockCommentDelimiters[i]

		openIdx := strings.Index(line, d.open)
		if openIdx < 0 {
			continue
		}

		rest := line[openIdx+len(d.open):]
		if strings.Contains(rest, d.close) {
			continue
		}

		if bestIdx < 0 || openIdx < bestIdx {
			bestIdx = openIdx
			best = d
		}
	}

	return best, bestIdx
}

// findCloser scans lines starting at from for the first occurrence of
// closer, returning its line index and byte offset, or (-1, -1) if none is
// found.
func findCloser(lines []string, from int, closer string) (int, int) {
	for i := from; i < len(lines); i++ {
		if idx := strings.Index(lines[i], closer); idx >= 0 {
			return i, idx
		}
	}

	return -1, -1
}
