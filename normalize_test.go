package lhdiff

import (
	"testing"

	"github.com/matryer/is"
)

func TestNormalizeCollapsesWhitespaceAndPunctuation(t *testing.T) {
	is := is.New(t)

	out := Normalize([]string{"  foo(  bar,   baz );  "}, DefaultOptions())
	is.Equal(out[0], "foo bar baz")
}

func TestNormalizeStripsLineComments(t *testing.T) {
	is := is.New(t)

	out := Normalize([]string{"x = 1 // set x"}, DefaultOptions())
	is.Equal(out[0], "x = 1")

	out = Normalize([]string{"x = 1 # set x"}, DefaultOptions())
	is.Equal(out[0], "x = 1")
}

func TestNormalizeKeepsCommentsWhenDisabled(t *testing.T) {
	is := is.New(t)

	out := Normalize([]string{"x = 1 // note"}, Options{RemoveComments: false})
	is.Equal(out[0], "x = 1 // note")
}

func TestNormalizeLowercasesWhenRequested(t *testing.T) {
	is := is.New(t)

	out := Normalize([]string{"FooBar"}, Options{Lowercase: true})
	is.Equal(out[0], "foobar")
}

func TestNormalizeErasesMultilineBlockComment(t *testing.T) {
	is := is.New(t)

	lines := []string{
		"before /* start",
		"entirely inside",
		"end */ after",
	}

	out := Normalize(lines, DefaultOptions())

	is.Equal(out[0], "before")
	is.Equal(out[1], "")
	is.Equal(out[2], "after")
}

func TestNormalizeHandlesUnterminatedBlockComment(t *testing.T) {
	is := is.New(t)

	lines := []string{"before /* never closes", "still inside", "also inside"}

	out := Normalize(lines, DefaultOptions())

	is.Equal(out[0], "before")
	is.Equal(out[1], "")
	is.Equal(out[2], "")
}

func TestNormalizePreservesEmptyLines(t *testing.T) {
	is := is.New(t)

	out := Normalize([]string{"a", "", "b"}, DefaultOptions())
	is.Equal(out, []string{"a", "", "b"})
}
