package lhdiff

import (
	"testing"

	"github.com/matryer/is"
)

func TestSimHashIsDeterministic(t *testing.T) {
	is := is.New(t)

	text := "the quick brown fox jumps over the lazy dog"
	is.Equal(SimHash(text), SimHash(text))
}

func TestSimHashOfIdenticalTextHasZeroHammingDistance(t *testing.T) {
	is := is.New(t)

	a := SimHash("foo bar baz")
	b := SimHash("foo bar baz")
	is.Equal(HammingDistance(a, b), 0)
}

func TestSimHashOfSimilarLinesIsCloserThanUnrelatedLines(t *testing.T) {
	is := is.New(t)

	base := SimHash("int total = price plus tax plus fee")
	similar := SimHash("int total = price plus tax plus shipping")
	unrelated := SimHash("completely different words appear on this entire line")

	is.True(HammingDistance(base, similar) < HammingDistance(base, unrelated))
}

func TestSimHashIndexTopKOrdersByHammingDistance(t *testing.T) {
	is := is.New(t)

	lines := []string{
		"alpha beta gamma",
		"alpha beta delta",
		"totally unrelated text here",
	}

	idx := NewSimHashIndex(lines)

	target := SimHash("alpha beta gamma")

	top := idx.TopK(target, 1)
	is.Equal(len(top), 1)
	is.Equal(top[0], 0)
}

func TestSimHashIndexTopKCapsAtAvailableLines(t *testing.T) {
	is := is.New(t)

	idx := NewSimHashIndex([]string{"only one line"})

	top := idx.TopK(SimHash("only one line"), 5)
	is.Equal(len(top), 1)
}

func TestSimHashIndexTopKOfEmptyIndexIsEmpty(t *testing.T) {
	is := is.New(t)

	idx := NewSimHashIndex(nil)
	is.Equal(idx.TopK(SimHash("anything"), 5), []int(nil))
}

func TestBuildCandidatesProducesOneEntryPerOldLine(t *testing.T) {
	is := is.New(t)

	old := []string{"a b c", "d e f"}
	newer := []string{"a b c", "x y z", "d e f"}

	candidates := BuildCandidates(old, newer, 2)
	is.Equal(len(candidates), 2)
	is.True(len(candidates[0]) <= 2)
	is.True(len(candidates[1]) <= 2)
}
