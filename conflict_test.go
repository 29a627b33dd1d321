package lhdiff

import (
	"testing"

	"github.com/matryer/is"
)

func TestResolveConflictsKeepsHighestScoringClaimant(t *testing.T) {
	is := is.New(t)

	m := NewMatcher()

	newSide := NewLineSide([]string{"target line here"}, DefaultOptions())

	matches := []Match{
		{Old: 0, New: 0, Score: 0.5},
		{Old: 1, New: 0, Score: 0.9},
	}

	oldSide := NewLineSide([]string{"low score candidate", "high score candidate"}, DefaultOptions())

	resolved := m.ResolveConflicts(matches, oldSide, newSide)

	byOld := matchesToMap(resolved)
	is.Equal(byOld[1].New, 0)
}

func TestResolveConflictsIsInjective(t *testing.T) {
	is := is.New(t)

	m := NewMatcher()

	oldSide := NewLineSide([]string{"alpha line", "beta line", "gamma line"}, DefaultOptions())
	newSide := NewLineSide([]string{"alpha line", "beta line", "gamma line"}, DefaultOptions())

	matches := []Match{
		{Old: 0, New: 1, Score: 0.4},
		{Old: 1, New: 1, Score: 0.9},
		{Old: 2, New: 2, Score: 0.95},
	}

	resolved := m.ResolveConflicts(matches, oldSide, newSide)

	seen := map[int]bool{}

	for _, mt := range resolved {
		is.True(!seen[mt.New])
		seen[mt.New] = true
	}
}

func TestFindValidAlternativeRejectsTooDissimilarSalvage(t *testing.T) {
	is := is.New(t)

	m := NewMatcher()

	oldLines := []string{"x"}
	newLines := []string{"totally unrelated padding line number one", "totally unrelated padding line number two"}

	claimed := map[int]bool{0: true}

	_, ok := m.findValidAlternative(Match{Old: 0, New: 0, Score: 0.1}, oldLines, newLines, newLines, claimed)
	is.True(!ok)
}
