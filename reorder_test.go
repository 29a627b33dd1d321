package lhdiff

import (
	"testing"

	"github.com/matryer/is"
)

func TestDetectReordersFindsLineMovedWithinScope(t *testing.T) {
	is := is.New(t)

	oldLines := []string{
		"public int total(int a, int b) {",
		"    int sum = a + b;",
		"    return sum;",
		"}",
	}

	newLines := []string{
		"public int total(int a, int b) {",
		"    return sum;",
		"    int sum = a + b;",
		"}",
	}

	oldSide := NewLineSide(oldLines, Options{})
	newSide := NewLineSide(newLines, Options{})

	m := NewMatcher()

	matches := []Match{
		{Old: 0, New: 0, Score: 1.0},
		{Old: 3, New: 3, Score: 1.0},
	}

	resolved := m.DetectReorders(oldSide, newSide, matches, DefaultReorderThreshold)

	byOld := matchesToMap(resolved)

	is.Equal(byOld[1].New, 2)
	is.Equal(byOld[2].New, 1)
}

func TestReorderSearchCenterFallsBackToOldIndexWhenNothingMatched(t *testing.T) {
	is := is.New(t)

	center := reorderSearchCenter(15, map[int]Match{})
	is.Equal(center, 15)
}

func TestReorderSearchCenterFallsBackToNearestAnchor(t *testing.T) {
	is := is.New(t)

	matched := map[int]Match{5: {Old: 5, New: 50}}
	center := reorderSearchCenter(7, matched)
	is.Equal(center, 52)
}

func TestReorderSearchRangeUsesScopePadWhenScopeSurvives(t *testing.T) {
	is := is.New(t)

	newBoundaries := map[string]MethodBoundary{"total": {Start: 10, End: 20}}
	lo, hi := reorderSearchRange(15, "total", map[int]Match{}, newBoundaries)
	is.Equal(lo, 10-reorderScopePad)
	is.Equal(hi, 20+reorderScopePad)
}

func TestReorderSearchRangeFallsBackToGlobalWindowWhenScopeMissing(t *testing.T) {
	is := is.New(t)

	lo, hi := reorderSearchRange(100, "gone", map[int]Match{}, map[string]MethodBoundary{})
	is.Equal(lo, 100-reorderGlobalWindow)
	is.Equal(hi, 100+reorderGlobalWindow)
}

func TestScopesAgreeAllowsGlobalOnEitherSide(t *testing.T) {
	is := is.New(t)

	is.True(scopesAgree("foo", "foo"))
	is.True(scopesAgree(globalScope, "foo"))
	is.True(scopesAgree("foo", globalScope))
	is.True(!scopesAgree("foo", "bar"))
}
