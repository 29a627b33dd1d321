package lhdiff

import (
	"testing"

	"github.com/matryer/is"
)

func TestCollectIdentifiersIgnoresKeywords(t *testing.T) {
	is := is.New(t)

	occ := collectIdentifiers([]string{"if (counter > 0) return counter;"})

	_, hasIf := occ["if"]
	_, hasReturn := occ["return"]
	_, hasCounter := occ["counter"]

	is.True(!hasIf)
	is.True(!hasReturn)
	is.True(hasCounter)
	is.Equal(len(occ["counter"]), 2)
}

func TestSuffixRenameMatchRecognizesCatalogEntries(t *testing.T) {
	is := is.New(t)

	is.True(suffixRenameMatch("expressionTb", "expressionBinding"))
	is.True(suffixRenameMatch("valueOld", "valueNew"))
	is.True(!suffixRenameMatch("totallyUnrelated", "somethingElse"))
}

func TestJaccardOverlapOfIdenticalSetsIsOne(t *testing.T) {
	is := is.New(t)

	is.Equal(jaccardOverlap([]int{1, 2, 3}, []int{1, 2, 3}), 1.0)
}

func TestJaccardOverlapOfDisjointSetsIsZero(t *testing.T) {
	is := is.New(t)

	is.Equal(jaccardOverlap([]int{1, 2}, []int{3, 4}), 0.0)
}

func TestDetectVariableRenamesFindsConsistentSubstitution(t *testing.T) {
	is := is.New(t)

	oldLines := []string{
		"int itemCount = 0;",
		"itemCount = itemCount + 1;",
		"return itemCount;",
	}

	newLines := []string{
		"int itemTotal = 0;",
		"itemTotal = itemTotal + 1;",
		"return itemTotal;",
	}

	renames := detectVariableRenames(oldLines, newLines, nil, nil)

	is.Equal(renames["itemCount"], "itemTotal")
}

func TestDetectVariableRenamesIgnoresUnrelatedNames(t *testing.T) {
	is := is.New(t)

	oldLines := []string{"int alpha = 1;"}
	newLines := []string{"int totallyDifferentNameEntirely = 2;"}

	renames := detectVariableRenames(oldLines, newLines, nil, nil)

	_, ok := renames["alpha"]
	is.True(!ok)
}

func TestValidateRenamesRejectsNamesStillPresentOnBothSides(t *testing.T) {
	is := is.New(t)

	renames := map[string]string{"a": "b"}
	oldOcc := map[string][]int{"a": {0}, "b": {1}}
	newOcc := map[string][]int{"b": {0}}

	out := validateRenames(renames, oldOcc, newOcc)

	_, ok := out["a"]
	is.True(!ok)
}
