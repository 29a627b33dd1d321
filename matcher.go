package lhdiff

import (
	"sort"

	"github.com/dropbox/godropbox/container/bitvector"
)

// contextWindow is the number of lines on each side of a candidate used to
// build its context string for context_similarity.
const contextWindow = 3

// Pass-specific acceptance bars, each fixed by spec.md §4.4.2 rather than
// shared across passes the way a single generic threshold would suggest.
const (
	exactMatchFloor          = 0.95
	structuralRewriteFloor   = 0.4
	structuralRewriteBoost   = 0.3
	structuralRewriteWindow  = 10
	semanticPatternFloor     = 0.5
	semanticPatternBoostRate = 0.4
	controlFlowRawFloor      = 0.6
	controlFlowDecayWindow   = 15.0
	localNeighborhoodWindow  = 10
	localNeighborhoodDecay   = 25.0
	localNeighborhoodFloor   = 0.5
	globalPassFloor          = 0.3
	forcedPassFloor          = 0.2
)

// matchKey identifies one (old, new) line pair for cache lookups.
type matchKey struct {
	old, new int
}

// consumedSet is a compact set of already-matched new-line indices,
// grounded on the teacher's bitVector wrapper around
// github.com/dropbox/godropbox/container/bitvector — reused here for the
// same purpose (tracking which indices on one side have been spoken for)
// instead of a map[int]bool.
type consumedSet struct {
	bv     *bitvector.BitVector
	length int
}

// newConsumedSet returns an empty consumedSet able to track length indices.
func newConsumedSet(length int) *consumedSet {
	nbytes := length / 8
	if nbytes*8 < length {
		nbytes++
	}

	if nbytes == 0 {
		nbytes = 1
	}

	return &consumedSet{bv: bitvector.NewBitVector(make([]byte, nbytes), length), length: length}
}

func (c *consumedSet) isSet(idx int) bool {
	if idx < 0 || idx >= c.length {
		return false
	}

	return c.bv.Element(idx) == 1
}

func (c *consumedSet) set(idx int) {
	if idx < 0 || idx >= c.length {
		return
	}

	c.bv.Set(1, idx)
}

// Matcher runs the seven-pass matching algorithm. It owns the similarity
// and context caches that make repeated candidate scoring cheap across
// passes; per spec.md §5's per-instance isolation requirement, a Matcher
// must never be shared (concurrently or sequentially) across independent
// Match calls — construct a fresh one per comparison.
type Matcher struct {
	similarityCache map[matchKey]float64
	contextCache    map[int]string // cache key packs side into the sign bit via contextCacheKey
}

// NewMatcher returns a ready-to-use Matcher with empty caches.
func NewMatcher() *Matcher {
	return &Matcher{
		similarityCache: map[matchKey]float64{},
		contextCache:    map[int]string{},
	}
}

// contextCacheKey distinguishes old-side index i from new-side index i,
// since both are non-negative ints starting at zero.
func contextCacheKey(idx int, isNew bool) int {
	if isNew {
		return -(idx + 1)
	}

	return idx + 1
}

func (m *Matcher) oldContext(oldLines []string, idx int) string {
	key := contextCacheKey(idx, false)
	if c, ok := m.contextCache[key]; ok {
		return c
	}

	c := buildContext(oldLines, idx, contextWindow)
	m.contextCache[key] = c

	return c
}

func (m *Matcher) newContext(newLines []string, idx int) string {
	key := contextCacheKey(idx, true)
	if c, ok := m.contextCache[key]; ok {
		return c
	}

	c := buildContext(newLines, idx, contextWindow)
	m.contextCache[key] = c

	return c
}

// score returns the cached combined_similarity of (oldIdx, newIdx),
// computing and storing it on first request.
func (m *Matcher) score(oldLines, newLines []string, oldIdx, newIdx int) float64 {
	key := matchKey{old: oldIdx, new: newIdx}
	if s, ok := m.similarityCache[key]; ok {
		return s
	}

	s := combinedSimilarity(
		oldLines[oldIdx], newLines[newIdx],
		m.oldContext(oldLines, oldIdx), m.newContext(newLines, newIdx),
		0.6, 0.4,
	)

	m.similarityCache[key] = s

	return s
}

// renameAdjustedScore is score, boosted when a detected variable rename
// connects the two lines: every old-side token in the rename table that
// maps to a token present in the new line counts as corroborating
// evidence the lines correspond despite the textual difference.
func (m *Matcher) renameAdjustedScore(oldLines, newLines []string, oldIdx, newIdx int, renames map[string]string) float64 {
	base := m.score(oldLines, newLines, oldIdx, newIdx)

	if len(renames) == 0 {
		return base
	}

	boost := 0.0

	for oldTok, newTok := range renames {
		if containsToken(oldLines[oldIdx], oldTok) && containsToken(newLines[newIdx], newTok) {
			boost += 0.1
		}
	}

	if boost > 0.3 {
		boost = 0.3
	}

	adjusted := base + boost
	if adjusted > 1.0 {
		adjusted = 1.0
	}

	return adjusted
}

func containsToken(line, tok string) bool {
	return identifierRegex.MatchString(line) && regexpContainsWord(line, tok)
}

func regexpContainsWord(line, tok string) bool {
	for _, m := range identifierRegex.FindAllString(line, -1) {
		if m == tok {
			return true
		}
	}

	return false
}

// matchState threads the mutable bookkeeping shared by every pass:
// which old lines are already matched, which new lines are already
// consumed, and the running result table.
type matchState struct {
	matched  map[int]Match
	consumed *consumedSet
}

// Match runs the seven-pass algorithm over oldSide and newSide, restricted
// to the supplied CandidateSet, and returns every accepted correspondence.
// threshold is accepted for API stability with spec.md §6's match(...)
// signature, but every pass now applies its own fixed acceptance bar per
// spec.md §4.4.2, so it goes unused.
func (m *Matcher) Match(oldSide, newSide LineSide, candidates CandidateSet, threshold float64) []Match {
	_ = threshold

	oldLines := oldSide.Normalized()
	newLines := newSide.Normalized()
	oldStruct := oldSide.Structural()
	newStruct := newSide.Structural()

	structure := analyzeStructure(oldStruct, newStruct)

	st := &matchState{
		matched:  map[int]Match{},
		consumed: newConsumedSet(len(newLines)),
	}

	m.passExactMatches(oldLines, newLines, candidates, st)
	m.passEnhancedStructural(oldLines, newLines, structure, st)
	m.passControlFlow(oldStruct, newStruct, oldLines, newLines, candidates, st)
	m.passLocalNeighborhood(oldLines, newLines, candidates, st)
	m.passRemainingStructural(oldLines, newLines, structure, st)
	m.passGlobal(oldLines, newLines, candidates, st)
	m.passForced(oldLines, newLines, candidates, st)

	out := make([]Match, 0, len(st.matched))
	for _, mt := range st.matched {
		out = append(out, mt)
	}

	return out
}

// passExactMatches (pass 1) claims, for each unmatched old index with any
// candidate scoring above exactMatchFloor, the lowest-indexed such
// candidate.
func (m *Matcher) passExactMatches(oldLines, newLines []string, candidates CandidateSet, st *matchState) {
	for oldIdx := range oldLines {
		if _, done := st.matched[oldIdx]; done {
			continue
		}

		bestNew := -1
		bestScore := 0.0

		for _, newIdx := range candidates[oldIdx] {
			if st.consumed.isSet(newIdx) {
				continue
			}

			s := m.score(oldLines, newLines, oldIdx, newIdx)
			if s <= exactMatchFloor {
				continue
			}

			if bestNew < 0 || newIdx < bestNew {
				bestNew = newIdx
				bestScore = s
			}
		}

		if bestNew >= 0 {
			st.matched[oldIdx] = Match{Old: oldIdx, New: bestNew, Score: bestScore}
			st.consumed.set(bestNew)
		}
	}
}

// passEnhancedStructural (pass 2) consumes the structural pre-analysis's
// three sub-mechanisms in order: (i) field-replacement proposals, (ii)
// rewritten-scope proportional-index search, and (iii) independent
// semantic-pattern proposals.
func (m *Matcher) passEnhancedStructural(oldLines, newLines []string, structure *structuralAnalysis, st *matchState) {
	m.applyFieldReplacements(oldLines, newLines, structure, st)
	m.applyRewrittenScopeSearch(oldLines, newLines, structure, st)
	m.applySemanticPatternProposals(oldLines, newLines, st)
}

// applyFieldReplacements is pass 2(i) (and, re-run verbatim, pass 5):
// score = max(raw_similarity, 0.4 + 0.5·replacement_confidence), capped at
// 1.0.
func (m *Matcher) applyFieldReplacements(oldLines, newLines []string, structure *structuralAnalysis, st *matchState) {
	for _, oldIdx := range sortedIntKeys(structure.fieldReplacements) {
		if _, done := st.matched[oldIdx]; done {
			continue
		}

		repl := structure.fieldReplacements[oldIdx]
		if st.consumed.isSet(repl.replacementLine) {
			continue
		}

		raw := m.score(oldLines, newLines, oldIdx, repl.replacementLine)

		s := structuralRewriteFloor + 0.5*repl.confidence
		if raw > s {
			s = raw
		}

		if s > 1.0 {
			s = 1.0
		}

		st.matched[oldIdx] = Match{Old: oldIdx, New: repl.replacementLine, Score: s, structural: true}
		st.consumed.set(repl.replacementLine)
	}
}

// applyRewrittenScopeSearch is pass 2(ii): for each old index inside a
// rewritten scope, compute its proportional position in the corresponding
// new scope, search ±structuralRewriteWindow lines around it, and accept
// the best unclaimed candidate boosted by +structuralRewriteBoost·
// rewrite_confidence if it clears structuralRewriteFloor.
func (m *Matcher) applyRewrittenScopeSearch(oldLines, newLines []string, structure *structuralAnalysis, st *matchState) {
	for _, name := range sortedStringKeys(structure.rewrites) {
		rw := structure.rewrites[name]

		oldSize := rw.oldEnd - rw.oldStart + 1
		newSize := rw.newEnd - rw.newStart + 1

		if oldSize <= 0 || newSize <= 0 {
			continue
		}

		for oldIdx := rw.oldStart; oldIdx <= rw.oldEnd && oldIdx < len(oldLines); oldIdx++ {
			if _, done := st.matched[oldIdx]; done {
				continue
			}

			proportional := rw.newStart + (oldIdx-rw.oldStart)*newSize/oldSize

			lo := proportional - structuralRewriteWindow
			if lo < rw.newStart {
				lo = rw.newStart
			}

			hi := proportional + structuralRewriteWindow
			if hi > rw.newEnd {
				hi = rw.newEnd
			}

			bestNew, bestScore := -1, 0.0

			for newIdx := lo; newIdx <= hi && newIdx < len(newLines); newIdx++ {
				if newIdx < 0 || st.consumed.isSet(newIdx) {
					continue
				}

				s := m.score(oldLines, newLines, oldIdx, newIdx) + structuralRewriteBoost*rw.confidence
				if s > bestScore {
					bestScore = s
					bestNew = newIdx
				}
			}

			if bestNew >= 0 && bestScore > structuralRewriteFloor {
				st.matched[oldIdx] = Match{Old: oldIdx, New: bestNew, Score: bestScore}
				st.consumed.set(bestNew)
			}
		}
	}
}

// applySemanticPatternProposals is pass 2(iii): for each catalog entry, in
// catalog order, pair any unmatched old line matching its old-shape with
// the best-scoring unclaimed new line matching its new-shape, accepting if
// base + semanticPatternBoostRate·pattern_confidence clears
// semanticPatternFloor.
func (m *Matcher) applySemanticPatternProposals(oldLines, newLines []string, st *matchState) {
	for _, pattern := range semanticPatternCatalog {
		for oldIdx, oldLine := range oldLines {
			if _, done := st.matched[oldIdx]; done {
				continue
			}

			if !pattern.oldPattern.MatchString(oldLine) {
				continue
			}

			bestNew, bestScore := -1, 0.0

			for newIdx, newLine := range newLines {
				if st.consumed.isSet(newIdx) {
					continue
				}

				if !pattern.newPattern.MatchString(newLine) {
					continue
				}

				s := m.score(oldLines, newLines, oldIdx, newIdx) + semanticPatternBoostRate*pattern.confidence
				if s > bestScore {
					bestScore = s
					bestNew = newIdx
				}
			}

			if bestNew >= 0 && bestScore > semanticPatternFloor {
				st.matched[oldIdx] = Match{Old: oldIdx, New: bestNew, Score: bestScore}
				st.consumed.set(bestNew)
			}
		}
	}
}

// passControlFlow (pass 3) matches remaining old lines containing a
// control-flow keyword against candidates that also contain one, keeping
// only candidates with raw similarity above controlFlowRawFloor and
// accepting the argmax of that similarity decayed by distance.
func (m *Matcher) passControlFlow(oldStruct, newStruct, oldLines, newLines []string, candidates CandidateSet, st *matchState) {
	for oldIdx := range oldLines {
		if _, done := st.matched[oldIdx]; done {
			continue
		}

		if !isControlFlowLine(oldStruct[oldIdx]) {
			continue
		}

		bestNew, bestAdjusted := -1, 0.0

		for _, newIdx := range candidates[oldIdx] {
			if st.consumed.isSet(newIdx) {
				continue
			}

			if !isControlFlowLine(newStruct[newIdx]) {
				continue
			}

			raw := m.score(oldLines, newLines, oldIdx, newIdx)
			if raw <= controlFlowRawFloor {
				continue
			}

			dist := oldIdx - newIdx
			if dist < 0 {
				dist = -dist
			}

			adjusted := raw * (1 - float64(dist)/controlFlowDecayWindow)

			if bestNew < 0 || adjusted > bestAdjusted {
				bestNew = newIdx
				bestAdjusted = adjusted
			}
		}

		if bestNew >= 0 {
			st.matched[oldIdx] = Match{Old: oldIdx, New: bestNew, Score: bestAdjusted}
			st.consumed.set(bestNew)
		}
	}
}

// passLocalNeighborhood (pass 4) considers, for each remaining old index,
// the intersection of its candidate list and the absolute window
// [i-localNeighborhoodWindow, i+localNeighborhoodWindow], accepting the
// argmax of similarity decayed by distance if it clears
// localNeighborhoodFloor.
func (m *Matcher) passLocalNeighborhood(oldLines, newLines []string, candidates CandidateSet, st *matchState) {
	for oldIdx := range oldLines {
		if _, done := st.matched[oldIdx]; done {
			continue
		}

		lo := oldIdx - localNeighborhoodWindow
		hi := oldIdx + localNeighborhoodWindow

		bestNew, bestAdjusted := -1, 0.0

		for _, newIdx := range candidates[oldIdx] {
			if newIdx < lo || newIdx > hi {
				continue
			}

			if st.consumed.isSet(newIdx) {
				continue
			}

			raw := m.score(oldLines, newLines, oldIdx, newIdx)

			dist := oldIdx - newIdx
			if dist < 0 {
				dist = -dist
			}

			adjusted := raw * (1 - float64(dist)/localNeighborhoodDecay)

			if bestNew < 0 || adjusted > bestAdjusted {
				bestNew = newIdx
				bestAdjusted = adjusted
			}
		}

		if bestNew >= 0 && bestAdjusted > localNeighborhoodFloor {
			st.matched[oldIdx] = Match{Old: oldIdx, New: bestNew, Score: bestAdjusted}
			st.consumed.set(bestNew)
		}
	}
}

// passRemainingStructural (pass 5) re-runs the field-replacement proposals
// from pass 2(i), unchanged, for whatever old indices are still unmatched
// and whose replacement target is still unclaimed.
func (m *Matcher) passRemainingStructural(oldLines, newLines []string, structure *structuralAnalysis, st *matchState) {
	m.applyFieldReplacements(oldLines, newLines, structure, st)
}

// passGlobal (pass 6) is the plain, unassisted candidate scan: every
// remaining old line is matched to its best-scoring unconsumed candidate,
// accepted only if it clears globalPassFloor.
func (m *Matcher) passGlobal(oldLines, newLines []string, candidates CandidateSet, st *matchState) {
	for oldIdx := range oldLines {
		if _, done := st.matched[oldIdx]; done {
			continue
		}

		bestNew, bestScore := -1, 0.0

		for _, newIdx := range candidates[oldIdx] {
			if st.consumed.isSet(newIdx) {
				continue
			}

			s := m.score(oldLines, newLines, oldIdx, newIdx)
			if s > bestScore {
				bestScore = s
				bestNew = newIdx
			}
		}

		if bestNew >= 0 && bestScore > globalPassFloor {
			st.matched[oldIdx] = Match{Old: oldIdx, New: bestNew, Score: bestScore}
			st.consumed.set(bestNew)
		}
	}
}

// passForced (pass 7) is the last resort: any old line still unmatched
// gets its best remaining candidate regardless of the main threshold, as
// long as the two lines share more than forcedPassFloor of similarity.
// Lines with no candidate clearing even that bar are left unmatched,
// surfacing as deletions.
func (m *Matcher) passForced(oldLines, newLines []string, candidates CandidateSet, st *matchState) {
	for oldIdx := range oldLines {
		if _, done := st.matched[oldIdx]; done {
			continue
		}

		bestNew, bestScore := -1, 0.0

		for _, newIdx := range candidates[oldIdx] {
			if st.consumed.isSet(newIdx) {
				continue
			}

			s := m.score(oldLines, newLines, oldIdx, newIdx)
			if s > bestScore {
				bestScore = s
				bestNew = newIdx
			}
		}

		if bestNew >= 0 && bestScore > forcedPassFloor {
			st.matched[oldIdx] = Match{Old: oldIdx, New: bestNew, Score: bestScore}
			st.consumed.set(bestNew)
		}
	}
}

// nearestMatchedAnchor finds the already-matched old line closest to
// oldIdx, preferring the smaller distance and, on a tie, the earlier
// index. Used by reorder.go's global-window fallback.
func nearestMatchedAnchor(oldIdx int, matched map[int]Match) (Match, bool) {
	best := Match{}
	bestDist := -1
	found := false

	for idx, mt := range matched {
		d := idx - oldIdx
		if d < 0 {
			d = -d
		}

		if !found || d < bestDist || (d == bestDist && idx < best.Old) {
			best = mt
			bestDist = d
			found = true
		}
	}

	return best, found
}

// sortedIntKeys returns m's keys in ascending order, for deterministic
// iteration over the structural pre-analysis's per-index maps.
func sortedIntKeys(m map[int]fieldReplacement) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Ints(keys)

	return keys
}

// sortedStringKeys returns m's keys in ascending order, for deterministic
// iteration over the structural pre-analysis's per-scope maps.
func sortedStringKeys(m map[string]logicRewrite) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
