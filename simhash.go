package lhdiff

import (
	"container/heap"
	"math/bits"
	"regexp"

	"github.com/zeebo/xxh3"
)

// simhashTokenRegex extracts the tokens a line's SimHash is built from:
// runs of word characters, treated as the line's feature set. This is
// coarser than a real lexer on purpose — SimHash only needs a stable,
// line-local feature set, not a correct tokenization.
var simhashTokenRegex = regexp.MustCompile(`\w+`)

// fingerprintLines computes and sets the Fingerprint field of every line
// in lines, from its Normalized text.
func fingerprintLines(lines []Line) {
	for i := range lines {
		lines[i].Fingerprint = SimHash(lines[i].Normalized)
	}
}

// SimHash computes a 64-bit locality-sensitive fingerprint of text:
// tokenize, hash each token to 64 bits with xxh3, accumulate each hash's
// bits with +1/-1 weighting into 64 per-bit counters, then collapse the
// counters' signs into the result. Two texts with highly overlapping
// feature sets end up with fingerprints a small Hamming distance apart.
func SimHash(text string) uint64 {
	var counters [64]int

	tokens := simhashTokenRegex.FindAllString(text, -1)
	for _, tok := range tokens {
		h := xxh3.HashString(tok)

		for bit := 0; bit < 64; bit++ {
			if h&(1<<uint(bit)) != 0 {
				counters[bit]++
			} else {
				counters[bit]--
			}
		}
	}

	var fingerprint uint64

	for bit := 0; bit < 64; bit++ {
		if counters[bit] > 0 {
			fingerprint |= 1 << uint(bit)
		}
	}

	return fingerprint
}

// HammingDistance returns the number of differing bits between a and b.
func HammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// candidateHeapEntry is one element of the bounded max-heap used to track
// the k nearest new-line indices while scanning.
type candidateHeapEntry struct {
	index    int
	distance int
}

// candidateMaxHeap is a max-heap on distance (ties broken by larger index
// first, so the heap's root is always the worst of the current top-k and
// can be evicted in O(log k)).
type candidateMaxHeap []candidateHeapEntry

func (h candidateMaxHeap) Len() int { return len(h) }

func (h candidateMaxHeap) Less(i, j int) bool {
	if h[i].distance != h[j].distance {
		return h[i].distance > h[j].distance
	}

	return h[i].index > h[j].index
}

func (h candidateMaxHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateMaxHeap) Push(x any) {
	*h = append(*h, x.(candidateHeapEntry))
}

func (h *candidateMaxHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]

	return item
}

// SimHashIndex holds the fingerprints of one LineSide (conventionally the
// new side) and answers top-k nearest-neighbor queries by Hamming distance.
type SimHashIndex struct {
	fingerprints []uint64
}

// NewSimHashIndex builds a SimHashIndex over normalized, already computing
// each line's fingerprint.
func NewSimHashIndex(normalizedLines []string) *SimHashIndex {
	fingerprints := make([]uint64, len(normalizedLines))
	for i, line := range normalizedLines {
		fingerprints[i] = SimHash(line)
	}

	return &SimHashIndex{fingerprints: fingerprints}
}

// TopK returns up to k indices into the indexed side whose fingerprints
// are nearest to targetFingerprint by Hamming distance, ordered by
// ascending distance with ties broken by ascending index.
func (idx *SimHashIndex) TopK(targetFingerprint uint64, k int) []int {
	if k <= 0 || len(idx.fingerprints) == 0 {
		return nil
	}

	h := make(candidateMaxHeap, 0, k)

	for i, fp := range idx.fingerprints {
		d := HammingDistance(targetFingerprint, fp)

		switch {
		case h.Len() < k:
			heap.Push(&h, candidateHeapEntry{index: i, distance: d})
		case d < h[0].distance || (d == h[0].distance && i < h[0].index):
			heap.Pop(&h)
			heap.Push(&h, candidateHeapEntry{index: i, distance: d})
		}
	}

	entries := make([]candidateHeapEntry, len(h))
	copy(entries, h)

	// Sort ascending by distance, then index; the heap only guarantees the
	// worst element is at the root, not full order.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0; j-- {
			a, b := entries[j-1], entries[j]
			if a.distance < b.distance || (a.distance == b.distance && a.index < b.index) {
				break
			}

			entries[j-1], entries[j] = entries[j], entries[j-1]
		}
	}

	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.index
	}

	return out
}

// BuildCandidates computes, for every line in oldNormalized, the k nearest
// new-line indices by SimHash Hamming distance on newNormalized. It builds
// one SimHashIndex over the new side and reuses it for every old line.
func BuildCandidates(oldNormalized, newNormalized []string, k int) CandidateSet {
	index := NewSimHashIndex(newNormalized)

	candidates := make(CandidateSet, len(oldNormalized))

	for i, line := range oldNormalized {
		fp := SimHash(line)
		candidates[i] = index.TopK(fp, k)
	}

	return candidates
}
