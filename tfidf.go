package lhdiff

import (
	"math"
	"regexp"
	"strings"
	"sync"
)

// contextTokenRegex is the tokenizer used for TF-IDF vectorization of
// context strings — deliberately the same shape as simhashTokenRegex so
// the two stages agree on what a "token" is.
var contextTokenRegex = regexp.MustCompile(`\w+`)

// emptyVocabularyOnce guards the one-time advisory logged the first time
// context_similarity hits sklearn's "empty vocabulary" edge case (both
// context strings tokenize to nothing meaningful).
var emptyVocabularyOnce sync.Once

// tfidfVector is a sparse term -> weight vector over a tiny, per-call
// corpus (the two context strings being compared).
type tfidfVector map[string]float64

// cosineSimilarity returns the cosine of the angle between a and b, using
// only the keys present in either vector. Returns 0 if either vector has
// zero norm.
func cosineSimilarity(a, b tfidfVector) float64 {
	var dot, normA, normB float64

	for term, wa := range a {
		if wb, ok := b[term]; ok {
			dot += wa * wb
		}

		normA += wa * wa
	}

	for _, wb := range b {
		normB += wb * wb
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// contextSimilarity computes cosine similarity over a TF-IDF
// vectorization of aContext and bContext, the window of text surrounding
// two candidate lines. Empty input on either side returns 0. The
// "corpus" for IDF purposes is the two strings themselves, smoothed the
// way scikit-learn's default TfidfVectorizer smooths IDF
// (idf = ln((1+N)/(1+df)) + 1, N=2), so a term appearing in only one of
// the two strings is still weighted, and a term common to both isn't
// erased to zero.
func contextSimilarity(aContext, bContext string) float64 {
	aTrim := strings.TrimSpace(aContext)
	bTrim := strings.TrimSpace(bContext)

	if aTrim == "" || bTrim == "" {
		return 0
	}

	aTokens := contextTokenRegex.FindAllString(aContext, -1)
	bTokens := contextTokenRegex.FindAllString(bContext, -1)

	if len(aTokens) == 0 && len(bTokens) == 0 {
		emptyVocabularyOnce.Do(func() {
			advisoryLogger.Printf("empty vocabulary in context similarity, treating as 0.0")
		})

		return 0
	}

	df := documentFrequency(aTokens, bTokens)

	aVec := tfidfWeighted(aTokens, df)
	bVec := tfidfWeighted(bTokens, df)

	return cosineSimilarity(aVec, bVec)
}

// documentFrequency counts, for each term appearing in either document, in
// how many of the two documents it appears (0, 1, or 2).
func documentFrequency(a, b []string) map[string]int {
	df := map[string]int{}

	for term := range uniqueSet(a) {
		df[term]++
	}

	for term := range uniqueSet(b) {
		df[term]++
	}

	return df
}

// uniqueSet returns the distinct tokens in tokens as a set.
func uniqueSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}

	return set
}

// tfidfWeighted builds a TF-IDF vector for one document's tokens, given the
// document frequency table computed over the 2-document corpus.
func tfidfWeighted(tokens []string, df map[string]int) tfidfVector {
	const corpusSize = 2

	tf := map[string]int{}
	for _, t := range tokens {
		tf[t]++
	}

	vec := make(tfidfVector, len(tf))
	for term, count := range tf {
		idf := math.Log(float64(corpusSize+1)/float64(df[term]+1)) + 1
		vec[term] = float64(count) * idf
	}

	return vec
}
