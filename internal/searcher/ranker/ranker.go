package ranker

import (
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/document"
)

const (
	// MaxResultDocumentCount caps every ranked result list.
	MaxResultDocumentCount = 5
	// RelevanceEpsilon is the distance under which two relevances are
	// treated as equal and rating decides the order.
	RelevanceEpsilon = 1e-6
)

// Rank orders docs by relevance descending, falling back to rating
// descending for relevances within RelevanceEpsilon, and truncates to
// limit. A non-positive limit means MaxResultDocumentCount. docs is sorted
// in place.
func Rank(docs []document.Document, limit int) []document.Document {
	if limit <= 0 || limit > MaxResultDocumentCount {
		limit = MaxResultDocumentCount
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return Less(docs[i], docs[j])
	})
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs
}

// Less reports whether a ranks ahead of b.
func Less(a, b document.Document) bool {
	if math.Abs(a.Relevance-b.Relevance) < RelevanceEpsilon {
		return a.Rating > b.Rating
	}
	return a.Relevance > b.Relevance
}

// IDF returns ln(totalDocs/docFreq).
func IDF(totalDocs, docFreq int) float64 {
	return math.Log(float64(totalDocs) / float64(docFreq))
}
