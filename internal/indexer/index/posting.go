package index

import "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/document"

// Posting is one document's entry in a term's posting list.
type Posting struct {
	DocID    int
	TermFreq float64
}

// PostingList is ordered by ascending DocID.
type PostingList []Posting

// Record is the per-document metadata kept by the DocumentStore.
type Record struct {
	Rating int
	Status document.Status
}
