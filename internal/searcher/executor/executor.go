// Package executor scores documents against a parsed query using TF-IDF
// over the inverted index and applies minus-term exclusion.
package executor

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/ranker"
)

// Executor reads an index and the matching document store. Every id in
// the index must be present in the store.
type Executor struct {
	index *index.InvertedIndex
	store *index.DocumentStore
}

func New(ix *index.InvertedIndex, store *index.DocumentStore) *Executor {
	return &Executor{
		index: ix,
		store: store,
	}
}

// FindAllDocuments returns every document that has at least one plus term,
// passes pred, and has none of the minus terms. Relevance is the sum of
// tf*idf over the matching plus terms, added in ascending term order so the
// float sum is reproducible. Results are in ascending id order.
func (e *Executor) FindAllDocuments(q *parser.Query, pred document.Predicate) []document.Document {
	totalDocs := e.store.Count()
	relevance := make(map[int]float64)
	for _, word := range q.Plus() {
		postings, ok := e.index.Postings(word)
		if !ok {
			continue
		}
		idf := ranker.IDF(totalDocs, len(postings))
		for docID, tf := range postings {
			rec := e.store.Record(docID)
			if pred(docID, rec.Status, rec.Rating) {
				relevance[docID] += tf * idf
			}
		}
	}
	for word := range q.MinusWords {
		postings, ok := e.index.Postings(word)
		if !ok {
			continue
		}
		for docID := range postings {
			delete(relevance, docID)
		}
	}

	ids := make([]int, 0, len(relevance))
	for id := range relevance {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	result := make([]document.Document, 0, len(ids))
	for _, id := range ids {
		result = append(result, document.Document{
			ID:        id,
			Relevance: relevance[id],
			Rating:    e.store.Record(id).Rating,
		})
	}
	return result
}

// MatchDocument returns the plus terms of q present in docID, in ascending
// order, and the document's status. The list is empty when any minus term
// is present. docID must be stored.
func (e *Executor) MatchDocument(q *parser.Query, docID int) ([]string, document.Status) {
	status := e.store.Record(docID).Status
	for word := range q.MinusWords {
		if e.index.Contains(word, docID) {
			return []string{}, status
		}
	}
	matched := make([]string, 0, len(q.PlusWords))
	for _, word := range q.Plus() {
		if e.index.Contains(word, docID) {
			matched = append(matched, word)
		}
	}
	return matched, status
}
