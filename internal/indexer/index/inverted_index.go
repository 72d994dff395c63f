package index

import "sort"

// InvertedIndex maps each term to the documents containing it and the
// term's frequency within each of them.
type InvertedIndex struct {
	terms map[string]map[int]float64
}

func NewInvertedIndex() *InvertedIndex {
	return &InvertedIndex{
		terms: make(map[string]map[int]float64),
	}
}

// AddDocument records words for docID. Every occurrence contributes
// 1/len(words), so the frequencies contributed by one document sum to 1.
// An empty words slice adds nothing.
func (ix *InvertedIndex) AddDocument(docID int, words []string) {
	if len(words) == 0 {
		return
	}
	inc := 1 / float64(len(words))
	for _, w := range words {
		docs, ok := ix.terms[w]
		if !ok {
			docs = make(map[int]float64)
			ix.terms[w] = docs
		}
		docs[docID] += inc
	}
}

// Postings returns the documents containing term keyed by id. The map is
// owned by the index and must not be modified.
func (ix *InvertedIndex) Postings(term string) (map[int]float64, bool) {
	docs, ok := ix.terms[term]
	return docs, ok
}

// PostingList returns the postings of term ordered by document id.
func (ix *InvertedIndex) PostingList(term string) PostingList {
	docs, ok := ix.terms[term]
	if !ok {
		return nil
	}
	list := make(PostingList, 0, len(docs))
	for id, tf := range docs {
		list = append(list, Posting{DocID: id, TermFreq: tf})
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].DocID < list[j].DocID
	})
	return list
}

// DocFrequency returns the number of documents containing term.
func (ix *InvertedIndex) DocFrequency(term string) int {
	return len(ix.terms[term])
}

// Contains reports whether docID has a posting for term.
func (ix *InvertedIndex) Contains(term string, docID int) bool {
	_, ok := ix.terms[term][docID]
	return ok
}

// TermFrequencies returns every term of docID with its frequency.
func (ix *InvertedIndex) TermFrequencies(docID int) map[string]float64 {
	out := make(map[string]float64)
	for term, docs := range ix.terms {
		if tf, ok := docs[docID]; ok {
			out[term] = tf
		}
	}
	return out
}

// Terms returns the number of distinct indexed terms.
func (ix *InvertedIndex) Terms() int {
	return len(ix.terms)
}
