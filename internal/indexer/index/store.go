package index

import (
	"fmt"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/document"
)

// DocumentStore holds the metadata of every added document and enumerates
// ids in ascending order regardless of insertion order.
type DocumentStore struct {
	records map[int]Record
	ids     []int
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		records: make(map[int]Record),
	}
}

// Add stores rec under id. Callers check Has first; adding an existing id
// is a programming error.
func (s *DocumentStore) Add(id int, rec Record) {
	if _, exists := s.records[id]; exists {
		panic(fmt.Sprintf("index: document %d already stored", id))
	}
	s.records[id] = rec
	pos := sort.SearchInts(s.ids, id)
	s.ids = append(s.ids, 0)
	copy(s.ids[pos+1:], s.ids[pos:])
	s.ids[pos] = id
}

func (s *DocumentStore) Has(id int) bool {
	_, ok := s.records[id]
	return ok
}

// Record returns the metadata of id, which must be present.
func (s *DocumentStore) Record(id int) Record {
	rec, ok := s.records[id]
	if !ok {
		panic(fmt.Sprintf("index: document %d not stored", id))
	}
	return rec
}

func (s *DocumentStore) Count() int {
	return len(s.ids)
}

// IDAt returns the id at the zero-based position in ascending id order, or
// document.InvalidID when ordinal is out of range.
func (s *DocumentStore) IDAt(ordinal int) int {
	if ordinal < 0 || ordinal >= len(s.ids) {
		return document.InvalidID
	}
	return s.ids[ordinal]
}
