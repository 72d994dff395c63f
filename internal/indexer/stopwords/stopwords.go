// Package stopwords holds the append-only set of terms excluded from both
// indexing and query matching.
package stopwords

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/tokenizer"
)

// Set is a collection of stop words. The zero value is not usable; use New
// or FromText.
type Set struct {
	words map[string]struct{}
}

// New builds a Set from words, dropping empty entries.
func New(words ...string) *Set {
	s := &Set{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		if w != "" {
			s.words[w] = struct{}{}
		}
	}
	return s
}

// FromText builds a Set from a space-delimited list.
func FromText(text string) *Set {
	return New(tokenizer.SplitIntoWords(text)...)
}

// Add unions every space-delimited word of text into the set. No validity
// filtering is applied.
func (s *Set) Add(text string) {
	for _, w := range tokenizer.SplitIntoWords(text) {
		s.words[w] = struct{}{}
	}
}

func (s *Set) Contains(word string) bool {
	_, ok := s.words[word]
	return ok
}

func (s *Set) Len() int {
	return len(s.words)
}

// Words returns the stop words in ascending order.
func (s *Set) Words() []string {
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Filter returns words with every stop word removed, preserving order and
// repeats.
func (s *Set) Filter(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !s.Contains(w) {
			out = append(out, w)
		}
	}
	return out
}
