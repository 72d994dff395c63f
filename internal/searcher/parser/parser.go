// Package parser turns raw query text into plus and minus term sets.
package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
)

// StopWords reports whether a term is excluded from matching.
type StopWords interface {
	Contains(word string) bool
}

// Query is a parsed query. Both sets are deduplicated and never contain
// stop words.
type Query struct {
	PlusWords  map[string]struct{}
	MinusWords map[string]struct{}
	RawQuery   string
}

// Plus returns the plus terms in ascending order.
func (q *Query) Plus() []string {
	return sortedKeys(q.PlusWords)
}

// Minus returns the minus terms in ascending order.
func (q *Query) Minus() []string {
	return sortedKeys(q.MinusWords)
}

// Normalized renders the query in a canonical form: sorted plus terms,
// then sorted minus terms each prefixed by "-".
func (q *Query) Normalized() string {
	parts := q.Plus()
	for _, w := range q.Minus() {
		parts = append(parts, "-"+w)
	}
	return strings.Join(parts, " ")
}

type queryWord struct {
	data    string
	isMinus bool
	isStop  bool
}

// Parse splits raw on spaces and classifies every word. It fails with
// ErrInvalidQuery when raw or any word contains a control character, when
// a word is a lone "-", or when a word starts with "--".
func Parse(raw string, stop StopWords) (*Query, error) {
	if !tokenizer.IsValidWord(raw) {
		return nil, fmt.Errorf("%w: query contains invalid characters", apperrors.ErrInvalidQuery)
	}
	q := &Query{
		PlusWords:  make(map[string]struct{}),
		MinusWords: make(map[string]struct{}),
		RawQuery:   raw,
	}
	for _, word := range tokenizer.SplitIntoWords(raw) {
		qw, err := parseWord(word, stop)
		if err != nil {
			return nil, err
		}
		if qw.isStop {
			continue
		}
		if qw.isMinus {
			q.MinusWords[qw.data] = struct{}{}
		} else {
			q.PlusWords[qw.data] = struct{}{}
		}
	}
	return q, nil
}

func parseWord(text string, stop StopWords) (queryWord, error) {
	if !tokenizer.IsValidWord(text) {
		return queryWord{}, fmt.Errorf("%w: word %q is not valid", apperrors.ErrInvalidQuery, text)
	}
	isMinus := false
	if text[0] == '-' {
		if text[1] == '-' {
			return queryWord{}, fmt.Errorf("%w: word %q has a double minus", apperrors.ErrInvalidQuery, text)
		}
		isMinus = true
		text = text[1:]
	}
	return queryWord{
		data:    text,
		isMinus: isMinus,
		isStop:  stop.Contains(text),
	}, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
