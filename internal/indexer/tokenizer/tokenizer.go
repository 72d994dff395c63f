// Package tokenizer provides text tokenisation for the search engine.
// Text is split on the ASCII space only; no case folding, stemming or
// Unicode normalisation is applied, so terms are matched byte for byte.
package tokenizer

import "strings"

// SplitIntoWords breaks text into the non-empty runs between spaces.
func SplitIntoWords(text string) []string {
	words := make([]string, 0, strings.Count(text, " ")+1)
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] == ' ' {
			if start >= 0 {
				words = append(words, text[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, text[start:])
	}
	return words
}

// IsValidWord reports whether text may be indexed or queried. A lone "-"
// is rejected, as is any byte in the control range 0x00-0x1F. Bytes of
// multi-byte UTF-8 sequences are always accepted.
func IsValidWord(text string) bool {
	if text == "-" {
		return false
	}
	for i := 0; i < len(text); i++ {
		if text[i] < ' ' {
			return false
		}
	}
	return true
}
