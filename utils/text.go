package utils

import (
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

// Tokenize lowercases text and returns its distinct terms in first-seen
// order, dropping stop words and terms shorter than minLen.
func Tokenize(text string, stopWords []string, minLen int) []string {
	stops := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		stops[w] = struct{}{}
	}

	seen := make(map[string]struct{})
	var terms []string
	for _, tok := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if len(tok) < minLen {
			continue
		}
		if _, ok := stops[tok]; ok {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		terms = append(terms, tok)
	}
	return terms
}

// ContainsToken reports whether term occurs as a whole token in text.
// Substring matching alone would let "app" hit "happy".
func ContainsToken(text, term string) bool {
	for _, tok := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if tok == term {
			return true
		}
	}
	return false
}

// Truncate cuts s to at most maxLen characters, appending an ellipsis
// when anything was dropped.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
