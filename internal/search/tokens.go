// Package search normalizes free text and extracts the word/number tokens
// used both when indexing a task and when matching a search query.
package search

import (
	"strings"
	"unicode"
)

const (
	// MaxIndexTokens caps the tokens kept for a task and for a tokenized string
	MaxIndexTokens = 50
	// MaxQueryTokens caps the tokens sent to the store's any-of containment filter
	MaxQueryTokens = 10
)

// Normalize lowercases and trims text
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Tokenize returns the unique maximal runs of letters and digits in text,
// case-folded, in first-seen order, truncated to MaxIndexTokens.
func Tokenize(text string) []string {
	text = Normalize(text)
	tokens := make([]string, 0, 8)
	seen := make(map[string]struct{})

	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		tok := text[start:end]
		start = -1
		if _, ok := seen[tok]; ok {
			return
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}

	for i, r := range text {
		if len(tokens) >= MaxIndexTokens {
			break
		}
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	if len(tokens) < MaxIndexTokens {
		flush(len(text))
	}

	return tokens
}

// BuildSearchTokens computes the indexed token set for a task
func BuildSearchTokens(title, description string) []string {
	return Tokenize(title + " " + description)
}

// QueryTokens tokenizes a search string for the store-side pre-filter
func QueryTokens(query string) []string {
	tokens := Tokenize(query)
	if len(tokens) > MaxQueryTokens {
		tokens = tokens[:MaxQueryTokens]
	}
	return tokens
}

// Haystack is the normalized text a search string is matched against
func Haystack(title, description string) string {
	return Normalize(title + " " + description)
}

// Matches reports whether query hits the haystack, either as a contiguous
// substring or with every query token present somewhere.
func Matches(haystack, query string) bool {
	needle := Normalize(query)
	if needle == "" || haystack == "" {
		return false
	}
	if strings.Contains(haystack, needle) {
		return true
	}
	wanted := Tokenize(needle)
	if len(wanted) == 0 {
		return false
	}
	for _, tok := range wanted {
		if !strings.Contains(haystack, tok) {
			return false
		}
	}
	return true
}
