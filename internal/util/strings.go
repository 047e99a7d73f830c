// Package util provides common utility functions used across the codebase.
package util

import "strings"

// JoinOrNone joins strings with ", " or returns "(none)" for empty slices.
// This is useful for displaying lists of shapes, option names, or other
// items where an empty list should show a placeholder rather than nothing.
func JoinOrNone(items []string) string {
	return JoinOrDefault(items, "(none)")
}

// JoinOrDefault joins strings with ", " or returns the default value for empty slices.
func JoinOrDefault(items []string, def string) string {
	if len(items) == 0 {
		return def
	}
	return strings.Join(items, ", ")
}

// Pluralize returns singular if count is 1, otherwise plural.
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// LevenshteinDistance returns the minimum number of single-character edits
// (insertions, deletions, substitutions) needed to transform a into b.
func LevenshteinDistance(a, b string) int {
	ar := []rune(a)
	br := []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}

	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ar); i++ {
		curr[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(br)]
}

// SuggestSimilar returns the candidates within maxDist edits of input,
// compared case-insensitively and in candidate order. Longer names get a
// tighter threshold so short typos do not match everything.
func SuggestSimilar(input string, candidates []string, maxDist int) []string {
	if input == "" {
		return nil
	}
	lower := strings.ToLower(input)

	var matches []string
	for _, c := range candidates {
		limit := min(maxDist, max(len(lower), len(c))/2)
		if LevenshteinDistance(lower, strings.ToLower(c)) <= limit {
			matches = append(matches, c)
		}
	}
	return matches
}
