// Package similarity scores lexical closeness of two strings with a bigram
// Dice coefficient. Scores are in [0,1], symmetric, and deterministic, which
// the search ranking and request deduplication both rely on.
package similarity

import "strings"

// Score returns the bigram Dice coefficient of a and b after normalization.
// Identical inputs score 1, including two empty strings; strings shorter
// than one bigram only match exactly.
func Score(a, b string) float64 {
	a = normalize(a)
	b = normalize(b)

	if a == b {
		return 1
	}
	if len(a) < 2 || len(b) < 2 {
		return 0
	}

	bigramsA := bigrams(a)
	bigramsB := bigrams(b)

	var matches int
	for bigram, countA := range bigramsA {
		countB := bigramsB[bigram]
		if countA < countB {
			matches += countA
		} else {
			matches += countB
		}
	}

	totalA := len(a) - 1
	totalB := len(b) - 1
	return float64(2*matches) / float64(totalA+totalB)
}

func bigrams(value string) map[string]int {
	counts := make(map[string]int, len(value))
	for i := 0; i+2 <= len(value); i++ {
		counts[value[i:i+2]]++
	}
	return counts
}

func normalize(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}
