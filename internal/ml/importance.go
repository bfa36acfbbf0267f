package ml

import (
	"sort"
)

// Importance is the global, non-signed importance of one feature.
type Importance struct {
	Feature string  `json:"feature"`
	Score   float64 `json:"score"`
}

// RankImportances pairs each schema feature with its score and sorts the
// result by score descending. Equal scores keep schema order. Features
// without a score get zero.
func RankImportances(schema FeatureSchema, scores []float64) []Importance {
	out := make([]Importance, len(schema))
	for i, name := range schema {
		out[i] = Importance{Feature: name}
		if i < len(scores) {
			out[i].Score = scores[i]
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	return out
}

// TopFeatures returns the names of the n most important features.
func TopFeatures(ranked []Importance, n int) []string {
	if n > len(ranked) {
		n = len(ranked)
	}
	if n < 0 {
		n = 0
	}
	result := make([]string, n)
	for i := 0; i < n; i++ {
		result[i] = ranked[i].Feature
	}
	return result
}
