// Package similarity ranks embedded items against a query vector by cosine
// similarity.
package similarity

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Embedded is anything that may carry an embedding per provider.
type Embedded interface {
	EmbeddingFor(providerID string) ([]float32, bool)
}

// Match is a scored item.
type Match[T Embedded] struct {
	Item  T
	Score float64
}

// Cosine returns (a·b)/(‖a‖‖b‖). Vectors of different length, or with a zero
// norm, score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	x, y := toFloat64(a), toFloat64(b)
	na, nb := floats.Norm(x, 2), floats.Norm(y, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(x, y) / (na * nb)
}

// gonum operates on float64.
func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// Rank scores every item that has a non-empty embedding for providerID
// and returns at most n of them by descending score; n <= 0 keeps all.
// Items without that provider's embedding, or whose dimension differs from
// the query, are skipped rather than scored. Equal scores keep input order.
func Rank[T Embedded](query []float32, items []T, providerID string, n int) []Match[T] {
	matches := make([]Match[T], 0, len(items))
	for _, item := range items {
		vec, ok := item.EmbeddingFor(providerID)
		if !ok || len(vec) != len(query) {
			continue
		}
		matches = append(matches, Match[T]{Item: item, Score: Cosine(query, vec)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if n > 0 && len(matches) > n {
		matches = matches[:n]
	}
	return matches
}

// Items strips the scores off matches.
func Items[T Embedded](matches []Match[T]) []T {
	out := make([]T, len(matches))
	for i, m := range matches {
		out[i] = m.Item
	}
	return out
}
