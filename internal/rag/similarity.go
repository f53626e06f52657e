package rag

import (
	"math"
	"sort"
)

const (
	// DefaultLambda is the default MMR relevance/diversity trade-off.
	DefaultLambda = 0.7

	// DefaultTopK is the number of chunks selected for generation context.
	DefaultTopK = 5

	// DefaultScoredTopK is the number of chunks selected when similarity
	// scores are also fed into confidence estimation.
	DefaultScoredTopK = 8

	// normEpsilon guards the cosine denominator against zero-norm vectors.
	normEpsilon = 1e-12
)

// Cosine returns the cosine similarity dot(a,b) / (||a||*||b||) of two
// vectors. Mismatched lengths compare over the shorter prefix; a zero-norm
// vector yields a score of ~0 rather than dividing by zero.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom < normEpsilon {
		denom = normEpsilon
	}
	return dot / denom
}

// Selection pairs a candidate index with its cosine relevance to the query.
type Selection struct {
	Index     int
	Relevance float64
}

// MMR selects up to topK candidate indices by Maximal Marginal Relevance:
// each round picks the unselected candidate maximizing
//
//	lambda*relevance - (1-lambda)*max(similarity to already selected)
//
// The diversity term is zero on the first pick. Candidates are considered in
// descending-relevance order with the original index as tie-break, so ties go
// to the first candidate encountered in that order and selection is fully
// deterministic. With lambda = 1 the result is pure relevance ranking.
func MMR(query []float32, candidates [][]float32, topK int, lambda float64) []Selection {
	if topK <= 0 || len(candidates) == 0 {
		return nil
	}
	if topK > len(candidates) {
		topK = len(candidates)
	}

	order := make([]Selection, len(candidates))
	for i, c := range candidates {
		order[i] = Selection{Index: i, Relevance: Cosine(query, c)}
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Relevance != order[j].Relevance {
			return order[i].Relevance > order[j].Relevance
		}
		return order[i].Index < order[j].Index
	})

	selected := make([]Selection, 0, topK)
	taken := make(map[int]bool, topK)

	for len(selected) < topK {
		best := -1
		bestScore := math.Inf(-1)
		for oi, c := range order {
			if taken[c.Index] {
				continue
			}
			div := 0.0
			for _, s := range selected {
				if sim := Cosine(candidates[c.Index], candidates[s.Index]); sim > div {
					div = sim
				}
			}
			score := lambda*c.Relevance - (1-lambda)*div
			if score > bestScore {
				bestScore = score
				best = oi
			}
		}
		if best < 0 {
			break
		}
		selected = append(selected, order[best])
		taken[order[best].Index] = true
	}

	return selected
}
