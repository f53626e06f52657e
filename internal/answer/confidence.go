package answer

import "math"

// Confidence summarizes retrieval quality as a single [0, 1] score. Raw
// cosine similarities in [-1, 1] are shifted to [0, 1] via (s+1)/2 and
// clamped, then blended as 0.6*mean + 0.4*max: the mean reflects how well the
// whole context matches, the max rewards one strong hit. The result is
// rounded to two decimals. No retrieved chunks means zero confidence.
func Confidence(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}

	sum := 0.0
	best := 0.0
	for _, s := range scores {
		n := (s + 1) / 2
		if n < 0 {
			n = 0
		}
		if n > 1 {
			n = 1
		}
		sum += n
		if n > best {
			best = n
		}
	}
	mean := sum / float64(len(scores))

	return math.Round((0.6*mean+0.4*best)*100) / 100
}
