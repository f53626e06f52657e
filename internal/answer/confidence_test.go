package answer

import (
	"math"
	"testing"
)

func Test_Confidence(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		scores []float64
		want   float64
	}{
		{"no chunks", nil, 0},
		{"perfect match", []float64{1.0}, 1.0},
		{"single mid score", []float64{0.0}, 0.5},
		{"opposite vectors clamp to zero", []float64{-1.0}, 0},
		// normalized: 0.9, 0.7 → mean 0.8, max 0.9 → 0.6*0.8+0.4*0.9 = 0.84
		{"mean/max blend", []float64{0.8, 0.4}, 0.84},
		{"out of range clamps", []float64{2.0, -3.0}, 0.7},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Confidence(tc.scores)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Confidence(%v) = %v, want %v", tc.scores, got, tc.want)
			}
		})
	}
}

func Test_Confidence_Bounds(t *testing.T) {
	t.Parallel()
	inputs := [][]float64{
		{-1, -1, -1},
		{1, 1, 1},
		{0.33, -0.9, 0.72},
		{100, -100},
	}
	for _, scores := range inputs {
		got := Confidence(scores)
		if got < 0 || got > 1 {
			t.Errorf("Confidence(%v) = %v out of [0,1]", scores, got)
		}
	}
}
