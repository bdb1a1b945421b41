package topsis

import "math"

// Separations returns the per-criterion absolute gaps between every weighted
// value and the positive and negative ideal profiles.
func (ev *Evaluation) Separations() (positive, negative [][]float64) {
	m, n := ev.Weighted.Dims()
	positive = make([][]float64, m)
	negative = make([][]float64, m)
	for i := 0; i < m; i++ {
		positive[i] = make([]float64, n)
		negative[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			v := ev.Weighted.At(i, j)
			positive[i][j] = math.Abs(v - ev.PositiveIdeal[j])
			negative[i][j] = math.Abs(v - ev.NegativeIdeal[j])
		}
	}
	return positive, negative
}

// Proximity returns the per-criterion closeness matrix. A cell whose value
// equals both ideals gets IndifferentScore.
func (ev *Evaluation) Proximity() [][]float64 {
	positive, negative := ev.Separations()
	out := make([][]float64, len(positive))
	for i := range positive {
		out[i] = make([]float64, len(positive[i]))
		for j := range positive[i] {
			out[i][j] = closenessRatio(positive[i][j], negative[i][j])
		}
	}
	return out
}

// Dims returns the number of alternatives and criteria evaluated.
func (ev *Evaluation) Dims() (alternatives, criteria int) {
	return ev.Weighted.Dims()
}
