package topsis

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Problem bundles the three inputs of a ranking request. The slices are
// never modified by this package.
type Problem struct {
	Matrix  [][]float64 // rows are alternatives, columns are criteria
	Weights []float64   // one positive weight per criterion
	Benefit []bool      // true for benefit criteria, false for cost criteria
}

// Dims returns the number of alternatives and criteria. It assumes the
// matrix is rectangular; call Validate first.
func (p Problem) Dims() (alternatives, criteria int) {
	if len(p.Matrix) == 0 {
		return 0, 0
	}
	return len(p.Matrix), len(p.Matrix[0])
}

// Validate checks every input constraint before any numeric work happens.
// Shape problems are reported first, then vector lengths, then values.
func (p Problem) Validate() error {
	if len(p.Matrix) == 0 {
		return invalid("matrix", -1, -1, "has no alternatives")
	}
	n := len(p.Matrix[0])
	if n == 0 {
		return invalid("matrix", -1, -1, "has no criteria")
	}
	for i, row := range p.Matrix {
		if len(row) != n {
			return invalid("matrix", i, -1, "has %d values, want %d", len(row), n)
		}
	}

	if len(p.Weights) != n {
		return mismatch("weights", n, len(p.Weights))
	}
	if len(p.Benefit) != n {
		return mismatch("benefit", n, len(p.Benefit))
	}

	for i, row := range p.Matrix {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return invalid("matrix", i, j, "is not finite (%v)", v)
			}
			if v < 0 {
				return invalid("matrix", i, j, "is negative (%v)", v)
			}
		}
	}

	col := make([]float64, len(p.Matrix))
	for j := 0; j < n; j++ {
		for i, row := range p.Matrix {
			col[i] = row[j]
		}
		if floats.Max(col) == 0 {
			return invalid("matrix", -1, j, "has a zero Euclidean norm (all values zero)")
		}
	}

	for j, w := range p.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return invalid("weights", -1, j, "is not finite (%v)", w)
		}
		if w <= 0 {
			return invalid("weights", -1, j, "must be positive, got %v", w)
		}
	}
	return nil
}
