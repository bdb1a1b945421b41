// Package topsis ranks alternatives against weighted benefit and cost
// criteria using TOPSIS (Technique for Order of Preference by Similarity to
// Ideal Solution).
//
// Every entry point is a pure function of its arguments: inputs are copied
// into fresh gonum matrices, nothing is cached between calls, and the
// package performs no I/O. Independent requests may run concurrently.
//
// The pipeline runs in a fixed order:
//
//	normalize -> apply weights -> ideal profiles -> separation -> closeness -> rank
//
// with a per-criterion proximity breakdown available from the same
// intermediate values.
package topsis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// IndifferentScore is returned wherever the closeness ratio would be 0/0:
// an alternative (or a single criterion cell) that sits on both ideal
// profiles at once. This only happens when the profiles collapse to the same
// point, e.g. every alternative is identical.
const IndifferentScore = 0.5

// Evaluation holds every intermediate result of one TOPSIS run.
type Evaluation struct {
	Normalized *mat.Dense // column-wise L2 normalized decision matrix
	Weighted   *mat.Dense // Normalized with each column scaled by its weight

	PositiveIdeal []float64 // best weighted value per criterion
	NegativeIdeal []float64 // worst weighted value per criterion

	// L2 distances of each alternative to the ideals. With weights near
	// math.MaxFloat64 these may overflow to +Inf; Scores never do.
	PositiveDistance []float64
	NegativeDistance []float64

	Scores []float64 // closeness to the ideal, in [0, 1], higher is better
	Order  []int     // alternative indices, best first
}

// Evaluate validates the inputs and runs the full pipeline.
func Evaluate(matrix [][]float64, weights []float64, benefit []bool) (*Evaluation, error) {
	p := Problem{Matrix: matrix, Weights: weights, Benefit: benefit}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p.evaluate(), nil
}

// Rank returns alternative indices ordered best first, together with the
// closeness score of every alternative in input order. Equal scores keep
// their input order.
func Rank(matrix [][]float64, weights []float64, benefit []bool) ([]int, []float64, error) {
	ev, err := Evaluate(matrix, weights, benefit)
	if err != nil {
		return nil, nil, err
	}
	return ev.Order, ev.Scores, nil
}

// Proximity returns the m×n matrix of per-criterion closeness values.
// proximity[i][j] answers how close alternative i is to the ideal on
// criterion j alone; it does not affect the ranking.
func Proximity(matrix [][]float64, weights []float64, benefit []bool) ([][]float64, error) {
	ev, err := Evaluate(matrix, weights, benefit)
	if err != nil {
		return nil, err
	}
	return ev.Proximity(), nil
}

// evaluate runs the pipeline without validation. Tests use it directly to
// exercise algebraic properties on inputs Validate would reject.
//
// Scores are computed with the weights divided by the largest weight, so
// every weighted value is at most 1 in magnitude and no distance can
// overflow. Scores
// and order are invariant to that uniform scaling; the exposed Weighted
// matrix, ideals and distances are scaled back to the caller's weights.
func (p Problem) evaluate() *Evaluation {
	x := toDense(p.Matrix)
	ev := &Evaluation{}
	ev.Normalized = normalize(x)

	scale, relative := relativeWeights(p.Weights)
	weighted := applyWeights(ev.Normalized, relative)
	positive, negative := idealProfiles(weighted, p.Benefit)
	toPositive := separation(weighted, positive)
	toNegative := separation(weighted, negative)
	ev.Scores = closeness(toPositive, toNegative)
	ev.Order = rankOrder(ev.Scores)

	ev.Weighted = applyWeights(ev.Normalized, p.Weights)
	ev.PositiveIdeal, ev.NegativeIdeal = idealProfiles(ev.Weighted, p.Benefit)
	floats.Scale(scale, toPositive)
	floats.Scale(scale, toNegative)
	ev.PositiveDistance, ev.NegativeDistance = toPositive, toNegative
	return ev
}

// relativeWeights divides every weight by the largest one.
func relativeWeights(weights []float64) (scale float64, relative []float64) {
	scale = floats.Max(weights)
	relative = make([]float64, len(weights))
	for j, w := range weights {
		relative[j] = w / scale
	}
	return scale, relative
}

// toDense copies a rectangular [][]float64 into a new dense matrix.
func toDense(rows [][]float64) *mat.Dense {
	m, n := len(rows), len(rows[0])
	data := make([]float64, 0, m*n)
	for _, row := range rows {
		data = append(data, row...)
	}
	return mat.NewDense(m, n, data)
}

// normalize divides each column by its Euclidean norm. The column is first
// divided by its largest magnitude so the norm cannot overflow for values
// near math.MaxFloat64; the result is the same unit vector.
func normalize(x *mat.Dense) *mat.Dense {
	m, n := x.Dims()
	out := mat.NewDense(m, n, nil)
	col := make([]float64, m)
	for j := 0; j < n; j++ {
		mat.Col(col, j, x)
		peak := floats.Norm(col, math.Inf(1))
		for i := range col {
			col[i] /= peak
		}
		norm := floats.Norm(col, 2)
		for i := range col {
			col[i] /= norm
		}
		out.SetCol(j, col)
	}
	return out
}

// applyWeights scales column j by weights[j].
func applyWeights(normalized *mat.Dense, weights []float64) *mat.Dense {
	m, n := normalized.Dims()
	out := mat.NewDense(m, n, nil)
	out.Apply(func(_, j int, v float64) float64 {
		return v * weights[j]
	}, normalized)
	return out
}

// idealProfiles takes the column max as positive and the column min as
// negative, then swaps the pair for every cost criterion.
func idealProfiles(weighted *mat.Dense, benefit []bool) (positive, negative []float64) {
	m, n := weighted.Dims()
	positive = make([]float64, n)
	negative = make([]float64, n)
	col := make([]float64, m)
	for j := 0; j < n; j++ {
		mat.Col(col, j, weighted)
		positive[j] = floats.Max(col)
		negative[j] = floats.Min(col)
		if !benefit[j] {
			positive[j], negative[j] = negative[j], positive[j]
		}
	}
	return positive, negative
}

// separation returns the L2 distance from every row to the given profile.
func separation(weighted *mat.Dense, profile []float64) []float64 {
	m, _ := weighted.Dims()
	out := make([]float64, m)
	for i := 0; i < m; i++ {
		out[i] = floats.Distance(weighted.RawRowView(i), profile, 2)
	}
	return out
}

// closeness computes toNegative / (toPositive + toNegative) per alternative.
func closeness(toPositive, toNegative []float64) []float64 {
	out := make([]float64, len(toPositive))
	for i := range out {
		out[i] = closenessRatio(toPositive[i], toNegative[i])
	}
	return out
}

// closenessRatio returns toNegative / (toPositive + toNegative). Both terms
// are divided by the larger one first so the sum stays finite.
func closenessRatio(toPositive, toNegative float64) float64 {
	larger := math.Max(toPositive, toNegative)
	if larger == 0 {
		return IndifferentScore
	}
	p, n := toPositive/larger, toNegative/larger
	return n / (p + n)
}

// rankOrder sorts indices by descending score. Ties go to the lower index.
func rankOrder(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		sa, sb := scores[order[a]], scores[order[b]]
		if sa != sb {
			return sa > sb
		}
		return order[a] < order[b]
	})
	return order
}
