// Package report turns a ranking into rows of rank, model, score and
// per-criterion proximity, and writes them as CSV, JSON, a text table,
// an HTML chart page or a PNG bar chart.
package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/banshee-data/model-ranker/internal/security"
)

// Meta describes the ranking request a report was built from.
type Meta struct {
	RunID       string
	GeneratedAt time.Time
	Axis        string
	Criteria    []string
	Weights     []float64
	Benefit     []bool
}

// Row is one ranked alternative.
type Row struct {
	Rank      int       `json:"rank"`
	Model     string    `json:"model"`
	Score     float64   `json:"score"`
	Proximity []float64 `json:"proximity"`
	Index     int       `json:"index"` // position in the input table
}

// Report is a complete ranking, rows ordered best first.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Axis        string    `json:"axis,omitempty"`
	Criteria    []string  `json:"criteria"`
	Weights     []float64 `json:"weights"`
	Benefit     []bool    `json:"benefit"`
	Rows        []Row     `json:"rows"`
}

// Build assembles a Report. order lists input indices best first; scores
// and proximity are indexed by input position.
func Build(meta Meta, models []string, order []int, scores []float64, proximity [][]float64) (*Report, error) {
	m := len(models)
	if len(order) != m || len(scores) != m || len(proximity) != m {
		return nil, fmt.Errorf("report inputs disagree: %d models, %d ranks, %d scores, %d proximity rows",
			m, len(order), len(scores), len(proximity))
	}

	r := &Report{
		RunID:       meta.RunID,
		GeneratedAt: meta.GeneratedAt,
		Axis:        meta.Axis,
		Criteria:    append([]string(nil), meta.Criteria...),
		Weights:     append([]float64(nil), meta.Weights...),
		Benefit:     append([]bool(nil), meta.Benefit...),
		Rows:        make([]Row, 0, m),
	}
	for rank, idx := range order {
		if idx < 0 || idx >= m {
			return nil, fmt.Errorf("rank %d refers to alternative %d of %d", rank+1, idx, m)
		}
		if len(proximity[idx]) != len(meta.Criteria) {
			return nil, fmt.Errorf("alternative %d has %d proximity values for %d criteria",
				idx, len(proximity[idx]), len(meta.Criteria))
		}
		r.Rows = append(r.Rows, Row{
			Rank:      rank + 1,
			Model:     models[idx],
			Score:     scores[idx],
			Proximity: append([]float64(nil), proximity[idx]...),
			Index:     idx,
		})
	}
	return r, nil
}

// Title is a short human-readable label for charts and logs.
func (r *Report) Title() string {
	if r.Axis == "" {
		return "Model ranking"
	}
	return fmt.Sprintf("Model ranking (%s)", r.Axis)
}

// Best returns the top-ranked row, or false for an empty report.
func (r *Report) Best() (Row, bool) {
	if len(r.Rows) == 0 {
		return Row{}, false
	}
	return r.Rows[0], true
}

// AxisPath derives a per-axis output path: "scores.png" with axis "speed"
// becomes "scores-speed.png". An empty axis returns path unchanged.
func AxisPath(path, axis string) string {
	if axis == "" {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + security.SanitizeFilename(axis) + ext
}
