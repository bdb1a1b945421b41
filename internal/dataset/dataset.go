// Package dataset reads the alternatives table: one row per model, a Model
// name column, one numeric column per criterion and an optional Axis column
// used to rank subsets of the table independently.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/model-ranker/internal/fsutil"
)

// Column names with fixed meaning.
const (
	ModelColumn = "Model"
	AxisColumn  = "Axis"
)

var (
	// ErrEmptyFile is returned when the input has no header or no data rows.
	ErrEmptyFile = errors.New("dataset: empty input")
	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("dataset: missing column")
)

// Dataset is a decision matrix with its row and column labels.
type Dataset struct {
	Models   []string    // aligned with Matrix rows
	Criteria []string    // aligned with Matrix columns
	Matrix   [][]float64 // raw criterion values
	Axis     []string    // per-row axis value; nil when the input has no Axis column
}

// Load opens path on fsys and reads it with Read.
func Load(fsys fsutil.FileSystem, path string, criteria []string) (*Dataset, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	ds, err := Read(f, criteria)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Read parses CSV input. Header names are whitespace-trimmed; criteria are
// looked up by name and returned in the order given.
func Read(r io.Reader, criteria []string) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no header row", ErrEmptyFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	modelCol, ok := index[ModelColumn]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, ModelColumn)
	}
	critCols := make([]int, len(criteria))
	for j, name := range criteria {
		col, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: criterion %q (have %s)", ErrMissingColumn, name, strings.Join(header, ", "))
		}
		critCols[j] = col
	}
	axisCol, hasAxis := index[AxisColumn]

	ds := &Dataset{Criteria: append([]string(nil), criteria...)}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		row := make([]float64, len(criteria))
		for j, col := range critCols {
			raw := strings.TrimSpace(rec[col])
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d, column %q: invalid number %q", line, criteria[j], raw)
			}
			row[j] = v
		}
		ds.Models = append(ds.Models, strings.TrimSpace(rec[modelCol]))
		ds.Matrix = append(ds.Matrix, row)
		if hasAxis {
			ds.Axis = append(ds.Axis, strings.TrimSpace(rec[axisCol]))
		}
	}

	if len(ds.Models) == 0 {
		return nil, fmt.Errorf("%w: header but no data rows", ErrEmptyFile)
	}
	return ds, nil
}

// Len returns the number of alternatives.
func (d *Dataset) Len() int { return len(d.Models) }

// HasAxis reports whether the input carried an Axis column.
func (d *Dataset) HasAxis() bool { return d.Axis != nil }

// Axes returns the distinct axis values in first-seen order.
func (d *Dataset) Axes() []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range d.Axis {
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	return out
}

// FilterAxis returns a new Dataset holding only the rows whose Axis equals
// axis. The receiver is not modified.
func (d *Dataset) FilterAxis(axis string) (*Dataset, error) {
	if !d.HasAxis() {
		return nil, fmt.Errorf("%w: %q (needed to filter by axis %q)", ErrMissingColumn, AxisColumn, axis)
	}
	out := &Dataset{
		Criteria: append([]string(nil), d.Criteria...),
		Axis:     []string{},
	}
	for i, a := range d.Axis {
		if a != axis {
			continue
		}
		out.Models = append(out.Models, d.Models[i])
		out.Matrix = append(out.Matrix, append([]float64(nil), d.Matrix[i]...))
		out.Axis = append(out.Axis, a)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("no rows with %s %q (have %s)", AxisColumn, axis, strings.Join(d.Axes(), ", "))
	}
	return out, nil
}
