// Package ranker runs a configured ranking end to end: it loads the
// alternatives table, evaluates each axis with the TOPSIS engine, and writes
// the requested CSV, JSON, HTML and PNG outputs.
package ranker

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/model-ranker/internal/config"
	"github.com/banshee-data/model-ranker/internal/dataset"
	"github.com/banshee-data/model-ranker/internal/fsutil"
	"github.com/banshee-data/model-ranker/internal/monitoring"
	"github.com/banshee-data/model-ranker/internal/report"
	"github.com/banshee-data/model-ranker/internal/security"
	"github.com/banshee-data/model-ranker/internal/topsis"
)

// RankFunc turns one dataset into a report. RankDataset is the local
// implementation; the CLI swaps in a remote one.
type RankFunc func(ds *dataset.Dataset, weights []float64, benefit []bool, meta report.Meta) (*report.Report, error)

// Ranker holds the dependencies of a ranking run.
type Ranker struct {
	FS    fsutil.FileSystem
	Now   func() time.Time
	NewID func() string

	// Rank defaults to RankDataset when nil.
	Rank RankFunc

	// Out receives a text table per report when non-nil.
	Out io.Writer
	// HTML controls the chart page written for ChartHTML.
	HTML report.HTMLOptions
}

// New returns a Ranker backed by fsys with wall-clock time and random run IDs.
func New(fsys fsutil.FileSystem) *Ranker {
	return &Ranker{
		FS:    fsys,
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

// RankDataset evaluates ds once and builds its report. meta supplies the run
// ID, timestamp and axis; criteria, weights and benefit flags are taken from
// ds and the arguments.
func RankDataset(ds *dataset.Dataset, weights []float64, benefit []bool, meta report.Meta) (*report.Report, error) {
	ev, err := topsis.Evaluate(ds.Matrix, weights, benefit)
	if err != nil {
		if meta.Axis != "" {
			return nil, fmt.Errorf("axis %q: %w", meta.Axis, err)
		}
		return nil, err
	}
	meta.Criteria = ds.Criteria
	meta.Weights = weights
	meta.Benefit = benefit
	return report.Build(meta, ds.Models, ev.Order, ev.Scores, ev.Proximity())
}

// Run validates cfg, ranks the selected rows and writes every configured
// output. It returns one report per ranked axis.
func (rk *Ranker) Run(cfg *config.RankingConfig) ([]*report.Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	ds, err := dataset.Load(rk.FS, cfg.GetInputFile(), cfg.Criteria)
	if err != nil {
		return nil, err
	}
	monitoring.Debugf("loaded %d models with %d criteria from %s", ds.Len(), len(ds.Criteria), cfg.GetInputFile())

	subsets, err := selectAxes(ds, cfg)
	if err != nil {
		return nil, err
	}

	rank := rk.Rank
	if rank == nil {
		rank = RankDataset
	}
	runID := rk.NewID()
	now := rk.Now()
	reports := make([]*report.Report, 0, len(subsets))
	for _, sub := range subsets {
		r, err := rank(sub.ds, cfg.Weights, cfg.Benefit, report.Meta{
			RunID:       runID,
			GeneratedAt: now,
			Axis:        sub.axis,
		})
		if err != nil {
			return nil, err
		}
		if best, ok := r.Best(); ok {
			monitoring.Logf("run %s: ranked %d models%s, best %s (%.4f)",
				r.RunID, len(r.Rows), axisSuffix(sub.axis), best.Model, best.Score)
		}
		reports = append(reports, r)
	}

	if err := rk.writeOutputs(cfg, reports); err != nil {
		return reports, err
	}
	return reports, nil
}

type subset struct {
	axis string
	ds   *dataset.Dataset
}

func selectAxes(ds *dataset.Dataset, cfg *config.RankingConfig) ([]subset, error) {
	switch {
	case cfg.GetAllAxes():
		if !ds.HasAxis() {
			return nil, fmt.Errorf("%w: %q (needed for all_axes)", dataset.ErrMissingColumn, dataset.AxisColumn)
		}
		var out []subset
		for _, axis := range ds.Axes() {
			sub, err := ds.FilterAxis(axis)
			if err != nil {
				return nil, err
			}
			out = append(out, subset{axis: axis, ds: sub})
		}
		return out, nil
	case cfg.GetAxis() != "":
		sub, err := ds.FilterAxis(cfg.GetAxis())
		if err != nil {
			return nil, err
		}
		return []subset{{axis: cfg.GetAxis(), ds: sub}}, nil
	default:
		return []subset{{ds: ds}}, nil
	}
}

func axisSuffix(axis string) string {
	if axis == "" {
		return ""
	}
	return fmt.Sprintf(" on axis %q", axis)
}

func (rk *Ranker) writeOutputs(cfg *config.RankingConfig, reports []*report.Report) error {
	dir := cfg.GetOutputDir()
	if rk.Out != nil {
		for _, r := range reports {
			if err := report.WriteTable(rk.Out, r); err != nil {
				return err
			}
		}
	}

	if path := cfg.GetOutputFile(); path == "" {
		monitoring.Logf("Output file not specified; skipping CSV")
	} else if cfg.GetAppendOutput() {
		if err := rk.appendCSV(dir, path, reports); err != nil {
			return fmt.Errorf("failed to append rankings: %w", err)
		}
		monitoring.Logf("Rankings appended to %s", path)
	} else {
		if err := rk.writeFile(dir, path, func(w io.Writer) error {
			return report.WriteCSV(w, reports...)
		}); err != nil {
			return fmt.Errorf("failed to write rankings: %w", err)
		}
		monitoring.Logf("Rankings saved to %s", path)
	}

	if path := cfg.GetReportJSON(); path != "" {
		if err := rk.writeFile(dir, path, func(w io.Writer) error {
			return report.WriteJSON(w, reports...)
		}); err != nil {
			return fmt.Errorf("failed to write JSON report: %w", err)
		}
		monitoring.Debugf("wrote JSON report %s", path)
	}

	if path := cfg.GetChartHTML(); path != "" {
		if err := rk.writeFile(dir, path, func(w io.Writer) error {
			return report.RenderHTML(w, rk.HTML, reports...)
		}); err != nil {
			return fmt.Errorf("failed to write HTML chart: %w", err)
		}
		monitoring.Debugf("wrote HTML chart %s", path)
	}

	if path := cfg.GetChartPNG(); path != "" {
		for _, r := range reports {
			out := path
			if len(reports) > 1 {
				out = report.AxisPath(path, r.Axis)
			}
			r := r
			if err := rk.writeFile(dir, out, func(w io.Writer) error {
				return report.RenderPNG(w, r)
			}); err != nil {
				return fmt.Errorf("failed to write PNG chart: %w", err)
			}
			monitoring.Debugf("wrote PNG chart %s", out)
		}
	}
	return nil
}

// appendCSV adds reports to the end of path. The header is written only
// when the file is missing or empty.
func (rk *Ranker) appendCSV(dir, path string, reports []*report.Report) (err error) {
	if dir != "" {
		if err := security.ValidatePathWithinDirectory(path, dir); err != nil {
			return err
		}
	}
	f, empty, err := fsutil.AppendWithParents(rk.FS, path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if !empty {
		monitoring.Debugf("appending to existing %s without header", path)
	}
	cw := report.NewCSVWriter(f, !empty)
	for _, r := range reports {
		if err := cw.WriteReport(r); err != nil {
			return err
		}
	}
	return nil
}

// writeFile creates path, refusing paths outside dir when dir is set.
func (rk *Ranker) writeFile(dir, path string, write func(io.Writer) error) (err error) {
	if dir != "" {
		if err := security.ValidatePathWithinDirectory(path, dir); err != nil {
			return err
		}
	}
	f, err := fsutil.CreateWithParents(rk.FS, path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
