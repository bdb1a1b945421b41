package report

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PNG dimensions for RenderPNG.
const (
	pngWidth  = 8 * vg.Inch
	pngHeight = 4 * vg.Inch
)

var scoreBarColor = color.RGBA{R: 0x33, G: 0x66, B: 0xcc, A: 0xff}

// RenderPNG draws the report's scores as a bar chart in rank order.
func RenderPNG(w io.Writer, r *Report) error {
	if len(r.Rows) == 0 {
		return fmt.Errorf("report %s has no rows", r.RunID)
	}

	p := plot.New()
	p.Title.Text = r.Title()
	p.Y.Label.Text = "Closeness score"
	p.Y.Min, p.Y.Max = 0, 1
	p.Add(plotter.NewGrid())

	values := make(plotter.Values, len(r.Rows))
	for i, row := range r.Rows {
		values[i] = row.Score
	}
	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return fmt.Errorf("failed to build bar chart: %w", err)
	}
	bars.Color = scoreBarColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(modelNames(r)...)

	wt, err := p.WriterTo(pngWidth, pngHeight, "png")
	if err != nil {
		return fmt.Errorf("failed to create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}
