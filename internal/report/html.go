package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// HTMLOptions controls the chart page. Zero values use the go-echarts defaults.
type HTMLOptions struct {
	// AssetsHost overrides where echarts.min.js is loaded from.
	AssetsHost string
	Theme      string
}

// RenderHTML writes a standalone page with two charts per report: the
// closeness score of each model, and each model's per-criterion proximity.
func RenderHTML(w io.Writer, o HTMLOptions, reports ...*Report) error {
	if len(reports) == 0 {
		return fmt.Errorf("no reports to render")
	}

	page := components.NewPage()
	page.PageTitle = "Model ranking"
	if o.AssetsHost != "" {
		page.SetAssetsHost(o.AssetsHost)
	}
	for _, r := range reports {
		page.AddCharts(scoreChart(r, o), proximityChart(r, o))
	}
	return page.Render(w)
}

func initOpts(r *Report, o HTMLOptions) opts.Initialization {
	return opts.Initialization{
		PageTitle:  r.Title(),
		Theme:      o.Theme,
		Width:      "900px",
		Height:     "480px",
		AssetsHost: o.AssetsHost,
	}
}

func modelNames(r *Report) []string {
	names := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		names[i] = row.Model
	}
	return names
}

func scoreChart(r *Report, o HTMLOptions) *charts.Bar {
	data := make([]opts.BarData, len(r.Rows))
	for i, row := range r.Rows {
		data[i] = opts.BarData{Value: row.Score}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(r, o)),
		charts.WithTitleOpts(opts.Title{Title: r.Title(), Subtitle: "run " + r.RunID}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "closeness", Min: 0, Max: 1}),
	)
	bar.SetXAxis(modelNames(r)).
		AddSeries("score", data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

func proximityChart(r *Report, o HTMLOptions) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(r, o)),
		charts.WithTitleOpts(opts.Title{Title: "Per-criterion proximity", Subtitle: r.Title()}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1}),
	)
	bar.SetXAxis(modelNames(r))
	for j, name := range r.Criteria {
		data := make([]opts.BarData, len(r.Rows))
		for i, row := range r.Rows {
			data[i] = opts.BarData{Value: row.Proximity[j]}
		}
		bar.AddSeries(name, data)
	}
	return bar
}
