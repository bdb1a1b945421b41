package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteTable prints a report as an aligned text table for terminals.
func WriteTable(w io.Writer, r *Report) error {
	fmt.Fprintf(w, "%s  run=%s\n", r.Title(), r.RunID)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Rank\tModel\tScore\t%s\t\n", strings.Join(r.Criteria, "\t"))
	for _, row := range r.Rows {
		cells := make([]string, len(row.Proximity))
		for i, p := range row.Proximity {
			cells[i] = fmt.Sprintf("%.3f", p)
		}
		fmt.Fprintf(tw, "%d\t%s\t%.4f\t%s\t\n", row.Rank, row.Model, row.Score, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
