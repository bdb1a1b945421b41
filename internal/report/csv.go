package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVWriter writes reports in the ranking table layout:
//
//	Rank,Model,Score,<criterion>...
//
// Each report is followed by a blank separator row. The header is written
// once, before the first report.
type CSVWriter struct {
	w           *csv.Writer
	header      []string
	wroteHeader bool
}

// NewCSVWriter wraps w. Set skipHeader when appending to a file that already
// has one.
func NewCSVWriter(w io.Writer, skipHeader bool) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w), wroteHeader: skipHeader}
}

// FormatHeader returns the CSV header for the given criteria.
func FormatHeader(criteria []string) []string {
	return append([]string{"Rank", "Model", "Score"}, criteria...)
}

// WriteReport writes one report and its separator row, then flushes.
func (c *CSVWriter) WriteReport(r *Report) error {
	header := FormatHeader(r.Criteria)
	if c.header != nil {
		if len(c.header) != len(header) {
			return fmt.Errorf("report has %d columns, earlier reports had %d", len(header), len(c.header))
		}
		for i := range header {
			if header[i] != c.header[i] {
				return fmt.Errorf("report column %d is %q, earlier reports had %q", i, header[i], c.header[i])
			}
		}
	}
	c.header = header

	if !c.wroteHeader {
		if err := c.w.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		c.wroteHeader = true
	}

	for _, row := range r.Rows {
		rec := []string{
			strconv.Itoa(row.Rank),
			row.Model,
			formatFloat(row.Score),
		}
		for _, p := range row.Proximity {
			rec = append(rec, formatFloat(p))
		}
		if err := c.w.Write(rec); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row.Rank, err)
		}
	}

	if err := c.w.Write(make([]string, len(header))); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}
	c.w.Flush()
	return c.w.Error()
}

// formatFloat writes the shortest representation that parses back to v.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes reports to w with a single header.
func WriteCSV(w io.Writer, reports ...*Report) error {
	cw := NewCSVWriter(w, false)
	for _, r := range reports {
		if err := cw.WriteReport(r); err != nil {
			return err
		}
	}
	return nil
}
