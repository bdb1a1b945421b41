package report

import (
	"encoding/json"
	"io"
)

// Bundle is the JSON document written for one ranking run.
type Bundle struct {
	Reports []*Report `json:"reports"`
}

// WriteJSON writes reports as an indented JSON Bundle.
func WriteJSON(w io.Writer, reports ...*Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Bundle{Reports: reports})
}
