package api

import (
	"fmt"
	"strings"

	"github.com/banshee-data/model-ranker/internal/dataset"
)

// Alternative is one named row of criterion values.
type Alternative struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// RankRequest is the body of /api/rank and /api/proximity.
type RankRequest struct {
	Criteria     []string      `json:"criteria"`
	Weights      []float64     `json:"weights"`
	Benefit      []bool        `json:"benefit"`
	Alternatives []Alternative `json:"alternatives"`
}

// ProximityRow holds one alternative's per-criterion proximity.
type ProximityRow struct {
	Name      string    `json:"name"`
	Proximity []float64 `json:"proximity"`
}

// ProximityResponse is the body returned by /api/proximity, rows in input order.
type ProximityResponse struct {
	Criteria []string       `json:"criteria"`
	Rows     []ProximityRow `json:"rows"`
}

// VersionInfo is returned by /api/version.
type VersionInfo struct {
	Version   string `json:"version"`
	GitSHA    string `json:"git_sha"`
	BuildTime string `json:"build_time"`
}

// dataset checks the labels and converts the request to a Dataset. Numeric
// validation is left to the engine.
func (req *RankRequest) dataset() (*dataset.Dataset, error) {
	if len(req.Criteria) == 0 {
		return nil, fmt.Errorf("criteria is required")
	}
	for i, c := range req.Criteria {
		if strings.TrimSpace(c) == "" {
			return nil, fmt.Errorf("criteria[%d] is empty", i)
		}
	}
	ds := &dataset.Dataset{
		Criteria: req.Criteria,
		Models:   make([]string, len(req.Alternatives)),
		Matrix:   make([][]float64, len(req.Alternatives)),
	}
	for i, alt := range req.Alternatives {
		if strings.TrimSpace(alt.Name) == "" {
			return nil, fmt.Errorf("alternatives[%d] has no name", i)
		}
		if len(alt.Values) != len(req.Criteria) {
			return nil, fmt.Errorf("alternative %q has %d values for %d criteria", alt.Name, len(alt.Values), len(req.Criteria))
		}
		ds.Models[i] = alt.Name
		ds.Matrix[i] = alt.Values
	}
	return ds, nil
}

// NewRankRequest builds a request body from a loaded dataset.
func NewRankRequest(ds *dataset.Dataset, weights []float64, benefit []bool) RankRequest {
	req := RankRequest{
		Criteria:     ds.Criteria,
		Weights:      weights,
		Benefit:      benefit,
		Alternatives: make([]Alternative, ds.Len()),
	}
	for i, name := range ds.Models {
		req.Alternatives[i] = Alternative{Name: name, Values: ds.Matrix[i]}
	}
	return req
}
