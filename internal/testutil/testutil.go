// Package testutil provides shared test fixtures for the ranking packages:
// the reference model table, its configuration, and small HTTP helpers.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ModelsCSV is the reference alternatives table. The "speed" axis rows match
// the worked example used across the engine tests; the "cost" axis holds a
// second, independent ranking problem.
const ModelsCSV = `Model, Axis, Throughput, Memory, Cores, Price
alpha,speed,250,16,12,5
beta,speed,200,16,8,3
gamma,speed,300,32,16,4
delta,cost,120,8,4,1
epsilon,cost,180,16,8,2
`

// ModelsCSVNoAxis is ModelsCSV restricted to the speed rows without an Axis column.
const ModelsCSVNoAxis = `Model,Throughput,Memory,Cores,Price
alpha,250,16,12,5
beta,200,16,8,3
gamma,300,32,16,4
`

// Criteria, Weights and Benefit configure the reference table.
var (
	Criteria = []string{"Throughput", "Memory", "Cores", "Price"}
	Weights  = []float64{0.25, 0.25, 0.25, 0.25}
	Benefit  = []bool{true, true, true, false}
)

// SpeedOrder is the expected best-first model order for the speed rows.
var SpeedOrder = []string{"gamma", "beta", "alpha"}

// WriteFile writes content to name inside a fresh temp directory and
// returns the full path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t testing.TB, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// NewJSONRequest creates a test request with a JSON body and a loopback
// remote address, so debug routes accept it.
func NewJSONRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "127.0.0.1:12345"
	return req
}
