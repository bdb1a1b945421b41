// Package config resolves the ranking configuration: criteria names, weights
// and benefit/cost flags plus the input and output locations.
//
// Values are layered, lowest precedence first: a JSON config file, a dotenv
// file, the process environment, then command-line flags. The resolved
// RankingConfig is an explicit value handed to the ranker; nothing in the
// ranking engine reads configuration on its own.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/banshee-data/model-ranker/internal/fsutil"
)

// Environment variable names.
const (
	EnvCriteria        = "CRITERIA"
	EnvWeights         = "WEIGHTS"
	EnvBenefitCriteria = "BENEFIT_CRITERIA"
	EnvInputFile       = "INPUT_FILE"
	EnvOutputFile      = "OUTPUT_FILE"
	EnvAxis            = "AXIS"
	EnvOutputDir       = "OUTPUT_DIR"
	EnvAppendOutput    = "APPEND_OUTPUT"
)

// DefaultEnvFile is read when no --env-file is given. A missing default file
// is not an error.
const DefaultEnvFile = ".env"

const maxConfigSize = 1 * 1024 * 1024 // 1MB

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// RankingConfig represents one resolved ranking configuration.
// Nil slices and pointers mean "not set by this source".
type RankingConfig struct {
	Criteria []string  `json:"criteria,omitempty"`
	Weights  []float64 `json:"weights,omitempty"`
	Benefit  []bool    `json:"benefit,omitempty"`

	InputFile  *string `json:"input_file,omitempty"`
	OutputFile *string `json:"output_file,omitempty"`
	Axis       *string `json:"axis,omitempty"`
	AllAxes    *bool   `json:"all_axes,omitempty"`

	// AppendOutput adds to an existing output_file instead of replacing it.
	AppendOutput *bool `json:"append_output,omitempty"`

	ReportJSON *string `json:"report_json,omitempty"`
	ChartHTML  *string `json:"chart_html,omitempty"`
	ChartPNG   *string `json:"chart_png,omitempty"`

	// OutputDir, when set, confines every output path to that directory.
	OutputDir *string `json:"output_dir,omitempty"`
}

// Helper functions to create pointers
func ptrString(v string) *string { return &v }
func ptrBool(v bool) *bool       { return &v }

// StringPtr and BoolPtr let callers outside the package build configs.
func StringPtr(v string) *string { return ptrString(v) }
func BoolPtr(v bool) *bool       { return ptrBool(v) }

// LoadRankingConfig loads a RankingConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
func LoadRankingConfig(fsys fsutil.FileSystem, path string) (*RankingConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigSize)
	}

	data, err := fsutil.ReadAll(fsys, cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &RankingConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.validateValues(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadEnvFile reads a dotenv file into a map without touching the process
// environment. When optional is set a missing file yields an empty map.
func LoadEnvFile(path string, optional bool) (map[string]string, error) {
	vals, err := godotenv.Read(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return vals, nil
}

// ChainLookup returns a LookupFunc consulting primary first, then the
// dotenv values.
func ChainLookup(primary LookupFunc, dotenv map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		if primary != nil {
			if v, ok := primary(key); ok {
				return v, true
			}
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

// FromEnv builds a RankingConfig from environment-style variables.
// Unset variables leave the corresponding field nil.
func FromEnv(lookup LookupFunc) (*RankingConfig, error) {
	cfg := &RankingConfig{}
	if v, ok := lookup(EnvCriteria); ok && strings.TrimSpace(v) != "" {
		cfg.Criteria = ParseCriteria(v)
	}
	if v, ok := lookup(EnvWeights); ok && strings.TrimSpace(v) != "" {
		w, err := ParseWeights(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvWeights, err)
		}
		cfg.Weights = w
	}
	if v, ok := lookup(EnvBenefitCriteria); ok && strings.TrimSpace(v) != "" {
		b, err := ParseBenefit(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvBenefitCriteria, err)
		}
		cfg.Benefit = b
	}
	if v, ok := lookup(EnvInputFile); ok && v != "" {
		cfg.InputFile = ptrString(v)
	}
	if v, ok := lookup(EnvOutputFile); ok && v != "" {
		cfg.OutputFile = ptrString(v)
	}
	if v, ok := lookup(EnvAppendOutput); ok && strings.TrimSpace(v) != "" {
		b, ok := parseFlag(v)
		if !ok {
			return nil, fmt.Errorf("%s: invalid flag '%s' (want true/false)", EnvAppendOutput, strings.TrimSpace(v))
		}
		cfg.AppendOutput = ptrBool(b)
	}
	if v, ok := lookup(EnvAxis); ok && v != "" {
		cfg.Axis = ptrString(v)
	}
	if v, ok := lookup(EnvOutputDir); ok && v != "" {
		cfg.OutputDir = ptrString(v)
	}
	return cfg, nil
}

// Merge overlays every field set in over onto c and returns c.
func (c *RankingConfig) Merge(over *RankingConfig) *RankingConfig {
	if over == nil {
		return c
	}
	if over.Criteria != nil {
		c.Criteria = over.Criteria
	}
	if over.Weights != nil {
		c.Weights = over.Weights
	}
	if over.Benefit != nil {
		c.Benefit = over.Benefit
	}
	for _, f := range []struct{ dst, src **string }{
		{&c.InputFile, &over.InputFile},
		{&c.OutputFile, &over.OutputFile},
		{&c.Axis, &over.Axis},
		{&c.ReportJSON, &over.ReportJSON},
		{&c.ChartHTML, &over.ChartHTML},
		{&c.ChartPNG, &over.ChartPNG},
		{&c.OutputDir, &over.OutputDir},
	} {
		if *f.src != nil {
			*f.dst = *f.src
		}
	}
	if over.AllAxes != nil {
		c.AllAxes = over.AllAxes
	}
	if over.AppendOutput != nil {
		c.AppendOutput = over.AppendOutput
	}
	return c
}

// Validate checks that the configuration is complete and consistent.
func (c *RankingConfig) Validate() error {
	if len(c.Criteria) == 0 {
		return fmt.Errorf("no criteria configured (set %s)", EnvCriteria)
	}
	if len(c.Weights) != len(c.Criteria) {
		return fmt.Errorf("got %d weights for %d criteria", len(c.Weights), len(c.Criteria))
	}
	if len(c.Benefit) != len(c.Criteria) {
		return fmt.Errorf("got %d benefit flags for %d criteria", len(c.Benefit), len(c.Criteria))
	}
	if c.GetInputFile() == "" {
		return fmt.Errorf("no input file configured (set %s)", EnvInputFile)
	}
	if c.GetAxis() != "" && c.GetAllAxes() {
		return errors.New("axis and all_axes are mutually exclusive")
	}
	return c.validateValues()
}

// validateValues checks individual values without requiring completeness.
func (c *RankingConfig) validateValues() error {
	seen := make(map[string]bool, len(c.Criteria))
	for i, name := range c.Criteria {
		if name == "" {
			return fmt.Errorf("criterion %d has an empty name", i)
		}
		if seen[name] {
			return fmt.Errorf("criterion %q listed more than once", name)
		}
		seen[name] = true
	}
	for i, w := range c.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			return fmt.Errorf("weight %d must be a positive finite number, got %v", i, w)
		}
	}
	return nil
}

// GetInputFile returns the input_file value or "".
func (c *RankingConfig) GetInputFile() string {
	if c.InputFile == nil {
		return ""
	}
	return *c.InputFile
}

// GetOutputFile returns the output_file value or "" (no CSV output).
func (c *RankingConfig) GetOutputFile() string {
	if c.OutputFile == nil {
		return ""
	}
	return *c.OutputFile
}

// GetAppendOutput returns whether CSV output is appended to an existing file.
func (c *RankingConfig) GetAppendOutput() bool {
	if c.AppendOutput == nil {
		return false
	}
	return *c.AppendOutput
}

// GetAxis returns the axis filter or "" (no filter).
func (c *RankingConfig) GetAxis() string {
	if c.Axis == nil {
		return ""
	}
	return *c.Axis
}

// GetAllAxes returns whether every axis is ranked separately.
func (c *RankingConfig) GetAllAxes() bool {
	if c.AllAxes == nil {
		return false
	}
	return *c.AllAxes
}

func (c *RankingConfig) GetReportJSON() string {
	if c.ReportJSON == nil {
		return ""
	}
	return *c.ReportJSON
}

func (c *RankingConfig) GetChartHTML() string {
	if c.ChartHTML == nil {
		return ""
	}
	return *c.ChartHTML
}

func (c *RankingConfig) GetChartPNG() string {
	if c.ChartPNG == nil {
		return ""
	}
	return *c.ChartPNG
}

// GetOutputDir returns the directory outputs are confined to, or "".
func (c *RankingConfig) GetOutputDir() string {
	if c.OutputDir == nil {
		return ""
	}
	return *c.OutputDir
}

// ParseCriteria splits a comma-separated list of criterion names, trimming
// whitespace around each name.
func ParseCriteria(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// ParseWeights parses a comma-separated list of float64 weights.
func ParseWeights(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseBenefit parses comma-separated benefit flags. "true", "1", "yes" and
// "benefit" mark a benefit criterion; "false", "0", "no" and "cost" mark a
// cost criterion. Matching is case-insensitive.
func ParseBenefit(s string) ([]bool, error) {
	parts := strings.Split(s, ",")
	out := make([]bool, 0, len(parts))
	for _, p := range parts {
		b, ok := parseFlag(p)
		if !ok {
			return nil, fmt.Errorf("invalid benefit flag '%s' (want true/false)", strings.TrimSpace(p))
		}
		out = append(out, b)
	}
	return out, nil
}

func parseFlag(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "benefit":
		return true, true
	case "false", "0", "no", "cost":
		return false, true
	}
	return false, false
}
