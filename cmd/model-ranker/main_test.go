package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/model-ranker/internal/api"
	"github.com/banshee-data/model-ranker/internal/config"
	"github.com/banshee-data/model-ranker/internal/monitoring"
	"github.com/banshee-data/model-ranker/internal/testutil"
)

// withEnv replaces the process environment seen by the CLI.
func withEnv(t *testing.T, env map[string]string) {
	t.Helper()
	old := lookupEnv
	lookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	t.Cleanup(func() { lookupEnv = old })
}

func quietLogs(t *testing.T) {
	t.Helper()
	old := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() {
		monitoring.Logf = old
		monitoring.SetVerbose(false)
	})
}

func speedEnv(input string) map[string]string {
	return map[string]string{
		config.EnvCriteria:        "Throughput,Memory,Cores,Price",
		config.EnvWeights:         "0.25,0.25,0.25,0.25",
		config.EnvBenefitCriteria: "true,true,true,false",
		config.EnvInputFile:       input,
	}
}

func TestRun_NoArgs(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage: model-ranker")
}

func TestRun_UnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"frobnicate"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Unknown command: frobnicate")
}

func TestRun_HelpAndVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"help"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "BENEFIT_CRITERIA")

	stdout.Reset()
	assert.Equal(t, 0, run([]string{"version"}, &stdout, &stderr))
	assert.True(t, strings.HasPrefix(stdout.String(), "model-ranker "))
}

func TestRank_FromEnvironment(t *testing.T) {
	quietLogs(t)
	input := testutil.WriteFile(t, "models.csv", testutil.ModelsCSVNoAxis)
	output := filepath.Join(t.TempDir(), "out", "rankings.csv")
	env := speedEnv(input)
	env[config.EnvOutputFile] = output
	withEnv(t, env)

	var stdout, stderr bytes.Buffer
	code := run([]string{"rank"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	assert.Equal(t, "Rank,Model,Score,Throughput,Memory,Cores,Price", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,gamma,0.8127004"), lines[1])

	assert.Contains(t, stdout.String(), "gamma")
}

func TestRank_AppendFlag(t *testing.T) {
	quietLogs(t)
	input := testutil.WriteFile(t, "models.csv", testutil.ModelsCSVNoAxis)
	output := filepath.Join(t.TempDir(), "rankings.csv")
	env := speedEnv(input)
	env[config.EnvOutputFile] = output
	withEnv(t, env)

	for i := 0; i < 2; i++ {
		var stdout, stderr bytes.Buffer
		code := run([]string{"rank", "--append", "--quiet"}, &stdout, &stderr)
		require.Equal(t, 0, code, stderr.String())
	}

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "Rank,Model,Score"))
	assert.Equal(t, 2, strings.Count(string(data), "1,gamma,"))
}

func TestRank_DotenvFile(t *testing.T) {
	quietLogs(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "models.csv")
	require.NoError(t, os.WriteFile(input, []byte(testutil.ModelsCSV), 0644))
	envFile := filepath.Join(dir, "ranker.env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"CRITERIA=Throughput,Memory,Cores,Price\n"+
			"WEIGHTS=1,1,1,1\n"+
			"BENEFIT_CRITERIA=true,true,true,false\n"+
			"INPUT_FILE="+input+"\n"+
			"AXIS=cost\n"), 0644))

	// The process environment wins over the dotenv file.
	withEnv(t, map[string]string{config.EnvAxis: "speed"})

	var stdout, stderr bytes.Buffer
	code := run([]string{"rank", "--env-file", envFile}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Model ranking (speed)")
	assert.NotContains(t, stdout.String(), "epsilon")
}

func TestRank_FlagsOverrideConfigFile(t *testing.T) {
	quietLogs(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "models.csv")
	require.NoError(t, os.WriteFile(input, []byte(testutil.ModelsCSV), 0644))
	cfgPath := filepath.Join(dir, "ranking.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{
		"criteria": ["Throughput", "Memory", "Cores", "Price"],
		"weights": [0.25, 0.25, 0.25, 0.25],
		"benefit": [true, true, true, false],
		"input_file": "/does/not/exist.csv",
		"axis": "speed"
	}`), 0644))
	withEnv(t, nil)

	jsonPath := filepath.Join(dir, "report.json")
	htmlPath := filepath.Join(dir, "report.html")
	pngPath := filepath.Join(dir, "scores.png")

	var stdout, stderr bytes.Buffer
	code := run([]string{"rank",
		"--config", cfgPath,
		"--env-file", filepath.Join(dir, "absent.env"),
		"--input", input,
		"--axis", "",
		"--all-axes",
		"--json", jsonPath,
		"--html", htmlPath,
		"--png", pngPath,
		"--quiet",
	}, &stdout, &stderr)
	require.Equal(t, 1, code, "explicit --env-file must exist")
	assert.Contains(t, stderr.String(), "failed to read env file")

	envFile := filepath.Join(dir, "empty.env")
	require.NoError(t, os.WriteFile(envFile, nil, 0644))
	stderr.Reset()
	code = run([]string{"rank",
		"--config", cfgPath,
		"--env-file", envFile,
		"--input", input,
		"--axis", "",
		"--all-axes",
		"--json", jsonPath,
		"--html", htmlPath,
		"--png", pngPath,
		"--quiet",
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Empty(t, stdout.String())

	for _, p := range []string{jsonPath, htmlPath, filepath.Join(dir, "scores-speed.png"), filepath.Join(dir, "scores-cost.png")} {
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}
}

func TestRank_Errors(t *testing.T) {
	quietLogs(t)
	input := testutil.WriteFile(t, "models.csv", testutil.ModelsCSVNoAxis)

	tests := []struct {
		name string
		env  map[string]string
		args []string
		want string
	}{
		{"no_criteria", map[string]string{}, nil, "no criteria configured"},
		{"bad_weights", map[string]string{config.EnvWeights: "1,x"}, nil, "WEIGHTS"},
		{"bad_flag", speedEnv(input), []string{"--nope"}, "flag provided but not defined"},
		{"extra_args", speedEnv(input), []string{"extra"}, "unexpected arguments"},
		{"bad_config_ext", speedEnv(input), []string{"--config", "ranking.yaml"}, ".json extension"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withEnv(t, tt.env)
			args := append([]string{"rank"}, tt.args...)
			var stdout, stderr bytes.Buffer
			assert.Equal(t, 1, run(args, &stdout, &stderr))
			assert.Contains(t, stderr.String(), tt.want)
		})
	}
}

func TestRank_Remote(t *testing.T) {
	quietLogs(t)
	ts := httptest.NewServer(api.NewServer().ServeMux())
	defer ts.Close()

	input := testutil.WriteFile(t, "models.csv", testutil.ModelsCSV)
	output := filepath.Join(t.TempDir(), "remote.csv")
	env := speedEnv(input)
	env[config.EnvAxis] = "cost"
	withEnv(t, env)

	var stdout, stderr bytes.Buffer
	code := run([]string{"rank", "--remote", ts.URL, "--output", output}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.Split(string(data), "\n")[1], "1,epsilon,"))
	assert.Contains(t, stdout.String(), "Model ranking (cost)")
}

func TestServe(t *testing.T) {
	quietLogs(t)
	var gotAddr string
	old := listenAndServe
	listenAndServe = func(s *api.Server, addr string) error {
		gotAddr = addr
		return nil
	}
	defer func() { listenAndServe = old }()

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"serve"}, &stdout, &stderr))
	assert.Equal(t, ":8090", gotAddr)

	assert.Equal(t, 0, run([]string{"serve", "--listen", "127.0.0.1:9999", "--verbose"}, &stdout, &stderr))
	assert.Equal(t, "127.0.0.1:9999", gotAddr)
	assert.True(t, monitoring.Verbose())
}

func TestRank_OutputDirFlag(t *testing.T) {
	quietLogs(t)
	input := testutil.WriteFile(t, "models.csv", testutil.ModelsCSVNoAxis)
	withEnv(t, speedEnv(input))
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	code := run([]string{"rank", "--quiet", "--output-dir", dir, "--output", filepath.Join(t.TempDir(), "x.csv")}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "path traversal detected")

	stderr.Reset()
	code = run([]string{"rank", "--quiet", "--output-dir", dir, "--output", filepath.Join(dir, "x.csv")}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
}
