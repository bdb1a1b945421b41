package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/banshee-data/model-ranker/internal/api"
	"github.com/banshee-data/model-ranker/internal/config"
	"github.com/banshee-data/model-ranker/internal/dataset"
	"github.com/banshee-data/model-ranker/internal/fsutil"
	"github.com/banshee-data/model-ranker/internal/monitoring"
	"github.com/banshee-data/model-ranker/internal/ranker"
	"github.com/banshee-data/model-ranker/internal/report"
	"github.com/banshee-data/model-ranker/internal/version"
)

// lookupEnv is replaced in tests.
var lookupEnv config.LookupFunc = os.LookupEnv

// listenAndServe is replaced in tests.
var listenAndServe = func(s *api.Server, addr string) error {
	return s.ListenAndServe(addr)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	command := args[0]
	args = args[1:]

	var err error
	switch command {
	case "rank":
		err = handleRank(args, stdout, stderr)
	case "serve":
		err = handleServe(args, stderr)
	case "version":
		fmt.Fprintln(stdout, version.String())
	case "help", "-h", "--help":
		printUsage(stdout)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		printUsage(stderr)
		return 1
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `model-ranker - rank models against weighted criteria with TOPSIS

Usage: model-ranker <command> [options]

Commands:
  rank       Rank the models in a CSV file
  serve      Run the ranking HTTP service
  version    Show model-ranker version
  help       Show this help message

Configuration:
  Settings are read from a JSON --config file, then a dotenv file
  (--env-file, default .env), then the environment, then flags.
  Later sources override earlier ones.

  CRITERIA            Comma-separated criterion column names
  WEIGHTS             Comma-separated positive weights, one per criterion
  BENEFIT_CRITERIA    Comma-separated true/false (benefit/cost) flags
  INPUT_FILE          CSV file with a Model column and one column per criterion
  OUTPUT_FILE         CSV file for the rankings (skipped when unset)
  APPEND_OUTPUT       true to append to OUTPUT_FILE instead of replacing it
  AXIS                Only rank rows whose Axis column matches
  OUTPUT_DIR          Refuse to write outputs outside this directory

Examples:
  # Rank using settings from .env
  model-ranker rank

  # Rank every axis separately and write charts
  model-ranker rank --input models.csv --all-axes --html ranking.html --png scores.png

  # Rank through a running service
  model-ranker rank --remote http://localhost:8090

  # Serve the API and /debug/ pages, at most 20 rankings a second
  model-ranker serve --listen :8090 --rate 20`)
}

type rankFlags struct {
	configPath string
	envFile    string
	input      string
	output     string
	appendOut  bool
	axis       string
	allAxes    bool
	reportJSON string
	chartHTML  string
	chartPNG   string
	outputDir  string
	remote     string
	verbose    bool
	quiet      bool
}

func handleRank(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("rank", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var f rankFlags
	fs.StringVar(&f.configPath, "config", "", "JSON configuration file")
	fs.StringVar(&f.envFile, "env-file", config.DefaultEnvFile, "dotenv file to read before the environment")
	fs.StringVar(&f.input, "input", "", "input CSV (overrides INPUT_FILE)")
	fs.StringVar(&f.output, "output", "", "output CSV (overrides OUTPUT_FILE)")
	fs.BoolVar(&f.appendOut, "append", false, "append to the output CSV instead of replacing it (overrides APPEND_OUTPUT)")
	fs.StringVar(&f.axis, "axis", "", "only rank rows with this Axis value (overrides AXIS)")
	fs.BoolVar(&f.allAxes, "all-axes", false, "rank each Axis value separately")
	fs.StringVar(&f.reportJSON, "json", "", "write a JSON report to this path")
	fs.StringVar(&f.chartHTML, "html", "", "write an HTML chart page to this path")
	fs.StringVar(&f.chartPNG, "png", "", "write a PNG score chart to this path")
	fs.StringVar(&f.outputDir, "output-dir", "", "refuse to write outputs outside this directory (overrides OUTPUT_DIR)")
	fs.StringVar(&f.remote, "remote", "", "rank through the service at this base URL")
	fs.BoolVar(&f.verbose, "verbose", false, "enable debug logging")
	fs.BoolVar(&f.quiet, "quiet", false, "do not print the ranking table")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	monitoring.SetVerbose(f.verbose)

	cfg, err := resolveConfig(f, set)
	if err != nil {
		return err
	}

	rk := ranker.New(fsutil.OSFileSystem{})
	if !f.quiet {
		rk.Out = stdout
	}
	if f.remote != "" {
		rk.Rank = remoteRankFunc(api.NewClient(f.remote))
		monitoring.Debugf("ranking through %s", f.remote)
	}

	_, err = rk.Run(cfg)
	return err
}

// resolveConfig layers the config file, dotenv file, environment and the
// flags that were set explicitly.
func resolveConfig(f rankFlags, set map[string]bool) (*config.RankingConfig, error) {
	cfg := &config.RankingConfig{}
	if f.configPath != "" {
		fileCfg, err := config.LoadRankingConfig(fsutil.OSFileSystem{}, f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	dotenv, err := config.LoadEnvFile(f.envFile, !set["env-file"])
	if err != nil {
		return nil, err
	}
	envCfg, err := config.FromEnv(config.ChainLookup(lookupEnv, dotenv))
	if err != nil {
		return nil, err
	}
	cfg.Merge(envCfg)

	flagCfg := &config.RankingConfig{}
	for _, sf := range []struct {
		name string
		val  string
		dst  **string
	}{
		{"input", f.input, &flagCfg.InputFile},
		{"output", f.output, &flagCfg.OutputFile},
		{"axis", f.axis, &flagCfg.Axis},
		{"json", f.reportJSON, &flagCfg.ReportJSON},
		{"html", f.chartHTML, &flagCfg.ChartHTML},
		{"png", f.chartPNG, &flagCfg.ChartPNG},
		{"output-dir", f.outputDir, &flagCfg.OutputDir},
	} {
		if set[sf.name] {
			*sf.dst = config.StringPtr(sf.val)
		}
	}
	if set["all-axes"] {
		flagCfg.AllAxes = config.BoolPtr(f.allAxes)
	}
	if set["append"] {
		flagCfg.AppendOutput = config.BoolPtr(f.appendOut)
	}
	return cfg.Merge(flagCfg), nil
}

func remoteRankFunc(c *api.Client) ranker.RankFunc {
	return func(ds *dataset.Dataset, weights []float64, benefit []bool, meta report.Meta) (*report.Report, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		rep, err := c.Rank(ctx, api.NewRankRequest(ds, weights, benefit))
		if err != nil {
			return nil, err
		}
		rep.Axis = meta.Axis
		return rep, nil
	}
}

func handleServe(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	listen := fs.String("listen", ":8090", "HTTP listen address")
	rps := fs.Float64("rate", 0, "max ranking requests per second (0 = unlimited)")
	burst := fs.Int("burst", 10, "request burst allowed above --rate")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	monitoring.SetVerbose(*verbose)

	s := api.NewServer()
	s.SetRateLimit(*rps, *burst)
	return listenAndServe(s, *listen)
}
