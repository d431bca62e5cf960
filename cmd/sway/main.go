package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/sway.report/internal/config"
	"github.com/banshee-data/sway.report/internal/db"
	"github.com/banshee-data/sway.report/internal/fsutil"
	"github.com/banshee-data/sway.report/internal/monitoring"
	"github.com/banshee-data/sway.report/internal/report"
	"github.com/banshee-data/sway.report/internal/sway/pipeline"
	"github.com/banshee-data/sway.report/internal/version"
)

var (
	configPath = flag.String("config", "", "Processing config (.json, .yaml); defaults apply when empty")
	outputDir  = flag.String("output", "", "Directory for feature documents (default: the input directory)")
	dbPath     = flag.String("db", "", "SQLite feature store; skipped when empty")
	plotsDir   = flag.String("plots", "", "Directory for stabilogram and PSD plots; skipped when empty")
	dumpCOP    = flag.Bool("dump-cop", false, "Also write the conditioned COP series of every trial")
	pairedOnly = flag.Bool("paired", false, "Only process trials recorded by both devices")
	workers    = flag.Int("workers", 0, "Worker count; overrides the config when > 0")
)

// extractOptions are the resolved command-line options of one run.
type extractOptions struct {
	Input      string
	Output     string
	DBPath     string
	PlotsDir   string
	DumpCOP    bool
	PairedOnly bool
	Workers    int
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	switch flag.Arg(0) {
	case "":
		printUsage()
		os.Exit(1)
	case "version":
		fmt.Println(version.String("sway"))
		return
	case "help":
		printUsage()
		return
	case "migrate":
		if *dbPath == "" {
			log.Fatal("-db is required for migrate")
		}
		if err := db.RunMigrateCommand(os.Stdout, flag.Args()[1:], *dbPath); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		return
	}

	cfg := config.EmptySwayConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadSwayConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	monitoring.SetBackend(monitoring.NewLogger(os.Stderr, cfg.GetLogLevel()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := extractOptions{
		Input:      flag.Arg(0),
		Output:     *outputDir,
		DBPath:     *dbPath,
		PlotsDir:   *plotsDir,
		DumpCOP:    *dumpCOP,
		PairedOnly: *pairedOnly,
		Workers:    *workers,
	}
	rep, err := extract(ctx, cfg, opts)
	if err != nil {
		log.Fatalf("extract: %v", err)
	}
	printSummary(os.Stdout, rep)
	if len(rep.Failures) > 0 {
		os.Exit(2)
	}
}

// extract discovers the acquisitions below opts.Input and runs the batch
// with every configured sink.
func extract(ctx context.Context, cfg *config.SwayConfig, opts extractOptions) (pipeline.BatchReport, error) {
	if opts.Output == "" {
		opts.Output = opts.Input
	}
	fsys := fsutil.OSFileSystem{}
	layout := fsutil.DefaultLayout()

	files, err := fsutil.Discover(fsys, opts.Input, layout)
	if err != nil {
		return pipeline.BatchReport{}, err
	}
	if opts.PairedOnly {
		var paired []string
		for _, p := range fsutil.PairFiles(files, layout) {
			paired = append(paired, p.Board, p.Plate)
		}
		files = paired
	}
	if len(files) == 0 {
		return pipeline.BatchReport{}, fmt.Errorf("no acquisitions found below %s", opts.Input)
	}

	jsonSink := pipeline.NewJSONSink(opts.Input, opts.Output)
	jsonSink.DumpCOP = opts.DumpCOP
	sinks := pipeline.MultiSink{jsonSink}

	var store *db.FeatureStore
	if opts.DBPath != "" {
		database, err := db.NewDB(opts.DBPath)
		if err != nil {
			return pipeline.BatchReport{}, fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		store = db.NewFeatureStore(database)
		if _, err := store.StartRun(ctx, cfg); err != nil {
			return pipeline.BatchReport{}, err
		}
		sinks = append(sinks, store)
	}
	if opts.PlotsDir != "" {
		sinks = append(sinks, report.NewTrialPlotter(opts.Input, opts.PlotsDir))
	}

	p, err := pipeline.NewFromConfig(cfg, sinks)
	if err != nil {
		return pipeline.BatchReport{}, err
	}

	batch := pipeline.BatchOptions{Workers: cfg.GetWorkers(), TrialTimeout: cfg.GetTrialTimeout()}
	if opts.Workers > 0 {
		batch.Workers = opts.Workers
	}
	monitoring.Logger().Info().Int("files", len(files)).Int("workers", batch.Workers).Str("input", opts.Input).Msg("starting extraction")
	rep := p.RunBatch(ctx, files, batch)

	if store != nil {
		// The run is closed even when the batch was interrupted.
		if err := store.FinishRun(context.WithoutCancel(ctx), rep); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

func printSummary(w io.Writer, rep pipeline.BatchReport) {
	fmt.Fprintf(w, "processed %d trial(s), %d failed in %s\n", rep.Processed(), len(rep.Failures), rep.Elapsed.Round(1e6))
	for _, f := range rep.Failures {
		fmt.Fprintf(w, "  %s [%s]: %v\n", f.Path, f.Stage, f.Err)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `sway - postural sway feature extraction

Usage:
  sway [flags] <input-dir>     extract features from every acquisition below input-dir
  sway -db <path> migrate ...  manage the feature store schema
  sway version                 show build information

Flags:
`)
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr)
	db.PrintMigrateHelp(os.Stderr)
}
