package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/sway.report/internal/agreement"
	"github.com/banshee-data/sway.report/internal/db"
	"github.com/banshee-data/sway.report/internal/fsutil"
	"github.com/banshee-data/sway.report/internal/monitoring"
	"github.com/banshee-data/sway.report/internal/report"
	"github.com/banshee-data/sway.report/internal/sway/pipeline"
	"github.com/banshee-data/sway.report/internal/version"
)

var (
	featuresDir = flag.String("features", "", "Directory holding *_features.json documents")
	dbPath      = flag.String("db", "", "SQLite feature store to read instead of -features")
	runID       = flag.String("run", "", "Run to compare when reading -db (default: latest)")
	outputDir   = flag.String("output", ".", "Directory for agreement.csv, agreement_boards.csv and agreement.html")
	logLevel    = flag.String("log-level", "info", "Log level")
	showVersion = flag.Bool("version", false, "Show build information")
)

const featureSuffix = "_features.json"

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String("agreement"))
		return
	}
	monitoring.SetBackend(monitoring.NewLogger(os.Stderr, *logLevel))

	ctx := context.Background()
	var (
		docs []pipeline.Document
		err  error
	)
	switch {
	case *dbPath != "":
		docs, err = loadFromDB(ctx, *dbPath, *runID)
	case *featuresDir != "":
		docs, err = loadFromDir(fsutil.OSFileSystem{}, *featuresDir)
	default:
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("failed to load feature documents: %v", err)
	}

	results, err := compare(docs)
	if err != nil {
		log.Fatal(err)
	}
	if err := writeReports(fsutil.OSFileSystem{}, *outputDir, results); err != nil {
		log.Fatalf("failed to write reports: %v", err)
	}
}

// loadFromDir reads every feature document below root.
func loadFromDir(fsys fsutil.FileSystem, root string) ([]pipeline.Document, error) {
	files, err := fsys.ListFiles(root)
	if err != nil {
		return nil, err
	}
	var docs []pipeline.Document
	for _, f := range files {
		if !strings.HasSuffix(f, featureSuffix) {
			continue
		}
		doc, err := pipeline.LoadDocument(fsys, f)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// loadFromDB reads the documents of runID, or of the latest run.
func loadFromDB(ctx context.Context, path, runID string) ([]pipeline.Document, error) {
	database, err := db.NewDB(path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	store := db.NewFeatureStore(database)
	if runID == "" {
		if runID, err = store.LatestRunID(ctx); err != nil {
			return nil, err
		}
	}
	monitoring.Logger().Info().Str("run", runID).Msg("reading feature store")
	return store.Documents(ctx, runID)
}

func compare(docs []pipeline.Document) ([]agreement.FeatureAgreement, error) {
	pairs := agreement.Match(docs)
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no paired WBB/FP trials among %d document(s)", len(docs))
	}
	monitoring.Logger().Info().Int("documents", len(docs)).Int("pairs", len(pairs)).Msg("comparing devices")
	return agreement.Compare(pairs), nil
}

// writeReports writes the summary CSV, the per-board CSV and the HTML
// chart page into dir.
func writeReports(fsys fsutil.FileSystem, dir string, results []agreement.FeatureAgreement) error {
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return err
	}
	outputs := []struct {
		name  string
		write func(io.Writer, []agreement.FeatureAgreement) error
	}{
		{"agreement.csv", agreement.WriteCSV},
		{"agreement_boards.csv", agreement.WriteBoardCSV},
		{"agreement.html", report.WriteBlandAltmanHTML},
	}
	for _, out := range outputs {
		path := filepath.Join(dir, out.name)
		if err := writeFile(fsys, path, results, out.write); err != nil {
			return err
		}
		monitoring.Logger().Info().Str("path", path).Msg("wrote report")
	}
	return nil
}

func writeFile(fsys fsutil.FileSystem, path string, results []agreement.FeatureAgreement, write func(io.Writer, []agreement.FeatureAgreement) error) (err error) {
	f, err := fsys.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := write(f, results); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
