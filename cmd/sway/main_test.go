package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/sway.report/internal/config"
	"github.com/banshee-data/sway.report/internal/db"
	"github.com/banshee-data/sway.report/internal/fsutil"
	"github.com/banshee-data/sway.report/internal/monitoring"
	"github.com/banshee-data/sway.report/internal/sway/pipeline"
	"github.com/banshee-data/sway.report/internal/testutil"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	monitoring.SetBackend(monitoring.NewLogger(os.Stderr, "disabled"))
	os.Exit(m.Run())
}

// writeTrials lays out one paired trial plus an unpaired board trial.
func writeTrials(t *testing.T, root string) {
	t.Helper()
	write := func(rel string, data []byte) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, data, 0644))
	}
	plate := testutil.PlateExport(5000, 1000, 0, 0, 500, 1000, 1000)
	write("Vicon/Repro3/FP/2_4.json", plate.Bytes(t))

	load := testutil.Constant(1000, 20)
	start := time.Date(2019, 3, 14, 10, 0, 0, 0, time.UTC)
	board := testutil.BoardExport(1000, 100, start, load, load, load, load)
	write("BalanceBoard/Repro3/BB/2_4.json", board.Bytes(t))
	write("BalanceBoard/Repro3/BB/2_5.json", board.Bytes(t))
}

func TestExtract(t *testing.T) {
	input := t.TempDir()
	output := t.TempDir()
	plots := t.TempDir()
	dbFile := filepath.Join(t.TempDir(), "features.db")
	writeTrials(t, input)

	rep, err := extract(context.Background(), config.EmptySwayConfig(), extractOptions{
		Input:    input,
		Output:   output,
		DBPath:   dbFile,
		PlotsDir: plots,
		DumpCOP:  true,
		Workers:  2,
	})
	require.NoError(t, err)
	require.Empty(t, rep.Failures)
	assert.Equal(t, 3, rep.Processed())

	for _, rel := range []string{
		"Vicon/Repro3/FP/2_4_features.json",
		"Vicon/Repro3/FP/2_4_cop.json",
		"BalanceBoard/Repro3/BB/2_5_features.json",
	} {
		assert.FileExists(t, filepath.Join(output, filepath.FromSlash(rel)))
	}
	assert.FileExists(t, filepath.Join(plots, "BalanceBoard", "Repro3", "BB", "2_4_stabilogram.png"))
	assert.FileExists(t, filepath.Join(plots, "Vicon", "Repro3", "FP", "2_4_psd.png"))

	doc, err := pipeline.LoadDocument(fsutil.OSFileSystem{}, filepath.Join(output, "Vicon", "Repro3", "FP", "2_4_features.json"))
	require.NoError(t, err)
	assert.Equal(t, "FP", doc.Device)
	assert.Equal(t, "3", doc.Subject)

	database, err := db.NewDB(dbFile)
	require.NoError(t, err)
	defer database.Close()
	store := db.NewFeatureStore(database)
	runID, err := store.LatestRunID(context.Background())
	require.NoError(t, err)
	docs, err := store.Documents(context.Background(), runID)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestExtractPairedOnly(t *testing.T) {
	input := t.TempDir()
	writeTrials(t, input)

	rep, err := extract(context.Background(), config.EmptySwayConfig(), extractOptions{
		Input:      input,
		PairedOnly: true,
		Workers:    1,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Processed())
	// Output defaults to the input tree.
	assert.FileExists(t, filepath.Join(input, "Vicon", "Repro3", "FP", "2_4_features.json"))
	assert.NoFileExists(t, filepath.Join(input, "BalanceBoard", "Repro3", "BB", "2_5_features.json"))
}

func TestExtractEmptyInput(t *testing.T) {
	_, err := extract(context.Background(), config.EmptySwayConfig(), extractOptions{Input: t.TempDir()})
	assert.ErrorContains(t, err, "no acquisitions")
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, pipeline.BatchReport{
		Results:  []*pipeline.TrialResult{{}},
		Failures: []pipeline.Failure{{Path: "a.json", Stage: pipeline.StageRead, Err: os.ErrNotExist}},
		Elapsed:  1500 * time.Millisecond,
	})
	assert.Contains(t, buf.String(), "processed 1 trial(s), 1 failed in 1.5s")
	assert.Contains(t, buf.String(), "a.json [read]")
}

func TestFlagDefaults(t *testing.T) {
	assert.Equal(t, "", *configPath)
	assert.False(t, *dumpCOP)
	assert.False(t, *pairedOnly)
	assert.Equal(t, 0, *workers)
}
