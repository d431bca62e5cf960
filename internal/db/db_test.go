package db

import (
	"bytes"
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/sway.report/internal/sway"
	"github.com/banshee-data/sway.report/internal/sway/pipeline"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := NewDB(filepath.Join(t.TempDir(), "sway.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func trialResult(t *testing.T, path string, pathLength float64) *pipeline.TrialResult {
	t.Helper()
	cop, err := sway.NewCOPSeries([]float64{0, 1, 2}, []float64{0, 0, 0}, 100)
	require.NoError(t, err)
	return &pipeline.TrialResult{
		Path: path,
		Info: pipeline.ParseTrialInfo(path),
		COP:  cop,
		TimeFeatures: sway.NewFeatureSetBuilder().
			Add("Path length", pathLength).
			Add("Mean frequency", math.NaN()).
			Build(),
		FrequencyFeatures: sway.NewFeatureSetBuilder().
			Add("Total power-RD", 0.5).
			Add("Peak frequency-RD", math.Inf(1)).
			Build(),
	}
}

func TestMigrations(t *testing.T) {
	t.Parallel()
	database := newTestDB(t)
	migrations := MigrationsFS()

	latest, err := LatestMigrationVersion(migrations)
	require.NoError(t, err)
	assert.Equal(t, uint(2), latest)

	version, dirty, err := database.MigrateVersion(migrations)
	require.NoError(t, err)
	assert.Equal(t, latest, version)
	assert.False(t, dirty)

	require.NoError(t, database.MigrateDown(migrations))
	version, _, err = database.MigrateVersion(migrations)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	var n int
	err = database.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='trial_failures'`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, database.MigrateUp(migrations))
	require.NoError(t, database.MigrateUp(migrations), "second up is a no-op")
}

func TestFeatureStore_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewFeatureStore(newTestDB(t))

	assert.ErrorIs(t, store.Persist(ctx, trialResult(t, "/d/BalanceBoard/Repro1/BB/1_1.json", 1)), ErrNoRun)

	runID, err := store.StartRun(ctx, map[string]any{"spectral_method": "welch"})
	require.NoError(t, err)
	assert.Equal(t, runID, store.RunID())

	require.NoError(t, store.Persist(ctx, trialResult(t, "/d/Vicon/Repro1/FP/1_1.json", 2)))
	require.NoError(t, store.Persist(ctx, trialResult(t, "/d/BalanceBoard/Repro1/BB/1_1.json", 1)))

	report := pipeline.BatchReport{
		Results:  make([]*pipeline.TrialResult, 2),
		Failures: []pipeline.Failure{{Path: "/d/x.json", Stage: pipeline.StageRead, Err: errors.New("missing")}},
	}
	require.NoError(t, store.FinishRun(ctx, report))

	latest, err := store.LatestRunID(ctx)
	require.NoError(t, err)
	assert.Equal(t, runID, latest)

	docs, err := store.Documents(ctx, runID)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	board := docs[0]
	assert.Equal(t, "BB", board.Device)
	assert.Equal(t, "1", board.Subject)
	assert.Equal(t, []string{"Path length", "Mean frequency"}, board.TimeFeatures.Names())
	assert.Equal(t, 1.0, board.TimeFeatures.Value("Path length"))
	assert.True(t, math.IsNaN(board.TimeFeatures.Value("Mean frequency")))
	assert.True(t, math.IsNaN(board.FrequencyFeatures.Value("Peak frequency-RD")))
	assert.Equal(t, 0.5, board.FrequencyFeatures.Value("Total power-RD"))
	assert.Equal(t, "FP", docs[1].Device)
	assert.Equal(t, 2.0, docs[1].TimeFeatures.Value("Path length"))

	failures, err := store.Failures(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, []Failure{{Path: "/d/x.json", Stage: "read", Error: "missing"}}, failures)

	var processed, failed int
	require.NoError(t, store.db.QueryRow(`SELECT processed, failed FROM runs WHERE run_id = ?`, runID).Scan(&processed, &failed))
	assert.Equal(t, 2, processed)
	assert.Equal(t, 1, failed)
}

func TestFeatureStore_NoRuns(t *testing.T) {
	t.Parallel()
	store := NewFeatureStore(newTestDB(t))
	_, err := store.LatestRunID(context.Background())
	assert.ErrorIs(t, err, ErrNoRun)

	docs, err := store.Documents(context.Background(), "absent")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestRunMigrateCommand(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cli.db")
	var out bytes.Buffer

	require.NoError(t, RunMigrateCommand(&out, []string{"status"}, path))
	assert.Contains(t, out.String(), "2 migration(s) pending")

	out.Reset()
	require.NoError(t, RunMigrateCommand(&out, []string{"up"}, path))
	assert.Contains(t, out.String(), "version 2")

	out.Reset()
	require.NoError(t, RunMigrateCommand(&out, []string{"down"}, path))
	assert.Contains(t, out.String(), "version 1")

	assert.Error(t, RunMigrateCommand(&out, nil, path))
	assert.Error(t, RunMigrateCommand(&out, []string{"sideways"}, path))
	assert.Error(t, RunMigrateCommand(&out, []string{"force"}, path))
	assert.Error(t, RunMigrateCommand(&out, []string{"force", "x"}, path))
}
