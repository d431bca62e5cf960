package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/banshee-data/sway.report/internal/sway"
	"github.com/banshee-data/sway.report/internal/sway/pipeline"
)

// ErrNoRun is returned when trials are persisted before StartRun.
var ErrNoRun = errors.New("no active run")

const (
	domainTime      = "time"
	domainFrequency = "frequency"
)

// FeatureStore records batch runs and their trial features. It implements
// pipeline.Sink and is safe for concurrent use.
type FeatureStore struct {
	db *DB

	mu    sync.RWMutex
	runID string
}

// NewFeatureStore wraps a migrated database.
func NewFeatureStore(db *DB) *FeatureStore {
	return &FeatureStore{db: db}
}

// StartRun opens a new run and makes it the target of Persist. settings
// is stored as JSON alongside the run.
func (s *FeatureStore) StartRun(ctx context.Context, settings any) (string, error) {
	cfg, err := json.Marshal(settings)
	if err != nil {
		return "", fmt.Errorf("encode run settings: %w", err)
	}
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, config_json) VALUES (?, ?)`, id, string(cfg)); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	s.mu.Lock()
	s.runID = id
	s.mu.Unlock()
	return id, nil
}

// RunID returns the active run, or "" before StartRun.
func (s *FeatureStore) RunID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runID
}

// Persist stores one trial and its features in a single transaction.
func (s *FeatureStore) Persist(ctx context.Context, r *pipeline.TrialResult) error {
	runID := s.RunID()
	if runID == "" {
		return ErrNoRun
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin trial transaction: %w", err)
	}
	defer tx.Rollback()

	trialID := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO trials (
			trial_id, run_id, path, device, subject, balance_board, trial, samples, frequency
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trialID, runID, r.Path, r.Info.Device, r.Info.Subject, r.Info.BalanceBoard, r.Info.Trial,
		r.COP.Len(), r.COP.Frequency,
	); err != nil {
		return fmt.Errorf("insert trial %s: %w", r.Path, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO trial_features (trial_id, domain, position, name, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare feature insert: %w", err)
	}
	defer stmt.Close()

	for _, set := range []struct {
		domain string
		fs     sway.FeatureSet
	}{{domainTime, r.TimeFeatures}, {domainFrequency, r.FrequencyFeatures}} {
		for i, name := range set.fs.Names() {
			if _, err := stmt.ExecContext(ctx, trialID, set.domain, i, name, nullable(set.fs.Value(name))); err != nil {
				return fmt.Errorf("insert feature %q: %w", name, err)
			}
		}
	}
	return tx.Commit()
}

// RecordFailures stores the failed trials of the active run.
func (s *FeatureStore) RecordFailures(ctx context.Context, failures []pipeline.Failure) error {
	runID := s.RunID()
	if runID == "" {
		return ErrNoRun
	}
	for _, f := range failures {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO trial_failures (run_id, path, stage, error) VALUES (?, ?, ?, ?)`,
			runID, f.Path, string(f.Stage), msg); err != nil {
			return fmt.Errorf("insert failure %s: %w", f.Path, err)
		}
	}
	return nil
}

// FinishRun stamps the active run with its outcome counts.
func (s *FeatureStore) FinishRun(ctx context.Context, report pipeline.BatchReport) error {
	runID := s.RunID()
	if runID == "" {
		return ErrNoRun
	}
	if err := s.RecordFailures(ctx, report.Failures); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = CURRENT_TIMESTAMP, processed = ?, failed = ?
		WHERE run_id = ?`, report.Processed(), len(report.Failures), runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// LatestRunID returns the most recently started run.
func (s *FeatureStore) LatestRunID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoRun
	}
	return id, err
}

// Failure is a stored trial failure.
type Failure struct {
	Path  string
	Stage string
	Error string
}

// Failures lists the failed trials of a run.
func (s *FeatureStore) Failures(ctx context.Context, runID string) ([]Failure, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, stage, error FROM trial_failures WHERE run_id = ? ORDER BY path`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.Path, &f.Stage, &f.Error); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Documents rebuilds the feature documents of a run, ordered by path.
// Missing feature values come back as NaN.
func (s *FeatureStore) Documents(ctx context.Context, runID string) ([]pipeline.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.trial_id, t.device, t.subject, t.balance_board, t.trial, f.domain, f.name, f.value
		FROM trials t
		JOIN trial_features f ON f.trial_id = t.trial_id
		WHERE t.run_id = ?
		ORDER BY t.path, t.trial_id, f.domain DESC, f.position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query features: %w", err)
	}
	defer rows.Close()

	var (
		docs     []pipeline.Document
		current  string
		doc      pipeline.Document
		timeB    *sway.FeatureSetBuilder
		freqB    *sway.FeatureSetBuilder
		flushDoc = func() {
			if current == "" {
				return
			}
			doc.TimeFeatures = timeB.Build()
			doc.FrequencyFeatures = freqB.Build()
			docs = append(docs, doc)
		}
	)
	for rows.Next() {
		var (
			trialID, domain, name string
			info                  pipeline.TrialInfo
			value                 sql.NullFloat64
		)
		if err := rows.Scan(&trialID, &info.Device, &info.Subject, &info.BalanceBoard, &info.Trial,
			&domain, &name, &value); err != nil {
			return nil, err
		}
		if trialID != current {
			flushDoc()
			current = trialID
			doc = pipeline.Document{
				Device: info.Device, Subject: info.Subject,
				BalanceBoard: info.BalanceBoard, Trial: info.Trial,
			}
			timeB, freqB = sway.NewFeatureSetBuilder(), sway.NewFeatureSetBuilder()
		}
		v := math.NaN()
		if value.Valid {
			v = value.Float64
		}
		if domain == domainTime {
			timeB.Add(name, v)
		} else {
			freqB.Add(name, v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	flushDoc()
	return docs, nil
}

func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
