package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/banshee-data/sway.report/internal/monitoring"
	"github.com/banshee-data/sway.report/internal/timeutil"
)

// BatchOptions tunes RunBatch. Workers <= 0 selects GOMAXPROCS and a zero
// TrialTimeout disables the per-trial deadline.
type BatchOptions struct {
	Workers      int
	TrialTimeout time.Duration
	// Clock times the batch; nil uses the wall clock.
	Clock timeutil.Clock
}

// Failure is one trial that did not complete.
type Failure struct {
	Path  string
	Stage Stage
	Err   error
}

// BatchReport summarises a batch. Results and Failures keep input order.
type BatchReport struct {
	Results  []*TrialResult
	Failures []Failure
	Elapsed  time.Duration
}

// Processed is the number of trials that completed.
func (r BatchReport) Processed() int { return len(r.Results) }

// RunBatch processes paths on a fixed worker pool. A failing trial is
// logged and recorded, never aborting the others. Cancelling ctx stops
// dispatch; trials not yet started are reported as failed.
func (p *Pipeline) RunBatch(ctx context.Context, paths []string, opts BatchOptions) BatchReport {
	clock := opts.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	start := clock.Now()
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	results := make([]*TrialResult, len(paths))
	errs := make([]error, len(paths))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = p.runTrial(ctx, paths[i], opts.TrialTimeout)
			}
		}()
	}

dispatch:
	for i := range paths {
		select {
		case jobs <- i:
		case <-ctx.Done():
			for j := i; j < len(paths); j++ {
				errs[j] = &StageError{Path: paths[j], Stage: StageRead, Err: ctx.Err()}
			}
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	log := monitoring.Logger()
	report := BatchReport{}
	for i, path := range paths {
		if errs[i] == nil {
			report.Results = append(report.Results, results[i])
			continue
		}
		f := Failure{Path: path, Err: errs[i]}
		var se *StageError
		if errors.As(errs[i], &se) {
			f.Stage, f.Err = se.Stage, se.Err
		}
		report.Failures = append(report.Failures, f)
		log.Warn().Str("file", path).Str("stage", string(f.Stage)).Err(f.Err).Msg("trial failed")
	}
	report.Elapsed = clock.Since(start)
	log.Info().
		Int("processed", report.Processed()).
		Int("failed", len(report.Failures)).
		Dur("elapsed", report.Elapsed).
		Msg("batch complete")
	return report
}

// runTrial runs one trial under its own deadline. A trial that overruns
// is abandoned; its goroutine finishes in the background and the result
// is dropped.
func (p *Pipeline) runTrial(ctx context.Context, path string, timeout time.Duration) (*TrialResult, error) {
	if timeout <= 0 {
		return p.ProcessFile(ctx, path)
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		res *TrialResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := p.ProcessFile(tctx, path)
		done <- outcome{res, err}
	}()

	select {
	case o := <-done:
		return o.res, o.err
	case <-tctx.Done():
		return nil, &StageError{Path: path, Stage: StageDeadline, Err: fmt.Errorf("trial exceeded %v: %w", timeout, tctx.Err())}
	}
}
