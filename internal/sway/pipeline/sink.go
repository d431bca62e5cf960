package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/sway.report/internal/fsutil"
)

// Sink persists trial results. Implementations must be safe for
// concurrent use by the batch runner.
type Sink interface {
	Persist(ctx context.Context, r *TrialResult) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, r *TrialResult) error

func (f SinkFunc) Persist(ctx context.Context, r *TrialResult) error { return f(ctx, r) }

// MultiSink persists to every sink in order and joins their errors.
type MultiSink []Sink

func (m MultiSink) Persist(ctx context.Context, r *TrialResult) error {
	var errs []error
	for _, s := range m {
		if err := s.Persist(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// JSONSink writes one feature document per trial below OutputRoot,
// mirroring the layout under InputRoot. With DumpCOP it also writes the
// conditioned COP series next to it.
type JSONSink struct {
	FS         fsutil.FileSystem
	InputRoot  string
	OutputRoot string
	DumpCOP    bool
}

// NewJSONSink returns a JSONSink on the OS filesystem.
func NewJSONSink(inputRoot, outputRoot string) *JSONSink {
	return &JSONSink{FS: fsutil.OSFileSystem{}, InputRoot: inputRoot, OutputRoot: outputRoot}
}

// FeaturePath returns where the feature document for input is written.
func (s *JSONSink) FeaturePath(input string) string {
	return fsutil.BuildOutputPath(input, s.InputRoot, s.OutputRoot, "features")
}

// COPPath returns where the COP dump for input is written.
func (s *JSONSink) COPPath(input string) string {
	return fsutil.BuildOutputPath(input, s.InputRoot, s.OutputRoot, "cop")
}

func (s *JSONSink) Persist(ctx context.Context, r *TrialResult) error {
	if err := s.write(s.FeaturePath(r.Path), r.Document()); err != nil {
		return err
	}
	if s.DumpCOP {
		return s.write(s.COPPath(r.Path), r.COP.MarshalCOP())
	}
	return nil
}

func (s *JSONSink) write(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := s.FS.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := s.FS.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
