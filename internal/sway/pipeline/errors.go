package pipeline

import "fmt"

// Stage names a processing step.
type Stage string

const (
	StageRead              Stage = "read"
	StageCOP               Stage = "cop"
	StageCondition         Stage = "condition"
	StageTimeFeatures      Stage = "time_features"
	StageFrequencyFeatures Stage = "frequency_features"
	StagePersist           Stage = "persist"
	// StageDeadline marks a trial abandoned by the batch runner.
	StageDeadline Stage = "deadline"
)

// StageError records which step failed for which file.
type StageError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
