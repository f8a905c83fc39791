package orchestration

import (
	"errors"
	"fmt"

	"github.com/dimslaev/spaider/pkg/llm"
)

// Stage names a pipeline step.
type Stage string

const (
	StageLoad      Stage = "load"
	StageIntent    Stage = "intent"
	StageAnswer    Stage = "answer"
	StageDiscovery Stage = "discovery"
	StagePlan      Stage = "plan"
	StageGenerate  Stage = "generate"
	StageApply     Stage = "apply"
)

// StageError is returned when a stage aborts the run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// RawResponse returns the offending backend reply when the stage failed on
// schema validation.
func (e *StageError) RawResponse() (string, bool) {
	var sve *llm.SchemaValidationError
	if errors.As(e.Err, &sve) {
		return sve.Raw, true
	}
	return "", false
}
