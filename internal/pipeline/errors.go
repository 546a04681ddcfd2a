package pipeline

import (
	"errors"
	"fmt"
)

// ErrorKind classifies fatal pipeline failures. External-dependency
// degradation (transit feed timeouts) is not an error kind: the fusion
// engine degrades in place and the pipeline keeps going.
type ErrorKind string

// Error kinds
const (
	KindJourneyNotFound    ErrorKind = "journey_not_found"
	KindNoTelemetryData    ErrorKind = "no_telemetry_data"
	KindMalformedTelemetry ErrorKind = "malformed_telemetry"
	KindSchemaMismatch     ErrorKind = "schema_mismatch"
	KindClassifierContract ErrorKind = "classifier_contract"
	KindAnalysisTimeout    ErrorKind = "analysis_timeout"
)

// ErrJourneyNotFound is the sentinel a SampleSource wraps when the journey
// id is unknown. The pipeline maps it to KindJourneyNotFound.
var ErrJourneyNotFound = errors.New("journey not found")

// Error is a fatal pipeline failure. It always identifies the journey and
// the stage that failed so the caller can retry with diagnostics.
type Error struct {
	Kind      ErrorKind
	JourneyID string
	Stage     string
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pipeline %s at stage %s (journey %s): %v", e.Kind, e.Stage, e.JourneyID, e.Err)
	}
	return fmt.Sprintf("pipeline %s at stage %s (journey %s)", e.Kind, e.Stage, e.JourneyID)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, journeyID, stage string, err error) *Error {
	return &Error{Kind: kind, JourneyID: journeyID, Stage: stage, Err: err}
}

func errorf(kind ErrorKind, journeyID, stage, format string, args ...interface{}) *Error {
	return newError(kind, journeyID, stage, fmt.Errorf(format, args...))
}

// IsKind reports whether err is a pipeline Error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Kind == kind
	}
	return false
}
