package pipeline

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorCarriesContext(t *testing.T) {
	cause := errors.New("disk gone")
	err := newError(KindMalformedTelemetry, "journey-1", "load", cause)

	msg := err.Error()
	for _, want := range []string{"malformed_telemetry", "journey-1", "load", "disk gone"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message missing %q: %s", want, msg)
		}
	}
	if !errors.Is(err, cause) {
		t.Error("expected the cause to unwrap")
	}
}

func TestIsKind(t *testing.T) {
	err := errorf(KindNoTelemetryData, "journey-1", "load", "nothing recorded")

	if !IsKind(err, KindNoTelemetryData) {
		t.Error("expected kind match")
	}
	if IsKind(err, KindAnalysisTimeout) {
		t.Error("kinds must not cross-match")
	}
	if IsKind(errors.New("plain"), KindNoTelemetryData) {
		t.Error("plain errors carry no kind")
	}
	if IsKind(nil, KindNoTelemetryData) {
		t.Error("nil carries no kind")
	}

	wrapped := newError(KindJourneyNotFound, "journey-1", "load", ErrJourneyNotFound)
	if !IsKind(wrapped, KindJourneyNotFound) {
		t.Error("expected journey_not_found kind match")
	}
	if !errors.Is(wrapped, ErrJourneyNotFound) {
		t.Error("sentinel must survive wrapping")
	}
}
