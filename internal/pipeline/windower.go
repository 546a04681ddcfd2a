package pipeline

import (
	"time"

	"github.com/accesspath/journey-backend-go/internal/models"
)

// Default windowing parameters
const (
	DefaultWindowDuration = 10 * time.Second
	DefaultMinSamples     = 5
)

// Window is a fixed-duration slice of telemetry samples, the unit of
// classification
type Window struct {
	Index     int
	StartTime int64 // Unix milliseconds, timestamp of the first sample
	EndTime   int64 // Unix milliseconds, timestamp of the last sample
	Samples   []models.TelemetrySample
}

// Duration returns the window's covered time span
func (w Window) Duration() time.Duration {
	return time.Duration(w.EndTime-w.StartTime) * time.Millisecond
}

// Windower slices an ordered sample stream into contiguous, non-overlapping
// windows of a fixed real-time duration. Windows are bucketed by elapsed
// time, not sample count, to tolerate variable sampling rates.
type Windower struct {
	WindowDuration time.Duration
	MinSamples     int
}

// NewWindower creates a windower with the given parameters, falling back to
// defaults for zero values
func NewWindower(windowDuration time.Duration, minSamples int) *Windower {
	if windowDuration <= 0 {
		windowDuration = DefaultWindowDuration
	}
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}
	return &Windower{WindowDuration: windowDuration, MinSamples: minSamples}
}

// Split buckets samples into windows. Windows with fewer than MinSamples
// samples are dropped as too sparse to trust; window indices stay
// consecutive over the kept windows.
func (w *Windower) Split(samples []models.TelemetrySample) []Window {
	if len(samples) == 0 {
		return nil
	}

	durationMs := w.WindowDuration.Milliseconds()
	origin := samples[0].Timestamp

	var windows []Window
	var current []models.TelemetrySample
	currentBucket := int64(0)

	flush := func() {
		if len(current) >= w.MinSamples {
			windows = append(windows, Window{
				Index:     len(windows),
				StartTime: current[0].Timestamp,
				EndTime:   current[len(current)-1].Timestamp,
				Samples:   current,
			})
		}
		current = nil
	}

	for _, sample := range samples {
		bucket := (sample.Timestamp - origin) / durationMs
		if current != nil && bucket != currentBucket {
			flush()
		}
		if current == nil {
			currentBucket = bucket
		}
		current = append(current, sample)
	}
	flush()

	return windows
}
