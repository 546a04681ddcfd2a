package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/accesspath/journey-backend-go/internal/models"
)

// DefaultMergeTolerance bridges brief capture drop-outs between windows
const DefaultMergeTolerance = 30 * time.Second

// Merger collapses consecutive same-mode windows into contiguous transport
// segments
type Merger struct {
	MergeTolerance time.Duration
}

// NewMerger creates a merger with the given gap tolerance, defaulting when
// zero
func NewMerger(tolerance time.Duration) *Merger {
	if tolerance <= 0 {
		tolerance = DefaultMergeTolerance
	}
	return &Merger{MergeTolerance: tolerance}
}

// Merge walks the ordered window predictions and merges adjacent windows
// sharing a mode when the inter-window gap stays within the tolerance.
// Merged confidence is the minimum of the constituents: a run is never more
// certain than its weakest window. Distance and duration accumulate
// additively over the constituent windows.
func (m *Merger) Merge(journeyID string, windows []Window, fused []FusedPrediction) []models.TransportSegment {
	if len(fused) == 0 {
		return nil
	}

	toleranceMs := m.MergeTolerance.Milliseconds()

	var segments []models.TransportSegment
	var current *models.TransportSegment

	flush := func() {
		if current != nil {
			current.ID = segmentID(journeyID, len(segments))
			segments = append(segments, *current)
			current = nil
		}
	}

	for i, f := range fused {
		win := windows[i]
		distance := WindowDistanceMeters(win)
		duration := win.Duration().Seconds()

		if current != nil && f.Mode == current.Mode && win.StartTime-current.EndTime <= toleranceMs {
			current.EndTime = win.EndTime
			current.DistanceMeters += distance
			current.DurationSeconds += duration
			if f.Confidence < current.Confidence {
				current.Confidence = f.Confidence
			}
			if current.Transit == nil && f.Transit != nil {
				current.Transit = f.Transit
			}
			continue
		}

		flush()
		current = &models.TransportSegment{
			StartTime:       win.StartTime,
			EndTime:         win.EndTime,
			Mode:            f.Mode,
			Confidence:      f.Confidence,
			DistanceMeters:  distance,
			DurationSeconds: duration,
			Transit:         f.Transit,
		}
	}
	flush()

	return segments
}

// segmentID derives a deterministic segment identifier so re-analysis of an
// unchanged journey reproduces identical output
func segmentID(journeyID string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("segment:%s:%d", journeyID, index))).String()
}
