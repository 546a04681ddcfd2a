package pipeline

import (
	"math"

	"github.com/accesspath/journey-backend-go/internal/models"
	"github.com/accesspath/journey-backend-go/internal/stats"
)

// Default scoring parameters
const (
	DefaultGTFSMatchBonus     = 5
	DefaultEfficiencyBonus    = 3
	DefaultEfficiencySpeedKmh = 18.0
)

// baseAccessibilityScores documents the 0-100 base score per transport
// mode. Walking scores highest of the moving modes; stationary is 100 by
// convention since no transfer risk exists.
var baseAccessibilityScores = map[models.TransportMode]float64{
	models.ModeStationary: 100,
	models.ModeWalking:    90,
	models.ModeCycling:    70,
	models.ModeTrain:      65,
	models.ModeBus:        60,
	models.ModeTram:       55,
	models.ModeCar:        40,
}

// BaseAccessibilityScore returns the base score for a mode, 0 for unknown
// modes
func BaseAccessibilityScore(mode models.TransportMode) int {
	return int(baseAccessibilityScores[mode])
}

// Scorer computes per-segment and journey-level accessibility scores
type Scorer struct {
	GTFSMatchBonus     int
	EfficiencyBonus    int
	EfficiencySpeedKmh float64
}

// NewScorer creates a scorer with the documented default bonuses
func NewScorer() *Scorer {
	return &Scorer{
		GTFSMatchBonus:     DefaultGTFSMatchBonus,
		EfficiencyBonus:    DefaultEfficiencyBonus,
		EfficiencySpeedKmh: DefaultEfficiencySpeedKmh,
	}
}

// SegmentScore computes a segment's score: round(base score for its mode ×
// confidence). Monotonic in confidence by construction.
func SegmentScore(mode models.TransportMode, confidence float64) int {
	base, known := baseAccessibilityScores[mode]
	if !known {
		return 0
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return int(math.Round(base * confidence))
}

// ScoreSegments fills in each segment's accessibility score in place
func (s *Scorer) ScoreSegments(segments []models.TransportSegment) {
	for i := range segments {
		segments[i].AccessibilityScore = SegmentScore(segments[i].Mode, segments[i].Confidence)
	}
}

// JourneyScore computes the duration-weighted mean of segment scores,
// applies the bounded bonuses, and clamps to [0,100]
func (s *Scorer) JourneyScore(segments []models.TransportSegment) int {
	if len(segments) == 0 {
		return 0
	}

	scores := make([]float64, len(segments))
	weights := make([]float64, len(segments))
	hasTransitLink := false
	var totalDistance, totalDuration float64

	for i, seg := range segments {
		scores[i] = float64(seg.AccessibilityScore)
		weights[i] = seg.DurationSeconds
		if seg.Transit != nil {
			hasTransitLink = true
		}
		totalDistance += seg.DistanceMeters
		totalDuration += seg.DurationSeconds
	}

	score := stats.WeightedMean(scores, weights)

	// GTFS-match bonus: applied once if any segment carries transit linkage
	if hasTransitLink {
		score += float64(s.GTFSMatchBonus)
	}

	// Route-efficiency bonus when the journey's average speed clears the
	// threshold
	if totalDuration > 0 {
		avgSpeedKmh := totalDistance / totalDuration * 3.6
		if avgSpeedKmh > s.EfficiencySpeedKmh {
			score += float64(s.EfficiencyBonus)
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(math.Round(score))
}
