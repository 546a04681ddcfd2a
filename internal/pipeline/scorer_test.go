package pipeline

import (
	"testing"

	"github.com/accesspath/journey-backend-go/internal/models"
)

func TestSegmentScoreBaseValues(t *testing.T) {
	cases := []struct {
		mode models.TransportMode
		want int
	}{
		{models.ModeStationary, 100},
		{models.ModeWalking, 90},
		{models.ModeCycling, 70},
		{models.ModeTrain, 65},
		{models.ModeBus, 60},
		{models.ModeTram, 55},
		{models.ModeCar, 40},
	}
	for _, tc := range cases {
		if got := SegmentScore(tc.mode, 1.0); got != tc.want {
			t.Errorf("%s at full confidence: expected %d, got %d", tc.mode, tc.want, got)
		}
	}
}

func TestSegmentScoreScalesWithConfidence(t *testing.T) {
	if got := SegmentScore(models.ModeWalking, 0.5); got != 45 {
		t.Errorf("expected 45, got %d", got)
	}
	// Monotonic in confidence
	prev := -1
	for _, conf := range []float64{0, 0.25, 0.5, 0.75, 1.0} {
		got := SegmentScore(models.ModeBus, conf)
		if got < prev {
			t.Errorf("score decreased from %d to %d at confidence %v", prev, got, conf)
		}
		prev = got
	}
}

func TestSegmentScoreUnknownMode(t *testing.T) {
	if got := SegmentScore("teleport", 1.0); got != 0 {
		t.Errorf("unknown mode must score 0, got %d", got)
	}
}

func TestSegmentScoreClampsConfidence(t *testing.T) {
	if got := SegmentScore(models.ModeWalking, 1.5); got != 90 {
		t.Errorf("expected clamp to base score 90, got %d", got)
	}
	if got := SegmentScore(models.ModeWalking, -0.5); got != 0 {
		t.Errorf("expected clamp to 0, got %d", got)
	}
}

func TestJourneyScoreDurationWeighted(t *testing.T) {
	s := NewScorer()
	segments := []models.TransportSegment{
		{Mode: models.ModeWalking, Confidence: 1.0, DurationSeconds: 300, DistanceMeters: 400},
		{Mode: models.ModeCar, Confidence: 1.0, DurationSeconds: 100, DistanceMeters: 300},
	}
	s.ScoreSegments(segments)

	// (90*300 + 40*100) / 400 = 77.5, no bonuses (avg speed 6.3 km/h)
	if got := s.JourneyScore(segments); got != 78 {
		t.Errorf("expected duration-weighted score 78, got %d", got)
	}
}

func TestJourneyScoreBonuses(t *testing.T) {
	s := NewScorer()
	segments := []models.TransportSegment{
		{
			Mode:            models.ModeTrain,
			Confidence:      1.0,
			DurationSeconds: 600,
			DistanceMeters:  6000, // 36 km/h: clears the efficiency threshold
			Transit:         &models.TransitLink{RouteID: "route-1"},
		},
	}
	s.ScoreSegments(segments)

	// base 65 + GTFS bonus 5 + efficiency bonus 3
	if got := s.JourneyScore(segments); got != 73 {
		t.Errorf("expected 73 with both bonuses, got %d", got)
	}
}

func TestJourneyScoreClampedToHundred(t *testing.T) {
	s := NewScorer()
	segments := []models.TransportSegment{
		{
			Mode:            models.ModeStationary,
			Confidence:      1.0,
			DurationSeconds: 60,
			DistanceMeters:  2000,
			Transit:         &models.TransitLink{RouteID: "route-1"},
		},
	}
	s.ScoreSegments(segments)

	if got := s.JourneyScore(segments); got != 100 {
		t.Errorf("expected clamp at 100, got %d", got)
	}
}

func TestJourneyScoreEmptySegments(t *testing.T) {
	s := NewScorer()
	if got := s.JourneyScore(nil); got != 0 {
		t.Errorf("expected 0 for no segments, got %d", got)
	}
}

func TestScoreSegmentsFillsInPlace(t *testing.T) {
	s := NewScorer()
	segments := []models.TransportSegment{
		{Mode: models.ModeStationary, Confidence: 1.0},
		{Mode: models.ModeBus, Confidence: 0.5},
	}
	s.ScoreSegments(segments)

	if segments[0].AccessibilityScore != 100 {
		t.Errorf("stationary at full confidence must score 100, got %d", segments[0].AccessibilityScore)
	}
	if segments[1].AccessibilityScore != 30 {
		t.Errorf("bus at 0.5 confidence must score 30, got %d", segments[1].AccessibilityScore)
	}
}
