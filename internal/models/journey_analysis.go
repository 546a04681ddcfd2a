package models

// TransportSegment is a maximal run of same-mode windows. Segments for one
// journey are time-ordered and non-overlapping; gaps between segments are
// permitted where no reliable window exists.
type TransportSegment struct {
	ID              string        `json:"id"`
	StartTime       int64         `json:"start_time"` // Unix milliseconds
	EndTime         int64         `json:"end_time"`   // Unix milliseconds
	Mode            TransportMode `json:"mode"`
	Confidence      float64       `json:"confidence"` // min over constituent windows
	DistanceMeters  float64       `json:"distance_meters"`
	DurationSeconds float64       `json:"duration_seconds"`

	AccessibilityScore int          `json:"accessibility_score"` // 0-100
	Transit            *TransitLink `json:"transit,omitempty"`
}

// AvgSpeedKmh returns the segment's average speed in km/h
func (s TransportSegment) AvgSpeedKmh() float64 {
	if s.DurationSeconds <= 0 {
		return 0
	}
	return s.DistanceMeters / s.DurationSeconds * 3.6
}

// MapMatchedPoint pairs a raw sample coordinate with its map-matched
// coordinate. Exactly one is produced per input sample.
type MapMatchedPoint struct {
	Timestamp   int64         `json:"timestamp"`
	OriginalLat float64       `json:"original_lat"`
	OriginalLng float64       `json:"original_lng"`
	MatchedLat  float64       `json:"matched_lat"`
	MatchedLng  float64       `json:"matched_lng"`
	Mode        TransportMode `json:"mode,omitempty"`
	Confidence  float64       `json:"confidence"`
	Transit     *TransitLink  `json:"transit,omitempty"`
}

// WindowSummary aggregates the window-level inference results
type WindowSummary struct {
	WindowCount      int                   `json:"window_count"`
	ModeDistribution map[TransportMode]int `json:"mode_distribution"`
	AvgConfidence    float64               `json:"avg_confidence"`
	TransitMatches   int                   `json:"transit_matches"`
	TransitMatchRate float64               `json:"transit_match_rate"`
}

// JourneyAnalysis is the aggregate analysis result, the sole artifact
// persisted back to the journey store. Re-analyzing an unchanged sample set
// with an unchanged classifier and feed reproduces it byte for byte, so the
// struct carries no wall-clock or random fields.
type JourneyAnalysis struct {
	ID                   string             `json:"id"`
	JourneyID            string             `json:"journey_id"`
	OwnerID              string             `json:"owner_id"`
	StartTime            int64              `json:"start_time"`
	EndTime              int64              `json:"end_time"`
	TotalDistanceMeters  float64            `json:"total_distance_meters"`
	TotalDurationSeconds float64            `json:"total_duration_seconds"`
	Segments             []TransportSegment `json:"segments"`
	AccessibilityScore   int                `json:"accessibility_score"` // 0-100
	Anomalies            []Anomaly          `json:"anomalies"`
	Insights             []Insight          `json:"insights"`
	MapMatchedPoints     []MapMatchedPoint  `json:"map_matched_points"`
	Summary              WindowSummary      `json:"summary"`
	AlgoVersion          string             `json:"algo_version"`
}
