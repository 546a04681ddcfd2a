package models

// AnomalyType identifies which detector rule produced an anomaly
type AnomalyType string

// Anomaly type constants
const (
	AnomalyAccessibilityIssue AnomalyType = "accessibility_issue"
	AnomalyRouteDeviation     AnomalyType = "route_deviation"
	AnomalyUnexpectedDelay    AnomalyType = "unexpected_delay"
	AnomalySensorError        AnomalyType = "sensor_error"
)

// Severity levels
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// LatLng is a bare WGS84 coordinate
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AnomalyDetail carries the per-type context of an anomaly. Fields are
// optional and only the ones relevant to the anomaly's type are set.
type AnomalyDetail struct {
	SegmentID          string        `json:"segment_id,omitempty"`
	Mode               TransportMode `json:"mode,omitempty"`
	AccessibilityScore *int          `json:"accessibility_score,omitempty"`
	ImpliedSpeedKmh    *float64      `json:"implied_speed_kmh,omitempty"`
	AvgSpeedKmh        *float64      `json:"avg_speed_kmh,omitempty"`
	DeviationMeters    *float64      `json:"deviation_meters,omitempty"`
}

// Anomaly is one flagged irregularity in a journey's analysis. The anomaly
// list is append-only and attached to the analysis result.
type Anomaly struct {
	Type        AnomalyType   `json:"type"`
	Severity    Severity      `json:"severity"`
	Description string        `json:"description"`
	Timestamp   int64         `json:"timestamp"` // Unix milliseconds
	Location    *LatLng       `json:"location,omitempty"`
	Detail      AnomalyDetail `json:"detail"`
}

// InsightType identifies the derivation category of an insight
type InsightType string

// Insight type constants
const (
	InsightAccessibilityImprovement InsightType = "accessibility_improvement"
	InsightRouteOptimization        InsightType = "route_optimization"
	InsightTransportPreference      InsightType = "transport_preference"
	InsightAccessibilityTrend       InsightType = "accessibility_trend"
)

// Insight is a human-readable, recommendation-bearing summary derived from
// segments and anomalies. Never mutated after generation.
type Insight struct {
	Type            InsightType `json:"type"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Confidence      float64     `json:"confidence"`
	Recommendations []string    `json:"recommendations"`
}
