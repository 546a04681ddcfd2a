package pipeline

import (
	"testing"

	"github.com/accesspath/journey-backend-go/internal/models"
)

// fixedRoute serves one canned reference polyline
type fixedRoute struct {
	path []models.LatLng
}

func (r *fixedRoute) ExpectedPath(journeyID string) ([]models.LatLng, bool) {
	if r.path == nil {
		return nil, false
	}
	return r.path, true
}

func TestDetectLowAccessibility(t *testing.T) {
	d := NewAnomalyDetector()
	segments := []models.TransportSegment{
		{ID: "seg-1", Mode: models.ModeCar, AccessibilityScore: 20, StartTime: fusionStart},
		{ID: "seg-2", Mode: models.ModeWalking, AccessibilityScore: 90, StartTime: fusionStart + 60_000},
	}

	anomalies := d.Detect("journey-1", segments, nil)
	if len(anomalies) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(anomalies))
	}
	a := anomalies[0]
	if a.Type != models.AnomalyAccessibilityIssue {
		t.Errorf("expected accessibility_issue, got %s", a.Type)
	}
	if a.Severity != models.SeverityMedium {
		t.Errorf("score 20 should be medium severity, got %s", a.Severity)
	}
	if a.Detail.SegmentID != "seg-1" || a.Detail.AccessibilityScore == nil || *a.Detail.AccessibilityScore != 20 {
		t.Errorf("anomaly detail incomplete: %+v", a.Detail)
	}
}

func TestDetectLowAccessibilityHighSeverity(t *testing.T) {
	d := NewAnomalyDetector()
	segments := []models.TransportSegment{
		{ID: "seg-1", Mode: models.ModeCar, AccessibilityScore: 10, StartTime: fusionStart},
	}

	anomalies := d.Detect("journey-1", segments, nil)
	if len(anomalies) != 1 || anomalies[0].Severity != models.SeverityHigh {
		t.Fatalf("score 10 should be high severity, got %+v", anomalies)
	}
}

func TestDetectSensorErrorGPSJump(t *testing.T) {
	d := NewAnomalyDetector()

	// 1.1 km in one second: ~4000 km/h implied speed
	points := []models.MapMatchedPoint{
		{Timestamp: fusionStart, MatchedLat: 52.52, MatchedLng: 13.405},
		{Timestamp: fusionStart + 1000, MatchedLat: 52.53, MatchedLng: 13.405},
		{Timestamp: fusionStart + 2000, MatchedLat: 52.53, MatchedLng: 13.405},
	}

	anomalies := d.Detect("journey-1", nil, points)
	if len(anomalies) != 1 {
		t.Fatalf("expected exactly 1 sensor error, got %d", len(anomalies))
	}
	a := anomalies[0]
	if a.Type != models.AnomalySensorError || a.Severity != models.SeverityHigh {
		t.Errorf("unexpected anomaly: %+v", a)
	}
	// Timestamped and located at the second point of the jump pair
	if a.Timestamp != fusionStart+1000 {
		t.Errorf("expected anomaly at the jump's second point, got %d", a.Timestamp)
	}
	if a.Location == nil || a.Location.Lat != 52.53 {
		t.Errorf("expected location at the jump's second point, got %+v", a.Location)
	}
	if a.Detail.ImpliedSpeedKmh == nil || *a.Detail.ImpliedSpeedKmh <= d.SensorSpeedCeilingKmh {
		t.Errorf("expected implied speed above ceiling, got %+v", a.Detail.ImpliedSpeedKmh)
	}
}

func TestDetectNoSensorErrorAtPlausibleSpeed(t *testing.T) {
	d := NewAnomalyDetector()

	// ~111 m in 4 seconds: ~100 km/h, under the ceiling
	points := []models.MapMatchedPoint{
		{Timestamp: fusionStart, MatchedLat: 52.52, MatchedLng: 13.405},
		{Timestamp: fusionStart + 4000, MatchedLat: 52.521, MatchedLng: 13.405},
	}

	if anomalies := d.Detect("journey-1", nil, points); len(anomalies) != 0 {
		t.Fatalf("expected no anomalies, got %+v", anomalies)
	}
}

func TestDetectUnexpectedDelay(t *testing.T) {
	d := NewAnomalyDetector()
	segments := []models.TransportSegment{
		{
			ID:                 "seg-1",
			Mode:               models.ModeBus,
			AccessibilityScore: 60,
			StartTime:          fusionStart,
			DurationSeconds:    600,
			DistanceMeters:     500, // 3 km/h, below the 5 km/h floor
		},
	}

	anomalies := d.Detect("journey-1", segments, nil)
	if len(anomalies) != 1 {
		t.Fatalf("expected 1 delay anomaly, got %d", len(anomalies))
	}
	a := anomalies[0]
	if a.Type != models.AnomalyUnexpectedDelay {
		t.Errorf("expected unexpected_delay, got %s", a.Type)
	}
	if a.Detail.AvgSpeedKmh == nil || *a.Detail.AvgSpeedKmh >= d.MinTransitSpeedKmh {
		t.Errorf("expected average speed below floor, got %+v", a.Detail.AvgSpeedKmh)
	}
}

func TestDetectDelayIgnoresNonTransit(t *testing.T) {
	d := NewAnomalyDetector()
	segments := []models.TransportSegment{
		{
			ID:                 "seg-1",
			Mode:               models.ModeWalking,
			AccessibilityScore: 90,
			StartTime:          fusionStart,
			DurationSeconds:    600,
			DistanceMeters:     500,
		},
	}

	if anomalies := d.Detect("journey-1", segments, nil); len(anomalies) != 0 {
		t.Fatalf("walking cannot be delayed transit, got %+v", anomalies)
	}
}

func TestDetectRouteDeviation(t *testing.T) {
	d := NewAnomalyDetector()
	d.Routes = &fixedRoute{path: []models.LatLng{{Lat: 52.52, Lng: 13.405}}}

	// Every point sits kilometres from the reference; still only one
	// anomaly is emitted
	points := []models.MapMatchedPoint{
		{Timestamp: fusionStart, MatchedLat: 52.55, MatchedLng: 13.405},
		{Timestamp: fusionStart + 60_000, MatchedLat: 52.56, MatchedLng: 13.405},
		{Timestamp: fusionStart + 120_000, MatchedLat: 52.57, MatchedLng: 13.405},
	}

	anomalies := d.Detect("journey-1", nil, points)
	if len(anomalies) != 1 {
		t.Fatalf("expected exactly 1 deviation anomaly, got %d", len(anomalies))
	}
	a := anomalies[0]
	if a.Type != models.AnomalyRouteDeviation || a.Severity != models.SeverityLow {
		t.Errorf("unexpected anomaly: %+v", a)
	}
	if a.Detail.DeviationMeters == nil || *a.Detail.DeviationMeters <= d.RouteDeviationMeters {
		t.Errorf("expected deviation above threshold, got %+v", a.Detail.DeviationMeters)
	}
}

func TestDetectRouteDeviationDisabledWithoutReference(t *testing.T) {
	d := NewAnomalyDetector()

	points := []models.MapMatchedPoint{
		{Timestamp: fusionStart, MatchedLat: 52.55, MatchedLng: 13.405},
	}
	if anomalies := d.Detect("journey-1", nil, points); len(anomalies) != 0 {
		t.Fatalf("no reference means no deviation check, got %+v", anomalies)
	}

	d.Routes = &fixedRoute{} // reference source with no geometry for this journey
	if anomalies := d.Detect("journey-1", nil, points); len(anomalies) != 0 {
		t.Fatalf("missing geometry means no deviation check, got %+v", anomalies)
	}
}

func TestDetectFixedOrder(t *testing.T) {
	d := NewAnomalyDetector()
	segments := []models.TransportSegment{
		{ID: "seg-1", Mode: models.ModeBus, AccessibilityScore: 20, StartTime: fusionStart,
			DurationSeconds: 600, DistanceMeters: 500},
	}
	points := []models.MapMatchedPoint{
		{Timestamp: fusionStart, MatchedLat: 52.52, MatchedLng: 13.405},
		{Timestamp: fusionStart + 1000, MatchedLat: 52.53, MatchedLng: 13.405},
	}

	anomalies := d.Detect("journey-1", segments, points)
	if len(anomalies) != 3 {
		t.Fatalf("expected 3 anomalies, got %d", len(anomalies))
	}
	wantOrder := []models.AnomalyType{
		models.AnomalyAccessibilityIssue,
		models.AnomalySensorError,
		models.AnomalyUnexpectedDelay,
	}
	for i, want := range wantOrder {
		if anomalies[i].Type != want {
			t.Errorf("position %d: expected %s, got %s", i, want, anomalies[i].Type)
		}
	}
}
