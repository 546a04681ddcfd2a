package pipeline

import (
	"fmt"

	"github.com/accesspath/journey-backend-go/internal/models"
	"github.com/accesspath/journey-backend-go/internal/spatial"
)

// Default anomaly thresholds
const (
	DefaultLowAccessibilityThreshold = 30
	DefaultSensorSpeedCeilingKmh     = 120.0
	DefaultMinTransitSpeedKmh        = 5.0
	DefaultRouteDeviationMeters      = 200.0
)

// RouteReference supplies expected route geometry for deviation checks.
// Implementations are optional: the detector degrades to a no-op when no
// reference is available.
type RouteReference interface {
	// ExpectedPath returns the reference polyline for a journey; ok=false
	// when no reference geometry exists
	ExpectedPath(journeyID string) (path []models.LatLng, ok bool)
}

// AnomalyDetector runs four independent best-effort checks over the
// finished segments and matched points. Every check is non-fatal: missing
// optional data produces no anomaly, never an error.
type AnomalyDetector struct {
	LowAccessibilityThreshold int
	SensorSpeedCeilingKmh     float64
	MinTransitSpeedKmh        float64
	RouteDeviationMeters      float64

	// Routes is the optional expected-geometry source; nil disables the
	// route_deviation check
	Routes RouteReference
}

// NewAnomalyDetector creates a detector with the documented defaults and no
// route reference
func NewAnomalyDetector() *AnomalyDetector {
	return &AnomalyDetector{
		LowAccessibilityThreshold: DefaultLowAccessibilityThreshold,
		SensorSpeedCeilingKmh:     DefaultSensorSpeedCeilingKmh,
		MinTransitSpeedKmh:        DefaultMinTransitSpeedKmh,
		RouteDeviationMeters:      DefaultRouteDeviationMeters,
	}
}

// Detect runs all checks and returns the combined anomaly list in a fixed
// order (by check, then by time) so re-analysis reproduces it exactly
func (d *AnomalyDetector) Detect(journeyID string, segments []models.TransportSegment, points []models.MapMatchedPoint) []models.Anomaly {
	anomalies := []models.Anomaly{}
	anomalies = append(anomalies, d.lowAccessibility(segments)...)
	anomalies = append(anomalies, d.sensorErrors(points)...)
	anomalies = append(anomalies, d.unexpectedDelays(segments)...)
	anomalies = append(anomalies, d.routeDeviations(journeyID, points)...)
	return anomalies
}

// lowAccessibility flags segments scoring below the threshold
func (d *AnomalyDetector) lowAccessibility(segments []models.TransportSegment) []models.Anomaly {
	var out []models.Anomaly
	for _, seg := range segments {
		if seg.AccessibilityScore >= d.LowAccessibilityThreshold {
			continue
		}
		severity := models.SeverityMedium
		if seg.AccessibilityScore < d.LowAccessibilityThreshold/2 {
			severity = models.SeverityHigh
		}
		score := seg.AccessibilityScore
		out = append(out, models.Anomaly{
			Type:        models.AnomalyAccessibilityIssue,
			Severity:    severity,
			Description: fmt.Sprintf("%s segment scored %d, below the accessibility threshold of %d", seg.Mode, seg.AccessibilityScore, d.LowAccessibilityThreshold),
			Timestamp:   seg.StartTime,
			Detail: models.AnomalyDetail{
				SegmentID:          seg.ID,
				Mode:               seg.Mode,
				AccessibilityScore: &score,
			},
		})
	}
	return out
}

// sensorErrors flags consecutive matched-point pairs implying a physically
// implausible instantaneous speed (GPS jumps, not true high-speed travel).
// The anomaly is timestamped at the second point of the pair.
func (d *AnomalyDetector) sensorErrors(points []models.MapMatchedPoint) []models.Anomaly {
	var out []models.Anomaly
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		dtSeconds := float64(cur.Timestamp-prev.Timestamp) / 1000.0
		if dtSeconds <= 0 {
			continue
		}
		distance := spatial.HaversineDistance(prev.MatchedLat, prev.MatchedLng, cur.MatchedLat, cur.MatchedLng)
		speedKmh := distance / dtSeconds * 3.6
		if speedKmh <= d.SensorSpeedCeilingKmh {
			continue
		}
		implied := speedKmh
		out = append(out, models.Anomaly{
			Type:        models.AnomalySensorError,
			Severity:    models.SeverityHigh,
			Description: fmt.Sprintf("implied speed of %.0f km/h between consecutive points suggests a GPS jump", speedKmh),
			Timestamp:   cur.Timestamp,
			Location:    &models.LatLng{Lat: cur.MatchedLat, Lng: cur.MatchedLng},
			Detail: models.AnomalyDetail{
				ImpliedSpeedKmh: &implied,
			},
		})
	}
	return out
}

// unexpectedDelays flags transit segments crawling below a plausible
// transit speed: stalled vehicles or mis-classification
func (d *AnomalyDetector) unexpectedDelays(segments []models.TransportSegment) []models.Anomaly {
	var out []models.Anomaly
	for _, seg := range segments {
		if !seg.Mode.IsTransit() || seg.DurationSeconds <= 0 {
			continue
		}
		avgKmh := seg.AvgSpeedKmh()
		if avgKmh >= d.MinTransitSpeedKmh {
			continue
		}
		avg := avgKmh
		out = append(out, models.Anomaly{
			Type:        models.AnomalyUnexpectedDelay,
			Severity:    models.SeverityMedium,
			Description: fmt.Sprintf("%s segment averaged %.1f km/h, below the minimum plausible transit speed of %.0f km/h", seg.Mode, avgKmh, d.MinTransitSpeedKmh),
			Timestamp:   seg.StartTime,
			Detail: models.AnomalyDetail{
				SegmentID:   seg.ID,
				Mode:        seg.Mode,
				AvgSpeedKmh: &avg,
			},
		})
	}
	return out
}

// routeDeviations compares matched points against expected route geometry
// when a reference exists; otherwise it is a no-op
func (d *AnomalyDetector) routeDeviations(journeyID string, points []models.MapMatchedPoint) []models.Anomaly {
	if d.Routes == nil {
		return nil
	}
	path, ok := d.Routes.ExpectedPath(journeyID)
	if !ok || len(path) == 0 {
		return nil
	}

	var out []models.Anomaly
	for _, p := range points {
		deviation := distanceToPath(p.MatchedLat, p.MatchedLng, path)
		if deviation <= d.RouteDeviationMeters {
			continue
		}
		dev := deviation
		out = append(out, models.Anomaly{
			Type:        models.AnomalyRouteDeviation,
			Severity:    models.SeverityLow,
			Description: fmt.Sprintf("point deviated %.0f m from the expected route", deviation),
			Timestamp:   p.Timestamp,
			Location:    &models.LatLng{Lat: p.MatchedLat, Lng: p.MatchedLng},
			Detail: models.AnomalyDetail{
				DeviationMeters: &dev,
			},
		})
		// One deviation anomaly per journey is enough to act on
		break
	}
	return out
}

// distanceToPath returns the distance from a point to the nearest vertex of
// a reference polyline
func distanceToPath(lat, lng float64, path []models.LatLng) float64 {
	best := -1.0
	for _, v := range path {
		dist := spatial.HaversineDistance(lat, lng, v.Lat, v.Lng)
		if best < 0 || dist < best {
			best = dist
		}
	}
	return best
}
