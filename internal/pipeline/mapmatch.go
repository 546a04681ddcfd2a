package pipeline

import (
	"github.com/accesspath/journey-backend-go/internal/models"
)

// MatchPoints produces exactly one MapMatchedPoint per input sample. For
// samples inside a transit-linked segment the coordinate snaps onto the
// matched vehicle position of the sample's window; everywhere else the
// matched coordinate equals the original (an identity match, not a
// failure).
func MatchPoints(samples []models.TelemetrySample, windows []Window, fused []FusedPrediction, segments []models.TransportSegment) []models.MapMatchedPoint {
	points := make([]models.MapMatchedPoint, 0, len(samples))

	for _, sample := range samples {
		point := models.MapMatchedPoint{
			Timestamp:   sample.Timestamp,
			OriginalLat: sample.Latitude,
			OriginalLng: sample.Longitude,
			MatchedLat:  sample.Latitude,
			MatchedLng:  sample.Longitude,
		}

		seg := segmentAt(segments, sample.Timestamp)
		if seg != nil {
			point.Mode = seg.Mode
			point.Confidence = seg.Confidence
			point.Transit = seg.Transit

			if seg.Mode.IsTransit() && seg.Transit != nil {
				if vehicle := matchedVehicleAt(windows, fused, sample.Timestamp); vehicle != nil {
					point.MatchedLat = vehicle.Latitude
					point.MatchedLng = vehicle.Longitude
				}
			}
		}

		points = append(points, point)
	}

	return points
}

// segmentAt finds the segment covering a timestamp; nil when the sample
// falls in a coverage gap
func segmentAt(segments []models.TransportSegment, timestamp int64) *models.TransportSegment {
	for i := range segments {
		if timestamp >= segments[i].StartTime && timestamp <= segments[i].EndTime {
			return &segments[i]
		}
	}
	return nil
}

// matchedVehicleAt returns the fused vehicle observation of the window
// covering a timestamp, if that window matched one
func matchedVehicleAt(windows []Window, fused []FusedPrediction, timestamp int64) *models.TransitVehicleObservation {
	for i := range windows {
		if timestamp >= windows[i].StartTime && timestamp <= windows[i].EndTime {
			return fused[i].MatchedVehicle
		}
	}
	return nil
}
