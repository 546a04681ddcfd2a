package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// Constants
const (
	EarthRadiusMeters = 6371000.0 // Earth's mean radius in meters
)

// HaversineDistance calculates the great-circle distance between two points
// in meters
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// PathLength sums the haversine distances between consecutive coordinates.
// lats and lons must have equal length.
func PathLength(lats, lons []float64) float64 {
	var total float64
	for i := 1; i < len(lats) && i < len(lons); i++ {
		total += HaversineDistance(lats[i-1], lons[i-1], lats[i], lons[i])
	}
	return total
}

// metersPerDegree understates a degree of latitude on the sphere used by
// HaversineDistance (~111195 m), so bounding boxes never fall short of the
// requested radius.
const metersPerDegree = 111000.0

// BoundingBox returns the lat/lon bounds of a box centered on (lat, lon)
// extending radiusMeters in every direction. Used as a cheap prefilter
// before exact haversine checks.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, maxLat, minLon, maxLon float64) {
	latDelta := radiusMeters / metersPerDegree
	cosLat := math.Cos(lat * math.Pi / 180)
	if math.Abs(cosLat) < 1e-6 {
		cosLat = 1e-6
	}
	lonDelta := radiusMeters / (metersPerDegree * math.Abs(cosLat))

	return lat - latDelta, lat + latDelta, lon - lonDelta, lon + lonDelta
}

// Bearing calculates the initial bearing from point 1 to point 2 in
// degrees (0-360), where 0 is North and 90 is East
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lonDiff := (lon2 - lon1) * math.Pi / 180

	y := math.Sin(lonDiff) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) - math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(lonDiff)
	bearing := math.Atan2(y, x)

	bearingDeg := bearing * 180 / math.Pi
	return math.Mod(bearingDeg+360, 360)
}
