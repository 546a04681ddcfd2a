package pipeline

import (
	"github.com/accesspath/journey-backend-go/internal/models"
	"github.com/accesspath/journey-backend-go/internal/spatial"
	"github.com/accesspath/journey-backend-go/internal/stats"
)

// featureNames is the fixed, ordered feature schema. Classifiers are trained
// against this exact ordering; changing it is a breaking schema change.
var featureNames = []string{
	// Channel presence flags. Missing channels report their features as 0
	// with the flag cleared, never fabricated values.
	"accel_present",
	"gyro_present",
	"gps_present",

	// Acceleration magnitude statistics
	"accel_magnitude_mean",
	"accel_magnitude_std",
	"accel_magnitude_min",
	"accel_magnitude_max",
	"accel_magnitude_range",
	"accel_magnitude_median",
	"accel_magnitude_q25",
	"accel_magnitude_q75",
	"accel_magnitude_skewness",
	"accel_magnitude_kurtosis",
	"accel_magnitude_zero_crossing_rate",

	// Cross-axis correlation
	"accel_xy_correlation",
	"accel_xz_correlation",
	"accel_yz_correlation",

	// Spectral descriptors of the acceleration magnitude series
	"accel_magnitude_dominant_frequency",
	"accel_magnitude_spectral_centroid",
	"accel_magnitude_spectral_energy",

	// Angular velocity magnitude statistics
	"gyro_magnitude_mean",
	"gyro_magnitude_std",
	"gyro_magnitude_min",
	"gyro_magnitude_max",
	"gyro_magnitude_range",

	// GPS-derived features
	"gps_speed_mean",
	"gps_speed_std",
	"gps_speed_min",
	"gps_speed_max",
	"gps_speed_range",
	"gps_total_distance",
	"gps_displacement",
	"gps_efficiency",
	"gps_heading_std",
}

// FeatureSchema returns the ordered feature names the extractor produces.
// The classifier's published schema must match this exactly.
func FeatureSchema() []string {
	out := make([]string, len(featureNames))
	copy(out, featureNames)
	return out
}

// ExtractFeatures converts one window of raw samples into a fixed-length
// feature vector. Pure and deterministic: the same window always yields the
// same vector.
func ExtractFeatures(win Window) models.FeatureVector {
	fv := make(models.FeatureVector, len(featureNames))
	for _, name := range featureNames {
		fv[name] = 0
	}

	extractAccelFeatures(win, fv)
	extractGyroFeatures(win, fv)
	extractGPSFeatures(win, fv)

	return fv
}

func extractAccelFeatures(win Window, fv models.FeatureVector) {
	var xs, ys, zs, mags []float64
	for _, s := range win.Samples {
		if s.Acceleration == nil {
			continue
		}
		xs = append(xs, s.Acceleration.X)
		ys = append(ys, s.Acceleration.Y)
		zs = append(zs, s.Acceleration.Z)
		mags = append(mags, s.Acceleration.Magnitude())
	}
	if len(mags) == 0 {
		return
	}

	fv["accel_present"] = 1
	fv["accel_magnitude_mean"] = stats.Mean(mags)
	fv["accel_magnitude_std"] = stats.StdDev(mags)
	fv["accel_magnitude_min"] = stats.Min(mags)
	fv["accel_magnitude_max"] = stats.Max(mags)
	fv["accel_magnitude_range"] = stats.Range(mags)
	fv["accel_magnitude_median"] = stats.Median(mags)
	fv["accel_magnitude_q25"] = stats.Percentile(mags, 25)
	fv["accel_magnitude_q75"] = stats.Percentile(mags, 75)
	fv["accel_magnitude_skewness"] = stats.Skewness(mags)
	fv["accel_magnitude_kurtosis"] = stats.Kurtosis(mags)
	fv["accel_magnitude_zero_crossing_rate"] = stats.ZeroCrossingRate(mags)

	fv["accel_xy_correlation"] = stats.Correlation(xs, ys)
	fv["accel_xz_correlation"] = stats.Correlation(xs, zs)
	fv["accel_yz_correlation"] = stats.Correlation(ys, zs)

	spectral := stats.SpectralDescriptors(mags, sampleRateHz(win))
	fv["accel_magnitude_dominant_frequency"] = spectral.DominantFrequencyHz
	fv["accel_magnitude_spectral_centroid"] = spectral.CentroidHz
	fv["accel_magnitude_spectral_energy"] = spectral.Energy
}

func extractGyroFeatures(win Window, fv models.FeatureVector) {
	var mags []float64
	for _, s := range win.Samples {
		if s.AngularVelocity == nil {
			continue
		}
		mags = append(mags, s.AngularVelocity.Magnitude())
	}
	if len(mags) == 0 {
		return
	}

	fv["gyro_present"] = 1
	fv["gyro_magnitude_mean"] = stats.Mean(mags)
	fv["gyro_magnitude_std"] = stats.StdDev(mags)
	fv["gyro_magnitude_min"] = stats.Min(mags)
	fv["gyro_magnitude_max"] = stats.Max(mags)
	fv["gyro_magnitude_range"] = stats.Range(mags)
}

func extractGPSFeatures(win Window, fv models.FeatureVector) {
	var lats, lons, speeds, headings []float64
	for _, s := range win.Samples {
		if !s.HasLocation() {
			continue
		}
		lats = append(lats, s.Latitude)
		lons = append(lons, s.Longitude)
		if s.Speed != nil {
			speeds = append(speeds, *s.Speed)
		}
		if s.Heading != nil {
			headings = append(headings, *s.Heading)
		}
	}
	if len(lats) < 2 {
		return
	}

	fv["gps_present"] = 1
	fv["gps_speed_mean"] = stats.Mean(speeds)
	fv["gps_speed_std"] = stats.StdDev(speeds)
	fv["gps_speed_min"] = stats.Min(speeds)
	fv["gps_speed_max"] = stats.Max(speeds)
	fv["gps_speed_range"] = stats.Range(speeds)
	fv["gps_heading_std"] = stats.StdDev(headings)

	totalDistance := spatial.PathLength(lats, lons)
	displacement := spatial.HaversineDistance(lats[0], lons[0], lats[len(lats)-1], lons[len(lons)-1])

	fv["gps_total_distance"] = totalDistance
	fv["gps_displacement"] = displacement
	if totalDistance > 0 {
		// Movement efficiency: 1.0 means a perfectly straight path
		fv["gps_efficiency"] = displacement / totalDistance
	}
}

// sampleRateHz estimates the window's sampling rate from its time span
func sampleRateHz(win Window) float64 {
	spanMs := win.EndTime - win.StartTime
	if spanMs <= 0 || len(win.Samples) < 2 {
		return 0
	}
	return float64(len(win.Samples)-1) / (float64(spanMs) / 1000.0)
}

// WindowDistanceMeters returns the cumulative GPS path distance of a window
func WindowDistanceMeters(win Window) float64 {
	var lats, lons []float64
	for _, s := range win.Samples {
		if s.HasLocation() {
			lats = append(lats, s.Latitude)
			lons = append(lons, s.Longitude)
		}
	}
	return spatial.PathLength(lats, lons)
}

// WindowMeanSpeed returns the mean of the window's recorded speeds in m/s,
// and whether any speed was recorded
func WindowMeanSpeed(win Window) (float64, bool) {
	var speeds []float64
	for _, s := range win.Samples {
		if s.Speed != nil {
			speeds = append(speeds, *s.Speed)
		}
	}
	if len(speeds) == 0 {
		return 0, false
	}
	return stats.Mean(speeds), true
}

// WindowCentroid returns the mean coordinate of the window's located samples
func WindowCentroid(win Window) (lat, lng float64, ok bool) {
	var lats, lons []float64
	for _, s := range win.Samples {
		if s.HasLocation() {
			lats = append(lats, s.Latitude)
			lons = append(lons, s.Longitude)
		}
	}
	if len(lats) == 0 {
		return 0, 0, false
	}
	return stats.Mean(lats), stats.Mean(lons), true
}
