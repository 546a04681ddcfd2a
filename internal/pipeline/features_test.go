package pipeline

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/accesspath/journey-backend-go/internal/models"
)

// sensorWindow builds a window with full accel/gyro/GPS channels
func sensorWindow(start int64, count int, speed float64) Window {
	samples := make([]models.TelemetrySample, 0, count)
	for i := 0; i < count; i++ {
		s := speed
		samples = append(samples, models.TelemetrySample{
			Timestamp:       start + int64(i)*1000,
			Latitude:        52.52 + float64(i)*0.0001,
			Longitude:       13.405,
			Accuracy:        5,
			Speed:           &s,
			Acceleration:    &models.Vector3{X: 0.1 * float64(i%3), Y: 0.2, Z: 9.81},
			AngularVelocity: &models.Vector3{X: 0.01, Y: 0.02, Z: 0.03},
		})
	}
	return Window{
		Index:     0,
		StartTime: samples[0].Timestamp,
		EndTime:   samples[len(samples)-1].Timestamp,
		Samples:   samples,
	}
}

func TestExtractFeaturesCoversSchema(t *testing.T) {
	fv := ExtractFeatures(sensorWindow(1_700_000_000_000, 10, 1.2))

	schema := FeatureSchema()
	if len(fv) != len(schema) {
		t.Fatalf("feature vector has %d entries, schema has %d", len(fv), len(schema))
	}
	for _, name := range schema {
		if _, ok := fv[name]; !ok {
			t.Errorf("schema feature %q missing from vector", name)
		}
	}
}

func TestExtractFeaturesChannelFlags(t *testing.T) {
	full := ExtractFeatures(sensorWindow(1_700_000_000_000, 10, 1.2))
	if full["accel_present"] != 1 || full["gyro_present"] != 1 || full["gps_present"] != 1 {
		t.Errorf("expected all channel flags set, got accel=%v gyro=%v gps=%v",
			full["accel_present"], full["gyro_present"], full["gps_present"])
	}

	// GPS-only window: inertial features report 0 with flags cleared
	win := sensorWindow(1_700_000_000_000, 10, 1.2)
	for i := range win.Samples {
		win.Samples[i].Acceleration = nil
		win.Samples[i].AngularVelocity = nil
	}
	gpsOnly := ExtractFeatures(win)
	if gpsOnly["accel_present"] != 0 || gpsOnly["gyro_present"] != 0 {
		t.Errorf("expected inertial flags cleared, got accel=%v gyro=%v",
			gpsOnly["accel_present"], gpsOnly["gyro_present"])
	}
	if gpsOnly["accel_magnitude_mean"] != 0 || gpsOnly["gyro_magnitude_mean"] != 0 {
		t.Errorf("expected absent-channel features to be 0, got accel_mean=%v gyro_mean=%v",
			gpsOnly["accel_magnitude_mean"], gpsOnly["gyro_magnitude_mean"])
	}
}

func TestExtractFeaturesDeterministic(t *testing.T) {
	a := ExtractFeatures(sensorWindow(1_700_000_000_000, 12, 2.5))
	b := ExtractFeatures(sensorWindow(1_700_000_000_000, 12, 2.5))
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("equal windows produced different vectors (-a +b):\n%s", diff)
	}
}

func TestExtractFeaturesStationaryDevice(t *testing.T) {
	// A resting device reads gravity only: magnitude ~9.81, near-zero std
	samples := make([]models.TelemetrySample, 10)
	for i := range samples {
		zero := 0.0
		samples[i] = models.TelemetrySample{
			Timestamp:    1_700_000_000_000 + int64(i)*1000,
			Latitude:     52.52,
			Longitude:    13.405,
			Accuracy:     5,
			Speed:        &zero,
			Acceleration: &models.Vector3{X: 0, Y: 0, Z: 9.81},
		}
	}
	win := Window{StartTime: samples[0].Timestamp, EndTime: samples[9].Timestamp, Samples: samples}
	fv := ExtractFeatures(win)

	if math.Abs(fv["accel_magnitude_mean"]-9.81) > 1e-9 {
		t.Errorf("expected gravity-only magnitude mean ~9.81, got %v", fv["accel_magnitude_mean"])
	}
	if fv["accel_magnitude_std"] > 1e-9 {
		t.Errorf("expected near-zero std for resting device, got %v", fv["accel_magnitude_std"])
	}
	if fv["gps_speed_mean"] != 0 {
		t.Errorf("expected zero mean speed, got %v", fv["gps_speed_mean"])
	}
}

func TestExtractFeaturesEfficiencyStraightPath(t *testing.T) {
	// Samples along a meridian: displacement equals path length
	fv := ExtractFeatures(sensorWindow(1_700_000_000_000, 10, 1.4))
	if eff := fv["gps_efficiency"]; math.Abs(eff-1.0) > 1e-6 {
		t.Errorf("expected efficiency ~1.0 on a straight path, got %v", eff)
	}
	if fv["gps_total_distance"] <= 0 || fv["gps_displacement"] <= 0 {
		t.Errorf("expected positive distance features, got total=%v displacement=%v",
			fv["gps_total_distance"], fv["gps_displacement"])
	}
}
