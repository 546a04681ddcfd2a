// Package classifier provides the built-in transport mode classifier.
//
// The pipeline treats classification as an injected port, so deployments
// with a trained model plug their own implementation in; this package ships
// a deterministic speed/vibration heuristic that keeps the system fully
// functional without one.
package classifier

import (
	"github.com/accesspath/journey-backend-go/internal/models"
	"github.com/accesspath/journey-backend-go/internal/pipeline"
)

// Speed band boundaries (m/s) for the heuristic
const (
	stationarySpeedCeiling = 0.3
	walkingSpeedCeiling    = 2.0
	cyclingSpeedCeiling    = 8.0
	tramSpeedCeiling       = 15.0
	busSpeedCeiling        = 30.0

	// A stationary device shows almost no acceleration variance beyond
	// gravity
	stationaryAccelStdCeiling = 0.3
)

// Heuristic classifies windows by mean GPS speed and acceleration variance.
// It implements pipeline.Classifier.
type Heuristic struct{}

// NewHeuristic creates the heuristic classifier
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Schema returns the feature ordering the heuristic reads. It matches the
// extractor's schema exactly since both live in this repo.
func (h *Heuristic) Schema() []string {
	return pipeline.FeatureSchema()
}

// Classify maps a feature vector onto a transport mode. Deterministic:
// equal vectors always produce equal predictions.
func (h *Heuristic) Classify(fv models.FeatureVector) (models.ModePrediction, error) {
	meanSpeed := fv["gps_speed_mean"]
	accelStd := fv["accel_magnitude_std"]
	accelPresent := fv["accel_present"] > 0
	gpsPresent := fv["gps_present"] > 0

	var mode models.TransportMode
	var confidence float64

	switch {
	case gpsPresent && meanSpeed < stationarySpeedCeiling && (!accelPresent || accelStd < stationaryAccelStdCeiling):
		mode = models.ModeStationary
		confidence = 1.0
	case !gpsPresent && accelPresent && accelStd < stationaryAccelStdCeiling:
		mode = models.ModeStationary
		confidence = 0.8
	case meanSpeed < walkingSpeedCeiling:
		mode = models.ModeWalking
		confidence = 0.7
	case meanSpeed < cyclingSpeedCeiling:
		mode = models.ModeCycling
		confidence = 0.6
	case meanSpeed < tramSpeedCeiling:
		mode = models.ModeTram
		confidence = 0.5
	case meanSpeed < busSpeedCeiling:
		mode = models.ModeBus
		confidence = 0.5
	default:
		mode = models.ModeTrain
		confidence = 0.6
	}

	// High vibration at road speeds points at a car over rail modes
	if (mode == models.ModeTram || mode == models.ModeBus) && accelPresent && accelStd > 2.0 {
		mode = models.ModeCar
		confidence = 0.5
	}

	return models.ModePrediction{
		Mode:          mode,
		Confidence:    confidence,
		Probabilities: distribution(mode, confidence),
	}, nil
}

// distribution builds a full probability distribution: the predicted mode
// takes the confidence mass and the remainder spreads evenly over the
// other modes so the distribution sums to exactly 1
func distribution(mode models.TransportMode, confidence float64) map[models.TransportMode]float64 {
	probs := make(map[models.TransportMode]float64, len(models.TransportModes))
	rest := (1.0 - confidence) / float64(len(models.TransportModes)-1)
	var assigned float64
	for _, m := range models.TransportModes {
		if m == mode {
			continue
		}
		probs[m] = rest
		assigned += rest
	}
	// Give any floating remainder to the predicted mode to keep the sum
	// at exactly 1
	probs[mode] = 1.0 - assigned
	return probs
}
