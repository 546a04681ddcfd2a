package models

// TransportMode is the set of modes the classifier can emit
type TransportMode string

// TransportMode constants
const (
	ModeWalking    TransportMode = "walking"
	ModeCycling    TransportMode = "cycling"
	ModeBus        TransportMode = "bus"
	ModeTrain      TransportMode = "train"
	ModeTram       TransportMode = "tram"
	ModeCar        TransportMode = "car"
	ModeStationary TransportMode = "stationary"
)

// TransportModes lists all modes in a fixed order. The order is part of the
// classifier contract: probability distributions are reported over this set.
var TransportModes = []TransportMode{
	ModeWalking,
	ModeCycling,
	ModeBus,
	ModeTrain,
	ModeTram,
	ModeCar,
	ModeStationary,
}

// IsTransit reports whether the mode can be cross-referenced against the
// transit vehicle feed. Car, walking and cycling are not transit-fusible.
func (m TransportMode) IsTransit() bool {
	return m == ModeBus || m == ModeTrain || m == ModeTram
}

// Valid reports whether m is a known transport mode
func (m TransportMode) Valid() bool {
	for _, known := range TransportModes {
		if m == known {
			return true
		}
	}
	return false
}

// FeatureVector is a named mapping of feature name to value, derived
// deterministically from one telemetry window. Ephemeral: consumed by the
// classifier and discarded, never persisted.
type FeatureVector map[string]float64

// ModePrediction is the classifier verdict for one window
type ModePrediction struct {
	WindowIndex   int                       `json:"window_index"`
	Mode          TransportMode             `json:"mode"`
	Confidence    float64                   `json:"confidence"` // [0,1]
	Probabilities map[TransportMode]float64 `json:"probabilities"`
}
