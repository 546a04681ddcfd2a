package models

import "math"

// Vector3 is a single 3-axis inertial sensor reading (m/s² or rad/s)
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Magnitude returns the Euclidean norm of the vector
func (v Vector3) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// TelemetrySample represents one instant of captured location + inertial data.
// Samples are immutable once recorded and owned by the journey they belong to.
// Timestamps are Unix milliseconds and must be non-decreasing within a journey.
type TelemetrySample struct {
	Timestamp int64   `json:"timestamp" db:"timestamp"` // Unix milliseconds
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
	Accuracy  float64 `json:"accuracy" db:"accuracy"` // horizontal accuracy in meters

	// Optional channels; nil when the capture layer did not record them
	Speed           *float64 `json:"speed,omitempty" db:"speed"`     // m/s
	Heading         *float64 `json:"heading,omitempty" db:"heading"` // degrees 0-360
	Acceleration    *Vector3 `json:"acceleration,omitempty"`
	AngularVelocity *Vector3 `json:"angular_velocity,omitempty"`
}

// HasLocation reports whether the sample carries a plausible coordinate
func (s TelemetrySample) HasLocation() bool {
	return s.Latitude >= -90 && s.Latitude <= 90 &&
		s.Longitude >= -180 && s.Longitude <= 180 &&
		!(s.Latitude == 0 && s.Longitude == 0)
}

// Journey is the journey record the pipeline analyzes. The capture and
// account layers own journey lifecycle; the pipeline only reads it.
type Journey struct {
	ID        string `json:"id" db:"id"`
	OwnerID   string `json:"owner_id" db:"owner_id"`
	StartTime int64  `json:"start_time" db:"start_time"` // Unix milliseconds
	EndTime   int64  `json:"end_time" db:"end_time"`     // Unix milliseconds, 0 while active
	Status    string `json:"status" db:"status"`
}

// Journey status constants
const (
	JourneyStatusActive    = "active"
	JourneyStatusCompleted = "completed"
)
