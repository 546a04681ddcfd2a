package models

// GTFS route type constants (the subset the fusion engine understands)
const (
	RouteTypeTram  = 0
	RouteTypeTrain = 1
	RouteTypeBus   = 3
)

// ModeForRouteType maps a GTFS route type onto a transport mode.
// Unmapped route types return ok=false, never a guessed mode.
func ModeForRouteType(routeType int) (TransportMode, bool) {
	switch routeType {
	case RouteTypeTram:
		return ModeTram, true
	case RouteTypeTrain:
		return ModeTrain, true
	case RouteTypeBus:
		return ModeBus, true
	}
	return "", false
}

// TransitVehicleObservation is one real-time vehicle position read from the
// external transit feed. Never created or mutated by the pipeline.
type TransitVehicleObservation struct {
	VehicleID string  `json:"vehicle_id" db:"vehicle_id"`
	RouteID   string  `json:"route_id" db:"route_id"`
	TripID    string  `json:"trip_id" db:"trip_id"`
	StopID    string  `json:"stop_id,omitempty" db:"stop_id"`
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
	Timestamp int64   `json:"timestamp" db:"timestamp"` // Unix milliseconds
	RouteType int     `json:"route_type" db:"route_type"`
}

// TransitLink ties a segment or matched point back to the transit network
type TransitLink struct {
	TripID  string `json:"trip_id,omitempty"`
	RouteID string `json:"route_id,omitempty"`
	StopID  string `json:"stop_id,omitempty"`
}

// TransitRoute is a static GTFS route record
type TransitRoute struct {
	RouteID   string `json:"route_id" db:"route_id"`
	ShortName string `json:"short_name" db:"short_name"`
	LongName  string `json:"long_name" db:"long_name"`
	RouteType int    `json:"route_type" db:"route_type"`
	AgencyID  string `json:"agency_id,omitempty" db:"agency_id"`
}

// TransitStop is a static GTFS stop record, including the wheelchair
// boarding flag used by the accessible-stops query
type TransitStop struct {
	StopID             string  `json:"stop_id" db:"stop_id"`
	Name               string  `json:"name" db:"name"`
	Latitude           float64 `json:"latitude" db:"latitude"`
	Longitude          float64 `json:"longitude" db:"longitude"`
	WheelchairBoarding bool    `json:"wheelchair_boarding" db:"wheelchair_boarding"`
}
