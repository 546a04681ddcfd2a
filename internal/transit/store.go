// Package transit implements the transit-feed side of the analysis: a
// sqlite-backed store of GTFS routes, stops, and real-time vehicle
// positions, queried by the fusion engine through the pipeline's
// VehicleFinder port.
package transit

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/accesspath/journey-backend-go/internal/database"
	"github.com/accesspath/journey-backend-go/internal/models"
	"github.com/accesspath/journey-backend-go/internal/spatial"
)

// Store provides read and ingest access to the transit feed tables
type Store struct {
	db *sql.DB
}

// NewStore creates a transit store over an initialized database
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindVehiclesNear returns vehicle observations within radiusMeters of the
// location and within timeWindow of the timestamp. A bounding box prefilter
// keeps the query indexable; exact distances are refined with haversine.
// Results are ordered nearest first.
func (s *Store) FindVehiclesNear(ctx context.Context, lat, lng, radiusMeters float64, timestamp int64, timeWindow time.Duration) ([]models.TransitVehicleObservation, error) {
	minLat, maxLat, minLon, maxLon := spatial.BoundingBox(lat, lng, radiusMeters)
	windowMs := timeWindow.Milliseconds()

	query := `
		SELECT vp.vehicle_id, vp.trip_id, vp.route_id, COALESCE(vp.stop_id, ''),
		       vp.latitude, vp.longitude, vp.timestamp, COALESCE(r.route_type, -1)
		FROM vehicle_positions vp
		LEFT JOIN transit_routes r ON vp.route_id = r.route_id
		WHERE vp.latitude BETWEEN ? AND ?
		  AND vp.longitude BETWEEN ? AND ?
		  AND vp.timestamp BETWEEN ? AND ?
		ORDER BY vp.timestamp DESC
	`

	rows, err := s.db.QueryContext(ctx, query,
		minLat, maxLat, minLon, maxLon,
		timestamp-windowMs, timestamp+windowMs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicle positions: %w", err)
	}
	defer rows.Close()

	var observations []models.TransitVehicleObservation
	for rows.Next() {
		var obs models.TransitVehicleObservation
		if err := rows.Scan(&obs.VehicleID, &obs.TripID, &obs.RouteID, &obs.StopID,
			&obs.Latitude, &obs.Longitude, &obs.Timestamp, &obs.RouteType); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle position: %w", err)
		}
		if spatial.HaversineDistance(lat, lng, obs.Latitude, obs.Longitude) <= radiusMeters {
			observations = append(observations, obs)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vehicle positions: %w", err)
	}

	sort.SliceStable(observations, func(i, j int) bool {
		di := spatial.HaversineDistance(lat, lng, observations[i].Latitude, observations[i].Longitude)
		dj := spatial.HaversineDistance(lat, lng, observations[j].Latitude, observations[j].Longitude)
		return di < dj
	})

	return observations, nil
}

// InsertVehiclePositions ingests a batch of real-time vehicle observations.
// Re-ingesting the same (vehicle, timestamp) pair overwrites the row.
func (s *Store) InsertVehiclePositions(ctx context.Context, observations []models.TransitVehicleObservation) error {
	if len(observations) == 0 {
		return nil
	}

	return database.Transaction(s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO vehicle_positions
				(vehicle_id, trip_id, route_id, stop_id, latitude, longitude, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, obs := range observations {
			if _, err := stmt.ExecContext(ctx,
				obs.VehicleID, obs.TripID, obs.RouteID, nullable(obs.StopID),
				obs.Latitude, obs.Longitude, obs.Timestamp,
			); err != nil {
				return fmt.Errorf("failed to insert vehicle position: %w", err)
			}
		}

		return nil
	})
}

// UpsertRoute stores a static route record
func (s *Store) UpsertRoute(ctx context.Context, route models.TransitRoute) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO transit_routes
			(route_id, short_name, long_name, route_type, agency_id)
		VALUES (?, ?, ?, ?, ?)
	`, route.RouteID, route.ShortName, route.LongName, route.RouteType, route.AgencyID)
	if err != nil {
		return fmt.Errorf("failed to upsert route: %w", err)
	}
	return nil
}

// UpsertStop stores a static stop record
func (s *Store) UpsertStop(ctx context.Context, stop models.TransitStop) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO transit_stops
			(stop_id, name, latitude, longitude, wheelchair_boarding)
		VALUES (?, ?, ?, ?, ?)
	`, stop.StopID, stop.Name, stop.Latitude, stop.Longitude, boolToInt(stop.WheelchairBoarding))
	if err != nil {
		return fmt.Errorf("failed to upsert stop: %w", err)
	}
	return nil
}

// RouteInfo returns a route record; nil when unknown
func (s *Store) RouteInfo(ctx context.Context, routeID string) (*models.TransitRoute, error) {
	var route models.TransitRoute
	err := s.db.QueryRowContext(ctx, `
		SELECT route_id, short_name, long_name, route_type, COALESCE(agency_id, '')
		FROM transit_routes WHERE route_id = ?
	`, routeID).Scan(&route.RouteID, &route.ShortName, &route.LongName, &route.RouteType, &route.AgencyID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	return &route, nil
}

// StopInfo returns a stop record; nil when unknown
func (s *Store) StopInfo(ctx context.Context, stopID string) (*models.TransitStop, error) {
	var stop models.TransitStop
	var wheelchair int
	err := s.db.QueryRowContext(ctx, `
		SELECT stop_id, name, latitude, longitude, wheelchair_boarding
		FROM transit_stops WHERE stop_id = ?
	`, stopID).Scan(&stop.StopID, &stop.Name, &stop.Latitude, &stop.Longitude, &wheelchair)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stop: %w", err)
	}
	stop.WheelchairBoarding = wheelchair == 1
	return &stop, nil
}

// AccessibleStopsNear returns wheelchair-accessible stops within
// radiusMeters of the location, nearest first, capped at limit
func (s *Store) AccessibleStopsNear(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]models.TransitStop, error) {
	if limit <= 0 {
		limit = 20
	}
	minLat, maxLat, minLon, maxLon := spatial.BoundingBox(lat, lng, radiusMeters)

	rows, err := s.db.QueryContext(ctx, `
		SELECT stop_id, name, latitude, longitude, wheelchair_boarding
		FROM transit_stops
		WHERE latitude BETWEEN ? AND ?
		  AND longitude BETWEEN ? AND ?
		  AND wheelchair_boarding = 1
	`, minLat, maxLat, minLon, maxLon)
	if err != nil {
		return nil, fmt.Errorf("failed to query stops: %w", err)
	}
	defer rows.Close()

	var stops []models.TransitStop
	for rows.Next() {
		var stop models.TransitStop
		var wheelchair int
		if err := rows.Scan(&stop.StopID, &stop.Name, &stop.Latitude, &stop.Longitude, &wheelchair); err != nil {
			return nil, fmt.Errorf("failed to scan stop: %w", err)
		}
		stop.WheelchairBoarding = wheelchair == 1
		if spatial.HaversineDistance(lat, lng, stop.Latitude, stop.Longitude) <= radiusMeters {
			stops = append(stops, stop)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stops: %w", err)
	}

	sort.SliceStable(stops, func(i, j int) bool {
		di := spatial.HaversineDistance(lat, lng, stops[i].Latitude, stops[i].Longitude)
		dj := spatial.HaversineDistance(lat, lng, stops[j].Latitude, stops[j].Longitude)
		return di < dj
	})
	if len(stops) > limit {
		stops = stops[:limit]
	}

	return stops, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
