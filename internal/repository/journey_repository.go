package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/accesspath/journey-backend-go/internal/database"
	"github.com/accesspath/journey-backend-go/internal/models"
	"github.com/accesspath/journey-backend-go/internal/pipeline"
)

// JourneyRepository handles database access for journeys, their telemetry,
// and persisted analyses. It implements the pipeline's SampleSource port.
type JourneyRepository struct {
	db *sql.DB
}

// NewJourneyRepository creates a new journey repository
func NewJourneyRepository(db *sql.DB) *JourneyRepository {
	return &JourneyRepository{db: db}
}

// Journey retrieves a journey record by id
func (r *JourneyRepository) Journey(ctx context.Context, journeyID string) (*models.Journey, error) {
	var j models.Journey
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, start_time, end_time, status
		FROM journeys WHERE id = ?
	`, journeyID).Scan(&j.ID, &j.OwnerID, &j.StartTime, &j.EndTime, &j.Status)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("journey %s: %w", journeyID, pipeline.ErrJourneyNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journey: %w", err)
	}
	return &j, nil
}

// Samples retrieves a journey's telemetry ordered by timestamp
func (r *JourneyRepository) Samples(ctx context.Context, journeyID string) ([]models.TelemetrySample, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT timestamp, latitude, longitude, accuracy, speed, heading,
		       accel_x, accel_y, accel_z, gyro_x, gyro_y, gyro_z
		FROM telemetry_samples
		WHERE journey_id = ?
		ORDER BY timestamp
	`, journeyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var samples []models.TelemetrySample
	for rows.Next() {
		var s models.TelemetrySample
		var speed, heading sql.NullFloat64
		var ax, ay, az, gx, gy, gz sql.NullFloat64

		if err := rows.Scan(&s.Timestamp, &s.Latitude, &s.Longitude, &s.Accuracy,
			&speed, &heading, &ax, &ay, &az, &gx, &gy, &gz); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}

		if speed.Valid {
			v := speed.Float64
			s.Speed = &v
		}
		if heading.Valid {
			v := heading.Float64
			s.Heading = &v
		}
		if ax.Valid && ay.Valid && az.Valid {
			s.Acceleration = &models.Vector3{X: ax.Float64, Y: ay.Float64, Z: az.Float64}
		}
		if gx.Valid && gy.Valid && gz.Valid {
			s.AngularVelocity = &models.Vector3{X: gx.Float64, Y: gy.Float64, Z: gz.Float64}
		}

		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// CreateJourney stores a journey record
func (r *JourneyRepository) CreateJourney(ctx context.Context, j models.Journey) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO journeys (id, owner_id, start_time, end_time, status)
		VALUES (?, ?, ?, ?, ?)
	`, j.ID, j.OwnerID, j.StartTime, j.EndTime, j.Status)
	if err != nil {
		return fmt.Errorf("failed to create journey: %w", err)
	}
	return nil
}

// InsertSamples ingests a journey's telemetry in one transaction
func (r *JourneyRepository) InsertSamples(ctx context.Context, journeyID string, samples []models.TelemetrySample) error {
	if len(samples) == 0 {
		return nil
	}

	return database.Transaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO telemetry_samples
				(journey_id, timestamp, latitude, longitude, accuracy, speed, heading,
				 accel_x, accel_y, accel_z, gyro_x, gyro_y, gyro_z)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, s := range samples {
			var ax, ay, az, gx, gy, gz interface{}
			if s.Acceleration != nil {
				ax, ay, az = s.Acceleration.X, s.Acceleration.Y, s.Acceleration.Z
			}
			if s.AngularVelocity != nil {
				gx, gy, gz = s.AngularVelocity.X, s.AngularVelocity.Y, s.AngularVelocity.Z
			}
			var speed, heading interface{}
			if s.Speed != nil {
				speed = *s.Speed
			}
			if s.Heading != nil {
				heading = *s.Heading
			}

			if _, err := stmt.ExecContext(ctx, journeyID, s.Timestamp, s.Latitude, s.Longitude,
				s.Accuracy, speed, heading, ax, ay, az, gx, gy, gz); err != nil {
				return fmt.Errorf("failed to insert sample: %w", err)
			}
		}

		return nil
	})
}

// SaveAnalysis persists an analysis aggregate, replacing any previous
// analysis of the same journey. The full aggregate is stored as JSON with
// a few scalar columns broken out for indexed queries.
func (r *JourneyRepository) SaveAnalysis(ctx context.Context, analysis *models.JourneyAnalysis) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO journey_analyses
			(id, journey_id, owner_id, accessibility_score, segment_count,
			 anomaly_count, algo_version, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, analysis.ID, analysis.JourneyID, analysis.OwnerID, analysis.AccessibilityScore,
		len(analysis.Segments), len(analysis.Anomalies), analysis.AlgoVersion, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// Analysis retrieves a journey's persisted analysis; nil when the journey
// has not been analyzed
func (r *JourneyRepository) Analysis(ctx context.Context, journeyID string) (*models.JourneyAnalysis, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `
		SELECT result_json FROM journey_analyses WHERE journey_id = ?
	`, journeyID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	var analysis models.JourneyAnalysis
	if err := json.Unmarshal([]byte(payload), &analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	return &analysis, nil
}
