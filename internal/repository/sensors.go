package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SensorRepository reads and writes sensor readings outside the snapshot
// path: MQTT ingestion inserts, the quick-check scan, and the advice
// engine's latest-value lookup.
type SensorRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSensorRepository creates a sensor repository.
func NewSensorRepository(db *sql.DB, logger *zap.Logger) *SensorRepository {
	return &SensorRepository{
		db:     db,
		logger: logger,
	}
}

// CriticalSensor is one row of the quick-check scan: a sensor joined with
// its garden's owner and the latest reading, if any.
type CriticalSensor struct {
	SensorID   int64
	SensorType string
	GardenID   int64
	GardenName string
	UserID     int64
	Value      *float64
	ReadAt     *time.Time
}

// ListSensorsWithLatest returns every sensor of the given types across all
// gardens, each with its newest reading (nil when the sensor never reported).
func (r *SensorRepository) ListSensorsWithLatest(ctx context.Context, types []string) ([]CriticalSensor, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("sensor types are required")
	}

	placeholders := make([]string, 0, len(types))
	args := make([]interface{}, 0, len(types))
	for i, t := range types {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, t)
	}

	query := fmt.Sprintf(`
		SELECT s.id, s.type, s.garden_id, g.name, g.user_id, d.value, d.timestamp
		FROM sensors s
		JOIN gardens g ON g.id = s.garden_id
		LEFT JOIN LATERAL (
			SELECT value, timestamp
			FROM sensor_data
			WHERE sensor_id = s.id
			ORDER BY timestamp DESC
			LIMIT 1
		) d ON true
		WHERE s.type IN (%s)
		ORDER BY s.id ASC
	`, strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list critical sensors: %w", err)
	}
	defer rows.Close()

	var sensors []CriticalSensor
	for rows.Next() {
		var s CriticalSensor
		var value sql.NullFloat64
		var readAt sql.NullTime
		if err := rows.Scan(&s.SensorID, &s.SensorType, &s.GardenID, &s.GardenName, &s.UserID, &value, &readAt); err != nil {
			return nil, fmt.Errorf("failed to scan critical sensor: %w", err)
		}
		if value.Valid {
			s.Value = &value.Float64
		}
		if readAt.Valid {
			s.ReadAt = &readAt.Time
		}
		sensors = append(sensors, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate critical sensors: %w", err)
	}

	return sensors, nil
}

// LatestReadingsByGarden returns the newest value per sensor type for one
// garden, keyed by lower-cased sensor type.
func (r *SensorRepository) LatestReadingsByGarden(ctx context.Context, gardenID int64) (map[string]float64, error) {
	if gardenID <= 0 {
		return nil, fmt.Errorf("garden_id is required")
	}

	query := `
		SELECT s.type, d.value
		FROM sensors s
		JOIN LATERAL (
			SELECT value
			FROM sensor_data
			WHERE sensor_id = s.id
			ORDER BY timestamp DESC
			LIMIT 1
		) d ON true
		WHERE s.garden_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, gardenID)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest readings: %w", err)
	}
	defer rows.Close()

	readings := make(map[string]float64)
	for rows.Next() {
		var sensorType string
		var value float64
		if err := rows.Scan(&sensorType, &value); err != nil {
			return nil, fmt.Errorf("failed to scan latest reading: %w", err)
		}
		readings[strings.ToLower(sensorType)] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate latest readings: %w", err)
	}

	return readings, nil
}

// InsertReading stores one reported data point. The sensor must belong to
// the garden named in the ingest topic; mismatches are rejected.
func (r *SensorRepository) InsertReading(ctx context.Context, gardenID, sensorID int64, value float64, timestamp time.Time) error {
	if gardenID <= 0 {
		return fmt.Errorf("garden_id is required")
	}
	if sensorID <= 0 {
		return fmt.Errorf("sensor_id is required")
	}

	query := `
		INSERT INTO sensor_data (sensor_id, value, timestamp)
		SELECT id, $3, $4 FROM sensors WHERE id = $1 AND garden_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, sensorID, gardenID, value, timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert sensor reading: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read insert result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("sensor %d in garden %d: %w", sensorID, gardenID, ErrNotFound)
	}

	return nil
}
