package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"garden-monitor/internal/models"

	"go.uber.org/zap"
)

// GardenRepository reads gardens and assembles per-check snapshots.
type GardenRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewGardenRepository creates a garden repository.
func NewGardenRepository(db *sql.DB, logger *zap.Logger) *GardenRepository {
	return &GardenRepository{
		db:     db,
		logger: logger,
	}
}

const gardenColumns = `
	id, user_id, name, status, latitude, longitude,
	plant_name, plant_grow_stage, plant_start_date, plant_duration,
	created_at, updated_at`

func scanGarden(row interface{ Scan(...interface{}) error }) (*models.Garden, error) {
	var g models.Garden
	var plantName, plantGrowStage sql.NullString
	var plantStartDate sql.NullTime
	var plantDuration sql.NullInt64

	err := row.Scan(
		&g.ID,
		&g.UserID,
		&g.Name,
		&g.Status,
		&g.Latitude,
		&g.Longitude,
		&plantName,
		&plantGrowStage,
		&plantStartDate,
		&plantDuration,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if plantName.Valid {
		g.PlantName = &plantName.String
	}
	if plantGrowStage.Valid {
		g.PlantGrowStage = &plantGrowStage.String
	}
	if plantStartDate.Valid {
		g.PlantStartDate = &plantStartDate.Time
	}
	if plantDuration.Valid {
		d := int(plantDuration.Int64)
		g.PlantDuration = &d
	}

	return &g, nil
}

// GetGarden returns one garden by id, or ErrNotFound.
func (r *GardenRepository) GetGarden(ctx context.Context, gardenID int64) (*models.Garden, error) {
	if gardenID <= 0 {
		return nil, fmt.Errorf("garden_id is required")
	}

	query := `SELECT` + gardenColumns + ` FROM gardens WHERE id = $1`

	garden, err := scanGarden(r.db.QueryRowContext(ctx, query, gardenID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("garden %d: %w", gardenID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get garden: %w", err)
	}

	return garden, nil
}

// ListActiveGardens returns all ACTIVE gardens ordered by id ascending,
// the iteration order of a scheduled batch run.
func (r *GardenRepository) ListActiveGardens(ctx context.Context) ([]models.Garden, error) {
	query := `SELECT` + gardenColumns + ` FROM gardens WHERE status = $1 ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, models.GardenStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active gardens: %w", err)
	}
	defer rows.Close()

	var gardens []models.Garden
	for rows.Next() {
		garden, err := scanGarden(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan garden: %w", err)
		}
		gardens = append(gardens, *garden)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate gardens: %w", err)
	}

	return gardens, nil
}

// GetSnapshot assembles the immutable per-check bundle for one garden:
// sensors with recent readings, latest weather, upcoming forecasts, recent
// activities, the 7-day watering schedule and recent photos. Missing
// sections come back empty, never as errors; only a missing garden fails.
func (r *GardenRepository) GetSnapshot(ctx context.Context, gardenID int64, now time.Time) (*models.GardenSnapshot, error) {
	garden, err := r.GetGarden(ctx, gardenID)
	if err != nil {
		return nil, err
	}

	snapshot := &models.GardenSnapshot{Garden: *garden}

	if snapshot.Sensors, err = r.sensorsWithReadings(ctx, gardenID); err != nil {
		return nil, err
	}
	if snapshot.Weather, err = r.latestObservation(ctx, gardenID); err != nil {
		return nil, err
	}
	if snapshot.Forecasts, err = r.upcomingForecasts(ctx, gardenID, now); err != nil {
		return nil, err
	}
	if snapshot.Activities, err = r.recentActivities(ctx, gardenID); err != nil {
		return nil, err
	}
	if snapshot.WateringSchedule, err = r.recentWateringSchedule(ctx, gardenID, now); err != nil {
		return nil, err
	}
	if snapshot.Photos, err = r.recentPhotos(ctx, gardenID); err != nil {
		return nil, err
	}

	return snapshot, nil
}

func (r *GardenRepository) sensorsWithReadings(ctx context.Context, gardenID int64) ([]models.SensorWithReadings, error) {
	query := `
		SELECT id, garden_id, type, name
		FROM sensors
		WHERE garden_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, gardenID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sensors: %w", err)
	}
	defer rows.Close()

	var sensors []models.SensorWithReadings
	for rows.Next() {
		var s models.SensorWithReadings
		if err := rows.Scan(&s.ID, &s.GardenID, &s.Type, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan sensor: %w", err)
		}
		sensors = append(sensors, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sensors: %w", err)
	}

	for i := range sensors {
		readings, err := r.recentReadings(ctx, sensors[i].ID)
		if err != nil {
			return nil, err
		}
		sensors[i].Readings = readings
	}

	return sensors, nil
}

func (r *GardenRepository) recentReadings(ctx context.Context, sensorID int64) ([]models.SensorReading, error) {
	query := `
		SELECT id, sensor_id, value, timestamp
		FROM sensor_data
		WHERE sensor_id = $1
		ORDER BY timestamp DESC
		LIMIT 10
	`

	rows, err := r.db.QueryContext(ctx, query, sensorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sensor readings: %w", err)
	}
	defer rows.Close()

	var readings []models.SensorReading
	for rows.Next() {
		var d models.SensorReading
		if err := rows.Scan(&d.ID, &d.SensorID, &d.Value, &d.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan sensor reading: %w", err)
		}
		readings = append(readings, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sensor readings: %w", err)
	}

	return readings, nil
}

func (r *GardenRepository) latestObservation(ctx context.Context, gardenID int64) (*models.WeatherObservation, error) {
	query := `
		SELECT id, garden_id, weather_main, temp, humidity, wind_speed, rain_1h, observed_at
		FROM weather_observations
		WHERE garden_id = $1
		ORDER BY observed_at DESC
		LIMIT 1
	`

	var o models.WeatherObservation
	err := r.db.QueryRowContext(ctx, query, gardenID).Scan(
		&o.ID, &o.GardenID, &o.WeatherMain, &o.Temp, &o.Humidity, &o.WindSpeed, &o.Rain1h, &o.ObservedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get weather observation: %w", err)
	}

	return &o, nil
}

func (r *GardenRepository) upcomingForecasts(ctx context.Context, gardenID int64, now time.Time) ([]models.DailyForecast, error) {
	query := `
		SELECT id, garden_id, forecast_for, temp_max, temp_min, rain, wind_speed, pop
		FROM daily_forecasts
		WHERE garden_id = $1 AND forecast_for >= $2
		ORDER BY forecast_for ASC
		LIMIT 3
	`

	rows, err := r.db.QueryContext(ctx, query, gardenID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily forecasts: %w", err)
	}
	defer rows.Close()

	var forecasts []models.DailyForecast
	for rows.Next() {
		var f models.DailyForecast
		if err := rows.Scan(&f.ID, &f.GardenID, &f.ForecastFor, &f.TempMax, &f.TempMin, &f.Rain, &f.WindSpeed, &f.POP); err != nil {
			return nil, fmt.Errorf("failed to scan daily forecast: %w", err)
		}
		forecasts = append(forecasts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily forecasts: %w", err)
	}

	return forecasts, nil
}

func (r *GardenRepository) recentActivities(ctx context.Context, gardenID int64) ([]models.Activity, error) {
	query := `
		SELECT id, garden_id, activity_type, timestamp
		FROM garden_activities
		WHERE garden_id = $1
		ORDER BY timestamp DESC
		LIMIT 10
	`

	rows, err := r.db.QueryContext(ctx, query, gardenID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.GardenID, &a.ActivityType, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	return activities, nil
}

func (r *GardenRepository) recentWateringSchedule(ctx context.Context, gardenID int64, now time.Time) ([]models.WateringScheduleEntry, error) {
	query := `
		SELECT id, garden_id, scheduled_at, status
		FROM watering_schedules
		WHERE garden_id = $1 AND scheduled_at >= $2
		ORDER BY scheduled_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, gardenID, now.Add(-7*24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to list watering schedule: %w", err)
	}
	defer rows.Close()

	var entries []models.WateringScheduleEntry
	for rows.Next() {
		var e models.WateringScheduleEntry
		if err := rows.Scan(&e.ID, &e.GardenID, &e.ScheduledAt, &e.Status); err != nil {
			return nil, fmt.Errorf("failed to scan watering schedule entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate watering schedule: %w", err)
	}

	return entries, nil
}

func (r *GardenRepository) recentPhotos(ctx context.Context, gardenID int64) ([]models.Photo, error) {
	query := `
		SELECT id, garden_id, url, created_at
		FROM garden_photos
		WHERE garden_id = $1
		ORDER BY created_at DESC
		LIMIT 5
	`

	rows, err := r.db.QueryContext(ctx, query, gardenID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	var photos []models.Photo
	for rows.Next() {
		var p models.Photo
		if err := rows.Scan(&p.ID, &p.GardenID, &p.URL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate photos: %w", err)
	}

	return photos, nil
}
