package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"garden-monitor/internal/models"

	"go.uber.org/zap"
)

// WeatherRepository reads and writes weather observations and forecasts.
// Reads serve the advice engine and the cluster-wide forecast check; writes
// come from the weather refresher.
type WeatherRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWeatherRepository creates a weather repository.
func NewWeatherRepository(db *sql.DB, logger *zap.Logger) *WeatherRepository {
	return &WeatherRepository{
		db:     db,
		logger: logger,
	}
}

// HourlyForecasts returns the next `limit` hourly forecasts for a garden,
// ascending.
func (r *WeatherRepository) HourlyForecasts(ctx context.Context, gardenID int64, limit int) ([]models.HourlyForecast, error) {
	if gardenID <= 0 {
		return nil, fmt.Errorf("garden_id is required")
	}
	if limit <= 0 {
		limit = 6
	}

	query := `
		SELECT id, garden_id, forecast_for, pop
		FROM hourly_forecasts
		WHERE garden_id = $1
		ORDER BY forecast_for ASC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, gardenID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list hourly forecasts: %w", err)
	}
	defer rows.Close()

	var forecasts []models.HourlyForecast
	for rows.Next() {
		var f models.HourlyForecast
		if err := rows.Scan(&f.ID, &f.GardenID, &f.ForecastFor, &f.POP); err != nil {
			return nil, fmt.Errorf("failed to scan hourly forecast: %w", err)
		}
		forecasts = append(forecasts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hourly forecasts: %w", err)
	}

	return forecasts, nil
}

// TodayForecast returns the earliest stored daily forecast for a garden,
// or nil when none exists.
func (r *WeatherRepository) TodayForecast(ctx context.Context, gardenID int64) (*models.DailyForecast, error) {
	if gardenID <= 0 {
		return nil, fmt.Errorf("garden_id is required")
	}

	query := `
		SELECT id, garden_id, forecast_for, temp_max, temp_min, rain, wind_speed, pop
		FROM daily_forecasts
		WHERE garden_id = $1
		ORDER BY forecast_for ASC
		LIMIT 1
	`

	var f models.DailyForecast
	err := r.db.QueryRowContext(ctx, query, gardenID).Scan(
		&f.ID, &f.GardenID, &f.ForecastFor, &f.TempMax, &f.TempMin, &f.Rain, &f.WindSpeed, &f.POP,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get today forecast: %w", err)
	}

	return &f, nil
}

// ForecastWithOwner is one row of the cluster-wide forecast scan: tomorrow's
// forecast joined with the garden it belongs to.
type ForecastWithOwner struct {
	Forecast   models.DailyForecast
	GardenName string
	UserID     int64
}

// TomorrowForecasts returns every garden's forecast for tomorrow (the
// calendar day after `now`), with owner data for alert creation.
func (r *WeatherRepository) TomorrowForecasts(ctx context.Context, now time.Time) ([]ForecastWithOwner, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Add(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	query := `
		SELECT f.id, f.garden_id, f.forecast_for, f.temp_max, f.temp_min, f.rain, f.wind_speed, f.pop,
			g.name, g.user_id
		FROM daily_forecasts f
		JOIN gardens g ON g.id = f.garden_id
		WHERE f.forecast_for >= $1 AND f.forecast_for < $2
		ORDER BY f.garden_id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list tomorrow forecasts: %w", err)
	}
	defer rows.Close()

	var forecasts []ForecastWithOwner
	for rows.Next() {
		var f ForecastWithOwner
		if err := rows.Scan(
			&f.Forecast.ID, &f.Forecast.GardenID, &f.Forecast.ForecastFor,
			&f.Forecast.TempMax, &f.Forecast.TempMin, &f.Forecast.Rain,
			&f.Forecast.WindSpeed, &f.Forecast.POP,
			&f.GardenName, &f.UserID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tomorrow forecast: %w", err)
		}
		forecasts = append(forecasts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tomorrow forecasts: %w", err)
	}

	return forecasts, nil
}

// LatestObservation returns the most recent observed conditions for a
// garden, or nil when none exist.
func (r *WeatherRepository) LatestObservation(ctx context.Context, gardenID int64) (*models.WeatherObservation, error) {
	if gardenID <= 0 {
		return nil, fmt.Errorf("garden_id is required")
	}

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
		return nil, fmt.Errorf("failed to get latest observation: %w", err)
	}

	return &o, nil
}

// InsertObservation stores one observed-conditions row.
func (r *WeatherRepository) InsertObservation(ctx context.Context, o *models.WeatherObservation) error {
	if o == nil {
		return fmt.Errorf("observation is required")
	}
	if o.GardenID <= 0 {
		return fmt.Errorf("garden_id is required")
	}

	query := `
		INSERT INTO weather_observations (garden_id, weather_main, temp, humidity, wind_speed, rain_1h, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		o.GardenID, o.WeatherMain, o.Temp, o.Humidity, o.WindSpeed, o.Rain1h, o.ObservedAt,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("failed to insert observation: %w", err)
	}

	return nil
}

// UpsertDailyForecast stores or refreshes one daily forecast row, keyed by
// (garden_id, forecast_for).
func (r *WeatherRepository) UpsertDailyForecast(ctx context.Context, f *models.DailyForecast) error {
	if f == nil {
		return fmt.Errorf("forecast is required")
	}
	if f.GardenID <= 0 {
		return fmt.Errorf("garden_id is required")
	}

	query := `
		INSERT INTO daily_forecasts (garden_id, forecast_for, temp_max, temp_min, rain, wind_speed, pop)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (garden_id, forecast_for) DO UPDATE SET
			temp_max = EXCLUDED.temp_max,
			temp_min = EXCLUDED.temp_min,
			rain = EXCLUDED.rain,
			wind_speed = EXCLUDED.wind_speed,
			pop = EXCLUDED.pop
	`

	if _, err := r.db.ExecContext(ctx, query,
		f.GardenID, f.ForecastFor, f.TempMax, f.TempMin, f.Rain, f.WindSpeed, f.POP,
	); err != nil {
		return fmt.Errorf("failed to upsert daily forecast: %w", err)
	}

	return nil
}

// UpsertHourlyForecast stores or refreshes one hourly forecast row, keyed by
// (garden_id, forecast_for).
func (r *WeatherRepository) UpsertHourlyForecast(ctx context.Context, f *models.HourlyForecast) error {
	if f == nil {
		return fmt.Errorf("forecast is required")
	}
	if f.GardenID <= 0 {
		return fmt.Errorf("garden_id is required")
	}

	query := `
		INSERT INTO hourly_forecasts (garden_id, forecast_for, pop)
		VALUES ($1, $2, $3)
		ON CONFLICT (garden_id, forecast_for) DO UPDATE SET pop = EXCLUDED.pop
	`

	if _, err := r.db.ExecContext(ctx, query, f.GardenID, f.ForecastFor, f.POP); err != nil {
		return fmt.Errorf("failed to upsert hourly forecast: %w", err)
	}

	return nil
}
