package weather

import (
	"context"
	"time"

	"garden-monitor/internal/models"

	"go.uber.org/zap"
)

// GardenLister enumerates the gardens whose weather needs refreshing.
type GardenLister interface {
	ListActiveGardens(ctx context.Context) ([]models.Garden, error)
}

// ObservationStore persists fetched weather data.
type ObservationStore interface {
	InsertObservation(ctx context.Context, o *models.WeatherObservation) error
	UpsertDailyForecast(ctx context.Context, f *models.DailyForecast) error
	UpsertHourlyForecast(ctx context.Context, f *models.HourlyForecast) error
}

// Refresher periodically pulls current conditions and forecasts for every
// active garden and stores them. Per-garden failures are logged and skipped.
type Refresher struct {
	client   *Client
	gardens  GardenLister
	store    ObservationStore
	interval time.Duration
	logger   *zap.Logger
}

// NewRefresher creates a refresher.
func NewRefresher(client *Client, gardens GardenLister, store ObservationStore, interval time.Duration, logger *zap.Logger) *Refresher {
	return &Refresher{
		client:   client,
		gardens:  gardens,
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

// Start refreshes once immediately, then on every tick until the context is
// cancelled.
func (r *Refresher) Start(ctx context.Context) {
	r.logger.Info("weather refresher started", zap.Duration("interval", r.interval))

	go func() {
		if err := r.RefreshAll(ctx); err != nil {
			r.logger.Error("initial weather refresh failed", zap.Error(err))
		}

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := r.RefreshAll(ctx); err != nil {
					r.logger.Error("weather refresh failed", zap.Error(err))
				}
			}
		}
	}()
}

// RefreshAll fetches and stores weather data for every active garden.
func (r *Refresher) RefreshAll(ctx context.Context) error {
	gardens, err := r.gardens.ListActiveGardens(ctx)
	if err != nil {
		return err
	}

	for i := range gardens {
		if err := r.refreshGarden(ctx, &gardens[i]); err != nil {
			r.logger.Error("failed to refresh garden weather",
				zap.Int64("garden_id", gardens[i].ID),
				zap.Error(err))
		}
	}

	return nil
}

func (r *Refresher) refreshGarden(ctx context.Context, garden *models.Garden) error {
	observation, err := r.client.CurrentConditions(ctx, garden.Latitude, garden.Longitude)
	if err != nil {
		return err
	}
	observation.GardenID = garden.ID
	if err := r.store.InsertObservation(ctx, observation); err != nil {
		return err
	}

	forecast, err := r.client.Forecasts(ctx, garden.Latitude, garden.Longitude)
	if err != nil {
		return err
	}

	for i := range forecast.Daily {
		forecast.Daily[i].GardenID = garden.ID
		if err := r.store.UpsertDailyForecast(ctx, &forecast.Daily[i]); err != nil {
			return err
		}
	}
	for i := range forecast.Hourly {
		forecast.Hourly[i].GardenID = garden.ID
		if err := r.store.UpsertHourlyForecast(ctx, &forecast.Hourly[i]); err != nil {
			return err
		}
	}

	r.logger.Debug("garden weather refreshed",
		zap.Int64("garden_id", garden.ID),
		zap.Int("daily_forecasts", len(forecast.Daily)),
		zap.Int("hourly_forecasts", len(forecast.Hourly)))

	return nil
}
