package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"garden-monitor/internal/models"
	"garden-monitor/internal/repository"

	"go.uber.org/zap"
)

// ErrRunInProgress is returned when a full batch run is triggered while one
// is already running. The trigger is dropped, not queued.
var ErrRunInProgress = errors.New("health check run already in progress")

// SensorStore is the cluster-wide sensor scan the quick check needs.
type SensorStore interface {
	ListSensorsWithLatest(ctx context.Context, types []string) ([]repository.CriticalSensor, error)
}

// ForecastStore is the cluster-wide forecast scan the forecast check needs.
type ForecastStore interface {
	TomorrowForecasts(ctx context.Context, now time.Time) ([]repository.ForecastWithOwner, error)
}

// SchedulerConfig holds the three check periods and their cooldowns.
type SchedulerConfig struct {
	FullCheckInterval     time.Duration
	QuickCheckInterval    time.Duration
	ForecastCheckInterval time.Duration

	InterGardenDelay time.Duration
	GardenSkipWindow time.Duration

	QuickAlertCooldown    time.Duration
	ForecastAlertCooldown time.Duration
}

// CheckStatus is the per-garden outcome of a batch run.
type CheckStatus string

const (
	CheckSuccess CheckStatus = "SUCCESS"
	CheckError   CheckStatus = "ERROR"
	CheckSkipped CheckStatus = "SKIPPED"
)

// CheckResult records one garden's outcome within a batch run.
type CheckResult struct {
	GardenID   int64         `json:"garden_id"`
	GardenName string        `json:"garden_name"`
	Status     CheckStatus   `json:"status"`
	Score      int           `json:"score,omitempty"`
	Alerts     int           `json:"alerts,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// RunSummary aggregates one batch run.
type RunSummary struct {
	TotalGardens int           `json:"total_gardens"`
	Successful   int           `json:"successful_checks"`
	Failed       int           `json:"failed_checks"`
	Skipped      int           `json:"skipped_checks"`
	TotalAlerts  int           `json:"total_alerts_created"`
	AverageScore int           `json:"average_score"`
	Duration     time.Duration `json:"duration"`
	StartedAt    time.Time     `json:"started_at"`
	Results      []CheckResult `json:"results"`
}

// SchedulerStatus is the introspection view of the scheduler.
type SchedulerStatus struct {
	Running               bool          `json:"running"`
	FullCheckInterval     time.Duration `json:"full_check_interval"`
	QuickCheckInterval    time.Duration `json:"quick_check_interval"`
	ForecastCheckInterval time.Duration `json:"forecast_check_interval"`
	LastRun               *RunSummary   `json:"last_run,omitempty"`
}

// Scheduler drives the three periodic check paths: the full batch run, the
// critical-sensor quick check and the tomorrow-forecast check. The batch run
// is guarded against re-entry; the other two paths run independently.
type Scheduler struct {
	health    *HealthService
	gardens   GardenStore
	sensors   SensorStore
	forecasts ForecastStore
	alerts    AlertStore
	cfg       SchedulerConfig
	logger    *zap.Logger

	running atomic.Bool

	mu      sync.Mutex
	lastRun *RunSummary

	now   func() time.Time
	sleep func(time.Duration)
}

// NewScheduler creates a scheduler.
func NewScheduler(
	health *HealthService,
	gardens GardenStore,
	sensors SensorStore,
	forecasts ForecastStore,
	alerts AlertStore,
	cfg SchedulerConfig,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		health:    health,
		gardens:   gardens,
		sensors:   sensors,
		forecasts: forecasts,
		alerts:    alerts,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// Start runs the three ticker loops until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("scheduler started",
		zap.Duration("full_check_interval", s.cfg.FullCheckInterval),
		zap.Duration("quick_check_interval", s.cfg.QuickCheckInterval),
		zap.Duration("forecast_check_interval", s.cfg.ForecastCheckInterval))

	go s.loop(ctx, s.cfg.FullCheckInterval, func() {
		if _, err := s.RunHealthChecksForAllGardens(ctx); err != nil && !errors.Is(err, ErrRunInProgress) {
			s.logger.Error("scheduled health check run failed", zap.Error(err))
		}
	})
	go s.loop(ctx, s.cfg.QuickCheckInterval, func() {
		if err := s.RunQuickSensorCheck(ctx); err != nil {
			s.logger.Error("quick sensor check failed", zap.Error(err))
		}
	})
	go s.loop(ctx, s.cfg.ForecastCheckInterval, func() {
		if err := s.RunForecastCheck(ctx); err != nil {
			s.logger.Error("forecast check failed", zap.Error(err))
		}
	})
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, run func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

// RunHealthChecksForAllGardens runs a full health check over every active
// garden, sequentially, skipping gardens with a recent alert and isolating
// per-garden failures. A concurrent trigger returns ErrRunInProgress.
func (s *Scheduler) RunHealthChecksForAllGardens(ctx context.Context) (*RunSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("health check run already in progress, skipping trigger")
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	start := s.now()
	s.logger.Info("starting health check run for all gardens")

	gardens, err := s.gardens.ListActiveGardens(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active gardens: %w", err)
	}

	summary := &RunSummary{
		TotalGardens: len(gardens),
		StartedAt:    start,
	}

	for i, garden := range gardens {
		result := s.checkOneGarden(ctx, &garden)
		summary.Results = append(summary.Results, result)

		switch result.Status {
		case CheckSuccess:
			summary.Successful++
			summary.TotalAlerts += result.Alerts
			// Backpressure between gardens so a big batch does not
			// saturate the data store.
			if i < len(gardens)-1 {
				s.sleep(s.cfg.InterGardenDelay)
			}
		case CheckError:
			summary.Failed++
		case CheckSkipped:
			summary.Skipped++
		}
	}

	if summary.Successful > 0 {
		total := 0
		for _, r := range summary.Results {
			if r.Status == CheckSuccess {
				total += r.Score
			}
		}
		summary.AverageScore = int(math.Round(float64(total) / float64(summary.Successful)))
	}
	summary.Duration = s.now().Sub(start)

	s.mu.Lock()
	s.lastRun = summary
	s.mu.Unlock()

	s.logger.Info("health check run finished",
		zap.Int("total_gardens", summary.TotalGardens),
		zap.Int("successful", summary.Successful),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("alerts_created", summary.TotalAlerts),
		zap.Int("average_score", summary.AverageScore),
		zap.Duration("duration", summary.Duration))

	return summary, nil
}

func (s *Scheduler) checkOneGarden(ctx context.Context, garden *models.Garden) CheckResult {
	start := s.now()
	result := CheckResult{GardenID: garden.ID, GardenName: garden.Name}

	recentlyAlerted, err := s.alerts.HasAnyAlertSince(ctx, garden.ID, start.Add(-s.cfg.GardenSkipWindow))
	if err != nil {
		result.Status = CheckError
		result.Error = err.Error()
		result.Duration = s.now().Sub(start)
		s.logger.Error("failed to check garden alert history",
			zap.Int64("garden_id", garden.ID), zap.Error(err))
		return result
	}
	if recentlyAlerted {
		result.Status = CheckSkipped
		result.Duration = s.now().Sub(start)
		return result
	}

	report, err := s.health.CheckGardenHealth(ctx, garden.ID)
	if err != nil {
		result.Status = CheckError
		result.Error = err.Error()
		result.Duration = s.now().Sub(start)
		s.logger.Error("garden health check failed",
			zap.Int64("garden_id", garden.ID),
			zap.String("garden_name", garden.Name),
			zap.Error(err))
		return result
	}

	result.Status = CheckSuccess
	result.Score = report.Score
	result.Alerts = len(report.Alerts)
	result.Duration = s.now().Sub(start)
	return result
}

// RunQuickSensorCheck scans soil-moisture and temperature sensors across all
// gardens for staleness or extreme values and raises SENSOR_ERROR alerts
// with a short cooldown, deduped by type only.
func (s *Scheduler) RunQuickSensorCheck(ctx context.Context) error {
	now := s.now()
	oneHourAgo := now.Add(-time.Hour)

	sensors, err := s.sensors.ListSensorsWithLatest(ctx, []string{
		models.SensorTypeSoilMoisture,
		models.SensorTypeTemperature,
	})
	if err != nil {
		return fmt.Errorf("failed to scan critical sensors: %w", err)
	}

	issues := 0
	for _, sensor := range sensors {
		for _, candidate := range quickCheckCandidates(sensor, oneHourAgo) {
			issues++
			if err := s.emitScanAlert(ctx, sensor.GardenID, sensor.UserID, candidate, s.cfg.QuickAlertCooldown); err != nil {
				s.logger.Error("failed to emit critical sensor alert",
					zap.Int64("garden_id", sensor.GardenID),
					zap.Int64("sensor_id", sensor.SensorID),
					zap.Error(err))
			}
		}
	}

	if issues > 0 {
		s.logger.Warn("quick check found critical sensor issues", zap.Int("issues", issues))
	}
	return nil
}

// quickCheckCandidates returns the alerts one scanned sensor warrants: a
// stale reading, a critically dry soil value, an extreme temperature. One
// sensor can produce both a staleness and a value alert.
func quickCheckCandidates(sensor repository.CriticalSensor, staleCutoff time.Time) []models.AlertCandidate {
	var candidates []models.AlertCandidate

	if sensor.ReadAt == nil || sensor.ReadAt.Before(staleCutoff) {
		candidates = append(candidates, models.AlertCandidate{
			Type:       models.AlertTypeSensorError,
			Message:    fmt.Sprintf("🔴 Cảm biến %s tại vườn %s đã ngừng hoạt động", sensor.SensorType, sensor.GardenName),
			Suggestion: "Kiểm tra kết nối và pin cảm biến ngay lập tức",
			Severity:   models.SeverityHigh,
		})
	}

	if sensor.Value == nil {
		return candidates
	}
	value := *sensor.Value

	switch sensor.SensorType {
	case models.SensorTypeSoilMoisture:
		if value < 20 {
			candidates = append(candidates, models.AlertCandidate{
				Type:       models.AlertTypeSensorError,
				Message:    fmt.Sprintf("🚨 KHẨN CẤP: Độ ẩm đất cực thấp %.1f%% tại vườn %s", value, sensor.GardenName),
				Suggestion: "Tưới nước ngay lập tức! Cây có thể chết trong vài giờ tới nếu không được tưới nước.",
				Severity:   models.SeverityCritical,
			})
		}
	case models.SensorTypeTemperature:
		if value > 42 || value < 0 {
			direction := "thấp"
			suggestion := "Giữ ấm và bảo vệ cây khỏi lạnh ngay!"
			if value > 35 {
				direction = "cao"
				suggestion = "Che nắng và làm mát ngay lập tức!"
			}
			candidates = append(candidates, models.AlertCandidate{
				Type:       models.AlertTypeSensorError,
				Message:    fmt.Sprintf("🌡️ KHẨN CẤP: Nhiệt độ cực %s %.1f°C tại vườn %s", direction, value, sensor.GardenName),
				Suggestion: suggestion,
				Severity:   models.SeverityCritical,
			})
		}
	}

	return candidates
}

// RunForecastCheck inspects tomorrow's forecasts cluster-wide for extreme
// heat, rain or wind and raises WEATHER alerts deduped by type only.
func (s *Scheduler) RunForecastCheck(ctx context.Context) error {
	now := s.now()

	forecasts, err := s.forecasts.TomorrowForecasts(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to load tomorrow forecasts: %w", err)
	}

	created := 0
	for _, f := range forecasts {
		for _, candidate := range forecastCandidates(f) {
			if err := s.emitScanAlert(ctx, f.Forecast.GardenID, f.UserID, candidate, s.cfg.ForecastAlertCooldown); err != nil {
				s.logger.Error("failed to emit forecast alert",
					zap.Int64("garden_id", f.Forecast.GardenID),
					zap.Error(err))
				continue
			}
			created++
		}
	}

	if created > 0 {
		s.logger.Info("forecast check emitted weather alerts", zap.Int("candidates", created))
	}
	return nil
}

// forecastCandidates returns the weather alerts tomorrow's forecast for one
// garden warrants.
func forecastCandidates(f repository.ForecastWithOwner) []models.AlertCandidate {
	var candidates []models.AlertCandidate
	forecast := f.Forecast

	if forecast.TempMax > 40 {
		severity := models.SeverityMedium
		if forecast.TempMax > 42 {
			severity = models.SeverityHigh
		}
		candidates = append(candidates, models.AlertCandidate{
			Type:       models.AlertTypeWeather,
			Message:    fmt.Sprintf("🌡️ Cảnh báo: Ngày mai nhiệt độ sẽ rất cao %.1f°C tại vườn %s", forecast.TempMax, f.GardenName),
			Suggestion: "Chuẩn bị che nắng và tưới nước nhiều hơn từ sáng sớm. Tránh làm vườn vào giữa trưa.",
			Severity:   severity,
		})
	}

	if forecast.Rain > 25 {
		severity := models.SeverityMedium
		if forecast.Rain > 50 {
			severity = models.SeverityHigh
		}
		candidates = append(candidates, models.AlertCandidate{
			Type:       models.AlertTypeWeather,
			Message:    fmt.Sprintf("🌧️ Cảnh báo: Ngày mai có mưa to %.1fmm tại vườn %s", forecast.Rain, f.GardenName),
			Suggestion: "Kiểm tra hệ thống thoát nước và tạm dừng tưới nước tự động. Chuẩn bị che chắn nếu cần.",
			Severity:   severity,
		})
	}

	if forecast.WindSpeed > 12 {
		severity := models.SeverityMedium
		if forecast.WindSpeed > 15 {
			severity = models.SeverityHigh
		}
		candidates = append(candidates, models.AlertCandidate{
			Type:       models.AlertTypeWeather,
			Message:    fmt.Sprintf("💨 Cảnh báo: Ngày mai có gió mạnh %.1f m/s tại vườn %s", forecast.WindSpeed, f.GardenName),
			Suggestion: "Gia cố cây và di chuyển chậu nhỏ vào nơi kín gió. Kiểm tra cột chống.",
			Severity:   severity,
		})
	}

	return candidates
}

// emitScanAlert persists one scan-path candidate unless an open alert of the
// same type exists within the cooldown. Unlike the full-check dedup, the
// message text does not narrow the match.
func (s *Scheduler) emitScanAlert(ctx context.Context, gardenID, userID int64, candidate models.AlertCandidate, cooldown time.Duration) error {
	exists, err := s.alerts.HasRecentAlert(ctx, repository.AlertFilters{
		GardenID:     gardenID,
		UserID:       userID,
		Type:         candidate.Type,
		Statuses:     openStatuses,
		CreatedAfter: s.now().Add(-cooldown),
	})
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return s.alerts.CreateAlert(ctx, &models.Alert{
		GardenID:   gardenID,
		UserID:     userID,
		Type:       candidate.Type,
		Message:    candidate.Message,
		Suggestion: candidate.Suggestion,
		Severity:   candidate.Severity,
		Status:     models.AlertStatusPending,
	})
}

// Status reports whether a batch run is in flight, the configured periods
// and the last run summary.
func (s *Scheduler) Status() SchedulerStatus {
	s.mu.Lock()
	lastRun := s.lastRun
	s.mu.Unlock()

	return SchedulerStatus{
		Running:               s.running.Load(),
		FullCheckInterval:     s.cfg.FullCheckInterval,
		QuickCheckInterval:    s.cfg.QuickCheckInterval,
		ForecastCheckInterval: s.cfg.ForecastCheckInterval,
		LastRun:               lastRun,
	}
}
