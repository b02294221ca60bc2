package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"garden-monitor/internal/evaluator"
	"garden-monitor/internal/models"
	"garden-monitor/internal/repository"

	"go.uber.org/zap"
)

// GardenStore is the garden read surface the health service needs.
type GardenStore interface {
	GetGarden(ctx context.Context, gardenID int64) (*models.Garden, error)
	ListActiveGardens(ctx context.Context) ([]models.Garden, error)
	GetSnapshot(ctx context.Context, gardenID int64, now time.Time) (*models.GardenSnapshot, error)
}

// AlertStore persists alerts and answers dedup queries.
type AlertStore interface {
	HasRecentAlert(ctx context.Context, f repository.AlertFilters) (bool, error)
	CreateAlert(ctx context.Context, alert *models.Alert) error
	HasAnyAlertSince(ctx context.Context, gardenID int64, since time.Time) (bool, error)
}

// ReportCache caches the latest report per garden. May be absent.
type ReportCache interface {
	SetReport(ctx context.Context, report *models.HealthReport) error
	GetReport(ctx context.Context, gardenID int64) (*models.HealthReport, error)
}

// openStatuses are the alert states that count for deduplication. A
// resolved alert does not suppress a new one.
var openStatuses = []models.AlertStatus{models.AlertStatusPending, models.AlertStatusInProgress}

// HealthService runs health checks for single gardens: snapshot, rule
// evaluation, alert dedup and persistence, report caching.
type HealthService struct {
	gardens       GardenStore
	alerts        AlertStore
	cache         ReportCache
	eval          *evaluator.HealthEvaluator
	alertCooldown time.Duration
	logger        *zap.Logger

	now func() time.Time
}

// NewHealthService creates a health service. cache may be nil.
func NewHealthService(
	gardens GardenStore,
	alerts AlertStore,
	cache ReportCache,
	alertCooldown time.Duration,
	logger *zap.Logger,
) *HealthService {
	return &HealthService{
		gardens:       gardens,
		alerts:        alerts,
		cache:         cache,
		eval:          evaluator.NewHealthEvaluator(),
		alertCooldown: alertCooldown,
		logger:        logger,
		now:           time.Now,
	}
}

// CheckGardenHealth runs a full health check for one garden and returns the
// report. Alert persistence failures are logged per alert and never fail
// the check.
func (s *HealthService) CheckGardenHealth(ctx context.Context, gardenID int64) (*models.HealthReport, error) {
	now := s.now()

	snapshot, err := s.gardens.GetSnapshot(ctx, gardenID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load garden snapshot: %w", err)
	}

	report := s.eval.Evaluate(snapshot, now)

	s.logger.Info("garden health evaluated",
		zap.Int64("garden_id", gardenID),
		zap.Int("score", report.Score),
		zap.String("overall_health", string(report.OverallHealth)),
		zap.Int("issues", len(report.Issues)),
		zap.Int("alert_candidates", len(report.Alerts)))

	for _, candidate := range report.Alerts {
		if err := s.emitAlert(ctx, &snapshot.Garden, candidate, now); err != nil {
			s.logger.Error("failed to emit alert",
				zap.Int64("garden_id", gardenID),
				zap.String("type", string(candidate.Type)),
				zap.Error(err))
		}
	}

	if s.cache != nil {
		if err := s.cache.SetReport(ctx, report); err != nil {
			s.logger.Warn("failed to cache health report",
				zap.Int64("garden_id", gardenID),
				zap.Error(err))
		}
	}

	return report, nil
}

// CachedReport returns the last cached report for a garden, if any.
func (s *HealthService) CachedReport(ctx context.Context, gardenID int64) (*models.HealthReport, error) {
	if s.cache == nil {
		return nil, fmt.Errorf("report cache is not configured")
	}
	return s.cache.GetReport(ctx, gardenID)
}

// emitAlert persists one candidate unless an open alert with the same type
// and exact message exists within the cooldown window.
func (s *HealthService) emitAlert(ctx context.Context, garden *models.Garden, candidate models.AlertCandidate, now time.Time) error {
	exists, err := s.alerts.HasRecentAlert(ctx, repository.AlertFilters{
		GardenID:     garden.ID,
		UserID:       garden.UserID,
		Type:         candidate.Type,
		Message:      &candidate.Message,
		Statuses:     openStatuses,
		CreatedAfter: now.Add(-s.alertCooldown),
	})
	if err != nil {
		return err
	}
	if exists {
		s.logger.Debug("alert suppressed by cooldown",
			zap.Int64("garden_id", garden.ID),
			zap.String("type", string(candidate.Type)))
		return nil
	}

	return s.alerts.CreateAlert(ctx, &models.Alert{
		GardenID:   garden.ID,
		UserID:     garden.UserID,
		Type:       candidate.Type,
		Message:    candidate.Message,
		Suggestion: candidate.Suggestion,
		Severity:   candidate.Severity,
		Status:     models.AlertStatusPending,
	})
}

// RenderReport formats a report as the user-facing text summary.
func RenderReport(garden *models.Garden, report *models.HealthReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🌱 BÁO CÁO SỨC KHỎE VƯỜN: %s\n\n", garden.Name)
	fmt.Fprintf(&b, "Tình trạng: %s\n", healthStatusLabel(report.OverallHealth))
	fmt.Fprintf(&b, "Điểm số: %d/100\n", report.Score)

	if len(report.Issues) > 0 {
		fmt.Fprintf(&b, "\n⚠️ VẤN ĐỀ PHÁT HIỆN (%d):\n", len(report.Issues))
		for i, issue := range report.Issues {
			fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, issue.Severity, issue.Message)
		}
	}

	if len(report.Recommendations) > 0 {
		fmt.Fprintf(&b, "\n💡 KHUYẾN NGHỊ:\n")
		for _, rec := range report.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}

	var urgent []models.AlertCandidate
	for _, a := range report.Alerts {
		if a.Severity == models.SeverityHigh || a.Severity == models.SeverityCritical {
			urgent = append(urgent, a)
		}
	}
	if len(urgent) > 0 {
		fmt.Fprintf(&b, "\n🚨 CẦN XỬ LÝ NGAY:\n")
		for _, a := range urgent {
			fmt.Fprintf(&b, "• %s\n  %s\n", a.Message, a.Suggestion)
		}
	}

	return b.String()
}

func healthStatusLabel(status models.HealthStatus) string {
	switch status {
	case models.HealthExcellent:
		return "Xuất sắc 🎉"
	case models.HealthGood:
		return "Tốt 👍"
	case models.HealthWarning:
		return "Cần chú ý ⚠️"
	case models.HealthCritical:
		return "Nguy cấp 🚨"
	default:
		return string(status)
	}
}
