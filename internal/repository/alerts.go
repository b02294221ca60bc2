package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"garden-monitor/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// AlertRepository persists user-facing alerts and answers the dedup queries
// that suppress repeats within a cooldown window.
type AlertRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAlertRepository creates an alert repository.
func NewAlertRepository(db *sql.DB, logger *zap.Logger) *AlertRepository {
	return &AlertRepository{
		db:     db,
		logger: logger,
	}
}

// AlertFilters narrows the dedup lookup. GardenID, UserID, Type, Statuses and
// CreatedAfter are always applied; Message restricts to an exact text match
// when set (the full-check dedup key includes the interpolated message).
type AlertFilters struct {
	GardenID     int64
	UserID       int64
	Type         models.AlertType
	Message      *string
	Statuses     []models.AlertStatus
	CreatedAfter time.Time
}

// HasRecentAlert reports whether an alert matching the filters already
// exists. This is the read half of the dedup rule: one matching row within
// the cooldown window suppresses the candidate.
func (r *AlertRepository) HasRecentAlert(ctx context.Context, f AlertFilters) (bool, error) {
	if f.GardenID <= 0 {
		return false, fmt.Errorf("garden_id is required")
	}
	if f.UserID <= 0 {
		return false, fmt.Errorf("user_id is required")
	}
	if f.Type == "" {
		return false, fmt.Errorf("type is required")
	}
	if len(f.Statuses) == 0 {
		return false, fmt.Errorf("statuses are required")
	}

	conditions := []string{
		"garden_id = $1",
		"user_id = $2",
		"type = $3",
		"status = ANY($4)",
		"created_at >= $5",
	}
	statuses := make([]string, 0, len(f.Statuses))
	for _, s := range f.Statuses {
		statuses = append(statuses, string(s))
	}
	args := []interface{}{f.GardenID, f.UserID, string(f.Type), pq.Array(statuses), f.CreatedAfter}

	if f.Message != nil {
		conditions = append(conditions, fmt.Sprintf("message = $%d", len(args)+1))
		args = append(args, *f.Message)
	}

	query := fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM alerts WHERE %s)",
		strings.Join(conditions, " AND "),
	)

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check recent alerts: %w", err)
	}

	return exists, nil
}

// CreateAlert inserts a new alert. The store assigns id and timestamps;
// status defaults to PENDING when unset.
func (r *AlertRepository) CreateAlert(ctx context.Context, alert *models.Alert) error {
	if alert == nil {
		return fmt.Errorf("alert is required")
	}
	if alert.GardenID <= 0 {
		return fmt.Errorf("garden_id is required")
	}
	if alert.UserID <= 0 {
		return fmt.Errorf("user_id is required")
	}
	if alert.Type == "" {
		return fmt.Errorf("type is required")
	}
	if alert.Status == "" {
		alert.Status = models.AlertStatusPending
	}

	query := `
		INSERT INTO alerts (garden_id, user_id, type, message, suggestion, severity, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		alert.GardenID,
		alert.UserID,
		string(alert.Type),
		alert.Message,
		alert.Suggestion,
		string(alert.Severity),
		string(alert.Status),
	).Scan(&alert.ID, &alert.CreatedAt, &alert.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}

	return nil
}

// HasAnyAlertSince reports whether any alert at all was created for the
// garden after the cutoff. The batch scheduler uses it to skip gardens that
// were checked recently.
func (r *AlertRepository) HasAnyAlertSince(ctx context.Context, gardenID int64, since time.Time) (bool, error) {
	if gardenID <= 0 {
		return false, fmt.Errorf("garden_id is required")
	}

	query := `SELECT EXISTS (SELECT 1 FROM alerts WHERE garden_id = $1 AND created_at >= $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, gardenID, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check garden alerts: %w", err)
	}

	return exists, nil
}
