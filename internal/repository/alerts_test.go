package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"garden-monitor/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMockAlertDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *AlertRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewAlertRepository(db, zap.NewNop())

	return db, mock, repo
}

func openAlertStatuses() []models.AlertStatus {
	return []models.AlertStatus{models.AlertStatusPending, models.AlertStatusInProgress}
}

func TestHasRecentAlert_ExactMessageMatch(t *testing.T) {
	db, mock, repo := setupMockAlertDB(t)
	defer db.Close()

	message := "🌱 Đất khô - Độ ẩm chỉ còn 22.0%"
	createdAfter := time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(5), int64(10), "PLANT_CONDITION", pq.Array([]string{"PENDING", "IN_PROGRESS"}), createdAfter, message).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.HasRecentAlert(context.Background(), AlertFilters{
		GardenID:     5,
		UserID:       10,
		Type:         models.AlertTypePlantCondition,
		Message:      &message,
		Statuses:     openAlertStatuses(),
		CreatedAfter: createdAfter,
	})

	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHasRecentAlert_TypeOnly(t *testing.T) {
	db, mock, repo := setupMockAlertDB(t)
	defer db.Close()

	createdAfter := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(5), int64(10), "SENSOR_ERROR", pq.Array([]string{"PENDING", "IN_PROGRESS"}), createdAfter).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.HasRecentAlert(context.Background(), AlertFilters{
		GardenID:     5,
		UserID:       10,
		Type:         models.AlertTypeSensorError,
		Statuses:     openAlertStatuses(),
		CreatedAfter: createdAfter,
	})

	require.NoError(t, err)
	assert.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHasRecentAlert_Validation(t *testing.T) {
	db, _, repo := setupMockAlertDB(t)
	defer db.Close()

	_, err := repo.HasRecentAlert(context.Background(), AlertFilters{
		UserID:   10,
		Type:     models.AlertTypeWeather,
		Statuses: openAlertStatuses(),
	})
	assert.ErrorContains(t, err, "garden_id is required")

	_, err = repo.HasRecentAlert(context.Background(), AlertFilters{
		GardenID: 5,
		UserID:   10,
		Type:     models.AlertTypeWeather,
	})
	assert.ErrorContains(t, err, "statuses are required")
}

func TestCreateAlert_Success(t *testing.T) {
	db, mock, repo := setupMockAlertDB(t)
	defer db.Close()

	createdAt := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO alerts`).
		WithArgs(int64(5), int64(10), "WEATHER", "🌧️ Ngày mai có mưa to (25.0mm)", "Hoãn tưới nước", "LOW", "PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(42), createdAt, createdAt))

	alert := &models.Alert{
		GardenID:   5,
		UserID:     10,
		Type:       models.AlertTypeWeather,
		Message:    "🌧️ Ngày mai có mưa to (25.0mm)",
		Suggestion: "Hoãn tưới nước",
		Severity:   models.SeverityLow,
	}

	err := repo.CreateAlert(context.Background(), alert)

	require.NoError(t, err)
	assert.Equal(t, int64(42), alert.ID)
	assert.Equal(t, models.AlertStatusPending, alert.Status)
	assert.Equal(t, createdAt, alert.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAlert_Validation(t *testing.T) {
	db, _, repo := setupMockAlertDB(t)
	defer db.Close()

	err := repo.CreateAlert(context.Background(), nil)
	assert.ErrorContains(t, err, "alert is required")

	err = repo.CreateAlert(context.Background(), &models.Alert{UserID: 10, Type: models.AlertTypeWeather})
	assert.ErrorContains(t, err, "garden_id is required")

	err = repo.CreateAlert(context.Background(), &models.Alert{GardenID: 5, UserID: 10})
	assert.ErrorContains(t, err, "type is required")
}

func TestHasAnyAlertSince(t *testing.T) {
	db, mock, repo := setupMockAlertDB(t)
	defer db.Close()

	since := time.Date(2025, 6, 15, 8, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(5), since).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.HasAnyAlertSince(context.Background(), 5, since)

	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}
