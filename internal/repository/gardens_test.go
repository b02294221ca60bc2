package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"garden-monitor/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMockGardenDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *GardenRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewGardenRepository(db, zap.NewNop())

	return db, mock, repo
}

var gardenTestColumns = []string{
	"id", "user_id", "name", "status", "latitude", "longitude",
	"plant_name", "plant_grow_stage", "plant_start_date", "plant_duration",
	"created_at", "updated_at",
}

func TestGetGarden_Success(t *testing.T) {
	db, mock, repo := setupMockGardenDB(t)
	defer db.Close()

	createdAt := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	startDate := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(gardenTestColumns).AddRow(
			int64(5), int64(10), "Vườn rau", "ACTIVE", 10.76, 106.66,
			"Cà chua", "Flowering", startDate, int64(90),
			createdAt, createdAt,
		))

	garden, err := repo.GetGarden(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, int64(5), garden.ID)
	assert.Equal(t, int64(10), garden.UserID)
	assert.Equal(t, "Vườn rau", garden.Name)
	require.NotNil(t, garden.PlantName)
	assert.Equal(t, "Cà chua", *garden.PlantName)
	require.NotNil(t, garden.PlantGrowStage)
	assert.Equal(t, "Flowering", *garden.PlantGrowStage)
	require.NotNil(t, garden.PlantStartDate)
	assert.Equal(t, startDate, *garden.PlantStartDate)
	require.NotNil(t, garden.PlantDuration)
	assert.Equal(t, 90, *garden.PlantDuration)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetGarden_NullPlantFields(t *testing.T) {
	db, mock, repo := setupMockGardenDB(t)
	defer db.Close()

	createdAt := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(gardenTestColumns).AddRow(
			int64(7), int64(10), "Vườn mới", "ACTIVE", 10.76, 106.66,
			nil, nil, nil, nil,
			createdAt, createdAt,
		))

	garden, err := repo.GetGarden(context.Background(), 7)

	require.NoError(t, err)
	assert.Nil(t, garden.PlantName)
	assert.Nil(t, garden.PlantGrowStage)
	assert.Nil(t, garden.PlantStartDate)
	assert.Nil(t, garden.PlantDuration)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetGarden_NotFound(t *testing.T) {
	db, mock, repo := setupMockGardenDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WithArgs(int64(999)).
		WillReturnError(sql.ErrNoRows)

	garden, err := repo.GetGarden(context.Background(), 999)

	assert.Nil(t, garden)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetGarden_InvalidID(t *testing.T) {
	db, _, repo := setupMockGardenDB(t)
	defer db.Close()

	_, err := repo.GetGarden(context.Background(), 0)

	assert.ErrorContains(t, err, "garden_id is required")
}

func TestListActiveGardens(t *testing.T) {
	db, mock, repo := setupMockGardenDB(t)
	defer db.Close()

	createdAt := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT`).
		WithArgs("ACTIVE").
		WillReturnRows(sqlmock.NewRows(gardenTestColumns).
			AddRow(int64(1), int64(10), "Vườn A", "ACTIVE", 10.76, 106.66, nil, nil, nil, nil, createdAt, createdAt).
			AddRow(int64(2), int64(11), "Vườn B", "ACTIVE", 21.03, 105.85, nil, nil, nil, nil, createdAt, createdAt))

	gardens, err := repo.ListActiveGardens(context.Background())

	require.NoError(t, err)
	require.Len(t, gardens, 2)
	assert.Equal(t, int64(1), gardens[0].ID)
	assert.Equal(t, "Vườn B", gardens[1].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveGardens_Empty(t *testing.T) {
	db, mock, repo := setupMockGardenDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WithArgs("ACTIVE").
		WillReturnRows(sqlmock.NewRows(gardenTestColumns))

	gardens, err := repo.ListActiveGardens(context.Background())

	require.NoError(t, err)
	assert.Empty(t, gardens)
	require.NoError(t, mock.ExpectationsWereMet())
}

// GetSnapshot issues one query per section; sections with no rows come back
// empty rather than failing the snapshot.
func TestGetSnapshot(t *testing.T) {
	db, mock, repo := setupMockGardenDB(t)
	defer db.Close()

	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	createdAt := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(gardenTestColumns).AddRow(
			int64(5), int64(10), "Vườn rau", "ACTIVE", 10.76, 106.66,
			"Cà chua", "Flowering", nil, nil, createdAt, createdAt,
		))

	mock.ExpectQuery(`FROM sensors`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "garden_id", "type", "name"}).
			AddRow(int64(1), int64(5), "SOIL_MOISTURE", "Độ ẩm đất"))

	mock.ExpectQuery(`FROM sensor_data`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sensor_id", "value", "timestamp"}).
			AddRow(int64(100), int64(1), 45.5, now.Add(-10*time.Minute)).
			AddRow(int64(99), int64(1), 44.0, now.Add(-40*time.Minute)))

	mock.ExpectQuery(`FROM weather_observations`).
		WithArgs(int64(5)).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery(`FROM daily_forecasts`).
		WithArgs(int64(5), now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "garden_id", "forecast_for", "temp_max", "temp_min", "rain", "wind_speed", "pop"}))

	mock.ExpectQuery(`FROM garden_activities`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "garden_id", "activity_type", "timestamp"}).
			AddRow(int64(7), int64(5), "WATERING", now.Add(-24*time.Hour)))

	mock.ExpectQuery(`FROM watering_schedules`).
		WithArgs(int64(5), now.Add(-7*24*time.Hour)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "garden_id", "scheduled_at", "status"}))

	mock.ExpectQuery(`FROM garden_photos`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "garden_id", "url", "created_at"}))

	snapshot, err := repo.GetSnapshot(context.Background(), 5, now)

	require.NoError(t, err)
	assert.Equal(t, int64(5), snapshot.Garden.ID)
	require.Len(t, snapshot.Sensors, 1)
	require.Len(t, snapshot.Sensors[0].Readings, 2)
	latest := snapshot.Sensors[0].Latest()
	require.NotNil(t, latest)
	assert.Equal(t, 45.5, latest.Value)
	assert.Nil(t, snapshot.Weather)
	assert.Empty(t, snapshot.Forecasts)
	require.Len(t, snapshot.Activities, 1)
	assert.Equal(t, models.ActivityTypeWatering, snapshot.Activities[0].ActivityType)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSnapshot_MissingGarden(t *testing.T) {
	db, mock, repo := setupMockGardenDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WithArgs(int64(999)).
		WillReturnError(sql.ErrNoRows)

	snapshot, err := repo.GetSnapshot(context.Background(), 999, time.Now())

	assert.Nil(t, snapshot)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
