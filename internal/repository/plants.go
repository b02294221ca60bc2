package repository

import (
	"context"
	"database/sql"
	"fmt"

	"garden-monitor/internal/models"

	"go.uber.org/zap"
)

// PlantRepository reads plant species and their growth-stage optimal ranges.
type PlantRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPlantRepository creates a plant repository.
func NewPlantRepository(db *sql.DB, logger *zap.Logger) *PlantRepository {
	return &PlantRepository{
		db:     db,
		logger: logger,
	}
}

// GetPlantByName returns the plant with the given name, or ErrNotFound.
func (r *PlantRepository) GetPlantByName(ctx context.Context, name string) (*models.Plant, error) {
	if name == "" {
		return nil, fmt.Errorf("plant name is required")
	}

	query := `SELECT id, name FROM plants WHERE name = $1`

	var p models.Plant
	err := r.db.QueryRowContext(ctx, query, name).Scan(&p.ID, &p.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("plant %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get plant: %w", err)
	}

	return &p, nil
}

// GetGrowthStage returns the optimal ranges for one (plant, stage) pair,
// or ErrNotFound.
func (r *PlantRepository) GetGrowthStage(ctx context.Context, plantID int64, stageName string) (*models.GrowthStage, error) {
	if plantID <= 0 {
		return nil, fmt.Errorf("plant_id is required")
	}
	if stageName == "" {
		return nil, fmt.Errorf("stage name is required")
	}

	query := `
		SELECT id, plant_id, stage_name,
			optimal_temperature_min, optimal_temperature_max,
			optimal_humidity_min, optimal_humidity_max,
			optimal_soil_moisture_min, optimal_soil_moisture_max,
			optimal_ph_min, optimal_ph_max,
			optimal_light_min, optimal_light_max
		FROM growth_stages
		WHERE plant_id = $1 AND stage_name = $2
	`

	var gs models.GrowthStage
	err := r.db.QueryRowContext(ctx, query, plantID, stageName).Scan(
		&gs.ID,
		&gs.PlantID,
		&gs.StageName,
		&gs.OptimalTemperatureMin,
		&gs.OptimalTemperatureMax,
		&gs.OptimalHumidityMin,
		&gs.OptimalHumidityMax,
		&gs.OptimalSoilMoistureMin,
		&gs.OptimalSoilMoistureMax,
		&gs.OptimalPHMin,
		&gs.OptimalPHMax,
		&gs.OptimalLightMin,
		&gs.OptimalLightMax,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("growth stage %q for plant %d: %w", stageName, plantID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get growth stage: %w", err)
	}

	return &gs, nil
}
