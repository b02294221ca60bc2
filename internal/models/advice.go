package models

// Priority orders advice actions (LOW < MEDIUM < HIGH).
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Rank returns a comparable ordering for priorities.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	default:
		return -1
	}
}

// Advice categories.
const (
	AdviceCategoryWeatherForecast = "WEATHER_FORECAST"
	AdviceCategoryWatering        = "WATERING"
	AdviceCategoryTemperature     = "TEMPERATURE"
	AdviceCategoryLight           = "LIGHT"
	AdviceCategoryHumidity        = "HUMIDITY"
)

// AdviceAction is one recommended care action. Actions sharing the same
// Action key are merged: reasons concatenated, priority escalated.
type AdviceAction struct {
	Action        string   `json:"action"`
	Description   string   `json:"description"`
	Reason        string   `json:"reason"`
	Priority      Priority `json:"priority"`
	SuggestedTime string   `json:"suggested_time"`
	Category      string   `json:"category"`
}

// Plant is a known plant species.
type Plant struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// GrowthStage is a named phase of a plant's lifecycle with the optimal
// environmental ranges for that phase.
type GrowthStage struct {
	ID                     int64   `json:"id" db:"id"`
	PlantID                int64   `json:"plant_id" db:"plant_id"`
	StageName              string  `json:"stage_name" db:"stage_name"`
	OptimalTemperatureMin  float64 `json:"optimal_temperature_min" db:"optimal_temperature_min"`
	OptimalTemperatureMax  float64 `json:"optimal_temperature_max" db:"optimal_temperature_max"`
	OptimalHumidityMin     float64 `json:"optimal_humidity_min" db:"optimal_humidity_min"`
	OptimalHumidityMax     float64 `json:"optimal_humidity_max" db:"optimal_humidity_max"`
	OptimalSoilMoistureMin float64 `json:"optimal_soil_moisture_min" db:"optimal_soil_moisture_min"`
	OptimalSoilMoistureMax float64 `json:"optimal_soil_moisture_max" db:"optimal_soil_moisture_max"`
	OptimalPHMin           float64 `json:"optimal_ph_min" db:"optimal_ph_min"`
	OptimalPHMax           float64 `json:"optimal_ph_max" db:"optimal_ph_max"`
	OptimalLightMin        float64 `json:"optimal_light_min" db:"optimal_light_min"`
	OptimalLightMax        float64 `json:"optimal_light_max" db:"optimal_light_max"`
}
