package models

import (
	"time"
)

// Garden statuses.
const (
	GardenStatusActive   = "ACTIVE"
	GardenStatusInactive = "INACTIVE"
	GardenStatusArchived = "ARCHIVED"
)

// Sensor types.
const (
	SensorTypeSoilMoisture = "SOIL_MOISTURE"
	SensorTypeTemperature  = "TEMPERATURE"
	SensorTypeHumidity     = "HUMIDITY"
	SensorTypeLight        = "LIGHT"
	SensorTypeWaterLevel   = "WATER_LEVEL"
	SensorTypeRainfall     = "RAINFALL"
	SensorTypeSoilPH       = "SOIL_PH"
)

// Activity types.
const (
	ActivityTypePlanting    = "PLANTING"
	ActivityTypeWatering    = "WATERING"
	ActivityTypeFertilizing = "FERTILIZING"
	ActivityTypePruning     = "PRUNING"
	ActivityTypePestControl = "PEST_CONTROL"
	ActivityTypeHarvesting  = "HARVESTING"
)

// Watering schedule statuses.
const (
	WateringStatusPending   = "PENDING"
	WateringStatusCompleted = "COMPLETED"
	WateringStatusSkipped   = "SKIPPED"
)

// Garden is a managed growing space with one primary plant.
type Garden struct {
	ID             int64      `json:"id" db:"id"`
	UserID         int64      `json:"user_id" db:"user_id"`
	Name           string     `json:"name" db:"name"`
	Status         string     `json:"status" db:"status"`
	Latitude       float64    `json:"latitude" db:"latitude"`
	Longitude      float64    `json:"longitude" db:"longitude"`
	PlantName      *string    `json:"plant_name,omitempty" db:"plant_name"`
	PlantGrowStage *string    `json:"plant_grow_stage,omitempty" db:"plant_grow_stage"`
	PlantStartDate *time.Time `json:"plant_start_date,omitempty" db:"plant_start_date"`
	PlantDuration  *int       `json:"plant_duration,omitempty" db:"plant_duration"` // expected days to maturity
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Sensor is a device attached to a garden.
type Sensor struct {
	ID       int64  `json:"id" db:"id"`
	GardenID int64  `json:"garden_id" db:"garden_id"`
	Type     string `json:"type" db:"type"`
	Name     string `json:"name" db:"name"`
}

// SensorReading is one data point reported by a sensor.
type SensorReading struct {
	ID        int64     `json:"id" db:"id"`
	SensorID  int64     `json:"sensor_id" db:"sensor_id"`
	Value     float64   `json:"value" db:"value"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// SensorWithReadings bundles a sensor with its most recent readings,
// newest first.
type SensorWithReadings struct {
	Sensor
	Readings []SensorReading `json:"readings"`
}

// Latest returns the newest reading, or nil when the sensor has none.
func (s *SensorWithReadings) Latest() *SensorReading {
	if len(s.Readings) == 0 {
		return nil
	}
	return &s.Readings[0]
}

// Activity is a logged care action on a garden.
type Activity struct {
	ID           int64     `json:"id" db:"id"`
	GardenID     int64     `json:"garden_id" db:"garden_id"`
	ActivityType string    `json:"activity_type" db:"activity_type"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
}

// WateringScheduleEntry is one planned watering.
type WateringScheduleEntry struct {
	ID          int64     `json:"id" db:"id"`
	GardenID    int64     `json:"garden_id" db:"garden_id"`
	ScheduledAt time.Time `json:"scheduled_at" db:"scheduled_at"`
	Status      string    `json:"status" db:"status"`
}

// Photo is an uploaded garden photo. Informational only; scoring ignores it.
type Photo struct {
	ID        int64     `json:"id" db:"id"`
	GardenID  int64     `json:"garden_id" db:"garden_id"`
	URL       string    `json:"url" db:"url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// GardenSnapshot is the immutable per-check bundle every evaluator reads.
// It is assembled once per health check and never re-queried.
type GardenSnapshot struct {
	Garden           Garden
	Sensors          []SensorWithReadings
	Weather          *WeatherObservation     // most recent, may be nil
	Forecasts        []DailyForecast         // up to 3 upcoming days, ascending
	Activities       []Activity              // up to 10, newest first
	WateringSchedule []WateringScheduleEntry // last 7 days, scheduled_at descending
	Photos           []Photo                 // up to 5, newest first
}
