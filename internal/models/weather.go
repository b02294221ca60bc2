package models

import "time"

// Weather condition groups, matching the upstream provider's "main" field.
const (
	WeatherMainClear        = "CLEAR"
	WeatherMainClouds       = "CLOUDS"
	WeatherMainRain         = "RAIN"
	WeatherMainDrizzle      = "DRIZZLE"
	WeatherMainThunderstorm = "THUNDERSTORM"
)

// WeatherObservation is the latest observed conditions for a garden.
type WeatherObservation struct {
	ID          int64     `json:"id" db:"id"`
	GardenID    int64     `json:"garden_id" db:"garden_id"`
	WeatherMain string    `json:"weather_main" db:"weather_main"`
	Temp        float64   `json:"temp" db:"temp"`
	Humidity    float64   `json:"humidity" db:"humidity"`
	WindSpeed   float64   `json:"wind_speed" db:"wind_speed"` // m/s
	Rain1h      float64   `json:"rain_1h" db:"rain_1h"`       // mm/h
	ObservedAt  time.Time `json:"observed_at" db:"observed_at"`
}

// DailyForecast is one day of forecast data for a garden.
type DailyForecast struct {
	ID          int64     `json:"id" db:"id"`
	GardenID    int64     `json:"garden_id" db:"garden_id"`
	ForecastFor time.Time `json:"forecast_for" db:"forecast_for"`
	TempMax     float64   `json:"temp_max" db:"temp_max"`
	TempMin     float64   `json:"temp_min" db:"temp_min"`
	Rain        float64   `json:"rain" db:"rain"` // mm total
	WindSpeed   float64   `json:"wind_speed" db:"wind_speed"`
	POP         float64   `json:"pop" db:"pop"` // probability of precipitation, 0..1
}

// HourlyForecast is one hour of forecast data for a garden.
type HourlyForecast struct {
	ID          int64     `json:"id" db:"id"`
	GardenID    int64     `json:"garden_id" db:"garden_id"`
	ForecastFor time.Time `json:"forecast_for" db:"forecast_for"`
	POP         float64   `json:"pop" db:"pop"`
}
