package weather

import (
	"context"
	"fmt"
	"strings"
	"time"

	"garden-monitor/internal/models"

	"github.com/go-resty/resty/v2"
)

// Client fetches current conditions and forecasts from an
// OpenWeather-compatible API.
type Client struct {
	http   *resty.Client
	apiKey string
}

// NewClient creates a weather API client.
func NewClient(baseURL, apiKey string) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second)

	return &Client{
		http:   http,
		apiKey: apiKey,
	}
}

type currentResponse struct {
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Dt int64 `json:"dt"`
}

type forecastResponse struct {
	Hourly []struct {
		Dt  int64   `json:"dt"`
		POP float64 `json:"pop"`
	} `json:"hourly"`
	Daily []struct {
		Dt   int64 `json:"dt"`
		Temp struct {
			Min float64 `json:"min"`
			Max float64 `json:"max"`
		} `json:"temp"`
		Rain      float64 `json:"rain"`
		WindSpeed float64 `json:"wind_speed"`
		POP       float64 `json:"pop"`
	} `json:"daily"`
}

// CurrentConditions fetches the observed weather at a location. GardenID is
// left for the caller to fill in.
func (c *Client) CurrentConditions(ctx context.Context, lat, lon float64) (*models.WeatherObservation, error) {
	var body currentResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":   fmt.Sprintf("%f", lat),
			"lon":   fmt.Sprintf("%f", lon),
			"appid": c.apiKey,
			"units": "metric",
		}).
		SetResult(&body).
		Get("/data/2.5/weather")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current weather: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode())
	}

	weatherMain := models.WeatherMainClear
	if len(body.Weather) > 0 {
		weatherMain = strings.ToUpper(body.Weather[0].Main)
	}

	return &models.WeatherObservation{
		WeatherMain: weatherMain,
		Temp:        body.Main.Temp,
		Humidity:    body.Main.Humidity,
		WindSpeed:   body.Wind.Speed,
		Rain1h:      body.Rain.OneHour,
		ObservedAt:  time.Unix(body.Dt, 0).UTC(),
	}, nil
}

// Forecast holds one location's hourly and daily forecasts.
type Forecast struct {
	Hourly []models.HourlyForecast
	Daily  []models.DailyForecast
}

// Forecasts fetches hourly and daily forecasts for a location.
func (c *Client) Forecasts(ctx context.Context, lat, lon float64) (*Forecast, error) {
	var body forecastResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":     fmt.Sprintf("%f", lat),
			"lon":     fmt.Sprintf("%f", lon),
			"appid":   c.apiKey,
			"units":   "metric",
			"exclude": "minutely,alerts",
		}).
		SetResult(&body).
		Get("/data/3.0/onecall")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecasts: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode())
	}

	forecast := &Forecast{}
	for _, h := range body.Hourly {
		forecast.Hourly = append(forecast.Hourly, models.HourlyForecast{
			ForecastFor: time.Unix(h.Dt, 0).UTC(),
			POP:         h.POP,
		})
	}
	for _, d := range body.Daily {
		forecast.Daily = append(forecast.Daily, models.DailyForecast{
			ForecastFor: time.Unix(d.Dt, 0).UTC(),
			TempMax:     d.Temp.Max,
			TempMin:     d.Temp.Min,
			Rain:        d.Rain,
			WindSpeed:   d.WindSpeed,
			POP:         d.POP,
		})
	}

	return forecast, nil
}
