package config

import (
	"os"
	"strconv"
	"time"

	"garden-monitor/pkg/database"
	"garden-monitor/pkg/mqttx"
	"garden-monitor/pkg/redisx"
)

// Config holds all garden-monitor settings.
type Config struct {
	Database database.Config
	Redis    redisx.Config
	MQTT     struct {
		mqttx.Config
		Enabled bool
		Topic   string // topic filter for sensor readings
	}

	// Weather API client configuration.
	Weather struct {
		Enabled         bool
		BaseURL         string
		APIKey          string
		RefreshInterval time.Duration
	}

	// Health monitor configuration.
	Monitor struct {
		FullCheckInterval     time.Duration // full health check over all gardens
		QuickCheckInterval    time.Duration // critical-sensor quick check
		ForecastCheckInterval time.Duration // tomorrow-forecast check

		InterGardenDelay time.Duration // pause between gardens in a batch run
		GardenSkipWindow time.Duration // skip gardens alerted within this window

		AlertCooldown         time.Duration // full-check dedup window (exact message)
		QuickAlertCooldown    time.Duration // quick-check dedup window (type only)
		ForecastAlertCooldown time.Duration // forecast-check dedup window (type only)

		// Redis report cache.
		Cache struct {
			KeyPrefix string
			TTL       time.Duration
		}
	}

	HTTP struct {
		Addr string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from the environment, with defaults suited to
// local development.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "garden")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.MQTT.Enabled = getEnv("MQTT_BROKER", "") != ""
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = 1
	cfg.MQTT.Topic = getEnv("MQTT_SENSOR_TOPIC", "garden/+/sensor/+")

	cfg.Weather.Enabled = getEnv("WEATHER_API_KEY", "") != ""
	cfg.Weather.BaseURL = getEnv("WEATHER_API_URL", "https://api.openweathermap.org")
	cfg.Weather.APIKey = getEnv("WEATHER_API_KEY", "")
	cfg.Weather.RefreshInterval = getEnvDuration("WEATHER_REFRESH_INTERVAL", time.Hour)

	cfg.Monitor.FullCheckInterval = getEnvDuration("MONITOR_FULL_INTERVAL", 2*time.Hour)
	cfg.Monitor.QuickCheckInterval = getEnvDuration("MONITOR_QUICK_INTERVAL", 30*time.Minute)
	cfg.Monitor.ForecastCheckInterval = getEnvDuration("MONITOR_FORECAST_INTERVAL", 6*time.Hour)
	cfg.Monitor.InterGardenDelay = getEnvDuration("MONITOR_GARDEN_DELAY", 100*time.Millisecond)
	cfg.Monitor.GardenSkipWindow = getEnvDuration("MONITOR_SKIP_WINDOW", 90*time.Minute)
	cfg.Monitor.AlertCooldown = getEnvDuration("ALERT_COOLDOWN", 24*time.Hour)
	cfg.Monitor.QuickAlertCooldown = getEnvDuration("QUICK_ALERT_COOLDOWN", 2*time.Hour)
	cfg.Monitor.ForecastAlertCooldown = getEnvDuration("FORECAST_ALERT_COOLDOWN", 12*time.Hour)
	cfg.Monitor.Cache.KeyPrefix = getEnv("CACHE_REPORT_PREFIX", "garden:")
	cfg.Monitor.Cache.TTL = getEnvDuration("CACHE_REPORT_TTL", 2*time.Hour)

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
