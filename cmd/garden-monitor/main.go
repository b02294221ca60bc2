package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"garden-monitor/internal/cache"
	"garden-monitor/internal/config"
	httpapi "garden-monitor/internal/http"
	"garden-monitor/internal/ingest"
	"garden-monitor/internal/repository"
	"garden-monitor/internal/service"
	"garden-monitor/internal/weather"
	"garden-monitor/pkg/database"
	"garden-monitor/pkg/logger"
	"garden-monitor/pkg/mqttx"
	"garden-monitor/pkg/redisx"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "garden-monitor")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting garden-monitor service")

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	redisClient := redisx.NewClient(&cfg.Redis)
	defer redisx.Close(redisClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := redisx.Ping(ctx, redisClient); err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}

	gardenRepo := repository.NewGardenRepository(db, log)
	alertRepo := repository.NewAlertRepository(db, log)
	sensorRepo := repository.NewSensorRepository(db, log)
	plantRepo := repository.NewPlantRepository(db, log)
	weatherRepo := repository.NewWeatherRepository(db, log)

	reportCache := cache.NewReportCache(redisClient, cfg.Monitor.Cache.KeyPrefix, cfg.Monitor.Cache.TTL, log)

	healthSvc := service.NewHealthService(gardenRepo, alertRepo, reportCache, cfg.Monitor.AlertCooldown, log)
	adviceSvc := service.NewAdviceService(gardenRepo, plantRepo, sensorRepo, weatherRepo, log)

	scheduler := service.NewScheduler(healthSvc, gardenRepo, sensorRepo, weatherRepo, alertRepo, service.SchedulerConfig{
		FullCheckInterval:     cfg.Monitor.FullCheckInterval,
		QuickCheckInterval:    cfg.Monitor.QuickCheckInterval,
		ForecastCheckInterval: cfg.Monitor.ForecastCheckInterval,
		InterGardenDelay:      cfg.Monitor.InterGardenDelay,
		GardenSkipWindow:      cfg.Monitor.GardenSkipWindow,
		QuickAlertCooldown:    cfg.Monitor.QuickAlertCooldown,
		ForecastAlertCooldown: cfg.Monitor.ForecastAlertCooldown,
	}, log)
	scheduler.Start(ctx)

	if cfg.MQTT.Enabled {
		if cfg.MQTT.ClientID == "" {
			cfg.MQTT.ClientID = "garden-monitor-" + uuid.NewString()
		}
		mqttClient, err := mqttx.NewClient(&cfg.MQTT.Config)
		if err != nil {
			log.Fatal("Failed to connect to MQTT broker", zap.Error(err))
		}
		defer mqttClient.Disconnect()

		consumer := ingest.NewConsumer(mqttClient, sensorRepo, cfg.MQTT.Topic, cfg.MQTT.QoS, log)
		if err := consumer.Start(ctx); err != nil {
			log.Fatal("Failed to start sensor ingest", zap.Error(err))
		}
		defer consumer.Stop()
	} else {
		log.Info("MQTT broker not configured, sensor ingest disabled")
	}

	if cfg.Weather.Enabled {
		weatherClient := weather.NewClient(cfg.Weather.BaseURL, cfg.Weather.APIKey)
		refresher := weather.NewRefresher(weatherClient, gardenRepo, weatherRepo, cfg.Weather.RefreshInterval, log)
		refresher.Start(ctx)
	} else {
		log.Info("Weather API key not configured, weather refresh disabled")
	}

	api := httpapi.NewServer(gardenRepo, healthSvc, adviceSvc, scheduler, log)
	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: api,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errChan:
		log.Error("HTTP server error", zap.Error(err))
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error stopping HTTP server", zap.Error(err))
	}

	log.Info("Service stopped")
}
