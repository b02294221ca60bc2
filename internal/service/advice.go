package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"garden-monitor/internal/models"
	"garden-monitor/internal/repository"

	"go.uber.org/zap"
)

// PlantStore looks up plant species and their growth-stage optimal ranges.
type PlantStore interface {
	GetPlantByName(ctx context.Context, name string) (*models.Plant, error)
	GetGrowthStage(ctx context.Context, plantID int64, stageName string) (*models.GrowthStage, error)
}

// ReadingStore provides the latest value per sensor type for a garden.
type ReadingStore interface {
	LatestReadingsByGarden(ctx context.Context, gardenID int64) (map[string]float64, error)
}

// WeatherStore provides the forecast and observation reads the advice
// engine needs.
type WeatherStore interface {
	HourlyForecasts(ctx context.Context, gardenID int64, limit int) ([]models.HourlyForecast, error)
	TodayForecast(ctx context.Context, gardenID int64) (*models.DailyForecast, error)
	LatestObservation(ctx context.Context, gardenID int64) (*models.WeatherObservation, error)
}

// AdviceService compares a garden's latest readings against its plant's
// growth-stage optimal ranges and the local forecast to produce actionable
// care advice.
type AdviceService struct {
	gardens  GardenStore
	plants   PlantStore
	readings ReadingStore
	weather  WeatherStore
	logger   *zap.Logger

	now func() time.Time
}

// NewAdviceService creates an advice service.
func NewAdviceService(
	gardens GardenStore,
	plants PlantStore,
	readings ReadingStore,
	weather WeatherStore,
	logger *zap.Logger,
) *AdviceService {
	return &AdviceService{
		gardens:  gardens,
		plants:   plants,
		readings: readings,
		weather:  weather,
		logger:   logger,
		now:      time.Now,
	}
}

// GetAdvice returns care advice for one garden, ordered by priority
// descending. Missing plant metadata or an unknown growth stage fails with
// ErrNotFound; missing weather or sensor data just narrows the advice.
func (s *AdviceService) GetAdvice(ctx context.Context, gardenID int64) ([]models.AdviceAction, error) {
	garden, err := s.gardens.GetGarden(ctx, gardenID)
	if err != nil {
		return nil, err
	}
	if garden.PlantName == nil || garden.PlantGrowStage == nil {
		return nil, fmt.Errorf("garden %d has no plant or growth stage set: %w", gardenID, repository.ErrNotFound)
	}

	plant, err := s.plants.GetPlantByName(ctx, *garden.PlantName)
	if err != nil {
		return nil, err
	}
	stage, err := s.plants.GetGrowthStage(ctx, plant.ID, *garden.PlantGrowStage)
	if err != nil {
		return nil, err
	}

	readings, err := s.readings.LatestReadingsByGarden(ctx, gardenID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest readings: %w", err)
	}
	hourly, err := s.weather.HourlyForecasts(ctx, gardenID, 6)
	if err != nil {
		return nil, fmt.Errorf("failed to load hourly forecasts: %w", err)
	}
	today, err := s.weather.TodayForecast(ctx, gardenID)
	if err != nil {
		return nil, fmt.Errorf("failed to load today forecast: %w", err)
	}
	observation, err := s.weather.LatestObservation(ctx, gardenID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest observation: %w", err)
	}

	timeOfDay := timeOfDayFor(s.now().Hour())
	plantName := *garden.PlantName

	var advices []models.AdviceAction
	advices = append(advices, rainAdvice(today, timeOfDay)...)
	advices = append(advices, metricAdvice(readings, stage, hourly, plantName, timeOfDay)...)
	advices = append(advices, observationAdvice(observation, plantName, timeOfDay)...)

	merged := mergeByAction(advices)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Priority.Rank() > merged[j].Priority.Rank()
	})

	s.logger.Info("garden advice generated",
		zap.Int64("garden_id", gardenID),
		zap.Int("actions", len(merged)))

	return merged, nil
}

// timeOfDayFor buckets an hour into the default suggested time.
func timeOfDayFor(hour int) string {
	switch {
	case hour < 12:
		return "morning"
	case hour < 18:
		return "noon"
	default:
		return "evening"
	}
}

// rainAdvice turns today's rain probability into drainage advice.
func rainAdvice(today *models.DailyForecast, timeOfDay string) []models.AdviceAction {
	if today == nil {
		return nil
	}

	switch {
	case today.POP >= 0.8:
		return []models.AdviceAction{{
			Action:        "☔ Chuẩn bị thoát nước",
			Description:   fmt.Sprintf("Hôm nay có %.0f%% khả năng mưa. Kiểm tra lỗ thoát nước, che chắn cây non và tạm dừng tưới tự động.", today.POP*100),
			Reason:        fmt.Sprintf("Xác suất mưa hôm nay %.0f%%.", today.POP*100),
			Priority:      models.PriorityHigh,
			SuggestedTime: timeOfDay,
			Category:      models.AdviceCategoryWeatherForecast,
		}}
	case today.POP >= 0.5:
		return []models.AdviceAction{{
			Action:        "🌦️ Kiểm tra thoát nước",
			Description:   fmt.Sprintf("Có %.0f%% khả năng mưa hôm nay. Kiểm tra hệ thống thoát nước và cân nhắc hoãn tưới.", today.POP*100),
			Reason:        fmt.Sprintf("Xác suất mưa hôm nay %.0f%%.", today.POP*100),
			Priority:      models.PriorityMedium,
			SuggestedTime: timeOfDay,
			Category:      models.AdviceCategoryWeatherForecast,
		}}
	}
	return nil
}

// metricAdvice compares each latest reading against the growth stage's
// optimal range. Every metric fires independently.
func metricAdvice(readings map[string]float64, stage *models.GrowthStage, hourly []models.HourlyForecast, plantName, timeOfDay string) []models.AdviceAction {
	var advices []models.AdviceAction

	if v, ok := readings[strings.ToLower(models.SensorTypeSoilMoisture)]; ok {
		if v < stage.OptimalSoilMoistureMin {
			advices = append(advices, wateringAdvice(v, stage, hourly, plantName, timeOfDay))
		} else if v > stage.OptimalSoilMoistureMax {
			advices = append(advices, models.AdviceAction{
				Action:        "⏸️ Giảm tưới nước",
				Description:   fmt.Sprintf("Độ ẩm đất %.1f%% cao hơn mức tối ưu cho %s (%.0f-%.0f%%). Dừng tưới cho đến khi độ ẩm giảm và kiểm tra thoát nước.", v, plantName, stage.OptimalSoilMoistureMin, stage.OptimalSoilMoistureMax),
				Reason:        fmt.Sprintf("Độ ẩm đất %.1f%% vượt mức tối ưu %.0f%%.", v, stage.OptimalSoilMoistureMax),
				Priority:      models.PriorityLow,
				SuggestedTime: timeOfDay,
				Category:      models.AdviceCategoryWatering,
			})
		}
	}

	if v, ok := readings[strings.ToLower(models.SensorTypeTemperature)]; ok {
		if v > stage.OptimalTemperatureMax {
			advices = append(advices, models.AdviceAction{
				Action:        "🌤️ Hạ nhiệt độ",
				Description:   fmt.Sprintf("Nhiệt độ %.1f°C cao hơn mức tối ưu cho %s (%.0f-%.0f°C). Che nắng 50-70%% vào giữa trưa và tưới mát đất xung quanh.", v, plantName, stage.OptimalTemperatureMin, stage.OptimalTemperatureMax),
				Reason:        fmt.Sprintf("Nhiệt độ %.1f°C vượt mức tối ưu %.0f°C.", v, stage.OptimalTemperatureMax),
				Priority:      models.PriorityHigh,
				SuggestedTime: timeOfDay,
				Category:      models.AdviceCategoryTemperature,
			})
		} else if v < stage.OptimalTemperatureMin {
			advices = append(advices, models.AdviceAction{
				Action:        "🔥 Giữ ấm cho cây",
				Description:   fmt.Sprintf("Nhiệt độ %.1f°C thấp hơn mức tối ưu cho %s (%.0f-%.0f°C). Che chắn gió lạnh và phủ ấm vào ban đêm.", v, plantName, stage.OptimalTemperatureMin, stage.OptimalTemperatureMax),
				Reason:        fmt.Sprintf("Nhiệt độ %.1f°C dưới mức tối ưu %.0f°C.", v, stage.OptimalTemperatureMin),
				Priority:      models.PriorityMedium,
				SuggestedTime: timeOfDay,
				Category:      models.AdviceCategoryTemperature,
			})
		}
	}

	if v, ok := readings[strings.ToLower(models.SensorTypeLight)]; ok {
		if v < stage.OptimalLightMin {
			advices = append(advices, models.AdviceAction{
				Action:        "💡 Tăng ánh sáng",
				Description:   fmt.Sprintf("Ánh sáng %.0f lux thấp hơn nhu cầu của %s (%.0f-%.0f lux). Di chuyển cây đến nơi sáng hơn hoặc bổ sung đèn LED trồng cây.", v, plantName, stage.OptimalLightMin, stage.OptimalLightMax),
				Reason:        fmt.Sprintf("Ánh sáng %.0f lux dưới mức tối ưu %.0f lux.", v, stage.OptimalLightMin),
				Priority:      models.PriorityMedium,
				SuggestedTime: timeOfDay,
				Category:      models.AdviceCategoryLight,
			})
		} else if v > stage.OptimalLightMax {
			advices = append(advices, models.AdviceAction{
				Action:        "🏖️ Che chắn ánh sáng",
				Description:   fmt.Sprintf("Ánh sáng %.0f lux quá mạnh cho %s (tối đa %.0f lux). Dùng lưới che 30-50%% vào giữa trưa.", v, plantName, stage.OptimalLightMax),
				Reason:        fmt.Sprintf("Ánh sáng %.0f lux vượt mức tối ưu %.0f lux.", v, stage.OptimalLightMax),
				Priority:      models.PriorityMedium,
				SuggestedTime: timeOfDay,
				Category:      models.AdviceCategoryLight,
			})
		}
	}

	if v, ok := readings[strings.ToLower(models.SensorTypeHumidity)]; ok {
		if v < stage.OptimalHumidityMin {
			advices = append(advices, models.AdviceAction{
				Action:        "💨 Tăng độ ẩm không khí",
				Description:   fmt.Sprintf("Độ ẩm không khí %.1f%% thấp hơn mức tối ưu cho %s (%.0f-%.0f%%). Đặt khay nước gần cây hoặc phun sương nhẹ xung quanh.", v, plantName, stage.OptimalHumidityMin, stage.OptimalHumidityMax),
				Reason:        fmt.Sprintf("Độ ẩm không khí %.1f%% dưới mức tối ưu %.0f%%.", v, stage.OptimalHumidityMin),
				Priority:      models.PriorityMedium,
				SuggestedTime: timeOfDay,
				Category:      models.AdviceCategoryHumidity,
			})
		} else if v > stage.OptimalHumidityMax {
			advices = append(advices, models.AdviceAction{
				Action:        "🌬️ Giảm độ ẩm không khí",
				Description:   fmt.Sprintf("Độ ẩm không khí %.1f%% cao hơn mức tối ưu (%.0f-%.0f%%). Tăng thông gió để tránh nấm mốc.", v, stage.OptimalHumidityMin, stage.OptimalHumidityMax),
				Reason:        fmt.Sprintf("Độ ẩm không khí %.1f%% vượt mức tối ưu %.0f%%.", v, stage.OptimalHumidityMax),
				Priority:      models.PriorityLow,
				SuggestedTime: timeOfDay,
				Category:      models.AdviceCategoryHumidity,
			})
		}
	}

	return advices
}

// wateringAdvice handles the dry-soil case. When rain is likely within the
// next few hours the advice softens to a delay suggestion.
func wateringAdvice(value float64, stage *models.GrowthStage, hourly []models.HourlyForecast, plantName, timeOfDay string) models.AdviceAction {
	rainSoon := false
	for _, h := range hourly {
		if h.POP > 0.5 {
			rainSoon = true
			break
		}
	}

	if rainSoon {
		return models.AdviceAction{
			Action:        "💧 Tưới nước cho cây",
			Description:   fmt.Sprintf("Độ ẩm đất %.1f%% thấp hơn mức tối ưu cho %s (%.0f-%.0f%%), nhưng sắp có mưa trong vài giờ tới. Cân nhắc hoãn tưới và tận dụng nước mưa.", value, plantName, stage.OptimalSoilMoistureMin, stage.OptimalSoilMoistureMax),
			Reason:        fmt.Sprintf("Độ ẩm đất %.1f%% dưới mức tối ưu %.0f%%, dự báo có mưa sớm.", value, stage.OptimalSoilMoistureMin),
			Priority:      models.PriorityMedium,
			SuggestedTime: timeOfDay,
			Category:      models.AdviceCategoryWatering,
		}
	}

	return models.AdviceAction{
		Action:        "💧 Tưới nước cho cây",
		Description:   fmt.Sprintf("Độ ẩm đất %.1f%% thấp hơn mức tối ưu cho %s (%.0f-%.0f%%). Tưới từ từ ở gốc cây vào sáng sớm hoặc chiều mát.", value, plantName, stage.OptimalSoilMoistureMin, stage.OptimalSoilMoistureMax),
		Reason:        fmt.Sprintf("Độ ẩm đất %.1f%% dưới mức tối ưu %.0f%%.", value, stage.OptimalSoilMoistureMin),
		Priority:      models.PriorityHigh,
		SuggestedTime: timeOfDay,
		Category:      models.AdviceCategoryWatering,
	}
}

// observationAdvice raises protective advice for extreme observed heat or
// wind, independent of the plant's optimal ranges.
func observationAdvice(observation *models.WeatherObservation, plantName, timeOfDay string) []models.AdviceAction {
	if observation == nil {
		return nil
	}

	var advices []models.AdviceAction

	if observation.Temp > 35 {
		advices = append(advices, models.AdviceAction{
			Action:        "🔥 Bảo vệ khỏi nắng nóng",
			Description:   fmt.Sprintf("Nhiệt độ ngoài trời %.1f°C. Che nắng đậm cho %s, tưới mát đất xung quanh và tránh làm vườn giữa trưa.", observation.Temp, plantName),
			Reason:        fmt.Sprintf("Nhiệt độ ngoài trời %.1f°C ở mức nguy hiểm.", observation.Temp),
			Priority:      models.PriorityHigh,
			SuggestedTime: timeOfDay,
			Category:      models.AdviceCategoryWeatherForecast,
		})
	}

	if observation.WindSpeed > 15 {
		advices = append(advices, models.AdviceAction{
			Action:        "💨 Bảo vệ khỏi gió mạnh",
			Description:   fmt.Sprintf("Gió mạnh %.1f m/s. Cố định %s vào cọc chắc chắn và di chuyển chậu nhỏ vào nơi kín gió.", observation.WindSpeed, plantName),
			Reason:        fmt.Sprintf("Gió %.1f m/s có thể gây gãy cành.", observation.WindSpeed),
			Priority:      models.PriorityHigh,
			SuggestedTime: timeOfDay,
			Category:      models.AdviceCategoryWeatherForecast,
		})
	}

	return advices
}

// mergeByAction collapses advices sharing an action key: reasons are
// concatenated with a space and priority escalates to the group maximum.
// First-seen order is preserved.
func mergeByAction(advices []models.AdviceAction) []models.AdviceAction {
	var merged []models.AdviceAction
	index := make(map[string]int)

	for _, a := range advices {
		i, seen := index[a.Action]
		if !seen {
			index[a.Action] = len(merged)
			merged = append(merged, a)
			continue
		}

		merged[i].Reason = merged[i].Reason + " " + a.Reason
		if a.Priority.Rank() > merged[i].Priority.Rank() {
			merged[i].Priority = a.Priority
		}
	}

	return merged
}
