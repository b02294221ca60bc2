package evaluator

import (
	"fmt"
	"time"

	"garden-monitor/internal/models"
)

// sensorTypeName returns the user-facing name for a sensor type.
func sensorTypeName(sensorType string) string {
	switch sensorType {
	case models.SensorTypeHumidity:
		return "độ ẩm không khí"
	case models.SensorTypeTemperature:
		return "nhiệt độ"
	case models.SensorTypeLight:
		return "ánh sáng"
	case models.SensorTypeWaterLevel:
		return "mực nước"
	case models.SensorTypeRainfall:
		return "lượng mưa"
	case models.SensorTypeSoilMoisture:
		return "độ ẩm đất"
	case models.SensorTypeSoilPH:
		return "độ pH đất"
	default:
		return sensorType
	}
}

// formatTimeAgo renders how long ago a timestamp was, relative to now.
func formatTimeAgo(now, t time.Time) string {
	hours := int(now.Sub(t).Hours())
	if hours < 1 {
		return "vài phút trước"
	}
	if hours < 24 {
		return fmt.Sprintf("%d giờ trước", hours)
	}
	return fmt.Sprintf("%d ngày trước", hours/24)
}

// daysSince returns whole days elapsed between t and now.
func daysSince(now, t time.Time) int {
	return int(now.Sub(t).Hours() / 24)
}
