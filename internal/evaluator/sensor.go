package evaluator

import (
	"fmt"
	"time"

	"garden-monitor/internal/models"
)

// SensorEvaluator checks every sensor in the snapshot: first liveness (a
// reading older than an hour means the sensor is offline), then the value
// against the fixed threshold table for its type.
type SensorEvaluator struct{}

// Evaluate runs the sensor checks against the report accumulator.
func (SensorEvaluator) Evaluate(snap *models.GardenSnapshot, now time.Time, report *ReportBuilder) {
	oneHourAgo := now.Add(-time.Hour)

	for i := range snap.Sensors {
		sensor := &snap.Sensors[i]
		latest := sensor.Latest()

		if latest == nil || latest.Timestamp.Before(oneHourAgo) {
			lastSeen := "rất lâu"
			if latest != nil {
				lastSeen = formatTimeAgo(now, latest.Timestamp)
			}

			issue := models.HealthIssue{
				Category: models.IssueCategorySensor,
				Severity: models.SeverityHigh,
				Message: fmt.Sprintf("Cảm biến %s đã ngừng gửi dữ liệu từ %s.",
					sensorTypeName(sensor.Type), lastSeen),
				Recommendation: "Vui lòng kiểm tra kết nối và pin của cảm biến. Có thể cần thay pin hoặc khởi động lại thiết bị.",
			}
			report.AddIssue(issue, 15)

			report.AddAlert(models.AlertCandidate{
				Type:       models.AlertTypeSensorError,
				Message:    fmt.Sprintf("⚠️ Cảm biến %s không phản hồi", sensorTypeName(sensor.Type)),
				Suggestion: issue.Recommendation,
				Severity:   models.SeverityHigh,
			})

			// An offline sensor's last value is not trustworthy; skip the
			// threshold checks for it this pass.
			continue
		}

		checkSensorValue(sensor.Type, latest.Value, report)
	}
}

// checkSensorValue dispatches one fresh reading to the threshold table for
// its sensor type. Unlisted types are a no-op.
func checkSensorValue(sensorType string, value float64, report *ReportBuilder) {
	switch sensorType {
	case models.SensorTypeSoilMoisture:
		if value < 30 {
			report.AddIssue(models.HealthIssue{
				Category:       models.IssueCategoryPlant,
				Severity:       models.SeverityMedium,
				Message:        fmt.Sprintf("Độ ẩm đất thấp (%.1f%%). Cây có thể đang thiếu nước.", value),
				Recommendation: "Tưới nước ngay lập tức và kiểm tra lịch tưới. Xem xét tăng tần suất tưới trong thời tiết nóng.",
			}, 10)

			report.AddAlert(models.AlertCandidate{
				Type:       models.AlertTypePlantCondition,
				Message:    fmt.Sprintf("🌱 Đất khô - Độ ẩm chỉ còn %.1f%%", value),
				Suggestion: "Tưới nước ngay để cây không bị héo. Kiểm tra hệ thống tưới tự động nếu có.",
				Severity:   models.SeverityMedium,
			})
		} else if value > 80 {
			report.AddIssue(models.HealthIssue{
				Category:       models.IssueCategoryPlant,
				Severity:       models.SeverityMedium,
				Message:        fmt.Sprintf("Độ ẩm đất cao (%.1f%%). Có thể tưới quá nhiều nước.", value),
				Recommendation: "Giảm lượng nước tưới và kiểm tra hệ thống thoát nước. Đất quá ẩm có thể gây thối rễ.",
			}, 8)

			report.AddAlert(models.AlertCandidate{
				Type:       models.AlertTypePlantCondition,
				Message:    fmt.Sprintf("💧 Đất quá ẩm - Độ ẩm %.1f%%", value),
				Suggestion: "Tạm dừng tưới nước và cải thiện thoát nước. Theo dõi dấu hiệu thối rễ.",
				Severity:   models.SeverityMedium,
			})
		}

	case models.SensorTypeTemperature:
		if value > 35 {
			report.AddIssue(models.HealthIssue{
				Category:       models.IssueCategoryWeather,
				Severity:       models.SeverityMedium,
				Message:        fmt.Sprintf("Nhiệt độ cao (%.1f°C). Cây có thể bị stress nhiệt.", value),
				Recommendation: "Tăng tưới nước, che bóng mát và thoáng khí. Tránh tưới vào giữa trưa.",
			}, 8)
		} else if value < 15 {
			report.AddIssue(models.HealthIssue{
				Category:       models.IssueCategoryWeather,
				Severity:       models.SeverityMedium,
				Message:        fmt.Sprintf("Nhiệt độ thấp (%.1f°C). Cây có thể bị stress lạnh.", value),
				Recommendation: "Che chắn gió, giữ ấm cho cây. Giảm tưới nước trong thời tiết lạnh.",
			}, 8)
		}

	case models.SensorTypeHumidity:
		if value < 40 {
			report.AddIssue(models.HealthIssue{
				Category:       models.IssueCategoryWeather,
				Severity:       models.SeverityLow,
				Message:        fmt.Sprintf("Độ ẩm không khí thấp (%.1f%%). Có thể ảnh hưởng đến sự phát triển.", value),
				Recommendation: "Xịt sương nhẹ xung quanh cây hoặc đặt chậu nước gần để tăng độ ẩm.",
			}, 5)
		}

	case models.SensorTypeLight:
		if value < 1000 {
			report.AddIssue(models.HealthIssue{
				Category:       models.IssueCategoryPlant,
				Severity:       models.SeverityLow,
				Message:        fmt.Sprintf("Ánh sáng yếu (%.0f lux). Cây có thể không đủ ánh sáng để quang hợp.", value),
				Recommendation: "Di chuyển cây đến nơi có nhiều ánh sáng hơn hoặc sử dụng đèn LED trồng cây.",
			}, 6)
		}
	}
}
