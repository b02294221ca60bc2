package evaluator

import (
	"fmt"
	"time"

	"garden-monitor/internal/models"
)

// WeatherEvaluator checks current conditions and tomorrow's forecast.
// A missing observation or an empty forecast list is a valid no-op.
type WeatherEvaluator struct{}

// Evaluate runs the weather checks against the report accumulator.
func (WeatherEvaluator) Evaluate(snap *models.GardenSnapshot, now time.Time, report *ReportBuilder) {
	if current := snap.Weather; current != nil {
		if current.WeatherMain == models.WeatherMainRain && current.Rain1h > 10 {
			report.AddIssue(models.HealthIssue{
				Category:       models.IssueCategoryWeather,
				Severity:       models.SeverityLow,
				Message:        fmt.Sprintf("Đang mưa to (%gmm/h). Cây có thể bị ngập úng.", current.Rain1h),
				Recommendation: "Kiểm tra hệ thống thoát nước và tạm dừng tưới nước tự động nếu có.",
			}, 3)
		}

		if current.WindSpeed > 10 {
			report.AddIssue(models.HealthIssue{
				Category:       models.IssueCategoryWeather,
				Severity:       models.SeverityMedium,
				Message:        fmt.Sprintf("Gió mạnh (%.1f m/s). Cây có thể bị gãy cành.", current.WindSpeed),
				Recommendation: "Gia cường cột chống và che chắn cho cây. Kiểm tra sau khi gió tạnh.",
			}, 7)
		}
	}

	if len(snap.Forecasts) == 0 {
		return
	}

	// Forecast findings are alert-only: tomorrow's weather has not harmed
	// the garden yet, so the score stays untouched.
	tomorrow := snap.Forecasts[0]

	if tomorrow.TempMax > 38 {
		severity := models.SeverityMedium
		if tomorrow.TempMax > 40 {
			severity = models.SeverityHigh
		}
		report.AddAlert(models.AlertCandidate{
			Type:       models.AlertTypeWeather,
			Message:    fmt.Sprintf("🌡️ Ngày mai sẽ rất nóng (%.1f°C)", tomorrow.TempMax),
			Suggestion: "Chuẩn bị tưới nước nhiều hơn và che nắng cho cây từ sáng sớm.",
			Severity:   severity,
		})
	}

	if tomorrow.Rain > 20 {
		report.AddAlert(models.AlertCandidate{
			Type:       models.AlertTypeWeather,
			Message:    fmt.Sprintf("🌧️ Ngày mai có mưa to (%.1fmm)", tomorrow.Rain),
			Suggestion: "Kiểm tra hệ thống thoát nước và tạm dừng tưới nước tự động.",
			Severity:   models.SeverityLow,
		})
	}
}
