package evaluator

import (
	"fmt"
	"time"

	"garden-monitor/internal/models"
)

// PlantEvaluator checks the plant's lifecycle and the garden's care history.
// Gardens without plant metadata get a single prompt to fill it in and no
// further plant checks.
type PlantEvaluator struct{}

// Evaluate runs the plant and maintenance checks against the report
// accumulator.
func (PlantEvaluator) Evaluate(snap *models.GardenSnapshot, now time.Time, report *ReportBuilder) {
	garden := &snap.Garden

	if garden.PlantName == nil || garden.PlantGrowStage == nil {
		report.AddRecommendation("💡 Cập nhật thông tin loại cây và giai đoạn phát triển để nhận được lời khuyên chăm sóc tốt hơn.")
		return
	}

	if garden.PlantStartDate != nil && garden.PlantDuration != nil {
		age := daysSince(now, *garden.PlantStartDate)
		if age > *garden.PlantDuration {
			report.AddAlert(models.AlertCandidate{
				Type:       models.AlertTypePlantCondition,
				Message:    fmt.Sprintf("🌿 Cây đã trưởng thành sau %d ngày", age),
				Suggestion: "Đã đến lúc thu hoạch hoặc chuẩn bị chu kỳ trồng mới.",
				Severity:   models.SeverityLow,
			})
		}
	}

	checkWateringHistory(snap, now, report)
	checkMaintenanceHistory(snap, now, report)
}

// checkWateringHistory looks at the five most recent activities for a
// watering event within the last three days.
func checkWateringHistory(snap *models.GardenSnapshot, now time.Time, report *ReportBuilder) {
	var lastWatering *time.Time
	limit := len(snap.Activities)
	if limit > 5 {
		limit = 5
	}
	for i := 0; i < limit; i++ {
		if snap.Activities[i].ActivityType == models.ActivityTypeWatering {
			t := snap.Activities[i].Timestamp
			lastWatering = &t
			break
		}
	}

	if lastWatering == nil || daysSince(now, *lastWatering) > 3 {
		agoText := "rất lâu"
		if lastWatering != nil {
			agoText = formatTimeAgo(now, *lastWatering)
		}
		report.AddIssue(models.HealthIssue{
			Category:       models.IssueCategoryMaintenance,
			Severity:       models.SeverityMedium,
			Message:        fmt.Sprintf("Chưa tưới nước từ %s.", agoText),
			Recommendation: "Tưới nước cho cây ngay. Cây cần được tưới đều đặn để phát triển khỏe mạnh.",
		}, 12)
	}
}

// checkMaintenanceHistory reminds about fertilizing, pruning and pest
// control when the last occurrence is older than its interval.
func checkMaintenanceHistory(snap *models.GardenSnapshot, now time.Time, report *ReportBuilder) {
	var lastFertilizing, lastPruning, lastPestControl *time.Time
	limit := len(snap.Activities)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		a := &snap.Activities[i]
		t := a.Timestamp
		switch a.ActivityType {
		case models.ActivityTypeFertilizing:
			if lastFertilizing == nil {
				lastFertilizing = &t
			}
		case models.ActivityTypePruning:
			if lastPruning == nil {
				lastPruning = &t
			}
		case models.ActivityTypePestControl:
			if lastPestControl == nil {
				lastPestControl = &t
			}
		}
	}

	if lastFertilizing == nil || daysSince(now, *lastFertilizing) > 30 {
		agoDays := "rất nhiều"
		if lastFertilizing != nil {
			agoDays = fmt.Sprintf("%d", daysSince(now, *lastFertilizing))
		}
		report.AddRecommendation(fmt.Sprintf("🌿 Đã %v ngày chưa bón phân. Cân nhắc bón phân hữu cơ để cây phát triển tốt.", agoDays))
	}

	if lastPruning == nil || daysSince(now, *lastPruning) > 45 {
		report.AddRecommendation("✂️ Cân nhắc tỉa cành để cây phát triển đều và thoáng khí.")
	}

	if lastPestControl == nil || daysSince(now, *lastPestControl) > 60 {
		report.AddRecommendation("🐛 Thường xuyên kiểm tra sâu bệnh và phun thuốc phòng trừ nếu cần.")
	}
}
