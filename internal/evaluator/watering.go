package evaluator

import (
	"fmt"
	"math"
	"time"

	"garden-monitor/internal/models"
)

// WateringEvaluator checks pending watering schedule entries: overdue ones
// penalize the score, and an imminent one (within two hours) raises a
// heads-up alert.
type WateringEvaluator struct{}

// Evaluate runs the schedule checks against the report accumulator.
func (WateringEvaluator) Evaluate(snap *models.GardenSnapshot, now time.Time, report *ReportBuilder) {
	var overdue, upcoming []models.WateringScheduleEntry
	for _, entry := range snap.WateringSchedule {
		if entry.Status != models.WateringStatusPending {
			continue
		}
		if entry.ScheduledAt.Before(now) {
			overdue = append(overdue, entry)
		} else {
			upcoming = append(upcoming, entry)
		}
	}

	if len(overdue) > 0 {
		report.AddIssue(models.HealthIssue{
			Category:       models.IssueCategoryMaintenance,
			Severity:       models.SeverityMedium,
			Message:        fmt.Sprintf("Có %d lịch tưới đã quá hạn.", len(overdue)),
			Recommendation: "Hoàn thành các lịch tưới đã lên kế hoạch hoặc cập nhật lại lịch cho phù hợp.",
		}, 10)

		report.AddAlert(models.AlertCandidate{
			Type:       models.AlertTypeActivity,
			Message:    fmt.Sprintf("⏰ Quên tưới nước - %d lịch tưới quá hạn", len(overdue)),
			Suggestion: "Tưới nước cho cây ngay và đánh dấu hoàn thành lịch tưới.",
			Severity:   models.SeverityMedium,
		})
	}

	if len(upcoming) == 0 {
		return
	}

	earliest := upcoming[0]
	for _, entry := range upcoming[1:] {
		if entry.ScheduledAt.Before(earliest.ScheduledAt) {
			earliest = entry
		}
	}

	hoursUntil := int(math.Ceil(earliest.ScheduledAt.Sub(now).Hours()))
	if hoursUntil <= 2 {
		report.AddAlert(models.AlertCandidate{
			Type:       models.AlertTypeMaintenance,
			Message:    fmt.Sprintf("💧 Sắp đến giờ tưới nước (%dh nữa)", hoursUntil),
			Suggestion: "Chuẩn bị tưới nước cho vườn theo lịch đã đặt.",
			Severity:   models.SeverityLow,
		})
	}
}
