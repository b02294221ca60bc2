package evaluator

import (
	"garden-monitor/internal/models"
)

// ReportBuilder is the shared accumulator every evaluator mutates in turn
// during one health check. The score starts at 100 and only ever goes down;
// Finalize clamps it at 0 and derives the categorical verdict.
type ReportBuilder struct {
	report models.HealthReport
}

// NewReportBuilder starts a report for one garden.
func NewReportBuilder(gardenID int64) *ReportBuilder {
	return &ReportBuilder{
		report: models.HealthReport{
			GardenID:      gardenID,
			OverallHealth: models.HealthGood,
			Score:         100,
		},
	}
}

// AddIssue records an issue and applies its score penalty.
func (b *ReportBuilder) AddIssue(issue models.HealthIssue, penalty int) {
	b.report.Issues = append(b.report.Issues, issue)
	b.report.Score -= penalty
}

// AddAlert queues an alert candidate for the dedup/emit step.
func (b *ReportBuilder) AddAlert(alert models.AlertCandidate) {
	b.report.Alerts = append(b.report.Alerts, alert)
}

// AddRecommendation appends a care recommendation.
func (b *ReportBuilder) AddRecommendation(text string) {
	b.report.Recommendations = append(b.report.Recommendations, text)
}

// Score returns the current (unclamped) score.
func (b *ReportBuilder) Score() int {
	return b.report.Score
}

// Finalize clamps the score, classifies overall health from it, appends the
// closing recommendation for the resulting category and returns the report.
func (b *ReportBuilder) Finalize() *models.HealthReport {
	if b.report.Score < 0 {
		b.report.Score = 0
	}

	switch {
	case b.report.Score >= 90:
		b.report.OverallHealth = models.HealthExcellent
	case b.report.Score >= 70:
		b.report.OverallHealth = models.HealthGood
	case b.report.Score >= 50:
		b.report.OverallHealth = models.HealthWarning
	default:
		b.report.OverallHealth = models.HealthCritical
	}

	switch b.report.OverallHealth {
	case models.HealthExcellent:
		b.AddRecommendation("🎉 Vườn của bạn đang phát triển rất tốt! Tiếp tục duy trì chế độ chăm sóc hiện tại.")
	case models.HealthGood:
		b.AddRecommendation("👍 Vườn đang trong tình trạng tốt. Chú ý một số điểm nhỏ để đạt kết quả tốt hơn.")
	case models.HealthWarning:
		b.AddRecommendation("⚠️ Vườn cần được chăm sóc thêm. Hãy xử lý các vấn đề được chỉ ra để cây phát triển tốt hơn.")
	case models.HealthCritical:
		b.AddRecommendation("🚨 Vườn đang gặp nhiều vấn đề nghiêm trọng. Cần hành động ngay lập tức để cứu cây.")
	}

	return &b.report
}
