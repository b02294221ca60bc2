package evaluator

import (
	"testing"

	"garden-monitor/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestReportBuilder_StartsAtFullScore(t *testing.T) {
	b := NewReportBuilder(7)

	report := b.Finalize()

	assert.Equal(t, int64(7), report.GardenID)
	assert.Equal(t, 100, report.Score)
	assert.Equal(t, models.HealthExcellent, report.OverallHealth)
	assert.Empty(t, report.Issues)
	assert.Empty(t, report.Alerts)
}

func TestReportBuilder_PenaltyAccumulation(t *testing.T) {
	b := NewReportBuilder(1)
	b.AddIssue(models.HealthIssue{Category: models.IssueCategorySensor}, 15)
	b.AddIssue(models.HealthIssue{Category: models.IssueCategoryPlant}, 10)

	report := b.Finalize()

	assert.Equal(t, 75, report.Score)
	assert.Equal(t, models.HealthGood, report.OverallHealth)
	assert.Len(t, report.Issues, 2)
}

func TestReportBuilder_ScoreClampsAtZero(t *testing.T) {
	b := NewReportBuilder(1)
	for i := 0; i < 8; i++ {
		b.AddIssue(models.HealthIssue{Category: models.IssueCategorySensor}, 15)
	}

	report := b.Finalize()

	assert.Equal(t, 0, report.Score)
	assert.Equal(t, models.HealthCritical, report.OverallHealth)
}

func TestReportBuilder_Classification(t *testing.T) {
	cases := []struct {
		name    string
		penalty int
		want    models.HealthStatus
	}{
		{"score 95 is excellent", 5, models.HealthExcellent},
		{"score 90 is excellent", 10, models.HealthExcellent},
		{"score 89 is good", 11, models.HealthGood},
		{"score 70 is good", 30, models.HealthGood},
		{"score 69 is warning", 31, models.HealthWarning},
		{"score 50 is warning", 50, models.HealthWarning},
		{"score 49 is critical", 51, models.HealthCritical},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := NewReportBuilder(1)
			b.AddIssue(models.HealthIssue{}, tc.penalty)

			report := b.Finalize()

			assert.Equal(t, tc.want, report.OverallHealth)
		})
	}
}

func TestReportBuilder_ClosingRecommendationMatchesStatus(t *testing.T) {
	b := NewReportBuilder(1)
	b.AddIssue(models.HealthIssue{}, 45)

	report := b.Finalize()

	assert.Equal(t, models.HealthWarning, report.OverallHealth)
	assert.NotEmpty(t, report.Recommendations)
	last := report.Recommendations[len(report.Recommendations)-1]
	assert.Contains(t, last, "Vườn cần được chăm sóc thêm")
}
