package evaluator

import (
	"testing"
	"time"

	"garden-monitor/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestWateringEvaluator_OverdueEntries(t *testing.T) {
	snap := &models.GardenSnapshot{
		Garden: models.Garden{ID: 1},
		WateringSchedule: []models.WateringScheduleEntry{
			{Status: models.WateringStatusPending, ScheduledAt: testNow.Add(-2 * time.Hour)},
			{Status: models.WateringStatusPending, ScheduledAt: testNow.Add(-26 * time.Hour)},
			{Status: models.WateringStatusCompleted, ScheduledAt: testNow.Add(-3 * time.Hour)},
		},
	}
	b := NewReportBuilder(1)

	WateringEvaluator{}.Evaluate(snap, testNow, b)

	report := b.Finalize()
	assert.Len(t, report.Issues, 1)
	assert.Equal(t, models.IssueCategoryMaintenance, report.Issues[0].Category)
	assert.Contains(t, report.Issues[0].Message, "Có 2 lịch tưới đã quá hạn")
	assert.Equal(t, 90, report.Score)

	assert.Len(t, report.Alerts, 1)
	assert.Equal(t, models.AlertTypeActivity, report.Alerts[0].Type)
	assert.Contains(t, report.Alerts[0].Message, "2 lịch tưới quá hạn")
}

func TestWateringEvaluator_CompletedAndSkippedIgnored(t *testing.T) {
	snap := &models.GardenSnapshot{
		Garden: models.Garden{ID: 1},
		WateringSchedule: []models.WateringScheduleEntry{
			{Status: models.WateringStatusCompleted, ScheduledAt: testNow.Add(-2 * time.Hour)},
			{Status: models.WateringStatusSkipped, ScheduledAt: testNow.Add(-1 * time.Hour)},
		},
	}
	b := NewReportBuilder(1)

	WateringEvaluator{}.Evaluate(snap, testNow, b)

	report := b.Finalize()
	assert.Empty(t, report.Issues)
	assert.Empty(t, report.Alerts)
}

func TestWateringEvaluator_ImminentWatering(t *testing.T) {
	snap := &models.GardenSnapshot{
		Garden: models.Garden{ID: 1},
		WateringSchedule: []models.WateringScheduleEntry{
			{Status: models.WateringStatusPending, ScheduledAt: testNow.Add(90 * time.Minute)},
		},
	}
	b := NewReportBuilder(1)

	WateringEvaluator{}.Evaluate(snap, testNow, b)

	report := b.Finalize()
	assert.Empty(t, report.Issues)
	assert.Len(t, report.Alerts, 1)
	assert.Equal(t, models.AlertTypeMaintenance, report.Alerts[0].Type)
	assert.Equal(t, models.SeverityLow, report.Alerts[0].Severity)
	assert.Contains(t, report.Alerts[0].Message, "(2h nữa)")
	assert.Equal(t, 100, report.Score)
}

func TestWateringEvaluator_EarliestUpcomingWins(t *testing.T) {
	// The list is scheduled_at descending; the imminent check still finds
	// the soonest entry.
	snap := &models.GardenSnapshot{
		Garden: models.Garden{ID: 1},
		WateringSchedule: []models.WateringScheduleEntry{
			{Status: models.WateringStatusPending, ScheduledAt: testNow.Add(30 * time.Hour)},
			{Status: models.WateringStatusPending, ScheduledAt: testNow.Add(6 * time.Hour)},
			{Status: models.WateringStatusPending, ScheduledAt: testNow.Add(1 * time.Hour)},
		},
	}
	b := NewReportBuilder(1)

	WateringEvaluator{}.Evaluate(snap, testNow, b)

	report := b.Finalize()
	assert.Len(t, report.Alerts, 1)
	assert.Contains(t, report.Alerts[0].Message, "(1h nữa)")
}

func TestWateringEvaluator_DistantWateringStaysQuiet(t *testing.T) {
	snap := &models.GardenSnapshot{
		Garden: models.Garden{ID: 1},
		WateringSchedule: []models.WateringScheduleEntry{
			{Status: models.WateringStatusPending, ScheduledAt: testNow.Add(8 * time.Hour)},
		},
	}
	b := NewReportBuilder(1)

	WateringEvaluator{}.Evaluate(snap, testNow, b)

	assert.Empty(t, b.Finalize().Alerts)
}
