package evaluator

import (
	"time"

	"garden-monitor/internal/models"
)

// RuleEvaluator is one group of health checks. Evaluators are pure: they
// read the snapshot and mutate only the report accumulator.
type RuleEvaluator interface {
	Evaluate(snap *models.GardenSnapshot, now time.Time, report *ReportBuilder)
}

// HealthEvaluator runs the full rule chain over one garden snapshot.
// Evaluation order is fixed so reports are deterministic for a given
// snapshot and time.
type HealthEvaluator struct {
	rules []RuleEvaluator
}

// NewHealthEvaluator builds the standard chain: sensors, weather, plant
// lifecycle, watering schedule.
func NewHealthEvaluator() *HealthEvaluator {
	return &HealthEvaluator{
		rules: []RuleEvaluator{
			SensorEvaluator{},
			WeatherEvaluator{},
			PlantEvaluator{},
			WateringEvaluator{},
		},
	}
}

// Evaluate produces the health report for one snapshot at the given time.
func (e *HealthEvaluator) Evaluate(snap *models.GardenSnapshot, now time.Time) *models.HealthReport {
	report := NewReportBuilder(snap.Garden.ID)
	for _, rule := range e.rules {
		rule.Evaluate(snap, now, report)
	}
	return report.Finalize()
}
