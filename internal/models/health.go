package models

// HealthStatus is the categorical verdict derived from the health score.
type HealthStatus string

const (
	HealthExcellent HealthStatus = "EXCELLENT"
	HealthGood      HealthStatus = "GOOD"
	HealthWarning   HealthStatus = "WARNING"
	HealthCritical  HealthStatus = "CRITICAL"
)

// IssueCategory groups health issues by their origin.
type IssueCategory string

const (
	IssueCategorySensor      IssueCategory = "SENSOR"
	IssueCategoryWeather     IssueCategory = "WEATHER"
	IssueCategoryPlant       IssueCategory = "PLANT"
	IssueCategoryMaintenance IssueCategory = "MAINTENANCE"
)

// HealthIssue is one detected problem, transient within a single check.
type HealthIssue struct {
	Category       IssueCategory `json:"category"`
	Severity       Severity      `json:"severity"`
	Message        string        `json:"message"`
	Recommendation string        `json:"recommendation"`
}

// HealthReport is the aggregate outcome of one garden health check.
// Score starts at 100 and is only ever decremented, floored at 0.
type HealthReport struct {
	GardenID        int64            `json:"garden_id"`
	OverallHealth   HealthStatus     `json:"overall_health"`
	Score           int              `json:"score"`
	Issues          []HealthIssue    `json:"issues"`
	Recommendations []string         `json:"recommendations"`
	Alerts          []AlertCandidate `json:"alerts"`
}
