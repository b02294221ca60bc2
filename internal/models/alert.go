package models

import "time"

// Severity ranks how urgent an issue or alert is.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Rank returns a comparable ordering (LOW < MEDIUM < HIGH < CRITICAL).
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	default:
		return -1
	}
}

// AlertType categorizes a user-facing alert.
type AlertType string

const (
	AlertTypeWeather        AlertType = "WEATHER"
	AlertTypeSensorError    AlertType = "SENSOR_ERROR"
	AlertTypePlantCondition AlertType = "PLANT_CONDITION"
	AlertTypeActivity       AlertType = "ACTIVITY"
	AlertTypeMaintenance    AlertType = "MAINTENANCE"
)

// AlertStatus is the lifecycle state of a persisted alert.
type AlertStatus string

const (
	AlertStatusPending    AlertStatus = "PENDING"
	AlertStatusInProgress AlertStatus = "IN_PROGRESS"
	AlertStatusResolved   AlertStatus = "RESOLVED"
)

// Alert is a durable user-facing notification (alerts table).
type Alert struct {
	ID         int64       `json:"id" db:"id"`
	GardenID   int64       `json:"garden_id" db:"garden_id"`
	UserID     int64       `json:"user_id" db:"user_id"`
	Type       AlertType   `json:"type" db:"type"`
	Message    string      `json:"message" db:"message"`
	Suggestion string      `json:"suggestion" db:"suggestion"`
	Severity   Severity    `json:"severity" db:"severity"`
	Status     AlertStatus `json:"status" db:"status"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}

// AlertCandidate is an alert produced during one health check, before
// deduplication decides whether it is persisted.
type AlertCandidate struct {
	Type       AlertType `json:"type"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion"`
	Severity   Severity  `json:"severity"`
}
