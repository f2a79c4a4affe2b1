package models

import "time"

// PlayerState is the per-player record returned by every game endpoint
type PlayerState struct {
	Name              string  `json:"name"`
	CreditHours       int     `json:"credit_hours"`
	StressLevel       int     `json:"stress_level"`
	Understanding     int     `json:"understanding"`
	HomeworkCompleted float64 `json:"homework_completed"` // 0.25 per session, max 5
	LabPoints         int     `json:"lab_points"`
	CurrentWeek       int     `json:"current_week"`
	RiskLevel         int     `json:"risk_level"`
	CurrentGrade      string  `json:"current_grade"`
}

// StartRequest is the body of POST /api/game/start
type StartRequest struct {
	Name           string `json:"name"`
	CreditHours    *int   `json:"credit_hours"`
	CreditHoursAlt *int   `json:"creditHours"` // camelCase form used by some clients
}

// ActionRequest is the body of POST /api/game/{name}/action
type ActionRequest struct {
	Action string `json:"action"`
}

// PlayerEvent describes one state change of a player
type PlayerEvent struct {
	EventID    string      `json:"event_id"`
	Player     string      `json:"player"`
	Action     string      `json:"action"`   // "start" or one of the action names
	Sequence   int64       `json:"sequence"` // per player, increasing in apply order
	State      PlayerState `json:"state"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// ActionRecord is a row of the action ledger
type ActionRecord struct {
	ID                int64     `json:"id"`
	EventID           string    `json:"event_id"`
	Player            string    `json:"player"`
	Action            string    `json:"action"`
	Sequence          int64     `json:"sequence"`
	StressLevel       int       `json:"stress_level"`
	Understanding     int       `json:"understanding"`
	HomeworkCompleted float64   `json:"homework_completed"`
	LabPoints         int       `json:"lab_points"`
	RiskLevel         int       `json:"risk_level"`
	Grade             string    `json:"grade"`
	OccurredAt        time.Time `json:"occurred_at"`
}
