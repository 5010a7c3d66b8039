package model

import "time"

// Telemetry is the full status row the robot last reported.
type Telemetry struct {
	Status         string
	Battery        int
	Location       Location
	Speed          float64
	Heading        float64
	HerbicideLevel float64
	Coverage       float64
	Efficiency     *float64
	Activity       *string
	UpdatedAt      *time.Time
}

// Robot returns the compact status the dashboard cards use.
func (t Telemetry) Robot() RobotStatus {
	return RobotStatus{
		Status:      t.Status,
		Battery:     t.Battery,
		Location:    t.Location,
		Speed:       t.Speed,
		LastUpdated: t.UpdatedAt,
	}
}

type RobotMetrics struct {
	Battery        int     `json:"battery"`
	HerbicideLevel float64 `json:"herbicide_level"`
	Coverage       float64 `json:"coverage"`
	Efficiency     float64 `json:"efficiency"`
}

type MonitoringMetrics struct {
	RobotMetrics
	Status   string  `json:"status"`
	Speed    float64 `json:"speed"`
	Heading  float64 `json:"heading"`
	Activity *string `json:"activity"`
}

type ActivityEntry struct {
	ID          int64     `json:"id"`
	Action      string    `json:"action"`
	Description *string   `json:"description"`
	Status      string    `json:"status,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type RobotLocation struct {
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Speed       float64    `json:"speed"`
	Heading     float64    `json:"heading"`
	LastUpdated *time.Time `json:"last_updated"`
}

type Monitoring struct {
	Metrics          MonitoringMetrics `json:"metrics"`
	ActivityTimeline []ActivityEntry   `json:"activity_timeline"`
	Location         Location          `json:"location"`
}
