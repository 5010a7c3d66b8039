package model

import "time"

type TodaySummary struct {
	WeedsDetected  int     `json:"weeds_detected"`
	AreaCovered    float64 `json:"area_covered"`
	HerbicideUsed  float64 `json:"herbicide_used"`
	OperatingHours float64 `json:"operating_hours"`
}

// SessionTotals sums the robot's work sessions.
type SessionTotals struct {
	AreaCovered    float64
	HerbicideUsed  float64
	OperatingHours float64
}

// SessionFilter selects the sessions to sum. A nil UserID covers every user.
type SessionFilter struct {
	UserID *int64
	Today  bool
}

type ReportWidgets struct {
	TotalWeeds    int     `json:"total_weeds"`
	AreaCovered   float64 `json:"area_covered"`
	HerbicideUsed float64 `json:"herbicide_used"`
	Efficiency    float64 `json:"efficiency"`
}

type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type DistributionEntry struct {
	CropType string `json:"crop_type"`
	WeedType string `json:"weed_type"`
	Count    int    `json:"count"`
}

type ReportOverview struct {
	Widgets          ReportWidgets       `json:"widgets"`
	WeedTrend        []TrendPoint        `json:"weed_trend"`
	WeedDistribution []DistributionEntry `json:"weed_distribution"`
}

type ReportExport struct {
	Format      string `json:"format"`
	Filename    string `json:"filename"`
	DownloadURL string `json:"download_url"`
	GeneratedAt string `json:"generated_at"`
}

// LandingSummary is today's work as the home screen shows it.
type LandingSummary struct {
	WeedsDetected     int     `json:"weeds_detected"`
	AreaCovered       float64 `json:"area_covered"`
	AvgConfidence     float64 `json:"avg_confidence"`
	TotalWeedsAllTime int     `json:"total_weeds_alltime"`
}

type LandingAlert struct {
	ID        int64         `json:"id"`
	Type      string        `json:"type"`
	Severity  AlertSeverity `json:"severity"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
}

type Landing struct {
	RobotStatus   RobotStatus    `json:"robot_status"`
	TodaysSummary LandingSummary `json:"todays_summary"`
	RecentAlerts  []LandingAlert `json:"recent_alerts"`
}
