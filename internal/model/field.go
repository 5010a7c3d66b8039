package model

import "time"

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

func (s AlertSeverity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	default:
		return false
	}
}

type Alert struct {
	ID        int64         `json:"id"`
	Type      string        `json:"type"`
	Severity  AlertSeverity `json:"severity"`
	Message   string        `json:"message"`
	IsRead    bool          `json:"is_read"`
	CreatedAt time.Time     `json:"timestamp"`
}

// RecentAlert is the compact shape served by the dashboard feed.
type RecentAlert struct {
	ID        int64         `json:"id"`
	Type      string        `json:"type"`
	Severity  AlertSeverity `json:"severity"`
	Message   string        `json:"message"`
	Read      bool          `json:"read"`
	Timestamp time.Time     `json:"timestamp"`
}

func (a Alert) Recent() RecentAlert {
	return RecentAlert{
		ID:        a.ID,
		Type:      a.Type,
		Severity:  a.Severity,
		Message:   a.Message,
		Read:      a.IsRead,
		Timestamp: a.CreatedAt,
	}
}

type CreatedAlert struct {
	ID        int64         `json:"id"`
	Type      string        `json:"type"`
	Severity  AlertSeverity `json:"severity"`
	Message   string        `json:"message"`
	CreatedAt time.Time     `json:"created_at"`
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

type AlertPage struct {
	Alerts     []Alert    `json:"alerts"`
	Pagination Pagination `json:"pagination"`
}

type Detection struct {
	ID              int64     `json:"id"`
	UserID          *int64    `json:"-"`
	WeedType        string    `json:"weed_type"`
	Confidence      float64   `json:"confidence"`
	Location        Location  `json:"location"`
	ImagePath       *string   `json:"image_url"`
	ImageData       *string   `json:"-"`
	ImageMimeType   *string   `json:"-"`
	TreatmentAction *string   `json:"-"`
	CropType        *string   `json:"crop_type,omitempty"`
	DetectedAt      time.Time `json:"detected_at"`
}

// DetectionFilter narrows a detection listing. Zero values do not filter;
// a zero Limit lists everything.
type DetectionFilter struct {
	UserID   *int64
	WeedType string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// DetectionStats aggregates detections over all time and over today.
type DetectionStats struct {
	Total              int
	Today              int
	TodayAvgConfidence float64
}

// GalleryItem is a detection as the gallery screen shows it.
type GalleryItem struct {
	ID           int64     `json:"id"`
	URL          *string   `json:"url"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	ImageURL     *string   `json:"image_url"`
	HasImage     bool      `json:"has_image"`
	WeedType     string    `json:"weed_type"`
	CropType     *string   `json:"crop_type"`
	Confidence   float64   `json:"confidence"`
	Location     Location  `json:"location"`
	CapturedAt   time.Time `json:"captured_at"`
}

type WeedCount struct {
	WeedType string `json:"weed_type"`
	Count    int    `json:"count"`
}

type WeedLog struct {
	Summary    []WeedCount `json:"summary"`
	Detections []Detection `json:"detections"`
}

type RobotStatus struct {
	Status      string     `json:"status"`
	Battery     int        `json:"battery"`
	Location    Location   `json:"location"`
	Speed       float64    `json:"speed"`
	Activity    *string    `json:"activity,omitempty"`
	LastUpdated *time.Time `json:"last_updated"`
}

// OfflineRobot is reported when the robot has never published a status.
func OfflineRobot() RobotStatus {
	return RobotStatus{Status: "offline"}
}
