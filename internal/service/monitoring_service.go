package service

import (
	"context"
	"math"

	"weedx-backend/internal/model"
)

const (
	DefaultActivityEntries = 20
	maxActivityEntries     = 200
	timelineEntries        = 10
	landingAlerts          = 5
	// defaultEfficiency is reported by the metrics card until the robot
	// publishes its own figure.
	defaultEfficiency = 85.5
)

type telemetryStore interface {
	Telemetry(ctx context.Context) (model.Telemetry, bool, error)
	Activity(ctx context.Context, limit int) ([]model.ActivityEntry, error)
}

type detectionStats interface {
	Stats(ctx context.Context, userID *int64) (model.DetectionStats, error)
}

type recentAlerts interface {
	Recent(ctx context.Context, limit int) ([]model.Alert, error)
}

// MonitoringService serves the live views of the robot: the home screen and
// the monitoring tab.
type MonitoringService struct {
	robot      telemetryStore
	detections detectionStats
	sessions   sessionStore
	alerts     recentAlerts
}

func NewMonitoringService(robot telemetryStore, detections detectionStats, sessions sessionStore, alerts recentAlerts) *MonitoringService {
	return &MonitoringService{robot: robot, detections: detections, sessions: sessions, alerts: alerts}
}

// telemetry returns the latest report, or an offline robot at the origin.
func (s *MonitoringService) telemetry(ctx context.Context) (model.Telemetry, error) {
	t, ok, err := s.robot.Telemetry(ctx)
	if err != nil {
		return model.Telemetry{}, err
	}
	if !ok {
		return model.Telemetry{Status: model.OfflineRobot().Status}, nil
	}
	return t, nil
}

func (s *MonitoringService) Landing(ctx context.Context) (model.Landing, error) {
	t, err := s.telemetry(ctx)
	if err != nil {
		return model.Landing{}, err
	}

	stats, err := s.detections.Stats(ctx, nil)
	if err != nil {
		return model.Landing{}, err
	}

	totals, err := s.sessions.Totals(ctx, model.SessionFilter{Today: true})
	if err != nil {
		return model.Landing{}, err
	}

	alerts, err := s.alerts.Recent(ctx, landingAlerts)
	if err != nil {
		return model.Landing{}, err
	}

	recent := make([]model.LandingAlert, 0, len(alerts))
	for _, a := range alerts {
		recent = append(recent, model.LandingAlert{
			ID:        a.ID,
			Type:      a.Type,
			Severity:  a.Severity,
			Message:   a.Message,
			Timestamp: a.CreatedAt,
		})
	}

	return model.Landing{
		RobotStatus: t.Robot(),
		TodaysSummary: model.LandingSummary{
			WeedsDetected:     stats.Today,
			AreaCovered:       totals.AreaCovered,
			AvgConfidence:     stats.TodayAvgConfidence,
			TotalWeedsAllTime: stats.Total,
		},
		RecentAlerts: recent,
	}, nil
}

func (s *MonitoringService) Overview(ctx context.Context) (model.Monitoring, error) {
	t, err := s.telemetry(ctx)
	if err != nil {
		return model.Monitoring{}, err
	}

	timeline, err := s.robot.Activity(ctx, timelineEntries)
	if err != nil {
		return model.Monitoring{}, err
	}
	for i := range timeline {
		timeline[i].Status = ""
	}

	metrics := model.MonitoringMetrics{
		RobotMetrics: model.RobotMetrics{
			Battery:        t.Battery,
			HerbicideLevel: t.HerbicideLevel,
			Coverage:       t.Coverage,
		},
		Status:   t.Status,
		Speed:    t.Speed,
		Heading:  t.Heading,
		Activity: t.Activity,
	}
	if t.Efficiency != nil {
		metrics.Efficiency = *t.Efficiency
	}

	return model.Monitoring{Metrics: metrics, ActivityTimeline: timeline, Location: t.Location}, nil
}

func (s *MonitoringService) Metrics(ctx context.Context) (model.RobotMetrics, error) {
	t, err := s.telemetry(ctx)
	if err != nil {
		return model.RobotMetrics{}, err
	}

	metrics := model.RobotMetrics{
		Battery:        t.Battery,
		HerbicideLevel: math.Trunc(t.HerbicideLevel),
		Coverage:       t.Coverage,
		Efficiency:     defaultEfficiency,
	}
	if t.Efficiency != nil {
		metrics.Efficiency = *t.Efficiency
	}
	return metrics, nil
}

// Activity returns the robot's activity log. Entries without a status are
// reported as completed.
func (s *MonitoringService) Activity(ctx context.Context, limit int) ([]model.ActivityEntry, error) {
	switch {
	case limit <= 0:
		limit = DefaultActivityEntries
	case limit > maxActivityEntries:
		limit = maxActivityEntries
	}

	entries, err := s.robot.Activity(ctx, limit)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].Status == "" {
			entries[i].Status = "completed"
		}
	}
	return entries, nil
}

func (s *MonitoringService) Location(ctx context.Context) (model.RobotLocation, error) {
	t, err := s.telemetry(ctx)
	if err != nil {
		return model.RobotLocation{}, err
	}

	return model.RobotLocation{
		Latitude:    t.Location.Latitude,
		Longitude:   t.Location.Longitude,
		Speed:       t.Speed,
		Heading:     t.Heading,
		LastUpdated: t.UpdatedAt,
	}, nil
}
