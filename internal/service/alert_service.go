package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"weedx-backend/internal/model"
	"weedx-backend/pkg/apierror"
)

const (
	DefaultRecentAlerts = 10
	DefaultAlertPage    = 50
	maxAlertLimit       = 200
	// maxAlertPage keeps (page-1)*limit well inside the OFFSET range.
	maxAlertPage = 1_000_000
)

type alertStore interface {
	Recent(ctx context.Context, limit int) ([]model.Alert, error)
	Page(ctx context.Context, page, limit int) ([]model.Alert, int, error)
	Create(ctx context.Context, a model.Alert) (model.Alert, error)
}

type AlertService struct {
	alerts alertStore
	now    func() time.Time
}

func NewAlertService(alerts alertStore) *AlertService {
	return &AlertService{alerts: alerts, now: time.Now}
}

func (s *AlertService) Recent(ctx context.Context, limit int) ([]model.RecentAlert, error) {
	alerts, err := s.alerts.Recent(ctx, clampLimit(limit, DefaultRecentAlerts))
	if err != nil {
		return nil, err
	}

	out := make([]model.RecentAlert, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.Recent())
	}
	return out, nil
}

func (s *AlertService) All(ctx context.Context, page, limit int) (model.AlertPage, error) {
	switch {
	case page < 1:
		page = 1
	case page > maxAlertPage:
		page = maxAlertPage
	}
	limit = clampLimit(limit, DefaultAlertPage)

	alerts, total, err := s.alerts.Page(ctx, page, limit)
	if err != nil {
		return model.AlertPage{}, err
	}
	if alerts == nil {
		alerts = []model.Alert{}
	}

	return model.AlertPage{
		Alerts: alerts,
		Pagination: model.Pagination{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: (total + limit - 1) / limit,
		},
	}, nil
}

// Create stores a manually triggered alert. Missing fields fall back to a
// test alert of severity info.
func (s *AlertService) Create(ctx context.Context, req model.CreateAlertRequest) (model.CreatedAlert, error) {
	alertType := strings.TrimSpace(req.Type)
	if alertType == "" {
		alertType = "test"
	}

	severity := model.AlertSeverity(strings.TrimSpace(req.Severity))
	if severity == "" {
		severity = model.SeverityInfo
	}
	if !severity.Valid() {
		return model.CreatedAlert{}, apierror.New("Invalid severity. Must be: info, warning, or critical", http.StatusBadRequest)
	}

	message := req.Message
	if message == "" {
		message = "Test alert created at " + s.now().Format(time.DateTime)
	}

	created, err := s.alerts.Create(ctx, model.Alert{Type: alertType, Severity: severity, Message: message})
	if err != nil {
		return model.CreatedAlert{}, err
	}

	return model.CreatedAlert{
		ID:        created.ID,
		Type:      created.Type,
		Severity:  created.Severity,
		Message:   created.Message,
		CreatedAt: created.CreatedAt,
	}, nil
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxAlertLimit {
		return maxAlertLimit
	}
	return limit
}
