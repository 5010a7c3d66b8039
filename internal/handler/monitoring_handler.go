package handler

import (
	"context"
	"net/http"

	"weedx-backend/internal/model"
	"weedx-backend/internal/response"
)

type monitoringService interface {
	Landing(ctx context.Context) (model.Landing, error)
	Overview(ctx context.Context) (model.Monitoring, error)
	Metrics(ctx context.Context) (model.RobotMetrics, error)
	Activity(ctx context.Context, limit int) ([]model.ActivityEntry, error)
	Location(ctx context.Context) (model.RobotLocation, error)
}

// MonitoringHandler serves the live robot views: the home screen and the
// monitoring tab.
type MonitoringHandler struct {
	service monitoringService
}

func NewMonitoringHandler(service monitoringService) *MonitoringHandler {
	return &MonitoringHandler{service: service}
}

func (h *MonitoringHandler) Landing(r *http.Request) response.Envelope {
	landing, err := h.service.Landing(r.Context())
	if err != nil {
		return fault("Failed to fetch landing data", err)
	}

	return response.Success(landing, "")
}

func (h *MonitoringHandler) Overview(r *http.Request) response.Envelope {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		return fault("Failed to fetch monitoring data", err)
	}

	return response.Success(overview, "")
}

func (h *MonitoringHandler) Metrics(r *http.Request) response.Envelope {
	metrics, err := h.service.Metrics(r.Context())
	if err != nil {
		return fault("Failed to fetch metrics", err)
	}

	return response.Success(metrics, "")
}

func (h *MonitoringHandler) Activity(r *http.Request) response.Envelope {
	entries, err := h.service.Activity(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		return fault("Failed to fetch activity", err)
	}

	return response.Success(entries, "")
}

func (h *MonitoringHandler) Location(r *http.Request) response.Envelope {
	location, err := h.service.Location(r.Context())
	if err != nil {
		return fault("Failed to fetch location", err)
	}

	return response.Success(location, "")
}
