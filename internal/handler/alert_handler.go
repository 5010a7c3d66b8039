package handler

import (
	"context"
	"net/http"

	"weedx-backend/internal/model"
	"weedx-backend/internal/response"
)

type alertService interface {
	Recent(ctx context.Context, limit int) ([]model.RecentAlert, error)
	All(ctx context.Context, page, limit int) (model.AlertPage, error)
	Create(ctx context.Context, req model.CreateAlertRequest) (model.CreatedAlert, error)
}

type AlertHandler struct {
	service alertService
}

func NewAlertHandler(service alertService) *AlertHandler {
	return &AlertHandler{service: service}
}

func (h *AlertHandler) Recent(r *http.Request) response.Envelope {
	alerts, err := h.service.Recent(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		return fault("Failed to fetch alerts", err)
	}

	return response.Success(alerts, "")
}

func (h *AlertHandler) All(r *http.Request) response.Envelope {
	page, err := h.service.All(r.Context(), queryInt(r, "page", 1), queryInt(r, "limit", 0))
	if err != nil {
		return fault("Failed to fetch alerts", err)
	}

	return response.Success(page, "")
}

// Create stores a test alert. It is reachable with any method and rejects
// everything but POST.
func (h *AlertHandler) Create(r *http.Request) response.Envelope {
	if r.Method != http.MethodPost {
		return response.Error("Method not allowed", http.StatusMethodNotAllowed)
	}

	raw, err := readBody(r)
	if err != nil {
		return response.FromError(errInvalidBody)
	}

	var payload model.CreateAlertRequest
	if err := decodeInto(raw, &payload); err != nil {
		return response.FromError(err)
	}

	created, err := h.service.Create(r.Context(), payload)
	if err != nil {
		return fault("Failed to create alert", err)
	}

	return response.Success(created, "Alert created successfully")
}
