package handler

import (
	"context"
	"net/http"
	"strings"

	"weedx-backend/internal/model"
	"weedx-backend/internal/response"
	"weedx-backend/internal/route"
)

type fieldService interface {
	RobotStatus(ctx context.Context) (model.RobotStatus, error)
	WeedLog(ctx context.Context) (model.WeedLog, error)
	WeedSummary(ctx context.Context) ([]model.WeedCount, error)
	Detections(ctx context.Context, f model.DetectionFilter, baseURL string) ([]model.Detection, error)
	Gallery(ctx context.Context, userID int64, f model.DetectionFilter, baseURL string) ([]model.GalleryItem, error)
	Image(ctx context.Context, id int64) (model.GalleryImage, error)
	DeleteImage(ctx context.Context, id int64) error
}

// FieldHandler serves what the robot reports: its status, the weed log and
// the detection gallery.
type FieldHandler struct {
	service fieldService
}

func NewFieldHandler(service fieldService) *FieldHandler {
	return &FieldHandler{service: service}
}

func (h *FieldHandler) RobotStatus(r *http.Request) response.Envelope {
	status, err := h.service.RobotStatus(r.Context())
	if err != nil {
		return fault("Failed to fetch robot status", err)
	}

	return response.Success(status, "")
}

func (h *FieldHandler) WeedLog(r *http.Request) response.Envelope {
	log, err := h.service.WeedLog(r.Context())
	if err != nil {
		return fault("Failed to fetch weed logs", err)
	}

	return response.Success(log, "")
}

func (h *FieldHandler) WeedSummary(r *http.Request) response.Envelope {
	summary, err := h.service.WeedSummary(r.Context())
	if err != nil {
		return fault("Failed to fetch weed summary", err)
	}

	return response.Success(summary, "")
}

// Detections lists detections, filtered to one weed by ?type=.
func (h *FieldHandler) Detections(r *http.Request) response.Envelope {
	filter := model.DetectionFilter{
		WeedType: strings.TrimSpace(r.URL.Query().Get("type")),
		Limit:    queryInt(r, "limit", 0),
		Offset:   queryInt(r, "offset", 0),
	}

	detections, err := h.service.Detections(r.Context(), filter, publicBaseURL(r))
	if err != nil {
		return fault("Failed to fetch detections", err)
	}

	return response.Success(detections, "")
}

// Gallery lists the caller's detection images. start_date and end_date bound
// the day of capture.
func (h *FieldHandler) Gallery(r *http.Request) response.Envelope {
	claims, ok := currentClaims(r)
	if !ok {
		return unauthenticated()
	}

	from, err := queryDate(r, "start_date")
	if err != nil {
		return response.FromError(err)
	}
	to, err := queryDate(r, "end_date")
	if err != nil {
		return response.FromError(err)
	}

	filter := model.DetectionFilter{
		From:   from,
		To:     to,
		Limit:  queryInt(r, "limit", 0),
		Offset: queryInt(r, "offset", 0),
	}

	items, err := h.service.Gallery(r.Context(), claims.Subject, filter, publicBaseURL(r))
	if err != nil {
		return fault("Failed to fetch gallery", err)
	}

	return response.Success(items, "")
}

func (h *FieldHandler) Image(r *http.Request) response.Envelope {
	id, ok := route.IntParam(r, "id")
	if !ok {
		return response.Error("Image ID required", http.StatusBadRequest)
	}

	img, err := h.service.Image(r.Context(), id)
	if err != nil {
		return fault("Failed to fetch image", err)
	}

	return response.Success(img, "")
}

// DeleteImage removes the detection row. The image file itself is left in
// place.
func (h *FieldHandler) DeleteImage(r *http.Request) response.Envelope {
	id, ok := route.IntParam(r, "id")
	if !ok {
		return response.Error("Image ID required", http.StatusBadRequest)
	}

	if err := h.service.DeleteImage(r.Context(), id); err != nil {
		return fault("Failed to delete image", err)
	}

	return response.Success(nil, "Image deleted successfully")
}
