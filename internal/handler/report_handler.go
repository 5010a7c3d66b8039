package handler

import (
	"context"
	"net/http"

	"weedx-backend/internal/model"
	"weedx-backend/internal/response"
)

type reportService interface {
	Today(ctx context.Context, userID int64) (model.TodaySummary, error)
	Overview(ctx context.Context, userID int64) (model.ReportOverview, error)
	Widgets(ctx context.Context) (model.ReportWidgets, error)
	WeedTrend(ctx context.Context, days int) ([]model.TrendPoint, error)
	WeedDistribution(ctx context.Context) ([]model.DistributionEntry, error)
	Export(ctx context.Context, userID int64, format string) (model.ReportExport, error)
}

type ReportHandler struct {
	service reportService
}

func NewReportHandler(service reportService) *ReportHandler {
	return &ReportHandler{service: service}
}

func (h *ReportHandler) Today(r *http.Request) response.Envelope {
	claims, ok := currentClaims(r)
	if !ok {
		return unauthenticated()
	}

	summary, err := h.service.Today(r.Context(), claims.Subject)
	if err != nil {
		return fault("Failed to fetch summary", err)
	}

	return response.Success(summary, "")
}

func (h *ReportHandler) Overview(r *http.Request) response.Envelope {
	claims, ok := currentClaims(r)
	if !ok {
		return unauthenticated()
	}

	overview, err := h.service.Overview(r.Context(), claims.Subject)
	if err != nil {
		return fault("Failed to fetch reports", err)
	}

	return response.Success(overview, "")
}

func (h *ReportHandler) Widgets(r *http.Request) response.Envelope {
	widgets, err := h.service.Widgets(r.Context())
	if err != nil {
		return fault("Failed to fetch widgets", err)
	}

	return response.Success(widgets, "")
}

func (h *ReportHandler) WeedTrend(r *http.Request) response.Envelope {
	trend, err := h.service.WeedTrend(r.Context(), queryInt(r, "days", 0))
	if err != nil {
		return fault("Failed to fetch weed trend", err)
	}

	return response.Success(trend, "")
}

func (h *ReportHandler) WeedDistribution(r *http.Request) response.Envelope {
	distribution, err := h.service.WeedDistribution(r.Context())
	if err != nil {
		return fault("Failed to fetch weed distribution", err)
	}

	return response.Success(distribution, "")
}

func (h *ReportHandler) Export(r *http.Request) response.Envelope {
	claims, ok := currentClaims(r)
	if !ok {
		return unauthenticated()
	}

	export, err := h.service.Export(r.Context(), claims.Subject, r.URL.Query().Get("format"))
	if err != nil {
		return fault("Failed to generate report", err)
	}

	return response.Success(export, "Report generated successfully")
}
