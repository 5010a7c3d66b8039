package router

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"weedx-backend/internal/config"
	"weedx-backend/internal/handler"
	"weedx-backend/internal/metrics"
	"weedx-backend/internal/middleware"
	"weedx-backend/internal/response"
	"weedx-backend/internal/route"
)

type Handlers struct {
	Auth       *handler.AuthHandler
	Profile    *handler.ProfileHandler
	Alert      *handler.AlertHandler
	Field      *handler.FieldHandler
	Report     *handler.ReportHandler
	Monitoring *handler.MonitoringHandler
}

type activityLog interface {
	LogRequest(endpoint, method string)
	LogResult(endpoint string, status int, message string)
}

type healthChecker interface {
	Health(ctx context.Context) error
}

// New builds the HTTP entry point. chi serves the operational endpoints and
// hands every other request to the API route table.
func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	handlers Handlers,
	appMetrics *metrics.Metrics,
	activity activityLog,
	db healthChecker,
) http.Handler {
	table := Table(cfg.RoutePrefix, authMiddleware, handlers)

	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM).
		ClassifyAuth(func(r *http.Request) bool {
			return strings.HasPrefix(strings.ToLower(table.Path(r)), "auth/")
		})

	var api http.Handler = middleware.Timeout(cfg.RequestTimeout)(table)
	if activity != nil {
		api = middleware.Activity(activity, table.Path)(api)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	if appMetrics != nil {
		r.Use(appMetrics.Middleware)
	}
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if db != nil {
			if err := db.Health(req.Context()); err != nil {
				slog.Warn("health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unavailable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if appMetrics != nil {
		r.Method(http.MethodGet, "/metrics", appMetrics.Handler())
	}

	r.NotFound(api.ServeHTTP)
	r.MethodNotAllowed(api.ServeHTTP)

	return r
}

// Table registers the API endpoints in precedence order.
func Table(prefix string, authMiddleware *middleware.AuthMiddleware, h Handlers) *route.Table {
	t := route.New(prefix, authMiddleware.RequireAuth)

	t.HandlePublic(http.MethodPost, "auth/login", response.HandlerFunc(h.Auth.Login))
	t.HandlePublic(route.Any, "auth/register", response.HandlerFunc(h.Auth.Register))
	t.Handle(http.MethodPost, "auth/logout", response.HandlerFunc(h.Auth.Logout))
	t.Handle(http.MethodPost, "auth/refresh", response.HandlerFunc(h.Auth.Refresh))

	t.Handle(http.MethodGet, "landing", response.HandlerFunc(h.Monitoring.Landing))
	t.Handle(http.MethodGet, "robot/status", response.HandlerFunc(h.Field.RobotStatus))
	t.Handle(http.MethodGet, "summary/today", response.HandlerFunc(h.Report.Today))
	t.Handle(http.MethodGet, "alerts/recent", response.HandlerFunc(h.Alert.Recent))
	t.Handle(http.MethodGet, "alerts/all", response.HandlerFunc(h.Alert.All))
	t.HandlePublic(route.Any, "alerts/create", response.HandlerFunc(h.Alert.Create))

	t.Handle(http.MethodGet, "monitoring", response.HandlerFunc(h.Monitoring.Overview))
	t.Handle(http.MethodGet, "monitoring/metrics", response.HandlerFunc(h.Monitoring.Metrics))
	t.Handle(http.MethodGet, "monitoring/activity", response.HandlerFunc(h.Monitoring.Activity))
	t.Handle(http.MethodGet, "monitoring/location", response.HandlerFunc(h.Monitoring.Location))

	t.Handle(http.MethodGet, "weed-logs", response.HandlerFunc(h.Field.WeedLog))
	t.Handle(http.MethodGet, "weed-logs/summary", response.HandlerFunc(h.Field.WeedSummary))
	t.Handle(http.MethodGet, "weed-logs/detections", response.HandlerFunc(h.Field.Detections))

	t.Handle(http.MethodGet, "reports", response.HandlerFunc(h.Report.Overview))
	t.Handle(http.MethodGet, "reports/widgets", response.HandlerFunc(h.Report.Widgets))
	t.Handle(http.MethodGet, "reports/weed-trend", response.HandlerFunc(h.Report.WeedTrend))
	t.Handle(http.MethodGet, "reports/weed-distribution", response.HandlerFunc(h.Report.WeedDistribution))
	t.Handle(http.MethodGet, "reports/export", response.HandlerFunc(h.Report.Export))

	t.Handle(http.MethodGet, "gallery", response.HandlerFunc(h.Field.Gallery))
	t.Handle(http.MethodGet, "gallery/{id}", response.HandlerFunc(h.Field.Image))
	t.Handle(http.MethodDelete, "gallery/{id}", response.HandlerFunc(h.Field.DeleteImage))

	t.Handle(http.MethodGet, "profile", response.HandlerFunc(h.Profile.Profile))
	t.Handle(http.MethodPut, "profile", response.HandlerFunc(h.Profile.UpdateProfile))
	t.Handle(http.MethodGet, "profile/farm", response.HandlerFunc(h.Profile.Farm))
	t.Handle(http.MethodPut, "profile/farm", response.HandlerFunc(h.Profile.UpdateFarm))
	t.Handle(http.MethodGet, "profile/settings", response.HandlerFunc(h.Profile.Settings))
	t.Handle(http.MethodPut, "profile/settings", response.HandlerFunc(h.Profile.UpdateSettings))
	t.Handle(http.MethodPost, "profile/fcm-token", response.HandlerFunc(h.Profile.RegisterDevice))
	t.Handle(http.MethodDelete, "profile/fcm-token", response.HandlerFunc(h.Profile.DeactivateDevice))

	return t
}
