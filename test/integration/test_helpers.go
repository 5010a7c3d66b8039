//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"weedx-backend/internal/config"
	"weedx-backend/internal/database"
	"weedx-backend/internal/handler"
	"weedx-backend/internal/metrics"
	"weedx-backend/internal/middleware"
	"weedx-backend/internal/repository"
	"weedx-backend/internal/router"
	"weedx-backend/internal/service"
	"weedx-backend/internal/token"
)

const testDatabaseEnv = "WEEDX_TEST_DATABASE_URL"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	*httptest.Server
	db *database.DB
}

// newTestDB connects to the database named by WEEDX_TEST_DATABASE_URL and
// empties every table. Tests skip when the variable is unset.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	url := os.Getenv(testDatabaseEnv)
	if url == "" {
		t.Skipf("%s not set", testDatabaseEnv)
	}

	ctx := context.Background()
	db, err := database.New(ctx, url, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.EnsureSchema(ctx))
	_, err = db.Pool.Exec(ctx, `TRUNCATE users, farms, user_settings, alerts, weed_detections, robot_status, fcm_tokens, robot_sessions, robot_activity_log RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return db
}

func newServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()

	db := newTestDB(t)
	cfg := &config.Config{
		ServerPort:         "8080",
		RequestTimeout:     10 * time.Second,
		ServerWriteTimeout: 30 * time.Second,
		JWTSecret:          "integration-secret",
		JWTIssuer:          "weedx-backend",
		JWTTTL:             time.Hour,
		CORSOrigins:        []string{"*"},
		RateLimitRPM:       1000,
		AuthRateLimitRPM:   1000,
		ActivityLogDir:     t.TempDir(),
	}
	if mutate != nil {
		mutate(cfg)
	}

	codec, err := token.NewCodec(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	require.NoError(t, err)
	activity, err := service.NewActivityService(cfg.ActivityLogDir)
	require.NoError(t, err)
	appMetrics := metrics.New()

	users := repository.NewUserRepository(db.Pool)
	authService := service.NewAuthService(users, codec).WithHashCost(4)
	profileService := service.NewProfileService(users, repository.NewSettingsRepository(db.Pool), repository.NewDeviceTokenRepository(db.Pool))
	detections := repository.NewDetectionRepository(db.Pool)
	robot := repository.NewRobotRepository(db.Pool)
	sessions := repository.NewSessionRepository(db.Pool)
	alerts := repository.NewAlertRepository(db.Pool)
	alertService := service.NewAlertService(alerts)
	fieldService := service.NewFieldService(detections, robot)
	reportService := service.NewReportService(detections, sessions)
	monitoringService := service.NewMonitoringService(robot, detections, sessions, alerts)

	authMiddleware := middleware.NewAuthMiddleware(codec,
		middleware.WithAuthObserver(appMetrics),
		middleware.WithAuthRecorder(activity),
	)

	server := httptest.NewServer(router.New(cfg, authMiddleware, router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Profile:    handler.NewProfileHandler(profileService),
		Alert:      handler.NewAlertHandler(alertService),
		Field:      handler.NewFieldHandler(fieldService),
		Report:     handler.NewReportHandler(reportService),
		Monitoring: handler.NewMonitoringHandler(monitoringService),
	}, appMetrics, activity, db))
	t.Cleanup(server.Close)

	return &testServer{Server: server, db: db}
}

// registerAndLogin signs up a farmer and returns the bearer token issued at
// login.
func (s *testServer) registerAndLogin(t *testing.T, email string) string {
	t.Helper()

	resp, body := s.call(t, http.MethodPost, "/auth/register", "", map[string]any{
		"name":         "Ravi",
		"email":        email,
		"password":     "secret1",
		"farmName":     "North Field",
		"farmLocation": "Nashik",
		"farmSize":     2.5,
		"cropTypes":    []string{"grape"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)

	resp, body = s.call(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email":         email,
		"password":      "secret1",
		"firebaseToken": "fcm-device",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &login))
	require.NotEmpty(t, login.Token)

	return login.Token
}

func (s *testServer) call(t *testing.T, method string, path string, bearer string, payload any) (*http.Response, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if payload == nil {
		reader = bytes.NewReader([]byte{})
	} else {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var body envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}
