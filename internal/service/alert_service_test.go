package service

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weedx-backend/internal/model"
)

func seededAlerts(n int) *fakeAlerts {
	store := &fakeAlerts{clock: testNow}
	for i := n; i >= 1; i-- {
		store.rows = append(store.rows, model.Alert{
			ID:        int64(i),
			Type:      "weed_detected",
			Severity:  model.SeverityWarning,
			Message:   fmt.Sprintf("alert %d", i),
			IsRead:    i%2 == 0,
			CreatedAt: testNow.Add(time.Duration(i) * time.Minute),
		})
	}
	return store
}

func TestAlertService_RecentDefaultsAndShape(t *testing.T) {
	store := seededAlerts(15)
	svc := NewAlertService(store)

	alerts, err := svc.Recent(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, DefaultRecentAlerts, store.lastLimit)
	require.Len(t, alerts, 10)
	assert.Equal(t, int64(15), alerts[0].ID)
	assert.False(t, alerts[0].Read)
	assert.True(t, alerts[1].Read)
}

func TestAlertService_RecentCapsLimit(t *testing.T) {
	store := seededAlerts(1)
	_, err := NewAlertService(store).Recent(context.Background(), 5000)
	require.NoError(t, err)
	assert.Equal(t, maxAlertLimit, store.lastLimit)
}

func TestAlertService_AllPagination(t *testing.T) {
	store := seededAlerts(7)
	svc := NewAlertService(store)

	page, err := svc.All(context.Background(), 2, 3)
	require.NoError(t, err)

	assert.Equal(t, model.Pagination{Total: 7, Page: 2, Limit: 3, TotalPages: 3}, page.Pagination)
	require.Len(t, page.Alerts, 3)
	assert.Equal(t, int64(4), page.Alerts[0].ID)
}

func TestAlertService_AllDefaults(t *testing.T) {
	store := &fakeAlerts{}
	page, err := NewAlertService(store).All(context.Background(), -1, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, store.lastPage)
	assert.Equal(t, DefaultAlertPage, store.lastLimit)
	assert.Equal(t, 0, page.Pagination.TotalPages)
	assert.NotNil(t, page.Alerts)
}

func TestAlertService_AllClampsHugePage(t *testing.T) {
	store := seededAlerts(3)
	page, err := NewAlertService(store).All(context.Background(), math.MaxInt, maxAlertLimit)
	require.NoError(t, err)

	assert.Equal(t, maxAlertPage, store.lastPage)
	assert.Positive(t, (store.lastPage-1)*store.lastLimit)
	assert.Equal(t, maxAlertPage, page.Pagination.Page)
	assert.Empty(t, page.Alerts)
}

func TestAlertService_CreateDefaults(t *testing.T) {
	store := &fakeAlerts{clock: testNow}
	svc := NewAlertService(store)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }

	created, err := svc.Create(context.Background(), model.CreateAlertRequest{})
	require.NoError(t, err)

	assert.Equal(t, "test", created.Type)
	assert.Equal(t, model.SeverityInfo, created.Severity)
	assert.Equal(t, "Test alert created at 2026-03-14 09:30:00", created.Message)
	assert.Equal(t, testNow, created.CreatedAt)
}

func TestAlertService_CreateRejectsSeverity(t *testing.T) {
	store := &fakeAlerts{}
	_, err := NewAlertService(store).Create(context.Background(), model.CreateAlertRequest{Severity: "urgent"})

	requireAPIError(t, err, http.StatusBadRequest, "Invalid severity. Must be: info, warning, or critical")
	assert.Empty(t, store.rows)
}
