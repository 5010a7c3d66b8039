package service

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weedx-backend/internal/model"
)

func readActivity(t *testing.T, path string) []model.LogEntry {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []model.LogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry model.LogEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	require.NoError(t, scanner.Err())
	return entries
}

func TestActivityService_WritesDailyFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	svc, err := NewActivityService(dir)
	require.NoError(t, err)

	day := time.Date(2026, 5, 2, 8, 15, 0, 0, time.UTC)
	svc.now = func() time.Time { return day }

	svc.LogRequest("alerts/all", "GET")
	svc.LogAuth("alerts/all", 7, true)
	svc.LogResult("alerts/all", 200, "")
	svc.LogAuth("profile", 0, false)
	svc.LogResult("profile", 401, "Token expired")

	path := filepath.Join(dir, "api_2026-05-02.log")
	assert.Equal(t, path, svc.Path(day))

	entries := readActivity(t, path)
	require.Len(t, entries, 5)

	assert.Equal(t, model.ActivityRequest, entries[0].Kind)
	assert.Equal(t, "GET", entries[0].Method)
	assert.Equal(t, "2026-05-02 08:15:00", entries[0].Timestamp)

	assert.Equal(t, model.ActivityAuth, entries[1].Kind)
	require.NotNil(t, entries[1].UserID)
	assert.Equal(t, int64(7), *entries[1].UserID)

	assert.Equal(t, model.ActivitySuccess, entries[2].Kind)

	assert.Nil(t, entries[3].UserID)
	require.NotNil(t, entries[3].Valid)
	assert.False(t, *entries[3].Valid)

	assert.Equal(t, model.ActivityError, entries[4].Kind)
	assert.Equal(t, "Token expired", entries[4].Message)
}

func TestActivityService_NilIsNoop(t *testing.T) {
	var svc *ActivityService
	assert.NotPanics(t, func() { svc.LogRequest("profile", "GET") })
}
