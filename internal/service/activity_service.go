package service

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"weedx-backend/internal/model"
)

// ActivityService appends one JSON line per API event to a file per day,
// named api_YYYY-MM-DD.log inside its directory.
type ActivityService struct {
	dir string
	now func() time.Time
	mu  sync.Mutex
}

func NewActivityService(dir string) (*ActivityService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare activity log directory: %w", err)
	}

	return &ActivityService{dir: dir, now: time.Now}, nil
}

func (s *ActivityService) LogRequest(endpoint, method string) {
	s.append(model.LogEntry{Kind: model.ActivityRequest, Endpoint: endpoint, Method: method})
}

// LogResult records how a request ended. Statuses of 400 and above are
// logged as errors.
func (s *ActivityService) LogResult(endpoint string, status int, message string) {
	kind := model.ActivitySuccess
	if status >= http.StatusBadRequest {
		kind = model.ActivityError
	}
	s.append(model.LogEntry{Kind: kind, Endpoint: endpoint, Status: status, Message: message})
}

// LogAuth records a bearer check. userID is omitted when the token was not
// accepted.
func (s *ActivityService) LogAuth(endpoint string, userID int64, ok bool) {
	entry := model.LogEntry{Kind: model.ActivityAuth, Endpoint: endpoint, Valid: &ok}
	if ok {
		entry.UserID = &userID
	}
	s.append(entry)
}

// Path returns the log file that receives entries written at t.
func (s *ActivityService) Path(t time.Time) string {
	return filepath.Join(s.dir, "api_"+t.Format(time.DateOnly)+".log")
}

func (s *ActivityService) append(entry model.LogEntry) {
	if s == nil {
		return
	}

	now := s.now()
	entry.Timestamp = now.Format(time.DateTime)

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.Path(now), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Warn("open activity log failed", "error", err)
		return
	}
	defer f.Close()

	_, _ = f.Write(append(data, '\n'))
}
