package model

// Activity entry kinds.
const (
	ActivityRequest = "request"
	ActivitySuccess = "success"
	ActivityError   = "error"
	ActivityAuth    = "auth"
)

type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Kind      string `json:"kind"`
	Endpoint  string `json:"endpoint"`
	Method    string `json:"method,omitempty"`
	Status    int    `json:"status,omitempty"`
	Message   string `json:"message,omitempty"`
	UserID    *int64 `json:"user_id,omitempty"`
	Valid     *bool  `json:"valid,omitempty"`
}
