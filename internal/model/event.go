package model

import (
	"database/sql"
	"time"
)

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryAuth    = "auth"
	EventCategoryAPI     = "api"
	EventCategoryPayment = "payment"
	EventCategoryCache   = "cache"
	EventCategorySystem  = "system"
)

// Event represents a local event log entry.
type Event struct {
	ID         int64
	Level      string
	Category   string
	Message    string
	Actor      sql.NullString // Admin email, when known
	IPAddress  string
	RequestURL string
	Metadata   string // JSON string
	CreatedAt  time.Time
}
