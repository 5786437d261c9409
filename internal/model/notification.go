package model

import (
	"encoding/json"
	"time"
)

// NotificationItem is an in-app announcement.
type NotificationItem struct {
	ID        string     `json:"_id"`
	Title     string     `json:"title"`
	Subtitle  string     `json:"subtitle,omitempty"`
	Message   string     `json:"message,omitempty"`
	Date      string     `json:"date,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	Thumbnail string     `json:"thumbnail,omitempty"`
}

// AcademyState reports whether the user belongs to an academy.
type AcademyState struct {
	Enrolled bool            `json:"enrolled"`
	Academy  json.RawMessage `json:"academy,omitempty"`
	Reason   string          `json:"reason,omitempty"`
}
