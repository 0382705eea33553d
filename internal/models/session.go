package models

import "time"

// SessionView is the JSON body for GET /api/session.
type SessionView struct {
	ID              string           `json:"id"`
	CreatedAt       time.Time        `json:"created_at"`
	Usage           Usage            `json:"usage"`
	UploadedSources []string         `json:"uploaded_sources"`
	LiveFeed        []LiveFeedEntry  `json:"live_feed"`
	LastReport      *GeneratedReport `json:"last_report"`
}
