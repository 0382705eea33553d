package models

import "time"

// DisplayTimeFormat is the timestamp layout shown next to sources and billing records.
const DisplayTimeFormat = "2006-01-02 15:04:05"

// Origin tells where an evidence source came from.
type Origin string

const (
	OriginUploadedFile  Origin = "uploaded_file"
	OriginLiveFeedEntry Origin = "live_feed_entry"
)

// EvidenceSource is one numbered candidate source for a single report.
type EvidenceSource struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Origin      Origin `json:"origin"`
}

// LiveFeedEntry is a manually ingested snippet simulating an external update.
type LiveFeedEntry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Timestamp renders CreatedAt the way it appears in source descriptions.
func (e LiveFeedEntry) Timestamp() string {
	return e.CreatedAt.Format(DisplayTimeFormat)
}

// SourceStrategy records how a report's source list was derived.
type SourceStrategy string

const (
	StrategyExplicit   SourceStrategy = "explicit"
	StrategyCandidates SourceStrategy = "candidates"
	StrategyNone       SourceStrategy = "none"
)

// GeneratedReport is the latest report produced in a session.
type GeneratedReport struct {
	Question    string         `json:"question"`
	Report      string         `json:"report"`
	Sources     []string       `json:"sources"`
	Strategy    SourceStrategy `json:"strategy"`
	Takeaways   []string       `json:"takeaways"`
	Cited       []int          `json:"cited"`
	Backend     string         `json:"backend"`
	Fallback    bool           `json:"fallback"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// BillingRecord is one append-only entry of the mock billing log.
type BillingRecord struct {
	Question  string    `json:"question"`
	Cost      float64   `json:"cost"`
	Timestamp time.Time `json:"timestamp"`
}

// Usage is a read-only snapshot of the session's usage ledger.
type Usage struct {
	Questions        int     `json:"questions"`
	Reports          int     `json:"reports"`
	CreditsUsed      float64 `json:"credits_used"`
	CreditsRemaining float64 `json:"credits_remaining"`
	InitialCredits   float64 `json:"initial_credits"`
}

// PromptPayload is what the composer hands to the generation backend.
type PromptPayload struct {
	Question string `json:"question"`
	FileText string `json:"file_text"`
	LiveText string `json:"live_text"`
	System   string `json:"system"`
	User     string `json:"user"`
}

// LiveFeedRequest is the JSON body for POST /api/live-feed.
type LiveFeedRequest struct {
	Title   string `json:"title"`
	Source  string `json:"source"`
	Content string `json:"content"`
}

// ReportResponse is the JSON body returned by POST /api/reports.
type ReportResponse struct {
	GeneratedReport
	NoSourcesMessage string        `json:"no_sources_message,omitempty"`
	Warnings         []string      `json:"warnings"`
	Usage            Usage         `json:"usage"`
	Billing          BillingRecord `json:"billing"`
}
