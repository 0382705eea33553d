// Package sources keeps the evidence known to a session: the names of the
// most recently uploaded files and the live-feed entries ingested so far.
package sources

import (
	"strconv"
	"time"

	"github.com/ayush/smart-research-assistant/internal/models"
)

// Registry holds the evidence sources of one session. The zero value is
// ready to use. It is not safe for concurrent use; callers serialize access
// per session.
type Registry struct {
	UploadedNames []string               `json:"uploaded"`
	Feed          []models.LiveFeedEntry `json:"live_feed"`

	now func() time.Time
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// SetClock overrides the time source used for new live-feed entries.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}

// RegisterUploadedFiles replaces the uploaded-file list with names.
func (r *Registry) RegisterUploadedFiles(names []string) {
	r.UploadedNames = append([]string(nil), names...)
}

// RegisterLiveFeedEntry creates an entry stamped with the current instant and
// puts it at the front of the feed. Title and content are validated by the caller.
func (r *Registry) RegisterLiveFeedEntry(title, source, content string) models.LiveFeedEntry {
	now := time.Now()
	if r.now != nil {
		now = r.now()
	}

	id := now.UnixMilli()
	if len(r.Feed) > 0 {
		if last, err := strconv.ParseInt(r.Feed[0].ID, 10, 64); err == nil && id <= last {
			id = last + 1
		}
	}

	entry := models.LiveFeedEntry{
		ID:        strconv.FormatInt(id, 10),
		Title:     title,
		Source:    source,
		Content:   content,
		CreatedAt: now,
	}
	r.Feed = append([]models.LiveFeedEntry{entry}, r.Feed...)
	return entry
}

// Uploaded returns a copy of the uploaded-file list.
func (r *Registry) Uploaded() []string {
	return append([]string{}, r.UploadedNames...)
}

// LiveFeed returns a copy of the feed, newest first.
func (r *Registry) LiveFeed() []models.LiveFeedEntry {
	return append([]models.LiveFeedEntry{}, r.Feed...)
}
