// Package session holds the per-user state of the assistant: evidence
// sources, the usage ledger, the latest report and archived exports.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ayush/smart-research-assistant/internal/billing"
	"github.com/ayush/smart-research-assistant/internal/models"
	"github.com/ayush/smart-research-assistant/internal/sources"
)

const (
	DefaultTTL = 24 * time.Hour
	CookieName = "session_id"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Session is the state of one user session. It is not safe for concurrent
// use; requests on the same session are serialized with a Locker.
type Session struct {
	ID         string                  `json:"id"`
	CreatedAt  time.Time               `json:"created_at"`
	Sources    *sources.Registry       `json:"sources"`
	Ledger     *billing.Ledger         `json:"ledger"`
	LastReport *models.GeneratedReport `json:"last_report,omitempty"`
	Exports    []string                `json:"exports,omitempty"`
}

// New starts a session with initialCredits.
func New(initialCredits float64) *Session {
	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Sources:   sources.NewRegistry(),
		Ledger:    billing.NewLedger(initialCredits),
	}
}

// View returns the JSON representation served to clients.
func (s *Session) View() models.SessionView {
	return models.SessionView{
		ID:              s.ID,
		CreatedAt:       s.CreatedAt,
		Usage:           s.Ledger.Usage(),
		UploadedSources: s.Sources.Uploaded(),
		LiveFeed:        s.Sources.LiveFeed(),
		LastReport:      s.LastReport,
	}
}

// AddExport records an archived object key once.
func (s *Session) AddExport(key string) {
	for _, k := range s.Exports {
		if k == key {
			return
		}
	}
	s.Exports = append(s.Exports, key)
}

// Store persists sessions between requests.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
