package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Archive removes exported objects when their session goes away.
type Archive interface {
	Remove(ctx context.Context, key string) error
}

// Manager creates, loads and tears down sessions on top of a Store.
type Manager struct {
	store          Store
	locks          *Locker
	archive        Archive
	initialCredits float64
	ttl            time.Duration
	log            *zap.Logger
}

// NewManager returns a Manager. archive may be nil.
func NewManager(store Store, initialCredits float64, ttl time.Duration, archive Archive, log *zap.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		store:          store,
		locks:          NewLocker(),
		archive:        archive,
		initialCredits: initialCredits,
		ttl:            ttl,
		log:            log,
	}
}

// TTL is the idle lifetime of a session.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Lock serializes work on one session id.
func (m *Manager) Lock(id string) func() { return m.locks.Lock(id) }

// Create starts and stores a fresh session.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	s := New(m.initialCredits)
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("session create: %w", err)
	}
	return s, nil
}

// Load returns the session for id or ErrNotFound.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return m.store.Get(ctx, id)
}

// LoadOrCreate returns the session for id, or a new one when it is unknown
// or expired. created reports which.
func (m *Manager) LoadOrCreate(ctx context.Context, id string) (s *Session, created bool, err error) {
	s, err = m.Load(ctx, id)
	if err == nil {
		return s, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	s, err = m.Create(ctx)
	return s, err == nil, err
}

// Save persists s and refreshes its expiry.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	return m.store.Save(ctx, s)
}

// Destroy removes the archived exports of s and deletes it. Archive errors
// are logged and do not stop the teardown.
func (m *Manager) Destroy(ctx context.Context, s *Session) error {
	if m.archive != nil {
		for _, k := range s.Exports {
			if err := m.archive.Remove(ctx, k); err != nil {
				m.log.Warn("archive remove failed", zap.String("session", s.ID), zap.String("key", k), zap.Error(err))
			}
		}
	}
	s.Exports = nil
	if err := m.store.Delete(ctx, s.ID); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}
