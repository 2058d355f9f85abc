// Package session owns the per-user state that lives between login and
// logout: favorites and the browsing selection. Nothing is shared between
// sessions, and Destroy discards the state rather than hiding it.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/exampapers/backend/internal/browser"
	"github.com/exampapers/backend/internal/favorites"
	"github.com/exampapers/backend/internal/logger"
)

type Session struct {
	ID        string
	UserID    int64
	Favorites *favorites.Set
	Selection *browser.Selector
	CreatedAt time.Time
	// ExpiresAt is zero when the manager has no TTL.
	ExpiresAt time.Time
}

func (s *Session) expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Manager is the in-process session registry. Sessions do not survive a
// restart and are discarded once their TTL passes.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewManager returns a registry whose sessions live for ttl, matching the
// lifetime of the token bound to them. A ttl <= 0 never expires sessions.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{sessions: make(map[string]*Session), ttl: ttl, now: time.Now}
}

// Create starts a fresh session for userID with empty favorites and selection.
func (m *Manager) Create(userID int64) *Session {
	now := m.now().UTC()
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Favorites: favorites.NewSet(),
		Selection: browser.NewSelector(),
		CreatedAt: now,
	}
	if m.ttl > 0 {
		s.ExpiresAt = now.Add(m.ttl)
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get resolves a live session. An expired one is discarded and reported absent.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.expired(m.now()) {
		m.Destroy(id)
		return nil, false
	}
	return s, true
}

// Destroy ends a session and clears its state. Unknown ids are ignored.
func (m *Manager) Destroy(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		discard(s)
	}
}

// Sweep discards every expired session and returns how many it removed.
func (m *Manager) Sweep() int {
	now := m.now()
	var stale []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.expired(now) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()
	for _, s := range stale {
		discard(s)
	}
	return len(stale)
}

// StartSweeper runs Sweep every interval until ctx is cancelled.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				log.Info("expired sessions discarded", "count", n, "remaining", m.Count())
			}
		}
	}
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func discard(s *Session) {
	s.Favorites.Clear()
	s.Selection.Reset()
}

// ── Context ─────────────────────────────────────────────

type contextKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}

func IsSignedIn(ctx context.Context) bool {
	_, ok := FromContext(ctx)
	return ok
}

// CurrentUserID returns the signed-in user, or false when there is none.
func CurrentUserID(ctx context.Context) (int64, bool) {
	s, ok := FromContext(ctx)
	if !ok {
		return 0, false
	}
	return s.UserID, true
}
