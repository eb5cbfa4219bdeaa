// Package session keeps one chart controller per browser.
//
// The HTTP host mounts a fresh [widget.Controller] for every visitor so
// selections made in one tab never leak into another. Sessions expire after
// a period of inactivity and [Store.Run] removes them periodically.
//
//	store := session.NewStore(session.DefaultTTL, func(id string) (*widget.Controller, error) {
//	    return widget.New(root, cfg, widget.WithNotifier(n))
//	})
//	sess, err := store.Create(ctx)
//	sess.Do(func(c *widget.Controller) { c.Click(ctx, "Apple") })
package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/bubblechart/pkg/errors"
	"github.com/matzehuels/bubblechart/pkg/tree"
	"github.com/matzehuels/bubblechart/pkg/widget"
)

// Default durations.
const (
	// DefaultTTL is how long an idle session is kept.
	DefaultTTL = 30 * time.Minute

	// DefaultCleanupInterval is how often expired sessions are removed.
	DefaultCleanupInterval = time.Minute
)

// Factory mounts the controller of a new session.
type Factory func(id string) (*widget.Controller, error)

// Session is one visitor's chart.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	ctrl      *widget.Controller
	expiresAt time.Time
}

// Do runs fn with exclusive access to the session controller.
func (s *Session) Do(fn func(c *widget.Controller)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.ctrl)
}

// Snapshot returns the current controller state.
func (s *Session) Snapshot() widget.Snapshot {
	var snap widget.Snapshot
	s.Do(func(c *widget.Controller) { snap = c.Snapshot() })
	return snap
}

// ExpiresAt returns when the session expires unless touched again.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

// IsExpired returns true if the session has expired at now.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt())
}

func (s *Session) touch(exp time.Time) {
	s.mu.Lock()
	s.expiresAt = exp
	s.mu.Unlock()
}

// Store is an in-memory session registry. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	factory  Factory
	now      func() time.Time
	logger   *log.Logger
}

// NewStore creates a store. A non-positive ttl uses DefaultTTL.
func NewStore(ttl time.Duration, factory Factory) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		factory:  factory,
		now:      time.Now,
		logger:   log.Default(),
	}
}

// SetLogger sets the logger used for lifecycle messages.
func (s *Store) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Create mounts a new session.
func (s *Store) Create(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	ctrl, err := s.factory(id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sess := &Session{ID: id, CreatedAt: now, ctrl: ctrl, expiresAt: now.Add(s.ttl)}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.logger.Debug("session created", "id", id)
	return sess, nil
}

// Get returns a live session and extends its expiry. Unknown and expired
// sessions report SESSION_NOT_FOUND.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}

	now := s.now()
	if sess.IsExpired(now) {
		_ = s.Delete(ctx, id)
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q expired", id)
	}
	sess.touch(now.Add(s.ttl))
	return sess, nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Cleanup removes expired sessions and returns how many were removed.
func (s *Store) Cleanup(ctx context.Context) int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.IsExpired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Remount replaces the tree of every live session. Selection and hover
// state are reset. Sessions whose controller rejects the tree are left
// unchanged and the first error is returned.
func (s *Store) Remount(ctx context.Context, root *tree.Node) error {
	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	var first error
	for _, sess := range sessions {
		sess.Do(func(c *widget.Controller) {
			if err := c.Mount(root); err != nil && first == nil {
				first = err
			}
		})
	}
	return first
}

// Run removes expired sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Cleanup(ctx); n > 0 {
				s.logger.Debug("expired sessions removed", "count", n, "remaining", s.Len())
			}
		}
	}
}
