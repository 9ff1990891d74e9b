package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/storefront-cart/internal/money"
	"github.com/noah-isme/storefront-cart/internal/obs"
	"github.com/noah-isme/storefront-cart/internal/page"
	"github.com/noah-isme/storefront-cart/internal/snapshot"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("cart: session not found")

// Session is one open cart page.
type Session struct {
	ID          string
	SnapshotKey string
	Controller  *Controller

	lastSeen time.Time
}

// Seed is the initial content of a new session. Owner identifies the visitor
// and scopes SnapshotKey; the API fills it from the CSRF cookie.
type Seed struct {
	Layout      page.Layout
	SnapshotKey string
	Owner       string
}

// Service opens and tracks cart sessions. Sessions idle for longer than TTL
// are unloaded by Sweep.
type Service struct {
	Options Options
	TTL     time.Duration
	Logger  zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	clock    func() time.Time
}

// NewService builds a session service. opts is the template every session's
// controller is created from.
func NewService(opts Options, ttl time.Duration, logger zerolog.Logger) *Service {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Service{Options: opts, TTL: ttl, Logger: logger, sessions: map[string]*Session{}, clock: time.Now}
}

func formatLine(unit string, qty int) string {
	return money.Format(money.Parse(unit).MulInt(qty))
}

// Open renders seed, runs the page-load bootstrap and registers the session.
// A new snapshot key is minted when seed carries none.
func (s *Service) Open(ctx context.Context, seed Seed) (*Session, error) {
	doc := page.Build(seed.Layout, formatLine)
	key := seed.SnapshotKey
	if key == "" {
		key = uuid.NewString()
	}
	opts := s.Options
	opts.SnapshotKey = snapshot.ScopedKey(key, seed.Owner)
	opts.Logger = s.Logger.With().Str("snapshot", opts.SnapshotKey).Logger()

	ctrl := NewController(doc, opts)
	if err := ctrl.Load(ctx); err != nil {
		return nil, err
	}
	sess := &Session{ID: uuid.NewString(), SnapshotKey: key, Controller: ctrl, lastSeen: s.clock()}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()
	setActive(n)
	return sess, nil
}

// Get returns a live session and marks it as used.
func (s *Service) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = s.clock()
	return sess, nil
}

// Close unloads and forgets the session.
func (s *Service) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	n := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	setActive(n)
	return sess.Controller.Unload(ctx)
}

// Sweep unloads sessions idle for longer than TTL and returns how many were closed.
func (s *Service) Sweep(ctx context.Context) int {
	cutoff := s.clock().Add(-s.TTL)
	var expired []*Session
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range expired {
		if err := sess.Controller.Unload(ctx); err != nil {
			s.Logger.Warn().Err(err).Str("session_id", sess.ID).Msg("session_unload_failed")
		}
	}
	if len(expired) > 0 {
		setActive(n)
		s.Logger.Info().Int("expired", len(expired)).Msg("sessions_swept")
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done, then unloads what is left.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Shutdown(context.Background())
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Shutdown unloads every session, writing their snapshots.
func (s *Service) Shutdown(ctx context.Context) {
	s.mu.Lock()
	all := make([]*Session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		all = append(all, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	for _, sess := range all {
		_ = sess.Controller.Unload(ctx)
	}
	setActive(0)
}

func setActive(n int) {
	if obs.CartSessionsActive != nil {
		obs.CartSessionsActive.Set(float64(n))
	}
}
