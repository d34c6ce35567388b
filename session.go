package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/sramirezortega/cv/internal/resume"
	"github.com/sramirezortega/cv/internal/section"
)

const sessionCookie = "cv_session"

// visitorSession is one open page: its accordion controller and the view the
// controller renders into.
type visitorSession struct {
	id         string
	lang       language.Tag
	controller *section.Controller
	view       *pageView
	lastSeen   time.Time
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*visitorSession
	ttl      time.Duration
	max      int
	now      func() time.Time

	library        *resume.Library
	policy         section.Policy
	initialSection string
	remeasureDelay time.Duration
	logger         *slog.Logger
}

func newSessionStore(cfg Config, library *resume.Library, logger *slog.Logger) *sessionStore {
	return &sessionStore{
		sessions:       map[string]*visitorSession{},
		ttl:            cfg.SessionTTL,
		max:            cfg.MaxSessions,
		now:            time.Now,
		library:        library,
		policy:         cfg.SectionPolicy,
		initialSection: cfg.InitialSection,
		remeasureDelay: cfg.RemeasureDelay,
		logger:         logger,
	}
}

// start builds a fresh page for id (a new id when empty): sections are
// discovered from the résumé and the initial section is opened.
func (s *sessionStore) start(id string, lang language.Tag) *visitorSession {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	r := s.library.For(lang)
	view := newPageView(r)
	ctrl := section.New(r.Pairs(), s.policy, view,
		section.WithLogger(s.logger.With(slog.String("session", id))),
		section.WithRemeasureDelay(s.remeasureDelay),
	)
	if s.initialSection != "" {
		ctrl.Open(s.initialSection)
	}

	sess := &visitorSession{
		id:         id,
		lang:       lang,
		controller: ctrl,
		view:       view,
		lastSeen:   s.now(),
	}

	s.mu.Lock()
	if _, exists := s.sessions[id]; !exists && s.max > 0 && len(s.sessions) >= s.max {
		s.evictOldestLocked()
	}
	s.sessions[id] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	metricActiveSessions.Set(float64(n))
	return sess
}

// evictOldestLocked drops the least recently seen session. Caller holds mu.
func (s *sessionStore) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, sess := range s.sessions {
		if oldestID == "" || sess.lastSeen.Before(oldest) {
			oldestID, oldest = id, sess.lastSeen
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
		s.logger.Debug("session evicted at capacity", slog.String("session", oldestID))
	}
}

// get returns a live session and marks it as seen.
func (s *sessionStore) get(id string) (*visitorSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.now().Sub(sess.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess, true
}

// sweep drops idle sessions and returns how many were removed.
func (s *sessionStore) sweep() int {
	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if s.now().Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	metricActiveSessions.Set(float64(n))
	return removed
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// run sweeps on every tick until ctx is done.
func (s *sessionStore) run(ctx context.Context, every time.Duration, extra ...func()) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				s.logger.Debug("expired sessions removed", slog.Int("count", n))
			}
			for _, fn := range extra {
				fn()
			}
		}
	}
}
