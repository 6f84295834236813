package stream

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-gateway-service/internal/metrics"
)

// Config holds lane timing
type Config struct {
	SportInterval time.Duration // e.g., 5 * time.Second
	EventInterval time.Duration // e.g., 1 * time.Second
	FetchTimeout  time.Duration // bound on one detached fetch
}

// Engine owns every live session
type Engine struct {
	config  Config
	source  DataSource
	metrics *metrics.Metrics
	logger  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewEngine creates a new subscription engine
func NewEngine(config Config, source DataSource, m *metrics.Metrics, logger zerolog.Logger) *Engine {
	if config.SportInterval <= 0 {
		config.SportInterval = 5 * time.Second
	}
	if config.EventInterval <= 0 {
		config.EventInterval = time.Second
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		config:   config,
		source:   source,
		metrics:  m,
		logger:   logger.With().Str("component", "stream_engine").Logger(),
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
}

// Open creates a session delivering to sender and registers it
func (e *Engine) Open(userID string, sender Sender) *Session {
	s := newSession(e.ctx, userID, e.config, e.source, sender, e.metrics, e.logger)
	e.Register(s)
	return s
}

// Register adds a session to the registry
func (e *Engine) Register(s *Session) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.sessions[s.ID]; exists {
		return
	}
	e.sessions[s.ID] = s
	e.metrics.ActiveSessions.Inc()

	e.logger.Info().
		Str("session_id", s.ID).
		Str("user_id", s.UserID).
		Int("sessions", len(e.sessions)).
		Msg("session registered")
}

// Unregister closes a session and removes it. Safe to call more than once.
func (e *Engine) Unregister(s *Session) {
	e.mu.Lock()
	_, exists := e.sessions[s.ID]
	if exists {
		delete(e.sessions, s.ID)
		e.metrics.ActiveSessions.Dec()
	}
	remaining := len(e.sessions)
	e.mu.Unlock()

	s.Close()

	if exists {
		e.logger.Info().
			Str("session_id", s.ID).
			Int("sessions", remaining).
			Msg("session unregistered")
	}
}

// SessionCount returns the number of live sessions
func (e *Engine) SessionCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.sessions)
}

// Shutdown closes every session
func (e *Engine) Shutdown() {
	e.cancel()

	e.mu.Lock()
	sessions := make([]*Session, 0, len(e.sessions))
	for _, s := range e.sessions {
		sessions = append(sessions, s)
	}
	e.mu.Unlock()

	for _, s := range sessions {
		e.Unregister(s)
	}

	e.logger.Info().Int("closed", len(sessions)).Msg("stream engine shut down")
}
