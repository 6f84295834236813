package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-gateway-service/internal/metrics"
	"github.com/cypherlabdev/odds-gateway-service/internal/models"
)

// Lane names
const (
	LaneSport = "sport"
	LaneEvent = "event"
)

var (
	// ErrSessionClosed is returned when subscribing on a closed session
	ErrSessionClosed = errors.New("session closed")

	// ErrInvalidSubscription is returned for unknown sports or missing event ids
	ErrInvalidSubscription = errors.New("invalid subscription")
)

// DataSource produces the JSON snapshots pushed on each lane
type DataSource interface {
	SportData(ctx context.Context, sportName string) ([]byte, error)
	EventData(ctx context.Context, sportName, eventID string) ([]byte, error)
}

// Sender delivers messages to one connected client without blocking
type Sender interface {
	TrySend(msg models.ServerMessage) bool
}

// lane is one running ticker task
type lane struct {
	sport   string
	eventID string
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// Session is the per-connection subscription state: at most one sport lane and one event lane
type Session struct {
	ID     string
	UserID string

	config  Config
	source  DataSource
	sender  Sender
	metrics *metrics.Metrics
	logger  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex // guards sport and event, serializes subscription changes
	sport *lane
	event *lane

	// pushMu orders pushes against cancellation: once a lane is cancelled under
	// the write lock no cycle of that lane can push.
	pushMu sync.RWMutex

	sportTickers atomic.Int32
	eventTickers atomic.Int32
}

func newSession(parent context.Context, userID string, config Config, source DataSource, sender Sender, m *metrics.Metrics, logger zerolog.Logger) *Session {
	ctx, cancel := context.WithCancel(parent)
	id := uuid.New().String()
	return &Session{
		ID:      id,
		UserID:  userID,
		config:  config,
		source:  source,
		sender:  sender,
		metrics: m,
		logger:  logger.With().Str("session_id", id).Str("user_id", userID).Logger(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Done is closed when the session is closed
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// SubscribeSport replaces the sport lane. The previous sport ticker has exited before the new one starts.
func (s *Session) SubscribeSport(sportName string) (string, error) {
	sport, ok := models.SportByName(sportName)
	if !ok {
		return "", fmt.Errorf("%w: unknown sport %q", ErrInvalidSubscription, sportName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return "", ErrSessionClosed
	}

	s.stopLane(s.sport)
	s.sport = s.startLane(LaneSport, sport.ID, "", s.config.SportInterval, &s.sportTickers)

	s.logger.Info().Str("sport", sport.ID).Msg("subscribed to sport")
	return sport.ID, nil
}

// SubscribeEvent replaces the event lane
func (s *Session) SubscribeEvent(sportName, eventID string) (string, error) {
	sport, ok := models.SportByName(sportName)
	if !ok {
		return "", fmt.Errorf("%w: unknown sport %q", ErrInvalidSubscription, sportName)
	}
	if eventID == "" {
		return "", fmt.Errorf("%w: event id is required", ErrInvalidSubscription)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return "", ErrSessionClosed
	}

	s.stopLane(s.event)
	s.event = s.startLane(LaneEvent, sport.ID, eventID, s.config.EventInterval, &s.eventTickers)

	s.logger.Info().Str("sport", sport.ID).Str("event_id", eventID).Msg("subscribed to event")
	return sport.ID, nil
}

// UnsubscribeSport stops the sport lane. No-op when not subscribed.
func (s *Session) UnsubscribeSport() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLane(s.sport)
	s.sport = nil
}

// UnsubscribeEvent stops the event lane. No-op when not subscribed.
func (s *Session) UnsubscribeEvent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLane(s.event)
	s.event = nil
}

// Close stops both lanes. Nothing is pushed after Close returns.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pushMu.Lock()
	s.cancel()
	s.pushMu.Unlock()

	s.stopLane(s.sport)
	s.stopLane(s.event)
	s.sport = nil
	s.event = nil
}

// ActiveTickers reports how many ticker goroutines are alive on a lane
func (s *Session) ActiveTickers(laneName string) int {
	switch laneName {
	case LaneSport:
		return int(s.sportTickers.Load())
	case LaneEvent:
		return int(s.eventTickers.Load())
	default:
		return 0
	}
}

// Subscriptions returns the current lane keys, empty when a lane is idle
func (s *Session) Subscriptions() (sport string, eventSport string, eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sport != nil {
		sport = s.sport.sport
	}
	if s.event != nil {
		eventSport = s.event.sport
		eventID = s.event.eventID
	}
	return sport, eventSport, eventID
}

// startLane must be called with mu held
func (s *Session) startLane(name, sport, eventID string, interval time.Duration, tickers *atomic.Int32) *lane {
	ctx, cancel := context.WithCancel(s.ctx)
	l := &lane{
		sport:   sport,
		eventID: eventID,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	tickers.Add(1)
	go func() {
		defer close(l.done)
		defer tickers.Add(-1)
		s.runLane(name, l, interval)
	}()

	return l
}

// stopLane cancels a lane and waits for its ticker goroutine. Must be called with mu held.
func (s *Session) stopLane(l *lane) {
	if l == nil {
		return
	}
	s.pushMu.Lock()
	l.cancel()
	s.pushMu.Unlock()
	<-l.done
}

// runLane fires one cycle immediately and then one per tick. Cycles run in their own
// goroutines so a slow upstream never delays the ticker.
func (s *Session) runLane(name string, l *lane, interval time.Duration) {
	go s.cycle(name, l)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.ctx.Done():
			return
		case <-ticker.C:
			go s.cycle(name, l)
		}
	}
}

// cycle fetches one snapshot and pushes it if the lane is still live.
// The fetch is detached from lane cancellation so its result still lands in the cache.
func (s *Session) cycle(name string, l *lane) {
	if l.ctx.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(l.ctx), s.config.FetchTimeout)
	defer cancel()

	var (
		data    []byte
		err     error
		msgType string
	)
	if name == LaneSport {
		msgType = models.MessageTypeSportUpdate
		data, err = s.source.SportData(ctx, l.sport)
	} else {
		msgType = models.MessageTypeEventUpdate
		data, err = s.source.EventData(ctx, l.sport, l.eventID)
	}

	if err != nil {
		s.metrics.StreamPushes.WithLabelValues(name, metrics.PushSkipped).Inc()
		s.logger.Warn().
			Err(err).
			Str("lane", name).
			Str("sport", l.sport).
			Str("event_id", l.eventID).
			Msg("failed to refresh lane, skipping push")
		return
	}

	s.push(name, l, models.ServerMessage{
		Type:      msgType,
		Payload:   json.RawMessage(data),
		Timestamp: time.Now(),
	})
}

func (s *Session) push(name string, l *lane, msg models.ServerMessage) {
	s.pushMu.RLock()
	defer s.pushMu.RUnlock()

	if l.ctx.Err() != nil {
		s.metrics.StreamPushes.WithLabelValues(name, metrics.PushSkipped).Inc()
		return
	}

	if !s.sender.TrySend(msg) {
		s.metrics.StreamPushes.WithLabelValues(name, metrics.PushDropped).Inc()
		s.logger.Warn().Str("lane", name).Msg("send buffer full, dropping update")
		return
	}
	s.metrics.StreamPushes.WithLabelValues(name, metrics.PushSent).Inc()
}
