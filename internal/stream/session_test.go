package stream

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/odds-gateway-service/internal/metrics"
	"github.com/cypherlabdev/odds-gateway-service/internal/models"
)

// fakeSource serves canned snapshots and counts calls
type fakeSource struct {
	sportCalls atomic.Int32
	eventCalls atomic.Int32
	failFirst  int32
	block      chan struct{}
}

func (f *fakeSource) SportData(ctx context.Context, sportName string) ([]byte, error) {
	n := f.sportCalls.Add(1)
	if f.block != nil {
		<-f.block
	}
	if n <= f.failFirst {
		return nil, errors.New("upstream down")
	}
	return json.Marshal(map[string]interface{}{"success": true, "sport": sportName, "n": n})
}

func (f *fakeSource) EventData(ctx context.Context, sportName, eventID string) ([]byte, error) {
	n := f.eventCalls.Add(1)
	if f.block != nil {
		<-f.block
	}
	if n <= f.failFirst {
		return nil, errors.New("upstream down")
	}
	return json.Marshal(map[string]interface{}{"success": true, "sport": sportName, "eventId": eventID})
}

// recordingSender collects pushed messages
type recordingSender struct {
	mu       sync.Mutex
	messages []models.ServerMessage
	full     bool
}

func (r *recordingSender) TrySend(msg models.ServerMessage) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return false
	}
	r.messages = append(r.messages, msg)
	return true
}

func (r *recordingSender) count(msgType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.messages {
		if m.Type == msgType {
			n++
		}
	}
	return n
}

func (r *recordingSender) last() models.ServerMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messages[len(r.messages)-1]
}

var testConfig = Config{
	SportInterval: 20 * time.Millisecond,
	EventInterval: 10 * time.Millisecond,
	FetchTimeout:  time.Second,
}

func setupTestSession(t *testing.T, source DataSource) (*Engine, *Session, *recordingSender) {
	engine := NewEngine(testConfig, source, metrics.NewNop(), zerolog.Nop())
	sender := &recordingSender{}
	session := engine.Open("user-1", sender)
	t.Cleanup(engine.Shutdown)
	return engine, session, sender
}

// TestSubscribeSport_PushesImmediatelyAndRepeats tests the sport lane cadence
func TestSubscribeSport_PushesImmediatelyAndRepeats(t *testing.T) {
	source := &fakeSource{}
	_, session, sender := setupTestSession(t, source)

	sport, err := session.SubscribeSport("Cricket")
	require.NoError(t, err)
	assert.Equal(t, "cricket", sport)

	require.Eventually(t, func() bool {
		return sender.count(models.MessageTypeSportUpdate) >= 3
	}, 2*time.Second, 5*time.Millisecond)

	msg := sender.last()
	raw, ok := msg.Payload.(json.RawMessage)
	require.True(t, ok)
	assert.Contains(t, string(raw), `"sport":"cricket"`)
}

// TestSubscribeSport_Twice tests that resubscribing never leaves two sport tickers
func TestSubscribeSport_Twice(t *testing.T) {
	source := &fakeSource{}
	_, session, _ := setupTestSession(t, source)

	_, err := session.SubscribeSport("cricket")
	require.NoError(t, err)
	_, err = session.SubscribeSport("cricket")
	require.NoError(t, err)

	assert.Equal(t, 1, session.ActiveTickers(LaneSport))
	assert.Equal(t, 0, session.ActiveTickers(LaneEvent))

	_, err = session.SubscribeSport("tennis")
	require.NoError(t, err)
	assert.Equal(t, 1, session.ActiveTickers(LaneSport))

	sport, _, _ := session.Subscriptions()
	assert.Equal(t, "tennis", sport)
}

// TestSubscribeEvent tests the event lane and its independence from the sport lane
func TestSubscribeEvent(t *testing.T) {
	source := &fakeSource{}
	_, session, sender := setupTestSession(t, source)

	_, err := session.SubscribeSport("football")
	require.NoError(t, err)
	_, err = session.SubscribeEvent("football", "E1")
	require.NoError(t, err)

	assert.Equal(t, 1, session.ActiveTickers(LaneSport))
	assert.Equal(t, 1, session.ActiveTickers(LaneEvent))

	require.Eventually(t, func() bool {
		return sender.count(models.MessageTypeEventUpdate) >= 2 && sender.count(models.MessageTypeSportUpdate) >= 1
	}, 2*time.Second, 5*time.Millisecond)

	session.UnsubscribeEvent()
	assert.Equal(t, 0, session.ActiveTickers(LaneEvent))
	assert.Equal(t, 1, session.ActiveTickers(LaneSport))

	_, eventSport, eventID := session.Subscriptions()
	assert.Empty(t, eventSport)
	assert.Empty(t, eventID)
}

// TestSubscribe_Invalid tests validation of subscription requests
func TestSubscribe_Invalid(t *testing.T) {
	_, session, _ := setupTestSession(t, &fakeSource{})

	_, err := session.SubscribeSport("curling")
	assert.ErrorIs(t, err, ErrInvalidSubscription)

	_, err = session.SubscribeEvent("cricket", "")
	assert.ErrorIs(t, err, ErrInvalidSubscription)

	_, err = session.SubscribeEvent("hockey", "E1")
	assert.ErrorIs(t, err, ErrInvalidSubscription)

	assert.Equal(t, 0, session.ActiveTickers(LaneSport))
	assert.Equal(t, 0, session.ActiveTickers(LaneEvent))
}

// TestUnsubscribe_Idempotent tests unsubscribing idle lanes
func TestUnsubscribe_Idempotent(t *testing.T) {
	_, session, _ := setupTestSession(t, &fakeSource{})

	session.UnsubscribeSport()
	session.UnsubscribeSport()
	session.UnsubscribeEvent()

	assert.Equal(t, 0, session.ActiveTickers(LaneSport))
}

// TestClose_StopsUpdates tests that nothing is pushed after disconnect
func TestClose_StopsUpdates(t *testing.T) {
	source := &fakeSource{}
	_, session, sender := setupTestSession(t, source)

	_, err := session.SubscribeEvent("cricket", "E1")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return sender.count(models.MessageTypeEventUpdate) >= 1
	}, 2*time.Second, 5*time.Millisecond)

	session.Close()
	pushed := sender.count(models.MessageTypeEventUpdate)

	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, pushed, sender.count(models.MessageTypeEventUpdate))
	assert.Equal(t, 0, session.ActiveTickers(LaneEvent))

	_, err = session.SubscribeSport("cricket")
	assert.ErrorIs(t, err, ErrSessionClosed)
}

// TestClose_DiscardsInFlightFetch tests that a fetch finishing after disconnect is not pushed
func TestClose_DiscardsInFlightFetch(t *testing.T) {
	source := &fakeSource{block: make(chan struct{})}
	_, session, sender := setupTestSession(t, source)

	_, err := session.SubscribeSport("cricket")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return source.sportCalls.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	session.Close()
	close(source.block)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, sender.count(models.MessageTypeSportUpdate))
}

// TestCycle_FailureSkipsPush tests that a failed refresh skips one push and the lane keeps running
func TestCycle_FailureSkipsPush(t *testing.T) {
	source := &fakeSource{failFirst: 2}
	_, session, sender := setupTestSession(t, source)

	_, err := session.SubscribeEvent("tennis", "E9")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return sender.count(models.MessageTypeEventUpdate) >= 1
	}, 2*time.Second, 5*time.Millisecond)

	assert.GreaterOrEqual(t, source.eventCalls.Load(), int32(3))
}

// TestCycle_FullBufferDrops tests that a slow client drops updates without stopping the lane
func TestCycle_FullBufferDrops(t *testing.T) {
	source := &fakeSource{}
	_, session, sender := setupTestSession(t, source)
	sender.full = true

	_, err := session.SubscribeEvent("tennis", "E9")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return source.eventCalls.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, session.ActiveTickers(LaneEvent))
}
