package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/odds-gateway-service/internal/metrics"
	"github.com/cypherlabdev/odds-gateway-service/internal/models"
)

type wireMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func setupTestServer(t *testing.T) (*Engine, *websocket.Conn) {
	engine := NewEngine(testConfig, &fakeSource{}, metrics.NewNop(), zerolog.Nop())
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient(conn, "user-1", engine, zerolog.Nop())
		go c.WritePump()
		go c.ReadPump()
	}))

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		engine.Shutdown()
		server.Close()
	})
	return engine, conn
}

// readUntil reads messages until one of the wanted type arrives
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) wireMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg wireMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == msgType {
			return msg
		}
	}
}

// TestClient_SubscribeSport tests the subscribe handshake and first update over a real socket
func TestClient_SubscribeSport(t *testing.T) {
	_, conn := setupTestServer(t)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":    models.MessageTypeSubscribeSport,
		"payload": "cricket",
	}))

	ack := readUntil(t, conn, models.MessageTypeSubscribed)
	var status models.LaneStatus
	require.NoError(t, json.Unmarshal(ack.Payload, &status))
	assert.Equal(t, LaneSport, status.Lane)
	assert.Equal(t, "cricket", status.Sport)

	update := readUntil(t, conn, models.MessageTypeSportUpdate)
	assert.Contains(t, string(update.Payload), `"sport":"cricket"`)
}

// TestClient_SubscribeEventObjectPayload tests the object payload with the legacy sport field
func TestClient_SubscribeEventObjectPayload(t *testing.T) {
	_, conn := setupTestServer(t)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":    models.MessageTypeSubscribeEvent,
		"payload": map[string]string{"sport": "tennis", "eventId": "E5"},
	}))

	update := readUntil(t, conn, models.MessageTypeEventUpdate)
	assert.Contains(t, string(update.Payload), `"eventId":"E5"`)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": models.MessageTypeUnsubscribeEvent}))
	ack := readUntil(t, conn, models.MessageTypeUnsubscribed)
	assert.Contains(t, string(ack.Payload), LaneEvent)
}

// TestClient_SubscribeEventNumericID tests that a numeric eventId is accepted as its decimal string
func TestClient_SubscribeEventNumericID(t *testing.T) {
	_, conn := setupTestServer(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"subscribe_event","payload":{"sportName":"cricket","eventId":123}}`)))

	ack := readUntil(t, conn, models.MessageTypeSubscribed)
	var status models.LaneStatus
	require.NoError(t, json.Unmarshal(ack.Payload, &status))
	assert.Equal(t, LaneEvent, status.Lane)
	assert.Equal(t, "cricket", status.Sport)
	assert.Equal(t, "123", status.EventID)

	update := readUntil(t, conn, models.MessageTypeEventUpdate)
	assert.Contains(t, string(update.Payload), `"eventId":"123"`)
}

// TestClient_Errors tests that bad requests are answered instead of dropped
func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		message interface{}
		code    string
	}{
		{
			name:    "unknown sport",
			message: map[string]interface{}{"type": models.MessageTypeSubscribeSport, "payload": map[string]string{"sportName": "curling"}},
			code:    "invalid_subscription",
		},
		{
			name:    "missing event id",
			message: map[string]interface{}{"type": models.MessageTypeSubscribeEvent, "payload": map[string]string{"sportName": "cricket"}},
			code:    "invalid_subscription",
		},
		{
			name:    "unknown type",
			message: map[string]interface{}{"type": "subscribe_everything"},
			code:    "unknown_message_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, conn := setupTestServer(t)

			require.NoError(t, conn.WriteJSON(tt.message))

			msg := readUntil(t, conn, models.MessageTypeError)
			var errMsg models.ErrorMessage
			require.NoError(t, json.Unmarshal(msg.Payload, &errMsg))
			assert.Equal(t, tt.code, errMsg.Code)
		})
	}
}

// TestClient_Ping tests the application level ping
func TestClient_Ping(t *testing.T) {
	_, conn := setupTestServer(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	readUntil(t, conn, models.MessageTypeError)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": models.MessageTypePing}))
	readUntil(t, conn, models.MessageTypePong)
}

// TestClient_DisconnectUnregisters tests that closing the socket removes the session
func TestClient_DisconnectUnregisters(t *testing.T) {
	engine, conn := setupTestServer(t)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":    models.MessageTypeSubscribeSport,
		"payload": "football",
	}))
	readUntil(t, conn, models.MessageTypeSubscribed)
	assert.Equal(t, 1, engine.SessionCount())

	conn.Close()

	require.Eventually(t, func() bool {
		return engine.SessionCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

// TestParseSportName tests both accepted payload shapes
func TestParseSportName(t *testing.T) {
	name, err := parseSportName(json.RawMessage(`"cricket"`))
	require.NoError(t, err)
	assert.Equal(t, "cricket", name)

	name, err = parseSportName(json.RawMessage(`{"sportName":"tennis"}`))
	require.NoError(t, err)
	assert.Equal(t, "tennis", name)

	_, err = parseSportName(nil)
	assert.Error(t, err)

	_, err = parseSportName(json.RawMessage(`{}`))
	assert.Error(t, err)

	_, err = parseSportName(json.RawMessage(`[1,2]`))
	assert.Error(t, err)
}
