package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-gateway-service/internal/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Buffer size for outbound messages
	sendBufferSize = 256
)

// Client is one WebSocket connection bound to a session
type Client struct {
	conn      *websocket.Conn
	send      chan models.ServerMessage
	done      chan struct{}
	closeOnce sync.Once
	engine    *Engine
	session   *Session
	logger    zerolog.Logger
}

// NewClient creates a client and opens its session on the engine
func NewClient(conn *websocket.Conn, userID string, engine *Engine, logger zerolog.Logger) *Client {
	c := &Client{
		conn:   conn,
		send:   make(chan models.ServerMessage, sendBufferSize),
		done:   make(chan struct{}),
		engine: engine,
	}
	c.session = engine.Open(userID, c)
	c.logger = logger.With().
		Str("component", "ws_client").
		Str("session_id", c.session.ID).
		Logger()
	return c
}

// Session returns the client's subscription session
func (c *Client) Session() *Session {
	return c.session
}

// TrySend queues a message without blocking. Returns false if the buffer is full or the client is gone.
func (c *Client) TrySend(msg models.ServerMessage) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// ReadPump reads client requests until the connection fails, then tears the session down
func (c *Client) ReadPump() {
	defer func() {
		c.engine.Unregister(c.session)
		c.shutdown()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn().Err(err).Msg("unexpected close")
			}
			return
		}

		var msg models.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("invalid_message", "message must be a JSON object with a type")
			continue
		}

		c.handleClientMessage(msg)
	}
}

// WritePump drains the send buffer to the connection and keeps it alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return

		case <-c.session.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Debug().Err(err).Msg("write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// handleClientMessage processes messages from the client
func (c *Client) handleClientMessage(msg models.ClientMessage) {
	switch msg.Type {
	case models.MessageTypeSubscribeSport:
		c.handleSubscribeSport(msg.Payload)
	case models.MessageTypeUnsubscribeSport:
		c.session.UnsubscribeSport()
		c.reply(models.MessageTypeUnsubscribed, models.LaneStatus{Lane: LaneSport})
	case models.MessageTypeSubscribeEvent:
		c.handleSubscribeEvent(msg.Payload)
	case models.MessageTypeUnsubscribeEvent:
		c.session.UnsubscribeEvent()
		c.reply(models.MessageTypeUnsubscribed, models.LaneStatus{Lane: LaneEvent})
	case models.MessageTypePing:
		c.reply(models.MessageTypePong, nil)
	default:
		c.sendError("unknown_message_type", fmt.Sprintf("unknown message type: %s", msg.Type))
	}
}

// handleSubscribeSport accepts either "cricket" or {"sportName": "cricket"}
func (c *Client) handleSubscribeSport(payload json.RawMessage) {
	name, err := parseSportName(payload)
	if err != nil {
		c.sendError("invalid_subscription", err.Error())
		return
	}

	sport, err := c.session.SubscribeSport(name)
	if err != nil {
		c.subscriptionFailed(err)
		return
	}
	c.reply(models.MessageTypeSubscribed, models.LaneStatus{Lane: LaneSport, Sport: sport})
}

func (c *Client) handleSubscribeEvent(payload json.RawMessage) {
	var sub models.EventSubscription
	if len(payload) == 0 || json.Unmarshal(payload, &sub) != nil {
		c.sendError("invalid_subscription", "payload must be an object with sportName and eventId")
		return
	}

	eventID := string(sub.EventID)
	sport, err := c.session.SubscribeEvent(sub.SportKey(), eventID)
	if err != nil {
		c.subscriptionFailed(err)
		return
	}
	c.reply(models.MessageTypeSubscribed, models.LaneStatus{Lane: LaneEvent, Sport: sport, EventID: eventID})
}

func (c *Client) subscriptionFailed(err error) {
	if errors.Is(err, ErrSessionClosed) {
		return
	}
	c.logger.Debug().Err(err).Msg("rejected subscription")
	c.sendError("invalid_subscription", err.Error())
}

func parseSportName(payload json.RawMessage) (string, error) {
	if len(payload) == 0 {
		return "", errors.New("sport name is required")
	}

	var name string
	if err := json.Unmarshal(payload, &name); err == nil {
		return name, nil
	}

	var sub models.EventSubscription
	if err := json.Unmarshal(payload, &sub); err != nil {
		return "", errors.New("payload must be a sport name or an object with sportName")
	}
	if sub.SportKey() == "" {
		return "", errors.New("sport name is required")
	}
	return sub.SportKey(), nil
}

func (c *Client) reply(msgType string, payload interface{}) {
	c.TrySend(models.ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	})
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	c.reply(models.MessageTypeError, models.ErrorMessage{
		Code:    code,
		Message: message,
	})
}
