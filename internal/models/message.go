package models

import (
	"encoding/json"
	"time"
)

// Message types for the streaming channel
const (
	MessageTypeSubscribeSport   = "subscribe_sport"
	MessageTypeUnsubscribeSport = "unsubscribe_sport"
	MessageTypeSubscribeEvent   = "subscribe_event"
	MessageTypeUnsubscribeEvent = "unsubscribe_event"
	MessageTypePing             = "ping"

	MessageTypeSportUpdate  = "sport_update"
	MessageTypeEventUpdate  = "event_update"
	MessageTypeSubscribed   = "subscribed"
	MessageTypeUnsubscribed = "unsubscribed"
	MessageTypePong         = "pong"
	MessageTypeError        = "error"
)

// ClientMessage is a message from client to server
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage is a message from server to client
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// EventSubscription is the payload of subscribe_event.
// Older clients send "sport" instead of "sportName"; eventId may be a number or a string.
type EventSubscription struct {
	SportName string   `json:"sportName"`
	Sport     string   `json:"sport"`
	EventID   TypeCode `json:"eventId"`
}

// SportKey returns whichever sport field the client filled in
func (e EventSubscription) SportKey() string {
	if e.SportName != "" {
		return e.SportName
	}
	return e.Sport
}

// LaneStatus acknowledges a subscription change
type LaneStatus struct {
	Lane    string `json:"lane"`
	Sport   string `json:"sport,omitempty"`
	EventID string `json:"eventId,omitempty"`
}

// ErrorMessage is sent to a client when a request cannot be honored
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
