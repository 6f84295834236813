package http

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-gateway-service/internal/stream"
)

// WebSocketHandler upgrades authenticated requests into streaming sessions
type WebSocketHandler struct {
	engine   *stream.Engine
	upgrader websocket.Upgrader
	base     zerolog.Logger
	logger   zerolog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler.
// An empty origin list, or one containing "*", accepts every origin.
func NewWebSocketHandler(engine *stream.Engine, allowedOrigins []string, logger zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		engine: engine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		base:   logger,
		logger: logger.With().Str("component", "ws_handler").Logger(),
	}
}

// handleWebSocket handles GET /ws. RequireAuth has already rejected bad tokens with 401.
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		respondError(w, h.logger, http.StatusUnauthorized, "Authentication required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := stream.NewClient(conn, identity.UserID, h.engine, h.base)

	go c.WritePump()
	go c.ReadPump()

	h.logger.Info().
		Str("user_id", identity.UserID).
		Str("session_id", c.Session().ID).
		Msg("websocket connection established")
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(r *http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	if len(set) == 0 {
		return func(r *http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
