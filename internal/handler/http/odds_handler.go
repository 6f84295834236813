package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-gateway-service/internal/models"
	"github.com/cypherlabdev/odds-gateway-service/internal/service"
)

// OddsProvider serves sport and event snapshots
type OddsProvider interface {
	Sports() []models.Sport
	SportData(ctx context.Context, sportName string) ([]byte, error)
	EventData(ctx context.Context, sportName, eventID string) ([]byte, error)
}

// OddsHandler handles HTTP requests for odds snapshots
type OddsHandler struct {
	odds   OddsProvider
	logger zerolog.Logger
}

// NewOddsHandler creates a new odds HTTP handler
func NewOddsHandler(odds OddsProvider, logger zerolog.Logger) *OddsHandler {
	return &OddsHandler{
		odds:   odds,
		logger: logger.With().Str("component", "odds_handler").Logger(),
	}
}

// RegisterRoutes registers odds routes on r
func (h *OddsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/sports", h.handleGetSports)
	r.Get("/sport/{sportName}", h.handleGetSport)
	r.Get("/event/{sportName}/{eventId}", h.handleGetEvent)
}

// handleGetSports handles GET /api/sports
func (h *OddsHandler) handleGetSports(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"success": true,
		"sports":  h.odds.Sports(),
	})
}

// handleGetSport handles GET /api/sport/{sportName}
func (h *OddsHandler) handleGetSport(w http.ResponseWriter, r *http.Request) {
	sportName := chi.URLParam(r, "sportName")

	data, err := h.odds.SportData(r.Context(), sportName)
	if err != nil {
		h.respondOddsError(w, err, sportName, "Failed to fetch sport data")
		return
	}

	respondRaw(w, h.logger, http.StatusOK, data)
}

// handleGetEvent handles GET /api/event/{sportName}/{eventId}
func (h *OddsHandler) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	sportName := chi.URLParam(r, "sportName")
	eventID := chi.URLParam(r, "eventId")

	data, err := h.odds.EventData(r.Context(), sportName, eventID)
	if err != nil {
		h.respondOddsError(w, err, sportName, "Failed to fetch event data")
		return
	}

	respondRaw(w, h.logger, http.StatusOK, data)
}

// respondOddsError maps service errors onto the failure shape
func (h *OddsHandler) respondOddsError(w http.ResponseWriter, err error, sportName, fallback string) {
	status := http.StatusInternalServerError
	body := ErrorResponse{Success: false, Message: fallback, Sport: sportName}

	var transformErr *service.TransformError
	switch {
	case errors.Is(err, service.ErrUnknownSport):
		status = http.StatusNotFound
		body.Message = "Unknown sport: " + sportName
	case errors.Is(err, service.ErrInvalidEvent):
		status = http.StatusBadRequest
		body.Message = "Event id is required"
	case errors.As(err, &transformErr):
		body.Message = transformErr.Message
		body.Sport = transformErr.Sport
	}

	h.logger.Warn().
		Err(err).
		Str("sport", sportName).
		Int("status", status).
		Msg("odds request failed")

	respondJSON(w, h.logger, status, body)
}
