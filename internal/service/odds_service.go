package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-gateway-service/internal/models"
	"github.com/cypherlabdev/odds-gateway-service/pkg/transformer"
)

// OddsService orchestrates upstream fetches, normalization and caching
type OddsService struct {
	fetcher     Fetcher
	sportCache  Cache
	eventCache  Cache
	transformer *transformer.Transformer
	publisher   Publisher
	urls        URLBuilder
	now         func() time.Time
	logger      zerolog.Logger
}

// NewOddsService creates a new odds service
func NewOddsService(
	fetcher Fetcher,
	sportCache Cache,
	eventCache Cache,
	transformer *transformer.Transformer,
	publisher Publisher,
	urls URLBuilder,
	logger zerolog.Logger,
) *OddsService {
	return &OddsService{
		fetcher:     fetcher,
		sportCache:  sportCache,
		eventCache:  eventCache,
		transformer: transformer,
		publisher:   publisher,
		urls:        urls,
		now:         time.Now,
		logger:      logger.With().Str("component", "odds_service").Logger(),
	}
}

// Sports returns the fixed sport table
func (s *OddsService) Sports() []models.Sport {
	sports := make([]models.Sport, len(models.Sports))
	copy(sports, models.Sports)
	return sports
}

// SportData returns the normalized sport snapshot as JSON, cache-first
func (s *OddsService) SportData(ctx context.Context, sportName string) ([]byte, error) {
	sport, ok := models.SportByName(sportName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSport, sportName)
	}

	return s.sportCache.GetOrFetch(ctx, sport.ID, func(ctx context.Context) ([]byte, error) {
		raw, err := s.fetchRaw(ctx, "sport", s.urls.SportURL(sport.TypeID), sport.ID)
		if err != nil {
			return nil, err
		}

		out := s.transformer.TransformSportData(raw, sport.ID)
		if !out.Success {
			return nil, &TransformError{Sport: sport.ID, Message: out.Message}
		}
		out.Timestamp = s.now().UnixMilli()

		return s.encodeAndPublish(ctx, "sport:"+sport.ID, out)
	})
}

// EventData returns the normalized event snapshot as JSON, cache-first
func (s *OddsService) EventData(ctx context.Context, sportName, eventID string) ([]byte, error) {
	sport, ok := models.SportByName(sportName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSport, sportName)
	}
	if eventID == "" {
		return nil, ErrInvalidEvent
	}

	key := sport.ID + ":" + eventID
	return s.eventCache.GetOrFetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		raw, err := s.fetchRaw(ctx, "event", s.urls.EventURL(sport.TypeID, eventID), sport.ID)
		if err != nil {
			return nil, err
		}

		out := s.transformer.TransformEventData(raw, sport.ID)
		if !out.Success {
			return nil, &TransformError{Sport: sport.ID, Message: out.Message}
		}
		out.Timestamp = s.now().UnixMilli()

		return s.encodeAndPublish(ctx, "event:"+key, out)
	})
}

// fetchRaw pulls and decodes one upstream document
func (s *OddsService) fetchRaw(ctx context.Context, kind, url, sport string) (*models.RawPayload, error) {
	body, ok := s.fetcher.Fetch(ctx, kind, url)
	if !ok {
		return nil, ErrUpstreamUnavailable
	}

	var raw models.RawPayload
	if err := json.Unmarshal(body, &raw); err != nil {
		s.logger.Warn().
			Err(err).
			Str("sport", sport).
			Str("kind", kind).
			Msg("failed to decode upstream payload")
		return nil, &TransformError{Sport: sport, Message: "Invalid data received from provider"}
	}

	return &raw, nil
}

// encodeAndPublish serializes a snapshot and mirrors it to the publisher.
// Publish errors are logged; they never fail the fetch.
func (s *OddsService) encodeAndPublish(ctx context.Context, key string, snapshot interface{}) ([]byte, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.publisher.Publish(ctx, key, data); err != nil {
		s.logger.Warn().
			Err(err).
			Str("key", key).
			Msg("failed to publish snapshot")
	}

	s.logger.Debug().
		Str("key", key).
		Int("bytes", len(data)).
		Msg("refreshed snapshot")

	return data, nil
}
