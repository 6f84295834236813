package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSport is returned for names outside the sport table
	ErrUnknownSport = errors.New("unknown sport")

	// ErrInvalidEvent is returned when an event id is missing
	ErrInvalidEvent = errors.New("event id is required")

	// ErrUpstreamUnavailable is returned when the provider gave no data
	ErrUpstreamUnavailable = errors.New("upstream provider returned no data")
)

// TransformError carries the failure message produced while normalizing a payload
type TransformError struct {
	Sport   string
	Message string
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform failed for %s: %s", e.Sport, e.Message)
}
