package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

func init() {
	// Clients read prices as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// PriceLevel is a single rung of a back or lay ladder
type PriceLevel struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

// Runner represents one selectable outcome within a market
type Runner struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Status          string          `json:"status"`
	SortPriority    int             `json:"sortPriority"`
	Handicap        decimal.Decimal `json:"handicap"`
	LastPriceTraded decimal.Decimal `json:"lastPriceTraded"`
	TotalMatched    decimal.Decimal `json:"totalMatched"`
	Back            []PriceLevel    `json:"back"`
	Lay             []PriceLevel    `json:"lay"`
}

// Market represents a single bettable proposition
type Market struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Status       string          `json:"status"`
	InPlay       bool            `json:"inPlay"`
	TotalMatched decimal.Decimal `json:"totalMatched"`
	MarketType   string          `json:"marketType"`
	Sport        string          `json:"sport"`
	Runners      []Runner        `json:"runners"`
}

// Match is one upstream event with all of its usable markets
type Match struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Venue           string   `json:"venue"`
	StartTime       int64    `json:"startTime"` // epoch millis
	InPlay          bool     `json:"inPlay"`
	Sport           string   `json:"sport"`
	CompetitionID   *string  `json:"competitionId"`
	CompetitionName *string  `json:"competitionName"`
	Markets         []Market `json:"markets"`
}

// Competition groups the matches that share an upstream competition id
type Competition struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Matches []string `json:"matches"`
}

// SportPayload is the normalized sport-level snapshot
type SportPayload struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message,omitempty"`
	Sport        string        `json:"sport"`
	Competitions []Competition `json:"competitions"`
	Matches      []Match       `json:"matches"`
	Timestamp    int64         `json:"timestamp,omitempty"`
}

// EventPayload is the normalized event-level snapshot with markets bucketed by name
type EventPayload struct {
	Success          bool     `json:"success"`
	Message          string   `json:"message,omitempty"`
	Sport            string   `json:"sport"`
	Event            *Match   `json:"event,omitempty"`
	Markets          []Market `json:"markets"`
	MatchOddsMarkets []Market `json:"matchOddsMarkets"`
	TiedMatchMarkets []Market `json:"tiedMatchMarkets"`
	OverUnderMarkets []Market `json:"overUnderMarkets"`
	SetMarkets       []Market `json:"setMarkets"`
	GameMarkets      []Market `json:"gameMarkets"`
	OtherMarkets     []Market `json:"otherMarkets"`
	Timestamp        int64    `json:"timestamp,omitempty"`
}

// failurePayload is the shape of an unsuccessful transform
type failurePayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Sport   string `json:"sport"`
}

// MarshalJSON writes the list fields on success and the failure shape otherwise
func (p SportPayload) MarshalJSON() ([]byte, error) {
	if !p.Success {
		return json.Marshal(failurePayload{Message: p.Message, Sport: p.Sport})
	}
	type plain SportPayload
	return json.Marshal(plain(p))
}

// MarshalJSON writes the list fields on success and the failure shape otherwise
func (p EventPayload) MarshalJSON() ([]byte, error) {
	if !p.Success {
		return json.Marshal(failurePayload{Message: p.Message, Sport: p.Sport})
	}
	type plain EventPayload
	return json.Marshal(plain(p))
}
