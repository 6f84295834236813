package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// RawPayload is the envelope returned by the upstream odds provider
type RawPayload struct {
	Result []RawMarket `json:"result"`
}

// RawMarket is one market record as delivered upstream.
// Runners stays nil when the field is absent, which marks the record unusable.
type RawMarket struct {
	MarketID     string          `json:"marketId"`
	MarketName   string          `json:"marketName"`
	Status       string          `json:"status"`
	Inplay       bool            `json:"inplay"`
	TotalMatched decimal.Decimal `json:"totalMatched"`
	MarketType   string          `json:"marketType"`
	EventTypeID  TypeCode        `json:"eventTypeId"`
	Event        *RawEvent       `json:"event"`
	Competition  *RawCompetition `json:"competition"`
	Runners      []RawRunner     `json:"runners"`
}

// RawEvent describes the fixture a market belongs to
type RawEvent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CountryCode string `json:"countryCode"`
	Timezone    string `json:"timezone"`
	Venue       string `json:"venue"`
	OpenDate    string `json:"openDate"`
}

// RawCompetition is the upstream competition block
type RawCompetition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RawRunner is one selection with its exchange ladders
type RawRunner struct {
	SelectionID     int64           `json:"selectionId"`
	RunnerName      string          `json:"runnerName"`
	Status          string          `json:"status"`
	SortPriority    int             `json:"sortPriority"`
	Handicap        decimal.Decimal `json:"handicap"`
	LastPriceTraded decimal.Decimal `json:"lastPriceTraded"`
	TotalMatched    decimal.Decimal `json:"totalMatched"`
	Ex              *RawExchange    `json:"ex"`
}

// RawExchange holds the available-to-back and available-to-lay ladders
type RawExchange struct {
	AvailableToBack []RawPriceSize `json:"availableToBack"`
	AvailableToLay  []RawPriceSize `json:"availableToLay"`
}

// RawPriceSize is an upstream (price, size) pair
type RawPriceSize struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

// TypeCode is an upstream type identifier that may arrive as a JSON number or string
type TypeCode string

// UnmarshalJSON accepts 4, "4" and null
func (t *TypeCode) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = TypeCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = TypeCode(n.String())
	return nil
}
