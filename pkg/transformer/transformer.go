package transformer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/odds-gateway-service/internal/models"
)

// Market name buckets, evaluated in this order
const (
	MatchOddsName     = "Match Odds"
	TiedMatchName     = "Tied Match"
	overUnderFragment = "Over/Under"
	setFragment       = "Set"
	gameFragment      = "Game"
)

// Transformer maps raw upstream payloads into the normalized match tree.
// It holds no state besides its logger; the same input always yields the same output.
type Transformer struct {
	logger zerolog.Logger
}

// NewTransformer creates a new payload transformer
func NewTransformer(logger zerolog.Logger) *Transformer {
	return &Transformer{
		logger: logger.With().Str("component", "transformer").Logger(),
	}
}

// TransformSportData groups markets by event into matches and competitions
func (t *Transformer) TransformSportData(raw *models.RawPayload, sport string) (out models.SportPayload) {
	if raw == nil || raw.Result == nil {
		return models.SportPayload{Success: false, Message: "No data received from provider", Sport: sport}
	}

	defer func() {
		if r := recover(); r != nil {
			t.logger.Error().
				Str("sport", sport).
				Interface("panic", r).
				Msg("sport transform failed")
			out = models.SportPayload{
				Success: false,
				Message: fmt.Sprintf("Error transforming sport data: %v", r),
				Sport:   sport,
			}
		}
	}()

	matches := make([]*models.Match, 0)
	matchIndex := make(map[string]*models.Match)
	competitions := make([]*models.Competition, 0)
	competitionIndex := make(map[string]*models.Competition)
	dropped := 0

	for _, rm := range raw.Result {
		if rm.Event == nil || rm.Event.ID == "" {
			dropped++
			continue
		}

		match, ok := matchIndex[rm.Event.ID]
		if !ok {
			match = newMatch(rm, sport)
			matchIndex[rm.Event.ID] = match
			matches = append(matches, match)

			if rm.Competition != nil && rm.Competition.ID != "" {
				comp, seen := competitionIndex[rm.Competition.ID]
				if !seen {
					comp = &models.Competition{
						ID:      rm.Competition.ID,
						Name:    rm.Competition.Name,
						Matches: make([]string, 0),
					}
					competitionIndex[rm.Competition.ID] = comp
					competitions = append(competitions, comp)
				}
				comp.Matches = append(comp.Matches, match.ID)
			}
		}

		if market := t.TransformMarket(rm); market != nil {
			match.Markets = append(match.Markets, *market)
			if market.InPlay {
				match.InPlay = true
			}
		}
	}

	sort.Slice(competitions, func(i, j int) bool {
		a, b := strings.ToLower(competitions[i].Name), strings.ToLower(competitions[j].Name)
		if a != b {
			return a < b
		}
		return competitions[i].ID < competitions[j].ID
	})

	out = models.SportPayload{
		Success:      true,
		Sport:        sport,
		Competitions: make([]models.Competition, 0, len(competitions)),
		Matches:      make([]models.Match, 0, len(matches)),
	}
	for _, c := range competitions {
		out.Competitions = append(out.Competitions, *c)
	}
	for _, m := range matches {
		out.Matches = append(out.Matches, *m)
	}

	t.logger.Debug().
		Str("sport", sport).
		Int("markets", len(raw.Result)).
		Int("dropped", dropped).
		Int("matches", len(out.Matches)).
		Int("competitions", len(out.Competitions)).
		Msg("transformed sport data")

	return out
}

// TransformEventData builds the event view: canonical event, all markets, and name buckets
func (t *Transformer) TransformEventData(raw *models.RawPayload, sport string) (out models.EventPayload) {
	if raw == nil || raw.Result == nil {
		return models.EventPayload{Success: false, Message: "No data received from provider", Sport: sport}
	}
	if len(raw.Result) == 0 || raw.Result[0].Event == nil {
		return models.EventPayload{Success: false, Message: "No event data found", Sport: sport}
	}

	defer func() {
		if r := recover(); r != nil {
			t.logger.Error().
				Str("sport", sport).
				Interface("panic", r).
				Msg("event transform failed")
			out = models.EventPayload{
				Success: false,
				Message: fmt.Sprintf("Error transforming event data: %v", r),
				Sport:   sport,
			}
		}
	}()

	event := newMatch(raw.Result[0], sport)

	out = models.EventPayload{
		Success:          true,
		Sport:            sport,
		Event:            event,
		Markets:          make([]models.Market, 0, len(raw.Result)),
		MatchOddsMarkets: make([]models.Market, 0),
		TiedMatchMarkets: make([]models.Market, 0),
		OverUnderMarkets: make([]models.Market, 0),
		SetMarkets:       make([]models.Market, 0),
		GameMarkets:      make([]models.Market, 0),
		OtherMarkets:     make([]models.Market, 0),
	}

	for _, rm := range raw.Result {
		market := t.TransformMarket(rm)
		if market == nil {
			continue
		}
		out.Markets = append(out.Markets, *market)
		if market.InPlay {
			event.InPlay = true
		}

		switch Bucket(market.Name) {
		case BucketMatchOdds:
			out.MatchOddsMarkets = append(out.MatchOddsMarkets, *market)
		case BucketTiedMatch:
			out.TiedMatchMarkets = append(out.TiedMatchMarkets, *market)
		case BucketOverUnder:
			out.OverUnderMarkets = append(out.OverUnderMarkets, *market)
		case BucketSet:
			out.SetMarkets = append(out.SetMarkets, *market)
		case BucketGame:
			out.GameMarkets = append(out.GameMarkets, *market)
		default:
			out.OtherMarkets = append(out.OtherMarkets, *market)
		}
	}

	return out
}

// TransformMarket maps a raw market. It returns nil when the record has no runners field.
func (t *Transformer) TransformMarket(rm models.RawMarket) *models.Market {
	if rm.Runners == nil {
		return nil
	}

	market := &models.Market{
		ID:           rm.MarketID,
		Name:         rm.MarketName,
		Status:       rm.Status,
		InPlay:       rm.Inplay,
		TotalMatched: rm.TotalMatched,
		MarketType:   rm.MarketType,
		Sport:        models.SportTagForType(string(rm.EventTypeID)),
		Runners:      make([]models.Runner, 0, len(rm.Runners)),
	}

	for _, rr := range rm.Runners {
		runner := models.Runner{
			ID:              rr.SelectionID,
			Name:            rr.RunnerName,
			Status:          rr.Status,
			SortPriority:    rr.SortPriority,
			Handicap:        rr.Handicap,
			LastPriceTraded: rr.LastPriceTraded,
			TotalMatched:    rr.TotalMatched,
			Back:            []models.PriceLevel{},
			Lay:             []models.PriceLevel{},
		}
		if rr.Ex != nil {
			runner.Back = priceLevels(rr.Ex.AvailableToBack)
			runner.Lay = priceLevels(rr.Ex.AvailableToLay)
		}
		market.Runners = append(market.Runners, runner)
	}

	return market
}

// MarketBucket is the category a market is filed under in the event view
type MarketBucket int

const (
	BucketOther MarketBucket = iota
	BucketMatchOdds
	BucketTiedMatch
	BucketOverUnder
	BucketSet
	BucketGame
)

// Bucket assigns a market name to exactly one category
func Bucket(name string) MarketBucket {
	switch {
	case name == MatchOddsName:
		return BucketMatchOdds
	case name == TiedMatchName:
		return BucketTiedMatch
	case strings.Contains(name, overUnderFragment):
		return BucketOverUnder
	case strings.Contains(name, setFragment):
		return BucketSet
	case strings.Contains(name, gameFragment):
		return BucketGame
	default:
		return BucketOther
	}
}

// ParseStartTime converts an upstream open date to epoch millis, 0 when unparseable
func ParseStartTime(openDate string) int64 {
	if openDate == "" {
		return 0
	}
	ts, err := time.Parse(time.RFC3339, openDate)
	if err != nil {
		return 0
	}
	return ts.UnixMilli()
}

func newMatch(rm models.RawMarket, sport string) *models.Match {
	match := &models.Match{
		ID:        rm.Event.ID,
		Name:      rm.Event.Name,
		Venue:     rm.Event.Venue,
		StartTime: ParseStartTime(rm.Event.OpenDate),
		Sport:     sport,
		Markets:   make([]models.Market, 0),
	}
	if rm.Competition != nil && rm.Competition.ID != "" {
		id, name := rm.Competition.ID, rm.Competition.Name
		match.CompetitionID = &id
		match.CompetitionName = &name
	}
	return match
}

func priceLevels(raw []models.RawPriceSize) []models.PriceLevel {
	levels := make([]models.PriceLevel, 0, len(raw))
	for _, ps := range raw {
		levels = append(levels, models.PriceLevel{Price: ps.Price, Size: ps.Size})
	}
	return levels
}
