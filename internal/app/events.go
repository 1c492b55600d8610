package app

import "dudo/internal/domain"

// EventKind identifies emitted domain events for driver dispatch.
type EventKind string

const (
	EventRoundStarted   EventKind = "round_started"
	EventDiceRolled     EventKind = "dice_rolled"
	EventBidPlaced      EventKind = "bid_placed"
	EventCallResolved   EventKind = "call_resolved"
	EventSpotOnResolved EventKind = "spot_on_resolved"
	EventGameEnded      EventKind = "game_ended"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

// Observation returns the revealed outcome carried by a resolution event,
// suitable for bot.Agent.OnGameEvent. ok is false for other events.
func (e Event) Observation() (any, bool) {
	switch p := e.Payload.(type) {
	case CallResolvedPayload:
		return p.Outcome, true
	case SpotOnResolvedPayload:
		return p.Outcome, true
	default:
		return nil, false
	}
}

type RoundStartedPayload struct {
	Round        int
	OpenerUserID string
	OpenerSeat   int
	DiceCounts   []int // by seat
	TotalDice    int
}

type DiceRolledPayload struct {
	UserID string
	Seat   int
	Dice   []domain.Face
}

type BidPlacedPayload struct {
	UserID         string
	Seat           int
	Bid            domain.Bid
	NextTurnUserID string
	NextTurnSeat   int
}

type CallResolvedPayload struct {
	Outcome domain.CallOutcome
	Receipt string // signed token, empty when receipts are disabled
}

type SpotOnResolvedPayload struct {
	Outcome domain.SpotOnOutcome
	Receipt string
}

type GameEndedPayload struct {
	WinnerUserID string
	WinnerSeat   int
	Rounds       int
}
