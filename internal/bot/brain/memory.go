package brain

import (
	"dudo/internal/domain"
)

// GameMemory stores the bot's private view of how the table has played.
// Only revealed information is recorded: bids and their outcomes once called.
type GameMemory struct {
	// Opponents tracks behavioral profiles by seat index.
	Opponents map[int]*OpponentProfile
	// Rounds counts resolutions observed.
	Rounds int
}

// NewMemory initializes a fresh memory state.
func NewMemory() *GameMemory {
	return &GameMemory{
		Opponents: make(map[int]*OpponentProfile),
	}
}

// Reset clears the memory for a new match.
func (m *GameMemory) Reset() {
	m.Opponents = make(map[int]*OpponentProfile)
	m.Rounds = 0
}

// Profile returns the profile for seat, creating it on first use.
func (m *GameMemory) Profile(seat int) *OpponentProfile {
	p, ok := m.Opponents[seat]
	if !ok {
		p = NewOpponentProfile(seat)
		m.Opponents[seat] = p
	}
	return p
}

// ObserveCall records a resolved call.
func (m *GameMemory) ObserveCall(out domain.CallOutcome) {
	m.Rounds++
	if out.Bidder >= 0 {
		m.Profile(out.Bidder).RecordChallengedBid(out.BidHeld)
	}
	m.Profile(out.Caller).RecordChallenge(!out.BidHeld)
}

// ObserveSpotOn records a resolved spot-on. A missed spot-on says nothing
// about whether the bid was a bluff, so only exact hits and shortfalls count.
func (m *GameMemory) ObserveSpotOn(out domain.SpotOnOutcome) {
	m.Rounds++
	if out.Bidder >= 0 {
		m.Profile(out.Bidder).RecordChallengedBid(out.Matched >= out.Bid.Quantity)
	}
	m.Profile(out.Caller).RecordChallenge(out.Exact)
}

// BluffRate returns the observed bluff rate of seat, if trusted.
func (m *GameMemory) BluffRate(seat int) (float64, bool) {
	p, ok := m.Opponents[seat]
	if !ok {
		return 0, false
	}
	return p.BluffRate()
}
