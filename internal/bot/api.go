package bot

import (
	"dudo/internal/domain"
)

// Action is the decision made by the AI. It is one of Raise, Call or SpotOn.
type Action interface {
	isAction()
}

// Raise places Bid.
type Raise struct {
	Bid domain.Bid
}

// Call challenges the standing bid.
type Call struct{}

// SpotOn claims the standing bid is exactly right.
type SpotOn struct{}

func (Raise) isAction()  {}
func (Call) isAction()   {}
func (SpotOn) isAction() {}

func (r Raise) String() string { return "bid " + r.Bid.String() }
func (Call) String() string    { return "call" }
func (SpotOn) String() string  { return "spot-on" }

// Brain is the interface that all bot strategies must implement.
// Decide reads state but never mutates it.
type Brain interface {
	Decide(state *domain.MatchState, seat int) Action
	// OnEvent receives revealed outcomes (domain.CallOutcome, domain.SpotOnOutcome).
	OnEvent(event any)
}
