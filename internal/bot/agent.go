package bot

import (
	"errors"
	"math/rand"

	"dudo/internal/domain"
)

var (
	ErrNotSeated  = errors.New("agent is not seated in this match")
	ErrNotMyTurn  = errors.New("not the agent's turn")
	ErrNoStrategy = errors.New("agent has no strategy")
)

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// NewAgent builds an agent for identity using the identity's difficulty.
func NewAgent(identity BotIdentity, tuning Tuning, rng *rand.Rand) (*Agent, error) {
	brain, err := NewBrain(identity.Level(), tuning, rng)
	if err != nil {
		return nil, err
	}
	return &Agent{
		ID:       identity.UserID,
		Name:     identity.Name(),
		Strategy: brain,
	}, nil
}

// Play asks the agent for its action. It fails unless the round is active and
// the agent holds the turn.
func (a *Agent) Play(state *domain.MatchState) (Action, error) {
	if a.Strategy == nil {
		return nil, ErrNoStrategy
	}
	seat := domain.SeatOf(state, a.ID)
	if seat < 0 {
		return nil, ErrNotSeated
	}
	if !state.RoundActive() {
		return nil, domain.ErrRoundNotActive
	}
	if state.CurrentTurn != seat {
		return nil, ErrNotMyTurn
	}
	return a.Strategy.Decide(state, seat), nil
}

// OnGameEvent notifies the agent of a revealed outcome.
func (a *Agent) OnGameEvent(event any) {
	if a.Strategy != nil {
		a.Strategy.OnEvent(event)
	}
}
