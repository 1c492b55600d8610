package domain

import (
	"fmt"
	"math/rand"
)

// MinPlayers and MaxPlayers bound the table size.
const (
	MinPlayers = 2
	MaxPlayers = 6
)

// Seat describes a player joining a new match.
type Seat struct {
	ID        string
	Name      string
	Automated bool
}

// NewMatchState seats the players in order, each holding startingDice dice.
// No dice are rolled until the first round starts.
func NewMatchState(id string, seats []Seat, startingDice, logCapacity int) (*MatchState, error) {
	if len(seats) < MinPlayers || len(seats) > MaxPlayers {
		return nil, fmt.Errorf("match needs %d-%d players, got %d", MinPlayers, MaxPlayers, len(seats))
	}
	if startingDice <= 0 {
		return nil, fmt.Errorf("starting dice must be positive, got %d", startingDice)
	}

	players := make([]*Player, len(seats))
	for i, s := range seats {
		name := s.Name
		if name == "" {
			name = s.ID
		}
		players[i] = &Player{
			ID:        s.ID,
			Name:      name,
			Seat:      i,
			DiceCount: startingDice,
			Automated: s.Automated,
		}
	}

	return &MatchState{
		ID:           id,
		Phase:        PhaseWaiting,
		Players:      players,
		StartingDice: startingDice,
		LastBidder:   -1,
		Log:          NewEventLog(logCapacity),
	}, nil
}

// RoundActive reports whether bids and challenges are currently accepted.
func (s *MatchState) RoundActive() bool {
	return s.Phase == PhaseBidding
}

// CurrentPlayer returns the player who must act next.
func (s *MatchState) CurrentPlayer() *Player {
	if s.CurrentTurn < 0 || s.CurrentTurn >= len(s.Players) {
		return nil
	}
	return s.Players[s.CurrentTurn]
}

// TotalDice is the table maximum: dice held by every non-eliminated player.
func (s *MatchState) TotalDice() int {
	return TotalDice(s.Players)
}

// BeginRound re-rolls every non-eliminated player's dice wholesale and clears
// the bid. Eliminated players are never rolled for. A re-roll before the
// first bid keeps the round number.
func (s *MatchState) BeginRound(rng *rand.Rand) {
	if s.Phase != PhaseBidding {
		s.Round++
	}
	for _, p := range s.Players {
		if p.Eliminated {
			p.Dice = nil
			continue
		}
		p.Dice = RollDice(rng, p.DiceCount)
	}
	s.CurrentBid = nil
	s.LastBidder = -1
	s.Phase = PhaseBidding

	// The opener may have been eliminated since the previous round ended.
	if p := s.CurrentPlayer(); p == nil || p.Eliminated {
		s.CurrentTurn = s.NextActiveSeat(s.CurrentTurn)
	}
}

// SetBid records bid as made by the current turn holder and passes the turn on.
func (s *MatchState) SetBid(bid Bid) {
	b := bid
	s.CurrentBid = &b
	s.LastBidder = s.CurrentTurn
	s.CurrentTurn = s.NextActiveSeat(s.CurrentTurn)
}

// LoseDie removes one die from seat and reports whether that eliminated it.
func (s *MatchState) LoseDie(seat int) bool {
	p := s.Players[seat]
	if p.DiceCount == 0 {
		return p.Eliminated
	}
	p.DiceCount--
	if len(p.Dice) > p.DiceCount {
		p.Dice = p.Dice[:p.DiceCount]
	}
	if p.DiceCount == 0 {
		p.Eliminated = true
		p.Dice = nil
	}
	return p.Eliminated
}

// EndRound closes the round and hands the next opening bid to opener, or to the
// next seat still in play when opener has been eliminated.
func (s *MatchState) EndRound(opener int) {
	if s.Players[opener].Eliminated {
		opener = s.NextActiveSeat(opener)
	}
	s.CurrentTurn = opener
	if IsOver(s) {
		s.Phase = PhaseEnded
		return
	}
	s.Phase = PhaseWaiting
}

// NextActiveSeat returns the first non-eliminated seat after from, wrapping.
// It returns from when no other seat is in play.
func (s *MatchState) NextActiveSeat(from int) int {
	n := len(s.Players)
	for step := 1; step <= n; step++ {
		seat := ((from+step)%n + n) % n
		if !s.Players[seat].Eliminated {
			return seat
		}
	}
	return from
}
