package brain

import (
	"testing"

	"dudo/internal/domain"
)

func TestGameMemory(t *testing.T) {
	m := NewMemory()

	if _, ok := m.BluffRate(0); ok {
		t.Fatal("unknown seat should have no bluff rate")
	}

	// Seat 0 bluffs twice and is caught by seat 1 both times.
	for i := 0; i < 2; i++ {
		m.ObserveCall(domain.CallOutcome{
			Bid:     domain.Bid{Quantity: 5, Face: 3},
			Caller:  1,
			Bidder:  0,
			Matched: 2,
			BidHeld: false,
			Loser:   0,
		})
	}

	rate, ok := m.BluffRate(0)
	if !ok || rate != 1 {
		t.Fatalf("BluffRate(0) = %v, %v; want 1, true", rate, ok)
	}
	if got := m.Profile(1).ChallengesWon; got != 2 {
		t.Errorf("seat 1 challenges won = %d, want 2", got)
	}

	// An exact spot-on proves the bid was true.
	m.ObserveSpotOn(domain.SpotOnOutcome{
		Bid:     domain.Bid{Quantity: 2, Face: 4},
		Caller:  1,
		Bidder:  0,
		Matched: 2,
		Exact:   true,
		Loser:   -1,
	})
	if rate, _ := m.BluffRate(0); rate >= 1 {
		t.Errorf("held bid should lower bluff rate, got %v", rate)
	}
	if m.Rounds != 3 {
		t.Errorf("Rounds = %d, want 3", m.Rounds)
	}

	m.Reset()
	if len(m.Opponents) != 0 || m.Rounds != 0 {
		t.Errorf("Reset left %d profiles and %d rounds", len(m.Opponents), m.Rounds)
	}
}
