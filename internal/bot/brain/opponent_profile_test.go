package brain

import "testing"

func TestOpponentProfile_BluffRate(t *testing.T) {
	p := NewOpponentProfile(1)

	p.RecordChallengedBid(false)
	if _, ok := p.BluffRate(); ok {
		t.Fatal("one sample should not be trusted")
	}

	p.RecordChallengedBid(true)
	rate, ok := p.BluffRate()
	if !ok || rate != 0.5 {
		t.Errorf("BluffRate() = %v, %v; want 0.5, true", rate, ok)
	}

	p.RecordChallenge(true)
	p.RecordChallenge(false)
	if p.Challenges != 2 || p.ChallengesWon != 1 {
		t.Errorf("challenges = %d won %d, want 2 won 1", p.Challenges, p.ChallengesWon)
	}
}
