package brain

// minChallengeSamples is how many challenged bids are needed before a bluff
// rate is trusted.
const minChallengeSamples = 2

// OpponentProfile tracks the bidding history of a specific seat.
type OpponentProfile struct {
	Seat int
	// BidsChallenged counts this seat's bids that were called or spot-on'd.
	BidsChallenged int
	// BidsFalse counts challenged bids that turned out short.
	BidsFalse int
	// Challenges counts calls and spot-ons this seat made.
	Challenges int
	// ChallengesWon counts challenges that cost somebody else the die.
	ChallengesWon int
}

// NewOpponentProfile initializes a profile for a specific seat.
func NewOpponentProfile(seat int) *OpponentProfile {
	return &OpponentProfile{Seat: seat}
}

// RecordChallengedBid logs the truth of one of this seat's bids once revealed.
func (p *OpponentProfile) RecordChallengedBid(held bool) {
	p.BidsChallenged++
	if !held {
		p.BidsFalse++
	}
}

// RecordChallenge logs a call or spot-on this seat made.
func (p *OpponentProfile) RecordChallenge(won bool) {
	p.Challenges++
	if won {
		p.ChallengesWon++
	}
}

// BluffRate is the share of this seat's challenged bids that were false.
// ok is false until enough bids have been revealed.
func (p *OpponentProfile) BluffRate() (rate float64, ok bool) {
	if p.BidsChallenged < minChallengeSamples {
		return 0, false
	}
	return float64(p.BidsFalse) / float64(p.BidsChallenged), true
}
