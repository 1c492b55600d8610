package domain

// Phase represents the lifecycle stage of a Dudo match.
type Phase string

const (
	// PhaseWaiting is the state between rounds: dice are hidden or not yet rolled.
	PhaseWaiting Phase = "waiting"
	// PhaseBidding is an active round where bids, calls and spot-ons are accepted.
	PhaseBidding Phase = "bidding"
	// PhaseEnded is the state after a single player remains.
	PhaseEnded Phase = "ended"
)

// Player holds state for a participant in the match.
type Player struct {
	ID   string
	Name string
	Seat int // 0-based position in MatchState.Players

	Dice      []Face // this round's hidden dice, len == DiceCount once rolled
	DiceCount int

	Automated  bool // seat is played by a bot
	Eliminated bool // DiceCount reached zero
}

// MatchState holds authoritative state for a single Dudo match.
type MatchState struct {
	ID    string
	Phase Phase
	Round int // 1-based, incremented by each round start

	Players      []*Player // fixed membership, seat order
	StartingDice int

	// Bid tracking; CurrentBid is nil until the round's opening bid.
	CurrentBid *Bid
	LastBidder int // seat of the player who made CurrentBid, -1 when none

	CurrentTurn int // seat that must act next

	Log *EventLog
}
