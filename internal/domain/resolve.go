package domain

import (
	"fmt"
	"strings"
)

// CallOutcome describes a resolved Call.
type CallOutcome struct {
	Bid     Bid
	Caller  int
	Bidder  int
	Matched int
	// BidHeld is true when Matched >= Bid.Quantity; the caller then loses a die.
	BidHeld    bool
	Loser      int
	Eliminated bool
	Opener     int // seat opening the next round
	Revealed   [][]Face
}

// SpotOnOutcome describes a resolved Spot-On.
type SpotOnOutcome struct {
	Bid     Bid
	Caller  int
	Bidder  int
	Matched int
	// Exact is true when Matched == Bid.Quantity; nobody loses a die.
	Exact      bool
	Loser      int // -1 when Exact
	Eliminated bool
	Opener     int
	Revealed   [][]Face
}

// ResolveCall settles a challenge by the current turn holder against the
// standing bid. The losing side gives up one die and opens the next round.
func ResolveCall(s *MatchState) (CallOutcome, error) {
	if err := challengeable(s); err != nil {
		return CallOutcome{}, err
	}

	bid := *s.CurrentBid
	out := CallOutcome{
		Bid:      bid,
		Caller:   s.CurrentTurn,
		Bidder:   s.LastBidder,
		Matched:  CountMatching(s.Players, bid.Face),
		Revealed: reveal(s),
	}
	out.BidHeld = out.Matched >= bid.Quantity
	if out.BidHeld {
		out.Loser = out.Caller
	} else {
		out.Loser = out.Bidder
	}

	verdict := "bid was false"
	if out.BidHeld {
		verdict = "bid held"
	}
	out.Eliminated = s.LoseDie(out.Loser)
	s.EndRound(out.Loser)
	out.Opener = s.CurrentTurn

	s.Log.Append(fmt.Sprintf("%s calls %s. %s. %d matched: %s, %s loses a die%s",
		s.Players[out.Caller].Name, bid, revealSummary(s, out.Revealed), out.Matched,
		verdict, s.Players[out.Loser].Name, eliminatedSuffix(out.Eliminated)))
	return out, nil
}

// ResolveSpotOn settles a claim by the current turn holder that the standing
// bid is exactly right. An exact count costs nobody a die and the bidder opens
// next; otherwise the caller loses a die and opens next.
func ResolveSpotOn(s *MatchState) (SpotOnOutcome, error) {
	if err := challengeable(s); err != nil {
		return SpotOnOutcome{}, err
	}

	bid := *s.CurrentBid
	out := SpotOnOutcome{
		Bid:      bid,
		Caller:   s.CurrentTurn,
		Bidder:   s.LastBidder,
		Matched:  CountMatching(s.Players, bid.Face),
		Loser:    -1,
		Revealed: reveal(s),
	}
	out.Exact = out.Matched == bid.Quantity

	var verdict string
	if out.Exact {
		s.EndRound(out.Bidder)
		verdict = "exact, round cancelled with no die lost"
	} else {
		out.Loser = out.Caller
		out.Eliminated = s.LoseDie(out.Loser)
		s.EndRound(out.Loser)
		verdict = fmt.Sprintf("missed, %s loses a die%s", s.Players[out.Loser].Name, eliminatedSuffix(out.Eliminated))
	}
	out.Opener = s.CurrentTurn

	s.Log.Append(fmt.Sprintf("%s declares spot-on at %s. %s. %d matched: %s",
		s.Players[out.Caller].Name, bid, revealSummary(s, out.Revealed), out.Matched, verdict))
	return out, nil
}

func challengeable(s *MatchState) error {
	if s.CurrentBid == nil {
		return ErrNoActiveBid
	}
	if !s.RoundActive() {
		return ErrRoundNotActive
	}
	return nil
}

// reveal snapshots every seat's dice before any die is removed.
func reveal(s *MatchState) [][]Face {
	out := make([][]Face, len(s.Players))
	for i, p := range s.Players {
		if p.Eliminated {
			continue
		}
		out[i] = append([]Face(nil), p.Dice...)
	}
	return out
}

func revealSummary(s *MatchState, revealed [][]Face) string {
	parts := make([]string, 0, len(revealed))
	for i, dice := range revealed {
		if len(dice) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %v", s.Players[i].Name, faceInts(dice)))
	}
	return "Revealed " + strings.Join(parts, ", ")
}

func faceInts(dice []Face) []int {
	out := make([]int, len(dice))
	for i, d := range dice {
		out[i] = int(d)
	}
	return out
}

func eliminatedSuffix(eliminated bool) string {
	if eliminated {
		return " and is eliminated"
	}
	return ""
}
