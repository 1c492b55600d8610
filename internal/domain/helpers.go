package domain

// ActivePlayers returns the players still holding dice, in seat order.
func ActivePlayers(s *MatchState) []*Player {
	out := make([]*Player, 0, len(s.Players))
	for _, p := range s.Players {
		if !p.Eliminated {
			out = append(out, p)
		}
	}
	return out
}

// IsOver reports whether at most one player still holds dice.
func IsOver(s *MatchState) bool {
	return len(ActivePlayers(s)) <= 1
}

// Winner returns the sole remaining player. ok is false while the match is
// still contested.
func Winner(s *MatchState) (*Player, bool) {
	active := ActivePlayers(s)
	if len(active) != 1 {
		return nil, false
	}
	return active[0], true
}

// SeatOf returns the seat index of the player with id, or -1.
func SeatOf(s *MatchState, id string) int {
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}
