package domain

import "math/rand"

// RollDice returns count fresh faces drawn from rng.
func RollDice(rng *rand.Rand, count int) []Face {
	if count <= 0 {
		return nil
	}
	out := make([]Face, count)
	for i := range out {
		out[i] = Face(rng.Intn(int(MaxFace)) + 1)
	}
	return out
}

// CountMatching returns how many dice held by non-eliminated players count
// toward a bid on face. Aces count for every plain face; a bid on aces counts
// only aces.
func CountMatching(players []*Player, face Face) int {
	n := 0
	for _, p := range players {
		if p == nil || p.Eliminated {
			continue
		}
		n += countInHand(p.Dice, face)
	}
	return n
}

func countInHand(dice []Face, face Face) int {
	n := 0
	for _, d := range dice {
		if d == face || (!face.IsWild() && d.IsWild()) {
			n++
		}
	}
	return n
}

// TotalDice returns the dice held by every non-eliminated player.
func TotalDice(players []*Player) int {
	n := 0
	for _, p := range players {
		if p == nil || p.Eliminated {
			continue
		}
		n += p.DiceCount
	}
	return n
}
