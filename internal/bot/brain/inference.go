package brain

import (
	"math"

	"dudo/internal/domain"
)

// MatchProbability is the chance a single unseen die counts toward a bid on face.
// Wild bids only match aces; plain bids match their face or an ace.
func MatchProbability(face domain.Face) float64 {
	if face.IsWild() {
		return 1.0 / 6.0
	}
	return 2.0 / 6.0
}

// Estimate is the expected number of matching dice among total unseen dice,
// rounded to the nearest integer.
func Estimate(total int, face domain.Face) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(total) * MatchProbability(face)))
}

// EstimateWithHand counts hand exactly and estimates the unknown dice.
func EstimateWithHand(hand []domain.Face, unknown int, face domain.Face) int {
	return CountInHand(hand, face) + Estimate(unknown, face)
}

// CountInHand counts dice in hand that match face under the wildcard rule.
func CountInHand(hand []domain.Face, face domain.Face) int {
	return domain.CountMatching([]*domain.Player{{Dice: hand, DiceCount: len(hand)}}, face)
}

// ProbabilityAtLeast returns P(X >= need) for X ~ Binomial(n, p).
func ProbabilityAtLeast(need, n int, p float64) float64 {
	if need <= 0 {
		return 1
	}
	if need > n {
		return 0
	}
	var sum float64
	for k := need; k <= n; k++ {
		sum += binomial(n, k) * math.Pow(p, float64(k)) * math.Pow(1-p, float64(n-k))
	}
	return math.Min(sum, 1)
}

// BidProbability is the chance bid holds given the bot's own hand and the
// number of dice it cannot see.
func BidProbability(bid domain.Bid, hand []domain.Face, unknown int) float64 {
	need := bid.Quantity - CountInHand(hand, bid.Face)
	return ProbabilityAtLeast(need, unknown, MatchProbability(bid.Face))
}

func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	r := 1.0
	for i := 1; i <= k; i++ {
		r = r * float64(n-k+i) / float64(i)
	}
	return r
}
