package bot

import (
	"math/rand"

	"dudo/internal/bot/brain"
	"dudo/internal/domain"
)

// SmartBot counts its own dice exactly, remembers who has been caught
// bluffing, and raises onto faces its hand supports.
type SmartBot struct {
	Tuning Tuning
	Rng    *rand.Rand
	Memory *brain.GameMemory
}

func (b *SmartBot) Decide(state *domain.MatchState, seat int) Action {
	player := seatPlayer(state, seat)
	if player == nil {
		return Call{}
	}
	if b.Memory == nil {
		b.Memory = brain.NewMemory()
	}

	total := state.TotalDice()
	unknown := total - len(player.Dice)
	ctx := &DecisionContext{
		State:   state,
		Seat:    seat,
		Hand:    player.Dice,
		Total:   total,
		Current: state.CurrentBid,
		Margin:  b.Tuning.CallMargin,
	}
	if ctx.Current != nil {
		ctx.Estimate = brain.EstimateWithHand(player.Dice, unknown, ctx.Current.Face)
		if rate, ok := b.Memory.BluffRate(state.LastBidder); ok && rate > smartBluffRate && ctx.Margin > 0 {
			ctx.Margin--
		}
	}

	return runPipeline(ctx,
		&OpeningRule{},
		&CallRule{},
		&SpotOnRule{Window: b.Tuning.SpotOnWindow, Chance: b.Tuning.SpotOnChance, Rng: b.Rng},
		&SupportedRaiseRule{Unknown: unknown},
		&MinimalRaiseRule{},
	)
}

func (b *SmartBot) OnEvent(event any) {
	if b.Memory == nil {
		b.Memory = brain.NewMemory()
	}
	switch ev := event.(type) {
	case domain.CallOutcome:
		b.Memory.ObserveCall(ev)
	case domain.SpotOnOutcome:
		b.Memory.ObserveSpotOn(ev)
	}
}

// SupportedRaiseRule picks, among raises costing at most one extra die, the
// one most likely to hold given the bot's hand.
type SupportedRaiseRule struct {
	Unknown int
}

func (r *SupportedRaiseRule) Name() string { return "SupportedRaise" }

func (r *SupportedRaiseRule) Apply(ctx *DecisionContext) {
	if ctx.Current == nil {
		return
	}

	var (
		best     domain.Bid
		bestProb = -1.0
	)
	for _, raise := range domain.LegalRaises(ctx.Current, ctx.Total) {
		if raise.Quantity > ctx.Current.Quantity+1 && !raise.IsWild() {
			continue
		}
		if raise.IsWild() && 2*raise.Quantity > ctx.Current.Quantity+1 {
			continue
		}
		// LegalRaises is weakest first, so strict improvement keeps the cheaper bid.
		if p := brain.BidProbability(raise, ctx.Hand, r.Unknown); p > bestProb {
			best, bestProb = raise, p
		}
	}
	if bestProb >= 0 {
		ctx.Action = Raise{Bid: best}
	}
}
