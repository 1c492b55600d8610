package bot

import (
	"math/rand"

	"dudo/internal/domain"
)

// DecisionContext holds the state for one pass through the decision pipeline.
type DecisionContext struct {
	State   *domain.MatchState
	Seat    int
	Hand    []domain.Face
	Total   int
	Current *domain.Bid
	// Estimate is the bot's belief of how many dice match Current.
	Estimate int
	// Margin is the call margin in effect for this decision.
	Margin int
	// Action is set by the first rule that decides.
	Action Action
}

// DecisionRule represents a logic unit that may settle the decision.
type DecisionRule interface {
	Name() string
	Apply(ctx *DecisionContext)
}

// runPipeline applies rules in order until one decides. Call is the fallback.
func runPipeline(ctx *DecisionContext, rules ...DecisionRule) Action {
	for _, r := range rules {
		if ctx.Action != nil {
			break
		}
		r.Apply(ctx)
	}
	if ctx.Action == nil {
		return Call{}
	}
	return ctx.Action
}

// OpeningRule opens on the plain face the bot holds most of, counting aces.
type OpeningRule struct{}

func (r *OpeningRule) Name() string { return "Opening" }

func (r *OpeningRule) Apply(ctx *DecisionContext) {
	if ctx.Current != nil {
		return
	}
	ctx.Action = Raise{Bid: openingBid(ctx.Hand, ctx.Total)}
}

// CallRule calls when the standing bid is well beyond the estimate.
type CallRule struct{}

func (r *CallRule) Name() string { return "Call" }

func (r *CallRule) Apply(ctx *DecisionContext) {
	if ctx.Current == nil {
		return
	}
	if ctx.Current.Quantity > ctx.Estimate+ctx.Margin {
		ctx.Action = Call{}
	}
}

// SpotOnRule occasionally declares spot-on when the bid sits on the estimate.
type SpotOnRule struct {
	Window int
	Chance float64
	Rng    *rand.Rand
}

func (r *SpotOnRule) Name() string { return "SpotOn" }

func (r *SpotOnRule) Apply(ctx *DecisionContext) {
	if ctx.Current == nil || r.Rng == nil {
		return
	}
	diff := ctx.Estimate - ctx.Current.Quantity
	if diff < 0 {
		diff = -diff
	}
	if diff <= r.Window && r.Rng.Float64() < r.Chance {
		ctx.Action = SpotOn{}
	}
}

// MinimalRaiseRule raises by the smallest step the rules allow.
type MinimalRaiseRule struct{}

func (r *MinimalRaiseRule) Name() string { return "MinimalRaise" }

func (r *MinimalRaiseRule) Apply(ctx *DecisionContext) {
	if ctx.Current == nil {
		return
	}
	if bid, ok := minimalStep(*ctx.Current, ctx.Total); ok {
		ctx.Action = Raise{Bid: bid}
	}
}

// openingBid picks a conservative plain opening from hand.
func openingBid(hand []domain.Face, total int) domain.Bid {
	face := domain.MaxFace
	best := -1
	for f := domain.MaxFace; f > domain.Wild; f-- {
		n := domain.CountMatching([]*domain.Player{{Dice: hand, DiceCount: len(hand)}}, f)
		if n > best {
			best = n
			face = f
		}
	}

	qty := (total + 3) / 6 // round(total/6)
	if qty < 1 {
		qty = 1
	}
	if total > 0 && qty > total {
		qty = total
	}
	return domain.Bid{Quantity: qty, Face: face}
}

// minimalStep proposes the next bid in face-first order and verifies it,
// substituting the weakest legal raise when the proposal is rejected.
func minimalStep(current domain.Bid, total int) (domain.Bid, bool) {
	var candidate domain.Bid
	switch {
	case current.Quantity >= total:
		candidate = domain.Bid{Quantity: current.Quantity, Face: current.Face + 1}
	case current.IsWild():
		candidate = domain.Bid{Quantity: current.Quantity + 1, Face: domain.Wild}
	case current.Face < domain.MaxFace:
		candidate = domain.Bid{Quantity: current.Quantity, Face: current.Face + 1}
	default:
		candidate = domain.Bid{Quantity: current.Quantity + 1, Face: 2}
	}
	if domain.IsLegal(&current, candidate, total) {
		return candidate, true
	}
	return domain.MinimalRaise(&current, total)
}
