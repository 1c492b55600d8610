package bot

import (
	"math/rand"

	"dudo/internal/bot/brain"
	"dudo/internal/domain"
)

// StandardBot estimates from the table size alone and never looks at its own
// dice beyond choosing an opening face.
type StandardBot struct {
	Tuning Tuning
	Rng    *rand.Rand
}

func (b *StandardBot) Decide(state *domain.MatchState, seat int) Action {
	player := seatPlayer(state, seat)
	if player == nil {
		return Call{}
	}

	total := state.TotalDice()
	ctx := &DecisionContext{
		State:   state,
		Seat:    seat,
		Hand:    player.Dice,
		Total:   total,
		Current: state.CurrentBid,
		Margin:  b.Tuning.CallMargin,
	}
	if ctx.Current != nil {
		ctx.Estimate = brain.Estimate(total, ctx.Current.Face)
	}

	return runPipeline(ctx,
		&OpeningRule{},
		&CallRule{},
		&SpotOnRule{Window: b.Tuning.SpotOnWindow, Chance: b.Tuning.SpotOnChance, Rng: b.Rng},
		&MinimalRaiseRule{},
	)
}

func (b *StandardBot) OnEvent(event any) {}

func seatPlayer(state *domain.MatchState, seat int) *domain.Player {
	if state == nil || seat < 0 || seat >= len(state.Players) {
		return nil
	}
	p := state.Players[seat]
	if p.Eliminated {
		return nil
	}
	return p
}
