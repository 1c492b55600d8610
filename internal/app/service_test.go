package app

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"testing"

	otelcodes "go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"dudo/internal/bot"
	"dudo/internal/config"
	"dudo/internal/domain"
)

func newTestService(seed int64, opts ...Option) *Service {
	opts = append([]Option{WithConfig(config.GameConfig{StartingDice: 5})}, opts...)
	return NewService(rand.New(rand.NewSource(seed)), opts...)
}

func newTwoPlayerMatch(t *testing.T, svc *Service) *domain.MatchState {
	t.Helper()
	state, err := svc.NewMatch(context.Background(), []PlayerSpec{
		{ID: "u1", Name: "Ana"},
		{ID: "u2", Name: "Bo", Automated: true},
	}, 0)
	if err != nil {
		t.Fatalf("new match error: %v", err)
	}
	return state
}

func TestNewMatchDefaults(t *testing.T) {
	svc := newTestService(1)
	state, err := svc.NewMatch(context.Background(), []PlayerSpec{{Name: "x"}, {Name: "y"}}, 0)
	if err != nil {
		t.Fatalf("new match error: %v", err)
	}
	if state.ID == "" || state.Players[0].ID == "" || state.Players[0].ID == state.Players[1].ID {
		t.Fatalf("expected generated ids, got match %q players %q %q", state.ID, state.Players[0].ID, state.Players[1].ID)
	}
	if state.Players[0].DiceCount != 5 {
		t.Fatalf("dice count = %d, want configured default 5", state.Players[0].DiceCount)
	}
	if state.Phase != domain.PhaseWaiting {
		t.Fatalf("phase = %s, want waiting", state.Phase)
	}

	if _, err := svc.NewMatch(context.Background(), []PlayerSpec{{ID: "solo"}}, 5); err == nil {
		t.Fatal("a single player should be rejected")
	}
}

func TestStartRoundDealsPrivateDice(t *testing.T) {
	svc := newTestService(42)
	state := newTwoPlayerMatch(t, svc)

	evs, err := svc.StartRound(context.Background(), state)
	if err != nil {
		t.Fatalf("start round error: %v", err)
	}
	if !state.RoundActive() || state.CurrentBid != nil || state.Round != 1 {
		t.Fatalf("round not opened: phase %s bid %v round %d", state.Phase, state.CurrentBid, state.Round)
	}

	diceEvents := 0
	for _, ev := range evs {
		switch ev.Kind {
		case EventRoundStarted:
			payload := ev.Payload.(RoundStartedPayload)
			if payload.TotalDice != 10 || payload.OpenerUserID != "u1" {
				t.Fatalf("round started payload = %+v", payload)
			}
		case EventDiceRolled:
			diceEvents++
			payload := ev.Payload.(DiceRolledPayload)
			if len(payload.Dice) != 5 {
				t.Fatalf("dice = %d, want 5", len(payload.Dice))
			}
			if len(ev.Recipients) != 1 || ev.Recipients[0] != payload.UserID {
				t.Fatalf("dice event should be private to %s, recipients %v", payload.UserID, ev.Recipients)
			}
		}
	}
	if diceEvents != 2 {
		t.Fatalf("dice events = %d, want 2", diceEvents)
	}
	if state.Log.Len() != 1 {
		t.Fatalf("log entries = %d, want 1", state.Log.Len())
	}
}

func TestStartRoundRerollsUntilFirstBid(t *testing.T) {
	svc := newTestService(7)
	state := newTwoPlayerMatch(t, svc)
	ctx := context.Background()

	if _, err := svc.StartRound(ctx, state); err != nil {
		t.Fatalf("start round error: %v", err)
	}
	first := [][]domain.Face{
		append([]domain.Face(nil), state.Players[0].Dice...),
		append([]domain.Face(nil), state.Players[1].Dice...),
	}

	if _, err := svc.StartRound(ctx, state); err != nil {
		t.Fatalf("second start round error: %v", err)
	}
	second := [][]domain.Face{state.Players[0].Dice, state.Players[1].Dice}
	if reflect.DeepEqual(first, second) {
		t.Fatalf("repeated start kept the same dice %v", first)
	}
	if state.Round != 1 {
		t.Fatalf("round after reroll = %d, want 1", state.Round)
	}
	for i, p := range state.Players {
		if p.DiceCount != 5 || len(p.Dice) != 5 {
			t.Fatalf("player %d holds %d/%d dice after reroll", i, len(p.Dice), p.DiceCount)
		}
	}

	if _, err := svc.PlaceBid(ctx, state, 2, 3); err != nil {
		t.Fatalf("place bid error: %v", err)
	}
	if _, err := svc.StartRound(ctx, state); !errors.Is(err, domain.ErrRoundActive) {
		t.Fatalf("start after bid = %v, want ErrRoundActive", err)
	}
}

func TestPlaceBidValidation(t *testing.T) {
	svc := newTestService(3)
	state := newTwoPlayerMatch(t, svc)
	ctx := context.Background()

	if _, err := svc.PlaceBid(ctx, state, 2, 3); !errors.Is(err, domain.ErrRoundNotActive) {
		t.Fatalf("bid before round = %v, want ErrRoundNotActive", err)
	}
	if _, err := svc.StartRound(ctx, state); err != nil {
		t.Fatalf("start round error: %v", err)
	}

	_, err := svc.PlaceBid(ctx, state, 2, domain.Wild)
	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Code != domain.CodeIllegalRaise {
		t.Fatalf("opening on aces = %v, want illegal raise", err)
	}
	if derr.Minimum == nil || *derr.Minimum != (domain.Bid{Quantity: 1, Face: 2}) {
		t.Fatalf("minimum = %v, want 1 x twos", derr.Minimum)
	}
	if _, err := svc.PlaceBid(ctx, state, 0, 3); !errors.Is(err, domain.ErrInvalidBidValues) {
		t.Fatalf("zero quantity = %v, want ErrInvalidBidValues", err)
	}
	if _, err := svc.PlaceBid(ctx, state, 11, 3); !errors.Is(err, domain.ErrExceedsTableMaximum) {
		t.Fatalf("eleven of ten = %v, want ErrExceedsTableMaximum", err)
	}
	if state.CurrentTurn != 0 {
		t.Fatal("rejected bids must not pass the turn")
	}

	evs, err := svc.PlaceBid(ctx, state, 3, 4)
	if err != nil {
		t.Fatalf("place bid error: %v", err)
	}
	payload := evs[0].Payload.(BidPlacedPayload)
	if payload.UserID != "u1" || payload.NextTurnUserID != "u2" || state.LastBidder != 0 {
		t.Fatalf("bid placed payload = %+v, last bidder %d", payload, state.LastBidder)
	}
	latest, _ := state.Log.Latest()
	if latest != "Ana bids 3 x fours" {
		t.Fatalf("log = %q", latest)
	}
}

func TestCallWithoutBid(t *testing.T) {
	svc := newTestService(3)
	state := newTwoPlayerMatch(t, svc)
	ctx := context.Background()
	if _, err := svc.StartRound(ctx, state); err != nil {
		t.Fatalf("start round error: %v", err)
	}
	if _, err := svc.Call(ctx, state); !errors.Is(err, domain.ErrNoActiveBid) {
		t.Fatalf("call = %v, want ErrNoActiveBid", err)
	}
	if _, err := svc.SpotOn(ctx, state); !errors.Is(err, domain.ErrNoActiveBid) {
		t.Fatalf("spot-on = %v, want ErrNoActiveBid", err)
	}
}

func TestCallResolvesScenarioA(t *testing.T) {
	svc := newTestService(5)
	state := newTwoPlayerMatch(t, svc)
	ctx := context.Background()
	if _, err := svc.StartRound(ctx, state); err != nil {
		t.Fatalf("start round error: %v", err)
	}
	state.Players[0].Dice = []domain.Face{4, 2, 3, 5, 6}
	state.Players[1].Dice = []domain.Face{1, 4, 2, 2, 6}

	if _, err := svc.PlaceBid(ctx, state, 3, 4); err != nil {
		t.Fatalf("place bid error: %v", err)
	}
	evs, err := svc.Call(ctx, state)
	if err != nil {
		t.Fatalf("call error: %v", err)
	}
	if len(evs) != 1 || evs[0].Kind != EventCallResolved {
		t.Fatalf("events = %+v, want one call resolution", evs)
	}
	out := evs[0].Payload.(CallResolvedPayload).Outcome
	if !out.BidHeld || out.Loser != 1 {
		t.Fatalf("outcome = %+v, want bid held and caller seat 1 losing", out)
	}
	if state.Players[1].DiceCount != 4 || state.CurrentTurn != 1 || state.RoundActive() {
		t.Fatalf("after call: dice %d turn %d phase %s", state.Players[1].DiceCount, state.CurrentTurn, state.Phase)
	}
	if obs, ok := evs[0].Observation(); !ok || !reflect.DeepEqual(obs, out) {
		t.Fatalf("Observation() = %v, %v", obs, ok)
	}
}

// TestAutoPlayConservesDice plays whole matches with the AI on every seat.
func TestAutoPlayConservesDice(t *testing.T) {
	for _, level := range []bot.BotLevel{bot.BotLevelStandard, bot.BotLevelSmart} {
		t.Run(level.String(), func(t *testing.T) {
			rng := rand.New(rand.NewSource(2024))
			brain, err := bot.NewBrain(level, bot.DefaultTuning, rng)
			if err != nil {
				t.Fatalf("new brain error: %v", err)
			}
			svc := NewService(rng, WithBrain(brain))
			ctx := context.Background()
			state, err := svc.NewMatch(ctx, []PlayerSpec{
				{ID: "a", Automated: true}, {ID: "b", Automated: true}, {ID: "c", Automated: true},
			}, 3)
			if err != nil {
				t.Fatalf("new match error: %v", err)
			}

			ended := 0
			for rounds := 0; !svc.IsGameOver(state); rounds++ {
				if rounds > 200 {
					t.Fatal("match did not finish")
				}
				if _, err := svc.StartRound(ctx, state); err != nil {
					t.Fatalf("start round error: %v", err)
				}
				before := state.TotalDice()
				for state.RoundActive() {
					action, err := svc.AIDecision(ctx, state)
					if err != nil {
						t.Fatalf("ai decision error: %v", err)
					}
					evs, err := svc.Apply(ctx, state, action)
					if err != nil {
						t.Fatalf("apply %v error: %v", action, err)
					}
					for _, ev := range evs {
						if ev.Kind == EventGameEnded {
							ended++
						}
					}
				}
				lost := before - state.TotalDice()
				if lost != 0 && lost != 1 {
					t.Fatalf("round removed %d dice", lost)
				}
			}

			if ended != 1 {
				t.Fatalf("game ended events = %d, want 1", ended)
			}
			if _, ok := svc.Winner(state); !ok || state.Phase != domain.PhaseEnded {
				t.Fatalf("no winner after match, phase %s", state.Phase)
			}
			if _, err := svc.StartRound(ctx, state); !errors.Is(err, domain.ErrGameOver) {
				t.Fatalf("start after end = %v, want ErrGameOver", err)
			}
			if _, err := svc.AIDecision(ctx, state); !errors.Is(err, domain.ErrGameOver) {
				t.Fatalf("ai after end = %v, want ErrGameOver", err)
			}
		})
	}
}

func TestApplyUnknownAction(t *testing.T) {
	svc := newTestService(1)
	state := newTwoPlayerMatch(t, svc)
	if _, err := svc.Apply(context.Background(), state, nil); err == nil {
		t.Fatal("expected error for nil action")
	}
}

func TestServiceSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	svc := newTestService(9, WithTracer(tp))
	state := newTwoPlayerMatch(t, svc)
	ctx := context.Background()

	if _, err := svc.StartRound(ctx, state); err != nil {
		t.Fatalf("start round error: %v", err)
	}
	if _, err := svc.PlaceBid(ctx, state, 1, domain.Wild); err == nil {
		t.Fatal("expected rejection")
	}

	spans := sr.Ended()
	names := make([]string, len(spans))
	for i, s := range spans {
		names[i] = s.Name()
	}
	want := []string{"app.NewMatch", "app.StartRound", "app.PlaceBid"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("spans = %v, want %v", names, want)
	}
	if spans[2].Status().Code != otelcodes.Error {
		t.Fatalf("rejected bid span status = %v, want error", spans[2].Status())
	}
}
