package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"dudo/internal/bot"
	"dudo/internal/config"
	"dudo/internal/domain"
	"dudo/internal/logging"
)

// Service contains Dudo use-cases operating on domain state.
// It holds no match state of its own; every call receives the match.
type Service struct {
	rng      *rand.Rand
	cfg      config.GameConfig
	logger   runtime.Logger
	tracer   trace.Tracer
	brain    bot.Brain
	receipts *ReceiptSigner
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger sets the logger; the default discards output.
func WithLogger(l runtime.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithConfig sets table defaults and bot tuning.
func WithConfig(c config.GameConfig) Option {
	return func(s *Service) { s.cfg = c.WithDefaults() }
}

// WithBrain replaces the brain consulted by AIDecision.
func WithBrain(b bot.Brain) Option {
	return func(s *Service) { s.brain = b }
}

// WithReceipts enables signed round receipts.
func WithReceipts(r *ReceiptSigner) Option {
	return func(s *Service) { s.receipts = r }
}

// WithTracer overrides the global tracer provider.
func WithTracer(tp trace.TracerProvider) Option {
	return func(s *Service) { s.tracer = tp.Tracer(tracerName) }
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand, opts ...Option) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Service{
		rng:    rng,
		cfg:    config.GetGameConfig(),
		logger: logging.Nop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.brain == nil {
		level, err := bot.ParseLevel(s.cfg.BotLevel)
		if err != nil {
			s.logger.Warn("NewService: %v, using standard bot", err)
			level = bot.BotLevelStandard
		}
		// ParseLevel only yields known levels, so NewBrain cannot fail here.
		s.brain, _ = bot.NewBrain(level, bot.TuningFromConfig(s.cfg), s.rng)
	}
	return s
}

// PlayerSpec describes a seat in a new match. An empty ID is replaced by a
// fresh UUID.
type PlayerSpec struct {
	ID        string
	Name      string
	Automated bool
}

// NewMatch seats players in order. startingDice <= 0 uses the configured default.
func (s *Service) NewMatch(ctx context.Context, players []PlayerSpec, startingDice int) (*domain.MatchState, error) {
	_, span := s.tracer.Start(ctx, "app.NewMatch")
	defer span.End()

	if startingDice <= 0 {
		startingDice = s.cfg.StartingDice
	}
	seats := make([]domain.Seat, len(players))
	for i, p := range players {
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		seats[i] = domain.Seat{ID: id, Name: p.Name, Automated: p.Automated}
	}

	state, err := domain.NewMatchState(uuid.NewString(), seats, startingDice, s.cfg.LogCapacity)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("new match: %w", err))
	}
	span.SetAttributes(attribute.String("match.id", state.ID), attribute.Int("match.players", len(seats)))
	s.logger.WithField("match", state.ID).Info("match created: %d players, %d dice each", len(seats), startingDice)
	return state, nil
}

// StartRound rolls fresh dice for every player still in the match and clears
// the bid. It may be repeated until the first bid of the round is placed.
func (s *Service) StartRound(ctx context.Context, state *domain.MatchState) ([]Event, error) {
	_, span := s.span(ctx, "app.StartRound", state)
	defer span.End()

	if domain.IsOver(state) {
		return nil, s.fail(span, domain.ErrGameOver)
	}
	if state.RoundActive() && state.CurrentBid != nil {
		return nil, s.fail(span, domain.ErrRoundActive)
	}

	state.BeginRound(s.rng)
	opener := state.CurrentPlayer()
	state.Log.Append(fmt.Sprintf("Round %d: %s opens, %d dice on the table", state.Round, opener.Name, state.TotalDice()))
	s.matchLogger(state).Debug("round %d started, opener %s", state.Round, opener.ID)

	counts := make([]int, len(state.Players))
	events := make([]Event, 0, len(state.Players)+1)
	events = append(events, Event{Kind: EventRoundStarted})
	for i, p := range state.Players {
		counts[i] = p.DiceCount
		if p.Eliminated {
			continue
		}
		events = append(events, Event{
			Kind: EventDiceRolled,
			Payload: DiceRolledPayload{
				UserID: p.ID,
				Seat:   i,
				Dice:   append([]domain.Face(nil), p.Dice...),
			},
			Recipients: []string{p.ID},
		})
	}
	events[0].Payload = RoundStartedPayload{
		Round:        state.Round,
		OpenerUserID: opener.ID,
		OpenerSeat:   state.CurrentTurn,
		DiceCounts:   counts,
		TotalDice:    state.TotalDice(),
	}
	return events, nil
}

// PlaceBid records a bid by the current turn holder. Rejections are
// *domain.Error values carrying the reason and the weakest acceptable bid.
func (s *Service) PlaceBid(ctx context.Context, state *domain.MatchState, quantity int, face domain.Face) ([]Event, error) {
	_, span := s.span(ctx, "app.PlaceBid", state)
	defer span.End()
	span.SetAttributes(attribute.Int("bid.quantity", quantity), attribute.Int("bid.face", int(face)))

	if domain.IsOver(state) {
		return nil, s.fail(span, domain.ErrGameOver)
	}
	if !state.RoundActive() {
		return nil, s.fail(span, domain.ErrRoundNotActive)
	}

	bid := domain.Bid{Quantity: quantity, Face: face}
	if err := domain.CheckRaise(state.CurrentBid, bid, state.TotalDice()).Err(); err != nil {
		s.matchLogger(state).Debug("bid %v rejected: %v", bid, err)
		return nil, s.fail(span, err)
	}

	bidder := state.CurrentPlayer()
	seat := state.CurrentTurn
	state.SetBid(bid)
	next := state.CurrentPlayer()
	state.Log.Append(fmt.Sprintf("%s bids %s", bidder.Name, bid))

	return []Event{{
		Kind: EventBidPlaced,
		Payload: BidPlacedPayload{
			UserID:         bidder.ID,
			Seat:           seat,
			Bid:            bid,
			NextTurnUserID: next.ID,
			NextTurnSeat:   state.CurrentTurn,
		},
	}}, nil
}

// Call challenges the standing bid on behalf of the current turn holder.
func (s *Service) Call(ctx context.Context, state *domain.MatchState) ([]Event, error) {
	_, span := s.span(ctx, "app.Call", state)
	defer span.End()

	if domain.IsOver(state) {
		return nil, s.fail(span, domain.ErrGameOver)
	}
	out, err := domain.ResolveCall(state)
	if err != nil {
		return nil, s.fail(span, err)
	}
	span.SetAttributes(attribute.Int("call.matched", out.Matched), attribute.Bool("call.bid_held", out.BidHeld))
	s.matchLogger(state).Info("call on %v: %d matched, %s loses a die", out.Bid, out.Matched, state.Players[out.Loser].ID)

	s.brain.OnEvent(out)
	events := []Event{{
		Kind: EventCallResolved,
		Payload: CallResolvedPayload{
			Outcome: out,
			Receipt: s.sign(state, callReceipt(state, out)),
		},
	}}
	return s.appendGameEnded(state, events), nil
}

// SpotOn claims the standing bid is exact on behalf of the current turn holder.
func (s *Service) SpotOn(ctx context.Context, state *domain.MatchState) ([]Event, error) {
	_, span := s.span(ctx, "app.SpotOn", state)
	defer span.End()

	if domain.IsOver(state) {
		return nil, s.fail(span, domain.ErrGameOver)
	}
	out, err := domain.ResolveSpotOn(state)
	if err != nil {
		return nil, s.fail(span, err)
	}
	span.SetAttributes(attribute.Int("spot_on.matched", out.Matched), attribute.Bool("spot_on.exact", out.Exact))
	s.matchLogger(state).Info("spot-on at %v: %d matched, exact=%t", out.Bid, out.Matched, out.Exact)

	s.brain.OnEvent(out)
	events := []Event{{
		Kind: EventSpotOnResolved,
		Payload: SpotOnResolvedPayload{
			Outcome: out,
			Receipt: s.sign(state, spotOnReceipt(state, out)),
		},
	}}
	return s.appendGameEnded(state, events), nil
}

// IsGameOver reports whether at most one player still holds dice.
func (s *Service) IsGameOver(state *domain.MatchState) bool {
	return domain.IsOver(state)
}

// Winner returns the last player holding dice once the match is decided.
func (s *Service) Winner(state *domain.MatchState) (*domain.Player, bool) {
	return domain.Winner(state)
}

// AIDecision asks the service brain what the current turn holder should do.
// The state is not modified.
func (s *Service) AIDecision(ctx context.Context, state *domain.MatchState) (bot.Action, error) {
	_, span := s.span(ctx, "app.AIDecision", state)
	defer span.End()

	if domain.IsOver(state) {
		return nil, s.fail(span, domain.ErrGameOver)
	}
	if !state.RoundActive() {
		return nil, s.fail(span, domain.ErrRoundNotActive)
	}
	action := s.brain.Decide(state, state.CurrentTurn)
	s.matchLogger(state).Debug("ai decision for seat %d: %v", state.CurrentTurn, action)
	return action, nil
}

// Apply routes an action to PlaceBid, Call or SpotOn.
func (s *Service) Apply(ctx context.Context, state *domain.MatchState, action bot.Action) ([]Event, error) {
	switch a := action.(type) {
	case bot.Raise:
		return s.PlaceBid(ctx, state, a.Bid.Quantity, a.Bid.Face)
	case bot.Call:
		return s.Call(ctx, state)
	case bot.SpotOn:
		return s.SpotOn(ctx, state)
	default:
		return nil, fmt.Errorf("unknown action %T", action)
	}
}

// Receipts returns the configured signer, or nil.
func (s *Service) Receipts() *ReceiptSigner {
	return s.receipts
}

func (s *Service) appendGameEnded(state *domain.MatchState, events []Event) []Event {
	winner, ok := domain.Winner(state)
	if !ok {
		return events
	}
	state.Log.Append(fmt.Sprintf("%s wins the match after %d rounds", winner.Name, state.Round))
	s.matchLogger(state).Info("match over, winner %s", winner.ID)
	return append(events, Event{
		Kind: EventGameEnded,
		Payload: GameEndedPayload{
			WinnerUserID: winner.ID,
			WinnerSeat:   winner.Seat,
			Rounds:       state.Round,
		},
	})
}

func (s *Service) sign(state *domain.MatchState, r RoundReceipt) string {
	if s.receipts == nil {
		return ""
	}
	token, err := s.receipts.Sign(r)
	if err != nil {
		s.matchLogger(state).Warn("failed to sign round receipt: %v", err)
		return ""
	}
	return token
}

func (s *Service) span(ctx context.Context, name string, state *domain.MatchState) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, name)
	span.SetAttributes(attribute.String("match.id", state.ID), attribute.Int("match.round", state.Round))
	return ctx, span
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (s *Service) matchLogger(state *domain.MatchState) runtime.Logger {
	return s.logger.WithFields(map[string]interface{}{
		"match": state.ID,
		"round": state.Round,
	})
}
