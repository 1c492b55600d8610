package dudo

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"dudo/internal/app"
	"dudo/internal/bot"
	"dudo/internal/config"
	"dudo/internal/domain"
)

const humanID = "human"

var errQuit = errors.New("quit")

// session is one CLI match: a service, its state and the bots in it.
type session struct {
	svc    *app.Service
	state  *domain.MatchState
	agents map[string]*bot.Agent
	auto   bool
	out    io.Writer
}

func newSession(ctx context.Context, svc *app.Service, gameCfg config.GameConfig, cfg Config, rng *rand.Rand, out io.Writer) (*session, error) {
	s := &session{
		svc:    svc,
		agents: make(map[string]*bot.Agent),
		auto:   cfg.Auto,
		out:    out,
	}

	var specs []app.PlayerSpec
	bots := cfg.Players
	if !cfg.Auto {
		specs = append(specs, app.PlayerSpec{ID: humanID, Name: "You"})
		bots--
	}

	tuning := bot.TuningFromConfig(gameCfg)
	for _, identity := range bot.Roster(bots) {
		if cfg.Bot != "" || identity.Difficulty == "" {
			identity.Difficulty = gameCfg.BotLevel
		}
		agent, err := bot.NewAgent(identity, tuning, rng)
		if err != nil {
			return nil, err
		}
		s.agents[agent.ID] = agent
		specs = append(specs, app.PlayerSpec{ID: agent.ID, Name: agent.Name, Automated: true})
	}

	state, err := svc.NewMatch(ctx, specs, cfg.Dice)
	if err != nil {
		return nil, err
	}
	s.state = state
	return s, nil
}

func (s *session) play(ctx context.Context, in io.Reader) error {
	s.printf("Dudo: %d players, %d dice each.\n", len(s.state.Players), s.state.StartingDice)
	if !s.auto {
		s.printf("Commands: start, bid <quantity> <face>, call, spoton, ai, state, quit\n")
	}

	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.runBots(ctx); err != nil {
			return err
		}
		if s.svc.IsGameOver(s.state) {
			return nil
		}

		s.prompt()
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			s.printf("\nInput closed, leaving the table.\n")
			return nil
		}
		if err := s.handle(ctx, scanner.Text()); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		}
	}
}

// runBots plays every bot turn until the human must act or the match ends.
// A bot that opens a round also starts it.
func (s *session) runBots(ctx context.Context) error {
	for !s.svc.IsGameOver(s.state) {
		current := s.state.CurrentPlayer()
		agent, ok := s.agents[current.ID]
		if !ok {
			return nil
		}

		if !s.state.RoundActive() {
			evs, err := s.svc.StartRound(ctx, s.state)
			if err != nil {
				return err
			}
			s.render(evs)
			continue
		}

		action, err := agent.Play(s.state)
		if err != nil {
			return fmt.Errorf("bot %s: %w", agent.Name, err)
		}
		evs, err := s.svc.Apply(ctx, s.state, action)
		if err != nil {
			return fmt.Errorf("bot %s played %v: %w", agent.Name, action, err)
		}
		s.render(evs)
	}
	return nil
}

func (s *session) prompt() {
	if s.state.RoundActive() {
		if b := s.state.CurrentBid; b != nil {
			s.printf("[round %d, bid %s] > ", s.state.Round, b)
			return
		}
		s.printf("[round %d, you open] > ", s.state.Round)
		return
	}
	s.printf("[type start for round %d] > ", s.state.Round+1)
}

// handle runs one command line. Engine rejections are printed and the human
// may try again; only I/O problems are returned.
func (s *session) handle(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	var evs []app.Event
	var err error
	switch strings.ToLower(fields[0]) {
	case "start":
		evs, err = s.svc.StartRound(ctx, s.state)
	case "bid":
		quantity, face, perr := parseBid(fields[1:])
		if perr != nil {
			s.printf("usage: bid <quantity> <face>: %v\n", perr)
			return nil
		}
		evs, err = s.svc.PlaceBid(ctx, s.state, quantity, face)
	case "call":
		evs, err = s.svc.Call(ctx, s.state)
	case "spoton", "spot-on":
		evs, err = s.svc.SpotOn(ctx, s.state)
	case "ai":
		action, aerr := s.svc.AIDecision(ctx, s.state)
		if aerr != nil {
			s.reject(aerr)
			return nil
		}
		s.printf("AI suggests: %v\n", action)
		return nil
	case "state":
		s.printState()
		return nil
	case "quit", "exit":
		return errQuit
	default:
		s.printf("unknown command %q\n", fields[0])
		return nil
	}

	if err != nil {
		s.reject(err)
		return nil
	}
	s.render(evs)
	return nil
}

func parseBid(args []string) (int, domain.Face, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("want 2 numbers, got %d", len(args))
	}
	quantity, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("quantity: %w", err)
	}
	face, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("face: %w", err)
	}
	return quantity, domain.Face(face), nil
}

func (s *session) reject(err error) {
	s.printf("error: %v\n", err)
	var engineErr *domain.Error
	if errors.As(err, &engineErr) && engineErr.Minimum != nil {
		s.printf("minimum: bid %d %d\n", engineErr.Minimum.Quantity, int(engineErr.Minimum.Face))
	}
}

func (s *session) name(seat int) string {
	return s.state.Players[seat].Name
}

// render prints events. Hidden dice are shown only for the human, or for
// everyone in an all-bot match.
func (s *session) render(evs []app.Event) {
	for _, ev := range evs {
		switch p := ev.Payload.(type) {
		case app.RoundStartedPayload:
			s.printf("Round %d: %s opens, %d dice on the table\n", p.Round, s.name(p.OpenerSeat), p.TotalDice)
		case app.DiceRolledPayload:
			if s.auto || p.UserID == humanID {
				s.printf("  %s rolled %s\n", s.name(p.Seat), formatDice(p.Dice))
			}
		case app.BidPlacedPayload:
			s.printf("%s bids %s\n", s.name(p.Seat), p.Bid)
		case app.CallResolvedPayload:
			o := p.Outcome
			verdict := "the bid was false"
			if o.BidHeld {
				verdict = "the bid held"
			}
			s.printf("%s calls %s on %s: %d matched, %s\n", s.name(o.Caller), s.name(o.Bidder), o.Bid, o.Matched, verdict)
			s.printReveal(o.Revealed)
			s.printLoss(o.Loser, o.Eliminated)
			s.printReceipt(p.Receipt)
		case app.SpotOnResolvedPayload:
			o := p.Outcome
			s.printf("%s declares spot-on on %s: %d matched\n", s.name(o.Caller), o.Bid, o.Matched)
			s.printReveal(o.Revealed)
			if o.Exact {
				s.printf("  Exact! Nobody loses a die\n")
			} else {
				s.printLoss(o.Loser, o.Eliminated)
			}
			s.printReceipt(p.Receipt)
		case app.GameEndedPayload:
			s.printf("%s wins the match after %d rounds\n", s.name(p.WinnerSeat), p.Rounds)
		}
	}
}

func (s *session) printReveal(revealed [][]domain.Face) {
	for seat, dice := range revealed {
		if len(dice) == 0 {
			continue
		}
		s.printf("  %s: %s\n", s.name(seat), formatDice(dice))
	}
}

func (s *session) printLoss(loser int, eliminated bool) {
	if loser < 0 {
		return
	}
	s.printf("  %s loses a die (%d left)\n", s.name(loser), s.state.Players[loser].DiceCount)
	if eliminated {
		s.printf("  %s is out\n", s.name(loser))
	}
}

func (s *session) printReceipt(token string) {
	if token != "" {
		s.printf("  receipt: %s\n", token)
	}
}

func (s *session) printState() {
	s.printf("Round %d, phase %s, %d dice in play\n", s.state.Round, s.state.Phase, s.state.TotalDice())
	for _, p := range s.state.Players {
		marker := " "
		if s.state.RoundActive() && p.Seat == s.state.CurrentTurn {
			marker = "*"
		}
		line := fmt.Sprintf("%s %-12s %d dice", marker, p.Name, p.DiceCount)
		if p.ID == humanID && len(p.Dice) > 0 {
			line += "  " + formatDice(p.Dice)
		}
		s.printf("%s\n", line)
	}
	if b := s.state.CurrentBid; b != nil {
		s.printf("Current bid: %s by %s\n", b, s.name(s.state.LastBidder))
	}
	for _, entry := range s.state.Log.Entries() {
		s.printf("  | %s\n", entry)
	}
}

func formatDice(dice []domain.Face) string {
	parts := make([]string, len(dice))
	for i, d := range dice {
		parts[i] = strconv.Itoa(int(d))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
