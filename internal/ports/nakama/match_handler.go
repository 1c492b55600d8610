package nakama

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"dudo/internal/app"
	"dudo/internal/bot"
	"dudo/internal/config"
	"dudo/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

const phaseLobby = "lobby"

// MatchState holds the authoritative runtime state for the Nakama match handler.
// A table seats one human and fills the remaining seats with bots.
type MatchState struct {
	Seats        int                         `json:"seats"`          // Table size including the human
	HumanID      string                      `json:"human_id"`       // Empty until the human joins
	Tick         int64                       `json:"tick"`           // Current tick of the match
	Presences    map[string]runtime.Presence `json:"-"`              // Map UserId -> Presence for targeted messaging
	App          *app.Service                `json:"-"`              // Dudo app service
	Match        *domain.MatchState          `json:"-"`              // Nil until the human is seated
	Config       config.GameConfig           `json:"-"`              // Table and bot tuning
	BotMinDelay  int                         `json:"bot_min_delay"`  // Min seconds a bot waits
	BotMaxDelay  int                         `json:"bot_max_delay"`  // Max seconds a bot waits
	BotWaitUntil int64                       `json:"bot_wait_until"` // Tick when the bot should act
	Bots         map[string]*bot.Agent       `json:"-"`              // Active bot agents by user ID

	rng *rand.Rand
}

// GetOpenSeatsCount is 1 until the human seat is taken.
func (ms *MatchState) GetOpenSeatsCount() int {
	if ms.HumanID == "" {
		return 1
	}
	return 0
}

func (ms *MatchState) isBotUserID(userID string) bool {
	_, ok := ms.Bots[userID]
	return ok
}

func (ms *MatchState) phase() string {
	if ms.Match == nil {
		return phaseLobby
	}
	return string(ms.Match.Phase)
}

// senderSeat returns the seat of userID, or -1 when not seated.
func (ms *MatchState) senderSeat(userID string) int {
	if ms.Match == nil {
		return -1
	}
	return domain.SeatOf(ms.Match, userID)
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return newMatchHandler(), nil
}

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	cfgPath := defaultGameConfig
	if val, ok := env[EnvGameConfig]; ok && val != "" {
		cfgPath = val
	}
	if err := config.LoadGameConfig(cfgPath); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}
	cfg := config.GetGameConfig()

	if err := bot.LoadIdentities(identitiesPath(env, cfg)); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	opts := []app.Option{app.WithLogger(logger), app.WithConfig(cfg)}
	if secret := env[EnvReceiptSecret]; secret != "" {
		signer, err := app.NewReceiptSigner(secret, env[EnvReceiptIssuer])
		if err != nil {
			logger.Warn("MatchInit: Receipts disabled: %v", err)
		} else {
			opts = append(opts, app.WithReceipts(signer))
		}
	}

	state := &MatchState{
		Seats:       seatsParam(params, cfg.MaxPlayers),
		Tick:        time.Now().Unix(),
		Presences:   make(map[string]runtime.Presence),
		App:         app.NewService(rng, opts...),
		Config:      cfg,
		BotMinDelay: cfg.BotMinDelaySeconds,
		BotMaxDelay: cfg.BotMaxDelaySeconds,
		Bots:        make(map[string]*bot.Agent),
		rng:         rng,
	}

	label, err := encodeLabel(labelFields(state))
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1 // 1 tick per second; bot delays are counted in ticks
	return state, tickRate, label
}

func identitiesPath(env map[string]string, cfg config.GameConfig) string {
	if val, ok := env[EnvBotIdentities]; ok && val != "" {
		return val
	}
	return cfg.BotIdentitiesPath
}

// seatsParam reads the optional "players" creation parameter.
func seatsParam(params map[string]interface{}, fallback int) int {
	n := fallback
	switch v := params[MatchLabelKey_Players].(type) {
	case int:
		n = v
	case float64:
		n = int(v)
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			n = i
		}
	}
	if n < domain.MinPlayers {
		n = domain.MinPlayers
	}
	if n > domain.MaxPlayers {
		n = domain.MaxPlayers
	}
	return n
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// The seated human may reconnect; nobody else may take the seat.
	if matchState.HumanID != "" && matchState.HumanID != presence.GetUserId() {
		return state, false, "Match full"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
		if matchState.HumanID == "" {
			matchState.HumanID = p.GetUserId()
		}
	}

	if matchState.Match == nil && matchState.HumanID != "" {
		if err := mh.seatTable(ctx, matchState, logger); err != nil {
			logger.Error("MatchJoin: Failed to seat table: %v", err)
			return nil
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

// seatTable creates the domain match: the human in seat 0, bots after.
func (mh *matchHandler) seatTable(ctx context.Context, state *MatchState, logger runtime.Logger) error {
	human := app.PlayerSpec{ID: state.HumanID, Name: state.HumanID}
	if p, ok := state.Presences[state.HumanID]; ok && p.GetUsername() != "" {
		human.Name = p.GetUsername()
	}
	specs := []app.PlayerSpec{human}

	tuning := bot.TuningFromConfig(state.Config)
	for _, identity := range bot.Roster(state.Seats - 1) {
		agent, err := bot.NewAgent(identity, tuning, state.rng)
		if err != nil {
			return err
		}
		state.Bots[agent.ID] = agent
		specs = append(specs, app.PlayerSpec{ID: agent.ID, Name: agent.Name, Automated: true})
		logger.Info("seatTable: Added bot %s (%s, %s)", agent.Name, agent.ID, identity.Level())
	}

	match, err := state.App.NewMatch(ctx, specs, state.Config.StartingDice)
	if err != nil {
		return err
	}
	state.Match = match
	return nil
}

// MatchLeave terminates the match once the human is gone.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
	}

	if _, connected := matchState.Presences[matchState.HumanID]; !connected {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartRound:
			mh.handleStartRound(ctx, matchState, dispatcher, logger, msg)
		case OpPlaceBid:
			mh.handlePlaceBid(ctx, matchState, dispatcher, logger, msg)
		case OpCall:
			mh.handleChallenge(ctx, matchState, dispatcher, logger, msg, matchState.App.Call)
		case OpSpotOn:
			mh.handleChallenge(ctx, matchState, dispatcher, logger, msg, matchState.App.SpotOn)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.processBots(ctx, matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) handleStartRound(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	seat := state.senderSeat(senderID)
	if seat < 0 {
		logger.Warn("StartRound: User %s is not seated.", senderID)
		return
	}
	// Only the opener may deal.
	if seat != state.Match.CurrentTurn {
		mh.sendError(state, dispatcher, logger, senderID, errNotYourTurn)
		return
	}

	events, err := state.App.StartRound(ctx, state.Match)
	if err != nil {
		logger.Warn("StartRound: User %s could not start round: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	state.BotWaitUntil = 0
	mh.updateLabel(state, dispatcher, logger)
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handlePlaceBid(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if !mh.checkTurn(state, dispatcher, logger, senderID) {
		return
	}

	request, err := decodeMessage(msg.GetData())
	if err != nil {
		logger.Warn("handlePlaceBid: Invalid request from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, badRequest(err))
		return
	}
	quantity, face, err := bidFromRequest(request)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, badRequest(err))
		return
	}

	events, err := state.App.PlaceBid(ctx, state.Match, quantity, face)
	if err != nil {
		logger.Warn("handlePlaceBid: User %s bid %dx%d rejected: %v", senderID, quantity, face, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleChallenge(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData, resolve func(context.Context, *domain.MatchState) ([]app.Event, error)) {
	senderID := msg.GetUserId()
	if !mh.checkTurn(state, dispatcher, logger, senderID) {
		return
	}

	events, err := resolve(ctx, state.Match)
	if err != nil {
		logger.Warn("handleChallenge: User %s challenge rejected: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastMatchState(state, dispatcher, logger)
}

// checkTurn rejects intents from anyone but the current turn holder. Engine
// phase errors are left to the service.
func (mh *matchHandler) checkTurn(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string) bool {
	seat := state.senderSeat(senderID)
	if seat < 0 {
		logger.Warn("checkTurn: User %s is not seated.", senderID)
		return false
	}
	if state.Match.RoundActive() && state.Match.CurrentTurn != seat {
		mh.sendError(state, dispatcher, logger, senderID, errNotYourTurn)
		return false
	}
	return true
}

// processBots plays bot turns after a random delay in ticks. A bot that opens
// the next round also starts it.
func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Match == nil || state.App.IsGameOver(state.Match) {
		return
	}

	current := state.Match.CurrentPlayer()
	if current == nil || !state.isBotUserID(current.ID) {
		state.BotWaitUntil = 0
		return
	}
	if state.BotWaitUntil == 0 {
		delay := state.BotMinDelay
		if span := state.BotMaxDelay - state.BotMinDelay; span > 0 {
			delay += state.rng.Intn(span + 1)
		}
		state.BotWaitUntil = state.Tick + int64(delay)
		logger.Debug("processBots: Bot %s (seat %d) will act at tick %d (current %d)", current.ID, state.Match.CurrentTurn, state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	if !state.Match.RoundActive() {
		events, err := state.App.StartRound(ctx, state.Match)
		if err != nil {
			logger.Error("processBots: Bot %s failed to start round: %v", current.ID, err)
			return
		}
		mh.updateLabel(state, dispatcher, logger)
		mh.dispatchEvents(ctx, state, dispatcher, logger, events)
		return
	}

	agent := state.Bots[current.ID]
	action, err := agent.Play(state.Match)
	if err != nil {
		logger.Error("processBots: Bot %s failed to calculate move: %v", current.ID, err)
		return
	}
	events, err := state.App.Apply(ctx, state.Match, action)
	if err != nil {
		logger.Error("processBots: Bot %s move %v rejected: %v", current.ID, action, err)
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	if _, ok := action.(bot.Raise); !ok {
		mh.updateLabel(state, dispatcher, logger)
		mh.broadcastMatchState(state, dispatcher, logger)
	}
}

func (mh *matchHandler) dispatchEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
// Revealed outcomes are also fed to every bot so smart bots can learn.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	if obs, ok := ev.Observation(); ok {
		for _, agent := range state.Bots {
			agent.OnGameEvent(obs)
		}
	}

	opCode, fields, ok := eventMessage(ev)
	if !ok {
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}
	if ev.Kind == app.EventGameEnded {
		logger.Info("Event: game_ended, winner %v", fields["winner_user_id"])
	}

	bytes, err := encodeMessage(fields)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// Private events for bots must never fall back to a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	if err := dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true); err != nil {
		logger.Error("Failed to broadcast event %v: %v", ev.Kind, err)
	}
}

func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	bytes, err := encodeMessage(snapshotFields(state))
	if err != nil {
		logger.Error("broadcastMatchState: Failed to marshal snapshot: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpMatchState, bytes, nil, nil, true); err != nil {
		logger.Error("broadcastMatchState: Failed to broadcast: %v", err)
	}
}

var errNotYourTurn = errors.New("not your turn")

type requestError struct{ err error }

func (e requestError) Error() string { return e.err.Error() }

func badRequest(err error) error { return requestError{err: err} }

// sendError sends an OpError message to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, err error) {
	var fields map[string]interface{}
	var engineErr *domain.Error
	var reqErr requestError
	switch {
	case errors.As(err, &engineErr):
		fields = errorFields(string(engineErr.Code), engineErr.Message, engineErr.Minimum)
	case errors.As(err, &reqErr):
		fields = errorFields(ErrCodeBadRequest, reqErr.Error(), nil)
	case errors.Is(err, errNotYourTurn):
		fields = errorFields(ErrCodeNotYourTurn, err.Error(), nil)
	default:
		fields = errorFields(ErrCodeBadRequest, err.Error(), nil)
	}

	bytes, mErr := encodeMessage(fields)
	if mErr != nil {
		logger.Error("Failed to marshal error message: %v", mErr)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	if err := dispatcher.BroadcastMessage(OpError, bytes, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("Failed to send error to %s: %v", userID, err)
	}
}

func labelFields(state *MatchState) map[string]interface{} {
	return map[string]interface{}{
		MatchLabelKey_Game:      GameLabel,
		MatchLabelKey_OpenSeats: state.GetOpenSeatsCount(),
		MatchLabelKey_Phase:     state.phase(),
		MatchLabelKey_Players:   state.Seats,
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := encodeLabel(labelFields(state))
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated, grace %d seconds", graceSeconds)
	return state
}

// MatchSignal answers with the public snapshot, for admin tooling.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, ""
	}
	snapshot, err := encodeLabel(snapshotFields(matchState))
	if err != nil {
		logger.Warn("MatchSignal: %v", err)
		return state, ""
	}
	return state, snapshot
}
