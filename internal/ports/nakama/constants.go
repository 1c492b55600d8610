package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a table against bots.
	RpcQuickMatch = "quick_match"
	// RpcVerifyReceipt checks a signed round receipt and returns its contents.
	RpcVerifyReceipt = "verify_receipt"

	// MatchNameDudo is the authoritative match handler name registered with Nakama.
	MatchNameDudo = "dudo_match"

	// GameLabel identifies dudo tables in match listings.
	GameLabel = "dudo"
)

// Match label keys.
const (
	MatchLabelKey_Game      = "game"
	MatchLabelKey_OpenSeats = "open"
	MatchLabelKey_Phase     = "phase"
	MatchLabelKey_Players   = "players"
)

// Runtime environment keys read from the Nakama config.
const (
	EnvReceiptSecret  = "dudo_receipt_secret"
	EnvReceiptIssuer  = "dudo_receipt_issuer"
	EnvGameConfig     = "dudo_game_config"
	EnvBotIdentities  = "dudo_bot_identities"
	defaultGameConfig = "data/game_config.json"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartRound int64 = 1
	OpPlaceBid   int64 = 2
	OpCall       int64 = 3
	OpSpotOn     int64 = 4

	// Server -> Client events
	OpMatchState    int64 = 101
	OpDiceRolled    int64 = 102 // sent privately
	OpRoundStarted  int64 = 103
	OpBidPlaced     int64 = 104
	OpRoundResolved int64 = 105
	OpGameEnded     int64 = 106
	OpError         int64 = 107
)

// Error codes sent with OpError that are not engine codes.
const (
	ErrCodeBadRequest  = "BAD_REQUEST"
	ErrCodeNotYourTurn = "NOT_YOUR_TURN"
)
