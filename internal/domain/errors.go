package domain

// Code is a machine-readable engine error code.
type Code string

const (
	CodeInvalidBidValues    Code = "INVALID_BID_VALUES"
	CodeIllegalRaise        Code = "ILLEGAL_RAISE"
	CodeNoActiveBid         Code = "NO_ACTIVE_BID"
	CodeExceedsTableMaximum Code = "EXCEEDS_TABLE_MAXIMUM"
	CodeRoundNotActive      Code = "ROUND_NOT_ACTIVE"
	CodeRoundActive         Code = "ROUND_ACTIVE"
	CodeGameOver            Code = "GAME_OVER"
)

// Error is a recoverable engine rejection. The driver shows Message and lets
// the same actor retry.
type Error struct {
	Code    Code
	Message string
	// Minimum is the weakest bid that would have been accepted, when one exists.
	Minimum *Bid
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error with the same code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func newError(code Code, message string, minimum *Bid) *Error {
	return &Error{Code: code, Message: message, Minimum: minimum}
}

var (
	ErrInvalidBidValues    = newError(CodeInvalidBidValues, "invalid bid values", nil)
	ErrIllegalRaise        = newError(CodeIllegalRaise, "illegal raise", nil)
	ErrNoActiveBid         = newError(CodeNoActiveBid, "no active bid to challenge", nil)
	ErrExceedsTableMaximum = newError(CodeExceedsTableMaximum, "bid exceeds table maximum", nil)
	ErrRoundNotActive      = newError(CodeRoundNotActive, "round is not active", nil)
	ErrRoundActive         = newError(CodeRoundActive, "round already in progress", nil)
	ErrGameOver            = newError(CodeGameOver, "match already has a winner", nil)
)
