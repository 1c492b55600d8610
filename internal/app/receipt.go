package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"

	"dudo/internal/domain"
)

const (
	ReceiptKindCall   = "call"
	ReceiptKindSpotOn = "spot_on"

	defaultReceiptTTL = 24 * time.Hour
)

var ErrReceiptInvalid = errors.New("round receipt is invalid")

// RoundReceipt is the signed record of a reveal, letting a client check that
// the verdict matches the dice.
type RoundReceipt struct {
	MatchID  string           `json:"sub"`
	Round    int              `json:"rnd"`
	Kind     string           `json:"kind"`
	Quantity int              `json:"q"`
	Face     int              `json:"f"`
	Matched  int              `json:"matched"`
	Verdict  string           `json:"verdict"`
	LoserID  string           `json:"loser,omitempty"`
	Revealed map[string][]int `json:"dice"`
}

// Bid returns the challenged bid.
func (r RoundReceipt) Bid() domain.Bid {
	return domain.Bid{Quantity: r.Quantity, Face: domain.Face(r.Face)}
}

// ReceiptSigner issues and verifies HS256 round receipts.
type ReceiptSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewReceiptSigner builds a signer. An empty secret is rejected; callers that
// do not want receipts should leave the signer nil.
func NewReceiptSigner(secret, issuer string) (*ReceiptSigner, error) {
	if secret == "" {
		return nil, fmt.Errorf("receipt secret is required")
	}
	if issuer == "" {
		issuer = "dudo"
	}
	return &ReceiptSigner{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    defaultReceiptTTL,
		now:    time.Now,
	}, nil
}

// Sign encodes r as a signed token.
func (s *ReceiptSigner) Sign(r RoundReceipt) (string, error) {
	if s == nil {
		return "", fmt.Errorf("receipt signer is nil")
	}
	if r.MatchID == "" {
		return "", fmt.Errorf("match id is required")
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss":     s.issuer,
		"sub":     r.MatchID,
		"iat":     now.Unix(),
		"exp":     now.Add(s.ttl).Unix(),
		"rnd":     r.Round,
		"kind":    r.Kind,
		"q":       r.Quantity,
		"f":       r.Face,
		"matched": r.Matched,
		"verdict": r.Verdict,
		"dice":    r.Revealed,
	}
	if r.LoserID != "" {
		claims["loser"] = r.LoserID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature, issuer and expiry of token and decodes it.
func (s *ReceiptSigner) Verify(token string) (RoundReceipt, error) {
	if s == nil {
		return RoundReceipt{}, fmt.Errorf("receipt signer is nil")
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return RoundReceipt{}, fmt.Errorf("%w: %v", ErrReceiptInvalid, err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return RoundReceipt{}, ErrReceiptInvalid
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return RoundReceipt{}, fmt.Errorf("%w: unexpected issuer", ErrReceiptInvalid)
	}

	raw, err := json.Marshal(claims)
	if err != nil {
		return RoundReceipt{}, fmt.Errorf("%w: %v", ErrReceiptInvalid, err)
	}
	var r RoundReceipt
	if err := json.Unmarshal(raw, &r); err != nil {
		return RoundReceipt{}, fmt.Errorf("%w: %v", ErrReceiptInvalid, err)
	}
	return r, nil
}

// callReceipt summarizes a resolved call.
func callReceipt(state *domain.MatchState, out domain.CallOutcome) RoundReceipt {
	verdict := "bid_false"
	if out.BidHeld {
		verdict = "bid_held"
	}
	return RoundReceipt{
		MatchID:  state.ID,
		Round:    state.Round,
		Kind:     ReceiptKindCall,
		Quantity: out.Bid.Quantity,
		Face:     int(out.Bid.Face),
		Matched:  out.Matched,
		Verdict:  verdict,
		LoserID:  state.Players[out.Loser].ID,
		Revealed: revealedByID(state, out.Revealed),
	}
}

// spotOnReceipt summarizes a resolved spot-on.
func spotOnReceipt(state *domain.MatchState, out domain.SpotOnOutcome) RoundReceipt {
	r := RoundReceipt{
		MatchID:  state.ID,
		Round:    state.Round,
		Kind:     ReceiptKindSpotOn,
		Quantity: out.Bid.Quantity,
		Face:     int(out.Bid.Face),
		Matched:  out.Matched,
		Verdict:  "exact",
		Revealed: revealedByID(state, out.Revealed),
	}
	if !out.Exact {
		r.Verdict = "missed"
		r.LoserID = state.Players[out.Loser].ID
	}
	return r
}

func revealedByID(state *domain.MatchState, revealed [][]domain.Face) map[string][]int {
	out := make(map[string][]int, len(revealed))
	for seat, dice := range revealed {
		if len(dice) == 0 {
			continue
		}
		faces := make([]int, len(dice))
		for i, d := range dice {
			faces[i] = int(d)
		}
		out[state.Players[seat].ID] = faces
	}
	return out
}
