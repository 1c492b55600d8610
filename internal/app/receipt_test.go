package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/form3tech-oss/jwt-go"

	"dudo/internal/domain"
)

func TestReceiptSignerRoundTrip(t *testing.T) {
	signer, err := NewReceiptSigner("test-secret", "issuer")
	if err != nil {
		t.Fatalf("new signer error: %v", err)
	}

	in := RoundReceipt{
		MatchID:  "m1",
		Round:    3,
		Kind:     ReceiptKindCall,
		Quantity: 3,
		Face:     4,
		Matched:  3,
		Verdict:  "bid_held",
		LoserID:  "u2",
		Revealed: map[string][]int{"u1": {4, 2}, "u2": {1, 4}},
	}
	token, err := signer.Sign(in)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	claims := parseReceiptClaims(t, token, "test-secret")
	if got := stringClaim(t, claims, "iss"); got != "issuer" {
		t.Fatalf("iss = %s, want issuer", got)
	}
	if got := stringClaim(t, claims, "sub"); got != "m1" {
		t.Fatalf("sub = %s, want m1", got)
	}

	out, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if out.Bid() != (domain.Bid{Quantity: 3, Face: 4}) || out.Round != 3 || out.LoserID != "u2" {
		t.Fatalf("decoded receipt = %+v", out)
	}
	if len(out.Revealed["u2"]) != 2 || out.Revealed["u2"][0] != 1 {
		t.Fatalf("revealed dice = %v", out.Revealed)
	}
}

func TestReceiptSignerRejectsTampering(t *testing.T) {
	signer, _ := NewReceiptSigner("secret", "issuer")
	other, _ := NewReceiptSigner("other-secret", "issuer")
	wrongIssuer, _ := NewReceiptSigner("secret", "someone-else")

	token, err := signer.Sign(RoundReceipt{MatchID: "m1", Kind: ReceiptKindSpotOn})
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}
	if _, err := other.Verify(token); !errors.Is(err, ErrReceiptInvalid) {
		t.Fatalf("wrong secret = %v, want ErrReceiptInvalid", err)
	}
	if _, err := wrongIssuer.Verify(token); !errors.Is(err, ErrReceiptInvalid) {
		t.Fatalf("wrong issuer = %v, want ErrReceiptInvalid", err)
	}
	if _, err := signer.Verify(token + "x"); !errors.Is(err, ErrReceiptInvalid) {
		t.Fatalf("altered token = %v, want ErrReceiptInvalid", err)
	}
}

func TestReceiptSignerRejectsExpired(t *testing.T) {
	signer, _ := NewReceiptSigner("secret", "issuer")
	signer.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	token, err := signer.Sign(RoundReceipt{MatchID: "m1"})
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}
	signer.now = time.Now
	if _, err := signer.Verify(token); !errors.Is(err, ErrReceiptInvalid) {
		t.Fatalf("expired token = %v, want ErrReceiptInvalid", err)
	}
}

func TestReceiptSignerRequiresConfig(t *testing.T) {
	if _, err := NewReceiptSigner("", "issuer"); err == nil {
		t.Fatal("expected error for missing secret")
	}
	var nilSigner *ReceiptSigner
	if _, err := nilSigner.Sign(RoundReceipt{MatchID: "m"}); err == nil {
		t.Fatal("expected error for nil signer")
	}
	signer, _ := NewReceiptSigner("secret", "")
	if _, err := signer.Sign(RoundReceipt{}); err == nil {
		t.Fatal("expected error for missing match id")
	}
}

func TestServiceIssuesSpotOnReceipts(t *testing.T) {
	signer, _ := NewReceiptSigner("secret", "dudo")
	svc := newTestService(11, WithReceipts(signer))
	state := newTwoPlayerMatch(t, svc)
	ctx := context.Background()

	if _, err := svc.StartRound(ctx, state); err != nil {
		t.Fatalf("start round error: %v", err)
	}
	state.Players[0].Dice = []domain.Face{5, 5, 2, 3, 3}
	state.Players[1].Dice = []domain.Face{1, 3, 6, 2, 2}
	if _, err := svc.PlaceBid(ctx, state, 3, 5); err != nil {
		t.Fatalf("place bid error: %v", err)
	}

	evs, err := svc.SpotOn(ctx, state)
	if err != nil {
		t.Fatalf("spot-on error: %v", err)
	}
	payload := evs[0].Payload.(SpotOnResolvedPayload)
	if !payload.Outcome.Exact {
		t.Fatalf("outcome = %+v, want exact", payload.Outcome)
	}

	receipt, err := svc.Receipts().Verify(payload.Receipt)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if receipt.MatchID != state.ID || receipt.Verdict != "exact" || receipt.LoserID != "" || receipt.Matched != 3 {
		t.Fatalf("receipt = %+v", receipt)
	}
	if len(receipt.Revealed) != 2 {
		t.Fatalf("revealed = %v, want both hands", receipt.Revealed)
	}
}

func parseReceiptClaims(t *testing.T, tokenString, secret string) jwt.MapClaims {
	t.Helper()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parse token error: %v", err)
	}
	if !token.Valid {
		t.Fatal("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not map claims")
	}
	return claims
}

func stringClaim(t *testing.T, claims jwt.MapClaims, name string) string {
	t.Helper()
	value, ok := claims[name]
	if !ok {
		t.Fatalf("missing %s claim", name)
	}
	str, ok := value.(string)
	if !ok {
		t.Fatalf("%s claim is not a string", name)
	}
	return str
}
