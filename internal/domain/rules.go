package domain

import (
	"fmt"
	"sort"
)

// Verdict is the outcome of checking a proposed bid.
type Verdict struct {
	Legal  bool
	Code   Code   // set when !Legal
	Reason string // human-readable rule and minimum bid, set when !Legal
	// Minimum is the weakest bid of the same kind that would have been legal.
	Minimum *Bid
}

// Err converts a rejection into an *Error. It returns nil for legal verdicts.
func (v Verdict) Err() error {
	if v.Legal {
		return nil
	}
	return newError(v.Code, v.Reason, v.Minimum)
}

// AcesThreshold is the exact ace quantity required when jumping from a plain
// bid of quantity q onto aces: half of q, rounded up.
func AcesThreshold(q int) int {
	return (q + 1) / 2
}

// OffAcesQuantity is the exact plain quantity required when leaving an ace bid
// of quantity q, capped at the table maximum.
func OffAcesQuantity(q, totalDice int) int {
	exact := 2*q + 1
	if exact > totalDice {
		return totalDice
	}
	return exact
}

// CheckRaise decides whether proposed may follow current with totalDice dice
// in play. A nil current means proposed would open the round.
func CheckRaise(current *Bid, proposed Bid, totalDice int) Verdict {
	// 1. Values.
	if !proposed.Valid() {
		return reject(CodeInvalidBidValues,
			fmt.Sprintf("invalid values: %d x face %d (quantity must be positive, face 1-6)", proposed.Quantity, int(proposed.Face)), nil)
	}

	// 2. Table maximum.
	if proposed.Quantity > totalDice {
		return reject(CodeExceedsTableMaximum,
			fmt.Sprintf("exceeds table maximum: only %d dice in play", totalDice), nil)
	}

	// 3. Opening bid.
	if current == nil {
		if proposed.IsWild() {
			min := Bid{Quantity: 1, Face: 2}
			return reject(CodeIllegalRaise,
				fmt.Sprintf("the opening bid may not be on aces; minimum opening bid is %s", min), &min)
		}
		return Verdict{Legal: true}
	}

	// 4. Quantity saturated at the table maximum: only the face may rise.
	if current.Quantity == totalDice {
		if proposed.Quantity == current.Quantity && proposed.Face > current.Face {
			return Verdict{Legal: true}
		}
		if current.Face >= MaxFace {
			return reject(CodeIllegalRaise,
				fmt.Sprintf("%s is the highest possible bid; call or declare spot-on", *current), nil)
		}
		min := Bid{Quantity: current.Quantity, Face: current.Face + 1}
		return reject(CodeIllegalRaise,
			fmt.Sprintf("quantity is at the table maximum of %d; keep it and raise the face, minimum %s", totalDice, min), &min)
	}

	// 5. Transition classes.
	switch {
	case !current.IsWild() && !proposed.IsWild():
		if proposed.Quantity > current.Quantity ||
			(proposed.Quantity == current.Quantity && proposed.Face > current.Face) {
			return Verdict{Legal: true}
		}
		min := nextPlain(*current)
		return reject(CodeIllegalRaise,
			fmt.Sprintf("must raise the quantity, or keep it and raise the face; minimum %s", min), &min)

	case !current.IsWild() && proposed.IsWild():
		want := AcesThreshold(current.Quantity)
		if proposed.Quantity == want {
			return Verdict{Legal: true}
		}
		min := Bid{Quantity: want, Face: Wild}
		return reject(CodeIllegalRaise,
			fmt.Sprintf("jumping to aces from %s requires exactly %s", *current, min), &min)

	case current.IsWild() && proposed.IsWild():
		if proposed.Quantity > current.Quantity {
			return Verdict{Legal: true}
		}
		min := Bid{Quantity: current.Quantity + 1, Face: Wild}
		return reject(CodeIllegalRaise,
			fmt.Sprintf("an ace bid must raise the quantity; minimum %s", min), &min)

	default: // off aces
		exact := 2*current.Quantity + 1
		if proposed.Quantity == exact {
			return Verdict{Legal: true}
		}
		if exact > totalDice && proposed.Quantity == totalDice {
			return Verdict{Legal: true}
		}
		min := Bid{Quantity: OffAcesQuantity(current.Quantity, totalDice), Face: 2}
		return reject(CodeIllegalRaise,
			fmt.Sprintf("leaving aces from %s requires exactly %d dice of one face; minimum %s", *current, min.Quantity, min), &min)
	}
}

// IsLegal is a convenience over CheckRaise.
func IsLegal(current *Bid, proposed Bid, totalDice int) bool {
	return CheckRaise(current, proposed, totalDice).Legal
}

// LegalRaises lists every bid that may follow current, weakest first.
func LegalRaises(current *Bid, totalDice int) []Bid {
	var out []Bid
	for q := 1; q <= totalDice; q++ {
		for f := MinFace; f <= MaxFace; f++ {
			b := Bid{Quantity: q, Face: f}
			if CheckRaise(current, b, totalDice).Legal {
				out = append(out, b)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Strength(totalDice) < out[j].Strength(totalDice)
	})
	return out
}

// MinimalRaise returns the weakest legal bid after current. ok is false when
// no raise exists and the only options are to call or declare spot-on.
func MinimalRaise(current *Bid, totalDice int) (Bid, bool) {
	raises := LegalRaises(current, totalDice)
	if len(raises) == 0 {
		return Bid{}, false
	}
	return raises[0], true
}

// nextPlain is the smallest plain raise over a plain bid below the table cap.
func nextPlain(b Bid) Bid {
	if b.Face < MaxFace {
		return Bid{Quantity: b.Quantity, Face: b.Face + 1}
	}
	return Bid{Quantity: b.Quantity + 1, Face: 2}
}

func reject(code Code, reason string, min *Bid) Verdict {
	return Verdict{Code: code, Reason: reason, Minimum: min}
}
