package domain

import "fmt"

// Face is the value shown on a single die.
type Face int

const (
	// Wild is the ace face. Aces count toward every plain face.
	Wild Face = 1
	// MinFace is the lowest face on a die.
	MinFace Face = 1
	// MaxFace is the highest face on a die.
	MaxFace Face = 6
)

var faceNames = [...]string{"", "aces", "twos", "threes", "fours", "fives", "sixes"}

// Valid reports whether f is a face of a six-sided die.
func (f Face) Valid() bool {
	return f >= MinFace && f <= MaxFace
}

// IsWild reports whether f is the ace face.
func (f Face) IsWild() bool {
	return f == Wild
}

// String returns the plural name used in log lines ("fours").
func (f Face) String() string {
	if !f.Valid() {
		return fmt.Sprintf("face(%d)", int(f))
	}
	return faceNames[f]
}

// Bid is a claim that at least Quantity dice on the table show Face.
// Bids are values; a new bid replaces the previous one.
type Bid struct {
	Quantity int
	Face     Face
}

// NewBid builds a bid, rejecting values outside the die and quantity ranges.
func NewBid(quantity int, face Face) (Bid, error) {
	b := Bid{Quantity: quantity, Face: face}
	if !b.Valid() {
		return Bid{}, newError(CodeInvalidBidValues,
			fmt.Sprintf("invalid values: quantity %d face %d (quantity must be positive, face 1-6)", quantity, int(face)), nil)
	}
	return b, nil
}

// Valid holds iff Quantity > 0 and Face is 1..6.
func (b Bid) Valid() bool {
	return b.Quantity > 0 && b.Face.Valid()
}

// IsWild reports whether the bid is on aces.
func (b Bid) IsWild() bool {
	return b.Face.IsWild()
}

// Strength orders bids so that every legal raise is at least as strong as
// the bid it follows with totalDice dice in play. An ace bid weighs as twice
// its quantity in plain dice, ranked just above the highest plain face at
// that quantity. A plain bid at the table maximum outranks every ace bid, so
// leaving aces onto the cap still strengthens the bid.
func (b Bid) Strength(totalDice int) int {
	if b.IsWild() {
		return (2*b.Quantity)*10 + 7
	}
	if b.Quantity == totalDice {
		return 20*totalDice + 7 + int(b.Face)
	}
	return b.Quantity*10 + int(b.Face)
}

func (b Bid) String() string {
	return fmt.Sprintf("%d x %s", b.Quantity, b.Face)
}
