package domain

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func TestBidValidity(t *testing.T) {
	for q := -2; q <= 8; q++ {
		for f := Face(-1); f <= 8; f++ {
			want := q > 0 && f >= 1 && f <= 6
			b := Bid{Quantity: q, Face: f}
			if got := b.Valid(); got != want {
				t.Fatalf("Bid%v.Valid() = %v, want %v", b, got, want)
			}
			_, err := NewBid(q, f)
			if (err == nil) != want {
				t.Fatalf("NewBid(%d, %d) error = %v, want valid=%v", q, f, err, want)
			}
			if err != nil && !errors.Is(err, ErrInvalidBidValues) {
				t.Fatalf("NewBid error %v should match ErrInvalidBidValues", err)
			}
		}
	}
}

func TestBidString(t *testing.T) {
	if got := (Bid{Quantity: 3, Face: 4}).String(); got != "3 x fours" {
		t.Fatalf("String() = %q", got)
	}
	if got := (Bid{Quantity: 1, Face: Wild}).String(); got != "1 x aces" {
		t.Fatalf("String() = %q", got)
	}
}

func TestRollDice(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	dice := RollDice(rng, 500)
	if len(dice) != 500 {
		t.Fatalf("len = %d, want 500", len(dice))
	}
	seen := make(map[Face]bool)
	for _, d := range dice {
		if !d.Valid() {
			t.Fatalf("rolled invalid face %d", d)
		}
		seen[d] = true
	}
	if len(seen) != 6 {
		t.Fatalf("500 rolls covered only %d faces", len(seen))
	}

	a := RollDice(rand.New(rand.NewSource(99)), 10)
	b := RollDice(rand.New(rand.NewSource(99)), 10)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced %v and %v", a, b)
	}
	if RollDice(rng, 0) != nil {
		t.Fatal("zero dice should roll nothing")
	}
}

func TestCountMatching(t *testing.T) {
	players := []*Player{
		{Dice: []Face{1, 4, 4, 2, 6}, DiceCount: 5},
		{Dice: []Face{1, 1, 3, 4}, DiceCount: 4},
		{Dice: nil, DiceCount: 0, Eliminated: true},
	}

	tests := []struct {
		face Face
		want int
	}{
		{face: 4, want: 6}, // three fours + three aces
		{face: 1, want: 3}, // aces only count as themselves
		{face: 5, want: 3},
		{face: 2, want: 4},
	}
	for _, tt := range tests {
		if got := CountMatching(players, tt.face); got != tt.want {
			t.Errorf("CountMatching(%d) = %d, want %d", tt.face, got, tt.want)
		}
	}

	if got := CountMatching(nil, 4); got != 0 {
		t.Errorf("empty table counted %d", got)
	}
	eliminated := []*Player{{Dice: []Face{4, 4}, DiceCount: 2, Eliminated: true}}
	if got := CountMatching(eliminated, 4); got != 0 {
		t.Errorf("eliminated players counted %d", got)
	}
}

func TestCountMatchingPermutationInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	for trial := 0; trial < 200; trial++ {
		players := make([]*Player, 2+rng.Intn(4))
		for i := range players {
			n := 1 + rng.Intn(5)
			players[i] = &Player{Dice: RollDice(rng, n), DiceCount: n}
		}

		before := make(map[Face]int)
		for f := MinFace; f <= MaxFace; f++ {
			before[f] = CountMatching(players, f)
		}

		rng.Shuffle(len(players), func(i, j int) { players[i], players[j] = players[j], players[i] })
		for _, p := range players {
			rng.Shuffle(len(p.Dice), func(i, j int) { p.Dice[i], p.Dice[j] = p.Dice[j], p.Dice[i] })
		}

		for f := MinFace; f <= MaxFace; f++ {
			if got := CountMatching(players, f); got != before[f] {
				t.Fatalf("trial %d face %d: %d after shuffle, %d before", trial, f, got, before[f])
			}
		}
	}
}

func TestEventLogKeepsNewestWithinCapacity(t *testing.T) {
	log := NewEventLog(3)
	if _, ok := log.Latest(); ok {
		t.Fatal("empty log reported a latest entry")
	}
	for _, e := range []string{"e1", "e2", "e3", "e4", "e5"} {
		log.Append(e)
	}

	want := []string{"e5", "e4", "e3"}
	if got := log.Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Entries() = %v, want %v", got, want)
	}
	if log.Len() != 3 || log.Cap() != 3 {
		t.Fatalf("Len/Cap = %d/%d, want 3/3", log.Len(), log.Cap())
	}
	if latest, _ := log.Latest(); latest != "e5" {
		t.Fatalf("Latest() = %q, want e5", latest)
	}

	if NewEventLog(0).Cap() != DefaultLogCapacity {
		t.Fatalf("non-positive capacity should fall back to %d", DefaultLogCapacity)
	}
}

func TestWinnerAndIsOver(t *testing.T) {
	state := &MatchState{Players: []*Player{
		{ID: "a", DiceCount: 2},
		{ID: "b", DiceCount: 0, Eliminated: true},
		{ID: "c", DiceCount: 1},
	}}
	if IsOver(state) {
		t.Fatal("two players remain, match should not be over")
	}
	if _, ok := Winner(state); ok {
		t.Fatal("Winner reported a player while contested")
	}

	state.Players[2].DiceCount = 0
	state.Players[2].Eliminated = true
	if !IsOver(state) {
		t.Fatal("one player remains, match should be over")
	}
	w, ok := Winner(state)
	if !ok || w.ID != "a" {
		t.Fatalf("Winner() = %v, %v; want a", w, ok)
	}
	if SeatOf(state, "c") != 2 || SeatOf(state, "zz") != -1 {
		t.Fatal("SeatOf returned wrong seats")
	}
}

func TestNextActiveSeatSkipsEliminated(t *testing.T) {
	state := &MatchState{Players: []*Player{
		{DiceCount: 1},
		{Eliminated: true},
		{DiceCount: 3},
		{Eliminated: true},
	}}
	if got := state.NextActiveSeat(0); got != 2 {
		t.Fatalf("NextActiveSeat(0) = %d, want 2", got)
	}
	if got := state.NextActiveSeat(2); got != 0 {
		t.Fatalf("NextActiveSeat(2) = %d, want 0 (wrap)", got)
	}
}
