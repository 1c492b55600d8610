package nakama

import (
	"bytes"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"dudo/internal/app"
	"dudo/internal/domain"
)

// Messages travel as google.protobuf.Struct: binary protobuf on the wire,
// JSON in match labels. Clients may also send requests as JSON.

func encodeMessage(fields map[string]interface{}) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build message: %w", err)
	}
	return proto.Marshal(s)
}

func decodeMessage(data []byte) (*structpb.Struct, error) {
	s := &structpb.Struct{}
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	if trimmed := bytes.TrimSpace(data); trimmed[0] == '{' {
		if err := protojson.Unmarshal(trimmed, s); err != nil {
			return nil, fmt.Errorf("decode json message: %w", err)
		}
		return s, nil
	}
	if err := proto.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return s, nil
}

func encodeLabel(fields map[string]interface{}) (string, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return "", fmt.Errorf("build label: %w", err)
	}
	b, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal label: %w", err)
	}
	return string(b), nil
}

// bidFromRequest reads {"quantity": q, "face": f}.
func bidFromRequest(req *structpb.Struct) (int, domain.Face, error) {
	q, err := intField(req, "quantity")
	if err != nil {
		return 0, 0, err
	}
	f, err := intField(req, "face")
	if err != nil {
		return 0, 0, err
	}
	return q, domain.Face(f), nil
}

func intField(s *structpb.Struct, key string) (int, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("missing %s", key)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s is not a number", key)
	}
	if n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, fmt.Errorf("%s is not an integer", key)
	}
	return int(n.NumberValue), nil
}

func bidFields(b domain.Bid) map[string]interface{} {
	return map[string]interface{}{
		"quantity": b.Quantity,
		"face":     int(b.Face),
	}
}

func facesToList(dice []domain.Face) []interface{} {
	out := make([]interface{}, len(dice))
	for i, d := range dice {
		out[i] = int(d)
	}
	return out
}

// snapshotFields describes public match state; hidden dice are never included.
func snapshotFields(state *MatchState) map[string]interface{} {
	fields := map[string]interface{}{
		"tick":  state.Tick,
		"phase": string(domain.PhaseWaiting),
	}
	m := state.Match
	if m == nil {
		return fields
	}

	players := make([]interface{}, len(m.Players))
	for i, p := range m.Players {
		players[i] = map[string]interface{}{
			"user_id":      p.ID,
			"display_name": p.Name,
			"seat":         i,
			"dice":         p.DiceCount,
			"bot":          p.Automated,
			"eliminated":   p.Eliminated,
		}
	}
	fields["match_id"] = m.ID
	fields["phase"] = string(m.Phase)
	fields["round"] = m.Round
	fields["players"] = players
	fields["current_turn"] = m.CurrentTurn
	fields["total_dice"] = m.TotalDice()
	fields["log"] = stringsToList(m.Log.Entries())
	if m.CurrentBid != nil {
		fields["bid"] = bidFields(*m.CurrentBid)
		fields["last_bidder"] = m.LastBidder
	}
	return fields
}

func stringsToList(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func revealedToList(revealed [][]domain.Face) []interface{} {
	out := make([]interface{}, len(revealed))
	for i, dice := range revealed {
		out[i] = facesToList(dice)
	}
	return out
}

// eventMessage maps an app event to its op code and payload fields.
func eventMessage(ev app.Event) (int64, map[string]interface{}, bool) {
	switch p := ev.Payload.(type) {
	case app.RoundStartedPayload:
		counts := make([]interface{}, len(p.DiceCounts))
		for i, c := range p.DiceCounts {
			counts[i] = c
		}
		return OpRoundStarted, map[string]interface{}{
			"round":       p.Round,
			"opener_seat": p.OpenerSeat,
			"dice_counts": counts,
			"total_dice":  p.TotalDice,
		}, true
	case app.DiceRolledPayload:
		return OpDiceRolled, map[string]interface{}{
			"seat": p.Seat,
			"dice": facesToList(p.Dice),
		}, true
	case app.BidPlacedPayload:
		return OpBidPlaced, map[string]interface{}{
			"seat":           p.Seat,
			"bid":            bidFields(p.Bid),
			"next_turn_seat": p.NextTurnSeat,
		}, true
	case app.CallResolvedPayload:
		o := p.Outcome
		return OpRoundResolved, map[string]interface{}{
			"kind":       app.ReceiptKindCall,
			"bid":        bidFields(o.Bid),
			"caller":     o.Caller,
			"bidder":     o.Bidder,
			"matched":    o.Matched,
			"bid_held":   o.BidHeld,
			"loser":      o.Loser,
			"eliminated": o.Eliminated,
			"opener":     o.Opener,
			"revealed":   revealedToList(o.Revealed),
			"receipt":    p.Receipt,
		}, true
	case app.SpotOnResolvedPayload:
		o := p.Outcome
		return OpRoundResolved, map[string]interface{}{
			"kind":       app.ReceiptKindSpotOn,
			"bid":        bidFields(o.Bid),
			"caller":     o.Caller,
			"bidder":     o.Bidder,
			"matched":    o.Matched,
			"exact":      o.Exact,
			"loser":      o.Loser,
			"eliminated": o.Eliminated,
			"opener":     o.Opener,
			"revealed":   revealedToList(o.Revealed),
			"receipt":    p.Receipt,
		}, true
	case app.GameEndedPayload:
		return OpGameEnded, map[string]interface{}{
			"winner_user_id": p.WinnerUserID,
			"winner_seat":    p.WinnerSeat,
			"rounds":         p.Rounds,
		}, true
	default:
		return 0, nil, false
	}
}

// errorFields describes a rejected request. Engine errors carry their code and
// the weakest acceptable bid when there is one.
func errorFields(code, message string, minimum *domain.Bid) map[string]interface{} {
	fields := map[string]interface{}{
		"code":    code,
		"message": message,
	}
	if minimum != nil {
		fields["minimum"] = bidFields(*minimum)
	}
	return fields
}
