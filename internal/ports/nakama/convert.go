package nakama

import (
	"fmt"
	"strconv"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"solitaire/internal/app"
	"solitaire/internal/bot"
	"solitaire/internal/domain"
)

func cardToMap(c domain.Card) map[string]interface{} {
	return map[string]interface{}{
		"suit":    string(c.Suit),
		"rank":    int(c.Rank),
		"face_up": c.FaceUp,
	}
}

func cardsToList(cards []domain.Card) []interface{} {
	out := make([]interface{}, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardToMap(c))
	}
	return out
}

// cardFromValue reads a card identity. Orientation is ignored; the engine owns it.
func cardFromValue(v *structpb.Value) (domain.Card, error) {
	fields := v.GetStructValue().GetFields()
	if fields == nil {
		return domain.Card{}, fmt.Errorf("card must be an object")
	}
	suit, err := domain.ParseSuit(fields["suit"].GetStringValue())
	if err != nil {
		return domain.Card{}, err
	}
	rank := domain.Rank(fields["rank"].GetNumberValue())
	if !rank.Valid() || float64(rank) != fields["rank"].GetNumberValue() {
		return domain.Card{}, fmt.Errorf("invalid rank %v", fields["rank"].AsInterface())
	}
	return domain.Card{Suit: suit, Rank: rank}, nil
}

// seedFromValue accepts a seed sent as a string or a number.
func seedFromValue(v *structpb.Value) string {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatInt(int64(k.NumberValue), 10)
	}
	return ""
}

func snapshotToMap(snap app.Snapshot) map[string]interface{} {
	piles := make(map[string]interface{}, len(snap.Piles))
	for _, p := range snap.Piles {
		piles[string(p.ID)] = cardsToList(p.Cards)
	}
	return map[string]interface{}{
		"game_id":   snap.GameID,
		"seed":      strconv.FormatInt(snap.Seed, 10),
		"phase":     snap.Phase.String(),
		"won":       snap.Won,
		"piles":     piles,
		"in_flight": cardsToList(snap.InFlight),
	}
}

func hintToMap(m bot.Move, ok bool) map[string]interface{} {
	if !ok {
		return map[string]interface{}{"available": false}
	}
	out := map[string]interface{}{
		"available": true,
		"kind":      string(m.Kind),
		"category":  m.Category.String(),
		"source":    string(m.Source),
		"target":    string(m.Target),
	}
	if m.Kind == bot.MoveCard {
		out["card"] = cardToMap(m.Card)
	}
	return out
}

// eventMessage maps an engine event to its op code and wire payload.
func eventMessage(ev app.Event) (int64, map[string]interface{}, error) {
	switch p := ev.Payload.(type) {
	case app.GameStartedPayload:
		return OpGameStarted, map[string]interface{}{
			"game_id": p.GameID,
			"seed":    strconv.FormatInt(p.Seed, 10),
			"layout":  snapshotToMap(p.Layout),
		}, nil
	case app.CardRelocatedPayload:
		return OpCardRelocated, map[string]interface{}{
			"card":  cardToMap(p.Card),
			"pile":  string(p.Pile),
			"index": p.Index,
		}, nil
	case app.CardFlippedPayload:
		return OpCardFlipped, map[string]interface{}{
			"card":    cardToMap(p.Card),
			"pile":    string(p.Pile),
			"face_up": p.FaceUp,
		}, nil
	case app.StockRecycledPayload:
		return OpStockRecycled, map[string]interface{}{"count": p.Count}, nil
	case app.TransitionStartedPayload:
		return OpTransitionStarted, map[string]interface{}{
			"card":        cardToMap(p.Card),
			"from":        string(p.From),
			"to":          string(p.To),
			"duration_ms": p.Duration.Milliseconds(),
		}, nil
	case app.GameWonPayload:
		return OpGameWon, map[string]interface{}{
			"game_id": p.GameID,
			"seed":    strconv.FormatInt(p.Seed, 10),
		}, nil
	case app.MoveRejectedPayload:
		return OpMoveRejected, map[string]interface{}{
			"card":   cardToMap(p.Card),
			"target": string(p.Target),
			"reason": p.Reason,
		}, nil
	}
	return 0, nil, fmt.Errorf("unknown event kind %q", ev.Kind)
}

func encodeMessage(fields map[string]interface{}) ([]byte, error) {
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(msg)
}

func decodeMessage(data []byte) (*structpb.Struct, error) {
	msg := &structpb.Struct{}
	if len(data) == 0 {
		return msg, nil
	}
	if err := protojson.Unmarshal(data, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
