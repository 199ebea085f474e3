package ws

import (
	"encoding/json"
	"fmt"
	"strconv"

	"solitaire/internal/app"
	"solitaire/internal/bot"
	"solitaire/internal/domain"
)

// Msg is the socket envelope in both directions: t names the intent or event, m carries its payload.
type Msg struct {
	T string          `json:"t"`
	M json.RawMessage `json:"m,omitempty"`
}

// Client intents.
const (
	IntentNewGame  = "new_game"
	IntentDraw     = "draw"
	IntentMove     = "move"
	IntentAutoMove = "auto_move"
	IntentHint     = "hint"
	IntentSnapshot = "snapshot"
	IntentTargets  = "targets"
)

// Server replies that are not engine events.
const (
	ReplyHint     = "hint"
	ReplySnapshot = "snapshot"
	ReplyTargets  = "targets"
	ReplyError    = "error"
)

// Error codes carried by ReplyError.
const (
	CodeBadRequest    = "bad_request"
	CodeConflict      = "conflict"
	CodeUnknownIntent = "unknown_intent"
	CodeUnavailable   = "unavailable"
	CodeInternal      = "internal"
)

type CardJSON struct {
	Suit   string `json:"suit"`
	Rank   int    `json:"rank"`
	FaceUp bool   `json:"face_up"`
}

type SnapshotJSON struct {
	GameID   string                `json:"game_id"`
	Seed     string                `json:"seed"`
	Phase    string                `json:"phase"`
	Won      bool                  `json:"won"`
	Piles    map[string][]CardJSON `json:"piles"`
	InFlight []CardJSON            `json:"in_flight"`
}

type NewGameRequest struct {
	Seed      json.RawMessage `json:"seed,omitempty"`
	Challenge string          `json:"challenge,omitempty"`
}

type MoveRequest struct {
	Card   CardJSON `json:"card"`
	Target string   `json:"target"`
}

type CardRequest struct {
	Card CardJSON `json:"card"`
}

type ErrorReply struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type HintReply struct {
	Available bool      `json:"available"`
	Kind      string    `json:"kind,omitempty"`
	Category  string    `json:"category,omitempty"`
	Card      *CardJSON `json:"card,omitempty"`
	Source    string    `json:"source,omitempty"`
	Target    string    `json:"target,omitempty"`
}

type TargetsReply struct {
	Card    CardJSON `json:"card"`
	Targets []string `json:"targets"`
}

type ChallengeRequest struct {
	Seed json.RawMessage `json:"seed,omitempty"`
}

type ChallengeReply struct {
	Token string `json:"token"`
	Seed  string `json:"seed"`
}

func cardJSON(c domain.Card) CardJSON {
	return CardJSON{Suit: string(c.Suit), Rank: int(c.Rank), FaceUp: c.FaceUp}
}

func cardsJSON(cards []domain.Card) []CardJSON {
	out := make([]CardJSON, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardJSON(c))
	}
	return out
}

// card reads a card identity; orientation belongs to the engine.
func (c CardJSON) card() (domain.Card, error) {
	suit, err := domain.ParseSuit(c.Suit)
	if err != nil {
		return domain.Card{}, err
	}
	rank := domain.Rank(c.Rank)
	if !rank.Valid() {
		return domain.Card{}, fmt.Errorf("invalid rank %d", c.Rank)
	}
	return domain.Card{Suit: suit, Rank: rank}, nil
}

func snapshotJSON(snap app.Snapshot) SnapshotJSON {
	out := SnapshotJSON{
		GameID:   snap.GameID,
		Seed:     strconv.FormatInt(snap.Seed, 10),
		Phase:    snap.Phase.String(),
		Won:      snap.Won,
		Piles:    make(map[string][]CardJSON, len(snap.Piles)),
		InFlight: cardsJSON(snap.InFlight),
	}
	for _, p := range snap.Piles {
		out.Piles[string(p.ID)] = cardsJSON(p.Cards)
	}
	return out
}

func hintReply(m bot.Move, ok bool) HintReply {
	if !ok {
		return HintReply{}
	}
	reply := HintReply{
		Available: true,
		Kind:      string(m.Kind),
		Category:  m.Category.String(),
		Source:    string(m.Source),
		Target:    string(m.Target),
	}
	if m.Kind == bot.MoveCard {
		card := cardJSON(m.Card)
		reply.Card = &card
	}
	return reply
}

// eventPayload maps an engine event to the JSON body sent under its kind.
func eventPayload(ev app.Event) (interface{}, error) {
	switch p := ev.Payload.(type) {
	case app.GameStartedPayload:
		return map[string]interface{}{
			"game_id": p.GameID,
			"seed":    strconv.FormatInt(p.Seed, 10),
			"layout":  snapshotJSON(p.Layout),
		}, nil
	case app.CardRelocatedPayload:
		return map[string]interface{}{"card": cardJSON(p.Card), "pile": p.Pile, "index": p.Index}, nil
	case app.CardFlippedPayload:
		return map[string]interface{}{"card": cardJSON(p.Card), "pile": p.Pile, "face_up": p.FaceUp}, nil
	case app.StockRecycledPayload:
		return map[string]interface{}{"count": p.Count}, nil
	case app.TransitionStartedPayload:
		return map[string]interface{}{
			"card":        cardJSON(p.Card),
			"from":        p.From,
			"to":          p.To,
			"duration_ms": p.Duration.Milliseconds(),
		}, nil
	case app.GameWonPayload:
		return map[string]interface{}{"game_id": p.GameID, "seed": strconv.FormatInt(p.Seed, 10)}, nil
	case app.MoveRejectedPayload:
		return map[string]interface{}{"card": cardJSON(p.Card), "target": p.Target, "reason": p.Reason}, nil
	}
	return nil, fmt.Errorf("unknown event kind %q", ev.Kind)
}

func encode(kind string, payload interface{}) (Msg, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Msg{}, err
	}
	return Msg{T: kind, M: body}, nil
}
