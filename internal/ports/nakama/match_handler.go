package nakama

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/types/known/structpb"

	"solitaire/internal/app"
	"solitaire/internal/bot"
	"solitaire/internal/config"
	"solitaire/internal/domain"
	"solitaire/internal/ports"
)

const (
	errCodeBadRequest = 400
	errCodeForbidden  = 403
	errCodeConflict   = 409
)

// MatchState holds the authoritative runtime state for one solitaire table.
type MatchState struct {
	OwnerID    string                      `json:"owner_id"`  // Only the owner's intents are applied
	Tick       int64                       `json:"tick"`      // Last processed tick
	TickRate   int                         `json:"tick_rate"` // Ticks per second
	Presences  map[string]runtime.Presence `json:"-"`         // Map UserId -> Presence
	App        *app.Service                `json:"-"`         // Solitaire engine for this table
	Timer      *ports.TickTimer            `json:"-"`         // Advanced once per tick
	Challenges *app.ChallengeService       `json:"-"`         // Nil when no secret is configured

	outbox    []app.Event
	lastLabel string
}

func (ms *MatchState) publish(ev app.Event) {
	ms.outbox = append(ms.outbox, ev)
}

// presenceList returns the connected presences ordered by user id.
func (ms *MatchState) presenceList() []runtime.Presence {
	ids := make([]string, 0, len(ms.Presences))
	for id := range ms.Presences {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]runtime.Presence, 0, len(ids))
	for _, id := range ids {
		out = append(out, ms.Presences[id])
	}
	return out
}

type matchHandler struct{}

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

// MatchInit deals the first game. Params: "owner" (user id) and "seed" (optional).
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	cfg := config.GetGameConfig()
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	autoMove := cfg.AutoMove
	if val, ok := env[EnvAutoMove]; ok {
		autoMove = val == "true"
	}
	tickRate := cfg.TickRate
	if val, ok := env[EnvTickRate]; ok {
		if i, err := strconv.Atoi(val); err == nil && i >= config.MinTickRate && i <= config.MaxTickRate {
			tickRate = i
		} else {
			logger.Warn("MatchInit: ignoring invalid %s=%q", EnvTickRate, val)
		}
	}

	state := &MatchState{
		TickRate:  tickRate,
		Presences: make(map[string]runtime.Presence),
		Timer:     ports.NewTickTimer(),
	}
	if owner, ok := params["owner"].(string); ok {
		state.OwnerID = owner
	}
	if secret := env[EnvChallengeSecret]; secret != "" {
		state.Challenges = app.NewChallengeService(secret, cfg.Challenge.Issuer, cfg.ChallengeTTL())
	}
	brain, err := bot.NewBrain(bot.BotLevel(cfg.HintLevel))
	if err != nil {
		logger.Warn("MatchInit: %v, using the default hint level", err)
	}
	state.App = app.NewService(app.Options{
		Timer:        state.Timer,
		Brain:        brain,
		Sink:         app.SinkFunc(state.publish),
		Logger:       logger,
		Animation:    cfg.AnimationDuration(),
		DrawCooldown: cfg.DrawCooldown(),
		AutoMove:     autoMove,
		Lenient:      !cfg.StrictInvariants,
	})

	seed, _ := params["seed"].(string)
	dealt := state.App.NewGame(seed)
	logger.Info("MatchInit: dealt seed %d (owner=%s, tick_rate=%d)", dealt, state.OwnerID, tickRate)

	label, err := mh.buildLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	state.lastLabel = label
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	if len(matchState.Presences) >= MaxPresences {
		return state, false, "Match full"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
		if matchState.OwnerID == "" {
			matchState.OwnerID = p.GetUserId()
			logger.Debug("MatchJoin: Owner set to %s.", p.GetUserId())
		}
	}

	// Joiners also receive the pending broadcast; the snapshot that follows supersedes it.
	mh.flush(matchState, dispatcher, logger)
	mh.sendSnapshot(matchState, dispatcher, logger, presences)
	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
	}

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating empty match.")
		return nil
	}

	if _, present := matchState.Presences[matchState.OwnerID]; !present {
		matchState.OwnerID = matchState.presenceList()[0].GetUserId()
		logger.Debug("MatchLeave: Owner handed to %s.", matchState.OwnerID)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		mh.handleMessage(matchState, dispatcher, logger, msg)
	}

	matchState.Timer.Advance(time.Second / time.Duration(matchState.TickRate))
	mh.flush(matchState, dispatcher, logger)
	mh.updateLabel(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) handleMessage(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	switch msg.GetOpCode() {
	case OpSnapshot:
		mh.sendSnapshot(state, dispatcher, logger, []runtime.Presence{msg})
		return
	case OpNewGame, OpDraw, OpMove, OpAutoMove, OpHint:
	default:
		logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		return
	}

	if senderID != state.OwnerID {
		logger.Debug("MatchLoop: ignoring op %d from spectator %s", msg.GetOpCode(), senderID)
		mh.sendError(state, dispatcher, logger, senderID, errCodeForbidden, "only the match owner can play")
		return
	}

	request, err := decodeMessage(msg.GetData())
	if err != nil {
		logger.Warn("MatchLoop: Invalid payload for op %d from %s: %v", msg.GetOpCode(), senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, errCodeBadRequest, "malformed payload")
		return
	}
	fields := request.GetFields()

	switch msg.GetOpCode() {
	case OpNewGame:
		mh.handleNewGame(state, dispatcher, logger, senderID, fields["seed"], fields["challenge"].GetStringValue())
	case OpDraw:
		if err := state.App.DrawFromStock(); err != nil {
			if errors.Is(err, app.ErrDrawCoolingDown) {
				logger.Debug("MatchLoop: draw dropped during cooldown")
				return
			}
			mh.sendError(state, dispatcher, logger, senderID, errCodeConflict, err.Error())
		}
	case OpMove:
		card, err := cardFromValue(fields["card"])
		if err != nil {
			mh.sendError(state, dispatcher, logger, senderID, errCodeBadRequest, err.Error())
			return
		}
		// Rejections reach everyone as move_rejected events.
		_ = state.App.AttemptMove(card, domain.PileID(fields["target"].GetStringValue()))
	case OpAutoMove:
		card, err := cardFromValue(fields["card"])
		if err != nil {
			mh.sendError(state, dispatcher, logger, senderID, errCodeBadRequest, err.Error())
			return
		}
		_ = state.App.AttemptAutoMoveToFoundation(card)
	case OpHint:
		move, ok := state.App.Hint()
		mh.sendTo(state, dispatcher, logger, senderID, OpHintResult, hintToMap(move, ok))
	}
}

func (mh *matchHandler) handleNewGame(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string, seed *structpb.Value, challenge string) {
	if challenge == "" {
		state.App.NewGame(seedFromValue(seed))
		return
	}
	verified, err := state.Challenges.Verify(challenge)
	if err != nil {
		logger.Warn("NewGame: rejected challenge from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, errCodeBadRequest, err.Error())
		return
	}
	state.App.NewGameWithSeed(verified)
}

// flush broadcasts queued engine events to every presence in publish order.
func (mh *matchHandler) flush(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	events := state.outbox
	state.outbox = nil
	for _, ev := range events {
		opCode, payload, err := eventMessage(ev)
		if err != nil {
			logger.Warn("flush: %v", err)
			continue
		}
		bytes, err := encodeMessage(payload)
		if err != nil {
			logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
			continue
		}
		if err := dispatcher.BroadcastMessage(opCode, bytes, nil, nil, true); err != nil {
			logger.Error("Failed to broadcast event %v: %v", ev.Kind, err)
		}
	}
}

func (mh *matchHandler) sendSnapshot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, presences []runtime.Presence) {
	bytes, err := encodeMessage(snapshotToMap(state.App.Snapshot()))
	if err != nil {
		logger.Error("Failed to marshal snapshot: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpSnapshotResult, bytes, presences, nil, true); err != nil {
		logger.Error("Failed to send snapshot: %v", err)
	}
}

func (mh *matchHandler) sendTo(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, opCode int64, payload map[string]interface{}) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send op %d to %s: Presence not found", opCode, userID)
		return
	}
	bytes, err := encodeMessage(payload)
	if err != nil {
		logger.Error("Failed to marshal op %d: %v", opCode, err)
		return
	}
	if err := dispatcher.BroadcastMessage(opCode, bytes, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("Failed to send op %d: %v", opCode, err)
	}
}

// sendError sends an error event to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	mh.sendTo(state, dispatcher, logger, userID, OpError, map[string]interface{}{
		"code":    code,
		"message": message,
	})
}

func (mh *matchHandler) buildLabel(state *MatchState) (string, error) {
	snap := state.App.Snapshot()
	bytes, err := encodeMessage(map[string]interface{}{
		"game":       "solitaire",
		"owner":      state.OwnerID,
		"seed":       strconv.FormatInt(snap.Seed, 10),
		"won":        snap.Won,
		"spectators": spectatorCount(state),
	})
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func spectatorCount(state *MatchState) int {
	n := len(state.Presences)
	if _, ok := state.Presences[state.OwnerID]; ok {
		n--
	}
	return n
}

// updateLabel pushes the label only when it changed.
func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := mh.buildLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if label == state.lastLabel {
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
		return
	}
	state.lastLabel = label
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
