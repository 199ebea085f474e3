package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"solitaire/internal/app"
	"solitaire/internal/bot"
	"solitaire/internal/domain"
)

const (
	writeTimeout = 5 * time.Second
	readLimit    = 16 << 10
	outboxSize   = 256
)

// session owns one socket and one engine. Every engine call, including timer callbacks,
// runs on the goroutine executing run.
type session struct {
	id         string
	conn       *websocket.Conn
	logger     runtime.Logger
	svc        *app.Service
	challenges *app.ChallengeService

	ctx    context.Context
	cancel context.CancelFunc
	tasks  chan func()
	out    chan Msg
}

func newSession(ctx context.Context, srv *Server, conn *websocket.Conn) *session {
	id := uuid.NewString()
	s := &session{
		id:         id,
		conn:       conn,
		logger:     srv.logger.WithField("session", id),
		challenges: srv.challenges,
		tasks:      make(chan func(), 64),
		out:        make(chan Msg, outboxSize),
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	brain, err := bot.NewBrain(bot.BotLevel(srv.cfg.HintLevel))
	if err != nil {
		s.logger.Warn("%v, using the default hint level", err)
	}
	s.svc = app.NewService(app.Options{
		Timer:        loopTimer{post: s.post},
		Brain:        brain,
		Sink:         app.SinkFunc(s.publish),
		Logger:       s.logger,
		Animation:    srv.cfg.AnimationDuration(),
		DrawCooldown: srv.cfg.DrawCooldown(),
		AutoMove:     srv.cfg.AutoMove,
		Lenient:      !srv.cfg.StrictInvariants,
	})
	return s
}

// post queues fn for the event loop. It is dropped once the session has ended.
func (s *session) post(fn func()) {
	select {
	case s.tasks <- fn:
	case <-s.ctx.Done():
	}
}

// run deals the first game and serves the socket until either side closes it.
func (s *session) run(seed string) {
	defer s.cancel()
	s.logger.Info("session opened")

	go s.writeLoop()
	go s.readLoop()

	s.post(func() { s.svc.NewGame(seed) })

	for {
		select {
		case fn := <-s.tasks:
			if err := s.exec(fn); err != nil {
				s.logger.Error("engine failure, closing session: %v", err)
				_ = s.conn.Close(websocket.StatusInternalError, "engine failure")
				return
			}
		case <-s.ctx.Done():
			s.logger.Info("session closed")
			return
		}
	}
}

// exec runs fn and turns a strict-mode invariant panic into an error.
func (s *session) exec(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = errors.New("engine panic")
		}
	}()
	fn()
	return nil
}

func (s *session) readLoop() {
	defer s.cancel()
	s.conn.SetReadLimit(readLimit)
	for {
		var msg Msg
		if err := wsjson.Read(s.ctx, s.conn, &msg); err != nil {
			if websocket.CloseStatus(err) == -1 && s.ctx.Err() == nil {
				s.logger.Debug("read failed: %v", err)
			}
			return
		}
		s.post(func() { s.handle(msg) })
	}
}

func (s *session) writeLoop() {
	defer s.cancel()
	for {
		select {
		case msg := <-s.out:
			ctx, cancel := context.WithTimeout(s.ctx, writeTimeout)
			err := wsjson.Write(ctx, s.conn, msg)
			cancel()
			if err != nil {
				s.logger.Debug("write failed: %v", err)
				return
			}
		case <-s.ctx.Done():
			_ = s.conn.Close(websocket.StatusNormalClosure, "bye")
			return
		}
	}
}

func (s *session) send(msg Msg) {
	select {
	case s.out <- msg:
	case <-s.ctx.Done():
	}
}

func (s *session) reply(kind string, payload interface{}) {
	msg, err := encode(kind, payload)
	if err != nil {
		s.logger.Error("failed to marshal %s: %v", kind, err)
		return
	}
	s.send(msg)
}

func (s *session) replyError(code, message string) {
	s.reply(ReplyError, ErrorReply{Code: code, Message: message})
}

// publish is the engine's EventSink.
func (s *session) publish(ev app.Event) {
	payload, err := eventPayload(ev)
	if err != nil {
		s.logger.Warn("publish: %v", err)
		return
	}
	s.reply(string(ev.Kind), payload)
}

func (s *session) handle(msg Msg) {
	switch msg.T {
	case IntentNewGame:
		var req NewGameRequest
		if !s.decode(msg, &req) {
			return
		}
		s.newGame(req)
	case IntentDraw:
		if err := s.svc.DrawFromStock(); err != nil {
			if errors.Is(err, app.ErrDrawCoolingDown) {
				s.logger.Debug("draw dropped during cooldown")
				return
			}
			s.replyError(CodeConflict, err.Error())
		}
	case IntentMove:
		var req MoveRequest
		if !s.decode(msg, &req) {
			return
		}
		card, err := req.Card.card()
		if err != nil {
			s.replyError(CodeBadRequest, err.Error())
			return
		}
		// Rejections arrive as move_rejected events.
		_ = s.svc.AttemptMove(card, domain.PileID(req.Target))
	case IntentAutoMove:
		var req CardRequest
		if !s.decode(msg, &req) {
			return
		}
		card, err := req.Card.card()
		if err != nil {
			s.replyError(CodeBadRequest, err.Error())
			return
		}
		_ = s.svc.AttemptAutoMoveToFoundation(card)
	case IntentHint:
		s.reply(ReplyHint, hintReply(s.svc.Hint()))
	case IntentSnapshot:
		s.reply(ReplySnapshot, snapshotJSON(s.svc.Snapshot()))
	case IntentTargets:
		var req CardRequest
		if !s.decode(msg, &req) {
			return
		}
		card, err := req.Card.card()
		if err != nil {
			s.replyError(CodeBadRequest, err.Error())
			return
		}
		targets := []string{}
		for _, id := range s.svc.ValidTargets(card) {
			targets = append(targets, string(id))
		}
		s.reply(ReplyTargets, TargetsReply{Card: cardJSON(card), Targets: targets})
	default:
		s.logger.Warn("unknown intent %q", msg.T)
		s.replyError(CodeUnknownIntent, "unknown intent "+msg.T)
	}
}

func (s *session) decode(msg Msg, v interface{}) bool {
	if len(msg.M) == 0 {
		return true
	}
	if err := json.Unmarshal(msg.M, v); err != nil {
		s.replyError(CodeBadRequest, "malformed payload")
		return false
	}
	return true
}

func (s *session) newGame(req NewGameRequest) {
	if req.Challenge == "" {
		seed, err := app.SeedText(req.Seed)
		if err != nil {
			s.replyError(CodeBadRequest, "seed must be a string or a number")
			return
		}
		s.svc.NewGame(seed)
		return
	}
	if s.challenges == nil {
		s.replyError(CodeUnavailable, "deal challenges are not configured")
		return
	}
	seed, err := s.challenges.Verify(req.Challenge)
	if err != nil {
		s.logger.Warn("rejected challenge: %v", err)
		s.replyError(CodeBadRequest, err.Error())
		return
	}
	s.svc.NewGameWithSeed(seed)
}
