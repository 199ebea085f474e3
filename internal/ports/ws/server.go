package ws

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
	"nhooyr.io/websocket"

	"solitaire/internal/app"
	"solitaire/internal/config"
	"solitaire/internal/domain"
)

const apiTimeout = 10 * time.Second

// Server hosts the standalone HTTP API and one engine per websocket.
type Server struct {
	cfg        *config.GameConfig
	logger     runtime.Logger
	challenges *app.ChallengeService // nil when no secret is configured
	allowed    map[string]bool
}

// NewServer creates a server. An empty secret disables deal challenges.
func NewServer(cfg *config.GameConfig, logger runtime.Logger, secret string) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		allowed: make(map[string]bool, len(cfg.Server.AllowedOrigins)),
	}
	for _, origin := range cfg.Server.AllowedOrigins {
		if origin != "" {
			s.allowed[origin] = true
		}
	}
	if secret != "" {
		s.challenges = app.NewChallengeService(secret, cfg.Challenge.Issuer, cfg.ChallengeTTL())
	}
	return s
}

// Routes sets up the HTTP routes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.cors)

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(apiTimeout))
		r.Post("/challenges", s.handleChallenge)
		r.Get("/deals/{seed}", s.handleDeal)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleWS upgrades the connection and serves one session until it closes.
// The optional seed query parameter picks the first deal.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if origin := r.Header.Get("Origin"); origin != "" && !s.allowed[origin] {
		http.Error(w, "forbidden origin", http.StatusForbidden)
		return
	}
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.logger.Warn("websocket accept failed: %v", err)
		return
	}
	newSession(r.Context(), s, conn).run(r.URL.Query().Get("seed"))
}

func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	if s.challenges == nil {
		writeError(w, http.StatusNotImplemented, CodeUnavailable, "deal challenges are not configured")
		return
	}
	var req ChallengeRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "malformed payload")
			return
		}
	}
	raw, err := app.SeedText(req.Seed)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "seed must be a string or a number")
		return
	}
	seed := app.ResolveSeed(raw, nil)
	token, err := s.challenges.Issue(seed)
	if err != nil {
		s.logger.Error("failed to sign challenge: %v", err)
		writeError(w, http.StatusInternalServerError, CodeInternal, "could not sign challenge")
		return
	}
	writeJSON(w, http.StatusOK, ChallengeReply{Token: token, Seed: strconv.FormatInt(seed, 10)})
}

// handleDeal previews the opening layout for a seed without starting a session.
func (s *Server) handleDeal(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "seed")
	if raw == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "seed is required")
		return
	}
	seed := app.ResolveSeed(raw, nil)
	state := domain.DealNewGame(uuid.NewString(), seed)
	writeJSON(w, http.StatusOK, snapshotJSON(app.SnapshotOf(state, app.PhaseIdle, nil)))
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.WithFields(map[string]interface{}{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
		}).Debug("handled in %v", time.Since(start))
	})
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && s.allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorReply{Code: code, Message: message})
}
