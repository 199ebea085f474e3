package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/heroiclabs/nakama-common/runtime"

	"solitaire/internal/app"
	"solitaire/internal/config"
)

// gRPC status codes used by runtime.NewError.
const (
	codeInvalidArgument = 3
	codeInternal        = 13
	codeUnimplemented   = 12
	codeUnauthenticated = 16
)

type seedRequest struct {
	Seed json.RawMessage `json:"seed,omitempty"`
}

// CreateMatchResponse is returned by RpcCreateMatch.
type CreateMatchResponse struct {
	MatchID string `json:"match_id"`
}

// ChallengeResponse is returned by RpcChallenge.
type ChallengeResponse struct {
	Token string `json:"token"`
	Seed  string `json:"seed"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcCreateMatch, rpcCreateMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcChallenge, rpcChallenge)
}

// parseSeedPayload accepts `{}`, `{"seed": 42}` or `{"seed": "daily"}` and returns the raw seed text.
func parseSeedPayload(payload string) (string, error) {
	if strings.TrimSpace(payload) == "" {
		return "", nil
	}
	var req seedRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", err
	}
	return app.SeedText(req.Seed)
}

func rpcCreateMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("authentication required", codeUnauthenticated)
	}
	seed, err := parseSeedPayload(payload)
	if err != nil {
		return "", runtime.NewError("invalid payload", codeInvalidArgument)
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameSolitaire, map[string]interface{}{
		"owner": userID,
		"seed":  seed,
	})
	if err != nil {
		logger.Error("rpcCreateMatch [User:%s]: Failed to create match: %v", userID, err)
		return "", runtime.NewError("could not create match", codeInternal)
	}
	logger.Info("rpcCreateMatch [User:%s]: Created match %s", userID, matchID)

	b, _ := json.Marshal(CreateMatchResponse{MatchID: matchID})
	return string(b), nil
}

func rpcChallenge(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	secret := env[EnvChallengeSecret]
	if secret == "" {
		return "", runtime.NewError("deal challenges are not configured", codeUnimplemented)
	}
	raw, err := parseSeedPayload(payload)
	if err != nil {
		return "", runtime.NewError("invalid payload", codeInvalidArgument)
	}

	cfg := config.GetGameConfig()
	seed := app.ResolveSeed(raw, nil)
	token, err := app.NewChallengeService(secret, cfg.Challenge.Issuer, cfg.ChallengeTTL()).Issue(seed)
	if err != nil {
		logger.Error("rpcChallenge: Failed to sign challenge: %v", err)
		return "", runtime.NewError("could not sign challenge", codeInternal)
	}

	b, _ := json.Marshal(ChallengeResponse{Token: token, Seed: strconv.FormatInt(seed, 10)})
	return string(b), nil
}
