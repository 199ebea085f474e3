package nakama

const (
	// RpcCreateMatch creates a solitaire match owned by the caller.
	RpcCreateMatch = "solitaire_create_match"
	// RpcChallenge signs a deal challenge that can be shared and replayed.
	RpcChallenge = "solitaire_challenge"

	// MatchNameSolitaire is the authoritative match handler name registered with Nakama.
	MatchNameSolitaire = "solitaire_match"

	// MaxPresences caps the owner plus spectators of one match.
	MaxPresences = 16
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpNewGame  int64 = 1
	OpDraw     int64 = 2
	OpMove     int64 = 3
	OpAutoMove int64 = 4
	OpHint     int64 = 5
	OpSnapshot int64 = 6

	// Server -> Client events
	OpGameStarted       int64 = 100
	OpCardRelocated     int64 = 101
	OpCardFlipped       int64 = 102
	OpStockRecycled     int64 = 103
	OpTransitionStarted int64 = 104
	OpGameWon           int64 = 105
	OpMoveRejected      int64 = 106
	OpHintResult        int64 = 107 // sent to the requester only
	OpSnapshotResult    int64 = 108 // sent to the requester only
	OpError             int64 = 109 // sent to the requester only
)

// Runtime environment keys read from the Nakama config.
const (
	EnvChallengeSecret = "solitaire_challenge_secret"
	EnvAutoMove        = "solitaire_auto_move"
	EnvTickRate        = "solitaire_tick_rate"
	EnvConfigPath      = "solitaire_config_path"
)

// DefaultConfigPath is read at module init when EnvConfigPath is not set.
const DefaultConfigPath = "data/solitaire.yaml"
