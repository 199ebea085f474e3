package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type ChallengeConfig struct {
	Issuer   string `yaml:"issuer"`
	TTLHours int    `yaml:"ttl_hours"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type GameConfig struct {
	AnimationMS      int  `yaml:"animation_ms"`
	DrawCooldownMS   int  `yaml:"draw_cooldown_ms"`
	AutoMove         bool `yaml:"auto_move"`
	StrictInvariants bool `yaml:"strict_invariants"`
	// TickRate is the Nakama match loop frequency, in ticks per second.
	TickRate  int             `yaml:"tick_rate"`
	HintLevel string          `yaml:"hint_level"`
	Challenge ChallengeConfig `yaml:"challenge"`
	Server    ServerConfig    `yaml:"server"`
}

const (
	MinTickRate = 1
	MaxTickRate = 60
)

// Default returns the configuration used when no file is supplied.
func Default() *GameConfig {
	return &GameConfig{
		AnimationMS:      300,
		DrawCooldownMS:   100,
		AutoMove:         true,
		StrictInvariants: true,
		TickRate:         10,
		HintLevel:        "smart",
		Challenge: ChallengeConfig{
			Issuer:   "solitaire",
			TTLHours: 168,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Parse decodes YAML (or JSON) on top of the defaults and validates the result.
func Parse(data []byte) (*GameConfig, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate rejects values the engine cannot run with.
func (c *GameConfig) Validate() error {
	if c.AnimationMS < 0 {
		return fmt.Errorf("animation_ms must not be negative, got %d", c.AnimationMS)
	}
	if c.DrawCooldownMS < 0 {
		return fmt.Errorf("draw_cooldown_ms must not be negative, got %d", c.DrawCooldownMS)
	}
	if c.TickRate < MinTickRate || c.TickRate > MaxTickRate {
		return fmt.Errorf("tick_rate must be within %d..%d, got %d", MinTickRate, MaxTickRate, c.TickRate)
	}
	switch c.HintLevel {
	case "", "good", "smart":
	default:
		return fmt.Errorf("hint_level must be good or smart, got %q", c.HintLevel)
	}
	if c.Challenge.TTLHours <= 0 {
		return fmt.Errorf("challenge.ttl_hours must be positive, got %d", c.Challenge.TTLHours)
	}
	return nil
}

func (c *GameConfig) AnimationDuration() time.Duration {
	return time.Duration(c.AnimationMS) * time.Millisecond
}

func (c *GameConfig) DrawCooldown() time.Duration {
	return time.Duration(c.DrawCooldownMS) * time.Millisecond
}

func (c *GameConfig) ChallengeTTL() time.Duration {
	return time.Duration(c.Challenge.TTLHours) * time.Hour
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path once per process.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}
		cfg, loadErr = Parse(data)
	})
	return loadErr
}

// GetGameConfig returns the loaded configuration, or the defaults when nothing was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return Default()
	}
	return cfg
}
