package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Validate checks value ranges. Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range (got %d)", c.Server.Port)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case "memory":
	case "sqlite":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("storage.driver must be memory or sqlite (got %q)", c.Storage.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be > 0 (got %v)", c.Auth.TokenTTL)
	}

	if err := c.Game.validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}

	if c.Ranking.TopN <= 0 {
		return fmt.Errorf("ranking.top_n must be > 0 (got %d)", c.Ranking.TopN)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate_limit rps and burst must be > 0 (got %d/%d)", c.RateLimit.RPS, c.RateLimit.Burst)
	}
	return nil
}

func (g GameConfig) validate() error {
	if g.RoundPoints < 0 {
		return fmt.Errorf("round_points must be >= 0 (got %d)", g.RoundPoints)
	}
	if g.HintBudget < 0 || g.HintPenalty < 0 || g.GuessPenalty < 0 || g.PenaltyEvery < 0 {
		return fmt.Errorf("hint and penalty settings must be >= 0")
	}
	if g.AdvanceDelay < 0 {
		return fmt.Errorf("advance_delay must be >= 0 (got %v)", g.AdvanceDelay)
	}
	return nil
}
