package config

import (
	"time"

	"github.com/robalobadob/contexto/internal/game"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
	Storage   StorageConfig   `toml:"storage"`
	Game      GameConfig      `toml:"game"`
	Auth      AuthConfig      `toml:"auth"`
	Events    EventsConfig    `toml:"events"`
	Ranking   RankingConfig   `toml:"ranking"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Words     WordsConfig     `toml:"words"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `toml:"port"             env:"PORT"                    env-default:"5175"`
	ClientOrigin    string        `toml:"client_origin"    env:"CLIENT_ORIGIN"           env-default:"http://localhost:5173"`
	HandlerTimeout  time.Duration `toml:"handler_timeout"  env:"SERVER_HANDLER_TIMEOUT"  env-default:"10s"`
	ReadTimeout     time.Duration `toml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `toml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Pretty bool   `toml:"pretty" env:"LOG_PRETTY" env-default:"false"`
}

// StorageConfig selects the persisted-state backend.
type StorageConfig struct {
	Driver string `toml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`
	DSN    string `toml:"dsn"    env:"DB_PATH"        env-default:"./data/contexto.db"`
}

// GameConfig holds round rules.
type GameConfig struct {
	RoundPoints  int           `toml:"round_points"  env:"GAME_ROUND_POINTS"  env-default:"100"`
	HintBudget   int           `toml:"hint_budget"   env:"GAME_HINT_BUDGET"   env-default:"3"`
	HintPenalty  int           `toml:"hint_penalty"  env:"GAME_HINT_PENALTY"  env-default:"10"`
	PenaltyEvery int           `toml:"penalty_every" env:"GAME_PENALTY_EVERY" env-default:"10"`
	GuessPenalty int           `toml:"guess_penalty" env:"GAME_GUESS_PENALTY" env-default:"1"`
	AdvanceDelay time.Duration `toml:"advance_delay" env:"GAME_ADVANCE_DELAY" env-default:"600ms"`
}

// Rules converts the section into engine rules.
func (g GameConfig) Rules() game.Rules {
	return game.Rules{
		RoundPoints:  g.RoundPoints,
		HintBudget:   g.HintBudget,
		HintPenalty:  g.HintPenalty,
		PenaltyEvery: g.PenaltyEvery,
		GuessPenalty: g.GuessPenalty,
		AdvanceDelay: g.AdvanceDelay,
	}
}

// AuthConfig holds player token settings.
type AuthConfig struct {
	JWTSecret  string        `toml:"jwt_secret"  env:"JWT_SECRET"   env-default:"dev_change_me"`
	TokenTTL   time.Duration `toml:"token_ttl"   env:"JWT_TTL"      env-default:"720h"`
	CookieName string        `toml:"cookie_name" env:"COOKIE_NAME"  env-default:"contexto_token"`
	Secure     bool          `toml:"secure"      env:"COOKIE_SECURE" env-default:"false"`
}

// EventsConfig holds the external event sink settings. An empty endpoint disables it.
type EventsConfig struct {
	Endpoint  string        `toml:"endpoint"   env:"EVENTS_ENDPOINT"`
	Timeout   time.Duration `toml:"timeout"    env:"EVENTS_TIMEOUT"    env-default:"5s"`
	QueueSize int           `toml:"queue_size" env:"EVENTS_QUEUE_SIZE" env-default:"256"`
}

// RankingConfig holds leaderboard settings.
type RankingConfig struct {
	TopN int `toml:"top_n" env:"RANKING_TOP_N" env-default:"10"`
}

// RateLimitConfig bounds guess/hint requests per client IP.
type RateLimitConfig struct {
	RPS   int `toml:"rps"   env:"RATE_LIMIT_RPS"   env-default:"5"`
	Burst int `toml:"burst" env:"RATE_LIMIT_BURST" env-default:"10"`
}

// WordsConfig points at an optional dataset file; empty uses the embedded one.
type WordsConfig struct {
	File string `toml:"file" env:"WORDS_FILE"`
}
