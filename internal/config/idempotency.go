package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// IdempotencyConfig defines how write requests carrying an Idempotency-Key
// header are replayed.  When Enabled is false or no Redis client is
// configured the middleware passes requests straight through.  TTL bounds
// how long a stored response may be replayed; MaxBodyBytes caps the size of
// a stored body.
type IdempotencyConfig struct {
	Enabled      bool          `env:"IDEMPOTENCY_ENABLED" envDefault:"true"`
	Header       string        `env:"IDEMPOTENCY_HEADER" envDefault:"Idempotency-Key"`
	TTL          time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
	Prefix       string        `env:"IDEMPOTENCY_PREFIX" envDefault:"idem"`
	MaxBodyBytes int           `env:"IDEMPOTENCY_MAX_BODY_BYTES" envDefault:"65536"`
}

// LoadIdempotencyConfig reads environment variables to build an
// IdempotencyConfig.  Defaults are used when variables are not set.
func LoadIdempotencyConfig() IdempotencyConfig {
	var cfg IdempotencyConfig
	if err := env.Parse(&cfg); err != nil {
		return IdempotencyConfig{Enabled: true, Header: "Idempotency-Key", TTL: 24 * time.Hour, Prefix: "idem", MaxBodyBytes: 65536}
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return cfg
}
