package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	// AppID identifies this application to the external auth service.
	AppID          string `env:"APP_ID,required"`
	AuthServiceURL string `env:"AUTH_SERVICE_URL" envDefault:"https://auth.luova.club"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	LoginIntentTTL   time.Duration `env:"LOGIN_INTENT_TTL" envDefault:"10m"`
	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	AuthTimeout      time.Duration `env:"AUTH_TIMEOUT" envDefault:"5s"`
	ReverifyInterval time.Duration `env:"REVERIFY_INTERVAL" envDefault:"5m"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
