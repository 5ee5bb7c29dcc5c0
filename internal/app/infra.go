package app

import (
	"github.com/botsarefuture/lac-go/internal/config"
	"github.com/botsarefuture/lac-go/internal/logger"
	"github.com/botsarefuture/lac-go/internal/redis"
)

type Infra struct {
	// Redis is nil when no REDIS_ADDR is configured; the app then runs on
	// the in-memory stores.
	Redis *redis.Client
}

func setupInfra(cfg config.Config) (*Infra, error) {
	if cfg.RedisAddr == "" {
		logger.Info("no redis configured, using in-memory stores", nil)
		return &Infra{}, nil
	}

	redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}

	logger.Info("redis ready", nil)

	return &Infra{Redis: redisClient}, nil
}
