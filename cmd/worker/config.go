package main

import (
	"log"
	"os"
	"strconv"

	"github.com/hibiken/asynq"

	"qrlink-backend/internal/config"
)

// Config holds worker-only configuration
type Config struct {
	Redis       asynq.RedisClientOpt
	Concurrency int
	HealthPort  string
}

// loadConfig reuses the Redis settings of the app config so API and worker share one queue
func loadConfig(appCfg *config.Config) *Config {
	concurrency, err := strconv.Atoi(os.Getenv("WORKER_CONCURRENCY"))
	if err != nil || concurrency <= 0 {
		concurrency = 10
	}

	healthPort := os.Getenv("WORKER_HEALTH_PORT")
	if healthPort == "" {
		healthPort = "9999"
	}

	cfg := &Config{
		Redis: asynq.RedisClientOpt{
			Addr:     appCfg.Redis.Host,
			Password: appCfg.Redis.Password,
			DB:       appCfg.Redis.DB,
		},
		Concurrency: concurrency,
		HealthPort:  healthPort,
	}

	log.Printf("[Config] Redis: %s, Concurrency: %d", cfg.Redis.Addr, cfg.Concurrency)

	return cfg
}
