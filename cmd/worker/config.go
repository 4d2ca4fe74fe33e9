package main

import (
	"log"

	"paygate-backend/internal/shared/utils"
)

// Config holds worker-local configuration
type Config struct {
	RedisAddr  string
	HealthAddr string
}

// loadConfig loads configuration from environment variables
func loadConfig() *Config {
	cfg := &Config{
		RedisAddr:  utils.GetEnvVariable("REDIS_HOST", "localhost:6379"),
		HealthAddr: utils.GetEnvVariable("WORKER_HEALTH_ADDR", ":9999"),
	}

	log.Printf("[Config] Redis: %s, Health: %s", cfg.RedisAddr, cfg.HealthAddr)

	return cfg
}
