package main

import (
	"strconv"

	"studentdeals-backend/internal/shared/utils"
	"studentdeals-backend/pkg/logger"
)

// WorkerConfig holds the worker process settings.
type WorkerConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
	HealthPort    string
}

func loadWorkerConfig() *WorkerConfig {
	redisDB, _ := strconv.Atoi(utils.GetEnvVariable("REDIS_DB", "0"))
	concurrency, _ := strconv.Atoi(utils.GetEnvVariable("WORKER_CONCURRENCY", "10"))

	cfg := &WorkerConfig{
		RedisAddr:     utils.GetEnvVariable("REDIS_HOST", "localhost:6379"),
		RedisPassword: utils.GetEnvVariable("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,
		Concurrency:   concurrency,
		HealthPort:    utils.GetEnvVariable("WORKER_HEALTH_PORT", "9999"),
	}

	logger.Info("Worker config loaded", map[string]interface{}{
		"redis":       cfg.RedisAddr,
		"concurrency": cfg.Concurrency,
	})
	return cfg
}
