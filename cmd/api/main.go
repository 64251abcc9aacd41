package main

import (
	"os"

	"github.com/joho/godotenv"

	"studentdeals-backend/pkg/container"
	"studentdeals-backend/pkg/logger"
)

func main() {
	// Missing .env is fine, real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env)

	c, err := container.NewContainer()
	if err != nil {
		logger.Error("Failed to initialize container", err)
		os.Exit(1)
	}
	defer c.Cleanup()

	if err := Serve(c); err != nil {
		logger.Error("Server stopped with error", err)
		os.Exit(1)
	}
}
