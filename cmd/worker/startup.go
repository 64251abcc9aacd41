package main

import (
	"net/http"

	"studentdeals-backend/pkg/logger"
)

// startHealthCheckServer exposes liveness and readiness probes for the
// worker process.
func startHealthCheckServer(port string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"UP","service":"studentdeals-worker"}`))
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"READY"}`))
	})

	logger.Info("Worker health server listening", map[string]interface{}{"port": port})
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		logger.Error("Worker health server failed", err)
	}
}
