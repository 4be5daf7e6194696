// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the HTTP server, the datastore and the
// intent-extraction collaborator.
type Config struct {
	HTTPAddr        string
	DatabaseDSN     string
	GeminiAPIKey    string
	GeminiModel     string
	ShutdownTimeout time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durenvs(key string, defSec int) time.Duration {
	v := getenv(key, "")
	if v == "" {
		return time.Duration(defSec) * time.Second
	}
	sec, err := strconv.Atoi(v)
	if err != nil {
		return time.Duration(defSec) * time.Second
	}
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults. A missing
// GEMINI_API_KEY is not an error; the machine falls back to the rule-based
// extractor.
func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8008"),
		DatabaseDSN:     getenv("DATABASE_DSN", "vendbot.db"),
		GeminiAPIKey:    getenv("GEMINI_API_KEY", ""),
		GeminiModel:     getenv("GEMINI_MODEL", "gemini-2.5-flash"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 30),
	}
}
