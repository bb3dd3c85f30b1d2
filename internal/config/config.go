package config

import (
	"errors"
	"os"
)

type Config struct {
	WSURL    string
	APIURL   string
	Token    string
	LogLevel string
}

// Load reads configuration from environment variables. The token is
// owned by the auth collaborator; without it we never even dial.
func Load() (*Config, error) {
	cfg := &Config{
		WSURL:    getEnvOrDefault("QUIZDUEL_WS_URL", "ws://127.0.0.1:8000/ws/pvp"),
		APIURL:   getEnvOrDefault("QUIZDUEL_API_URL", "http://127.0.0.1:8000"),
		Token:    os.Getenv("QUIZDUEL_TOKEN"),
		LogLevel: getEnvOrDefault("QUIZDUEL_LOG_LEVEL", "info"),
	}
	if cfg.WSURL == "" || cfg.APIURL == "" {
		return nil, errors.New("server endpoints must not be empty")
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
