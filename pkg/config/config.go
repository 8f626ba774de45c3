package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries the client's connection settings. Values come from the
// environment with development defaults, matching how the services configure
// themselves.
type Config struct {
	// APIBaseURL is the base URL of the collaborating REST backend.
	APIBaseURL string

	// WSHost overrides the websocket host. When empty the socket host is
	// derived from PageHost with the backend's alternate port.
	WSHost string

	// PageHost is the host the client considers itself served from; the
	// socket endpoint mirrors it when no explicit WSHost is set.
	PageHost string

	// Secure selects wss over ws, mirroring the page's transport security.
	Secure bool
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIBaseURL: getEnv("FEEDBACK_API_URL", "http://localhost:8000"),
		WSHost:     os.Getenv("FEEDBACK_WS_HOST"),
		PageHost:   getEnv("FEEDBACK_PAGE_HOST", "localhost"),
		Secure:     os.Getenv("FEEDBACK_SECURE") == "true",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
