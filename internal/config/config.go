package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the client.
type Config struct {
	// APIURL is the base URL of the Oruma REST API.
	APIURL string

	// RealtimeURL is the WebSocket endpoint for realtime events.
	RealtimeURL string

	// UniversityAPIURL is the external university-directory endpoint.
	UniversityAPIURL string

	// UniversityTimeout bounds each directory lookup; the request is aborted
	// when it elapses.
	UniversityTimeout time.Duration

	// StorePath is the SQLite file holding tokens and cached searches.
	StorePath string

	// RefreshThreshold is how long before token expiry a proactive refresh
	// runs.
	RefreshThreshold time.Duration

	// SearchDebounce collapses bursts of keystroke-triggered searches into
	// one request.
	SearchDebounce time.Duration

	// PageSize is the default page size for listings.
	PageSize int
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file is honored in development.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		APIURL:            getEnv("ORUMA_API_URL", "http://localhost:5000/api"),
		RealtimeURL:       getEnv("ORUMA_WS_URL", "ws://localhost:5000/ws"),
		UniversityAPIURL:  getEnv("ORUMA_UNIVERSITY_API_URL", "http://universities.hipolabs.com"),
		UniversityTimeout: 8 * time.Second,
		RefreshThreshold:  5 * time.Minute,
		SearchDebounce:    300 * time.Millisecond,
		PageSize:          getEnvAsInt("ORUMA_PAGE_SIZE", 20),
	}

	if v := os.Getenv("ORUMA_UNIVERSITY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ORUMA_UNIVERSITY_TIMEOUT: %w", err)
		}
		cfg.UniversityTimeout = d
	}

	storePath := os.Getenv("ORUMA_STORE_PATH")
	if storePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		storePath = filepath.Join(home, ".oruma", "oruma.db")
	}
	cfg.StorePath = storePath

	if cfg.PageSize < 1 || cfg.PageSize > 100 {
		return nil, fmt.Errorf("ORUMA_PAGE_SIZE must be between 1 and 100")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
