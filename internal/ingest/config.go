package ingest

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultDays  = 90
	DefaultDelay = 500 * time.Millisecond
)

// Config carries the importer settings. Everything has a default; the
// importer can run with an empty environment plus DATABASE_URL.
type Config struct {
	TVMazeBaseURL      string
	Days               int
	Delay              time.Duration
	NATSURL            string
	RunOnStart         bool
	EnableHTTPTriggers bool
}

func LoadConfig() Config {
	cfg := Config{
		TVMazeBaseURL:      strings.TrimSpace(os.Getenv("TVMAZE_BASE_URL")),
		Days:               envInt("IMPORT_DAYS", DefaultDays),
		Delay:              envDuration("IMPORT_DELAY", DefaultDelay),
		NATSURL:            strings.TrimSpace(os.Getenv("NATS_URL")),
		RunOnStart:         envBool("RUN_ON_START"),
		EnableHTTPTriggers: envBool("ENABLE_HTTP_TRIGGERS"),
	}
	if cfg.TVMazeBaseURL == "" {
		cfg.TVMazeBaseURL = "https://api.tvmaze.com"
	}
	return cfg
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envBool(key string) bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(key)), "true")
}
