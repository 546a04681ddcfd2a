package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration, loaded from the environment
// with optional .env overrides for local development.
type Config struct {
	Port   string
	DBPath string

	// Pipeline tuning
	WindowDuration  time.Duration
	MinWindowSize   int
	MergeTolerance  time.Duration
	PipelineTimeout time.Duration
	WorkerCount     int

	// Transit fusion
	FusionRadiusMeters float64
	FusionTimeWindow   time.Duration
	FusionQueryTimeout time.Duration
	TransitEnabled     bool
}

// Load reads configuration from the environment
func Load() *Config {
	// Missing .env is fine; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[Config] Skipping .env: %v", err)
	}

	return &Config{
		Port:   getEnv("PORT", ":8080"),
		DBPath: getEnv("DB_PATH", "./data/journeys.db"),

		WindowDuration:  getDuration("WINDOW_DURATION", 10*time.Second),
		MinWindowSize:   getInt("MIN_WINDOW_SIZE", 5),
		MergeTolerance:  getDuration("MERGE_TOLERANCE", 30*time.Second),
		PipelineTimeout: getDuration("PIPELINE_TIMEOUT", 60*time.Second),
		WorkerCount:     getInt("WORKER_COUNT", 4),

		FusionRadiusMeters: getFloat("FUSION_RADIUS_METERS", 50),
		FusionTimeWindow:   getDuration("FUSION_TIME_WINDOW", 5*time.Minute),
		FusionQueryTimeout: getDuration("FUSION_QUERY_TIMEOUT", 5*time.Second),
		TransitEnabled:     getBool("TRANSIT_ENABLED", true),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[Config] Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("[Config] Invalid %s=%q, using %g", key, v, fallback)
		return fallback
	}
	return f
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[Config] Invalid %s=%q, using %t", key, v, fallback)
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[Config] Invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return d
}
