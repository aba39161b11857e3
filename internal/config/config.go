package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"itinerary-route-service/internal/platform/db"
)

type Config struct {
	Port string

	DBDriver    db.Dialect
	DBPath      string
	DatabaseURL string
	SeedPath    string

	ORSAPIKey  string
	ORSProfile string
	ORSCountry string

	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	SolveTimeBudget time.Duration
	MaxTimeBudget   time.Duration
	ExactLimit      int
	PenaltyMinutes  int
}

// LoadDotEnv reads .env when present. A missing file is not an error.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

// Load reads the service configuration from the environment.
func Load() (*Config, error) {
	driver, err := db.ParseDialect(getEnv("DB_DRIVER", "sqlite"))
	if err != nil {
		return nil, fmt.Errorf("config: DB_DRIVER: %w", err)
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		DBDriver:    driver,
		DBPath:      getEnv("DB_PATH", "data/app.db"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SeedPath:    getEnv("SEED_PATH", "data/seeds/scenarios.json"),

		ORSAPIKey:  strings.TrimSpace(os.Getenv("ORS_API_KEY")),
		ORSProfile: getEnv("ORS_PROFILE", "driving-car"),
		ORSCountry: getEnv("ORS_COUNTRY", "US"),

		RedisEnabled:  getBoolEnv("REDIS_ENABLED", false),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		CacheTTL:      getDurationEnv("CACHE_TTL", 7*24*time.Hour),

		SolveTimeBudget: getDurationEnv("SOLVE_TIME_BUDGET", 5*time.Second),
		MaxTimeBudget:   getDurationEnv("MAX_TIME_BUDGET", 30*time.Second),
		ExactLimit:      getIntEnv("EXACT_LIMIT", 9),
		PenaltyMinutes:  getIntEnv("PENALTY_MINUTES", 99999),
	}

	if cfg.DBDriver == db.Postgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("config: DATABASE_URL is required when DB_DRIVER=postgres")
	}
	if cfg.PenaltyMinutes <= 0 {
		return nil, fmt.Errorf("config: PENALTY_MINUTES must be positive, got %d", cfg.PenaltyMinutes)
	}

	return cfg, nil
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	return getEnv(key, fallback)
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("config: ignoring invalid duration %s=%q", key, v)
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("config: ignoring invalid integer %s=%q", key, v)
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("config: ignoring invalid boolean %s=%q", key, v)
	}
	return defaultVal
}
