package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Env        string
	ListenAddr string
	LogLevel   string

	StoreDriver    string
	DatabaseURL    string
	MigrateOnStart bool

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ProfileCacheTTL time.Duration

	AnthropicAPIKey   string
	AnthropicModel    string
	AnthropicBaseURL  string
	ExtractionTimeout time.Duration

	FreshnessDays      int
	CompletenessWarnAt int

	RefreshWorkers  int
	RefreshInterval time.Duration
}

// ErrNoDatabaseURL is returned alongside a usable config when the postgres
// driver is selected without DATABASE_URL.
var ErrNoDatabaseURL = errors.New("DATABASE_URL not set")

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads .env files (if present) and then the process environment.
func Load() (Config, error) {
	loadEnvFiles()

	cfg := Config{
		Env:        getenv("APP_ENV", "development"),
		ListenAddr: getenv("LISTEN_ADDR", ":8080"),
		LogLevel:   getenv("LOG_LEVEL", "info"),

		StoreDriver:    strings.ToLower(getenv("STORE_DRIVER", DriverPostgres)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MigrateOnStart: getenvBool("MIGRATE_ON_START", true),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         getenvInt("REDIS_DB", 0),
		ProfileCacheTTL: getenvDuration("PROFILE_CACHE_TTL", 10*time.Minute),

		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:    getenv("ANTHROPIC_MODEL", "claude-sonnet-4-5"),
		AnthropicBaseURL:  os.Getenv("ANTHROPIC_BASE_URL"),
		ExtractionTimeout: getenvDuration("EXTRACTION_TIMEOUT", 5*time.Minute),

		FreshnessDays:      getenvInt("FRESHNESS_DAYS", 30),
		CompletenessWarnAt: getenvInt("COMPLETENESS_WARN_AT", 60),

		RefreshWorkers:  getenvInt("REFRESH_WORKERS", 0),
		RefreshInterval: getenvDuration("REFRESH_INTERVAL", time.Hour),
	}
	if cfg.StoreDriver != DriverPostgres && cfg.StoreDriver != DriverMemory {
		return cfg, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.StoreDriver == DriverPostgres && cfg.DatabaseURL == "" {
		// Not fatal for early local runs; callers decide.
		return cfg, ErrNoDatabaseURL
	}
	return cfg, nil
}

// FreshnessWindow is the age under which a stored profile is served as-is.
func (c Config) FreshnessWindow() time.Duration {
	return time.Duration(c.FreshnessDays) * 24 * time.Hour
}

// loadEnvFiles honours ENV_FILE, otherwise .env.local then .env. Existing
// process variables always win; missing files are ignored.
func loadEnvFiles() {
	if f := os.Getenv("ENV_FILE"); f != "" {
		_ = godotenv.Load(f)
		return
	}
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var out int
		if _, err := fmt.Sscanf(v, "%d", &out); err == nil {
			return out
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
