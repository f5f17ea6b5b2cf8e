package app

import (
	"os"
	"strconv"
	"time"

	"github.com/aussiebroadwan/billybuddy/pkg/jwtx"
)

type Config struct {
	Issuer         string // issuer claim for access tokens (default: billybuddy-clinic)
	APIKey         string // project key every /v1 call must carry; required outside dev
	BootstrapToken string // Optional: token required to perform bootstrap

	NumKeys      int    // Optional: number of signing keys to generate (default: 3, min: 1, max: 10)
	DatabaseFile string // Optional: path to SQLite database file (default: ./clinic.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)
	MFAIssuer    string // Optional: issuer shown by authenticator apps (default: BillyBuddy)

	AccessTTL  time.Duration // access token lifetime (default: 15m)
	RefreshTTL time.Duration // refresh token lifetime (default: 7 days)
	MFATTL     time.Duration // MFA challenge lifetime (default: 5m)
	ResetTTL   time.Duration // password recovery token lifetime (default: 1h)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:         getEnvOrDefault("CLINIC_ISSUER", "billybuddy-clinic"),
		APIKey:         os.Getenv("CLINIC_API_KEY"),
		BootstrapToken: os.Getenv("BOOTSTRAP_TOKEN"),
		NumKeys:        getEnvIntOrDefault("CLINIC_NUM_KEYS", 0),
		DatabaseFile:   getEnvOrDefault("CLINIC_DATABASE_FILE", "clinic.db"),
		PepperFile:     getEnvOrDefault("CLINIC_PEPPER_FILE", "pepper"),
		MFAIssuer:      getEnvOrDefault("CLINIC_MFA_ISSUER", "BillyBuddy"),

		AccessTTL:  getEnvDurationOrDefault("CLINIC_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL: getEnvDurationOrDefault("CLINIC_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		MFATTL:     getEnvDurationOrDefault("CLINIC_MFA_TTL", 5*time.Minute),
		ResetTTL:   getEnvDurationOrDefault("CLINIC_RESET_TTL", time.Hour),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
