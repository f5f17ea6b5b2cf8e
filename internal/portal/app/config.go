package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/billybuddy/internal/portal/controller"
	"github.com/aussiebroadwan/billybuddy/internal/portal/session"
)

// Config is read from the environment, optionally seeded by a .env file.
type Config struct {
	// BackendURL and BackendKey locate the clinic backend. Both are required.
	BackendURL string `env:"BILLYBUDDY_BACKEND_URL,required,notEmpty"`
	BackendKey string `env:"BILLYBUDDY_BACKEND_KEY,required,notEmpty"`

	BaseURL string `env:"PORTAL_BASE_URL" envDefault:"http://localhost:8081"`

	ForcePasswordChange bool          `env:"PORTAL_FORCE_PASSWORD_CHANGE" envDefault:"true"`
	ProfileTimeout      time.Duration `env:"PORTAL_PROFILE_TIMEOUT"       envDefault:"5s"`
	InitTimeout         time.Duration `env:"PORTAL_SESSION_INIT_TIMEOUT"  envDefault:"5s"`
	VisitorIdleTTL      time.Duration `env:"PORTAL_VISITOR_IDLE_TTL"      envDefault:"30m"`
	SecureCookie        bool          `env:"PORTAL_SECURE_COOKIE"         envDefault:"false"`

	Redis RedisConfig `envPrefix:"REDIS_"`

	Env                 string        `env:"ENV"                   envDefault:"dev"`
	LogLevel            string        `env:"LOG_LEVEL"             envDefault:"info"`
	LogFormat           string        `env:"LOG_FORMAT"            envDefault:"json"`
	Port                int           `env:"PORT"                  envDefault:"8081"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

// RedisConfig selects where sessions persist. Without a URL sessions live
// in process memory and are lost on restart.
type RedisConfig struct {
	URL       string        `env:"URL"`
	KeyPrefix string        `env:"KEY_PREFIX" envDefault:"billybuddy:session:"`
	TTL       time.Duration `env:"SESSION_TTL" envDefault:"168h"`
}

// LoadConfig reads .env when present and then the environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.sanitize()
	return cfg, nil
}

func (c *Config) sanitize() {
	if c.ProfileTimeout <= 0 {
		c.ProfileTimeout = session.DefaultProfileTimeout
	}
	if c.InitTimeout <= 0 {
		c.InitTimeout = session.DefaultInitTimeout
	}
	if c.VisitorIdleTTL <= 0 {
		c.VisitorIdleTTL = controller.DefaultIdleTTL
	}
	if c.Redis.TTL <= 0 {
		c.Redis.TTL = session.DefaultRedisTTL
	}
}

func (c Config) controllerConfig() controller.Config {
	return controller.Config{
		ForcePasswordChange: c.ForcePasswordChange,
		ProfileTimeout:      c.ProfileTimeout,
		InitTimeout:         c.InitTimeout,
		BaseURL:             c.BaseURL,
	}
}
