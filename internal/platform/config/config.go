// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the top-level configuration of the service.
type Config struct {
	// Env is the deployment environment ("development", "production", "test").
	Env string `env:"NODE_ENV" envDefault:"development"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// RunMigrations enables GORM AutoMigrate of the users table at startup.
	RunMigrations bool `env:"RUN_MIGRATIONS" envDefault:"false"`

	Server Server
	DB     DB    `envPrefix:"DB_"`
	Redis  Redis `envPrefix:"REDIS_"`
	Auth   Auth
}

// Server holds the listener settings.
type Server struct {
	Address         string        `env:"SERVER_ADDRESS" envDefault:":3000"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// TrustedProxies lists the IPs or CIDRs allowed to set X-Forwarded-For.
	// Empty means the peer address is always the client IP.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// DB holds the Postgres connection settings.
// URL, when set, takes precedence over the individual fields.
type DB struct {
	URL            string        `env:"URL"`
	Host           string        `env:"HOST" envDefault:"localhost"`
	Port           string        `env:"PORT" envDefault:"5432"`
	User           string        `env:"USER" envDefault:"postgres"`
	Password       string        `env:"PASSWORD"`
	Name           string        `env:"NAME" envDefault:"acquisitions"`
	SSLMode        string        `env:"SSLMODE" envDefault:"disable"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"60s"`
}

// Redis holds the optional cache connection settings.
// An empty Host disables the cache.
type Redis struct {
	Host     string `env:"HOST"`
	Port     string `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// Enabled reports whether a Redis host is configured.
func (r Redis) Enabled() bool {
	return r.Host != ""
}

// Addr returns the host:port address of the Redis server.
func (r Redis) Addr() string {
	return r.Host + ":" + r.Port
}

// Auth holds token and cookie settings.
type Auth struct {
	JWTSecret  string        `env:"JWT_SECRET"`
	TokenTTL   time.Duration `env:"JWT_EXPIRES_IN" envDefault:"24h"`
	CookieName string        `env:"AUTH_COOKIE_NAME" envDefault:"token"`

	// RateLimit caps auth requests per client IP within RateWindow. 0 disables it.
	RateLimit  int           `env:"AUTH_RATE_LIMIT" envDefault:"20"`
	RateWindow time.Duration `env:"AUTH_RATE_WINDOW" envDefault:"1m"`
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads an optional .env file and then parses the environment.
// A missing .env is fine; one that exists but cannot be read is an error.
func Load() (*Config, error) {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}
	return nil
}

// Validate checks settings that have no safe default.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" && c.IsProduction() {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Auth.CookieName == "" {
		return errors.New("AUTH_COOKIE_NAME must not be empty")
	}
	if c.Auth.RateLimit < 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT must not be negative, got %d", c.Auth.RateLimit)
	}
	if c.Auth.RateLimit > 0 && c.Auth.RateWindow <= 0 {
		return fmt.Errorf("AUTH_RATE_WINDOW must be positive, got %s", c.Auth.RateWindow)
	}
	for _, p := range c.Server.TrustedProxies {
		if net.ParseIP(p) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(p); err != nil {
			return fmt.Errorf("TRUSTED_PROXIES entry %q is not an IP or CIDR", p)
		}
	}
	return nil
}
