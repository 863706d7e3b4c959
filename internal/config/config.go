// Package config reads process settings from the environment, after loading
// any .env files found next to the working directory.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Placeholder secrets used when nothing is configured. Both are insecure and
// reported at startup.
const (
	DefaultAPIToken      = "changeme-token"
	DefaultSessionSecret = "dev_fallback_secret"
)

// Config holds everything read once at startup.
type Config struct {
	Port      string `validate:"required,numeric"`
	StaticDir string `validate:"required"`

	StoreDriver string `validate:"oneof=file bolt postgres"`
	DataFile    string `validate:"required_if=StoreDriver file"`
	BoltPath    string `validate:"required_if=StoreDriver bolt"`
	DBDSN       string `validate:"required_if=StoreDriver postgres"`

	AuthRequired  bool
	APIToken      string `validate:"max=72"`
	APITokenHash  string
	SessionSecret string `validate:"required"`

	WriteRate  float64 `validate:"gte=0"`
	WriteBurst int     `validate:"gte=0"`

	TrustedProxies []string `validate:"dive,cidr|ip"`

	LogMode string `validate:"oneof=development production"`
	LogFile string
}

// DotenvFiles are tried in order; missing files are ignored.
var DotenvFiles = []string{".env", "../.env", "../../.env"}

var validate = validator.New()

// Load reads .env files, then the environment.
func Load() (*Config, error) {
	for _, f := range DotenvFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Overload(f); err != nil {
				return nil, fmt.Errorf("load %s: %w", f, err)
			}
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:          env("APP_PORT", "8000"),
		StaticDir:     env("STATIC_DIR", "static"),
		StoreDriver:   strings.ToLower(env("STORE_DRIVER", "file")),
		DataFile:      env("DATA_FILE", "data/products.json"),
		BoltPath:      env("BOLT_PATH", "data/products.db"),
		DBDSN:         os.Getenv("DB_DSN"),
		APIToken:      env("API_TOKEN", DefaultAPIToken),
		APITokenHash:  os.Getenv("API_TOKEN_HASH"),
		SessionSecret: env("SESSION_SECRET", DefaultSessionSecret),
		LogMode:       strings.ToLower(env("LOG_MODE", "development")),
		LogFile:       os.Getenv("LOG_FILE"),

		TrustedProxies: envList("TRUSTED_PROXIES"),
	}

	var err error
	if cfg.AuthRequired, err = envBool("AUTH_REQUIRED", true); err != nil {
		return nil, err
	}
	if cfg.WriteRate, err = envFloat("WRITE_RATE", 5); err != nil {
		return nil, err
	}
	if cfg.WriteBurst, err = envInt("WRITE_BURST", 10); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// InsecureToken reports whether writes are protected by the placeholder token.
func (c *Config) InsecureToken() bool {
	return c.AuthRequired && c.APITokenHash == "" && c.APIToken == DefaultAPIToken
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envList splits a comma-separated value, dropping blanks.
func envList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func envBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
