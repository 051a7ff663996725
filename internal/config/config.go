package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const envPrefix = "STREETPOINTS_"

// Config carries every tunable of the service. Values come from defaults,
// then an optional YAML file, then environment overrides, in that order.
type Config struct {
	Mode         string          `yaml:"mode"`
	ClientOrigin string          `yaml:"client_origin"`
	PostgresDSN  string          `yaml:"postgres_dsn"`
	Server       ServerConfig    `yaml:"server"`
	Auth         AuthConfig      `yaml:"auth"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

type AuthConfig struct {
	AccessSecret  string        `yaml:"access_secret"`
	RefreshSecret string        `yaml:"refresh_secret"`
	Issuer        string        `yaml:"issuer"`
	AccessTTL     time.Duration `yaml:"access_ttl"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl"`
}

type RateLimitConfig struct {
	Burst     int `yaml:"burst"`
	PerSecond int `yaml:"per_second"`
}

// Default returns the development configuration.
func Default() *Config {
	return &Config{
		Mode:         "development",
		ClientOrigin: "http://localhost:5173",
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
			MaxBodyBytes: 1 << 20,
		},
		Auth: AuthConfig{
			AccessSecret:  "default-secret-key",
			RefreshSecret: "default-refresh-secret-key",
			Issuer:        "streetpoints",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Burst:     20,
			PerSecond: 10,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if any)
// and environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			raw, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: stat %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Mode, "MODE")
	setString(&c.ClientOrigin, "CLIENT_ORIGIN")
	setString(&c.PostgresDSN, "PG_DSN")
	setString(&c.Server.Addr, "ADDR")
	setString(&c.Auth.AccessSecret, "ACCESS_SECRET")
	setString(&c.Auth.RefreshSecret, "REFRESH_SECRET")
	setString(&c.Auth.Issuer, "ISSUER")
	setDuration(&c.Auth.AccessTTL, "ACCESS_TTL")
	setDuration(&c.Auth.RefreshTTL, "REFRESH_TTL")
	setInt(&c.RateLimit.Burst, "RATE_BURST")
	setInt(&c.RateLimit.PerSecond, "RATE_PER_SECOND")
}

// Validate rejects configurations that cannot produce a working service.
func (c *Config) Validate() error {
	if c.Auth.AccessSecret == "" || c.Auth.RefreshSecret == "" {
		return errors.New("config: auth secrets must not be empty")
	}
	if c.Auth.AccessSecret == c.Auth.RefreshSecret {
		return errors.New("config: access and refresh secrets must differ")
	}
	if c.Production() && c.Auth.AccessSecret == Default().Auth.AccessSecret {
		return errors.New("config: default secrets are not allowed in production")
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		return errors.New("config: token TTLs must be positive")
	}
	return nil
}

// Production reports whether the service runs in production mode. Cookie
// security attributes depend on it.
func (c *Config) Production() bool {
	return strings.EqualFold(c.Mode, "production")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(envPrefix + key)); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	v := strings.TrimSpace(os.Getenv(envPrefix + key))
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		*dst = d
	}
}

func setInt(dst *int, key string) {
	v := strings.TrimSpace(os.Getenv(envPrefix + key))
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		*dst = n
	}
}
