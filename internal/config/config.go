// Package config loads server settings from an optional YAML file overlaid
// by environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every server setting.
type Config struct {
	Port         string        `yaml:"port"`
	DatabasePath string        `yaml:"database_path"`
	JWTSecret    string        `yaml:"jwt_secret"`
	CookieSecure bool          `yaml:"cookie_secure"`
	BcryptCost   int           `yaml:"bcrypt_cost"`
	LogLevel     string        `yaml:"log_level"`
	ReportTTL    time.Duration `yaml:"report_ttl"`
	TickInterval time.Duration `yaml:"tick_interval"`
	Redis        RedisConfig   `yaml:"redis"`
}

// RedisConfig selects the Redis report stash. An empty Addr keeps reports
// in memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Default returns the settings used when neither file nor environment
// override them. JWTSecret has no default.
func Default() Config {
	return Config{
		Port:         "8080",
		DatabasePath: "healthyu.db",
		CookieSecure: true,
		BcryptCost:   12,
		LogLevel:     "info",
		ReportTTL:    24 * time.Hour,
		TickInterval: time.Second,
	}
}

// Load reads path (if not empty), applies environment overrides and
// validates the result.
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read is Load without validation, for commands that only need part of
// the settings.
func Read(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode parses a single strict YAML document over cfg.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("config file contains multiple documents or trailing content")
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	str("PORT", &cfg.Port)
	str("DATABASE_PATH", &cfg.DatabasePath)
	str("JWT_SECRET", &cfg.JWTSecret)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("REDIS_ADDR", &cfg.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Redis.Password)

	// Secure cookies stay on unless explicitly disabled for local development.
	if v := getenv("COOKIE_SECURE"); v != "" {
		cfg.CookieSecure = v != "false"
	}

	ints := map[string]*int{
		"BCRYPT_COST": &cfg.BcryptCost,
		"REDIS_DB":    &cfg.Redis.DB,
	}
	for key, dst := range ints {
		v := getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
	}

	durations := map[string]*time.Duration{
		"REPORT_TTL":    &cfg.ReportTTL,
		"TICK_INTERVAL": &cfg.TickInterval,
	}
	for key, dst := range durations {
		v := getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
	}
	return nil
}

// Validate checks the settings the server cannot run without.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.BcryptCost))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick interval must be positive, got %s", c.TickInterval))
	}
	if c.ReportTTL <= 0 {
		errs = append(errs, fmt.Errorf("report ttl must be positive, got %s", c.ReportTTL))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
