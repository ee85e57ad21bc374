package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config holds the server settings. Values come from an optional YAML file,
// then environment variables override them.
type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`
	// ConsoleLog switches zerolog to the human readable console writer.
	ConsoleLog bool `yaml:"console_log"`

	Sessions struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"sessions"`

	Report struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"report"`

	NATS struct {
		URL           string `yaml:"url"`
		StreamName    string `yaml:"stream_name"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`

	CORS struct {
		// AllowedOrigins empty means any origin.
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

// Default returns the built-in settings.
func Default() Config {
	var c Config
	c.Port = "8080"
	c.LogLevel = "info"
	c.ConsoleLog = true
	c.Sessions.TTL = time.Hour
	c.Report.Timeout = 10 * time.Second
	c.NATS.StreamName = "GAME_RESULTS"
	c.NATS.SubjectPrefix = "elevator.results"
	return c
}

// Load reads .env (if present), the YAML file at path (if present) and the
// environment, in that order of increasing precedence.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Debug().Str("path", path).Msg("no config file, using defaults")
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.ConsoleLog = getEnvAsBool("LOG_CONSOLE", cfg.ConsoleLog)
	cfg.Sessions.TTL = getEnvAsDuration("SESSION_TTL", cfg.Sessions.TTL)
	cfg.Report.URL = getEnv("REPORT_URL", cfg.Report.URL)
	cfg.Report.Timeout = getEnvAsDuration("REPORT_TIMEOUT", cfg.Report.Timeout)
	cfg.NATS.URL = getEnv("NATS_URL", cfg.NATS.URL)
	cfg.CORS.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", cfg.CORS.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q: %w", c.Port, err)
	}
	if c.Sessions.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.Sessions.TTL)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring invalid bool")
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring invalid duration")
	}
	return defaultValue
}
