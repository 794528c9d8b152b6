package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures process-level configuration.
type Server struct {
	Addr             string        `env:"TUITION_ADDR" envDefault:":8080"`
	RulesFile        string        `env:"TUITION_RULES_FILE"`
	LogLevel         string        `env:"TUITION_LOG_LEVEL" envDefault:"info"`
	LogFormat        string        `env:"TUITION_LOG_FORMAT" envDefault:"json"`
	BatchConcurrency int           `env:"TUITION_BATCH_CONCURRENCY" envDefault:"8"`
	ShutdownTimeout  time.Duration `env:"TUITION_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Server) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("TUITION_LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("TUITION_LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("TUITION_BATCH_CONCURRENCY must be at least 1, got %d", c.BatchConcurrency)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("TUITION_SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}
