package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Guestlist
	GuestsPath string
	OutputPath string

	// Mirror
	MirrorDriver string
	MirrorDSN    string

	// Logging
	LogPath  string
	LogLevel string

	// Server
	Port     int
	Root     string
	CertFile string
	KeyFile  string

	// Session
	SessionSecret string
	SecureCookies bool

	// RSVP
	Locked       bool
	RSVPDeadline time.Time
}

func Load() (*Config, error) {
	cfg := &Config{
		GuestsPath:    getEnv("GUESTS_PATH", ""),
		OutputPath:    getEnv("OUTPUT_PATH", ""),
		MirrorDriver:  getEnv("MIRROR_DRIVER", "sqlite3"),
		MirrorDSN:     getEnv("MIRROR_DSN", ""),
		LogPath:       getEnv("LOG_PATH", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Root:          getEnv("WWW_ROOT", "www"),
		CertFile:      getEnv("TLS_CERT", ""),
		KeyFile:       getEnv("TLS_KEY", ""),
		SessionSecret: getEnv("SESSION_SECRET", ""),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(getEnv("PORT", "3000")); err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	if cfg.SecureCookies, err = getEnvAsBool("SECURE_COOKIES", false); err != nil {
		return nil, err
	}
	if cfg.Locked, err = getEnvAsBool("RSVP_LOCKED", false); err != nil {
		return nil, err
	}

	// Parse RSVP deadline
	if deadlineStr := getEnv("RSVP_DEADLINE", ""); deadlineStr != "" {
		cfg.RSVPDeadline, err = time.Parse(time.RFC3339, deadlineStr)
		if err != nil {
			return nil, fmt.Errorf("invalid RSVP_DEADLINE format: %w", err)
		}
	}

	return cfg, nil
}

// Addr returns the listen address for the configured port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// TLS reports whether both halves of the certificate pair are configured.
func (c *Config) TLS() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

// RepliesClosed reports whether replies are no longer accepted at now.
func (c *Config) RepliesClosed(now time.Time) bool {
	if c.Locked {
		return true
	}
	return !c.RSVPDeadline.IsZero() && now.After(c.RSVPDeadline)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
