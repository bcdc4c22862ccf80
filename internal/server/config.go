package server

import (
	"time"

	"github.com/agentstation/driftmap/pkg/constants"
)

// Config holds server configuration.
type Config struct {
	Host string
	Port int

	PathPrefix string

	CORSEnabled bool
	CORSOrigins []string

	// CacheTTL bounds how long a resolution page is served from cache.
	// Zero disables caching.
	CacheTTL time.Duration

	// RequestTimeout abandons a resolution pass that runs too long.
	RequestTimeout time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// MaxBodyBytes caps POST /parse payloads.
	MaxBodyBytes int64

	MetricsEnabled bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:           "localhost",
		Port:           8080,
		PathPrefix:     "/api/v1",
		CacheTTL:       constants.CacheTTL,
		RequestTimeout: constants.DefaultTimeout,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxBodyBytes:   1 << 20,
		MetricsEnabled: true,
	}
}
