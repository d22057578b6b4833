package snowapi

import (
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Config holds everything needed to construct a Client. BaseURI,
// PrivateKeyPEM, Organization, Account, User, and DefaultWarehouse are
// required; the remaining fields fall back to defaults in withDefaults.
type Config struct {
	BaseURI          string
	PrivateKeyPEM    []byte
	Organization     string
	Account          string
	User             string
	DefaultWarehouse string

	JWTTTL time.Duration

	// ConnectionTimeout bounds how long Query waits to check out a slot
	// from the connection pool when all MaxConnections are in flight. It
	// does not bound the request itself once a slot is acquired.
	ConnectionTimeout time.Duration

	MaxConnections     int
	MaxThreadsPerQuery int
	ThreadScaleFactor  int
	HTTPRetries        int

	// Logger receives retry/debug events. Defaults to a no-op logger so
	// the core never forces process-wide logger instantiation on a caller.
	Logger zerolog.Logger
}

const (
	defaultJWTTTL             = 3600 * time.Second
	defaultConnectionTimeout  = 60 * time.Second
	defaultMaxConnections     = 16
	defaultMaxThreadsPerQuery = 8
	defaultThreadScaleFactor  = 4
	defaultHTTPRetries        = 2
)

// withDefaults returns a copy of cfg with zero-valued tunables replaced
// by their documented defaults.
func (cfg Config) withDefaults() Config {
	if cfg.JWTTTL == 0 {
		cfg.JWTTTL = defaultJWTTTL
	}
	if cfg.ConnectionTimeout == 0 {
		cfg.ConnectionTimeout = defaultConnectionTimeout
	}
	if cfg.MaxConnections == 0 {
		cfg.MaxConnections = defaultMaxConnections
	}
	if cfg.MaxThreadsPerQuery == 0 {
		cfg.MaxThreadsPerQuery = defaultMaxThreadsPerQuery
	}
	if cfg.ThreadScaleFactor == 0 {
		cfg.ThreadScaleFactor = defaultThreadScaleFactor
	}
	if cfg.HTTPRetries == 0 {
		cfg.HTTPRetries = defaultHTTPRetries
	}
	return cfg
}

// validate checks the required fields and that MaxConnections leaves
// enough headroom over MaxThreadsPerQuery to avoid guaranteed pool
// starvation, returning ConfigError on failure.
func (cfg Config) validate() error {
	if cfg.Account == "" || cfg.User == "" || cfg.Organization == "" {
		return newConfigError("organization, account, and user are required", nil)
	}
	if cfg.DefaultWarehouse == "" {
		return newConfigError("default warehouse is required", nil)
	}
	if len(cfg.PrivateKeyPEM) == 0 {
		return newConfigError("private key PEM is required", nil)
	}
	if cfg.BaseURI == "" {
		return newConfigError("base URI is required", nil)
	}
	if _, err := url.Parse(cfg.BaseURI); err != nil {
		return newConfigError("malformed base URI", map[string]any{"uri": cfg.BaseURI, "cause": err.Error()})
	}
	if cfg.MaxConnections < cfg.MaxThreadsPerQuery+1 {
		return newConfigError(
			fmt.Sprintf("max_connections (%d) must be >= max_threads_per_query (%d) + 1 to avoid pool starvation",
				cfg.MaxConnections, cfg.MaxThreadsPerQuery),
			map[string]any{"max_connections": cfg.MaxConnections, "max_threads_per_query": cfg.MaxThreadsPerQuery},
		)
	}
	return nil
}
