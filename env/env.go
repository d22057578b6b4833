// Package env discovers client configuration from the process
// environment. The core snowapi package never reads os.Getenv itself;
// only this package does.
package env

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/lakebound/snowapi/snowapi"
)

const (
	envURI              = "SNOWFLAKE_URI"
	envPrivateKey       = "SNOWFLAKE_PRIVATE_KEY"
	envPrivateKeyPath   = "SNOWFLAKE_PRIVATE_KEY_PATH"
	envOrganization     = "SNOWFLAKE_ORGANIZATION"
	envAccount          = "SNOWFLAKE_ACCOUNT"
	envUser             = "SNOWFLAKE_USER"
	envDefaultWarehouse = "SNOWFLAKE_DEFAULT_WAREHOUSE"

	envJWTTTLSeconds      = "SNOWFLAKE_JWT_TTL_SECONDS"
	envConnectionTimeout  = "SNOWFLAKE_CONNECTION_TIMEOUT_SECONDS"
	envMaxConnections     = "SNOWFLAKE_MAX_CONNECTIONS"
	envMaxThreadsPerQuery = "SNOWFLAKE_MAX_THREADS_PER_QUERY"
	envThreadScaleFactor  = "SNOWFLAKE_THREAD_SCALE_FACTOR"
	envHTTPRetries        = "SNOWFLAKE_HTTP_RETRIES"
	envLogLevel           = "SNOWFLAKE_LOG_LEVEL"
)

// Load builds a snowapi.Config from the process environment. Required
// variables missing yields an error naming which one.
func Load() (snowapi.Config, error) {
	cfg := snowapi.Config{
		BaseURI:          os.Getenv(envURI),
		Organization:     os.Getenv(envOrganization),
		Account:          os.Getenv(envAccount),
		User:             os.Getenv(envUser),
		DefaultWarehouse: os.Getenv(envDefaultWarehouse),
	}

	key, err := privateKey()
	if err != nil {
		return snowapi.Config{}, err
	}
	cfg.PrivateKeyPEM = key

	for name, value := range map[string]string{
		envURI:              cfg.BaseURI,
		envOrganization:     cfg.Organization,
		envAccount:          cfg.Account,
		envUser:             cfg.User,
		envDefaultWarehouse: cfg.DefaultWarehouse,
	} {
		if value == "" {
			return snowapi.Config{}, fmt.Errorf("env: %s is required", name)
		}
	}

	if v := os.Getenv(envJWTTTLSeconds); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return snowapi.Config{}, fmt.Errorf("env: %s: %w", envJWTTTLSeconds, err)
		}
		cfg.JWTTTL = time.Duration(secs) * time.Second
	}
	if v := os.Getenv(envConnectionTimeout); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return snowapi.Config{}, fmt.Errorf("env: %s: %w", envConnectionTimeout, err)
		}
		cfg.ConnectionTimeout = time.Duration(secs) * time.Second
	}
	if v := os.Getenv(envMaxConnections); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return snowapi.Config{}, fmt.Errorf("env: %s: %w", envMaxConnections, err)
		}
		cfg.MaxConnections = n
	}
	if v := os.Getenv(envMaxThreadsPerQuery); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return snowapi.Config{}, fmt.Errorf("env: %s: %w", envMaxThreadsPerQuery, err)
		}
		cfg.MaxThreadsPerQuery = n
	}
	if v := os.Getenv(envThreadScaleFactor); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return snowapi.Config{}, fmt.Errorf("env: %s: %w", envThreadScaleFactor, err)
		}
		cfg.ThreadScaleFactor = n
	}
	if v := os.Getenv(envHTTPRetries); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return snowapi.Config{}, fmt.Errorf("env: %s: %w", envHTTPRetries, err)
		}
		cfg.HTTPRetries = n
	}

	level := zerolog.InfoLevel
	if v := os.Getenv(envLogLevel); v != "" {
		parsed, err := zerolog.ParseLevel(v)
		if err != nil {
			return snowapi.Config{}, fmt.Errorf("env: %s: %w", envLogLevel, err)
		}
		level = parsed
	}
	cfg.Logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	return cfg, nil
}

// Connect loads configuration from the environment and constructs a
// ready-to-use Client.
func Connect() (*snowapi.Client, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	return snowapi.NewClient(cfg)
}

func privateKey() ([]byte, error) {
	if v := os.Getenv(envPrivateKey); v != "" {
		return []byte(v), nil
	}
	if path := os.Getenv(envPrivateKeyPath); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("env: reading %s: %w", envPrivateKeyPath, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("env: one of %s or %s is required", envPrivateKey, envPrivateKeyPath)
}
