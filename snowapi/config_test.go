package snowapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		BaseURI:          "https://acct.snowflakecomputing.com",
		PrivateKeyPEM:    []byte("dummy"),
		Organization:     "org",
		Account:          "acct",
		User:             "user",
		DefaultWarehouse: "wh",
	}
}

func TestConfig_Validate_RequiresIdentityFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing organization", func(c *Config) { c.Organization = "" }},
		{"missing account", func(c *Config) { c.Account = "" }},
		{"missing user", func(c *Config) { c.User = "" }},
		{"missing warehouse", func(c *Config) { c.DefaultWarehouse = "" }},
		{"missing private key", func(c *Config) { c.PrivateKeyPEM = nil }},
		{"missing base uri", func(c *Config) { c.BaseURI = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.True(t, IsConfigError(err))
		})
	}
}

func TestConfig_Validate_MalformedURI(t *testing.T) {
	cfg := validConfig()
	cfg.BaseURI = "://bad-uri"
	err := cfg.validate()
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestConfig_Validate_PoolMustExceedThreadCount(t *testing.T) {
	cfg := validConfig().withDefaults()
	cfg.MaxThreadsPerQuery = 8
	cfg.MaxConnections = 8 // needs to be >= 9
	err := cfg.validate()
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestConfig_Validate_ValidConfigPasses(t *testing.T) {
	cfg := validConfig().withDefaults()
	assert.NoError(t, cfg.validate())
}

func TestConfig_WithDefaults_FillsZeroValues(t *testing.T) {
	cfg := validConfig().withDefaults()
	assert.Equal(t, defaultJWTTTL, cfg.JWTTTL)
	assert.Equal(t, defaultConnectionTimeout, cfg.ConnectionTimeout)
	assert.Equal(t, defaultMaxConnections, cfg.MaxConnections)
	assert.Equal(t, defaultMaxThreadsPerQuery, cfg.MaxThreadsPerQuery)
	assert.Equal(t, defaultThreadScaleFactor, cfg.ThreadScaleFactor)
	assert.Equal(t, defaultHTTPRetries, cfg.HTTPRetries)
}

func TestConfig_WithDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := validConfig()
	cfg.JWTTTL = 30 * time.Minute
	cfg.MaxConnections = 32
	got := cfg.withDefaults()
	assert.Equal(t, 30*time.Minute, got.JWTTTL)
	assert.Equal(t, 32, got.MaxConnections)
}
