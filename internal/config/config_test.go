package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:        "production",
		Port:       "5000",
		JWTSecret:  "secure-secret-at-least-32-chars-long",
		DBDriver:   "postgres",
		DBPassword: "secure-password",
		DBSSLMode:  "require",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"Production with strict settings", func(*Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"Default secret in production", func(c *Config) { c.JWTSecret = DefaultJWTSecret }, true},
		{"Short secret in production", func(c *Config) { c.JWTSecret = "short" }, true},
		{"Short secret in development", func(c *Config) { c.Env = "development"; c.JWTSecret = "short" }, false},
		{"Weak DB password in production", func(c *Config) { c.DBPassword = "password" }, true},
		{"Production with disable SSL mode", func(c *Config) { c.DBSSLMode = "disable" }, true},
		{"Prod with empty SSL mode", func(c *Config) { c.Env = "prod"; c.DBSSLMode = "" }, true},
		{"Development with disable SSL mode", func(c *Config) { c.Env = "development"; c.DBSSLMode = "disable" }, false},
		{"SQLite in production", func(c *Config) { c.DBDriver = "sqlite" }, true},
		{"SQLite in test", func(c *Config) { c.Env = "test"; c.DBDriver = "sqlite" }, false},
		{"Unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"Sampler ratio out of range", func(c *Config) { c.TracingSamplerRatio = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_TokenTTL(t *testing.T) {
	c := &Config{}
	assert.Equal(t, 24*time.Hour, c.TokenTTL())

	c.JWTTTLHours = 2
	assert.Equal(t, 2*time.Hour, c.TokenTTL())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "development")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", " SQLite ")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, 24, c.JWTTTLHours)
	assert.False(t, c.IsProduction())
}

func TestLoadConfig_MissingProfileFile(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "staging")

	_, err := LoadConfig()
	assert.Error(t, err)
}
