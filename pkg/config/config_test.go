package config

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port     int    `env:"TEST_LOADER_PORT" envDefault:"8080"`
	LogLevel string `env:"TEST_LOADER_LOG_LEVEL" envDefault:"info"`
	Required string `env:"TEST_LOADER_REQUIRED,required"`
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TEST_LOADER_REQUIRED", "set")

	var cfg testConfig
	require.NoError(t, Load(&cfg))
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	t.Setenv("TEST_LOADER_REQUIRED", "set")
	t.Setenv("TEST_LOADER_PORT", "9090")

	var cfg testConfig
	require.NoError(t, Load(&cfg))
	assert.Equal(t, 9090, cfg.Port)
}

func TestLoad_MissingRequired(t *testing.T) {
	var cfg testConfig
	err := Load(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST_LOADER_REQUIRED")
}

type validatedConfig struct {
	Port int `env:"TEST_LOADER_VALIDATED_PORT" envDefault:"8080"`
}

func (c *validatedConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}

func TestLoad_RunsValidator(t *testing.T) {
	var cfg validatedConfig
	require.NoError(t, Load(&cfg))

	t.Setenv("TEST_LOADER_VALIDATED_PORT", "70000")
	err := Load(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
}
