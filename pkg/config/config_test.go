package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotConfig struct {
	Driver    string   `env:"TEST_CFG_DRIVER" envDefault:"memory"`
	Namespace string   `env:"TEST_CFG_NAMESPACE" envDefault:"storefront"`
	TTLHours  int      `env:"TEST_CFG_TTL_HOURS" envDefault:"720"`
	Brokers   []string `env:"TEST_CFG_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	Events    bool     `env:"TEST_CFG_EVENTS" envDefault:"false"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg slotConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "memory", cfg.Driver)
	assert.Equal(t, "storefront", cfg.Namespace)
	assert.Equal(t, 720, cfg.TTLHours)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.False(t, cfg.Events)
}

func TestLoad_FromProcessEnv(t *testing.T) {
	t.Setenv("TEST_CFG_DRIVER", "redis")
	t.Setenv("TEST_CFG_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TEST_CFG_EVENTS", "true")

	var cfg slotConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "redis", cfg.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers)
	assert.True(t, cfg.Events)
}

func TestLoad_WithEnvironment(t *testing.T) {
	t.Setenv("TEST_CFG_DRIVER", "redis")

	var cfg slotConfig
	err := Load(&cfg, WithEnvironment(map[string]string{"TEST_CFG_NAMESPACE": "shop"}))

	require.NoError(t, err)
	assert.Equal(t, "shop", cfg.Namespace)
	assert.Equal(t, "memory", cfg.Driver, "process environment is ignored")
}

type requiredConfig struct {
	URL string `env:"TEST_CFG_CATALOG_URL,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg requiredConfig
	err := Load(&cfg, WithEnvironment(map[string]string{}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
	assert.Contains(t, err.Error(), "TEST_CFG_CATALOG_URL")
}

func TestLoad_RequiredFieldPresent(t *testing.T) {
	var cfg requiredConfig
	err := Load(&cfg, WithEnvironment(map[string]string{"TEST_CFG_CATALOG_URL": "http://catalog"}))

	require.NoError(t, err)
	assert.Equal(t, "http://catalog", cfg.URL)
}

func TestLoad_ReportsEveryInvalidVariable(t *testing.T) {
	var cfg slotConfig
	err := Load(&cfg, WithEnvironment(map[string]string{
		"TEST_CFG_TTL_HOURS": "forever",
		"TEST_CFG_EVENTS":    "maybe",
	}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"TTLHours"`)
	assert.Contains(t, err.Error(), `"Events"`)
}
