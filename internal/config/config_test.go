package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)

	a := assert.New(t)
	a.Equal(":8080", cfg.HTTPAddr)
	a.Equal(int64(10), cfg.DefaultBet)
	a.Equal(int64(1000), cfg.StartingBalance)
	a.Equal(30*time.Minute, cfg.IdleTimeout)
	a.Equal(StorageMemory, cfg.StorageType)
	a.Equal("blackjack", cfg.Elasticsearch.IndexPrefix)
	a.False(cfg.DiscordEnabled())
	a.False(cfg.ElasticsearchEnabled())
	a.True(cfg.IsDevelopment())
}

func TestYAMLThenEnvironment(t *testing.T) {
	t.Setenv("BLACKJACK_DEFAULT_BET", "50")
	t.Setenv("BLACKJACK_DISCORD_TOKEN", "env-token")
	t.Setenv("BLACKJACK_EVICTION_INTERVAL", "90s")

	cfg, err := LoadFile("testdata/config.yaml")
	require.NoError(t, err)

	a := assert.New(t)
	a.Equal(":9000", cfg.HTTPAddr, "from yaml")
	a.Equal(10*time.Minute, cfg.IdleTimeout, "from yaml")
	a.Equal(StorageSQLite, cfg.StorageType)
	a.Equal("1234", cfg.Discord.AppID)
	a.Equal("http://localhost:9200", cfg.Elasticsearch.URL)
	a.True(cfg.ElasticsearchEnabled())

	a.Equal(int64(50), cfg.DefaultBet, "environment wins over yaml")
	a.Equal("env-token", cfg.Discord.Token)
	a.Equal(90*time.Second, cfg.EvictionInterval)
	a.Equal(int64(1000), cfg.StartingBalance, "untouched default")
}

func TestLoadUsesConfigFileEnv(t *testing.T) {
	t.Setenv(ConfigFileEnv, "testdata/config.yaml")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
}

func TestLoadPathOverridesConfigFileEnv(t *testing.T) {
	t.Setenv(ConfigFileEnv, "testdata/bad_storage.yaml")

	cfg, err := Load("testdata/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
}

func TestLoadErrors(t *testing.T) {
	_, err := LoadFile("testdata/missing.yaml")
	assert.Error(t, err)

	_, err = LoadFile("testdata/bad_storage.yaml")
	assert.ErrorContains(t, err, "unknown storage type")

	t.Setenv("BLACKJACK_DEFAULT_BET", "lots")
	_, err = LoadFile("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero bet", func(c *Config) { c.DefaultBet = 0 }},
		{"negative balance", func(c *Config) { c.StartingBalance = -1 }},
		{"no idle timeout", func(c *Config) { c.IdleTimeout = 0 }},
		{"no eviction interval", func(c *Config) { c.EvictionInterval = 0 }},
		{"storage", func(c *Config) { c.StorageType = "redis" }},
		{"discord without app", func(c *Config) { c.Discord.Token = "abc" }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDatabasePath(t *testing.T) {
	cfg := Default()
	cfg.DataDir = filepath.Join(t.TempDir(), "nested", "data")

	path, err := cfg.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.DataDir, "blackjack.db"), path)

	info, err := os.Stat(cfg.DataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
