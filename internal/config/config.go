package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

const (
	// EnvPrefix is the prefix of every environment override, e.g. BLACKJACK_HTTP_ADDR
	EnvPrefix = "blackjack"

	// ConfigFileEnv names the optional YAML file read before the environment
	ConfigFileEnv = "BLACKJACK_CONFIG_FILE"

	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	// HTTP
	HTTPAddr string `yaml:"httpAddr" envconfig:"http_addr"`

	// Table rules
	DefaultBet       int64         `yaml:"defaultBet" envconfig:"default_bet"`
	StartingBalance  int64         `yaml:"startingBalance" envconfig:"starting_balance"`
	IdleTimeout      time.Duration `yaml:"idleTimeout" envconfig:"idle_timeout"`
	EvictionInterval time.Duration `yaml:"evictionInterval" envconfig:"eviction_interval"`

	// Storage
	StorageType string `yaml:"storageType" envconfig:"storage_type"`
	DataDir     string `yaml:"dataDir" envconfig:"data_dir"`

	// Discord configuration, the bot only runs when a token is set
	Discord struct {
		Token   string `yaml:"token" envconfig:"token"`
		AppID   string `yaml:"appId" envconfig:"app_id"`
		GuildID string `yaml:"guildId" envconfig:"guild_id"`
	} `yaml:"discord"`

	Elasticsearch struct {
		URL         string `yaml:"url" envconfig:"url"`
		Username    string `yaml:"username" envconfig:"username"`
		Password    string `yaml:"password" envconfig:"password"`
		IndexPrefix string `yaml:"indexPrefix" envconfig:"index_prefix"`
	} `yaml:"elasticsearch"`

	LogLevel    string `yaml:"logLevel" envconfig:"log_level"`
	Environment string `yaml:"environment" envconfig:"environment"` // "development" or "production"
	Version     string `yaml:"version" envconfig:"version"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	cfg := &Config{
		HTTPAddr:         ":8080",
		DefaultBet:       10,
		StartingBalance:  1000,
		IdleTimeout:      30 * time.Minute,
		EvictionInterval: 5 * time.Minute,
		StorageType:      StorageMemory,
		DataDir:          "data",
		LogLevel:         "info",
		Environment:      "development",
		Version:          "dev",
	}
	cfg.Elasticsearch.IndexPrefix = "blackjack"
	return cfg
}

// Load reads the configuration. Values are layered: defaults, then the .env
// file, then the YAML file at path, then BLACKJACK_* environment variables.
// An empty path falls back to the file named by BLACKJACK_CONFIG_FILE.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Only return error if file exists but couldn't be loaded
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	return LoadFile(path)
}

// LoadFile is Load without the .env step. An empty path skips the YAML layer.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	if c.DefaultBet <= 0 {
		return fmt.Errorf("default bet must be positive, got %d", c.DefaultBet)
	}
	if c.StartingBalance <= 0 {
		return fmt.Errorf("starting balance must be positive, got %d", c.StartingBalance)
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive, got %s", c.IdleTimeout)
	}
	if c.EvictionInterval <= 0 {
		return fmt.Errorf("eviction interval must be positive, got %s", c.EvictionInterval)
	}
	switch c.StorageType {
	case StorageMemory, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage type %q", c.StorageType)
	}
	if c.Discord.Token != "" && c.Discord.AppID == "" {
		return fmt.Errorf("BLACKJACK_DISCORD_APP_ID is required when a Discord token is set")
	}
	return nil
}

// DiscordEnabled reports whether the Discord bot should run
func (c *Config) DiscordEnabled() bool {
	return c.Discord.Token != ""
}

// ElasticsearchEnabled reports whether finished rounds should be indexed
func (c *Config) ElasticsearchEnabled() bool {
	return c.Elasticsearch.URL != ""
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// DatabasePath returns the SQLite file, creating the data directory if needed
func (c *Config) DatabasePath() (string, error) {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return filepath.Join(c.DataDir, "blackjack.db"), nil
}
