package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fadedpez/blackjacktable/internal/config"
	"github.com/fadedpez/blackjacktable/internal/logging"
	"github.com/fadedpez/blackjacktable/pkg/db"
	"github.com/fadedpez/blackjacktable/pkg/repositories/game"
	walletRepo "github.com/fadedpez/blackjacktable/pkg/repositories/wallet"
)

// loadConfig reads the configuration and sets up the process logger. path
// comes from --config and wins over BLACKJACK_CONFIG_FILE.
func loadConfig(path string) (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Version == "" || cfg.Version == "dev" {
		cfg.Version = version
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel))
	logging.Default = logger
	return cfg, logger, nil
}

// stores holds the repositories the services run on
type stores struct {
	wallets walletRepo.Repository
	history game.Repository
	conn    *sql.DB
}

// openStores builds the configured storage, wrapping round history with the
// Elasticsearch index when a URL is configured
func openStores(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*stores, error) {
	s := &stores{}

	switch cfg.StorageType {
	case config.StorageSQLite:
		path, err := cfg.DatabasePath()
		if err != nil {
			return nil, err
		}
		conn, err := db.OpenAndMigrate(ctx, path, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Using SQLite storage at %s", path)
		s.conn = conn
		s.wallets = walletRepo.NewSQLiteRepository(conn, logger)
		s.history = game.NewSQLiteRepository(conn)
	default:
		logger.Warn("Using in-memory storage, balances are lost on restart")
		s.wallets = walletRepo.NewMemoryRepository()
		s.history = game.NewMemoryRepository()
	}

	if cfg.ElasticsearchEnabled() {
		esRepo, err := game.NewElasticsearchRepository(ctx, s.history, &game.ElasticsearchConfig{
			URL:         cfg.Elasticsearch.URL,
			Username:    cfg.Elasticsearch.Username,
			Password:    cfg.Elasticsearch.Password,
			IndexPrefix: cfg.Elasticsearch.IndexPrefix,
		}, logger)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("error connecting to Elasticsearch: %w", err)
		}
		logger.Info("Indexing rounds into %s", esRepo.IndexName())
		s.history = esRepo
	}

	return s, nil
}

// Close releases the database, if any
func (s *stores) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
