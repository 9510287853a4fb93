package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadedpez/blackjacktable/internal/config"
	"github.com/fadedpez/blackjacktable/internal/logging"
	"github.com/fadedpez/blackjacktable/pkg/entities"
	"github.com/fadedpez/blackjacktable/pkg/repositories/game"
	walletRepo "github.com/fadedpez/blackjacktable/pkg/repositories/wallet"
)

func TestLoadConfigPrefersFlagOverEnv(t *testing.T) {
	previous := logging.Default
	t.Cleanup(func() { logging.Default = previous })

	path := filepath.Join(t.TempDir(), "blackjack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("httpAddr: \":7000\"\nlogLevel: debug\n"), 0o644))
	t.Setenv(config.ConfigFileEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, logger, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTPAddr)
	assert.Equal(t, version, cfg.Version)
	assert.Equal(t, logging.DEBUG, logger.Level())
	assert.Same(t, logger, logging.Default)

	_, _, err = loadConfig("")
	assert.ErrorContains(t, err, "failed to open config file")
}

func TestOpenStores(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewLoggerWithOutput(logging.ERROR, io.Discard)

	t.Run("memory", func(t *testing.T) {
		cfg := config.Default()

		st, err := openStores(ctx, cfg, logger)
		require.NoError(t, err)
		defer st.Close()

		assert.IsType(t, &walletRepo.MemoryRepository{}, st.wallets)
		assert.IsType(t, &game.MemoryRepository{}, st.history)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := config.Default()
		cfg.StorageType = config.StorageSQLite
		cfg.DataDir = t.TempDir()

		st, err := openStores(ctx, cfg, logger)
		require.NoError(t, err)
		defer st.Close()

		assert.IsType(t, &walletRepo.SQLiteRepository{}, st.wallets)
		assert.IsType(t, &game.SQLiteRepository{}, st.history)

		err = st.history.SaveRoundResult(ctx, &entities.RoundResult{
			RoundID:     "r1",
			PlayerID:    "alice",
			GameType:    entities.GameTypeBlackjack,
			Bet:         10,
			Result:      entities.ResultPush,
			CompletedAt: time.Now(),
		})
		require.NoError(t, err)

		results, err := st.history.GetPlayerResults(ctx, "alice", 10)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("unreachable elasticsearch", func(t *testing.T) {
		cfg := config.Default()
		cfg.Elasticsearch.URL = "http://127.0.0.1:1"

		_, err := openStores(ctx, cfg, logger)
		assert.Error(t, err)
	})
}
