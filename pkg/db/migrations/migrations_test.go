package migrations

import (
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/suite"

	"github.com/fadedpez/blackjacktable/internal/logging"
)

type MigrationsTestSuite struct {
	suite.Suite
	db       *sql.DB
	migrator *Migrator
	ctx      context.Context
}

func TestMigrationsSuite(t *testing.T) {
	suite.Run(t, new(MigrationsTestSuite))
}

func (s *MigrationsTestSuite) SetupTest() {
	db, err := sql.Open("sqlite3", ":memory:")
	s.Require().NoError(err)
	db.SetMaxOpenConns(1)
	s.db = db
	s.ctx = context.Background()
	s.migrator = NewMigrator(db, Embedded(), logging.NewLoggerWithOutput(logging.ERROR, io.Discard))
}

func (s *MigrationsTestSuite) TearDownTest() {
	s.db.Close()
}

func (s *MigrationsTestSuite) tableExists(name string) bool {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&count)
	s.Require().NoError(err)
	return count == 1
}

func (s *MigrationsTestSuite) TestLoadEmbeddedMigrations() {
	migrations, err := s.migrator.LoadMigrations()
	s.Require().NoError(err)

	s.Require().Len(migrations, 3)
	s.Equal("001", migrations[0].Version)
	s.Equal("create wallet tables", migrations[0].Description)
	s.Equal("002", migrations[1].Version)
	s.Contains(migrations[1].SQL, "round_results")
	s.Equal("003", migrations[2].Version)
	s.Equal("unique round settlements", migrations[2].Description)
}

func (s *MigrationsTestSuite) TestMigrateUp() {
	applied, err := s.migrator.MigrateUp(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, applied)

	for _, table := range []string{"migrations", "wallets", "transactions", "round_results"} {
		s.True(s.tableExists(table), "table %s should exist", table)
	}

	pending, err := s.migrator.Pending(s.ctx)
	s.Require().NoError(err)
	s.Empty(pending)
}

func (s *MigrationsTestSuite) TestRoundSettlesOnce() {
	_, err := s.migrator.MigrateUp(s.ctx)
	s.Require().NoError(err)

	_, err = s.db.Exec(`INSERT INTO wallets (user_id, balance) VALUES ('alice', 1000)`)
	s.Require().NoError(err)

	insert := `INSERT INTO transactions (id, user_id, amount, type, reference_id, balance_after) VALUES (?, 'alice', 10, 'PAYOUT', ?, 1010)`
	_, err = s.db.Exec(insert, "tx1", "round-1")
	s.Require().NoError(err)
	_, err = s.db.Exec(insert, "tx2", "round-1")
	s.Error(err, "the same round cannot be recorded twice")

	_, err = s.db.Exec(insert, "tx3", "")
	s.Require().NoError(err)
	_, err = s.db.Exec(insert, "tx4", "")
	s.NoError(err, "deposits carry no round and may repeat")
}

func (s *MigrationsTestSuite) TestMigrateUpIsIdempotent() {
	_, err := s.migrator.MigrateUp(s.ctx)
	s.Require().NoError(err)

	applied, err := s.migrator.MigrateUp(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, applied)

	versions, err := s.migrator.GetAppliedMigrations(s.ctx)
	s.Require().NoError(err)
	s.Equal(map[string]bool{"001": true, "002": true, "003": true}, versions)
}

func (s *MigrationsTestSuite) TestFailedMigrationRollsBack() {
	source := fstest.MapFS{
		"001_good.sql":   {Data: []byte("CREATE TABLE good (id INTEGER);")},
		"002_broken.sql": {Data: []byte("CREATE TABLE broken (id INTEGER); NOT SQL;")},
	}
	migrator := NewMigrator(s.db, source, nil)

	applied, err := migrator.MigrateUp(s.ctx)

	s.Error(err)
	s.Equal(1, applied)
	s.True(s.tableExists("good"))
	s.False(s.tableExists("broken"), "a failed migration must not leave partial schema")

	versions, err := migrator.GetAppliedMigrations(s.ctx)
	s.Require().NoError(err)
	s.Equal(map[string]bool{"001": true}, versions)
}

func (s *MigrationsTestSuite) TestInvalidFilename() {
	migrator := NewMigrator(s.db, fstest.MapFS{"nounderscore.sql": {Data: []byte("")}}, nil)

	_, err := migrator.LoadMigrations()

	s.ErrorContains(err, "invalid migration filename")
}

func (s *MigrationsTestSuite) TestCreateMigration() {
	dir := s.T().TempDir()

	path, err := s.migrator.CreateMigration(dir, "add player notes")
	s.Require().NoError(err)

	s.Equal(filepath.Join(dir, "004_add_player_notes.sql"), path)
	content, err := os.ReadFile(path)
	s.Require().NoError(err)
	s.Contains(string(content), "-- Migration: add player notes")
}
