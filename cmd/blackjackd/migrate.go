package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fadedpez/blackjacktable/pkg/db"
	"github.com/fadedpez/blackjacktable/pkg/db/migrations"
)

type MigrateCmd struct {
	Up     MigrateUpCmd     `cmd:"" default:"1" help:"Apply pending migrations"`
	Status MigrateStatusCmd `cmd:"" help:"List applied and pending migrations"`
	Create MigrateCreateCmd `cmd:"" help:"Create a new, empty migration file"`
}

// databasePath returns the --db flag, or the configured database when it is empty
func databasePath(cli *CLI, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	cfg, _, err := loadConfig(cli.Config)
	if err != nil {
		return "", err
	}
	return cfg.DatabasePath()
}

type MigrateUpCmd struct {
	DB string `name:"db" type:"path" help:"SQLite database path, defaults to blackjack.db in the data directory"`
}

func (c *MigrateUpCmd) Run(cli *CLI) error {
	path, err := databasePath(cli, c.DB)
	if err != nil {
		return err
	}

	conn, err := db.Open(path)
	if err != nil {
		return err
	}
	defer conn.Close()

	n, err := migrations.NewMigrator(conn, migrations.Embedded(), nil).MigrateUp(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Applied %d migrations to %s\n", n, path)
	return nil
}

type MigrateStatusCmd struct {
	DB string `name:"db" type:"path" help:"SQLite database path, defaults to blackjack.db in the data directory"`
}

func (c *MigrateStatusCmd) Run(cli *CLI) error {
	path, err := databasePath(cli, c.DB)
	if err != nil {
		return err
	}

	conn, err := db.Open(path)
	if err != nil {
		return err
	}
	defer conn.Close()

	m := migrations.NewMigrator(conn, migrations.Embedded(), nil)
	ctx := context.Background()

	pending, err := m.Pending(ctx)
	if err != nil {
		return err
	}
	all, err := m.LoadMigrations()
	if err != nil {
		return err
	}

	isPending := make(map[string]bool, len(pending))
	for _, p := range pending {
		isPending[p.Version] = true
	}
	for _, migration := range all {
		state := "applied"
		if isPending[migration.Version] {
			state = "pending"
		}
		fmt.Printf("%s  %-8s %s\n", migration.Version, state, migration.Description)
	}
	return nil
}

type MigrateCreateCmd struct {
	Dir         string `default:"pkg/db/migrations/sql" type:"path" help:"Directory holding the migration files"`
	Description string `arg:"" help:"What the migration does, e.g. \"add table limits\""`
}

func (c *MigrateCreateCmd) Run() error {
	path, err := migrations.NewMigrator(nil, os.DirFS(c.Dir), nil).CreateMigration(c.Dir, c.Description)
	if err != nil {
		return err
	}
	fmt.Printf("Created %s\n", path)
	return nil
}
