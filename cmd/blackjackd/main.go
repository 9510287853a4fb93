package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Config  string           `short:"c" type:"path" env:"BLACKJACK_CONFIG_FILE" help:"YAML configuration file"`

	Serve   ServeCmd   `cmd:"" default:"1" help:"Run the blackjack table over HTTP and Discord"`
	Migrate MigrateCmd `cmd:"" help:"Manage the SQLite schema"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjackd"),
		kong.Description("Single-table blackjack service"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
