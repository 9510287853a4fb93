package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	internaldiscord "github.com/fadedpez/blackjacktable/internal/discord"
	"github.com/fadedpez/blackjacktable/internal/httpapi"
	discordbot "github.com/fadedpez/blackjacktable/pkg/discord"
	"github.com/fadedpez/blackjacktable/pkg/discord/commands"
	"github.com/fadedpez/blackjacktable/pkg/scheduler"
	"github.com/fadedpez/blackjacktable/pkg/services/statistics"
	"github.com/fadedpez/blackjacktable/pkg/services/table"
	"github.com/fadedpez/blackjacktable/pkg/services/wallet"
)

type ServeCmd struct {
	Addr       string `help:"Listen address, overrides the configuration"`
	NoDiscord  bool   `help:"Do not start the Discord bot even when a token is configured"`
	AccessLogs bool   `default:"true" negatable:"" help:"Write combined access logs"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.HTTPAddr = c.Addr
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	wallets := wallet.NewService(st.wallets,
		wallet.WithStartingBalance(cfg.StartingBalance),
		wallet.WithLogger(logger),
	)
	tables := table.NewManager(wallets, st.history,
		table.WithDefaultBet(cfg.DefaultBet),
		table.WithIdleTimeout(cfg.IdleTimeout),
		table.WithLogger(logger),
	)
	stats := statistics.NewService(st.history)

	sched := scheduler.NewScheduler(scheduler.WithLogger(logger))
	scheduler.NewTableMaintenance(sched, tables, cfg.EvictionInterval)

	mux := httpapi.NewMux(cfg.Version, tables, wallets, stats, logger)
	srv := httpapi.NewServer(cfg.HTTPAddr, mux.Handler(c.AccessLogs))

	var bot *discordbot.Bot
	if cfg.DiscordEnabled() && !c.NoDiscord {
		session, err := internaldiscord.NewSession(cfg.Discord.Token)
		if err != nil {
			return err
		}
		bot = discordbot.NewBot(session, cfg.Discord.AppID, cfg.Discord.GuildID, tables, wallets,
			commands.NewStatsCommand(stats, logger), logger)
	} else {
		logger.Info("Discord bot disabled")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpapi.ListenAndServe(gctx, srv, logger)
	})
	g.Go(func() error {
		return sched.Run(gctx)
	})
	if bot != nil {
		g.Go(func() error {
			return bot.Run(gctx)
		})
	}

	logger.Info("blackjackd %s started (%s storage)", cfg.Version, cfg.StorageType)
	return g.Wait()
}
