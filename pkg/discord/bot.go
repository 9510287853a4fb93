package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/fadedpez/blackjacktable/internal/discord"
	"github.com/fadedpez/blackjacktable/internal/logging"
	"github.com/fadedpez/blackjacktable/pkg/discord/commands"
	"github.com/fadedpez/blackjacktable/pkg/services/blackjack"
	"github.com/fadedpez/blackjacktable/pkg/services/wallet"
)

const interactionTimeout = 10 * time.Second

// Tables is the part of the table manager the bot plays through
type Tables interface {
	Start(ctx context.Context, playerID string, bet *int64) (*blackjack.Snapshot, error)
	Hit(ctx context.Context, playerID string) (*blackjack.Snapshot, error)
	Stand(ctx context.Context, playerID string) (*blackjack.Snapshot, error)
}

// Bot represents the Discord bot instance
type Bot struct {
	session discord.SessionHandler
	appID   string
	guildID string

	tables  Tables
	wallets wallet.WalletService
	stats   *commands.StatsCommand
	logger  *logging.Logger

	mu            sync.Mutex
	registered    []*discordgo.ApplicationCommand
	removeHandler func()
}

// NewBot creates a new instance of the bot. An empty guildID registers the
// commands globally.
func NewBot(session discord.SessionHandler, appID, guildID string, tables Tables, wallets wallet.WalletService, stats *commands.StatsCommand, logger *logging.Logger) *Bot {
	if logger == nil {
		logger = logging.Default
	}
	return &Bot{
		session: session,
		appID:   appID,
		guildID: guildID,
		tables:  tables,
		wallets: wallets,
		stats:   stats,
		logger:  logger,
	}
}

// Commands returns the slash commands the bot registers
func (b *Bot) Commands() []*discordgo.ApplicationCommand {
	minBet := 1.0
	cmds := []*discordgo.ApplicationCommand{
		{
			Name:        CommandBlackjack,
			Description: "Deal a new hand of blackjack",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "bet",
					Description: "How many chips to bet",
					MinValue:    &minBet,
				},
			},
		},
		{
			Name:        CommandWallet,
			Description: "Check your chip balance and latest transactions",
		},
	}
	if b.stats != nil {
		cmds = append(cmds, b.stats.Command())
	}
	return cmds
}

// Start connects to Discord and registers the slash commands
func (b *Bot) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.removeHandler = b.session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
		defer cancel()
		b.handleInteraction(ctx, i)
	})

	// Open websocket connection
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	for _, cmd := range b.Commands() {
		created, err := b.session.ApplicationCommandCreate(b.appID, b.guildID, cmd)
		if err != nil {
			return fmt.Errorf("error creating command %s: %w", cmd.Name, err)
		}
		b.registered = append(b.registered, created)
		b.logger.Info("Registered command: %s", cmd.Name)
	}

	return nil
}

// Stop removes the registered commands and closes the Discord connection
func (b *Bot) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, cmd := range b.registered {
		if cmd == nil {
			continue
		}
		if err := b.session.ApplicationCommandDelete(b.appID, b.guildID, cmd.ID); err != nil {
			b.logger.Warn("Error deleting command %s: %v", cmd.Name, err)
		}
	}
	b.registered = nil

	if b.removeHandler != nil {
		b.removeHandler()
		b.removeHandler = nil
	}

	// Close websocket connection
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("error closing connection: %w", err)
	}

	return nil
}

// Run starts the bot and keeps it connected until ctx is done
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Start(); err != nil {
		return err
	}
	b.logger.Info("Discord bot is running")

	<-ctx.Done()
	return b.Stop()
}
