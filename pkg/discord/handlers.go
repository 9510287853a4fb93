package discord

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/fadedpez/blackjacktable/internal/discord"
	"github.com/fadedpez/blackjacktable/pkg/services/blackjack"
)

const (
	CommandBlackjack = "blackjack"
	CommandWallet    = "wallet"

	ButtonHit   = "blackjack_hit"
	ButtonStand = "blackjack_stand"
	ButtonAgain = "blackjack_again"
)

const walletTransactions = 5

func (b *Bot) handleInteraction(ctx context.Context, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		b.logger.Debug("Received application command: %s", name)
		switch {
		case name == CommandBlackjack:
			b.handleBlackjackCommand(ctx, i)
		case name == CommandWallet:
			b.handleWalletCommand(ctx, i)
		case b.stats != nil && name == b.stats.Command().Name:
			b.stats.Handle(ctx, b.session, i)
		}

	case discordgo.InteractionMessageComponent:
		b.logger.Debug("Received message component interaction: %s", i.MessageComponentData().CustomID)
		b.handleComponent(ctx, i)
	}
}

func (b *Bot) handleBlackjackCommand(ctx context.Context, i *discordgo.InteractionCreate) {
	var bet *int64
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "bet" {
			v := opt.IntValue()
			bet = &v
		}
	}

	snap, err := b.tables.Start(ctx, discord.UserID(i), bet)
	if err != nil {
		b.respondError(i, err)
		return
	}

	b.respond(i, discord.SendResponse, discord.NewEmbedResponse(roundEmbed(snap), roundButtons(snap), false))
}

func (b *Bot) handleComponent(ctx context.Context, i *discordgo.InteractionCreate) {
	customID, arg, _ := strings.Cut(i.MessageComponentData().CustomID, ":")
	userID := discord.UserID(i)

	if owner := tableOwner(i); owner != "" && owner != userID {
		b.respond(i, discord.SendResponse, discord.NewEphemeralResponse("🪑 That table belongs to someone else, deal yourself in with /blackjack", nil))
		return
	}

	var snap *blackjack.Snapshot
	var err error
	switch customID {
	case ButtonHit:
		snap, err = b.tables.Hit(ctx, userID)
	case ButtonStand:
		snap, err = b.tables.Stand(ctx, userID)
	case ButtonAgain:
		var bet *int64
		if v, perr := strconv.ParseInt(arg, 10, 64); perr == nil {
			bet = &v
		}
		snap, err = b.tables.Start(ctx, userID, bet)
	default:
		return
	}

	if err != nil {
		b.respondError(i, err)
		return
	}

	b.respond(i, discord.UpdateResponse, discord.NewEmbedResponse(roundEmbed(snap), roundButtons(snap), false))
}

func (b *Bot) handleWalletCommand(ctx context.Context, i *discordgo.InteractionCreate) {
	userID := discord.UserID(i)

	w, _, err := b.wallets.GetOrCreateWallet(ctx, userID)
	if err != nil {
		b.respondError(i, err)
		return
	}

	txs, err := b.wallets.GetRecentTransactions(ctx, userID, walletTransactions)
	if err != nil {
		b.respondError(i, err)
		return
	}

	b.respond(i, discord.SendResponse, discord.NewEmbedResponse(walletEmbed(w, txs), nil, true))
}

// tableOwner is the user whose /blackjack command created the message
func tableOwner(i *discordgo.InteractionCreate) string {
	if i.Message == nil || i.Message.Interaction == nil || i.Message.Interaction.User == nil {
		return ""
	}
	return i.Message.Interaction.User.ID
}

type responder func(discord.SessionHandler, *discordgo.InteractionCreate, *discord.Response) error

func (b *Bot) respond(i *discordgo.InteractionCreate, send responder, r *discord.Response) {
	if err := send(b.session, i, r); err != nil {
		b.logger.Error("Error responding to interaction %s: %v", i.ID, err)
	}
}

func (b *Bot) respondError(i *discordgo.InteractionCreate, err error) {
	b.logger.LogError(err)
	b.respond(i, discord.SendResponse, discord.NewErrorResponse(err))
}
