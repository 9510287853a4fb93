package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/fadedpez/blackjacktable/internal/discord"
	"github.com/fadedpez/blackjacktable/internal/logging"
	"github.com/fadedpez/blackjacktable/internal/types"
	"github.com/fadedpez/blackjacktable/pkg/entities"
	"github.com/fadedpez/blackjacktable/pkg/services/statistics"
)

// StatsCommandName is the slash command that shows a player's record
const StatsCommandName = "stats"

// StatsCommand handles the /stats command for displaying player statistics
type StatsCommand struct {
	statisticsService *statistics.Service
	logger            *logging.Logger
}

// NewStatsCommand creates a new stats command handler
func NewStatsCommand(statisticsService *statistics.Service, logger *logging.Logger) *StatsCommand {
	if logger == nil {
		logger = logging.Default
	}
	return &StatsCommand{
		statisticsService: statisticsService,
		logger:            logger,
	}
}

// Command returns the command definition for the stats command
func (c *StatsCommand) Command() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        StatsCommandName,
		Description: "View blackjack statistics",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "player",
				Description: "Whose statistics to show, defaults to you",
				Type:        discordgo.ApplicationCommandOptionUser,
			},
		},
	}
}

// Handle handles the stats command
func (c *StatsCommand) Handle(ctx context.Context, s discord.SessionHandler, i *discordgo.InteractionCreate) {
	playerID := discord.UserID(i)
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "player" {
			if u := opt.UserValue(nil); u != nil {
				playerID = u.ID
			}
		}
	}

	summary, err := c.statisticsService.GetPlayerSummary(ctx, playerID, statistics.DefaultRecentRounds)
	if err != nil {
		err = types.WrapError(types.ErrDatabaseError, "could not load statistics", err)
		c.logger.LogError(err)
		if sendErr := discord.SendErrorResponse(s, i, err); sendErr != nil {
			c.logger.Error("Error responding to interaction %s: %v", i.ID, sendErr)
		}
		return
	}

	resp := discord.NewEmbedResponse(createStatsEmbed(playerID, summary), nil, false)
	if err := discord.SendResponse(s, i, resp); err != nil {
		c.logger.Error("Error responding to interaction %s: %v", i.ID, err)
	}
}

func createStatsEmbed(playerID string, summary *statistics.PlayerSummary) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Blackjack statistics",
		Color: 0xFFD700,
	}

	if summary.GamesPlayed == 0 {
		embed.Description = fmt.Sprintf("<@%s> has not played a round yet.", playerID)
		return embed
	}

	embed.Description = fmt.Sprintf("<@%s>", playerID)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Rounds", Value: fmt.Sprintf("%d", summary.GamesPlayed), Inline: true},
		{Name: "W / L / P", Value: fmt.Sprintf("%d / %d / %d", summary.Wins, summary.Losses, summary.Pushes), Inline: true},
		{Name: "Win rate", Value: fmt.Sprintf("%.1f%%", summary.WinRate), Inline: true},
		{Name: "Net profit", Value: fmt.Sprintf("%+d", summary.NetProfit), Inline: true},
		{Name: "Naturals", Value: fmt.Sprintf("%d", summary.Naturals), Inline: true},
		{Name: "Busts", Value: fmt.Sprintf("%d", summary.Busts), Inline: true},
	}

	if len(summary.Recent) > 0 {
		lines := make([]string, len(summary.Recent))
		for i, r := range summary.Recent {
			lines[i] = formatRound(r)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Recent rounds",
			Value: strings.Join(lines, "\n"),
		})
	}

	return embed
}

func formatRound(r *entities.RoundResult) string {
	return fmt.Sprintf("%s %d vs %d (`%+d`)", strings.ToLower(string(r.Result)), r.PlayerScore, r.DealerScore, r.Delta)
}
