package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/fadedpez/blackjacktable/pkg/entities"
	"github.com/fadedpez/blackjacktable/pkg/services/blackjack"
)

const (
	colorInProgress = 0xFFD700
	colorWin        = 0x2ECC71
	colorLose       = 0xE74C3C
	colorPush       = 0x95A5A6
)

func formatCards(cards []blackjack.CardView) string {
	if len(cards) == 0 {
		return "-"
	}
	parts := make([]string, len(cards))
	for i, card := range cards {
		parts[i] = card.String()
	}
	return strings.Join(parts, " ")
}

// roundEmbed renders a snapshot. The dealer's hole card stays hidden until the round is over.
func roundEmbed(snap *blackjack.Snapshot) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Blackjack",
		Color: colorInProgress,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Dealer",
				Value:  fmt.Sprintf("%s\nScore: %d", formatCards(snap.DealerHand), snap.DealerScore),
				Inline: true,
			},
			{
				Name:   "You",
				Value:  fmt.Sprintf("%s\nScore: %d", formatCards(snap.PlayerHand), snap.PlayerScore),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Bet: %d | Balance: %d", snap.CurrentBet, snap.Balance),
		},
	}

	if snap.RoundOver {
		embed.Description = resultLine(snap)
		switch snap.Result {
		case entities.ResultWin:
			embed.Color = colorWin
		case entities.ResultLose:
			embed.Color = colorLose
		default:
			embed.Color = colorPush
		}
	}

	return embed
}

func resultLine(snap *blackjack.Snapshot) string {
	switch snap.Result {
	case entities.ResultWin:
		return fmt.Sprintf("💰 %s (+%d)", snap.Message, snap.CurrentBet)
	case entities.ResultLose:
		return fmt.Sprintf("💀 %s (-%d)", snap.Message, snap.CurrentBet)
	default:
		return fmt.Sprintf("🤝 %s", snap.Message)
	}
}

// roundButtons offers hit and stand while the round runs and a rematch at the same bet once it is over
func roundButtons(snap *blackjack.Snapshot) []discordgo.MessageComponent {
	if !snap.RoundOver {
		return []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Hit",
						Style:    discordgo.PrimaryButton,
						CustomID: ButtonHit,
					},
					discordgo.Button{
						Label:    "Stand",
						Style:    discordgo.SecondaryButton,
						CustomID: ButtonStand,
					},
				},
			},
		}
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Play Again",
					Style:    discordgo.SuccessButton,
					CustomID: fmt.Sprintf("%s:%d", ButtonAgain, snap.CurrentBet),
				},
			},
		},
	}
}

func walletEmbed(w *entities.Wallet, txs []*entities.Transaction) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "Wallet",
		Color:       colorInProgress,
		Description: fmt.Sprintf("Balance: **%d** chips", w.Balance),
	}

	if len(txs) == 0 {
		return embed
	}

	lines := make([]string, len(txs))
	for i, tx := range txs {
		lines[i] = fmt.Sprintf("`%+d` %s, balance %d", tx.Amount, strings.ToLower(string(tx.Type)), tx.BalanceAfter)
	}
	embed.Fields = []*discordgo.MessageEmbedField{
		{
			Name:  "Recent transactions",
			Value: strings.Join(lines, "\n"),
		},
	}
	return embed
}
