// Package announcer posts finished match tables to a Discord channel.
package announcer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Dosada05/tournament-ops/models"
	"github.com/bwmarrin/discordgo"
)

const (
	embedColor = 0xF2A900
	maxRows    = 20
)

type Discord struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscord(token, channelID string) (*Discord, error) {
	if token == "" || channelID == "" {
		return nil, errors.New("discord token and channel id are required")
	}
	sess, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &Discord{session: sess, channelID: channelID}, nil
}

func (d *Discord) AnnounceMatchResults(ctx context.Context, match *models.Match, teamNames map[string]string) error {
	embed := ResultsEmbed(match, teamNames)
	if _, err := d.session.ChannelMessageSendEmbed(d.channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send results of match %s: %w", match.ID, err)
	}
	return nil
}

// ResultsEmbed renders the ranked table of a finished match.
func ResultsEmbed(match *models.Match, teamNames map[string]string) *discordgo.MessageEmbed {
	results := match.Results.Clone()
	slices.SortStableFunc(results, func(a, b models.MatchResult) int { return a.Rank - b.Rank })

	var b strings.Builder
	for i, r := range results {
		if i == maxRows {
			fmt.Fprintf(&b, "... and %d more teams\n", len(results)-maxRows)
			break
		}
		name := teamNames[r.TeamID]
		if name == "" {
			name = "Unknown team"
		}
		fmt.Fprintf(&b, "**%d.** %s - %d pts (%d kills, %d placement)\n",
			r.Rank, name, r.TotalPoints, r.Kills, r.PlacementPoints)
	}
	if len(results) == 0 {
		b.WriteString("No teams took part.")
	}

	title := fmt.Sprintf("Match #%d results", match.MatchNumber)
	if match.MapName != "" {
		title += " - " + match.MapName
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: strings.TrimRight(b.String(), "\n"),
		Color:       embedColor,
		Timestamp:   match.DateTime.UTC().Format(time.RFC3339),
	}
	if match.GameName != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: match.GameName}
	}
	return embed
}
