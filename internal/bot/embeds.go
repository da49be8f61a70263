package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/image/colornames"
)

// actionPhrase maps a stored case action to the past-tense phrase
// shown in the case embed.
func actionPhrase(action string) string {
	switch action {
	case "kick":
		return "kicked"
	case "ban":
		return "banned"
	case "unban":
		return "unbanned"
	case "timeout":
		return "timed out"
	case "untimeout":
		return "released from timeout"
	default:
		return action
	}
}

// caseEmbed renders a moderation case in the familiar modlog format:
// a bold sentence, an optional reason line, and a case footer.
func (b *Bot) caseEmbed(action, targetName, targetID, reason string, caseNumber int) *discordgo.MessageEmbed {
	desc := fmt.Sprintf("**%s** was %s.", targetName, actionPhrase(action))
	if reason != "" {
		desc += fmt.Sprintf("\n***Reason:*** %s", reason)
	}
	return &discordgo.MessageEmbed{
		Description: desc,
		Color:       b.cfg.EmbedColors.Action,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Case #%d • User ID: %s", caseNumber, targetID),
		},
	}
}

func (b *Bot) errorEmbed(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: message,
		Color:       b.cfg.EmbedColors.Error,
	}
}

func (b *Bot) infoEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       b.cfg.EmbedColors.Info,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

func (b *Bot) successEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: description,
		Color:       b.cfg.EmbedColors.Action,
	}
}

// dmNoticeEmbed is what the target receives before a sanction lands.
func (b *Bot) dmNoticeEmbed(action, guildName, reason string) *discordgo.MessageEmbed {
	desc := fmt.Sprintf("You were %s in **%s**.", actionPhrase(action), guildName)
	if reason != "" {
		desc += fmt.Sprintf("\n***Reason:*** %s", reason)
	}
	return &discordgo.MessageEmbed{
		Description: desc,
		Color:       b.cfg.EmbedColors.Warning,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

// parseColor accepts a CSS color name (via the SVG 1.1 palette) or a
// hex value with an optional # or 0x prefix.
func parseColor(value string) (int, bool) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return 0, false
	}
	if c, ok := colornames.Map[value]; ok {
		return int(c.R)<<16 | int(c.G)<<8 | int(c.B), true
	}
	hex := strings.TrimPrefix(strings.TrimPrefix(value, "#"), "0x")
	if len(hex) != 6 {
		return 0, false
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, false
	}
	return int(n), true
}
