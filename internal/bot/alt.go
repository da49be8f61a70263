package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/Tkodvv/modbot/internal/permissions"
	"github.com/Tkodvv/modbot/internal/storage"
	"github.com/Tkodvv/modbot/internal/trigen"
)

// handleAlt serves the alt generator. Access is gated three ways: the
// feature must be enabled for the guild, the caller must be on the alt
// whitelist (or be an admin), and the per-guild cooldown must allow it.
func (b *Bot) handleAlt(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.GuildID == "" {
		b.respondError(session, interaction, "This command only works in a server.")
		return
	}
	if !b.trigen.Enabled() {
		b.respondError(session, interaction, "The alt generator is not configured.")
		return
	}

	settings := b.guildSettings(ctx, interaction.GuildID)
	if !settings.AltEnabled {
		b.respondError(session, interaction, "The alt generator is disabled on this server.")
		return
	}

	guild := b.guildForID(interaction.GuildID)
	member := interaction.Member
	if guild == nil || member == nil || member.User == nil {
		b.respondError(session, interaction, "Could not resolve your membership.")
		return
	}
	if !b.altAllowed(ctx, guild, member) {
		b.respondError(session, interaction, "You are not whitelisted for the alt generator.")
		return
	}

	if ok, retry := b.altLimiter.Allow(interaction.GuildID); !ok {
		b.respondError(session, interaction, fmt.Sprintf("Generator is cooling down, try again in %s.", retry.Round(time.Second)))
		return
	}

	account, err := b.trigen.Generate(ctx)
	if errors.Is(err, trigen.ErrTokensExhausted) {
		b.respondError(session, interaction, "The generator is out of tokens. Try again later.")
		return
	}
	if err != nil {
		b.logger.Warn("alt generation failed", zap.Error(err))
		b.respondError(session, interaction, "Generation failed, try again later.")
		return
	}

	b.respondEmbed(session, interaction, b.altEmbed(*account), true)
}

// prefixAlt is the text-command form of the alt generator, sharing the
// slash command's gates.
func (b *Bot) prefixAlt(ctx context.Context, msg *discordgo.MessageCreate, settings storage.GuildSettings) {
	if !b.trigen.Enabled() {
		b.sendEmbed(msg.ChannelID, b.errorEmbed("The alt generator is not configured."))
		return
	}
	if !settings.AltEnabled {
		b.sendEmbed(msg.ChannelID, b.errorEmbed("The alt generator is disabled on this server."))
		return
	}

	guild := b.guildForID(msg.GuildID)
	member := msg.Member
	if guild == nil || member == nil {
		return
	}
	member.User = msg.Author
	if !b.altAllowed(ctx, guild, member) {
		b.sendEmbed(msg.ChannelID, b.errorEmbed("You are not whitelisted for the alt generator."))
		return
	}

	if ok, retry := b.altLimiter.Allow(msg.GuildID); !ok {
		b.sendEmbed(msg.ChannelID, b.errorEmbed(fmt.Sprintf("Generator is cooling down, try again in %s.", retry.Round(time.Second))))
		return
	}

	account, err := b.trigen.Generate(ctx)
	if errors.Is(err, trigen.ErrTokensExhausted) {
		b.sendEmbed(msg.ChannelID, b.errorEmbed("The generator is out of tokens. Try again later."))
		return
	}
	if err != nil {
		b.logger.Warn("alt generation failed", zap.Error(err))
		b.sendEmbed(msg.ChannelID, b.errorEmbed("Generation failed, try again later."))
		return
	}
	b.sendEmbed(msg.ChannelID, b.altEmbed(*account))
}

func (b *Bot) altEmbed(account trigen.Account) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Username", Value: account.Username, Inline: true},
	}
	if account.DisplayName != "" && account.DisplayName != account.Username {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Display name", Value: account.DisplayName, Inline: true})
	}
	if account.Bio != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Bio", Value: truncate(account.Bio, 1024), Inline: false})
	}
	if account.Note != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Note", Value: account.Note, Inline: false})
	}
	if account.ExpiresAt != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Expires", Value: account.ExpiresAt, Inline: true})
	}

	embed := &discordgo.MessageEmbed{
		Title:     "Fresh alt",
		Color:     b.cfg.EmbedColors.Action,
		Fields:    fields,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if account.AvatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: account.AvatarURL}
	}
	return embed
}

func (b *Bot) altAllowed(ctx context.Context, guild *discordgo.Guild, member *discordgo.Member) bool {
	if permissions.IsAdmin(guild, member) {
		return true
	}
	users, err := b.store.ListAltUsers(ctx, guild.ID)
	if err != nil {
		b.logger.Warn("alt whitelist lookup failed", zap.Error(err))
		return false
	}
	for _, id := range users {
		if id == member.User.ID {
			return true
		}
	}
	roles, err := b.store.ListAltRoles(ctx, guild.ID)
	if err != nil {
		return false
	}
	return permissions.HasAnyRole(member, roles)
}
