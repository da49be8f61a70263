package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Tkodvv/modbot/internal/permissions"
	"github.com/Tkodvv/modbot/internal/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) handleAdminCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, name string, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if interaction.GuildID == "" {
		b.respondError(session, interaction, "This command only works in a server.")
		return
	}
	guild := b.guildForID(interaction.GuildID)
	actor := interaction.Member
	if guild == nil || actor == nil || actor.User == nil {
		b.respondError(session, interaction, "Could not resolve your membership.")
		return
	}

	switch name {
	case "say", "announce", "dm", "setprefix":
		if !permissions.CanExecute(guild, actor, name) {
			b.respondError(session, interaction, "You lack the Discord permission for that command.")
			return
		}
	case "modlog", "modrole", "altwl":
		if !permissions.HasPermission(guild, actor, discordgo.PermissionManageServer) {
			b.respondError(session, interaction, "Manage Server permission required.")
			return
		}
	case "modstats":
		if !b.isModerator(ctx, guild, actor) {
			b.respondError(session, interaction, "You are not on this server's moderator list.")
			return
		}
	}

	opts := optionMap(options)

	switch name {
	case "say":
		message := opts["message"].StringValue()
		if _, err := session.ChannelMessageSend(interaction.ChannelID, message); err != nil {
			b.respondError(session, interaction, "Could not send the message.")
			return
		}
		b.respondEmbed(session, interaction, b.successEmbed("Sent."), true)

	case "announce":
		channelID := interaction.ChannelID
		if opt, ok := opts["channel"]; ok {
			channel := opt.ChannelValue(session)
			if channel == nil {
				b.respondError(session, interaction, "Could not resolve the channel.")
				return
			}
			channelID = channel.ID
		}
		embed := &discordgo.MessageEmbed{
			Title:       opts["title"].StringValue(),
			Description: opts["message"].StringValue(),
			Color:       b.cfg.EmbedColors.Info,
			Timestamp:   time.Now().Format(time.RFC3339),
			Footer:      &discordgo.MessageEmbedFooter{Text: "Announcement"},
		}
		if opt, ok := opts["image"]; ok {
			url, err := utils.NormalizeImageURL(opt.StringValue())
			if err != nil {
				b.respondError(session, interaction, "That image URL doesn't look valid.")
				return
			}
			embed.Image = &discordgo.MessageEmbedImage{URL: url}
		}
		if _, err := session.ChannelMessageSendEmbed(channelID, embed); err != nil {
			b.respondError(session, interaction, "Could not post to <#"+channelID+">.")
			return
		}
		b.respondEmbed(session, interaction, b.successEmbed("Announcement posted to <#"+channelID+">."), true)

	case "dm":
		target := opts["user"].UserValue(session)
		if target == nil || target.Bot {
			b.respondError(session, interaction, "Pick a human recipient.")
			return
		}
		channel, err := session.UserChannelCreate(target.ID)
		if err != nil {
			b.respondError(session, interaction, "Could not open a DM with that user.")
			return
		}
		embed := &discordgo.MessageEmbed{
			Description: opts["message"].StringValue(),
			Color:       b.cfg.EmbedColors.Info,
			Timestamp:   time.Now().Format(time.RFC3339),
			Footer:      &discordgo.MessageEmbedFooter{Text: "From " + actor.User.Username + " • " + guild.Name},
		}
		if _, err := session.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
			b.respondError(session, interaction, "That user's DMs are closed.")
			return
		}
		b.respondEmbed(session, interaction, b.successEmbed("Delivered to **"+target.Username+"**."), true)

	case "setprefix":
		prefix := strings.TrimSpace(opts["prefix"].StringValue())
		if prefix == "" || len(prefix) > 5 {
			b.respondError(session, interaction, "Prefix must be 1-5 characters.")
			return
		}
		settings := b.guildSettings(ctx, guild.ID)
		settings.Prefix = prefix
		if err := b.store.UpsertGuildSettings(ctx, settings); err != nil {
			b.logger.Warn("prefix update failed", zap.Error(err))
			b.respondError(session, interaction, "Could not save the prefix.")
			return
		}
		b.respondEmbed(session, interaction, b.successEmbed("Prefix set to `"+prefix+"`."), false)

	case "modlog":
		settings := b.guildSettings(ctx, guild.ID)
		opt, ok := opts["channel"]
		if !ok {
			settings.ModlogChannel = ""
			if err := b.store.UpsertGuildSettings(ctx, settings); err != nil {
				b.respondError(session, interaction, "Could not clear the modlog channel.")
				return
			}
			b.respondEmbed(session, interaction, b.successEmbed("Modlog channel cleared."), true)
			return
		}
		channel := opt.ChannelValue(session)
		if channel == nil {
			b.respondError(session, interaction, "Could not resolve the channel.")
			return
		}
		settings.ModlogChannel = channel.ID
		if err := b.store.UpsertGuildSettings(ctx, settings); err != nil {
			b.respondError(session, interaction, "Could not save the modlog channel.")
			return
		}
		b.respondEmbed(session, interaction, b.successEmbed("Case logs will go to <#"+channel.ID+">."), true)

	case "modrole":
		b.handleModRole(ctx, session, interaction, guild, options)

	case "altwl":
		b.handleAltWhitelist(ctx, session, interaction, guild, options)

	case "modstats":
		period := opts["period"].StringValue()
		since := time.Now().Add(-24 * time.Hour)
		label := "24 hours"
		if period == "week" {
			since = time.Now().Add(-7 * 24 * time.Hour)
			label = "7 days"
		}
		report, err := b.reports.Summarize(ctx, guild.ID, since)
		if err != nil {
			b.respondError(session, interaction, "Could not build the report.")
			return
		}
		lines := []string{fmt.Sprintf("**Total:** %d", report.Total)}
		for _, action := range []string{"kick", "ban", "unban", "timeout", "untimeout"} {
			if count := report.ByAction[action]; count > 0 {
				lines = append(lines, fmt.Sprintf("%s: %d", action, count))
			}
		}
		b.respondEmbed(session, interaction, b.infoEmbed("Moderation – last "+label, strings.Join(lines, "\n")), true)
	}
}

func (b *Bot) handleModRole(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, guild *discordgo.Guild, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		b.respondError(session, interaction, "Pick a subcommand.")
		return
	}
	sub := options[0]
	subOpts := optionMap(sub.Options)

	switch sub.Name {
	case "add":
		role := subOpts["role"].RoleValue(session, guild.ID)
		if role == nil {
			b.respondError(session, interaction, "Could not resolve the role.")
			return
		}
		if err := b.store.AddModRole(ctx, guild.ID, role.ID); err != nil {
			b.respondError(session, interaction, "Could not save the role.")
			return
		}
		b.respondEmbed(session, interaction, b.successEmbed("**"+role.Name+"** can now use moderation commands."), true)

	case "remove":
		role := subOpts["role"].RoleValue(session, guild.ID)
		if role == nil {
			b.respondError(session, interaction, "Could not resolve the role.")
			return
		}
		removed, err := b.store.RemoveModRole(ctx, guild.ID, role.ID)
		if err != nil {
			b.respondError(session, interaction, "Could not remove the role.")
			return
		}
		if !removed {
			b.respondError(session, interaction, "That role was not whitelisted.")
			return
		}
		b.respondEmbed(session, interaction, b.successEmbed("**"+role.Name+"** removed from the moderator list."), true)

	case "list":
		roles, err := b.store.ListModRoles(ctx, guild.ID)
		if err != nil {
			b.respondError(session, interaction, "Could not load the list.")
			return
		}
		if len(roles) == 0 {
			b.respondEmbed(session, interaction, b.infoEmbed("Moderator roles", "None configured. Discord permissions apply directly."), true)
			return
		}
		mentions := make([]string, 0, len(roles))
		for _, id := range roles {
			mentions = append(mentions, "<@&"+id+">")
		}
		b.respondEmbed(session, interaction, b.infoEmbed("Moderator roles", strings.Join(mentions, "\n")), true)
	}
}

func (b *Bot) handleAltWhitelist(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, guild *discordgo.Guild, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		b.respondError(session, interaction, "Pick a subcommand.")
		return
	}
	sub := options[0]
	subOpts := optionMap(sub.Options)

	switch sub.Name {
	case "adduser":
		user := subOpts["user"].UserValue(session)
		if user == nil {
			b.respondError(session, interaction, "Could not resolve the user.")
			return
		}
		if err := b.store.AddAltUser(ctx, guild.ID, user.ID); err != nil {
			b.respondError(session, interaction, "Could not save the user.")
			return
		}
		b.respondEmbed(session, interaction, b.successEmbed("**"+user.Username+"** can now use the alt generator."), true)

	case "removeuser":
		user := subOpts["user"].UserValue(session)
		if user == nil {
			b.respondError(session, interaction, "Could not resolve the user.")
			return
		}
		removed, err := b.store.RemoveAltUser(ctx, guild.ID, user.ID)
		if err != nil || !removed {
			b.respondError(session, interaction, "That user was not whitelisted.")
			return
		}
		b.respondEmbed(session, interaction, b.successEmbed("**"+user.Username+"** removed from the alt whitelist."), true)

	case "addrole":
		role := subOpts["role"].RoleValue(session, guild.ID)
		if role == nil {
			b.respondError(session, interaction, "Could not resolve the role.")
			return
		}
		if err := b.store.AddAltRole(ctx, guild.ID, role.ID); err != nil {
			b.respondError(session, interaction, "Could not save the role.")
			return
		}
		b.respondEmbed(session, interaction, b.successEmbed("**"+role.Name+"** can now use the alt generator."), true)

	case "removerole":
		role := subOpts["role"].RoleValue(session, guild.ID)
		if role == nil {
			b.respondError(session, interaction, "Could not resolve the role.")
			return
		}
		removed, err := b.store.RemoveAltRole(ctx, guild.ID, role.ID)
		if err != nil || !removed {
			b.respondError(session, interaction, "That role was not whitelisted.")
			return
		}
		b.respondEmbed(session, interaction, b.successEmbed("**"+role.Name+"** removed from the alt whitelist."), true)

	case "list":
		users, err := b.store.ListAltUsers(ctx, guild.ID)
		if err != nil {
			b.respondError(session, interaction, "Could not load the list.")
			return
		}
		roles, err := b.store.ListAltRoles(ctx, guild.ID)
		if err != nil {
			b.respondError(session, interaction, "Could not load the list.")
			return
		}
		var sb strings.Builder
		sb.WriteString("**Users:** ")
		if len(users) == 0 {
			sb.WriteString("none")
		} else {
			for i, id := range users {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString("<@" + id + ">")
			}
		}
		sb.WriteString("\n**Roles:** ")
		if len(roles) == 0 {
			sb.WriteString("none")
		} else {
			for i, id := range roles {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString("<@&" + id + ">")
			}
		}
		b.respondEmbed(session, interaction, b.infoEmbed("Alt generator access", sb.String()), true)
	}
}

func (b *Bot) handleOwnerCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, name string, options []*discordgo.ApplicationCommandInteractionDataOption) {
	_ = ctx
	user := interactionUser(interaction)
	if user == nil || !b.isOwner(user.ID) {
		b.respondError(session, interaction, "Owner only.")
		return
	}

	opts := optionMap(options)

	switch name {
	case "forceleave":
		guildID := interaction.GuildID
		if opt, ok := opts["guild_id"]; ok {
			guildID = strings.TrimSpace(opt.StringValue())
		}
		if guildID == "" {
			b.respondError(session, interaction, "A guild ID is required.")
			return
		}
		if err := session.GuildLeave(guildID); err != nil {
			b.respondError(session, interaction, "Leave failed: "+err.Error())
			return
		}
		b.logger.Info("left guild by owner request", zap.String("guild_id", guildID))
		b.respondEmbed(session, interaction, b.successEmbed("Left guild `"+guildID+"`."), true)

	case "blacklistreload":
		count := b.ReloadBlacklist()
		b.respondEmbed(session, interaction, b.successEmbed(fmt.Sprintf("Blacklist reloaded: %d entries.", count)), true)
	}
}
