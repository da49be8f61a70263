package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/Tkodvv/modbot/internal/permissions"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) handleModerationCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, name string, options []*discordgo.ApplicationCommandInteractionDataOption) {
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

	if !b.isModerator(ctx, guild, actor) {
		b.respondError(session, interaction, "You are not on this server's moderator list.")
		return
	}
	if !permissions.CanExecute(guild, actor, name) {
		b.respondError(session, interaction, "You lack the Discord permission for that command.")
		return
	}

	opts := optionMap(options)
	reason := ""
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}

	switch name {
	case "kick":
		b.handleKick(ctx, session, interaction, guild, actor, opts["user"].UserValue(session), reason)
	case "ban":
		days := 0
		if opt, ok := opts["delete_days"]; ok {
			days = int(opt.IntValue())
		}
		b.handleBan(ctx, session, interaction, guild, actor, opts["user"].UserValue(session), reason, days)
	case "unban":
		b.handleUnban(ctx, session, interaction, guild, opts["user_id"].StringValue(), reason)
	case "timeout":
		minutes := int(opts["minutes"].IntValue())
		b.handleTimeout(ctx, session, interaction, guild, actor, opts["user"].UserValue(session), minutes, reason)
	case "untimeout":
		b.handleUntimeout(ctx, session, interaction, guild, actor, opts["user"].UserValue(session), reason)
	case "clear":
		amount := int(opts["amount"].IntValue())
		var filterUser *discordgo.User
		if opt, ok := opts["user"]; ok {
			filterUser = opt.UserValue(session)
		}
		b.handleClear(session, interaction, amount, filterUser)
	}
}

// checkTarget enforces the hierarchy rules shared by every sanction
// that targets a current member.
func (b *Bot) checkTarget(session *discordgo.Session, interaction *discordgo.InteractionCreate, guild *discordgo.Guild, actor *discordgo.Member, target *discordgo.User) (*discordgo.Member, bool) {
	if target == nil {
		b.respondError(session, interaction, "Could not resolve the target user.")
		return nil, false
	}
	if target.ID == session.State.User.ID {
		b.respondError(session, interaction, "I am not going to do that to myself.")
		return nil, false
	}
	targetMember := b.memberForUser(guild.ID, target.ID)
	if targetMember == nil {
		b.respondError(session, interaction, "That user is not a member of this server.")
		return nil, false
	}
	if !permissions.CanModerate(guild, actor, targetMember) {
		b.respondError(session, interaction, "You cannot moderate that member.")
		return nil, false
	}
	botMember := b.memberForUser(guild.ID, session.State.User.ID)
	if !permissions.BotOutranks(guild, botMember, targetMember) {
		b.respondError(session, interaction, "My highest role is not above that member's.")
		return nil, false
	}
	return targetMember, true
}

func (b *Bot) handleKick(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, guild *discordgo.Guild, actor *discordgo.Member, target *discordgo.User, reason string) {
	if _, ok := b.checkTarget(session, interaction, guild, actor, target); !ok {
		return
	}

	b.dmUser(target.ID, b.dmNoticeEmbed("kick", guild.Name, reason))

	if err := session.GuildMemberDeleteWithReason(guild.ID, target.ID, reason); err != nil {
		b.logger.Warn("kick failed", zap.String("target", target.ID), zap.Error(err))
		b.respondError(session, interaction, "Kick failed: "+err.Error())
		return
	}

	caseNum := b.modlog.Record(ctx, guild.ID, "kick", actor.User.ID, target.ID, reason)
	b.respondEmbed(session, interaction, b.caseEmbed("kick", target.Username, target.ID, reason, caseNum), false)
}

func (b *Bot) handleBan(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, guild *discordgo.Guild, actor *discordgo.Member, target *discordgo.User, reason string, deleteDays int) {
	if target == nil {
		b.respondError(session, interaction, "Could not resolve the target user.")
		return
	}
	// Bans may target users who already left, so hierarchy checks only
	// apply when the target is still a member.
	if member := b.memberForUser(guild.ID, target.ID); member != nil {
		if _, ok := b.checkTarget(session, interaction, guild, actor, target); !ok {
			return
		}
	}
	if deleteDays < 0 {
		deleteDays = 0
	}
	if deleteDays > 7 {
		deleteDays = 7
	}

	b.dmUser(target.ID, b.dmNoticeEmbed("ban", guild.Name, reason))

	if err := session.GuildBanCreateWithReason(guild.ID, target.ID, reason, deleteDays); err != nil {
		b.logger.Warn("ban failed", zap.String("target", target.ID), zap.Error(err))
		b.respondError(session, interaction, "Ban failed: "+err.Error())
		return
	}

	caseNum := b.modlog.Record(ctx, guild.ID, "ban", actor.User.ID, target.ID, reason)
	embed := b.caseEmbed("ban", target.Username, target.ID, reason, caseNum)
	if deleteDays > 0 {
		embed.Description += fmt.Sprintf("\nDeleted %d day(s) of their messages.", deleteDays)
	}
	b.respondEmbed(session, interaction, embed, false)
}

func (b *Bot) handleUnban(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, guild *discordgo.Guild, userID, reason string) {
	if userID == "" {
		b.respondError(session, interaction, "A user ID is required.")
		return
	}

	ban, err := session.GuildBan(guild.ID, userID)
	if err != nil {
		b.respondError(session, interaction, "That user is not banned here.")
		return
	}

	if err := session.GuildBanDelete(guild.ID, userID); err != nil {
		b.respondError(session, interaction, "Unban failed: "+err.Error())
		return
	}

	name := userID
	if ban.User != nil {
		name = ban.User.Username
	}
	actorID := ""
	if user := interactionUser(interaction); user != nil {
		actorID = user.ID
	}
	caseNum := b.modlog.Record(ctx, guild.ID, "unban", actorID, userID, reason)
	b.respondEmbed(session, interaction, b.caseEmbed("unban", name, userID, reason, caseNum), false)
}

func (b *Bot) handleTimeout(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, guild *discordgo.Guild, actor *discordgo.Member, target *discordgo.User, minutes int, reason string) {
	if _, ok := b.checkTarget(session, interaction, guild, actor, target); !ok {
		return
	}
	if minutes < 1 {
		minutes = 1
	}
	if minutes > 40320 {
		minutes = 40320
	}

	until := time.Now().Add(time.Duration(minutes) * time.Minute)
	if err := session.GuildMemberTimeout(guild.ID, target.ID, &until); err != nil {
		b.logger.Warn("timeout failed", zap.String("target", target.ID), zap.Error(err))
		b.respondError(session, interaction, "Timeout failed: "+err.Error())
		return
	}

	detail := reason
	if detail == "" {
		detail = fmt.Sprintf("%d minutes", minutes)
	} else {
		detail = fmt.Sprintf("%s (%d minutes)", reason, minutes)
	}
	notice := b.dmNoticeEmbed("timeout", guild.Name, detail)
	notice.Description += fmt.Sprintf("\nExpires <t:%d:R>.", until.Unix())
	b.dmUser(target.ID, notice)
	caseNum := b.modlog.Record(ctx, guild.ID, "timeout", actor.User.ID, target.ID, detail)
	b.respondEmbed(session, interaction, b.caseEmbed("timeout", target.Username, target.ID, detail, caseNum), false)
}

func (b *Bot) handleUntimeout(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, guild *discordgo.Guild, actor *discordgo.Member, target *discordgo.User, reason string) {
	if _, ok := b.checkTarget(session, interaction, guild, actor, target); !ok {
		return
	}

	if err := session.GuildMemberTimeout(guild.ID, target.ID, nil); err != nil {
		b.respondError(session, interaction, "Could not remove the timeout: "+err.Error())
		return
	}

	caseNum := b.modlog.Record(ctx, guild.ID, "untimeout", actor.User.ID, target.ID, reason)
	b.respondEmbed(session, interaction, b.caseEmbed("untimeout", target.Username, target.ID, reason, caseNum), false)
}

// splitClearTargets partitions candidate messages into bulk-deletable IDs
// and IDs past the 14-day bulk limit, honoring the author filter and the
// requested amount.
func splitClearTargets(messages []*discordgo.Message, cutoff time.Time, filterID string, amount int) (bulk, old []string) {
	for _, msg := range messages {
		if len(bulk)+len(old) >= amount {
			break
		}
		if filterID != "" && (msg.Author == nil || msg.Author.ID != filterID) {
			continue
		}
		if msg.Timestamp.Before(cutoff) {
			old = append(old, msg.ID)
			continue
		}
		bulk = append(bulk, msg.ID)
	}
	return bulk, old
}

// handleClear bulk deletes up to amount recent messages, optionally
// filtered to one author. Messages older than 14 days cannot be bulk
// deleted and are removed one by one instead.
func (b *Bot) handleClear(session *discordgo.Session, interaction *discordgo.InteractionCreate, amount int, filterUser *discordgo.User) {
	if amount < 1 {
		amount = 1
	}
	if amount > 100 {
		amount = 100
	}

	// When filtering by author, scan deeper so the filter can still
	// find enough matches.
	fetch := amount
	if filterUser != nil {
		fetch = amount * 2
		if fetch > 100 {
			fetch = 100
		}
	}

	messages, err := session.ChannelMessages(interaction.ChannelID, fetch, "", "", "")
	if err != nil {
		b.respondError(session, interaction, "Could not fetch channel messages.")
		return
	}

	filterID := ""
	if filterUser != nil {
		filterID = filterUser.ID
	}
	cutoff := time.Now().Add(-14 * 24 * time.Hour)
	bulk, old := splitClearTargets(messages, cutoff, filterID, amount)

	if len(bulk) == 0 && len(old) == 0 {
		b.respondError(session, interaction, "Nothing to delete.")
		return
	}

	if len(bulk) == 1 {
		err = session.ChannelMessageDelete(interaction.ChannelID, bulk[0])
	} else if len(bulk) > 1 {
		err = session.ChannelMessagesBulkDelete(interaction.ChannelID, bulk)
	}
	if err != nil {
		b.respondError(session, interaction, "Delete failed: "+err.Error())
		return
	}

	deleted := len(bulk)
	for _, id := range old {
		if err := session.ChannelMessageDelete(interaction.ChannelID, id); err == nil {
			deleted++
		}
	}

	summary := fmt.Sprintf("Deleted %d message(s).", deleted)
	if filterUser != nil {
		summary = fmt.Sprintf("Deleted %d message(s) from **%s**.", deleted, filterUser.Username)
	}
	b.respondEmbed(session, interaction, b.successEmbed(summary), true)
}

func (b *Bot) handleSnipe(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	msg, ok := b.snipes.Get(interaction.ChannelID)
	if !ok {
		b.respondError(session, interaction, "There's nothing to snipe here.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Description: truncate(msg.Content, 2048),
		Color:       b.cfg.EmbedColors.Info,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    msg.AuthorName,
			IconURL: msg.AvatarURL,
		},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Sent", Value: fmt.Sprintf("<t:%d:R>", msg.CreatedAt.Unix()), Inline: true},
		},
		Timestamp: msg.DeletedAt.Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: "Deleted"},
	}
	b.respondEmbed(session, interaction, embed, false)
}
