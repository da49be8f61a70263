package bot

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/Tkodvv/modbot/internal/permissions"
	"github.com/Tkodvv/modbot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// prefixCommands is the subset of commands also usable in text form.
var prefixCommands = map[string]struct{}{
	"ping": {}, "avatar": {}, "snipe": {}, "8ball": {}, "coinflip": {}, "roll": {},
	"kick": {}, "ban": {}, "unban": {}, "timeout": {}, "untimeout": {}, "clear": {},
	"say": {}, "setprefix": {}, "alt": {},
}

// parsePrefixCommand splits a message into a command name and its
// arguments when the message starts with the guild prefix.
func parsePrefixCommand(content, prefix string) (string, []string, bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(content, prefix))
	if rest == "" {
		return "", nil, false
	}
	parts := strings.Fields(rest)
	return strings.ToLower(parts[0]), parts[1:], true
}

// parseUserArg extracts a user ID from a mention like <@123> / <@!123>
// or a bare snowflake.
func parseUserArg(arg string) (string, bool) {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "<@") && strings.HasSuffix(arg, ">") {
		arg = strings.TrimSuffix(strings.TrimPrefix(arg, "<@"), ">")
		arg = strings.TrimPrefix(arg, "!")
	}
	if arg == "" {
		return "", false
	}
	if _, err := strconv.ParseUint(arg, 10, 64); err != nil {
		return "", false
	}
	return arg, true
}

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author == nil || msg.Author.Bot || msg.GuildID == "" {
		return
	}
	if b.isBlacklisted(msg.GuildID) {
		return
	}

	ctx := context.Background()
	settings := b.guildSettings(ctx, msg.GuildID)

	name, args, ok := parsePrefixCommand(msg.Content, settings.Prefix)
	if !ok {
		return
	}

	if _, ok := prefixCommands[name]; !ok {
		return
	}

	// Command invocations are house-kept out of the channel.
	_ = session.ChannelMessageDelete(msg.ChannelID, msg.ID)

	switch name {
	case "ping":
		latency := session.HeartbeatLatency().Round(time.Millisecond)
		b.sendEmbed(msg.ChannelID, b.infoEmbed("Pong", fmt.Sprintf("Gateway latency: **%s**", latency)))

	case "avatar":
		target := msg.Author
		if len(args) > 0 {
			if id, ok := parseUserArg(args[0]); ok {
				if user, err := session.User(id); err == nil {
					target = user
				}
			}
		}
		b.sendEmbed(msg.ChannelID, &discordgo.MessageEmbed{
			Title: target.Username,
			Color: b.cfg.EmbedColors.Info,
			Image: &discordgo.MessageEmbedImage{URL: target.AvatarURL("1024")},
		})

	case "snipe":
		sniped, ok := b.snipes.Get(msg.ChannelID)
		if !ok {
			b.sendEmbed(msg.ChannelID, b.errorEmbed("There's nothing to snipe here."))
			return
		}
		b.sendEmbed(msg.ChannelID, &discordgo.MessageEmbed{
			Description: truncate(sniped.Content, 2048),
			Color:       b.cfg.EmbedColors.Info,
			Author: &discordgo.MessageEmbedAuthor{
				Name:    sniped.AuthorName,
				IconURL: sniped.AvatarURL,
			},
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Sent", Value: fmt.Sprintf("<t:%d:R>", sniped.CreatedAt.Unix()), Inline: true},
			},
			Timestamp: sniped.DeletedAt.Format(time.RFC3339),
			Footer:    &discordgo.MessageEmbedFooter{Text: "Deleted"},
		})

	case "8ball":
		question := strings.Join(args, " ")
		if question == "" {
			b.sendEmbed(msg.ChannelID, b.errorEmbed("Ask a question."))
			return
		}
		answer := eightBallAnswers[rand.Intn(len(eightBallAnswers))]
		b.sendEmbed(msg.ChannelID, b.infoEmbed("Magic 8-ball", fmt.Sprintf("**Q:** %s\n**A:** %s", truncate(question, 256), answer)))

	case "coinflip":
		result := "Heads"
		if rand.Intn(2) == 1 {
			result = "Tails"
		}
		b.sendEmbed(msg.ChannelID, b.infoEmbed("Coin flip", "**"+result+"**"))

	case "roll":
		spec := "1d6"
		if len(args) > 0 {
			spec = args[0]
		}
		total, _, err := rollDice(spec)
		if err != nil {
			b.sendEmbed(msg.ChannelID, b.errorEmbed("Use a spec like `2d6`."))
			return
		}
		b.sendEmbed(msg.ChannelID, b.infoEmbed("Dice roll", fmt.Sprintf("`%s` → **%d**", spec, total)))

	case "say":
		b.prefixSay(session, msg, args)

	case "setprefix":
		b.prefixSetPrefix(ctx, session, msg, settings, args)

	case "alt":
		b.prefixAlt(ctx, msg, settings)

	default:
		b.prefixModeration(ctx, session, msg, name, args)
	}
}

func (b *Bot) sendEmbed(channelID string, embed *discordgo.MessageEmbed) {
	if embed == nil {
		return
	}
	if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		b.logger.Debug("embed send failed", zap.String("channel_id", channelID), zap.Error(err))
	}
}

func (b *Bot) prefixSay(session *discordgo.Session, msg *discordgo.MessageCreate, args []string) {
	guild := b.guildForID(msg.GuildID)
	if guild == nil || msg.Member == nil {
		return
	}
	member := msg.Member
	member.User = msg.Author
	if !permissions.CanExecute(guild, member, "say") {
		b.sendEmbed(msg.ChannelID, b.errorEmbed("You lack the Discord permission for that command."))
		return
	}
	text := strings.Join(args, " ")
	if text == "" {
		return
	}
	_, _ = session.ChannelMessageSend(msg.ChannelID, text)
}

func (b *Bot) prefixSetPrefix(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, settings storage.GuildSettings, args []string) {
	guild := b.guildForID(msg.GuildID)
	if guild == nil || msg.Member == nil {
		return
	}
	member := msg.Member
	member.User = msg.Author
	if !permissions.CanExecute(guild, member, "setprefix") {
		b.sendEmbed(msg.ChannelID, b.errorEmbed("Administrator permission required."))
		return
	}
	if len(args) == 0 || len(args[0]) > 5 {
		b.sendEmbed(msg.ChannelID, b.errorEmbed("Prefix must be 1-5 characters."))
		return
	}
	settings.Prefix = args[0]
	if err := b.store.UpsertGuildSettings(ctx, settings); err != nil {
		b.sendEmbed(msg.ChannelID, b.errorEmbed("Could not save the prefix."))
		return
	}
	b.sendEmbed(msg.ChannelID, b.successEmbed("Prefix set to `"+args[0]+"`."))
}

// prefixModeration runs the text versions of the sanction commands.
// The flow mirrors the slash handlers with mention parsing in front.
func (b *Bot) prefixModeration(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, name string, args []string) {
	guild := b.guildForID(msg.GuildID)
	if guild == nil || msg.Member == nil {
		return
	}
	actor := msg.Member
	actor.User = msg.Author

	if !b.isModerator(ctx, guild, actor) {
		b.sendEmbed(msg.ChannelID, b.errorEmbed("You are not on this server's moderator list."))
		return
	}
	if !permissions.CanExecute(guild, actor, name) {
		b.sendEmbed(msg.ChannelID, b.errorEmbed("You lack the Discord permission for that command."))
		return
	}

	switch name {
	case "clear":
		amount := 10
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil {
				amount = n
			}
		}
		if amount < 1 {
			amount = 1
		}
		if amount > 100 {
			amount = 100
		}
		messages, err := session.ChannelMessages(msg.ChannelID, amount, "", "", "")
		if err != nil {
			b.sendEmbed(msg.ChannelID, b.errorEmbed("Could not fetch channel messages."))
			return
		}
		cutoff := time.Now().Add(-14 * 24 * time.Hour)
		bulk, old := splitClearTargets(messages, cutoff, "", amount)
		if len(bulk) == 1 {
			_ = session.ChannelMessageDelete(msg.ChannelID, bulk[0])
		} else if len(bulk) > 1 {
			if err := session.ChannelMessagesBulkDelete(msg.ChannelID, bulk); err != nil {
				b.sendEmbed(msg.ChannelID, b.errorEmbed("Delete failed."))
				return
			}
		}
		for _, id := range old {
			_ = session.ChannelMessageDelete(msg.ChannelID, id)
		}
		return

	case "unban":
		if len(args) == 0 {
			b.sendEmbed(msg.ChannelID, b.errorEmbed("Usage: unban <user id> [reason]"))
			return
		}
		userID, ok := parseUserArg(args[0])
		if !ok {
			b.sendEmbed(msg.ChannelID, b.errorEmbed("That doesn't look like a user ID."))
			return
		}
		reason := strings.Join(args[1:], " ")
		ban, err := session.GuildBan(guild.ID, userID)
		if err != nil {
			b.sendEmbed(msg.ChannelID, b.errorEmbed("That user is not banned here."))
			return
		}
		if err := session.GuildBanDelete(guild.ID, userID); err != nil {
			b.sendEmbed(msg.ChannelID, b.errorEmbed("Unban failed."))
			return
		}
		targetName := userID
		if ban.User != nil {
			targetName = ban.User.Username
		}
		caseNum := b.modlog.Record(ctx, guild.ID, "unban", msg.Author.ID, userID, reason)
		b.sendEmbed(msg.ChannelID, b.caseEmbed("unban", targetName, userID, reason, caseNum))
		return
	}

	// kick / ban / timeout / untimeout target a current member.
	if len(args) == 0 {
		b.sendEmbed(msg.ChannelID, b.errorEmbed("Mention a member or give their ID."))
		return
	}
	targetID, ok := parseUserArg(args[0])
	if !ok {
		b.sendEmbed(msg.ChannelID, b.errorEmbed("That doesn't look like a user."))
		return
	}
	target := b.memberForUser(guild.ID, targetID)
	if target == nil || target.User == nil {
		b.sendEmbed(msg.ChannelID, b.errorEmbed("That user is not a member of this server."))
		return
	}
	if !permissions.CanModerate(guild, actor, target) {
		b.sendEmbed(msg.ChannelID, b.errorEmbed("You cannot moderate that member."))
		return
	}
	botMember := b.memberForUser(guild.ID, session.State.User.ID)
	if !permissions.BotOutranks(guild, botMember, target) {
		b.sendEmbed(msg.ChannelID, b.errorEmbed("My highest role is not above that member's."))
		return
	}

	rest := args[1:]

	switch name {
	case "kick":
		reason := strings.Join(rest, " ")
		b.dmUser(targetID, b.dmNoticeEmbed("kick", guild.Name, reason))
		if err := session.GuildMemberDeleteWithReason(guild.ID, targetID, reason); err != nil {
			b.sendEmbed(msg.ChannelID, b.errorEmbed("Kick failed."))
			return
		}
		caseNum := b.modlog.Record(ctx, guild.ID, "kick", msg.Author.ID, targetID, reason)
		b.sendEmbed(msg.ChannelID, b.caseEmbed("kick", target.User.Username, targetID, reason, caseNum))

	case "ban":
		reason := strings.Join(rest, " ")
		b.dmUser(targetID, b.dmNoticeEmbed("ban", guild.Name, reason))
		if err := session.GuildBanCreateWithReason(guild.ID, targetID, reason, 0); err != nil {
			b.sendEmbed(msg.ChannelID, b.errorEmbed("Ban failed."))
			return
		}
		caseNum := b.modlog.Record(ctx, guild.ID, "ban", msg.Author.ID, targetID, reason)
		b.sendEmbed(msg.ChannelID, b.caseEmbed("ban", target.User.Username, targetID, reason, caseNum))

	case "timeout":
		minutes := 10
		if len(rest) > 0 {
			if n, err := strconv.Atoi(rest[0]); err == nil {
				minutes = n
				rest = rest[1:]
			}
		}
		if minutes < 1 {
			minutes = 1
		}
		if minutes > 40320 {
			minutes = 40320
		}
		reason := strings.Join(rest, " ")
		until := time.Now().Add(time.Duration(minutes) * time.Minute)
		if err := session.GuildMemberTimeout(guild.ID, targetID, &until); err != nil {
			b.sendEmbed(msg.ChannelID, b.errorEmbed("Timeout failed."))
			return
		}
		b.dmUser(targetID, b.dmNoticeEmbed("timeout", guild.Name, reason))
		detail := reason
		if detail == "" {
			detail = fmt.Sprintf("%d minutes", minutes)
		}
		caseNum := b.modlog.Record(ctx, guild.ID, "timeout", msg.Author.ID, targetID, detail)
		b.sendEmbed(msg.ChannelID, b.caseEmbed("timeout", target.User.Username, targetID, detail, caseNum))

	case "untimeout":
		reason := strings.Join(rest, " ")
		if err := session.GuildMemberTimeout(guild.ID, targetID, nil); err != nil {
			b.sendEmbed(msg.ChannelID, b.errorEmbed("Could not remove the timeout."))
			return
		}
		caseNum := b.modlog.Record(ctx, guild.ID, "untimeout", msg.Author.ID, targetID, reason)
		b.sendEmbed(msg.ChannelID, b.caseEmbed("untimeout", target.User.Username, targetID, reason, caseNum))
	}
}
