package bot

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Tkodvv/modbot/internal/animals"
	"github.com/Tkodvv/modbot/internal/config"
	"github.com/Tkodvv/modbot/internal/cooldown"
	"github.com/Tkodvv/modbot/internal/modlog"
	"github.com/Tkodvv/modbot/internal/permissions"
	"github.com/Tkodvv/modbot/internal/reports"
	"github.com/Tkodvv/modbot/internal/snipe"
	"github.com/Tkodvv/modbot/internal/storage"
	"github.com/Tkodvv/modbot/internal/trigen"
	"github.com/Tkodvv/modbot/internal/weather"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	cfg     config.Config
	logger  *zap.Logger
	store   *storage.Store
	modlog  *modlog.Logger
	reports *reports.Service
	trigen  *trigen.Client
	weather *weather.Client
	animals *animals.Client
	session *discordgo.Session

	snipes        *snipe.Cache
	altLimiter    *cooldown.Limiter
	animalLimiter *cooldown.Limiter

	startedAt time.Time

	blacklistMu sync.RWMutex
	blacklist   map[string]struct{}
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store, caseLog *modlog.Logger, reportSvc *reports.Service, trigenClient *trigen.Client, weatherClient *weather.Client, animalClient *animals.Client) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	// The state message cache feeds BeforeDelete on message-delete
	// events; without it the snipe cache never sees content.
	session.State.MaxMessageCount = 300

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentGuildModeration |
		discordgo.IntentsMessageContent

	b := &Bot{
		cfg:           cfg,
		logger:        logger,
		store:         store,
		modlog:        caseLog,
		reports:       reportSvc,
		trigen:        trigenClient,
		weather:       weatherClient,
		animals:       animalClient,
		session:       session,
		snipes:        snipe.NewCache(time.Hour),
		altLimiter:    cooldown.New(1, time.Duration(cfg.Cooldowns.AltSeconds)*time.Second),
		animalLimiter: cooldown.New(1, time.Duration(cfg.Cooldowns.AnimalSeconds)*time.Second),
		blacklist:     config.ParseGuildBlacklist(cfg.GuildBlacklist),
	}

	if b.modlog != nil {
		b.modlog.SetNotifier(func(ctx context.Context, entry storage.ModCase) {
			b.notifyCase(ctx, entry)
		})
	}

	return b, nil
}

func (b *Bot) Start() error {
	b.startedAt = time.Now()

	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onGuildCreate)
	b.session.AddHandler(b.onGuildDelete)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onMessageDelete)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return err
	}

	if err := b.registerCommands(); err != nil {
		return err
	}

	return nil
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready",
		zap.String("user", session.State.User.Username),
		zap.Int("guilds", len(event.Guilds)))

	_ = session.UpdateWatchStatus(0, "for rule violations")

	b.sweepBlacklistedGuilds()
}

// sweepBlacklistedGuilds leaves any guild that is on the blacklist.
// Runs at startup and after a blacklist reload.
func (b *Bot) sweepBlacklistedGuilds() {
	if b.session == nil || b.session.State == nil {
		return
	}
	for _, guild := range b.session.State.Guilds {
		if guild == nil {
			continue
		}
		if !b.isBlacklisted(guild.ID) {
			continue
		}
		b.logger.Info("leaving blacklisted guild", zap.String("guild_id", guild.ID))
		_ = b.session.GuildLeave(guild.ID)
	}
}

func (b *Bot) onGuildCreate(session *discordgo.Session, event *discordgo.GuildCreate) {
	if event.Guild == nil || event.Guild.ID == "" {
		return
	}
	if b.isBlacklisted(event.Guild.ID) {
		b.logger.Info("refusing blacklisted guild", zap.String("guild_id", event.Guild.ID))
		_ = session.GuildLeave(event.Guild.ID)
		return
	}
	b.logger.Info("guild available",
		zap.String("guild_id", event.Guild.ID),
		zap.String("name", event.Guild.Name))
}

func (b *Bot) onGuildDelete(session *discordgo.Session, event *discordgo.GuildDelete) {
	_ = session
	if event.Guild == nil {
		return
	}
	b.logger.Info("guild removed", zap.String("guild_id", event.Guild.ID))
}

func (b *Bot) onMessageDelete(session *discordgo.Session, event *discordgo.MessageDelete) {
	_ = session
	if event.BeforeDelete == nil || event.BeforeDelete.Author == nil {
		return
	}
	msg := event.BeforeDelete
	if msg.Author.Bot || msg.Content == "" {
		return
	}

	created := msg.Timestamp
	b.snipes.Put(event.ChannelID, snipe.Message{
		Content:    msg.Content,
		AuthorName: msg.Author.Username,
		AvatarURL:  msg.Author.AvatarURL("256"),
		CreatedAt:  created,
		DeletedAt:  time.Now(),
	})
}

func (b *Bot) isBlacklisted(guildID string) bool {
	b.blacklistMu.RLock()
	defer b.blacklistMu.RUnlock()
	_, ok := b.blacklist[guildID]
	return ok
}

// ReloadBlacklist re-reads GUILD_BLACKLIST from the environment,
// swaps the active set, and leaves any newly blacklisted guilds.
// Returns the new entry count.
func (b *Bot) ReloadBlacklist() int {
	raw := os.Getenv("GUILD_BLACKLIST")
	if raw == "" {
		raw = b.cfg.GuildBlacklist
	}
	parsed := config.ParseGuildBlacklist(raw)

	b.blacklistMu.Lock()
	b.blacklist = parsed
	b.blacklistMu.Unlock()

	b.sweepBlacklistedGuilds()
	return len(parsed)
}

func (b *Bot) guildSettings(ctx context.Context, guildID string) storage.GuildSettings {
	defaults := storage.GuildSettings{
		GuildID:    guildID,
		Prefix:     b.cfg.DefaultPrefix,
		AltEnabled: b.cfg.Trigen.Enabled,
	}
	settings, err := b.store.GetGuildSettings(ctx, guildID, defaults)
	if err != nil {
		b.logger.Warn("guild settings fallback", zap.Error(err))
		return defaults
	}
	return settings
}

// notifyCase posts the case embed to the configured modlog channel.
func (b *Bot) notifyCase(ctx context.Context, entry storage.ModCase) {
	settings := b.guildSettings(ctx, entry.GuildID)
	if settings.ModlogChannel == "" {
		return
	}

	name := entry.TargetID
	if user, err := b.session.User(entry.TargetID); err == nil && user != nil {
		name = user.Username
	}
	embed := b.caseEmbed(entry.Action, name, entry.TargetID, entry.Reason, entry.CaseNumber)
	if _, err := b.session.ChannelMessageSendEmbed(settings.ModlogChannel, embed); err != nil {
		b.logger.Warn("modlog post failed",
			zap.String("guild_id", entry.GuildID),
			zap.Error(err))
	}
}

func (b *Bot) memberForUser(guildID, userID string) *discordgo.Member {
	member, err := b.session.State.Member(guildID, userID)
	if err == nil && member != nil {
		return member
	}
	member, _ = b.session.GuildMember(guildID, userID)
	return member
}

func (b *Bot) guildForID(guildID string) *discordgo.Guild {
	guild, err := b.session.State.Guild(guildID)
	if err == nil && guild != nil {
		return guild
	}
	guild, _ = b.session.Guild(guildID)
	return guild
}

// isModerator reports whether the member passes the per-guild mod-role
// whitelist. A guild with no configured mod roles falls back to Discord
// permissions alone; admins and the owner always pass.
func (b *Bot) isModerator(ctx context.Context, guild *discordgo.Guild, member *discordgo.Member) bool {
	if guild == nil || member == nil || member.User == nil {
		return false
	}
	if member.User.ID == guild.OwnerID {
		return true
	}
	roles, err := b.store.ListModRoles(ctx, guild.ID)
	if err != nil {
		b.logger.Warn("mod role list failed", zap.Error(err))
		return false
	}
	if len(roles) == 0 {
		return true
	}
	if permissions.HasAnyRole(member, roles) {
		return true
	}
	return permissions.IsAdmin(guild, member)
}

func (b *Bot) isOwner(userID string) bool {
	return b.cfg.OwnerID != "" && userID == b.cfg.OwnerID
}

func (b *Bot) respond(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
}

func (b *Bot) respondEmbed(session *discordgo.Session, interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	if embed == nil {
		b.respond(session, interaction, "No response available.", ephemeral)
		return
	}
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  flags,
		},
	})
}

func (b *Bot) respondError(session *discordgo.Session, interaction *discordgo.InteractionCreate, message string) {
	b.respondEmbed(session, interaction, b.errorEmbed(message), true)
}

// dmUser sends a best-effort direct message; failures are ignored
// since many users block DMs from server bots.
func (b *Bot) dmUser(userID string, embed *discordgo.MessageEmbed) {
	if userID == "" || embed == nil {
		return
	}
	channel, err := b.session.UserChannelCreate(userID)
	if err != nil {
		return
	}
	_, _ = b.session.ChannelMessageSendEmbed(channel.ID, embed)
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func interactionUser(interaction *discordgo.InteractionCreate) *discordgo.User {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User
	}
	return interaction.User
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := strings.ToValidUTF8(s[:max-1], "")
	return cut + "…"
}
