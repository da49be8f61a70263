package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/Tkodvv/modbot/internal/animals"
	"github.com/Tkodvv/modbot/internal/utils"
	"github.com/Tkodvv/modbot/internal/weather"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

var eightBallAnswers = []string{
	"It is certain.",
	"Without a doubt.",
	"Yes, definitely.",
	"Most likely.",
	"Signs point to yes.",
	"Reply hazy, try again.",
	"Ask again later.",
	"Better not tell you now.",
	"Don't count on it.",
	"My reply is no.",
	"Outlook not so good.",
	"Very doubtful.",
}

func (b *Bot) handleUtilityCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, name string, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := optionMap(options)

	switch name {
	case "ping":
		latency := session.HeartbeatLatency().Round(time.Millisecond)
		b.respondEmbed(session, interaction, b.infoEmbed("Pong", fmt.Sprintf("Gateway latency: **%s**", latency)), false)

	case "uptime":
		up := time.Since(b.startedAt).Round(time.Second)
		b.respondEmbed(session, interaction, b.infoEmbed("Uptime", fmt.Sprintf("Online for **%s**.", formatDuration(up))), false)

	case "userinfo":
		b.handleUserInfo(session, interaction, opts)

	case "serverinfo":
		b.handleServerInfo(session, interaction)

	case "roleinfo":
		b.handleRoleInfo(session, interaction, opts)

	case "avatar":
		user := interactionUser(interaction)
		if opt, ok := opts["user"]; ok {
			user = opt.UserValue(session)
		}
		if user == nil {
			b.respondError(session, interaction, "Could not resolve the user.")
			return
		}
		embed := &discordgo.MessageEmbed{
			Title: user.Username,
			Color: b.cfg.EmbedColors.Info,
			Image: &discordgo.MessageEmbedImage{URL: user.AvatarURL("1024")},
		}
		b.respondEmbed(session, interaction, embed, false)

	case "weather":
		b.handleWeather(ctx, session, interaction, opts["location"].StringValue())

	case "cat":
		count := 1
		if opt, ok := opts["count"]; ok {
			count = int(opt.IntValue())
		}
		b.handleCat(ctx, session, interaction, count)

	case "dog":
		b.handleDog(ctx, session, interaction)

	case "invite":
		b.handleInvite(session, interaction)

	case "embed":
		b.handleEmbed(session, interaction, opts)

	case "poll":
		b.handlePoll(session, interaction, opts)

	case "roles":
		b.handleRoles(session, interaction)

	case "emojis":
		b.handleEmojis(session, interaction)

	case "8ball":
		question := truncate(opts["question"].StringValue(), 256)
		answer := eightBallAnswers[rand.Intn(len(eightBallAnswers))]
		embed := b.infoEmbed("Magic 8-ball", fmt.Sprintf("**Q:** %s\n**A:** %s", question, answer))
		b.respondEmbed(session, interaction, embed, false)

	case "coinflip":
		result := "Heads"
		if rand.Intn(2) == 1 {
			result = "Tails"
		}
		b.respondEmbed(session, interaction, b.infoEmbed("Coin flip", "**"+result+"**"), false)

	case "roll":
		spec := "1d6"
		if opt, ok := opts["dice"]; ok && opt.StringValue() != "" {
			spec = opt.StringValue()
		}
		total, rolls, err := rollDice(spec)
		if err != nil {
			b.respondError(session, interaction, "Use a spec like `2d6` (up to 20 dice, up to 1000 sides).")
			return
		}
		desc := fmt.Sprintf("`%s` → **%d**", spec, total)
		if len(rolls) > 1 {
			parts := make([]string, len(rolls))
			for i, r := range rolls {
				parts[i] = strconv.Itoa(r)
			}
			desc += " (" + strings.Join(parts, ", ") + ")"
		}
		b.respondEmbed(session, interaction, b.infoEmbed("Dice roll", desc), false)

	default:
		b.respondError(session, interaction, "Unknown command.")
	}
}

func (b *Bot) handleUserInfo(session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	user := interactionUser(interaction)
	if opt, ok := opts["user"]; ok {
		user = opt.UserValue(session)
	}
	if user == nil {
		b.respondError(session, interaction, "Could not resolve the user.")
		return
	}

	created, _ := discordgo.SnowflakeTimestamp(user.ID)
	fields := []*discordgo.MessageEmbedField{
		{Name: "ID", Value: user.ID, Inline: true},
		{Name: "Created", Value: created.Format("2006-01-02"), Inline: true},
	}
	if interaction.GuildID != "" {
		if member := b.memberForUser(interaction.GuildID, user.ID); member != nil {
			if !member.JoinedAt.IsZero() {
				fields = append(fields, &discordgo.MessageEmbedField{
					Name: "Joined", Value: member.JoinedAt.Format("2006-01-02"), Inline: true,
				})
			}
			fields = append(fields, &discordgo.MessageEmbedField{
				Name: "Roles", Value: strconv.Itoa(len(member.Roles)), Inline: true,
			})
		}
	}

	embed := &discordgo.MessageEmbed{
		Title:     user.Username,
		Color:     b.cfg.EmbedColors.Info,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("256")},
		Fields:    fields,
	}
	b.respondEmbed(session, interaction, embed, false)
}

func (b *Bot) handleServerInfo(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.GuildID == "" {
		b.respondError(session, interaction, "This command only works in a server.")
		return
	}
	guild := b.guildForID(interaction.GuildID)
	if guild == nil {
		b.respondError(session, interaction, "Could not load this server.")
		return
	}

	created, _ := discordgo.SnowflakeTimestamp(guild.ID)
	embed := &discordgo.MessageEmbed{
		Title: guild.Name,
		Color: b.cfg.EmbedColors.Info,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "ID", Value: guild.ID, Inline: true},
			{Name: "Owner", Value: "<@" + guild.OwnerID + ">", Inline: true},
			{Name: "Members", Value: strconv.Itoa(guild.MemberCount), Inline: true},
			{Name: "Roles", Value: strconv.Itoa(len(guild.Roles)), Inline: true},
			{Name: "Channels", Value: strconv.Itoa(len(guild.Channels)), Inline: true},
			{Name: "Created", Value: created.Format("2006-01-02"), Inline: true},
		},
	}
	if guild.Icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: guild.IconURL("256")}
	}
	b.respondEmbed(session, interaction, embed, false)
}

func (b *Bot) handleRoleInfo(session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	if interaction.GuildID == "" {
		b.respondError(session, interaction, "This command only works in a server.")
		return
	}
	role := opts["role"].RoleValue(session, interaction.GuildID)
	if role == nil {
		b.respondError(session, interaction, "Could not resolve the role.")
		return
	}

	color := role.Color
	if color == 0 {
		color = b.cfg.EmbedColors.Info
	}
	embed := &discordgo.MessageEmbed{
		Title: role.Name,
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "ID", Value: role.ID, Inline: true},
			{Name: "Position", Value: strconv.Itoa(role.Position), Inline: true},
			{Name: "Color", Value: fmt.Sprintf("#%06x", role.Color), Inline: true},
			{Name: "Mentionable", Value: strconv.FormatBool(role.Mentionable), Inline: true},
			{Name: "Hoisted", Value: strconv.FormatBool(role.Hoist), Inline: true},
		},
	}
	b.respondEmbed(session, interaction, embed, false)
}

func (b *Bot) handleWeather(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, location string) {
	if !b.weather.Enabled() {
		b.respondError(session, interaction, "Weather lookups are not configured.")
		return
	}

	report, err := b.weather.Current(ctx, location)
	if errors.Is(err, weather.ErrNotFound) {
		b.respondError(session, interaction, "I couldn't find that location.")
		return
	}
	if err != nil {
		b.logger.Warn("weather lookup failed", zap.Error(err))
		b.respondError(session, interaction, "Weather lookup failed, try again later.")
		return
	}

	title := report.Location
	if report.Country != "" {
		title += ", " + report.Country
	}
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: capitalize(report.Description),
		Color:       b.cfg.EmbedColors.Info,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Temperature", Value: fmt.Sprintf("%.1f°C", report.Temp), Inline: true},
			{Name: "Feels like", Value: fmt.Sprintf("%.1f°C", report.FeelsLike), Inline: true},
			{Name: "Humidity", Value: fmt.Sprintf("%d%%", report.Humidity), Inline: true},
			{Name: "Wind", Value: fmt.Sprintf("%.1f m/s", report.WindSpeed), Inline: true},
		},
	}
	b.respondEmbed(session, interaction, embed, false)
}

// animalKey scopes the image-fetch cooldown to the invoking user.
func animalKey(interaction *discordgo.InteractionCreate) string {
	if user := interactionUser(interaction); user != nil {
		return user.ID
	}
	return interaction.ChannelID
}

func (b *Bot) handleCat(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, count int) {
	if ok, retry := b.animalLimiter.Allow(animalKey(interaction)); !ok {
		b.respondError(session, interaction, fmt.Sprintf("Slow down, try again in %s.", retry.Round(time.Second)))
		return
	}

	urls, err := b.animals.Cats(ctx, count)
	if errors.Is(err, animals.ErrNoImage) {
		b.respondError(session, interaction, "The cat API came back empty.")
		return
	}
	if err != nil {
		b.logger.Warn("cat fetch failed", zap.Error(err))
		b.respondError(session, interaction, "Could not fetch cats right now.")
		return
	}

	embeds := make([]*discordgo.MessageEmbed, 0, len(urls))
	for _, url := range urls {
		embeds = append(embeds, &discordgo.MessageEmbed{
			Color: b.cfg.EmbedColors.Info,
			Image: &discordgo.MessageEmbedImage{URL: url},
		})
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: embeds},
	})
}

func (b *Bot) handleDog(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if ok, retry := b.animalLimiter.Allow(animalKey(interaction)); !ok {
		b.respondError(session, interaction, fmt.Sprintf("Slow down, try again in %s.", retry.Round(time.Second)))
		return
	}

	url, err := b.animals.Dog(ctx)
	if err != nil {
		b.logger.Warn("dog fetch failed", zap.Error(err))
		b.respondError(session, interaction, "Could not fetch a dog right now.")
		return
	}
	embed := &discordgo.MessageEmbed{
		Color: b.cfg.EmbedColors.Info,
		Image: &discordgo.MessageEmbedImage{URL: url},
	}
	b.respondEmbed(session, interaction, embed, false)
}

// inviteURL builds the OAuth2 authorization link for adding the bot.
func (b *Bot) inviteURL() string {
	conf := &oauth2.Config{
		ClientID: b.session.State.User.ID,
		Endpoint: oauth2.Endpoint{
			AuthURL: "https://discord.com/oauth2/authorize",
		},
		Scopes: []string{"bot", "applications.commands"},
	}
	return conf.AuthCodeURL("",
		oauth2.SetAuthURLParam("permissions", strconv.FormatInt(
			discordgo.PermissionKickMembers|
				discordgo.PermissionBanMembers|
				discordgo.PermissionModerateMembers|
				discordgo.PermissionManageMessages|
				discordgo.PermissionSendMessages|
				discordgo.PermissionEmbedLinks|
				discordgo.PermissionReadMessageHistory, 10)))
}

func (b *Bot) handleInvite(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	b.respondEmbed(session, interaction, b.infoEmbed("Invite me", "[Click here]("+b.inviteURL()+") to add me to your server."), true)
}

func (b *Bot) handleEmbed(session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	embed := &discordgo.MessageEmbed{
		Title:       truncate(opts["title"].StringValue(), 256),
		Description: truncate(opts["description"].StringValue(), 4096),
		Color:       b.cfg.EmbedColors.Info,
	}

	if opt, ok := opts["color"]; ok {
		color, valid := parseColor(opt.StringValue())
		if !valid {
			b.respondError(session, interaction, "Unknown color. Use a name like `crimson` or hex like `#ff0040`.")
			return
		}
		embed.Color = color
	}

	if opt, ok := opts["image"]; ok {
		url, err := utils.NormalizeImageURL(opt.StringValue())
		if err != nil {
			b.respondError(session, interaction, "That image URL doesn't look valid.")
			return
		}
		embed.Image = &discordgo.MessageEmbedImage{URL: url}
	}

	b.respondEmbed(session, interaction, embed, false)
}

var pollNumbers = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣"}

func (b *Bot) handlePoll(session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	question := opts["question"].StringValue()

	var choices []string
	for _, key := range []string{"option1", "option2", "option3", "option4"} {
		if opt, ok := opts[key]; ok && opt.StringValue() != "" {
			choices = append(choices, opt.StringValue())
		}
	}

	desc := truncate(question, 1024)
	for i, choice := range choices {
		desc += fmt.Sprintf("\n%s %s", pollNumbers[i], truncate(choice, 200))
	}
	embed := &discordgo.MessageEmbed{
		Title:       "📊 Poll",
		Description: desc,
		Color:       b.cfg.EmbedColors.Info,
	}
	b.respondEmbed(session, interaction, embed, false)

	// Reactions need the message ID, which the interaction response
	// does not return directly.
	msg, err := session.InteractionResponse(interaction.Interaction)
	if err != nil || msg == nil {
		return
	}
	if len(choices) == 0 {
		_ = session.MessageReactionAdd(msg.ChannelID, msg.ID, "👍")
		_ = session.MessageReactionAdd(msg.ChannelID, msg.ID, "👎")
		return
	}
	for i := range choices {
		_ = session.MessageReactionAdd(msg.ChannelID, msg.ID, pollNumbers[i])
	}
}

func (b *Bot) handleRoles(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.GuildID == "" {
		b.respondError(session, interaction, "This command only works in a server.")
		return
	}
	guild := b.guildForID(interaction.GuildID)
	if guild == nil {
		b.respondError(session, interaction, "Could not load this server.")
		return
	}

	names := make([]string, 0, len(guild.Roles))
	for _, role := range guild.Roles {
		if role.ID == guild.ID {
			continue
		}
		names = append(names, role.Name)
	}
	if len(names) == 0 {
		b.respondEmbed(session, interaction, b.infoEmbed("Roles", "No roles beyond @everyone."), true)
		return
	}
	b.respondEmbed(session, interaction, b.infoEmbed(
		fmt.Sprintf("Roles (%d)", len(names)),
		truncate(strings.Join(names, ", "), 4096)), true)
}

func (b *Bot) handleEmojis(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.GuildID == "" {
		b.respondError(session, interaction, "This command only works in a server.")
		return
	}
	guild := b.guildForID(interaction.GuildID)
	if guild == nil {
		b.respondError(session, interaction, "Could not load this server.")
		return
	}
	if len(guild.Emojis) == 0 {
		b.respondEmbed(session, interaction, b.infoEmbed("Emojis", "This server has no custom emojis."), true)
		return
	}

	parts := make([]string, 0, len(guild.Emojis))
	for _, emoji := range guild.Emojis {
		parts = append(parts, emoji.MessageFormat())
	}
	b.respondEmbed(session, interaction, b.infoEmbed(
		fmt.Sprintf("Emojis (%d)", len(parts)),
		truncate(strings.Join(parts, " "), 4096)), false)
}

// rollDice parses an NdM spec and rolls. N defaults to 1; a bare
// number is treated as the side count.
func rollDice(spec string) (int, []int, error) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	if spec != "" && !strings.Contains(spec, "d") {
		spec = "1d" + spec
	}
	parts := strings.SplitN(spec, "d", 2)
	if len(parts) != 2 {
		return 0, nil, fmt.Errorf("bad dice spec %q", spec)
	}

	count := 1
	if parts[0] != "" {
		n, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, nil, fmt.Errorf("bad dice count %q", parts[0])
		}
		count = n
	}
	sides, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, nil, fmt.Errorf("bad dice sides %q", parts[1])
	}
	if count < 1 || count > 20 || sides < 2 || sides > 1000 {
		return 0, nil, fmt.Errorf("dice spec out of range %q", spec)
	}

	rolls := make([]int, count)
	total := 0
	for i := range rolls {
		rolls[i] = rand.Intn(sides) + 1
		total += rolls[i]
	}
	return total, rolls, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
