package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

func slashCommands() []*discordgo.ApplicationCommand {
	minCount := float64(1)
	maxDelete := float64(7)
	minTimeout := float64(1)
	maxTimeout := float64(40320)
	minClear := float64(1)
	maxClear := float64(100)
	maxCats := float64(5)

	return []*discordgo.ApplicationCommand{
		{
			Name:        "kick",
			Description: "Kick a member from the server",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Member to kick", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "Reason for the kick", Required: false},
			},
		},
		{
			Name:        "ban",
			Description: "Ban a user from the server",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "User to ban", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "Reason for the ban", Required: false},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "delete_days", Description: "Days of messages to delete (0-7)", Required: false, MinValue: new(float64), MaxValue: maxDelete},
			},
		},
		{
			Name:        "unban",
			Description: "Remove a ban by user ID",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "user_id", Description: "ID of the banned user", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "Reason for the unban", Required: false},
			},
		},
		{
			Name:        "timeout",
			Description: "Time a member out",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Member to time out", Required: true},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "minutes", Description: "Duration in minutes (1-40320)", Required: true, MinValue: &minTimeout, MaxValue: maxTimeout},
				{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "Reason for the timeout", Required: false},
			},
		},
		{
			Name:        "untimeout",
			Description: "Remove a member's timeout",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Member to release", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "Reason", Required: false},
			},
		},
		{
			Name:        "clear",
			Description: "Bulk delete recent messages",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "amount", Description: "Messages to delete (1-100)", Required: true, MinValue: &minClear, MaxValue: maxClear},
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Only delete messages from this user", Required: false},
			},
		},
		{
			Name:        "snipe",
			Description: "Show the last deleted message in this channel",
		},
		{
			Name:        "say",
			Description: "Make the bot say something",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "message", Description: "Text to send", Required: true},
			},
		},
		{
			Name:        "announce",
			Description: "Post an announcement embed to a channel",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "Announcement title", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "message", Description: "Announcement body", Required: true},
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Target channel (defaults to here)", Required: false},
				{Type: discordgo.ApplicationCommandOptionString, Name: "image", Description: "Image URL", Required: false},
			},
		},
		{
			Name:        "dm",
			Description: "Send a direct message to a member",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Recipient", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "message", Description: "Message text", Required: true},
			},
		},
		{
			Name:        "setprefix",
			Description: "Change the text-command prefix for this server",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "prefix", Description: "New prefix (max 5 characters)", Required: true},
			},
		},
		{
			Name:        "modlog",
			Description: "Set or clear the moderation log channel",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "Channel for case logs (omit to clear)", Required: false},
			},
		},
		{
			Name:        "modrole",
			Description: "Manage the moderator role whitelist",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "add", Description: "Allow a role to use moderation commands",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role to allow", Required: true},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "remove", Description: "Remove a role from the whitelist",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role to remove", Required: true},
					},
				},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "list", Description: "List whitelisted moderator roles"},
			},
		},
		{
			Name:        "altwl",
			Description: "Manage access to the alt generator",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "adduser", Description: "Allow a user",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "User to allow", Required: true},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "removeuser", Description: "Remove a user",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "User to remove", Required: true},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "addrole", Description: "Allow a role",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role to allow", Required: true},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "removerole", Description: "Remove a role",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role to remove", Required: true},
					},
				},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "list", Description: "List whitelisted users and roles"},
			},
		},
		{
			Name:        "alt",
			Description: "Generate a fresh alt account",
		},
		{
			Name:        "modstats",
			Description: "Moderation action summary",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionString, Name: "period", Description: "day or week", Required: true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "day", Value: "day"},
						{Name: "week", Value: "week"},
					},
				},
			},
		},
		{
			Name:        "forceleave",
			Description: "Make the bot leave a server (owner only)",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "guild_id", Description: "Guild ID to leave (defaults to this one)", Required: false},
			},
		},
		{
			Name:        "blacklistreload",
			Description: "Reload the guild blacklist (owner only)",
		},
		{Name: "ping", Description: "Show gateway latency"},
		{Name: "uptime", Description: "Show how long the bot has been running"},
		{
			Name:        "userinfo",
			Description: "Show details about a user",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "User to inspect (defaults to you)", Required: false},
			},
		},
		{Name: "serverinfo", Description: "Show details about this server"},
		{
			Name:        "roleinfo",
			Description: "Show details about a role",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role to inspect", Required: true},
			},
		},
		{
			Name:        "avatar",
			Description: "Show a user's avatar",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "User (defaults to you)", Required: false},
			},
		},
		{
			Name:        "weather",
			Description: "Current weather for a city or zip",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "location", Description: "City name or zip code", Required: true},
			},
		},
		{
			Name:        "cat",
			Description: "Random cat pictures",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "count", Description: "How many (1-5)", Required: false, MinValue: &minCount, MaxValue: maxCats},
			},
		},
		{Name: "dog", Description: "Random dog picture"},
		{Name: "invite", Description: "Get the bot's invite link"},
		{
			Name:        "embed",
			Description: "Build a custom embed",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "Embed title", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "description", Description: "Embed body", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "color", Description: "Color name or hex (e.g. crimson, #ff0040)", Required: false},
				{Type: discordgo.ApplicationCommandOptionString, Name: "image", Description: "Image URL", Required: false},
			},
		},
		{
			Name:        "poll",
			Description: "Start a reaction poll",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "question", Description: "Poll question", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "option1", Description: "First choice", Required: false},
				{Type: discordgo.ApplicationCommandOptionString, Name: "option2", Description: "Second choice", Required: false},
				{Type: discordgo.ApplicationCommandOptionString, Name: "option3", Description: "Third choice", Required: false},
				{Type: discordgo.ApplicationCommandOptionString, Name: "option4", Description: "Fourth choice", Required: false},
			},
		},
		{Name: "roles", Description: "List this server's roles"},
		{Name: "emojis", Description: "List this server's custom emojis"},
		{
			Name:        "8ball",
			Description: "Ask the magic 8-ball",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "question", Description: "Your question", Required: true},
			},
		},
		{Name: "coinflip", Description: "Flip a coin"},
		{
			Name:        "roll",
			Description: "Roll dice",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "dice", Description: "Dice spec like 2d6 (default 1d6)", Required: false},
			},
		},
	}
}

func (b *Bot) registerCommands() error {
	commands := slashCommands()

	appID := b.session.State.User.ID
	existing, err := b.session.ApplicationCommands(appID, "")
	if err != nil {
		for _, cmd := range commands {
			if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
				return err
			}
		}
		return nil
	}

	existingByName := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range existing {
		existingByName[cmd.Name] = cmd
	}

	desired := make(map[string]struct{})
	for _, cmd := range commands {
		desired[cmd.Name] = struct{}{}
		if current, ok := existingByName[cmd.Name]; ok {
			if _, err := b.session.ApplicationCommandEdit(appID, "", current.ID, cmd); err != nil {
				return err
			}
			continue
		}
		if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
			return err
		}
	}

	for _, cmd := range existing {
		if _, ok := desired[cmd.Name]; ok {
			continue
		}
		_ = b.session.ApplicationCommandDelete(appID, "", cmd.ID)
	}

	return nil
}

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if interaction.GuildID != "" && b.isBlacklisted(interaction.GuildID) {
		return
	}

	ctx := context.Background()
	data := interaction.ApplicationCommandData()

	switch data.Name {
	case "kick", "ban", "unban", "timeout", "untimeout", "clear":
		b.handleModerationCommand(ctx, session, interaction, data.Name, data.Options)
	case "snipe":
		b.handleSnipe(session, interaction)
	case "say", "announce", "dm", "setprefix", "modlog", "modrole", "altwl", "modstats":
		b.handleAdminCommand(ctx, session, interaction, data.Name, data.Options)
	case "forceleave", "blacklistreload":
		b.handleOwnerCommand(ctx, session, interaction, data.Name, data.Options)
	case "alt":
		b.handleAlt(ctx, session, interaction)
	default:
		b.handleUtilityCommand(ctx, session, interaction, data.Name, data.Options)
	}
}
