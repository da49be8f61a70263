// Package permissions holds the pure permission logic: role hierarchy,
// per-command discord permission requirements, and the whitelist gates.
// Everything here works on snapshot data so it can be tested without a
// live session.
package permissions

import "github.com/bwmarrin/discordgo"

// CommandPermission maps a command name to the discord permission bit an
// invoker must carry. Commands absent from the map have no permission
// requirement of their own.
var commandPermission = map[string]int64{
	"kick":      discordgo.PermissionKickMembers,
	"ban":       discordgo.PermissionBanMembers,
	"unban":     discordgo.PermissionBanMembers,
	"timeout":   discordgo.PermissionModerateMembers,
	"untimeout": discordgo.PermissionModerateMembers,
	"clear":     discordgo.PermissionManageMessages,
	"say":       discordgo.PermissionManageMessages,
	"announce":  discordgo.PermissionManageMessages,
	"dm":        discordgo.PermissionManageMessages,
	"setprefix": discordgo.PermissionAdministrator,
	"modlog":    discordgo.PermissionManageServer,
	"modrole":   discordgo.PermissionManageServer,
	"altwl":     discordgo.PermissionManageServer,
}

// MemberPermissions folds the guild's role permissions into a single bitmask
// for the member, starting from the @everyone role.
func MemberPermissions(guild *discordgo.Guild, member *discordgo.Member) int64 {
	if guild == nil || member == nil {
		return 0
	}
	var perms int64
	for _, role := range guild.Roles {
		if role.ID == guild.ID {
			perms |= role.Permissions
			break
		}
	}
	roleMap := make(map[string]*discordgo.Role, len(guild.Roles))
	for _, role := range guild.Roles {
		roleMap[role.ID] = role
	}
	for _, roleID := range member.Roles {
		if role := roleMap[roleID]; role != nil {
			perms |= role.Permissions
		}
	}
	if member.User != nil && member.User.ID == guild.OwnerID {
		perms |= discordgo.PermissionAdministrator
	}
	return perms
}

func HasPermission(guild *discordgo.Guild, member *discordgo.Member, permission int64) bool {
	perms := MemberPermissions(guild, member)
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return perms&permission != 0
}

func IsAdmin(guild *discordgo.Guild, member *discordgo.Member) bool {
	return MemberPermissions(guild, member)&discordgo.PermissionAdministrator != 0
}

// CanExecute reports whether the member carries the discord permission the
// named command requires. Unknown commands are allowed.
func CanExecute(guild *discordgo.Guild, member *discordgo.Member, command string) bool {
	required, ok := commandPermission[command]
	if !ok {
		return true
	}
	return HasPermission(guild, member, required)
}

// TopRolePosition returns the highest role position the member holds. The
// @everyone role sits at position 0.
func TopRolePosition(guild *discordgo.Guild, member *discordgo.Member) int {
	if guild == nil || member == nil {
		return 0
	}
	roleMap := make(map[string]*discordgo.Role, len(guild.Roles))
	for _, role := range guild.Roles {
		roleMap[role.ID] = role
	}
	top := 0
	for _, roleID := range member.Roles {
		if role := roleMap[roleID]; role != nil && role.Position > top {
			top = role.Position
		}
	}
	return top
}

// CanModerate checks whether the moderator may act on the target: never on
// self, never on the guild owner, owner may act on anyone, otherwise the
// moderator needs a moderation permission and a higher top role.
func CanModerate(guild *discordgo.Guild, moderator, target *discordgo.Member) bool {
	if guild == nil || moderator == nil || target == nil || moderator.User == nil || target.User == nil {
		return false
	}
	if moderator.User.ID == target.User.ID {
		return false
	}
	if target.User.ID == guild.OwnerID {
		return false
	}
	if moderator.User.ID == guild.OwnerID {
		return true
	}

	perms := MemberPermissions(guild, moderator)
	hasModPerm := perms&discordgo.PermissionAdministrator != 0 ||
		perms&discordgo.PermissionKickMembers != 0 ||
		perms&discordgo.PermissionBanMembers != 0 ||
		perms&discordgo.PermissionModerateMembers != 0
	if !hasModPerm {
		return false
	}

	return TopRolePosition(guild, moderator) > TopRolePosition(guild, target)
}

// BotOutranks checks the role hierarchy between the bot member and the
// target; the bot cannot act on the guild owner at all.
func BotOutranks(guild *discordgo.Guild, botMember, target *discordgo.Member) bool {
	if guild == nil || botMember == nil || target == nil || target.User == nil {
		return false
	}
	if target.User.ID == guild.OwnerID {
		return false
	}
	return TopRolePosition(guild, botMember) > TopRolePosition(guild, target)
}

// HasAnyRole reports whether the member holds at least one of the given
// role IDs.
func HasAnyRole(member *discordgo.Member, roleIDs []string) bool {
	if member == nil || len(roleIDs) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		set[id] = struct{}{}
	}
	for _, roleID := range member.Roles {
		if _, ok := set[roleID]; ok {
			return true
		}
	}
	return false
}
