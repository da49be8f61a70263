package permissions

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func testGuild() *discordgo.Guild {
	return &discordgo.Guild{
		ID:      "g1",
		OwnerID: "owner",
		Roles: []*discordgo.Role{
			{ID: "g1", Position: 0, Permissions: 0},
			{ID: "mod", Position: 5, Permissions: discordgo.PermissionKickMembers},
			{ID: "admin", Position: 8, Permissions: discordgo.PermissionAdministrator},
			{ID: "member", Position: 1, Permissions: 0},
		},
	}
}

func member(id string, roles ...string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: id}, Roles: roles}
}

func TestCanModerateHierarchy(t *testing.T) {
	guild := testGuild()
	mod := member("m1", "mod")
	target := member("t1", "member")

	if !CanModerate(guild, mod, target) {
		t.Fatalf("mod should outrank member")
	}
	if CanModerate(guild, target, mod) {
		t.Fatalf("member must not moderate mod")
	}
	if CanModerate(guild, mod, mod) {
		t.Fatalf("self moderation must be rejected")
	}
}

func TestCanModerateOwnerRules(t *testing.T) {
	guild := testGuild()
	owner := member("owner")
	admin := member("a1", "admin")

	if CanModerate(guild, admin, owner) {
		t.Fatalf("nobody moderates the owner")
	}
	if !CanModerate(guild, owner, admin) {
		t.Fatalf("owner moderates anyone")
	}
}

func TestCanModerateEqualRoles(t *testing.T) {
	guild := testGuild()
	a := member("a", "mod")
	b := member("b", "mod")
	if CanModerate(guild, a, b) {
		t.Fatalf("equal top roles must not moderate each other")
	}
}

func TestCanExecute(t *testing.T) {
	guild := testGuild()
	mod := member("m1", "mod")
	plain := member("p1", "member")
	admin := member("a1", "admin")

	if !CanExecute(guild, mod, "kick") {
		t.Fatalf("kick permission expected")
	}
	if CanExecute(guild, mod, "ban") {
		t.Fatalf("mod role has no ban permission")
	}
	if !CanExecute(guild, admin, "ban") {
		t.Fatalf("administrator bypasses the map")
	}
	if CanExecute(guild, plain, "say") {
		t.Fatalf("say requires manage messages")
	}
	if !CanExecute(guild, plain, "ping") {
		t.Fatalf("unmapped commands are open")
	}
}

func TestBotOutranks(t *testing.T) {
	guild := testGuild()
	bot := member("bot", "admin")
	target := member("t1", "member")
	owner := member("owner")

	if !BotOutranks(guild, bot, target) {
		t.Fatalf("bot should outrank member")
	}
	if BotOutranks(guild, bot, owner) {
		t.Fatalf("bot never acts on the owner")
	}
	if BotOutranks(guild, target, bot) {
		t.Fatalf("lower role must not outrank")
	}
}

func TestHasAnyRole(t *testing.T) {
	m := member("u1", "r1", "r2")
	if !HasAnyRole(m, []string{"r2", "r9"}) {
		t.Fatalf("expected role match")
	}
	if HasAnyRole(m, []string{"r9"}) {
		t.Fatalf("unexpected role match")
	}
	if HasAnyRole(m, nil) {
		t.Fatalf("empty whitelist matches nothing")
	}
}
