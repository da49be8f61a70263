package bot

import (
	"testing"
	"time"

	"github.com/Tkodvv/modbot/internal/config"
	"github.com/Tkodvv/modbot/internal/trigen"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func testBot(t *testing.T) *Bot {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DiscordToken = "token"
	b, err := New(cfg, zap.NewNop(), nil, nil, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestNewConfiguresSession(t *testing.T) {
	b := testBot(t)

	if b.session.Identify.Intents&discordgo.IntentGuildModeration == 0 {
		t.Fatal("guild moderation intent not requested")
	}
	if b.session.Identify.Intents&discordgo.IntentsMessageContent == 0 {
		t.Fatal("message content intent not requested")
	}
	if b.session.State.MaxMessageCount == 0 {
		t.Fatal("state message cache disabled; deleted messages would never be sniped")
	}
}

func TestDeletedMessageReachesSnipeCache(t *testing.T) {
	b := testBot(t)

	if err := b.session.State.GuildAdd(&discordgo.Guild{ID: "g1"}); err != nil {
		t.Fatalf("guild add: %v", err)
	}
	if err := b.session.State.ChannelAdd(&discordgo.Channel{ID: "c1", GuildID: "g1", Type: discordgo.ChannelTypeGuildText}); err != nil {
		t.Fatalf("channel add: %v", err)
	}

	msg := &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   "oops",
		Author:    &discordgo.User{ID: "u1", Username: "sam"},
		Timestamp: time.Now(),
	}
	if err := b.session.State.OnInterface(b.session, &discordgo.MessageCreate{Message: msg}); err != nil {
		t.Fatalf("message create: %v", err)
	}

	evt := &discordgo.MessageDelete{Message: &discordgo.Message{ID: "m1", ChannelID: "c1"}}
	_ = b.session.State.OnInterface(b.session, evt)
	if evt.BeforeDelete == nil {
		t.Fatal("state did not capture the deleted message")
	}
	b.onMessageDelete(b.session, evt)

	got, ok := b.snipes.Get("c1")
	if !ok || got.Content != "oops" || got.AuthorName != "sam" {
		t.Fatalf("snipe cache miss: ok=%t got=%+v", ok, got)
	}
}

func TestPrefixCommandSurface(t *testing.T) {
	for _, name := range []string{"alt", "kick", "ban", "timeout", "clear", "snipe"} {
		if _, ok := prefixCommands[name]; !ok {
			t.Errorf("%q missing from the prefix command set", name)
		}
	}
	if _, ok := prefixCommands["forceleave"]; ok {
		t.Error("owner commands must not be reachable by prefix")
	}
}

func TestSplitClearTargets(t *testing.T) {
	now := time.Now()
	cutoff := now.Add(-14 * 24 * time.Hour)
	messages := []*discordgo.Message{
		{ID: "new1", Author: &discordgo.User{ID: "a"}, Timestamp: now},
		{ID: "old1", Author: &discordgo.User{ID: "a"}, Timestamp: now.Add(-15 * 24 * time.Hour)},
		{ID: "new2", Author: &discordgo.User{ID: "b"}, Timestamp: now},
		{ID: "new3", Author: &discordgo.User{ID: "a"}, Timestamp: now},
	}

	bulk, old := splitClearTargets(messages, cutoff, "", 10)
	if len(bulk) != 3 || len(old) != 1 || old[0] != "old1" {
		t.Fatalf("unfiltered split wrong: bulk=%v old=%v", bulk, old)
	}

	bulk, old = splitClearTargets(messages, cutoff, "a", 10)
	if len(bulk) != 2 || len(old) != 1 {
		t.Fatalf("filtered split wrong: bulk=%v old=%v", bulk, old)
	}

	bulk, old = splitClearTargets(messages, cutoff, "", 2)
	if len(bulk)+len(old) != 2 {
		t.Fatalf("amount cap ignored: bulk=%v old=%v", bulk, old)
	}
}

func TestAnimalKeyPerUser(t *testing.T) {
	fromGuild := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ChannelID: "c1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "u1"}},
	}}
	if got := animalKey(fromGuild); got != "u1" {
		t.Fatalf("expected user-scoped key, got %q", got)
	}

	other := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ChannelID: "c1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "u2"}},
	}}
	if animalKey(fromGuild) == animalKey(other) {
		t.Fatal("two users in one channel must not share a cooldown key")
	}

	bare := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{ChannelID: "c1"}}
	if got := animalKey(bare); got != "c1" {
		t.Fatalf("expected channel fallback, got %q", got)
	}
}

func TestAltEmbed(t *testing.T) {
	b := testBot(t)
	embed := b.altEmbed(trigen.Account{
		Username:    "fresh_user",
		DisplayName: "Fresh",
		Bio:         "hello",
		AvatarURL:   "https://cdn.example.com/a.png",
		Note:        "one-time",
		ExpiresAt:   "2026-09-01",
	})

	if embed.Title != "Fresh alt" {
		t.Fatalf("unexpected title %q", embed.Title)
	}
	if len(embed.Fields) != 5 {
		t.Fatalf("expected 5 fields, got %d", len(embed.Fields))
	}
	if embed.Thumbnail == nil || embed.Thumbnail.URL == "" {
		t.Fatal("avatar thumbnail missing")
	}
}

func TestParsePrefixCommand(t *testing.T) {
	name, args, ok := parsePrefixCommand("!kick <@123> spamming links", "!")
	if !ok {
		t.Fatal("expected a parsed command")
	}
	if name != "kick" {
		t.Fatalf("unexpected name %q", name)
	}
	if len(args) != 3 || args[0] != "<@123>" {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestParsePrefixCommandMultiCharPrefix(t *testing.T) {
	name, _, ok := parsePrefixCommand("..Ping", "..")
	if !ok || name != "ping" {
		t.Fatalf("expected ping, got %q ok=%v", name, ok)
	}
}

func TestParsePrefixCommandRejects(t *testing.T) {
	cases := []struct {
		content, prefix string
	}{
		{"hello there", "!"},
		{"!", "!"},
		{"!   ", "!"},
		{"kick someone", ""},
	}
	for _, tc := range cases {
		if _, _, ok := parsePrefixCommand(tc.content, tc.prefix); ok {
			t.Errorf("expected rejection for %q with prefix %q", tc.content, tc.prefix)
		}
	}
}

func TestParseUserArg(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"<@123456789>", "123456789", true},
		{"<@!123456789>", "123456789", true},
		{"123456789", "123456789", true},
		{"@someone", "", false},
		{"<@abc>", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := parseUserArg(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("parseUserArg(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"crimson", 0xdc143c, true},
		{"Crimson", 0xdc143c, true},
		{"#ff0040", 0xff0040, true},
		{"0xFF0040", 0xff0040, true},
		{"ff0040", 0xff0040, true},
		{"notacolor", 0, false},
		{"#ff", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseColor(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("parseColor(%q) = %#x, %v; want %#x, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRollDice(t *testing.T) {
	for i := 0; i < 50; i++ {
		total, rolls, err := rollDice("2d6")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rolls) != 2 {
			t.Fatalf("expected 2 rolls, got %d", len(rolls))
		}
		if total < 2 || total > 12 {
			t.Fatalf("total %d out of range", total)
		}
	}

	if _, _, err := rollDice("d20"); err != nil {
		t.Fatalf("count should default to 1: %v", err)
	}
	if total, _, err := rollDice("20"); err != nil || total < 1 || total > 20 {
		t.Fatalf("bare side count should roll 1d20: total=%d err=%v", total, err)
	}

	for _, bad := range []string{"", "2x6", "0d6", "21d6", "2d1", "2d1001", "d"} {
		if _, _, err := rollDice(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestActionPhrase(t *testing.T) {
	cases := map[string]string{
		"kick":      "kicked",
		"ban":       "banned",
		"unban":     "unbanned",
		"timeout":   "timed out",
		"untimeout": "released from timeout",
		"custom":    "custom",
	}
	for action, want := range cases {
		if got := actionPhrase(action); got != want {
			t.Errorf("actionPhrase(%q) = %q, want %q", action, got, want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{42 * time.Second, "42s"},
		{5*time.Minute + 3*time.Second, "5m 3s"},
		{2*time.Hour + 15*time.Minute, "2h 15m 0s"},
		{26*time.Hour + 30*time.Minute, "1d 2h 30m"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.in); got != tc.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("unexpected: %q", got)
	}
	long := truncate("abcdefghij", 5)
	if len(long) > 8 {
		t.Fatalf("truncated string too long: %q", long)
	}
}
