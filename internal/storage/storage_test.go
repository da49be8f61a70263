package storage

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestUpsertGuildSettings(t *testing.T) {
	store := newTestStore(t)

	settings := GuildSettings{
		GuildID:       "g1",
		Prefix:        "?",
		ModlogChannel: "c1",
		AltEnabled:    true,
	}

	if err := store.UpsertGuildSettings(context.Background(), settings); err != nil {
		t.Fatalf("upsert guild settings: %v", err)
	}

	settings.ModlogChannel = "c2"
	if err := store.UpsertGuildSettings(context.Background(), settings); err != nil {
		t.Fatalf("update guild settings: %v", err)
	}

	got, err := store.GetGuildSettings(context.Background(), "g1", GuildSettings{Prefix: "!"})
	if err != nil {
		t.Fatalf("get guild settings: %v", err)
	}
	if got.ModlogChannel != "c2" {
		t.Fatalf("expected channel c2, got %q", got.ModlogChannel)
	}
	if got.Prefix != "?" {
		t.Fatalf("expected prefix ?, got %q", got.Prefix)
	}
	if !got.AltEnabled {
		t.Fatalf("expected alt enabled")
	}
}

func TestGuildSettingsDefaults(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetGuildSettings(context.Background(), "missing", GuildSettings{Prefix: "!"})
	if err != nil {
		t.Fatalf("get guild settings: %v", err)
	}
	if got.Prefix != "!" {
		t.Fatalf("expected default prefix, got %q", got.Prefix)
	}
	if got.GuildID != "missing" {
		t.Fatalf("expected guild id to be filled, got %q", got.GuildID)
	}
}

func TestModRoleWhitelist(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.AddModRole(ctx, "g1", "r1"); err != nil {
		t.Fatalf("add mod role: %v", err)
	}
	if err := store.AddModRole(ctx, "g1", "r1"); err != nil {
		t.Fatalf("duplicate add should be a no-op: %v", err)
	}
	if err := store.AddModRole(ctx, "g1", "r2"); err != nil {
		t.Fatalf("add mod role: %v", err)
	}

	roles, err := store.ListModRoles(ctx, "g1")
	if err != nil {
		t.Fatalf("list mod roles: %v", err)
	}
	if len(roles) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(roles))
	}

	removed, err := store.RemoveModRole(ctx, "g1", "r1")
	if err != nil || !removed {
		t.Fatalf("expected removal, got removed=%t err=%v", removed, err)
	}
	removed, err = store.RemoveModRole(ctx, "g1", "r1")
	if err != nil || removed {
		t.Fatalf("expected no-op removal, got removed=%t err=%v", removed, err)
	}
}

func TestAltWhitelist(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.AddAltUser(ctx, "g1", "u1"); err != nil {
		t.Fatalf("add alt user: %v", err)
	}
	if err := store.AddAltRole(ctx, "g1", "r1"); err != nil {
		t.Fatalf("add alt role: %v", err)
	}

	users, err := store.ListAltUsers(ctx, "g1")
	if err != nil || len(users) != 1 || users[0] != "u1" {
		t.Fatalf("unexpected users %v err %v", users, err)
	}
	roles, err := store.ListAltRoles(ctx, "g1")
	if err != nil || len(roles) != 1 || roles[0] != "r1" {
		t.Fatalf("unexpected roles %v err %v", roles, err)
	}

	// other guilds are isolated
	users, err = store.ListAltUsers(ctx, "g2")
	if err != nil || len(users) != 0 {
		t.Fatalf("expected empty list for g2, got %v err %v", users, err)
	}
}

func TestModCaseNumbering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	first, err := store.AddModCase(ctx, ModCase{GuildID: "g1", Action: "kick", ModeratorID: "m1", TargetID: "t1", Reason: "spam", CreatedAt: now})
	if err != nil {
		t.Fatalf("add case: %v", err)
	}
	if first != 1 {
		t.Fatalf("expected case 1, got %d", first)
	}

	second, err := store.AddModCase(ctx, ModCase{GuildID: "g1", Action: "ban", ModeratorID: "m1", TargetID: "t2", CreatedAt: now})
	if err != nil {
		t.Fatalf("add case: %v", err)
	}
	if second != 2 {
		t.Fatalf("expected case 2, got %d", second)
	}

	other, err := store.AddModCase(ctx, ModCase{GuildID: "g2", Action: "kick", ModeratorID: "m2", TargetID: "t3", CreatedAt: now})
	if err != nil {
		t.Fatalf("add case: %v", err)
	}
	if other != 1 {
		t.Fatalf("case numbers are per guild, expected 1, got %d", other)
	}

	cases, err := store.ListModCases(ctx, "g1", now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("list cases: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}
	if cases[0].CaseNumber != 2 {
		t.Fatalf("expected newest first, got case %d", cases[0].CaseNumber)
	}
}
