package reports

import (
	"context"
	"testing"
	"time"

	"github.com/Tkodvv/modbot/internal/storage"
)

func TestSummarize(t *testing.T) {
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	now := time.Now()
	for _, action := range []string{"kick", "kick", "ban"} {
		if _, err := store.AddModCase(ctx, storage.ModCase{GuildID: "g1", Action: action, ModeratorID: "m", TargetID: "t", CreatedAt: now}); err != nil {
			t.Fatalf("add case: %v", err)
		}
	}
	if _, err := store.AddModCase(ctx, storage.ModCase{GuildID: "g1", Action: "timeout", ModeratorID: "m", TargetID: "t", CreatedAt: now.Add(-48 * time.Hour)}); err != nil {
		t.Fatalf("add old case: %v", err)
	}

	report, err := New(store).Summarize(ctx, "g1", now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if report.Total != 3 {
		t.Fatalf("expected 3 cases in window, got %d", report.Total)
	}
	if report.ByAction["kick"] != 2 || report.ByAction["ban"] != 1 {
		t.Fatalf("unexpected counts: %v", report.ByAction)
	}
	if report.ByAction["timeout"] != 0 {
		t.Fatalf("old case should be outside the window")
	}
}
