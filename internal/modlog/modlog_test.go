package modlog

import (
	"context"
	"testing"

	"github.com/Tkodvv/modbot/internal/storage"

	"go.uber.org/zap"
)

func TestRecordAssignsCaseAndNotifies(t *testing.T) {
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := NewLogger(store, zap.NewNop())
	var notified storage.ModCase
	logger.SetNotifier(func(_ context.Context, entry storage.ModCase) {
		notified = entry
	})

	number := logger.Record(context.Background(), "g1", "kick", "m1", "t1", "spam")
	if number != 1 {
		t.Fatalf("expected case 1, got %d", number)
	}
	if notified.CaseNumber != 1 || notified.Action != "kick" {
		t.Fatalf("notifier got %+v", notified)
	}

	if number = logger.Record(context.Background(), "g1", "ban", "m1", "t2", ""); number != 2 {
		t.Fatalf("expected case 2, got %d", number)
	}
}

func TestRecordWithoutStore(t *testing.T) {
	logger := NewLogger(nil, zap.NewNop())
	if number := logger.Record(context.Background(), "g1", "kick", "m1", "t1", ""); number != 0 {
		t.Fatalf("expected case 0 without store, got %d", number)
	}
}
