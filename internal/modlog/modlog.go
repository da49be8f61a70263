package modlog

import (
	"context"
	"time"

	"github.com/Tkodvv/modbot/internal/storage"

	"go.uber.org/zap"
)

// Logger records moderation actions: a mod_cases row, a structured log
// line, and optionally a mirror to the guild's modlog channel through the
// notifier hook the bot installs.
type Logger struct {
	store  *storage.Store
	logger *zap.Logger
	notify func(context.Context, storage.ModCase)
}

func NewLogger(store *storage.Store, logger *zap.Logger) *Logger {
	return &Logger{store: store, logger: logger}
}

func (l *Logger) SetNotifier(notify func(context.Context, storage.ModCase)) {
	l.notify = notify
}

// Record persists the action and returns the assigned case number. A storage
// failure is logged and reported as case 0; the moderation action itself has
// already happened and must not be rolled back over bookkeeping.
func (l *Logger) Record(ctx context.Context, guildID, action, moderatorID, targetID, reason string) int {
	entry := storage.ModCase{
		GuildID:     guildID,
		Action:      action,
		ModeratorID: moderatorID,
		TargetID:    targetID,
		Reason:      reason,
		CreatedAt:   time.Now(),
	}

	number := 0
	if l.store != nil {
		n, err := l.store.AddModCase(ctx, entry)
		if err != nil {
			l.logger.Warn("mod case persist failed", zap.Error(err))
		} else {
			number = n
		}
	}
	entry.CaseNumber = number

	if l.notify != nil {
		l.notify(ctx, entry)
	}
	l.logger.Info("mod action",
		zap.String("guild_id", guildID),
		zap.String("action", action),
		zap.String("moderator_id", moderatorID),
		zap.String("target_id", targetID),
		zap.String("reason", reason),
		zap.Int("case", number),
	)
	return number
}
