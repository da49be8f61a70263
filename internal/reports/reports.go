package reports

import (
	"context"
	"time"

	"github.com/Tkodvv/modbot/internal/storage"
)

type Service struct {
	store *storage.Store
}

func New(store *storage.Store) *Service {
	return &Service{store: store}
}

type Report struct {
	Total    int
	ByAction map[string]int
}

// Summarize counts the guild's mod cases since the cutoff, grouped by action.
func (s *Service) Summarize(ctx context.Context, guildID string, since time.Time) (Report, error) {
	cases, err := s.store.ListModCases(ctx, guildID, since)
	if err != nil {
		return Report{}, err
	}

	report := Report{ByAction: make(map[string]int)}
	for _, entry := range cases {
		report.Total++
		report.ByAction[entry.Action]++
	}
	return report, nil
}
