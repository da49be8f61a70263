package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type ModCase struct {
	GuildID     string
	CaseNumber  int
	Action      string
	ModeratorID string
	TargetID    string
	Reason      string
	CreatedAt   time.Time
}

// AddModCase assigns the next per-guild case number and persists the entry.
// The read and insert run in one transaction so concurrent actions in the
// same guild never share a number.
func (s *Store) AddModCase(ctx context.Context, entry ModCase) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var last sql.NullInt64
	row := tx.QueryRowContext(ctx, `SELECT MAX(case_number) FROM mod_cases WHERE guild_id = ?`, entry.GuildID)
	if scanErr := row.Scan(&last); scanErr != nil && !errors.Is(scanErr, sql.ErrNoRows) {
		err = scanErr
		return 0, err
	}

	number := 1
	if last.Valid {
		number = int(last.Int64) + 1
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO mod_cases (guild_id, case_number, action, moderator_id, target_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.GuildID, number, entry.Action, entry.ModeratorID, entry.TargetID, entry.Reason, entry.CreatedAt.Unix())
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return number, nil
}

func (s *Store) ListModCases(ctx context.Context, guildID string, since time.Time) ([]ModCase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT guild_id, case_number, action, moderator_id, target_id, reason, created_at
		FROM mod_cases
		WHERE guild_id = ? AND created_at >= ?
		ORDER BY case_number DESC
	`, guildID, since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []ModCase
	for rows.Next() {
		var entry ModCase
		var created int64
		if err := rows.Scan(&entry.GuildID, &entry.CaseNumber, &entry.Action, &entry.ModeratorID, &entry.TargetID, &entry.Reason, &created); err != nil {
			return nil, err
		}
		entry.CreatedAt = time.Unix(created, 0)
		cases = append(cases, entry)
	}
	return cases, rows.Err()
}
