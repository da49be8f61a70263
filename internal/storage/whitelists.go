package storage

import "context"

// Mod-role whitelist: roles whose members may drive moderation commands.

func (s *Store) AddModRole(ctx context.Context, guildID, roleID string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO mod_roles (guild_id, role_id) VALUES (?, ?)`, guildID, roleID)
	return err
}

func (s *Store) RemoveModRole(ctx context.Context, guildID, roleID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM mod_roles WHERE guild_id = ? AND role_id = ?`, guildID, roleID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *Store) ListModRoles(ctx context.Context, guildID string) ([]string, error) {
	return s.listIDs(ctx, `SELECT role_id FROM mod_roles WHERE guild_id = ? ORDER BY role_id`, guildID)
}

// Alt whitelist: users and roles allowed to invoke the alt command.

func (s *Store) AddAltUser(ctx context.Context, guildID, userID string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO alt_whitelist_users (guild_id, user_id) VALUES (?, ?)`, guildID, userID)
	return err
}

func (s *Store) RemoveAltUser(ctx context.Context, guildID, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM alt_whitelist_users WHERE guild_id = ? AND user_id = ?`, guildID, userID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *Store) ListAltUsers(ctx context.Context, guildID string) ([]string, error) {
	return s.listIDs(ctx, `SELECT user_id FROM alt_whitelist_users WHERE guild_id = ? ORDER BY user_id`, guildID)
}

func (s *Store) AddAltRole(ctx context.Context, guildID, roleID string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO alt_whitelist_roles (guild_id, role_id) VALUES (?, ?)`, guildID, roleID)
	return err
}

func (s *Store) RemoveAltRole(ctx context.Context, guildID, roleID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM alt_whitelist_roles WHERE guild_id = ? AND role_id = ?`, guildID, roleID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *Store) ListAltRoles(ctx context.Context, guildID string) ([]string, error) {
	return s.listIDs(ctx, `SELECT role_id FROM alt_whitelist_roles WHERE guild_id = ? ORDER BY role_id`, guildID)
}

func (s *Store) listIDs(ctx context.Context, query, guildID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
