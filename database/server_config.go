package database

import (
	"context"
	"fmt"
)

// LoadServerConfigs reads every server config row at startup.
func (p *Postgres) LoadServerConfigs(ctx context.Context) ([]ServerConfigRow, error) {
	var rows []ServerConfigRow
	query := `SELECT * FROM server_config`
	if err := p.connections.SelectContext(ctx, &rows, query); err != nil {
		p.logger.Error("error loading server configs", "error", err.Error())
		return nil, fmt.Errorf("error loading server configs: %w", err)
	}
	p.logger.Info("loaded server configs", "count", len(rows))
	return rows, nil
}

// InsertServerConfig creates a config row, ignoring servers that already have
// one. Guild-join events may be redelivered.
func (p *Postgres) InsertServerConfig(ctx context.Context, row ServerConfigRow) error {
	query := `INSERT INTO server_config (
		server_id, channel_id, current_count, current_word, high_score, used_high_score_emoji, last_member_id,
		hard_mode_channel_id, hard_mode_current_count, hard_mode_current_word, hard_mode_high_score,
		hard_mode_used_high_score_emoji, hard_mode_last_member_id,
		reliable_role_id, failed_role_id, failed_member_id, correct_inputs_by_failed_member, is_banned, languages
	) VALUES (
		:server_id, :channel_id, :current_count, :current_word, :high_score, :used_high_score_emoji, :last_member_id,
		:hard_mode_channel_id, :hard_mode_current_count, :hard_mode_current_word, :hard_mode_high_score,
		:hard_mode_used_high_score_emoji, :hard_mode_last_member_id,
		:reliable_role_id, :failed_role_id, :failed_member_id, :correct_inputs_by_failed_member, :is_banned, :languages
	) ON CONFLICT DO NOTHING`
	if _, err := p.connections.NamedExecContext(ctx, query, row); err != nil {
		p.logger.Error("error inserting server config", "error", err.Error(), "server_id", row.ServerID)
		return fmt.Errorf("error inserting server config: %w", err)
	}
	return nil
}

// TopServersByHighScore is a read-only leaderboard query; it runs outside the
// game lock and may observe slightly stale data.
func (p *Postgres) TopServersByHighScore(ctx context.Context, limit int) ([]ServerHighScore, error) {
	var rows []ServerHighScore
	query := `SELECT server_id, high_score FROM server_config ORDER BY high_score DESC LIMIT $1`
	if err := p.connections.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("error loading server leaderboard: %w", err)
	}
	return rows, nil
}

func (p *Postgres) IsMemberBanned(ctx context.Context, memberID int64) (bool, error) {
	var banned bool
	query := `SELECT EXISTS (SELECT 1 FROM banned_member WHERE member_id = $1)`
	if err := p.connections.GetContext(ctx, &banned, query, memberID); err != nil {
		return false, fmt.Errorf("error checking banned member: %w", err)
	}
	return banned, nil
}

func (p *Postgres) BanMember(ctx context.Context, memberID int64) error {
	query := `INSERT INTO banned_member (member_id) VALUES ($1) ON CONFLICT DO NOTHING`
	if _, err := p.connections.ExecContext(ctx, query, memberID); err != nil {
		return fmt.Errorf("error banning member: %w", err)
	}
	return nil
}

func (p *Postgres) UnbanMember(ctx context.Context, memberID int64) error {
	query := `DELETE FROM banned_member WHERE member_id = $1`
	if _, err := p.connections.ExecContext(ctx, query, memberID); err != nil {
		return fmt.Errorf("error unbanning member: %w", err)
	}
	return nil
}
