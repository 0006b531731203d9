package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetMember returns a player's stats, or nil if they never played in the
// server. Read-only; runs outside the game lock.
func (p *Postgres) GetMember(ctx context.Context, serverID, memberID int64) (*MemberRow, error) {
	var row MemberRow
	query := `SELECT server_id, member_id, score, correct, wrong, karma FROM member
		WHERE server_id = $1 AND member_id = $2`
	if err := p.connections.GetContext(ctx, &row, query, serverID, memberID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error loading member: %w", err)
	}
	return &row, nil
}

// MemberRanks returns the member's 1-based positions by score and by karma
// within the server.
func (p *Postgres) MemberRanks(ctx context.Context, serverID int64, member MemberRow) (byScore, byKarma int, err error) {
	query := `SELECT COUNT(member_id) FROM member WHERE server_id = $1 AND score >= $2`
	if err = p.connections.GetContext(ctx, &byScore, query, serverID, member.Score); err != nil {
		return 0, 0, fmt.Errorf("error ranking member by score: %w", err)
	}
	query = `SELECT COUNT(member_id) FROM member WHERE server_id = $1 AND karma >= $2`
	if err = p.connections.GetContext(ctx, &byKarma, query, serverID, member.Karma); err != nil {
		return 0, 0, fmt.Errorf("error ranking member by karma: %w", err)
	}
	return byScore, byKarma, nil
}

// TopMembers returns the server leaderboard ordered by score or karma.
func (p *Postgres) TopMembers(ctx context.Context, serverID int64, metric string, limit int) ([]LeaderboardEntry, error) {
	column, err := leaderboardColumn(metric)
	if err != nil {
		return nil, err
	}
	var rows []LeaderboardEntry
	query := fmt.Sprintf(`SELECT member_id, %s AS value FROM member
		WHERE server_id = $1 ORDER BY %s DESC LIMIT $2`, column, column)
	if err := p.connections.SelectContext(ctx, &rows, query, serverID, limit); err != nil {
		return nil, fmt.Errorf("error loading member leaderboard: %w", err)
	}
	return rows, nil
}

// TopMembersGlobal returns the cross-server leaderboard, summing the metric
// over every server a member played in.
func (p *Postgres) TopMembersGlobal(ctx context.Context, metric string, limit int) ([]LeaderboardEntry, error) {
	column, err := leaderboardColumn(metric)
	if err != nil {
		return nil, err
	}
	var rows []LeaderboardEntry
	query := fmt.Sprintf(`SELECT member_id, SUM(%s) AS value FROM member
		GROUP BY member_id ORDER BY SUM(%s) DESC LIMIT $1`, column, column)
	if err := p.connections.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("error loading global leaderboard: %w", err)
	}
	return rows, nil
}

// leaderboardColumn guards the metric name against injection; only the two
// known columns are ever interpolated.
func leaderboardColumn(metric string) (string, error) {
	switch metric {
	case "score", "karma":
		return metric, nil
	default:
		return "", fmt.Errorf("unknown leaderboard metric %q", metric)
	}
}

// ReliableMembers is the lock-free variant used by the role reconciler.
func (p *Postgres) ReliableMembers(ctx context.Context, serverID int64, karmaMin, accuracyMin float64) ([]int64, error) {
	var members []int64
	query := `SELECT member_id FROM member
		WHERE server_id = $1 AND karma > $2
		AND correct + wrong > 0
		AND correct::float / (correct + wrong) > $3`
	if err := p.connections.SelectContext(ctx, &members, query, serverID, karmaMin, accuracyMin); err != nil {
		return nil, fmt.Errorf("error selecting reliable members: %w", err)
	}
	return members, nil
}
