package database

import (
	"context"
	"fmt"
)

// ListBlacklist returns a server's blacklisted words. Read-only.
func (p *Postgres) ListBlacklist(ctx context.Context, serverID int64) ([]string, error) {
	var words []string
	query := `SELECT word FROM blacklist WHERE server_id = $1 ORDER BY word`
	if err := p.connections.SelectContext(ctx, &words, query, serverID); err != nil {
		return nil, fmt.Errorf("error listing blacklist: %w", err)
	}
	return words, nil
}

// ListWhitelist returns a server's whitelisted words. Read-only.
func (p *Postgres) ListWhitelist(ctx context.Context, serverID int64) ([]string, error) {
	var words []string
	query := `SELECT word FROM whitelist WHERE server_id = $1 ORDER BY word`
	if err := p.connections.SelectContext(ctx, &words, query, serverID); err != nil {
		return nil, fmt.Errorf("error listing whitelist: %w", err)
	}
	return words, nil
}

// UsedWordCount reports the current chain length recorded for a game mode.
func (p *Postgres) UsedWordCount(ctx context.Context, serverID int64, gameMode int) (int, error) {
	var count int
	query := `SELECT COUNT(word) FROM used_words WHERE server_id = $1 AND game_mode = $2`
	if err := p.connections.GetContext(ctx, &count, query, serverID, gameMode); err != nil {
		return 0, fmt.Errorf("error counting used words: %w", err)
	}
	return count, nil
}
