package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Tx is one game transaction. Every mutation of game state runs through a Tx
// so that a message either commits all of its effects or none of them.
type Tx struct {
	tx *sqlx.Tx
}

func (p *Postgres) Begin(ctx context.Context) (*Tx, error) {
	tx, err := p.connections.BeginTxx(ctx, nil)
	if err != nil {
		p.logger.Error("error beginning transaction", "error", err.Error())
		return nil, fmt.Errorf("error beginning transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// EnsureMember creates the member row with zero stats if it does not exist.
func (t *Tx) EnsureMember(ctx context.Context, serverID, memberID int64) error {
	query := `INSERT INTO member (server_id, member_id, score, correct, wrong, karma)
		VALUES ($1, $2, 0, 0, 0, 0) ON CONFLICT DO NOTHING`
	if _, err := t.tx.ExecContext(ctx, query, serverID, memberID); err != nil {
		return fmt.Errorf("error ensuring member: %w", err)
	}
	return nil
}

// ApplyAccept credits an accepted turn: score and correct count go up, karma
// moves by delta but never below zero.
func (t *Tx) ApplyAccept(ctx context.Context, serverID, memberID int64, karmaDelta float64) error {
	query := `UPDATE member
		SET score = score + 1, correct = correct + 1, karma = GREATEST(0, karma + $3)
		WHERE server_id = $1 AND member_id = $2`
	if _, err := t.tx.ExecContext(ctx, query, serverID, memberID, karmaDelta); err != nil {
		return fmt.Errorf("error applying accepted turn: %w", err)
	}
	return nil
}

// ApplyMistake charges a mistake: score drops, wrong count goes up, karma
// loses the fixed penalty but never drops below zero.
func (t *Tx) ApplyMistake(ctx context.Context, serverID, memberID int64, penalty float64) error {
	query := `UPDATE member
		SET score = score - 1, wrong = wrong + 1, karma = GREATEST(0, karma - $3)
		WHERE server_id = $1 AND member_id = $2`
	if _, err := t.tx.ExecContext(ctx, query, serverID, memberID, penalty); err != nil {
		return fmt.Errorf("error applying mistake: %w", err)
	}
	return nil
}

func (t *Tx) IsWordUsed(ctx context.Context, serverID int64, gameMode int, word string) (bool, error) {
	var used bool
	query := `SELECT EXISTS (SELECT 1 FROM used_words WHERE server_id = $1 AND game_mode = $2 AND word = $3)`
	if err := t.tx.GetContext(ctx, &used, query, serverID, gameMode, word); err != nil {
		return false, fmt.Errorf("error checking used words: %w", err)
	}
	return used, nil
}

func (t *Tx) AddUsedWord(ctx context.Context, serverID int64, gameMode int, word string) error {
	query := `INSERT INTO used_words (server_id, game_mode, word) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`
	if _, err := t.tx.ExecContext(ctx, query, serverID, gameMode, word); err != nil {
		return fmt.Errorf("error adding used word: %w", err)
	}
	return nil
}

// ClearUsedWords deletes the whole chain of one game mode after a mistake.
func (t *Tx) ClearUsedWords(ctx context.Context, serverID int64, gameMode int) error {
	query := `DELETE FROM used_words WHERE server_id = $1 AND game_mode = $2`
	if _, err := t.tx.ExecContext(ctx, query, serverID, gameMode); err != nil {
		return fmt.Errorf("error clearing used words: %w", err)
	}
	return nil
}

func (t *Tx) IsWordWhitelisted(ctx context.Context, serverID int64, word string) (bool, error) {
	var whitelisted bool
	query := `SELECT EXISTS (SELECT 1 FROM whitelist WHERE server_id = $1 AND word = $2)`
	if err := t.tx.GetContext(ctx, &whitelisted, query, serverID, word); err != nil {
		return false, fmt.Errorf("error checking whitelist: %w", err)
	}
	return whitelisted, nil
}

func (t *Tx) IsWordBlacklisted(ctx context.Context, serverID int64, word string) (bool, error) {
	var blacklisted bool
	query := `SELECT EXISTS (SELECT 1 FROM blacklist WHERE server_id = $1 AND word = $2)`
	if err := t.tx.GetContext(ctx, &blacklisted, query, serverID, word); err != nil {
		return false, fmt.Errorf("error checking blacklist: %w", err)
	}
	return blacklisted, nil
}

// IsWordCached reports whether the word is cached for any of the languages.
func (t *Tx) IsWordCached(ctx context.Context, word string, languages []string) (bool, error) {
	if len(languages) == 0 {
		return false, nil
	}
	query, args, err := sqlx.In(`SELECT EXISTS (SELECT 1 FROM word_cache WHERE word = ? AND language IN (?))`, word, languages)
	if err != nil {
		return false, fmt.Errorf("error building cache query: %w", err)
	}
	var cached bool
	if err := t.tx.GetContext(ctx, &cached, t.tx.Rebind(query), args...); err != nil {
		return false, fmt.Errorf("error checking word cache: %w", err)
	}
	return cached, nil
}

func (t *Tx) CacheWord(ctx context.Context, word, lang string) error {
	query := `INSERT INTO word_cache (word, language) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := t.tx.ExecContext(ctx, query, word, lang); err != nil {
		return fmt.Errorf("error caching word: %w", err)
	}
	return nil
}

func (t *Tx) AddBlacklistWord(ctx context.Context, serverID int64, word string) error {
	query := `INSERT INTO blacklist (server_id, word) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := t.tx.ExecContext(ctx, query, serverID, word); err != nil {
		return fmt.Errorf("error adding blacklist word: %w", err)
	}
	return nil
}

func (t *Tx) RemoveBlacklistWord(ctx context.Context, serverID int64, word string) error {
	query := `DELETE FROM blacklist WHERE server_id = $1 AND word = $2`
	if _, err := t.tx.ExecContext(ctx, query, serverID, word); err != nil {
		return fmt.Errorf("error removing blacklist word: %w", err)
	}
	return nil
}

func (t *Tx) AddWhitelistWord(ctx context.Context, serverID int64, word string) error {
	query := `INSERT INTO whitelist (server_id, word) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := t.tx.ExecContext(ctx, query, serverID, word); err != nil {
		return fmt.Errorf("error adding whitelist word: %w", err)
	}
	return nil
}

func (t *Tx) RemoveWhitelistWord(ctx context.Context, serverID int64, word string) error {
	query := `DELETE FROM whitelist WHERE server_id = $1 AND word = $2`
	if _, err := t.tx.ExecContext(ctx, query, serverID, word); err != nil {
		return fmt.Errorf("error removing whitelist word: %w", err)
	}
	return nil
}

// SaveServerConfig writes the full config row back.
func (t *Tx) SaveServerConfig(ctx context.Context, row ServerConfigRow) error {
	query := `UPDATE server_config SET
		channel_id = :channel_id,
		current_count = :current_count,
		current_word = :current_word,
		high_score = :high_score,
		used_high_score_emoji = :used_high_score_emoji,
		last_member_id = :last_member_id,
		hard_mode_channel_id = :hard_mode_channel_id,
		hard_mode_current_count = :hard_mode_current_count,
		hard_mode_current_word = :hard_mode_current_word,
		hard_mode_high_score = :hard_mode_high_score,
		hard_mode_used_high_score_emoji = :hard_mode_used_high_score_emoji,
		hard_mode_last_member_id = :hard_mode_last_member_id,
		reliable_role_id = :reliable_role_id,
		failed_role_id = :failed_role_id,
		failed_member_id = :failed_member_id,
		correct_inputs_by_failed_member = :correct_inputs_by_failed_member,
		is_banned = :is_banned,
		languages = :languages
		WHERE server_id = :server_id`
	if _, err := t.tx.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("error saving server config: %w", err)
	}
	return nil
}

// DeleteServerData removes the derived rows of a server: used words, member
// stats and both word lists. The config row itself stays.
func (t *Tx) DeleteServerData(ctx context.Context, serverID int64) (int64, error) {
	var total int64
	for _, query := range []string{
		`DELETE FROM used_words WHERE server_id = $1`,
		`DELETE FROM member WHERE server_id = $1`,
		`DELETE FROM blacklist WHERE server_id = $1`,
		`DELETE FROM whitelist WHERE server_id = $1`,
	} {
		res, err := t.tx.ExecContext(ctx, query, serverID)
		if err != nil {
			return total, fmt.Errorf("error deleting server data: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}
	return total, nil
}

// DeleteMemberData removes a member's stats in every server.
func (t *Tx) DeleteMemberData(ctx context.Context, memberID int64) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM member WHERE member_id = $1`, memberID)
	if err != nil {
		return 0, fmt.Errorf("error deleting member data: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading affected rows: %w", err)
	}
	return n, nil
}

// ReliableMembers returns the members currently meeting the reliable-role
// criteria: karma above the threshold and accuracy above the threshold.
func (t *Tx) ReliableMembers(ctx context.Context, serverID int64, karmaMin, accuracyMin float64) ([]int64, error) {
	var members []int64
	query := `SELECT member_id FROM member
		WHERE server_id = $1 AND karma > $2
		AND correct + wrong > 0
		AND correct::float / (correct + wrong) > $3`
	if err := t.tx.SelectContext(ctx, &members, query, serverID, karmaMin, accuracyMin); err != nil {
		return nil, fmt.Errorf("error selecting reliable members: %w", err)
	}
	return members, nil
}
