package game

import (
	"context"

	"github.com/pkg/errors"

	"github.com/wickedwords/word-chain-bot/language"
)

// ErrUnknownServer is returned by config mutators for a server the bot has
// never joined.
var ErrUnknownServer = errors.New("server not configured")

// ErrTooManyLanguages is returned when a server tries to enable more
// languages than allowed.
var ErrTooManyLanguages = errors.Errorf("at most %d languages can be enabled", MaxLanguages)

// mutateConfig stages a config change on a copy, persists it, and swaps the
// copy in only after commit. The lock is held for the whole round trip.
func (e *Engine) mutateConfig(ctx context.Context, serverID int64, fn func(*ServerConfig) error) error {
	e.states.Lock()
	defer e.states.Unlock()

	cfg := e.states.Config(serverID)
	if cfg == nil {
		return ErrUnknownServer
	}
	next := cfg.clone()
	if err := fn(next); err != nil {
		return err
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "beginning config change")
	}
	if err := tx.SaveServerConfig(ctx, next.Row()); err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "saving config change")
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing config change")
	}

	e.states.setConfig(serverID, next)
	return nil
}

// withTx runs word-list style mutations that do not touch the in-memory
// config. The lock still serializes them against the turn engine.
func (e *Engine) withTx(ctx context.Context, serverID int64, fn func(tx Tx) error) error {
	e.states.Lock()
	defer e.states.Unlock()

	if e.states.Config(serverID) == nil {
		return ErrUnknownServer
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// SetChannel wires a game mode to a channel. A nil channel unhooks the mode.
func (e *Engine) SetChannel(ctx context.Context, serverID int64, mode Mode, channelID *int64) error {
	return e.mutateConfig(ctx, serverID, func(cfg *ServerConfig) error {
		cfg.State(mode).ChannelID = channelID
		return nil
	})
}

// SetReliableRole configures (or clears) the role granted to high-accuracy
// members, then reconciles its membership.
func (e *Engine) SetReliableRole(ctx context.Context, serverID int64, roleID *int64) error {
	err := e.mutateConfig(ctx, serverID, func(cfg *ServerConfig) error {
		cfg.ReliableRoleID = roleID
		return nil
	})
	if err != nil {
		return err
	}
	go e.roles.SyncReliable(context.WithoutCancel(ctx), serverID)
	return nil
}

// SetFailedRole configures (or clears) the role marking the member who last
// broke the chain, then reconciles its membership.
func (e *Engine) SetFailedRole(ctx context.Context, serverID int64, roleID *int64) error {
	var failed *int64
	err := e.mutateConfig(ctx, serverID, func(cfg *ServerConfig) error {
		cfg.FailedRoleID = roleID
		failed = cfg.FailedMemberID
		return nil
	})
	if err != nil {
		return err
	}
	go e.roles.SyncFailed(context.WithoutCancel(ctx), serverID, failed)
	return nil
}

// SetLanguages replaces the server's enabled languages. Codes must be valid
// ISO 639-1 codes of supported languages.
func (e *Engine) SetLanguages(ctx context.Context, serverID int64, codes []string) error {
	if len(codes) == 0 || len(codes) > MaxLanguages {
		return ErrTooManyLanguages
	}
	langs := make([]language.Language, 0, len(codes))
	for _, code := range codes {
		l, err := language.FromCode(code)
		if err != nil {
			return err
		}
		langs = append(langs, l)
	}
	return e.mutateConfig(ctx, serverID, func(cfg *ServerConfig) error {
		cfg.Languages = langs
		return nil
	})
}

// BanServer stops the bot from playing in a server without losing its data.
func (e *Engine) BanServer(ctx context.Context, serverID int64, banned bool) error {
	return e.mutateConfig(ctx, serverID, func(cfg *ServerConfig) error {
		cfg.IsBanned = banned
		return nil
	})
}

// BanMember blocks a member from playing in every server.
func (e *Engine) BanMember(ctx context.Context, memberID int64) error {
	return errors.Wrap(e.store.BanMember(ctx, memberID), "banning member")
}

// UnbanMember lifts a global member ban.
func (e *Engine) UnbanMember(ctx context.Context, memberID int64) error {
	return errors.Wrap(e.store.UnbanMember(ctx, memberID), "unbanning member")
}

// BlacklistWord adds a word to the server's blacklist and drops it from the
// whitelist so the lists never disagree.
func (e *Engine) BlacklistWord(ctx context.Context, serverID int64, word string) error {
	return e.withTx(ctx, serverID, func(tx Tx) error {
		if err := tx.RemoveWhitelistWord(ctx, serverID, word); err != nil {
			return errors.Wrap(err, "removing whitelist entry")
		}
		return errors.Wrap(tx.AddBlacklistWord(ctx, serverID, word), "blacklisting word")
	})
}

// UnblacklistWord removes a word from the server's blacklist.
func (e *Engine) UnblacklistWord(ctx context.Context, serverID int64, word string) error {
	return e.withTx(ctx, serverID, func(tx Tx) error {
		return errors.Wrap(tx.RemoveBlacklistWord(ctx, serverID, word), "unblacklisting word")
	})
}

// WhitelistWord adds a word to the server's whitelist and drops it from the
// blacklist.
func (e *Engine) WhitelistWord(ctx context.Context, serverID int64, word string) error {
	return e.withTx(ctx, serverID, func(tx Tx) error {
		if err := tx.RemoveBlacklistWord(ctx, serverID, word); err != nil {
			return errors.Wrap(err, "removing blacklist entry")
		}
		return errors.Wrap(tx.AddWhitelistWord(ctx, serverID, word), "whitelisting word")
	})
}

// UnwhitelistWord removes a word from the server's whitelist.
func (e *Engine) UnwhitelistWord(ctx context.Context, serverID int64, word string) error {
	return e.withTx(ctx, serverID, func(tx Tx) error {
		return errors.Wrap(tx.RemoveWhitelistWord(ctx, serverID, word), "unwhitelisting word")
	})
}

// CleanServer wipes a server's game data: chains, used words, member stats
// and word lists. Channel and role wiring survives.
func (e *Engine) CleanServer(ctx context.Context, serverID int64) (int64, error) {
	var removed int64
	err := e.mutateConfig(ctx, serverID, func(cfg *ServerConfig) error {
		for _, mode := range Modes() {
			st := cfg.State(mode)
			st.CurrentCount = 0
			st.CurrentWord = nil
			st.HighScore = 0
			st.UsedHighScoreEmoji = false
			st.LastMemberID = nil
		}
		cfg.FailedMemberID = nil
		cfg.CorrectInputsByFailedMember = 0
		return nil
	})
	if err != nil {
		return 0, err
	}
	err = e.withTx(ctx, serverID, func(tx Tx) error {
		n, err := tx.DeleteServerData(ctx, serverID)
		removed = n
		return errors.Wrap(err, "cleaning server data")
	})
	return removed, err
}

// CleanUser wipes a member's stats in every server.
func (e *Engine) CleanUser(ctx context.Context, memberID int64) (int64, error) {
	e.states.Lock()
	defer e.states.Unlock()

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "beginning transaction")
	}
	removed, err := tx.DeleteMemberData(ctx, memberID)
	if err != nil {
		_ = tx.Rollback()
		return 0, errors.Wrap(err, "cleaning member data")
	}
	return removed, errors.Wrap(tx.Commit(), "committing transaction")
}

// GameState returns a display copy of one mode's chain state.
func (e *Engine) GameState(serverID int64, mode Mode) (GameModeState, bool) {
	return e.states.Snapshot(serverID, mode)
}
