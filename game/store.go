package game

import (
	"context"
	"fmt"
	"sync"

	"github.com/wickedwords/word-chain-bot/database"
	"github.com/wickedwords/word-chain-bot/karma"
	"github.com/wickedwords/word-chain-bot/language"
	"github.com/wickedwords/word-chain-bot/logging"
)

// Store is the persistence surface the game needs. *database.Postgres backs
// it in production; tests substitute an in-memory fake.
type Store interface {
	LoadServerConfigs(ctx context.Context) ([]database.ServerConfigRow, error)
	InsertServerConfig(ctx context.Context, row database.ServerConfigRow) error
	IsMemberBanned(ctx context.Context, memberID int64) (bool, error)
	BanMember(ctx context.Context, memberID int64) error
	UnbanMember(ctx context.Context, memberID int64) error
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one game transaction. All methods mutate or read within the same
// database transaction; nothing is visible until Commit.
type Tx interface {
	EnsureMember(ctx context.Context, serverID, memberID int64) error
	ApplyAccept(ctx context.Context, serverID, memberID int64, karmaDelta float64) error
	ApplyMistake(ctx context.Context, serverID, memberID int64, penalty float64) error
	IsWordUsed(ctx context.Context, serverID int64, gameMode int, word string) (bool, error)
	AddUsedWord(ctx context.Context, serverID int64, gameMode int, word string) error
	ClearUsedWords(ctx context.Context, serverID int64, gameMode int) error
	IsWordWhitelisted(ctx context.Context, serverID int64, word string) (bool, error)
	IsWordBlacklisted(ctx context.Context, serverID int64, word string) (bool, error)
	IsWordCached(ctx context.Context, word string, languages []string) (bool, error)
	CacheWord(ctx context.Context, word, lang string) error
	AddBlacklistWord(ctx context.Context, serverID int64, word string) error
	RemoveBlacklistWord(ctx context.Context, serverID int64, word string) error
	AddWhitelistWord(ctx context.Context, serverID int64, word string) error
	RemoveWhitelistWord(ctx context.Context, serverID int64, word string) error
	SaveServerConfig(ctx context.Context, row database.ServerConfigRow) error
	DeleteServerData(ctx context.Context, serverID int64) (int64, error)
	DeleteMemberData(ctx context.Context, memberID int64) (int64, error)
	Commit() error
	Rollback() error
}

type sqlStore struct {
	db *database.Postgres
}

// NewSQLStore adapts the postgres layer to the Store interface.
func NewSQLStore(db *database.Postgres) Store {
	return sqlStore{db: db}
}

func (s sqlStore) LoadServerConfigs(ctx context.Context) ([]database.ServerConfigRow, error) {
	return s.db.LoadServerConfigs(ctx)
}

func (s sqlStore) InsertServerConfig(ctx context.Context, row database.ServerConfigRow) error {
	return s.db.InsertServerConfig(ctx, row)
}

func (s sqlStore) IsMemberBanned(ctx context.Context, memberID int64) (bool, error) {
	return s.db.IsMemberBanned(ctx, memberID)
}

func (s sqlStore) BanMember(ctx context.Context, memberID int64) error {
	return s.db.BanMember(ctx, memberID)
}

func (s sqlStore) UnbanMember(ctx context.Context, memberID int64) error {
	return s.db.UnbanMember(ctx, memberID)
}

func (s sqlStore) Begin(ctx context.Context) (Tx, error) {
	return s.db.Begin(ctx)
}

type historyKey struct {
	serverID int64
	memberID int64
	mode     Mode
}

// ServerStateManager owns the in-memory mirror of every server's state and
// the single lock serializing all mutations. The in-memory reads interleave
// with multi-statement transactions, so writers must hold the lock from
// before the first read until after commit.
type ServerStateManager struct {
	mu        sync.Mutex
	store     Store
	configs   map[int64]*ServerConfig
	histories map[historyKey]*karma.History
	logger    *logging.Logger
}

func NewServerStateManager(store Store, logger *logging.Logger) *ServerStateManager {
	if logger == nil {
		logger = logging.Default()
	}
	return &ServerStateManager{
		store:     store,
		configs:   make(map[int64]*ServerConfig),
		histories: make(map[historyKey]*karma.History),
		logger:    logger,
	}
}

// Lock acquires the global game lock. Every state-mutating path holds it
// across its whole transaction; lock hold time is bounded by one message's
// processing.
func (m *ServerStateManager) Lock() {
	m.mu.Lock()
}

func (m *ServerStateManager) Unlock() {
	m.mu.Unlock()
}

// Load populates the in-memory mirror from the store at startup.
func (m *ServerStateManager) Load(ctx context.Context) error {
	rows, err := m.store.LoadServerConfigs(ctx)
	if err != nil {
		return fmt.Errorf("error loading server state: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range rows {
		m.configs[row.ServerID] = configFromRow(row)
	}
	m.logger.Info("server state loaded", "servers", len(rows))
	return nil
}

// Config returns the config for a server. Callers must hold the lock.
func (m *ServerStateManager) Config(serverID int64) *ServerConfig {
	return m.configs[serverID]
}

// EnsureConfig creates a default config for a newly observed server. Safe to
// call repeatedly; guild events may be redelivered.
func (m *ServerStateManager) EnsureConfig(ctx context.Context, serverID int64) (*ServerConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cfg, ok := m.configs[serverID]; ok {
		return cfg, nil
	}

	cfg := NewServerConfig(serverID)
	if err := m.store.InsertServerConfig(ctx, cfg.Row()); err != nil {
		return nil, fmt.Errorf("error creating server config: %w", err)
	}
	m.configs[serverID] = cfg
	m.logger.Debug("created config for server", "server_id", serverID)
	return cfg, nil
}

// setConfig swaps in a new config for a server. Callers must hold the lock.
func (m *ServerStateManager) setConfig(serverID int64, cfg *ServerConfig) {
	m.configs[serverID] = cfg
}

// ServerIDs lists all known servers. Callers must hold the lock.
func (m *ServerStateManager) ServerIDs() []int64 {
	ids := make([]int64, 0, len(m.configs))
	for id := range m.configs {
		ids = append(ids, id)
	}
	return ids
}

// History returns the recent-word history of one player in one game mode.
// Callers must hold the lock.
func (m *ServerStateManager) History(serverID, memberID int64, mode Mode) *karma.History {
	key := historyKey{serverID: serverID, memberID: memberID, mode: mode}
	h, ok := m.histories[key]
	if !ok {
		h = karma.NewHistory(HistoryLength)
		m.histories[key] = h
	}
	return h
}

// RoleSettings returns a server's role wiring for the role synchronizer.
func (m *ServerStateManager) RoleSettings(serverID int64) (reliableRoleID, failedRoleID, failedMemberID *int64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, found := m.configs[serverID]
	if !found {
		return nil, nil, nil, false
	}
	return cfg.ReliableRoleID, cfg.FailedRoleID, cfg.FailedMemberID, true
}

// EnabledLanguages returns a copy of a server's enabled languages.
func (m *ServerStateManager) EnabledLanguages(serverID int64) []language.Language {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, ok := m.configs[serverID]
	if !ok {
		return []language.Language{language.English}
	}
	return append([]language.Language(nil), cfg.Languages...)
}

// Snapshot returns a copy of one mode's chain state for display. It takes the
// lock only long enough to copy; readers accept slightly stale data.
func (m *ServerStateManager) Snapshot(serverID int64, mode Mode) (GameModeState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, ok := m.configs[serverID]
	if !ok {
		return GameModeState{}, false
	}
	return *cfg.States[mode], true
}
