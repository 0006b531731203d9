package game

import (
	"context"
	"sync"

	"github.com/wickedwords/word-chain-bot/database"
)

type memberKey struct {
	serverID int64
	memberID int64
}

type usedKey struct {
	serverID int64
	mode     int
	word     string
}

type listKey struct {
	serverID int64
	word     string
}

type cacheKey struct {
	word string
	lang string
}

type memberStats struct {
	score   int
	correct int
	wrong   int
	karma   float64
}

// fakeStore is an in-memory Store with transactional writes: a fakeTx stages
// mutations and applies them atomically on Commit, so rolled-back turns leave
// no trace, just like the real database.
type fakeStore struct {
	mu        sync.Mutex
	configs   map[int64]database.ServerConfigRow
	members   map[memberKey]*memberStats
	used      map[usedKey]struct{}
	cache     map[cacheKey]struct{}
	blacklist map[listKey]struct{}
	whitelist map[listKey]struct{}
	banned    map[int64]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		configs:   make(map[int64]database.ServerConfigRow),
		members:   make(map[memberKey]*memberStats),
		used:      make(map[usedKey]struct{}),
		cache:     make(map[cacheKey]struct{}),
		blacklist: make(map[listKey]struct{}),
		whitelist: make(map[listKey]struct{}),
		banned:    make(map[int64]bool),
	}
}

func (s *fakeStore) LoadServerConfigs(context.Context) ([]database.ServerConfigRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]database.ServerConfigRow, 0, len(s.configs))
	for _, row := range s.configs {
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *fakeStore) InsertServerConfig(_ context.Context, row database.ServerConfigRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.configs[row.ServerID]; !ok {
		s.configs[row.ServerID] = row
	}
	return nil
}

func (s *fakeStore) IsMemberBanned(_ context.Context, memberID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.banned[memberID], nil
}

func (s *fakeStore) BanMember(_ context.Context, memberID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banned[memberID] = true
	return nil
}

func (s *fakeStore) UnbanMember(_ context.Context, memberID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.banned, memberID)
	return nil
}

func (s *fakeStore) Begin(context.Context) (Tx, error) {
	return &fakeTx{store: s}, nil
}

func (s *fakeStore) member(serverID, memberID int64) memberStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.members[memberKey{serverID, memberID}]; ok {
		return *m
	}
	return memberStats{}
}

func (s *fakeStore) memberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members)
}

func (s *fakeStore) usedCount(serverID int64, mode int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key := range s.used {
		if key.serverID == serverID && key.mode == mode {
			n++
		}
	}
	return n
}

func (s *fakeStore) isCached(word, lang string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cache[cacheKey{word, lang}]
	return ok
}

type fakeTx struct {
	store *fakeStore
	ops   []func(*fakeStore)
}

func (t *fakeTx) stage(fn func(*fakeStore)) {
	t.ops = append(t.ops, fn)
}

func (t *fakeTx) Commit() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, op := range t.ops {
		op(t.store)
	}
	t.ops = nil
	return nil
}

func (t *fakeTx) Rollback() error {
	t.ops = nil
	return nil
}

func (t *fakeTx) EnsureMember(_ context.Context, serverID, memberID int64) error {
	t.stage(func(s *fakeStore) {
		key := memberKey{serverID, memberID}
		if _, ok := s.members[key]; !ok {
			s.members[key] = &memberStats{}
		}
	})
	return nil
}

func (t *fakeTx) ApplyAccept(_ context.Context, serverID, memberID int64, karmaDelta float64) error {
	t.stage(func(s *fakeStore) {
		m := s.members[memberKey{serverID, memberID}]
		if m == nil {
			m = &memberStats{}
			s.members[memberKey{serverID, memberID}] = m
		}
		m.score++
		m.correct++
		m.karma += karmaDelta
		if m.karma < 0 {
			m.karma = 0
		}
	})
	return nil
}

func (t *fakeTx) ApplyMistake(_ context.Context, serverID, memberID int64, penalty float64) error {
	t.stage(func(s *fakeStore) {
		m := s.members[memberKey{serverID, memberID}]
		if m == nil {
			m = &memberStats{}
			s.members[memberKey{serverID, memberID}] = m
		}
		m.score--
		m.wrong++
		m.karma -= penalty
		if m.karma < 0 {
			m.karma = 0
		}
	})
	return nil
}

func (t *fakeTx) IsWordUsed(_ context.Context, serverID int64, gameMode int, word string) (bool, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	_, ok := t.store.used[usedKey{serverID, gameMode, word}]
	return ok, nil
}

func (t *fakeTx) AddUsedWord(_ context.Context, serverID int64, gameMode int, word string) error {
	t.stage(func(s *fakeStore) {
		s.used[usedKey{serverID, gameMode, word}] = struct{}{}
	})
	return nil
}

func (t *fakeTx) ClearUsedWords(_ context.Context, serverID int64, gameMode int) error {
	t.stage(func(s *fakeStore) {
		for key := range s.used {
			if key.serverID == serverID && key.mode == gameMode {
				delete(s.used, key)
			}
		}
	})
	return nil
}

func (t *fakeTx) IsWordWhitelisted(_ context.Context, serverID int64, word string) (bool, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	_, ok := t.store.whitelist[listKey{serverID, word}]
	return ok, nil
}

func (t *fakeTx) IsWordBlacklisted(_ context.Context, serverID int64, word string) (bool, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	_, ok := t.store.blacklist[listKey{serverID, word}]
	return ok, nil
}

func (t *fakeTx) IsWordCached(_ context.Context, word string, languages []string) (bool, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, lang := range languages {
		if _, ok := t.store.cache[cacheKey{word, lang}]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (t *fakeTx) CacheWord(_ context.Context, word, lang string) error {
	t.stage(func(s *fakeStore) {
		s.cache[cacheKey{word, lang}] = struct{}{}
	})
	return nil
}

func (t *fakeTx) AddBlacklistWord(_ context.Context, serverID int64, word string) error {
	t.stage(func(s *fakeStore) {
		s.blacklist[listKey{serverID, word}] = struct{}{}
	})
	return nil
}

func (t *fakeTx) RemoveBlacklistWord(_ context.Context, serverID int64, word string) error {
	t.stage(func(s *fakeStore) {
		delete(s.blacklist, listKey{serverID, word})
	})
	return nil
}

func (t *fakeTx) AddWhitelistWord(_ context.Context, serverID int64, word string) error {
	t.stage(func(s *fakeStore) {
		s.whitelist[listKey{serverID, word}] = struct{}{}
	})
	return nil
}

func (t *fakeTx) RemoveWhitelistWord(_ context.Context, serverID int64, word string) error {
	t.stage(func(s *fakeStore) {
		delete(s.whitelist, listKey{serverID, word})
	})
	return nil
}

func (t *fakeTx) SaveServerConfig(_ context.Context, row database.ServerConfigRow) error {
	t.stage(func(s *fakeStore) {
		s.configs[row.ServerID] = row
	})
	return nil
}

func (t *fakeTx) DeleteServerData(_ context.Context, serverID int64) (int64, error) {
	t.store.mu.Lock()
	var total int64
	for key := range t.store.used {
		if key.serverID == serverID {
			total++
		}
	}
	for key := range t.store.members {
		if key.serverID == serverID {
			total++
		}
	}
	t.store.mu.Unlock()

	t.stage(func(s *fakeStore) {
		for key := range s.used {
			if key.serverID == serverID {
				delete(s.used, key)
			}
		}
		for key := range s.members {
			if key.serverID == serverID {
				delete(s.members, key)
			}
		}
		for key := range s.blacklist {
			if key.serverID == serverID {
				delete(s.blacklist, key)
			}
		}
		for key := range s.whitelist {
			if key.serverID == serverID {
				delete(s.whitelist, key)
			}
		}
	})
	return total, nil
}

func (t *fakeTx) DeleteMemberData(_ context.Context, memberID int64) (int64, error) {
	t.store.mu.Lock()
	var total int64
	for key := range t.store.members {
		if key.memberID == memberID {
			total++
		}
	}
	t.store.mu.Unlock()

	t.stage(func(s *fakeStore) {
		for key := range s.members {
			if key.memberID == memberID {
				delete(s.members, key)
			}
		}
	})
	return total, nil
}
