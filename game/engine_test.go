package game

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wickedwords/word-chain-bot/dictionary"
	"github.com/wickedwords/word-chain-bot/language"
	"github.com/wickedwords/word-chain-bot/logging"
)

const (
	testServerID      = int64(1)
	testNormalChannel = int64(10)
	testHardChannel   = int64(20)
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.LogLevelError, io.Discard)
}

// fakeResolver answers from a fixed table and confirms everything else in
// every requested language.
type fakeResolver struct {
	resolutions map[string]dictionary.Resolution
}

func (f fakeResolver) Resolve(_ context.Context, word string, langs []language.Language) dictionary.Resolution {
	if f.resolutions != nil {
		if res, ok := f.resolutions[word]; ok {
			return res
		}
	}
	return dictionary.Resolution{Result: dictionary.WordExists, Languages: langs}
}

func newTestEngine(t *testing.T, resolver WordResolver, singlePlayer bool) (*Engine, *fakeStore) {
	t.Helper()

	store := newFakeStore()
	cfg := NewServerConfig(testServerID)
	normalCh, hardCh := testNormalChannel, testHardChannel
	cfg.State(ModeNormal).ChannelID = &normalCh
	cfg.State(ModeHard).ChannelID = &hardCh
	store.configs[testServerID] = cfg.Row()

	states := NewServerStateManager(store, testLogger())
	require.NoError(t, states.Load(context.Background()))

	if resolver == nil {
		resolver = fakeResolver{}
	}
	engine := NewEngine(states, store, resolver, nil, language.NewMatcher(), nil, singlePlayer, testLogger())
	return engine, store
}

func normalMsg(authorID int64, content string) Message {
	return Message{ServerID: testServerID, AuthorID: authorID, ChannelID: testNormalChannel, Content: content}
}

func hardMsg(authorID int64, content string) Message {
	return Message{ServerID: testServerID, AuthorID: authorID, ChannelID: testHardChannel, Content: content}
}

func TestAcceptExtendsChain(t *testing.T) {
	engine, store := newTestEngine(t, nil, false)
	ctx := context.Background()

	out := engine.ProcessMessage(ctx, normalMsg(100, "apple"))

	require.Equal(t, OutcomeAccepted, out.Kind)
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "apple", out.Word)
	assert.Equal(t, ModeNormal, out.Mode)

	st, ok := engine.GameState(testServerID, ModeNormal)
	require.True(t, ok)
	require.NotNil(t, st.CurrentWord)
	assert.Equal(t, "apple", *st.CurrentWord)
	assert.Equal(t, 1, st.CurrentCount)

	m := store.member(testServerID, 100)
	assert.Equal(t, 1, m.score)
	assert.Equal(t, 1, m.correct)
	assert.True(t, store.isCached("apple", "en"))
}

func TestTurnOrderMistake(t *testing.T) {
	engine, store := newTestEngine(t, nil, false)
	ctx := context.Background()

	require.Equal(t, OutcomeAccepted, engine.ProcessMessage(ctx, normalMsg(100, "apple")).Kind)
	out := engine.ProcessMessage(ctx, normalMsg(100, "elephant"))

	require.Equal(t, OutcomeMistake, out.Kind)
	assert.Equal(t, ReasonWrongMember, out.Reason)
	assert.Equal(t, 1, out.BrokenChainLength)
	assert.Equal(t, "e", out.RequiredStart)

	// chain resets but the current word survives so players know how to
	// restart
	st, _ := engine.GameState(testServerID, ModeNormal)
	assert.Equal(t, 0, st.CurrentCount)
	require.NotNil(t, st.CurrentWord)
	assert.Equal(t, "apple", *st.CurrentWord)
	assert.Zero(t, store.usedCount(testServerID, int(ModeNormal)))

	m := store.member(testServerID, 100)
	assert.Equal(t, 1, m.wrong)
	assert.Equal(t, 0, m.score)
	assert.GreaterOrEqual(t, m.karma, 0.0)

	cfg := engine.states.Config(testServerID)
	require.NotNil(t, cfg.FailedMemberID)
	assert.Equal(t, int64(100), *cfg.FailedMemberID)
}

func TestHardModeContinuity(t *testing.T) {
	engine, _ := newTestEngine(t, nil, false)
	ctx := context.Background()

	require.Equal(t, OutcomeAccepted, engine.ProcessMessage(ctx, hardMsg(100, "apple")).Kind)

	out := engine.ProcessMessage(ctx, hardMsg(200, "learn"))
	require.Equal(t, OutcomeAccepted, out.Kind)
	assert.Equal(t, 2, out.Count)

	out = engine.ProcessMessage(ctx, hardMsg(300, "zebra"))
	require.Equal(t, OutcomeMistake, out.Kind)
	assert.Equal(t, ReasonWrongStart, out.Reason)
	assert.Equal(t, "rn", out.RequiredStart)
}

func TestGlobalBlacklistSoftReject(t *testing.T) {
	engine, store := newTestEngine(t, nil, false)
	ctx := context.Background()

	require.Equal(t, OutcomeAccepted, engine.ProcessMessage(ctx, normalMsg(100, "relax")).Kind)

	out := engine.ProcessMessage(ctx, normalMsg(200, "xx"))
	require.Equal(t, OutcomeSoftRejected, out.Kind)
	assert.Equal(t, ReasonBlacklisted, out.Reason)

	st, _ := engine.GameState(testServerID, ModeNormal)
	assert.Equal(t, 1, st.CurrentCount)
	assert.Equal(t, memberStats{}, store.member(testServerID, 200))
}

func TestPartialLanguageConfirmationCaches(t *testing.T) {
	resolver := fakeResolver{resolutions: map[string]dictionary.Resolution{
		"apple": {Result: dictionary.WordExists, Languages: []language.Language{language.English}},
	}}
	engine, store := newTestEngine(t, resolver, false)
	ctx := context.Background()

	require.NoError(t, engine.SetLanguages(ctx, testServerID, []string{"en", "de"}))

	out := engine.ProcessMessage(ctx, normalMsg(100, "apple"))
	require.Equal(t, OutcomeAccepted, out.Kind)
	assert.True(t, store.isCached("apple", "en"))
	assert.False(t, store.isCached("apple", "de"))
}

func TestNonexistentWordIsMistake(t *testing.T) {
	resolver := fakeResolver{resolutions: map[string]dictionary.Resolution{
		"blorptastic": {Result: dictionary.WordDoesNotExist},
	}}
	engine, store := newTestEngine(t, resolver, false)
	ctx := context.Background()

	out := engine.ProcessMessage(ctx, normalMsg(100, "blorptastic"))
	require.Equal(t, OutcomeMistake, out.Kind)
	assert.Equal(t, ReasonWordDoesNotExist, out.Reason)

	m := store.member(testServerID, 100)
	assert.Equal(t, 1, m.wrong)
	assert.Equal(t, 0.0, m.karma)
}

func TestResolverErrorLeavesStateUntouched(t *testing.T) {
	resolver := fakeResolver{resolutions: map[string]dictionary.Resolution{
		"apple": {Result: dictionary.WordError},
	}}
	engine, store := newTestEngine(t, resolver, false)
	ctx := context.Background()

	out := engine.ProcessMessage(ctx, normalMsg(100, "apple"))
	require.Equal(t, OutcomeErrored, out.Kind)
	assert.Equal(t, ReasonBackendError, out.Reason)

	st, _ := engine.GameState(testServerID, ModeNormal)
	assert.Equal(t, 0, st.CurrentCount)
	assert.Nil(t, st.CurrentWord)
	assert.Zero(t, store.usedCount(testServerID, int(ModeNormal)))

	// the turn is not counted either way, but the member row exists
	m := store.member(testServerID, 100)
	assert.Equal(t, memberStats{}, m)
	assert.Equal(t, 1, store.memberCount())
}

func TestRepetitionSoftReject(t *testing.T) {
	engine, _ := newTestEngine(t, nil, false)
	ctx := context.Background()

	require.Equal(t, OutcomeAccepted, engine.ProcessMessage(ctx, normalMsg(100, "apple")).Kind)
	require.Equal(t, OutcomeAccepted, engine.ProcessMessage(ctx, normalMsg(200, "elephant")).Kind)

	out := engine.ProcessMessage(ctx, normalMsg(300, "apple"))
	require.Equal(t, OutcomeSoftRejected, out.Kind)
	assert.Equal(t, ReasonAlreadyUsed, out.Reason)

	st, _ := engine.GameState(testServerID, ModeNormal)
	assert.Equal(t, 2, st.CurrentCount)
}

func TestSingleLetterSoftReject(t *testing.T) {
	engine, _ := newTestEngine(t, nil, false)

	out := engine.ProcessMessage(context.Background(), normalMsg(100, "a"))
	require.Equal(t, OutcomeSoftRejected, out.Kind)
	assert.Equal(t, ReasonSingleLetter, out.Reason)
}

func TestIgnoredMessages(t *testing.T) {
	engine, store := newTestEngine(t, nil, false)
	ctx := context.Background()
	require.NoError(t, store.BanMember(ctx, 666))

	tests := []struct {
		name string
		msg  Message
	}{
		{
			name: "chatter is not game input",
			msg:  normalMsg(100, "hello there everyone!"),
		},
		{
			name: "unconfigured channel",
			msg:  Message{ServerID: testServerID, AuthorID: 100, ChannelID: 999, Content: "apple"},
		},
		{
			name: "unknown server",
			msg:  Message{ServerID: 404, AuthorID: 100, ChannelID: testNormalChannel, Content: "apple"},
		},
		{
			name: "banned member",
			msg:  normalMsg(666, "apple"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := engine.ProcessMessage(ctx, tt.msg)
			assert.Equal(t, OutcomeIgnored, out.Kind)
		})
	}

	st, _ := engine.GameState(testServerID, ModeNormal)
	assert.Equal(t, 0, st.CurrentCount)
}

func TestBannedServerIgnoresEverything(t *testing.T) {
	engine, _ := newTestEngine(t, nil, false)
	ctx := context.Background()

	require.NoError(t, engine.BanServer(ctx, testServerID, true))
	out := engine.ProcessMessage(ctx, normalMsg(100, "apple"))
	assert.Equal(t, OutcomeIgnored, out.Kind)

	require.NoError(t, engine.BanServer(ctx, testServerID, false))
	out = engine.ProcessMessage(ctx, normalMsg(100, "apple"))
	assert.Equal(t, OutcomeAccepted, out.Kind)
}

func TestMemberCreationIsIdempotent(t *testing.T) {
	engine, store := newTestEngine(t, nil, false)
	ctx := context.Background()

	require.Equal(t, OutcomeAccepted, engine.ProcessMessage(ctx, normalMsg(100, "apple")).Kind)
	// repeat is refused after the member upsert already ran
	require.Equal(t, OutcomeSoftRejected, engine.ProcessMessage(ctx, normalMsg(100, "apple")).Kind)

	assert.Equal(t, 1, store.memberCount())
}

func TestConcurrentMessagesNeverLoseIncrements(t *testing.T) {
	engine, _ := newTestEngine(t, nil, false)
	ctx := context.Background()

	// every word starts and ends with "a", so any interleaving chains
	words := []string{
		"arena", "alpha", "area", "aroma", "agenda",
		"aurora", "alfalfa", "antenna", "anaconda", "aloha",
	}

	var wg sync.WaitGroup
	outcomes := make([]Outcome, len(words))
	for i, word := range words {
		wg.Add(1)
		go func(i int, word string) {
			defer wg.Done()
			outcomes[i] = engine.ProcessMessage(ctx, normalMsg(int64(1000+i), word))
		}(i, word)
	}
	wg.Wait()

	accepted := 0
	for _, out := range outcomes {
		if out.Kind == OutcomeAccepted {
			accepted++
		}
	}
	assert.Equal(t, len(words), accepted)

	st, _ := engine.GameState(testServerID, ModeNormal)
	assert.Equal(t, accepted, st.CurrentCount)
}

func TestFailedMemberRedemption(t *testing.T) {
	engine, _ := newTestEngine(t, nil, false)
	ctx := context.Background()

	author := int64(100)
	cfg := engine.states.Config(testServerID)
	cfg.FailedMemberID = &author
	cfg.CorrectInputsByFailedMember = FailedMemberRedemption - 1

	require.Equal(t, OutcomeAccepted, engine.ProcessMessage(ctx, normalMsg(author, "apple")).Kind)

	assert.Nil(t, cfg.FailedMemberID)
	assert.Equal(t, 0, cfg.CorrectInputsByFailedMember)
}

func TestHighScoreEmojiIsOneShot(t *testing.T) {
	engine, _ := newTestEngine(t, nil, false)
	ctx := context.Background()

	out := engine.ProcessMessage(ctx, normalMsg(100, "apple"))
	require.Equal(t, OutcomeAccepted, out.Kind)
	assert.Equal(t, "🎉", out.ReactionEmoji)

	out = engine.ProcessMessage(ctx, normalMsg(200, "elephant"))
	require.Equal(t, OutcomeAccepted, out.Kind)
	assert.Equal(t, "☑️", out.ReactionEmoji)
}

func TestServerBlacklistCommands(t *testing.T) {
	engine, _ := newTestEngine(t, nil, false)
	ctx := context.Background()

	require.NoError(t, engine.BlacklistWord(ctx, testServerID, "apple"))
	out := engine.ProcessMessage(ctx, normalMsg(100, "apple"))
	require.Equal(t, OutcomeSoftRejected, out.Kind)
	assert.Equal(t, ReasonBlacklisted, out.Reason)

	// whitelisting wins over every blacklist
	require.NoError(t, engine.WhitelistWord(ctx, testServerID, "apple"))
	out = engine.ProcessMessage(ctx, normalMsg(100, "apple"))
	assert.Equal(t, OutcomeAccepted, out.Kind)
}

func TestSetLanguagesValidation(t *testing.T) {
	engine, _ := newTestEngine(t, nil, false)
	ctx := context.Background()

	assert.Error(t, engine.SetLanguages(ctx, testServerID, nil))
	assert.Error(t, engine.SetLanguages(ctx, testServerID, []string{"en", "de", "fr"}))
	assert.Error(t, engine.SetLanguages(ctx, testServerID, []string{"xx"}))
	require.NoError(t, engine.SetLanguages(ctx, testServerID, []string{"de"}))
	assert.Equal(t, language.German, engine.states.Config(testServerID).PrimaryLanguage())
}

func TestCleanServerResetsChains(t *testing.T) {
	engine, store := newTestEngine(t, nil, false)
	ctx := context.Background()

	require.Equal(t, OutcomeAccepted, engine.ProcessMessage(ctx, normalMsg(100, "apple")).Kind)
	require.Equal(t, OutcomeAccepted, engine.ProcessMessage(ctx, normalMsg(200, "elephant")).Kind)

	removed, err := engine.CleanServer(ctx, testServerID)
	require.NoError(t, err)
	assert.Greater(t, removed, int64(0))

	st, _ := engine.GameState(testServerID, ModeNormal)
	assert.Equal(t, 0, st.CurrentCount)
	assert.Nil(t, st.CurrentWord)
	assert.Equal(t, 0, st.HighScore)
	assert.Zero(t, store.memberCount())
}

func TestSinglePlayerAllowsConsecutiveTurns(t *testing.T) {
	engine, _ := newTestEngine(t, nil, true)
	ctx := context.Background()

	for i, word := range []string{"apple", "elephant", "tiger", "rabbit"} {
		out := engine.ProcessMessage(ctx, normalMsg(100, word))
		require.Equalf(t, OutcomeAccepted, out.Kind, "word %d %q", i, word)
	}

	st, _ := engine.GameState(testServerID, ModeNormal)
	assert.Equal(t, 4, st.CurrentCount)
}

func TestContinuityAcrossAcceptedPairs(t *testing.T) {
	engine, _ := newTestEngine(t, nil, true)
	ctx := context.Background()

	words := []string{"apple", "eagle", "egret", "tundra", "anvil"}
	for _, word := range words {
		require.Equal(t, OutcomeAccepted, engine.ProcessMessage(ctx, normalMsg(100, word)).Kind, word)
	}

	for i := 1; i < len(words); i++ {
		prev, next := words[i-1], words[i]
		assert.Equal(t, prev[len(prev)-1:], next[:1], fmt.Sprintf("%s -> %s", prev, next))
	}
}
