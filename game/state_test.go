package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wickedwords/word-chain-bot/language"
)

func TestConfigRowRoundTrip(t *testing.T) {
	channelID := int64(10)
	hardChannelID := int64(20)
	word := "apple"
	member := int64(100)
	role := int64(555)

	cfg := NewServerConfig(42)
	cfg.State(ModeNormal).ChannelID = &channelID
	cfg.State(ModeNormal).CurrentCount = 7
	cfg.State(ModeNormal).CurrentWord = &word
	cfg.State(ModeNormal).HighScore = 12
	cfg.State(ModeNormal).UsedHighScoreEmoji = true
	cfg.State(ModeNormal).LastMemberID = &member
	cfg.State(ModeHard).ChannelID = &hardChannelID
	cfg.ReliableRoleID = &role
	cfg.FailedMemberID = &member
	cfg.CorrectInputsByFailedMember = 3
	cfg.Languages = []language.Language{language.English, language.German}

	got := configFromRow(cfg.Row())

	assert.Equal(t, cfg.ServerID, got.ServerID)
	assert.Equal(t, cfg.States[ModeNormal], got.States[ModeNormal])
	assert.Equal(t, cfg.States[ModeHard], got.States[ModeHard])
	assert.Equal(t, cfg.ReliableRoleID, got.ReliableRoleID)
	assert.Equal(t, cfg.FailedMemberID, got.FailedMemberID)
	assert.Equal(t, cfg.CorrectInputsByFailedMember, got.CorrectInputsByFailedMember)
	assert.Equal(t, cfg.Languages, got.Languages)
}

func TestConfigDefaultsToEnglish(t *testing.T) {
	cfg := NewServerConfig(1)
	row := cfg.Row()
	row.Languages = ""

	got := configFromRow(row)
	assert.Equal(t, []language.Language{language.English}, got.Languages)
	assert.Equal(t, language.English, got.PrimaryLanguage())
}

func TestModeForChannel(t *testing.T) {
	normalCh := int64(10)
	hardCh := int64(20)
	cfg := NewServerConfig(1)
	cfg.State(ModeNormal).ChannelID = &normalCh
	cfg.State(ModeHard).ChannelID = &hardCh

	mode, ok := cfg.ModeForChannel(10)
	require.True(t, ok)
	assert.Equal(t, ModeNormal, mode)

	mode, ok = cfg.ModeForChannel(20)
	require.True(t, ok)
	assert.Equal(t, ModeHard, mode)

	_, ok = cfg.ModeForChannel(30)
	assert.False(t, ok)
}

func TestReactionEmojiSpecialCounts(t *testing.T) {
	cfg := NewServerConfig(1)
	st := cfg.State(ModeNormal)
	st.HighScore = 500

	st.CurrentCount = 69
	assert.Equal(t, "😏", cfg.ReactionEmoji(ModeNormal))

	st.CurrentCount = 100
	assert.Equal(t, "💯", cfg.ReactionEmoji(ModeNormal))

	st.CurrentCount = 101
	assert.Equal(t, "✅", cfg.ReactionEmoji(ModeNormal))
}

func TestFailChainKeepsCurrentWord(t *testing.T) {
	cfg := NewServerConfig(1)
	cfg.UpdateCurrent(ModeNormal, 100, "apple")
	cfg.UpdateCurrent(ModeNormal, 200, "eagle")
	require.Equal(t, 2, cfg.State(ModeNormal).CurrentCount)

	cfg.FailChain(ModeNormal, 300)

	st := cfg.State(ModeNormal)
	assert.Equal(t, 0, st.CurrentCount)
	assert.False(t, st.UsedHighScoreEmoji)
	require.NotNil(t, st.CurrentWord)
	assert.Equal(t, "eagle", *st.CurrentWord)
	assert.Equal(t, 2, st.HighScore)
	require.NotNil(t, cfg.FailedMemberID)
	assert.Equal(t, int64(300), *cfg.FailedMemberID)
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := NewServerConfig(1)
	cfg.UpdateCurrent(ModeNormal, 100, "apple")

	next := cfg.clone()
	next.UpdateCurrent(ModeNormal, 200, "eagle")
	next.Languages = append(next.Languages, language.German)

	assert.Equal(t, 1, cfg.State(ModeNormal).CurrentCount)
	assert.Equal(t, 2, next.State(ModeNormal).CurrentCount)
	assert.Len(t, cfg.Languages, 1)
}
