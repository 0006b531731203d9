package game

import (
	"strings"

	"github.com/wickedwords/word-chain-bot/database"
	"github.com/wickedwords/word-chain-bot/language"
)

// GameModeState is the mutable chain state of one game mode in one server.
type GameModeState struct {
	ChannelID          *int64
	CurrentCount       int
	CurrentWord        *string
	HighScore          int
	UsedHighScoreEmoji bool
	LastMemberID       *int64
}

// ServerConfig is one server's full game state and settings, mirrored to the
// server_config row. All access goes through the ServerStateManager's lock.
type ServerConfig struct {
	ServerID                    int64
	States                      map[Mode]*GameModeState
	ReliableRoleID              *int64
	FailedRoleID                *int64
	FailedMemberID              *int64
	CorrectInputsByFailedMember int
	IsBanned                    bool
	Languages                   []language.Language
}

func NewServerConfig(serverID int64) *ServerConfig {
	return &ServerConfig{
		ServerID: serverID,
		States: map[Mode]*GameModeState{
			ModeNormal: {},
			ModeHard:   {},
		},
		Languages: []language.Language{language.English},
	}
}

// State returns the chain state for a mode.
func (c *ServerConfig) State(mode Mode) *GameModeState {
	return c.States[mode]
}

// ModeForChannel maps a channel to the game mode configured on it.
func (c *ServerConfig) ModeForChannel(channelID int64) (Mode, bool) {
	for _, mode := range Modes() {
		st := c.States[mode]
		if st.ChannelID != nil && *st.ChannelID == channelID {
			return mode, true
		}
	}
	return 0, false
}

// PrimaryLanguage is the language whose frequency table scores karma.
func (c *ServerConfig) PrimaryLanguage() language.Language {
	if len(c.Languages) == 0 {
		return language.English
	}
	return c.Languages[0]
}

// LanguageCodes returns the enabled languages as ISO codes.
func (c *ServerConfig) LanguageCodes() []string {
	codes := make([]string, len(c.Languages))
	for i, l := range c.Languages {
		codes[i] = l.Code()
	}
	return codes
}

// UpdateCurrent applies an accepted word: the counter advances, the word and
// author are recorded, and the high score keeps up.
func (c *ServerConfig) UpdateCurrent(mode Mode, memberID int64, word string) {
	st := c.States[mode]
	st.CurrentCount++
	st.CurrentWord = &word
	st.LastMemberID = &memberID
	if st.CurrentCount > st.HighScore {
		st.HighScore = st.CurrentCount
	}
}

// FailChain resets the chain after a mistake. The current word and last
// member stay so players can see which letter to restart with.
func (c *ServerConfig) FailChain(mode Mode, memberID int64) {
	st := c.States[mode]
	st.CurrentCount = 0
	st.UsedHighScoreEmoji = false
	c.FailedMemberID = &memberID
	c.CorrectInputsByFailedMember = 0
}

var specialCountEmojis = map[int]string{
	100: "💯",
	69:  "😏",
	666: "👹",
}

// ReactionEmoji picks the reaction for an accepted word. Reaching a new high
// score earns a one-shot celebration; the flag resets when the chain breaks.
func (c *ServerConfig) ReactionEmoji(mode Mode) string {
	st := c.States[mode]
	if st.CurrentCount == st.HighScore {
		if !st.UsedHighScoreEmoji {
			st.UsedHighScoreEmoji = true
			return "🎉"
		}
		if emoji, ok := specialCountEmojis[st.CurrentCount]; ok {
			return emoji
		}
		return "☑️"
	}
	if emoji, ok := specialCountEmojis[st.CurrentCount]; ok {
		return emoji
	}
	return "✅"
}

// clone deep-copies the config so mutations can be staged and only swapped
// in after a successful commit.
func (c *ServerConfig) clone() *ServerConfig {
	next := *c
	next.States = make(map[Mode]*GameModeState, len(c.States))
	for mode, st := range c.States {
		copied := *st
		next.States[mode] = &copied
	}
	next.Languages = append([]language.Language(nil), c.Languages...)
	return &next
}

// configFromRow expands the flattened database row.
func configFromRow(row database.ServerConfigRow) *ServerConfig {
	cfg := &ServerConfig{
		ServerID: row.ServerID,
		States: map[Mode]*GameModeState{
			ModeNormal: {
				ChannelID:          row.ChannelID,
				CurrentCount:       row.CurrentCount,
				CurrentWord:        row.CurrentWord,
				HighScore:          row.HighScore,
				UsedHighScoreEmoji: row.UsedHighScoreEmoji,
				LastMemberID:       row.LastMemberID,
			},
			ModeHard: {
				ChannelID:          row.HardModeChannelID,
				CurrentCount:       row.HardModeCurrentCount,
				CurrentWord:        row.HardModeCurrentWord,
				HighScore:          row.HardModeHighScore,
				UsedHighScoreEmoji: row.HardModeUsedHighScoreEmoji,
				LastMemberID:       row.HardModeLastMemberID,
			},
		},
		ReliableRoleID:              row.ReliableRoleID,
		FailedRoleID:                row.FailedRoleID,
		FailedMemberID:              row.FailedMemberID,
		CorrectInputsByFailedMember: row.CorrectInputsByFailedMember,
		IsBanned:                    row.IsBanned,
	}
	for _, code := range strings.Split(row.Languages, ",") {
		if code == "" {
			continue
		}
		if l, err := language.FromCode(code); err == nil {
			cfg.Languages = append(cfg.Languages, l)
		}
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []language.Language{language.English}
	}
	return cfg
}

// Row flattens the config back into its database shape.
func (c *ServerConfig) Row() database.ServerConfigRow {
	normal := c.States[ModeNormal]
	hard := c.States[ModeHard]
	return database.ServerConfigRow{
		ServerID:                    c.ServerID,
		ChannelID:                   normal.ChannelID,
		CurrentCount:                normal.CurrentCount,
		CurrentWord:                 normal.CurrentWord,
		HighScore:                   normal.HighScore,
		UsedHighScoreEmoji:          normal.UsedHighScoreEmoji,
		LastMemberID:                normal.LastMemberID,
		HardModeChannelID:           hard.ChannelID,
		HardModeCurrentCount:        hard.CurrentCount,
		HardModeCurrentWord:         hard.CurrentWord,
		HardModeHighScore:           hard.HighScore,
		HardModeUsedHighScoreEmoji:  hard.UsedHighScoreEmoji,
		HardModeLastMemberID:        hard.LastMemberID,
		ReliableRoleID:              c.ReliableRoleID,
		FailedRoleID:                c.FailedRoleID,
		FailedMemberID:              c.FailedMemberID,
		CorrectInputsByFailedMember: c.CorrectInputsByFailedMember,
		IsBanned:                    c.IsBanned,
		Languages:                   strings.Join(c.LanguageCodes(), ","),
	}
}
