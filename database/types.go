package database

// ServerConfigRow mirrors the flattened server_config table: the normal-mode
// game state lives in the unprefixed columns, the hard-mode state in the
// hard_mode_ columns. Languages is a comma-delimited list of ISO 639-1 codes.
type ServerConfigRow struct {
	ServerID                    int64   `db:"server_id"`
	ChannelID                   *int64  `db:"channel_id"`
	CurrentCount                int     `db:"current_count"`
	CurrentWord                 *string `db:"current_word"`
	HighScore                   int     `db:"high_score"`
	UsedHighScoreEmoji          bool    `db:"used_high_score_emoji"`
	LastMemberID                *int64  `db:"last_member_id"`
	HardModeChannelID           *int64  `db:"hard_mode_channel_id"`
	HardModeCurrentCount        int     `db:"hard_mode_current_count"`
	HardModeCurrentWord         *string `db:"hard_mode_current_word"`
	HardModeHighScore           int     `db:"hard_mode_high_score"`
	HardModeUsedHighScoreEmoji  bool    `db:"hard_mode_used_high_score_emoji"`
	HardModeLastMemberID        *int64  `db:"hard_mode_last_member_id"`
	ReliableRoleID              *int64  `db:"reliable_role_id"`
	FailedRoleID                *int64  `db:"failed_role_id"`
	FailedMemberID              *int64  `db:"failed_member_id"`
	CorrectInputsByFailedMember int     `db:"correct_inputs_by_failed_member"`
	IsBanned                    bool    `db:"is_banned"`
	Languages                   string  `db:"languages"`
}

// MemberRow is one player's aggregate stats in one server. Score may go
// negative; karma never does.
type MemberRow struct {
	ServerID int64   `db:"server_id"`
	MemberID int64   `db:"member_id"`
	Score    int     `db:"score"`
	Correct  int     `db:"correct"`
	Wrong    int     `db:"wrong"`
	Karma    float64 `db:"karma"`
}

// LeaderboardEntry is one row of a score or karma leaderboard.
type LeaderboardEntry struct {
	MemberID int64   `db:"member_id"`
	Value    float64 `db:"value"`
}

// ServerHighScore is one row of the global server leaderboard.
type ServerHighScore struct {
	ServerID  int64 `db:"server_id"`
	HighScore int   `db:"high_score"`
}
