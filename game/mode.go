package game

// Mode is a closed set of rulesets. Its integer value is the token width used
// for chaining and scoring: Normal chains on single letters, Hard on letter
// pairs.
type Mode int

const (
	ModeNormal Mode = 1
	ModeHard   Mode = 2
)

// TokenWidth is the number of leading/trailing characters relevant for
// chaining under this mode.
func (m Mode) TokenWidth() int {
	return int(m)
}

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeHard:
		return "hard"
	default:
		return "unknown"
	}
}

// Modes returns every game mode.
func Modes() []Mode {
	return []Mode{ModeNormal, ModeHard}
}
