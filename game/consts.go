package game

const (
	// HistoryLength bounds the recent-word history used by the karma scorer.
	HistoryLength = 5

	// MistakePenalty is the fixed karma loss for breaking the chain.
	MistakePenalty = 5.0

	// ReliableRoleKarmaThreshold and ReliableRoleAccuracyThreshold gate the
	// reliable role.
	ReliableRoleKarmaThreshold    = 50.0
	ReliableRoleAccuracyThreshold = 0.99

	// FailedMemberRedemption is the number of consecutive correct inputs that
	// clears a member's failed status.
	FailedMemberRedemption = 30

	// MilestoneInterval is how often the chain length earns a callout.
	MilestoneInterval = 100

	// MaxLanguages bounds how many languages a server may enable.
	MaxLanguages = 2

	// LeaderboardLimit is the number of entries shown on leaderboards.
	LeaderboardLimit = 10
)

// specialWordEmojis overrides the reaction for a handful of words.
var specialWordEmojis = map[string]string{
	"nice":    "👌",
	"chain":   "⛓️",
	"word":    "📖",
	"apple":   "🍎",
	"banana":  "🍌",
	"dragon":  "🐉",
	"unicorn": "🦄",
}
