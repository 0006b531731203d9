package game

import "time"

// Message is one incoming chat message, as handed over by the platform layer.
type Message struct {
	ServerID  int64
	AuthorID  int64
	ChannelID int64
	Content   string
	Timestamp time.Time
}

// OutcomeKind classifies what a message did to the game.
type OutcomeKind int

const (
	// OutcomeIgnored means the message was not game input at all: wrong
	// channel, banned member, or content that does not look like a word.
	OutcomeIgnored OutcomeKind = iota
	// OutcomeAccepted means the word extended the chain.
	OutcomeAccepted
	// OutcomeSoftRejected means the word was refused but the chain is intact
	// and no stats changed.
	OutcomeSoftRejected
	// OutcomeMistake means the chain broke and the author was penalized.
	OutcomeMistake
	// OutcomeErrored means the backend could not decide; the turn does not
	// count either way.
	OutcomeErrored
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeSoftRejected:
		return "soft_rejected"
	case OutcomeMistake:
		return "mistake"
	case OutcomeErrored:
		return "errored"
	default:
		return "ignored"
	}
}

// Reason narrows an outcome for user feedback.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonSingleLetter
	ReasonBlacklisted
	ReasonAlreadyUsed
	ReasonWrongMember
	ReasonWrongStart
	ReasonWordDoesNotExist
	ReasonBackendError
)

// Outcome is the result of processing one message.
type Outcome struct {
	Kind   OutcomeKind
	Reason Reason
	Mode   Mode
	Word   string

	// Accepted turns
	Count         int
	HighScore     int
	ReactionEmoji string
	Milestone     bool

	// Mistakes
	BrokenChainLength int
	RequiredStart     string
}
