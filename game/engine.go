package game

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/wickedwords/word-chain-bot/dictionary"
	"github.com/wickedwords/word-chain-bot/frequency"
	"github.com/wickedwords/word-chain-bot/karma"
	"github.com/wickedwords/word-chain-bot/language"
	"github.com/wickedwords/word-chain-bot/logging"
	"github.com/wickedwords/word-chain-bot/metrics"
)

// WordResolver decides whether an unknown word exists, per language.
type WordResolver interface {
	Resolve(ctx context.Context, word string, langs []language.Language) dictionary.Resolution
}

// RoleSyncer reconciles platform roles with game state. Both methods are
// best-effort: failures are logged by the implementation, never returned.
type RoleSyncer interface {
	SyncReliable(ctx context.Context, serverID int64)
	SyncFailed(ctx context.Context, serverID int64, failedMemberID *int64)
}

type noopRoleSyncer struct{}

func (noopRoleSyncer) SyncReliable(context.Context, int64)       {}
func (noopRoleSyncer) SyncFailed(context.Context, int64, *int64) {}

// Engine turns incoming messages into game outcomes. One ProcessMessage call
// is one turn; the state manager's lock serializes all of them.
type Engine struct {
	states       *ServerStateManager
	store        Store
	resolver     WordResolver
	roles        RoleSyncer
	matcher      *language.Matcher
	scores       *frequency.Set
	singlePlayer bool
	logger       *logging.Logger
}

func NewEngine(states *ServerStateManager, store Store, resolver WordResolver, roles RoleSyncer, matcher *language.Matcher, scores *frequency.Set, singlePlayer bool, logger *logging.Logger) *Engine {
	if roles == nil {
		roles = noopRoleSyncer{}
	}
	if matcher == nil {
		matcher = language.NewMatcher()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		states:       states,
		store:        store,
		resolver:     resolver,
		roles:        roles,
		matcher:      matcher,
		scores:       scores,
		singlePlayer: singlePlayer,
		logger:       logger,
	}
}

// SetRoleSyncer wires the role synchronizer once the platform session
// exists. Call during startup, before messages flow.
func (e *Engine) SetRoleSyncer(roles RoleSyncer) {
	e.states.Lock()
	defer e.states.Unlock()
	if roles != nil {
		e.roles = roles
	}
}

// ProcessMessage runs one message through the game. It holds the global lock
// from the first state read until commit, so two concurrent messages can
// never both be accepted against the same prior word.
func (e *Engine) ProcessMessage(ctx context.Context, msg Message) Outcome {
	turnID := uuid.New()
	start := time.Now()
	log := e.logger.WithFields(map[string]interface{}{
		"turn_id":   turnID.String(),
		"server_id": msg.ServerID,
	})

	e.states.Lock()
	out := e.process(ctx, log, msg)
	e.states.Unlock()

	metrics.TurnDuration.Observe(time.Since(start).Seconds())
	metrics.TurnOutcomeTotal.WithLabelValues(out.Kind.String()).Inc()

	if out.Kind != OutcomeIgnored {
		log.Info("processed message",
			"member_id", msg.AuthorID,
			"mode", out.Mode.String(),
			"word", out.Word,
			"outcome", out.Kind.String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return out
}

// process implements the per-message decision ladder. Caller holds the lock.
func (e *Engine) process(ctx context.Context, log *logging.Logger, msg Message) Outcome {
	cfg := e.states.Config(msg.ServerID)
	if cfg == nil || cfg.IsBanned {
		return Outcome{Kind: OutcomeIgnored}
	}
	mode, ok := cfg.ModeForChannel(msg.ChannelID)
	if !ok {
		return Outcome{Kind: OutcomeIgnored}
	}

	banned, err := e.store.IsMemberBanned(ctx, msg.AuthorID)
	if err != nil {
		log.Error("ban check failed", "error", err.Error())
		return Outcome{Kind: OutcomeErrored, Reason: ReasonBackendError, Mode: mode}
	}
	if banned {
		return Outcome{Kind: OutcomeIgnored, Mode: mode}
	}

	word := strings.ToLower(strings.TrimSpace(msg.Content))
	if !e.matcher.IsGameInput(word) {
		return Outcome{Kind: OutcomeIgnored, Mode: mode}
	}
	if utf8.RuneCountInString(word) == 1 {
		return Outcome{Kind: OutcomeSoftRejected, Reason: ReasonSingleLetter, Mode: mode, Word: word}
	}
	if !e.matcher.Matches(word, cfg.Languages) {
		return Outcome{Kind: OutcomeIgnored, Mode: mode}
	}

	// The member row must exist even when the word is then refused, so the
	// upsert gets its own committed transaction.
	if err := e.ensureMember(ctx, msg.ServerID, msg.AuthorID); err != nil {
		log.Error("member upsert failed", "error", err.Error())
		return Outcome{Kind: OutcomeErrored, Reason: ReasonBackendError, Mode: mode, Word: word}
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		log.Error("transaction begin failed", "error", err.Error())
		return Outcome{Kind: OutcomeErrored, Reason: ReasonBackendError, Mode: mode, Word: word}
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("rollback failed", "error", rbErr.Error())
			}
		}
	}()

	verdict, err := checkWord(ctx, tx, msg.ServerID, word, cfg.LanguageCodes())
	if err != nil {
		log.Error("word gate failed", "error", err.Error())
		return Outcome{Kind: OutcomeErrored, Reason: ReasonBackendError, Mode: mode, Word: word}
	}
	if verdict == VerdictBlacklisted {
		return Outcome{Kind: OutcomeSoftRejected, Reason: ReasonBlacklisted, Mode: mode, Word: word}
	}

	// Unknown words need the network. Start the lookup now so it overlaps
	// with the cheap checks; mistakes found below are charged before the
	// lookup result is even consulted.
	var resCh chan dictionary.Resolution
	if verdict == VerdictUnknown {
		resCh = make(chan dictionary.Resolution, 1)
		go func() {
			resCh <- e.resolver.Resolve(ctx, word, cfg.Languages)
		}()
	}

	st := cfg.State(mode)

	used, err := tx.IsWordUsed(ctx, msg.ServerID, int(mode), word)
	if err != nil {
		log.Error("used-word check failed", "error", err.Error())
		return Outcome{Kind: OutcomeErrored, Reason: ReasonBackendError, Mode: mode, Word: word}
	}
	if used {
		return Outcome{Kind: OutcomeSoftRejected, Reason: ReasonAlreadyUsed, Mode: mode, Word: word}
	}

	if !e.singlePlayer && st.LastMemberID != nil && *st.LastMemberID == msg.AuthorID {
		return e.mistake(ctx, log, tx, cfg, mode, msg, word, ReasonWrongMember, &committed)
	}

	width := mode.TokenWidth()
	if st.CurrentWord != nil {
		required := karma.TrailToken(*st.CurrentWord, width)
		if karma.LeadToken(word, width) != required {
			return e.mistake(ctx, log, tx, cfg, mode, msg, word, ReasonWrongStart, &committed)
		}
	}

	var confirmed []language.Language
	if resCh != nil {
		res := <-resCh
		switch res.Result {
		case dictionary.WordError:
			return Outcome{Kind: OutcomeErrored, Reason: ReasonBackendError, Mode: mode, Word: word}
		case dictionary.WordDoesNotExist:
			return e.mistake(ctx, log, tx, cfg, mode, msg, word, ReasonWordDoesNotExist, &committed)
		default:
			confirmed = res.Languages
		}
	}

	return e.accept(ctx, log, tx, cfg, mode, msg, word, confirmed, &committed)
}

// accept applies the accepted-turn transition. The database writes go first;
// the in-memory mirror mutates before SaveServerConfig needs it and is rolled
// back by snapshot if the commit fails.
func (e *Engine) accept(ctx context.Context, log *logging.Logger, tx Tx, cfg *ServerConfig, mode Mode, msg Message, word string, confirmed []language.Language, committed *bool) Outcome {
	width := mode.TokenWidth()
	hist := e.states.History(msg.ServerID, msg.AuthorID, mode)

	var table *frequency.Tables
	if e.scores != nil {
		table = e.scores.Table(cfg.PrimaryLanguage())
	}
	delta := karma.Calculate(word, width, table, hist.Words())

	if err := tx.ApplyAccept(ctx, msg.ServerID, msg.AuthorID, delta); err != nil {
		return e.errored(log, mode, word, errors.Wrap(err, "applying accepted turn"))
	}
	if err := tx.AddUsedWord(ctx, msg.ServerID, int(mode), word); err != nil {
		return e.errored(log, mode, word, errors.Wrap(err, "recording used word"))
	}
	for _, l := range confirmed {
		if err := tx.CacheWord(ctx, word, l.Code()); err != nil {
			return e.errored(log, mode, word, errors.Wrap(err, "caching word"))
		}
	}

	st := cfg.State(mode)
	prior := *st
	priorFailed := cfg.FailedMemberID
	priorCorrect := cfg.CorrectInputsByFailedMember

	cfg.UpdateCurrent(mode, msg.AuthorID, word)
	emoji := cfg.ReactionEmoji(mode)
	if emoji == "✅" || emoji == "☑️" {
		if we, ok := specialWordEmojis[word]; ok {
			emoji = we
		}
	}

	redeemed := false
	if cfg.FailedMemberID != nil && *cfg.FailedMemberID == msg.AuthorID {
		cfg.CorrectInputsByFailedMember++
		if cfg.CorrectInputsByFailedMember >= FailedMemberRedemption {
			cfg.FailedMemberID = nil
			cfg.CorrectInputsByFailedMember = 0
			redeemed = true
		}
	}

	if err := e.saveAndCommit(ctx, tx, cfg); err != nil {
		*st = prior
		cfg.FailedMemberID = priorFailed
		cfg.CorrectInputsByFailedMember = priorCorrect
		return e.errored(log, mode, word, err)
	}
	*committed = true

	hist.Append(word)
	metrics.WordsAccepted.Add(1)

	syncCtx := context.WithoutCancel(ctx)
	go e.roles.SyncReliable(syncCtx, msg.ServerID)
	if redeemed {
		log.Info("failed member redeemed", "member_id", msg.AuthorID)
		go e.roles.SyncFailed(syncCtx, msg.ServerID, nil)
	}

	return Outcome{
		Kind:          OutcomeAccepted,
		Mode:          mode,
		Word:          word,
		Count:         st.CurrentCount,
		HighScore:     st.HighScore,
		ReactionEmoji: emoji,
		Milestone:     st.CurrentCount%MilestoneInterval == 0,
	}
}

// mistake applies the chain-break transition shared by the turn-order,
// continuity and nonexistent-word violations.
func (e *Engine) mistake(ctx context.Context, log *logging.Logger, tx Tx, cfg *ServerConfig, mode Mode, msg Message, word string, reason Reason, committed *bool) Outcome {
	st := cfg.State(mode)
	broken := st.CurrentCount
	var required string
	if st.CurrentWord != nil {
		required = karma.TrailToken(*st.CurrentWord, mode.TokenWidth())
	}

	if err := tx.ApplyMistake(ctx, msg.ServerID, msg.AuthorID, MistakePenalty); err != nil {
		return e.errored(log, mode, word, errors.Wrap(err, "applying mistake"))
	}
	if err := tx.ClearUsedWords(ctx, msg.ServerID, int(mode)); err != nil {
		return e.errored(log, mode, word, errors.Wrap(err, "clearing used words"))
	}

	prior := *st
	priorFailed := cfg.FailedMemberID
	priorCorrect := cfg.CorrectInputsByFailedMember
	cfg.FailChain(mode, msg.AuthorID)

	if err := e.saveAndCommit(ctx, tx, cfg); err != nil {
		*st = prior
		cfg.FailedMemberID = priorFailed
		cfg.CorrectInputsByFailedMember = priorCorrect
		return e.errored(log, mode, word, err)
	}
	*committed = true

	metrics.ChainsBroken.Add(1)
	go e.roles.SyncFailed(context.WithoutCancel(ctx), msg.ServerID, cfg.FailedMemberID)

	return Outcome{
		Kind:              OutcomeMistake,
		Reason:            reason,
		Mode:              mode,
		Word:              word,
		BrokenChainLength: broken,
		RequiredStart:     required,
	}
}

func (e *Engine) saveAndCommit(ctx context.Context, tx Tx, cfg *ServerConfig) error {
	if err := tx.SaveServerConfig(ctx, cfg.Row()); err != nil {
		return errors.Wrap(err, "saving server config")
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing turn")
	}
	metrics.ServerConfigSaveCount.Add(1)
	return nil
}

func (e *Engine) errored(log *logging.Logger, mode Mode, word string, err error) Outcome {
	log.Error("turn failed", "error", err.Error())
	return Outcome{Kind: OutcomeErrored, Reason: ReasonBackendError, Mode: mode, Word: word}
}

func (e *Engine) ensureMember(ctx context.Context, serverID, memberID int64) error {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "beginning member upsert")
	}
	if err := tx.EnsureMember(ctx, serverID, memberID); err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "upserting member")
	}
	return errors.Wrap(tx.Commit(), "committing member upsert")
}
