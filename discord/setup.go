package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/wickedwords/word-chain-bot/database"
	"github.com/wickedwords/word-chain-bot/dictionary"
	"github.com/wickedwords/word-chain-bot/game"
	"github.com/wickedwords/word-chain-bot/logging"
)

type Client struct {
	Session      *discordgo.Session
	engine       *game.Engine
	states       *game.ServerStateManager
	db           *database.Postgres
	resolver     *dictionary.Resolver
	logger       *logging.Logger
	adminGuildID string
}

// Setup connects the bot, registers its slash commands and wires the event
// handlers. Commands in adminGuildID (when set) are operator-only.
func Setup(token, adminGuildID string, engine *game.Engine, states *game.ServerStateManager, db *database.Postgres, resolver *dictionary.Resolver, logger *logging.Logger) (Client, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return Client{}, fmt.Errorf("error creating discord session: %w", err)
	}
	if logger == nil {
		logger = logging.Default()
	}
	c := Client{
		Session:      session,
		engine:       engine,
		states:       states,
		db:           db,
		resolver:     resolver,
		logger:       logger,
		adminGuildID: adminGuildID,
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	session.AddHandler(c.onReady)
	session.AddHandler(c.onGuildCreate)
	session.AddHandler(c.onMessageCreate)
	session.AddHandler(c.onMessageDelete)
	session.AddHandler(c.onMessageUpdate)

	// opens websocket connection
	if err := session.Open(); err != nil {
		return Client{}, fmt.Errorf("error opening connection to discord: %w", err)
	}

	for _, v := range AddCommands() {
		if _, err := session.ApplicationCommandCreate(session.State.User.ID, "", v); err != nil {
			return Client{}, fmt.Errorf("error creating command %s: %w", v.Name, err)
		}
	}
	if adminGuildID != "" {
		for _, v := range AddAdminCommands() {
			if _, err := session.ApplicationCommandCreate(session.State.User.ID, adminGuildID, v); err != nil {
				return Client{}, fmt.Errorf("error creating admin command %s: %w", v.Name, err)
			}
		}
	}

	commandHandlers := c.MakeCommandHandlers()
	// after the commands are registered we can add the handlers
	session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if h, ok := commandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})

	return c, nil
}

func (c Client) onReady(s *discordgo.Session, r *discordgo.Ready) {
	c.logger.Info("discord session ready", "guilds", len(r.Guilds), "user", r.User.Username)
	c.announceRestoredChains(s)
}

// announceRestoredChains reminds every active game channel of its current
// word after a restart, so nobody has to scroll back.
func (c Client) announceRestoredChains(s *discordgo.Session) {
	for _, serverID := range c.serverIDs() {
		for _, mode := range game.Modes() {
			st, ok := c.engine.GameState(serverID, mode)
			if !ok || st.ChannelID == nil || st.CurrentWord == nil || st.CurrentCount == 0 {
				continue
			}
			msg := fmt.Sprintf("I'm back! The %s chain continues from **%s** (count %d).",
				mode.String(), *st.CurrentWord, st.CurrentCount)
			if _, err := s.ChannelMessageSend(formatID(*st.ChannelID), msg); err != nil {
				c.logger.Warn("restore announcement failed", "server_id", serverID, "error", err.Error())
			}
		}
	}
}

func (c Client) serverIDs() []int64 {
	c.states.Lock()
	defer c.states.Unlock()
	return c.states.ServerIDs()
}

func (c Client) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	serverID, err := parseID(g.ID)
	if err != nil {
		c.logger.Error("bad guild id", "guild_id", g.ID, "error", err.Error())
		return
	}
	if _, err := c.states.EnsureConfig(context.Background(), serverID); err != nil {
		c.logger.Error("error creating config for guild", "guild_id", g.ID, "error", err.Error())
	}
}
