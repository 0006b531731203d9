package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/wickedwords/word-chain-bot/dictionary"
	"github.com/wickedwords/word-chain-bot/game"
	"github.com/wickedwords/word-chain-bot/language"
	"github.com/wickedwords/word-chain-bot/metrics"
)

// SlashCommands available in every server
func AddCommands() []*discordgo.ApplicationCommand {
	modeChoices := []*discordgo.ApplicationCommandOptionChoice{
		{Name: "normal", Value: "normal"},
		{Name: "hard", Value: "hard"},
	}
	wordOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "word",
		Description: "The word",
		Required:    true,
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "help",
			Description: "How to play the word chain game",
		},
		{
			Name:        "chain",
			Description: "Show the current chain for every game mode",
		},
		{
			Name:        "check_word",
			Description: "Check whether a word exists in this server's dictionaries",
			Options:     []*discordgo.ApplicationCommandOption{wordOption},
		},
		{
			Name:        "stats",
			Description: "Show a member's game stats",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "The member to look up, defaults to you",
				},
			},
		},
		{
			Name:        "leaderboard",
			Description: "Show the top players",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "metric",
					Description: "What to rank by",
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "score", Value: "score"},
						{Name: "karma", Value: "karma"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "global",
					Description: "Rank across all servers instead of this one",
				},
			},
		},
		{
			Name:        "top_servers",
			Description: "Show the servers with the longest chains ever",
		},
		{
			Name:        "set_channel",
			Description: "Wire a game mode to this channel (admins only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "mode",
					Description: "The game mode",
					Required:    true,
					Choices:     modeChoices,
				},
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "The channel to play in, omit to stop playing this mode",
				},
			},
		},
		{
			Name:        "set_reliable_role",
			Description: "Role granted to high-karma, high-accuracy players (admins only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "The role, omit to clear",
				},
			},
		},
		{
			Name:        "set_failed_role",
			Description: "Role marking whoever last broke the chain (admins only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "The role, omit to clear",
				},
			},
		},
		{
			Name:        "set_languages",
			Description: "Set the dictionaries used for this server (admins only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "languages",
					Description: "Up to two ISO codes, e.g. \"en de\"",
					Required:    true,
				},
			},
		},
		{
			Name:        "blacklist_word",
			Description: "Forbid a word in this server (admins only)",
			Options:     []*discordgo.ApplicationCommandOption{wordOption},
		},
		{
			Name:        "unblacklist_word",
			Description: "Allow a blacklisted word again (admins only)",
			Options:     []*discordgo.ApplicationCommandOption{wordOption},
		},
		{
			Name:        "whitelist_word",
			Description: "Always accept a word in this server (admins only)",
			Options:     []*discordgo.ApplicationCommandOption{wordOption},
		},
		{
			Name:        "unwhitelist_word",
			Description: "Remove a word from the whitelist (admins only)",
			Options:     []*discordgo.ApplicationCommandOption{wordOption},
		},
		{
			Name:        "list_words",
			Description: "Show this server's blacklist and whitelist",
		},
		{
			Name:        "clean_server",
			Description: "Wipe chains, stats and word lists for this server (admins only)",
		},
	}
}

// AddAdminCommands are only registered in the operator guild.
func AddAdminCommands() []*discordgo.ApplicationCommand {
	idOption := func(name, description string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        name,
			Description: description,
			Required:    true,
		}
	}
	return []*discordgo.ApplicationCommand{
		{
			Name:        "ban_member",
			Description: "Block a member from playing in every server",
			Options:     []*discordgo.ApplicationCommandOption{idOption("member_id", "The member's id")},
		},
		{
			Name:        "unban_member",
			Description: "Lift a global member ban",
			Options:     []*discordgo.ApplicationCommandOption{idOption("member_id", "The member's id")},
		},
		{
			Name:        "ban_server",
			Description: "Stop playing in a server without deleting its data",
			Options:     []*discordgo.ApplicationCommandOption{idOption("server_id", "The server's id")},
		},
		{
			Name:        "unban_server",
			Description: "Resume playing in a banned server",
			Options:     []*discordgo.ApplicationCommandOption{idOption("server_id", "The server's id")},
		},
		{
			Name:        "clean_user",
			Description: "Wipe a member's stats in every server",
			Options:     []*discordgo.ApplicationCommandOption{idOption("member_id", "The member's id")},
		},
	}
}

type commandHandler func(s *discordgo.Session, i *discordgo.InteractionCreate) error

// MakeCommandHandlers returns a map of command names to their respective functions
func (c Client) MakeCommandHandlers() map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	handlers := map[string]commandHandler{
		"help":              c.help,
		"chain":             c.chain,
		"check_word":        c.checkWord,
		"stats":             c.stats,
		"leaderboard":       c.leaderboard,
		"top_servers":       c.topServers,
		"set_channel":       c.requireManager(c.setChannel),
		"set_reliable_role": c.requireManager(c.setReliableRole),
		"set_failed_role":   c.requireManager(c.setFailedRole),
		"set_languages":     c.requireManager(c.setLanguages),
		"blacklist_word":    c.requireManager(c.blacklistWord),
		"unblacklist_word":  c.requireManager(c.unblacklistWord),
		"whitelist_word":    c.requireManager(c.whitelistWord),
		"unwhitelist_word":  c.requireManager(c.unwhitelistWord),
		"list_words":        c.listWords,
		"clean_server":      c.requireManager(c.cleanServer),
		"ban_member":        c.banMember,
		"unban_member":      c.unbanMember,
		"ban_server":        c.banServer,
		"unban_server":      c.unbanServer,
		"clean_user":        c.cleanUser,
	}

	wrapped := make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate), len(handlers))
	for name, h := range handlers {
		wrapped[name] = c.instrument(name, h)
	}
	return wrapped
}

func (c Client) instrument(name string, h commandHandler) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		start := time.Now()
		metrics.DiscordCommandTotal.WithLabelValues(name).Inc()
		if err := h(s, i); err != nil {
			metrics.DiscordCommandErrors.WithLabelValues(name).Inc()
			c.logger.Error("command failed", "command", name, "error", err.Error())
		}
		metrics.DiscordCommandDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
}

// requireManager rejects the command unless the caller can manage the server.
func (c Client) requireManager(h commandHandler) commandHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		if i.Member == nil || i.Member.Permissions&discordgo.PermissionManageServer == 0 {
			return c.respondEphemeral(s, i, "You need the Manage Server permission for that.")
		}
		return h(s, i)
	}
}

func (c Client) respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
}

func (c Client) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func (c Client) respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}},
	})
}

func options(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

func guildID(i *discordgo.InteractionCreate) (int64, error) {
	if i.GuildID == "" {
		return 0, fmt.Errorf("command only works in a server")
	}
	return parseID(i.GuildID)
}

func modeFromOption(value string) game.Mode {
	if value == "hard" {
		return game.ModeHard
	}
	return game.ModeNormal
}

func (c Client) chain(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	serverID, err := guildID(i)
	if err != nil {
		return c.respondEphemeral(s, i, err.Error())
	}

	embed := &discordgo.MessageEmbed{Title: "Word chains"}
	for _, mode := range game.Modes() {
		st, ok := c.engine.GameState(serverID, mode)
		if !ok {
			continue
		}
		value := "not configured"
		if st.ChannelID != nil {
			if st.CurrentWord != nil && st.CurrentCount > 0 {
				used, err := c.db.UsedWordCount(context.Background(), serverID, int(mode))
				if err != nil {
					used = st.CurrentCount
				}
				value = fmt.Sprintf("current word **%s**, count %d, high score %d, %d words used",
					*st.CurrentWord, st.CurrentCount, st.HighScore, used)
			} else {
				value = fmt.Sprintf("waiting for a first word, high score %d", st.HighScore)
			}
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  strings.ToUpper(mode.String()[:1]) + mode.String()[1:],
			Value: value,
		})
	}
	return c.respondEmbed(s, i, embed)
}

func (c Client) checkWord(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	serverID, err := guildID(i)
	if err != nil {
		return c.respondEphemeral(s, i, err.Error())
	}
	word := strings.ToLower(strings.TrimSpace(options(i)["word"].StringValue()))

	ctx, cancel := context.WithTimeout(context.Background(), 2*dictionary.LookupTimeout)
	defer cancel()
	res := c.resolver.Resolve(ctx, word, c.states.EnabledLanguages(serverID))

	switch res.Result {
	case dictionary.WordExists:
		codes := make([]string, len(res.Languages))
		for n, l := range res.Languages {
			codes[n] = l.Code()
		}
		return c.respondEphemeral(s, i, fmt.Sprintf("✅ **%s** exists (%s).", word, strings.Join(codes, ", ")))
	case dictionary.WordDoesNotExist:
		return c.respondEphemeral(s, i, fmt.Sprintf("❌ **%s** isn't in any enabled dictionary.", word))
	default:
		return c.respondEphemeral(s, i, "The dictionaries aren't answering right now, try again later.")
	}
}

func (c Client) stats(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	serverID, err := guildID(i)
	if err != nil {
		return c.respondEphemeral(s, i, err.Error())
	}

	target := i.Member.User
	if opt, ok := options(i)["member"]; ok {
		target = opt.UserValue(s)
	}
	memberID, err := parseID(target.ID)
	if err != nil {
		return c.respondEphemeral(s, i, "That doesn't look like a member.")
	}

	ctx := context.Background()
	member, err := c.db.GetMember(ctx, serverID, memberID)
	if err != nil {
		_ = c.respondEphemeral(s, i, "Couldn't load those stats, try again later.")
		return err
	}
	if member == nil {
		return c.respondEphemeral(s, i, fmt.Sprintf("%s hasn't played yet.", target.Username))
	}

	byScore, byKarma, err := c.db.MemberRanks(ctx, serverID, *member)
	if err != nil {
		_ = c.respondEphemeral(s, i, "Couldn't load those stats, try again later.")
		return err
	}

	accuracy := 0.0
	if member.Correct+member.Wrong > 0 {
		accuracy = float64(member.Correct) / float64(member.Correct+member.Wrong) * 100
	}
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Stats for %s", target.Username),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Score", Value: fmt.Sprintf("%d (#%d)", member.Score, byScore), Inline: true},
			{Name: "Karma", Value: fmt.Sprintf("%.1f (#%d)", member.Karma, byKarma), Inline: true},
			{Name: "Accuracy", Value: fmt.Sprintf("%.1f%% (%d✅ %d❌)", accuracy, member.Correct, member.Wrong), Inline: true},
		},
	}
	return c.respondEmbed(s, i, embed)
}

func (c Client) leaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	serverID, err := guildID(i)
	if err != nil {
		return c.respondEphemeral(s, i, err.Error())
	}

	opts := options(i)
	metric := "score"
	if opt, ok := opts["metric"]; ok {
		metric = opt.StringValue()
	}
	global := false
	if opt, ok := opts["global"]; ok {
		global = opt.BoolValue()
	}

	ctx := context.Background()
	var rows []dbEntry
	var title string
	if global {
		title = fmt.Sprintf("Global top %d by %s", game.LeaderboardLimit, metric)
		raw, err := c.db.TopMembersGlobal(ctx, metric, game.LeaderboardLimit)
		if err != nil {
			_ = c.respondEphemeral(s, i, "Couldn't load the leaderboard, try again later.")
			return err
		}
		for _, e := range raw {
			rows = append(rows, dbEntry{e.MemberID, e.Value})
		}
	} else {
		title = fmt.Sprintf("Top %d by %s", game.LeaderboardLimit, metric)
		raw, err := c.db.TopMembers(ctx, serverID, metric, game.LeaderboardLimit)
		if err != nil {
			_ = c.respondEphemeral(s, i, "Couldn't load the leaderboard, try again later.")
			return err
		}
		for _, e := range raw {
			rows = append(rows, dbEntry{e.MemberID, e.Value})
		}
	}

	if len(rows) == 0 {
		return c.respondEphemeral(s, i, "Nobody has played yet.")
	}

	var b strings.Builder
	for n, e := range rows {
		format := "%d. <@%d> — %.0f\n"
		if metric == "karma" {
			format = "%d. <@%d> — %.1f\n"
		}
		fmt.Fprintf(&b, format, n+1, e.memberID, e.value)
	}
	return c.respondEmbed(s, i, &discordgo.MessageEmbed{Title: title, Description: b.String()})
}

func (c Client) topServers(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	servers, err := c.db.TopServersByHighScore(context.Background(), game.LeaderboardLimit)
	if err != nil {
		_ = c.respondEphemeral(s, i, "Couldn't load the server leaderboard, try again later.")
		return err
	}
	if len(servers) == 0 {
		return c.respondEphemeral(s, i, "No chains recorded yet.")
	}

	var b strings.Builder
	for n, srv := range servers {
		fmt.Fprintf(&b, "%d. server %d — high score %d\n", n+1, srv.ServerID, srv.HighScore)
	}
	return c.respondEmbed(s, i, &discordgo.MessageEmbed{Title: "Longest chains anywhere", Description: b.String()})
}

func (c Client) setChannel(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	serverID, err := guildID(i)
	if err != nil {
		return c.respondEphemeral(s, i, err.Error())
	}
	opts := options(i)
	mode := modeFromOption(opts["mode"].StringValue())

	var channelID *int64
	if opt, ok := opts["channel"]; ok {
		ch := opt.ChannelValue(s)
		id, err := parseID(ch.ID)
		if err != nil {
			return c.respondEphemeral(s, i, "That doesn't look like a channel.")
		}
		channelID = &id
	}

	if err := c.engine.SetChannel(context.Background(), serverID, mode, channelID); err != nil {
		_ = c.respondEphemeral(s, i, "Couldn't save that, try again later.")
		return err
	}
	if channelID == nil {
		return c.respond(s, i, fmt.Sprintf("The %s game is now off.", mode))
	}
	return c.respond(s, i, fmt.Sprintf("The %s game now lives in <#%d>. Send a word to start!", mode, *channelID))
}

func (c Client) setReliableRole(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return c.setRole(s, i, "reliable", c.engine.SetReliableRole)
}

func (c Client) setFailedRole(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return c.setRole(s, i, "failed", c.engine.SetFailedRole)
}

func (c Client) setRole(s *discordgo.Session, i *discordgo.InteractionCreate, kind string, set func(context.Context, int64, *int64) error) error {
	serverID, err := guildID(i)
	if err != nil {
		return c.respondEphemeral(s, i, err.Error())
	}

	var roleID *int64
	if opt, ok := options(i)["role"]; ok {
		role := opt.RoleValue(s, i.GuildID)
		id, err := parseID(role.ID)
		if err != nil {
			return c.respondEphemeral(s, i, "That doesn't look like a role.")
		}
		roleID = &id
	}

	if err := set(context.Background(), serverID, roleID); err != nil {
		_ = c.respondEphemeral(s, i, "Couldn't save that, try again later.")
		return err
	}
	if roleID == nil {
		return c.respond(s, i, fmt.Sprintf("The %s role is now cleared.", kind))
	}
	return c.respond(s, i, fmt.Sprintf("The %s role is now <@&%d>.", kind, *roleID))
}

func (c Client) setLanguages(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	serverID, err := guildID(i)
	if err != nil {
		return c.respondEphemeral(s, i, err.Error())
	}
	codes := strings.FieldsFunc(strings.ToLower(options(i)["languages"].StringValue()), func(r rune) bool {
		return r == ' ' || r == ','
	})

	if err := c.engine.SetLanguages(context.Background(), serverID, codes); err != nil {
		return c.respondEphemeral(s, i, fmt.Sprintf("Couldn't set languages: %v", err))
	}
	names := make([]string, len(codes))
	for n, code := range codes {
		if l, err := language.FromCode(code); err == nil {
			names[n] = l.Code()
		}
	}
	return c.respond(s, i, fmt.Sprintf("This server now plays in: %s.", strings.Join(names, ", ")))
}

func (c Client) blacklistWord(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return c.wordListCommand(s, i, "is now blacklisted", c.engine.BlacklistWord)
}

func (c Client) unblacklistWord(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return c.wordListCommand(s, i, "is no longer blacklisted", c.engine.UnblacklistWord)
}

func (c Client) whitelistWord(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return c.wordListCommand(s, i, "is now whitelisted", c.engine.WhitelistWord)
}

func (c Client) unwhitelistWord(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return c.wordListCommand(s, i, "is no longer whitelisted", c.engine.UnwhitelistWord)
}

func (c Client) wordListCommand(s *discordgo.Session, i *discordgo.InteractionCreate, verdict string, apply func(context.Context, int64, string) error) error {
	serverID, err := guildID(i)
	if err != nil {
		return c.respondEphemeral(s, i, err.Error())
	}
	word := strings.ToLower(strings.TrimSpace(options(i)["word"].StringValue()))
	if word == "" {
		return c.respondEphemeral(s, i, "Give me a word.")
	}

	if err := apply(context.Background(), serverID, word); err != nil {
		_ = c.respondEphemeral(s, i, "Couldn't save that, try again later.")
		return err
	}
	return c.respond(s, i, fmt.Sprintf("**%s** %s.", word, verdict))
}

func (c Client) listWords(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	serverID, err := guildID(i)
	if err != nil {
		return c.respondEphemeral(s, i, err.Error())
	}

	ctx := context.Background()
	blacklist, err := c.db.ListBlacklist(ctx, serverID)
	if err != nil {
		_ = c.respondEphemeral(s, i, "Couldn't load the lists, try again later.")
		return err
	}
	whitelist, err := c.db.ListWhitelist(ctx, serverID)
	if err != nil {
		_ = c.respondEphemeral(s, i, "Couldn't load the lists, try again later.")
		return err
	}

	format := func(words []string) string {
		if len(words) == 0 {
			return "empty"
		}
		return strings.Join(words, ", ")
	}
	embed := &discordgo.MessageEmbed{
		Title: "Server word lists",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Blacklist", Value: format(blacklist)},
			{Name: "Whitelist", Value: format(whitelist)},
		},
	}
	return c.respondEmbed(s, i, embed)
}

func (c Client) cleanServer(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	serverID, err := guildID(i)
	if err != nil {
		return c.respondEphemeral(s, i, err.Error())
	}

	removed, err := c.engine.CleanServer(context.Background(), serverID)
	if err != nil {
		_ = c.respondEphemeral(s, i, "Couldn't clean the server, try again later.")
		return err
	}
	return c.respond(s, i, fmt.Sprintf("Fresh start: chains reset and %d rows removed.", removed))
}

type dbEntry struct {
	memberID int64
	value    float64
}
