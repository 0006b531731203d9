package discord

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/wickedwords/word-chain-bot/game"
	"github.com/wickedwords/word-chain-bot/metrics"
)

func parseID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (c Client) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	serverID, err := parseID(m.GuildID)
	if err != nil {
		return
	}
	channelID, err := parseID(m.ChannelID)
	if err != nil {
		return
	}
	authorID, err := parseID(m.Author.ID)
	if err != nil {
		return
	}
	metrics.MessagesReceived.Add(1)

	out := c.engine.ProcessMessage(context.Background(), game.Message{
		ServerID:  serverID,
		AuthorID:  authorID,
		ChannelID: channelID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	})

	switch out.Kind {
	case game.OutcomeAccepted:
		c.react(s, m, out.ReactionEmoji)
		if out.Milestone {
			c.send(s, m.ChannelID, fmt.Sprintf("🏆 The chain reached **%d** words! Keep it going.", out.Count))
		}
	case game.OutcomeSoftRejected:
		c.react(s, m, "⚠️")
		if reply := softRejectText(out); reply != "" {
			c.send(s, m.ChannelID, reply)
		}
	case game.OutcomeMistake:
		c.react(s, m, "❌")
		c.send(s, m.ChannelID, mistakeText(m.Author.Mention(), out))
	case game.OutcomeErrored:
		c.react(s, m, "🔁")
		c.send(s, m.ChannelID, "I couldn't check that word right now. Please send it again in a moment.")
	}
}

func softRejectText(out game.Outcome) string {
	switch out.Reason {
	case game.ReasonSingleLetter:
		return "Single letters don't count. Try a real word."
	case game.ReasonBlacklisted:
		return fmt.Sprintf("**%s** is not allowed here.", out.Word)
	case game.ReasonAlreadyUsed:
		return fmt.Sprintf("**%s** has already been used in this chain.", out.Word)
	default:
		return ""
	}
}

func mistakeText(mention string, out game.Outcome) string {
	var cause string
	switch out.Reason {
	case game.ReasonWrongMember:
		cause = "you can't play twice in a row"
	case game.ReasonWrongStart:
		cause = fmt.Sprintf("**%s** doesn't start with **%s**", out.Word, out.RequiredStart)
	case game.ReasonWordDoesNotExist:
		cause = fmt.Sprintf("**%s** isn't in any of this server's dictionaries", out.Word)
	default:
		cause = "that broke the rules"
	}
	msg := fmt.Sprintf("💥 %s broke the chain of **%d**: %s.", mention, out.BrokenChainLength, cause)
	if out.RequiredStart != "" {
		msg += fmt.Sprintf(" The next word still starts with **%s**.", out.RequiredStart)
	}
	return msg
}

// onMessageDelete reminds the channel of the current word when a game message
// disappears, so a deleted link in the chain can't confuse the next player.
func (c Client) onMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	c.chainReminder(s, m.GuildID, m.ChannelID, "A message was deleted.")
}

func (c Client) onMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	if m.Author != nil && m.Author.Bot {
		return
	}
	c.chainReminder(s, m.GuildID, m.ChannelID, "Editing a message doesn't change the chain.")
}

func (c Client) chainReminder(s *discordgo.Session, guildID, channelID, prefix string) {
	serverID, err := parseID(guildID)
	if err != nil {
		return
	}
	chID, err := parseID(channelID)
	if err != nil {
		return
	}

	for _, mode := range game.Modes() {
		st, ok := c.engine.GameState(serverID, mode)
		if !ok || st.ChannelID == nil || *st.ChannelID != chID {
			continue
		}
		if st.CurrentWord == nil || st.CurrentCount == 0 {
			return
		}
		c.send(s, channelID, fmt.Sprintf("%s The current word is still **%s** (count %d).", prefix, *st.CurrentWord, st.CurrentCount))
		return
	}
}

func (c Client) react(s *discordgo.Session, m *discordgo.MessageCreate, emoji string) {
	if emoji == "" {
		return
	}
	if err := s.MessageReactionAdd(m.ChannelID, m.ID, emoji); err != nil {
		c.logger.Warn("reaction failed", "channel_id", m.ChannelID, "error", err.Error())
		return
	}
	metrics.MessagesReacted.Add(1)
}

func (c Client) send(s *discordgo.Session, channelID, content string) {
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		c.logger.Warn("message send failed", "channel_id", channelID, "error", err.Error())
	}
}
