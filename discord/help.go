package discord

import (
	"github.com/bwmarrin/discordgo"
)

const helpText = "Chain words together: every word must start with the last letter of the previous word " +
	"(the last two letters in hard mode). No repeats, no playing twice in a row, and the word must exist " +
	"in one of this server's dictionaries. Breaking any of those rules resets the chain!\n\n" +
	"Use /chain to see where the game stands, /check_word to test a word safely, /stats for your record " +
	"and /leaderboard for the standings. Admins wire up channels with /set_channel."

func (c Client) help(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return c.respondEphemeral(s, i, helpText)
}
