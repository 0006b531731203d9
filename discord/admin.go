package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// requireAdminGuild refuses operator commands outside the operator guild.
// They are only registered there, but re-registration bugs shouldn't turn
// into privilege escalations.
func (c Client) requireAdminGuild(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	return c.adminGuildID != "" && i.GuildID == c.adminGuildID
}

func (c Client) banMember(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if !c.requireAdminGuild(s, i) {
		return c.respondEphemeral(s, i, "Not here.")
	}
	memberID, err := parseID(options(i)["member_id"].StringValue())
	if err != nil {
		return c.respondEphemeral(s, i, "That doesn't look like a member id.")
	}
	if err := c.engine.BanMember(context.Background(), memberID); err != nil {
		_ = c.respondEphemeral(s, i, "Couldn't ban that member.")
		return err
	}
	return c.respond(s, i, "Member banned from playing everywhere.")
}

func (c Client) unbanMember(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if !c.requireAdminGuild(s, i) {
		return c.respondEphemeral(s, i, "Not here.")
	}
	memberID, err := parseID(options(i)["member_id"].StringValue())
	if err != nil {
		return c.respondEphemeral(s, i, "That doesn't look like a member id.")
	}
	if err := c.engine.UnbanMember(context.Background(), memberID); err != nil {
		_ = c.respondEphemeral(s, i, "Couldn't unban that member.")
		return err
	}
	return c.respond(s, i, "Member can play again.")
}

func (c Client) banServer(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return c.setServerBan(s, i, true, "The bot will ignore that server from now on.")
}

func (c Client) unbanServer(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return c.setServerBan(s, i, false, "The bot plays in that server again.")
}

func (c Client) setServerBan(s *discordgo.Session, i *discordgo.InteractionCreate, banned bool, reply string) error {
	if !c.requireAdminGuild(s, i) {
		return c.respondEphemeral(s, i, "Not here.")
	}
	serverID, err := parseID(options(i)["server_id"].StringValue())
	if err != nil {
		return c.respondEphemeral(s, i, "That doesn't look like a server id.")
	}
	if err := c.engine.BanServer(context.Background(), serverID, banned); err != nil {
		_ = c.respondEphemeral(s, i, "Couldn't update that server.")
		return err
	}
	return c.respond(s, i, reply)
}

func (c Client) cleanUser(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if !c.requireAdminGuild(s, i) {
		return c.respondEphemeral(s, i, "Not here.")
	}
	memberID, err := parseID(options(i)["member_id"].StringValue())
	if err != nil {
		return c.respondEphemeral(s, i, "That doesn't look like a member id.")
	}
	removed, err := c.engine.CleanUser(context.Background(), memberID)
	if err != nil {
		_ = c.respondEphemeral(s, i, "Couldn't clean that member.")
		return err
	}
	return c.respond(s, i, "Removed "+formatID(removed)+" member rows.")
}
