package tasks

import (
	"github.com/bwmarrin/discordgo"
)

// SessionDirectory adapts a discordgo session to the Directory interface.
// Discord's role add and remove endpoints are idempotent, so retried
// passes can repeat them safely.
type SessionDirectory struct {
	Session *discordgo.Session
}

func (d *SessionDirectory) GrantRole(guildID, userID, roleID string) error {
	return d.Session.GuildMemberRoleAdd(guildID, userID, roleID)
}

func (d *SessionDirectory) RevokeRole(guildID, userID, roleID string) error {
	return d.Session.GuildMemberRoleRemove(guildID, userID, roleID)
}

// DisplayName returns the member's nickname or username, falling back to
// the raw user ID when the lookup fails.
func (d *SessionDirectory) DisplayName(guildID, userID string) string {
	member, err := d.Session.GuildMember(guildID, userID)
	if err != nil {
		return userID
	}
	if member.Nick != "" {
		return member.Nick
	}
	return member.User.Username
}

// SessionNotifier posts announcements through a discordgo session.
type SessionNotifier struct {
	Session *discordgo.Session
}

func (n *SessionNotifier) SendMessage(channelID, content string) error {
	_, err := n.Session.ChannelMessageSend(channelID, content)
	return err
}
