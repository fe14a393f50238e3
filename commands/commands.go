package commands

import (
	"github.com/bwmarrin/discordgo"
)

// All returns the full slash command set for the bot. The meatball
// commands are guild-only: they read the invoking member, which does not
// exist on DM interactions.
func All() []*discordgo.ApplicationCommand {
	guildOnly := false

	return []*discordgo.ApplicationCommand{
		{
			Name:        "ping",
			Description: "Check bot liveness.",
		},
		{
			Name:         "meatball-save",
			DMPermission: &guildOnly,
			Description:  "Add your meatball day to the database.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "month",
					Description: "The month of your meatball day.",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "day",
					Description: "The day of your meatball day.",
					Required:    true,
				},
			},
		},
		{
			Name:         "meatball-lookup",
			DMPermission: &guildOnly,
			Description:  "Find a user's meatball day.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to look up (defaults to you).",
					Required:    false,
				},
			},
		},
		{
			Name:         "meatball-next",
			DMPermission: &guildOnly,
			Description:  "Find the next occurring meatball day.",
		},
		{
			Name:         "meatball-forget",
			DMPermission: &guildOnly,
			Description:  "Remove your meatball day from the database.",
		},
		{
			Name:         "meatball-role",
			DMPermission: &guildOnly,
			Description:  "Set the role to assign on meatball day.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "The role to assign on meatball day.",
					Required:    true,
				},
			},
		},
		{
			Name:         "meatball-channel",
			DMPermission: &guildOnly,
			Description:  "Set the channel to use for announcements.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "The channel to use for announcements.",
					Required:    true,
				},
			},
		},
		{
			Name:        "meatball-status",
			Description: "Show bot and system status.",
		},
	}
}
