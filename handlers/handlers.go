package handlers

import (
	"github.com/bwmarrin/discordgo"

	"meatball-bot/bot"
)

// Register wires the command and message handlers onto the bot session.
func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)

	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if handler, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			handler(s, i)
		}
	})

	b.Session.AddHandler(HandleMessageReactions)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"ping": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandlePing(s, i)
		},
		"meatball-save": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleMeatballSave(s, i, b.Store)
		},
		"meatball-lookup": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleMeatballLookup(s, i, b.Store)
		},
		"meatball-next": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleMeatballNext(s, i, b.Store)
		},
		"meatball-forget": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleMeatballForget(s, i, b.Store)
		},
		"meatball-role": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleMeatballRole(s, i, b.Store)
		},
		"meatball-channel": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleMeatballChannel(s, i, b.Store)
		},
		"meatball-status": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleStatus(s, i)
		},
	}
}
