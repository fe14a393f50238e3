package handlers

import (
	"github.com/bwmarrin/discordgo"
)

// HandlePing answers the liveness check.
func HandlePing(s *discordgo.Session, i *discordgo.InteractionCreate) {
	respond(s, i, "pong")
}
