package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"meatball-bot/commands"
)

func (b *Bot) Run() {
	err := b.Session.Open()
	if err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	b.registerCommands()
	b.scheduler.Start()

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}

// registerCommands overwrites the command set for the testing guild when
// one is configured, or globally otherwise.
func (b *Bot) registerCommands() {
	scope := b.Config.TestingGuildID
	if scope == "" {
		log.Println("Registering global commands...")
	} else {
		log.Printf("Registering commands for testing guild %s...", scope)
	}

	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, scope, commands.All())
	if err != nil {
		log.Printf("cannot register commands: %v", err)
		return
	}
	b.RegisteredCommands = registered
	log.Printf("Registered %d commands.", len(registered))
}
