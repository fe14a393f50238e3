package bot

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"meatball-bot/model"
	"meatball-bot/tasks"
	"meatball-bot/utils/database"
)

type Bot struct {
	Session            *discordgo.Session
	Store              *database.Store
	Config             *model.Config
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	RegisteredCommands []*discordgo.ApplicationCommand
	scheduler          *Scheduler
}

func New(cfg *model.Config, store *database.Store) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	b := &Bot{
		Session: dg,
		Store:   store,
		Config:  cfg,
	}

	reconciler := tasks.NewReconciler(
		store,
		&tasks.SessionDirectory{Session: dg},
		&tasks.SessionNotifier{Session: dg},
		cfg.GrantRetention,
	)
	b.scheduler = NewScheduler(reconciler.Run, cfg.ReconcileInterval)

	return b, nil
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.scheduler.Stop()
	b.Session.Close()
}
