package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"meatball-bot/model"
	"meatball-bot/utils/database"
)

// Days per month, with February allowed its leap day. A Feb 29 meatball
// day simply never matches in non-leap years.
var daysInMonth = [12]int{31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func validMonthDay(month, day int) (string, bool) {
	if month < 1 || month > 12 {
		return "That's not a real month... 🤔", false
	}
	if day < 1 || day > daysInMonth[month-1] {
		return "That's not a real day of the month... 🤔", false
	}
	return "", true
}

func formatMonthDay(month, day int) string {
	return time.Date(2000, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format("January 2")
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
	if err != nil {
		log.Printf("Failed to respond to interaction: %v", err)
	}
}

func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func isAdmin(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

// guildOnly rejects interactions that arrive outside a guild. DM
// interactions carry no Member, only a User, so the meatball handlers
// cannot serve them.
func guildOnly(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if i.Member != nil {
		return true
	}
	respond(s, i, "This command only works in a server.")
	return false
}

// HandleMeatballSave saves the caller's meatball day.
func HandleMeatballSave(s *discordgo.Session, i *discordgo.InteractionCreate, store *database.Store) {
	if !guildOnly(s, i) {
		return
	}

	opts := optionMap(i)
	month := int(opts["month"].IntValue())
	day := int(opts["day"].IntValue())

	if msg, ok := validMonthDay(month, day); !ok {
		respond(s, i, msg)
		return
	}

	err := store.SaveMeatballDay(model.MeatballDay{
		GuildID: i.GuildID,
		UserID:  i.Member.User.ID,
		Month:   month,
		Day:     day,
	})
	if err != nil {
		log.Printf("Failed to save meatball day: %v", err)
		respond(s, i, "Something went wrong saving your meatball day.")
		return
	}

	respond(s, i, fmt.Sprintf("Saved %s as %s's meatball day.", formatMonthDay(month, day), i.Member.Mention()))
}

// HandleMeatballLookup shows a user's saved meatball day.
func HandleMeatballLookup(s *discordgo.Session, i *discordgo.InteractionCreate, store *database.Store) {
	if !guildOnly(s, i) {
		return
	}

	user := i.Member.User
	if opt, ok := optionMap(i)["user"]; ok {
		user = opt.UserValue(s)
	}

	day, err := store.MeatballDay(i.GuildID, user.ID)
	if err != nil {
		log.Printf("Failed to look up meatball day: %v", err)
		respond(s, i, "Something went wrong looking that up.")
		return
	}
	if day == nil {
		respond(s, i, fmt.Sprintf("I don't have %s's meatball day registered!", user.Mention()))
		return
	}

	respond(s, i, fmt.Sprintf("%s's meatball day is on %s.", user.Mention(), formatMonthDay(day.Month, day.Day)))
}

// nextOccurrence finds the soonest future occurrence among the saved days,
// checking this year and next so a date earlier in the calendar still
// resolves. Invalid dates (Feb 29 in off years) are skipped for that year.
func nextOccurrence(days []model.MeatballDay, now time.Time) (model.MeatballDay, time.Time, bool) {
	var bestDay model.MeatballDay
	var bestDate time.Time
	found := false

	for _, day := range days {
		for _, year := range []int{now.Year(), now.Year() + 1} {
			date := time.Date(year, time.Month(day.Month), day.Day, 0, 0, 0, 0, time.UTC)
			// time.Date normalises invalid dates; an exact match means the
			// date exists in that year.
			if int(date.Month()) != day.Month || date.Day() != day.Day {
				continue
			}
			if !date.After(now) {
				continue
			}
			if !found || date.Before(bestDate) {
				bestDay = day
				bestDate = date
				found = true
			}
		}
	}

	return bestDay, bestDate, found
}

// HandleMeatballNext announces the next upcoming meatball day in the guild.
func HandleMeatballNext(s *discordgo.Session, i *discordgo.InteractionCreate, store *database.Store) {
	if !guildOnly(s, i) {
		return
	}

	days, err := store.MeatballDays(i.GuildID)
	if err != nil {
		log.Printf("Failed to list meatball days: %v", err)
		respond(s, i, "Something went wrong looking that up.")
		return
	}

	day, date, ok := nextOccurrence(days, time.Now().UTC())
	if !ok {
		respond(s, i, "I have no meatball days saved!")
		return
	}

	respond(s, i, fmt.Sprintf("The next meatball day is <@%s>'s on %s! ⏰", day.UserID, date.Format("January 2, 2006")))
}

// HandleMeatballForget removes the caller's meatball day.
func HandleMeatballForget(s *discordgo.Session, i *discordgo.InteractionCreate, store *database.Store) {
	if !guildOnly(s, i) {
		return
	}

	if err := store.DeleteMeatballDay(i.GuildID, i.Member.User.ID); err != nil {
		log.Printf("Failed to delete meatball day: %v", err)
		respond(s, i, "Something went wrong forgetting your meatball day.")
		return
	}
	respond(s, i, "I've forgotten your meatball day.")
}

// HandleMeatballRole sets the guild's meatball role. Admin only, and roles
// that carry the administrator permission are refused.
func HandleMeatballRole(s *discordgo.Session, i *discordgo.InteractionCreate, store *database.Store) {
	if !guildOnly(s, i) {
		return
	}
	if !isAdmin(i) {
		respond(s, i, "Nice try.")
		return
	}

	role := optionMap(i)["role"].RoleValue(s, i.GuildID)
	if role.Permissions&discordgo.PermissionAdministrator != 0 {
		respond(s, i, "That role allows admin permissions, that's a bad idea.")
		return
	}

	if err := store.SetGuildRole(i.GuildID, role.ID); err != nil {
		log.Printf("Failed to set meatball role: %v", err)
		respond(s, i, "Something went wrong setting the role.")
		return
	}

	respond(s, i, fmt.Sprintf("I will now assign %s on meatball day.", role.Mention()))
}

// HandleMeatballChannel sets the guild's announcement channel. Admin only.
func HandleMeatballChannel(s *discordgo.Session, i *discordgo.InteractionCreate, store *database.Store) {
	if !guildOnly(s, i) {
		return
	}
	if !isAdmin(i) {
		respond(s, i, "Nice try.")
		return
	}

	channel := optionMap(i)["channel"].ChannelValue(s)

	if err := store.SetGuildChannel(i.GuildID, channel.ID); err != nil {
		log.Printf("Failed to set announcement channel: %v", err)
		respond(s, i, "Something went wrong setting the channel.")
		return
	}

	respond(s, i, fmt.Sprintf("I will announce meatball days in <#%s>.", channel.ID))
}
