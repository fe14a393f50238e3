package handlers

import (
	"log"
	"regexp"

	"github.com/bwmarrin/discordgo"
)

type reaction struct {
	pattern *regexp.Regexp
	emoji   string
}

// Puzzle-score reactions. First match wins, so the perfect-score entries
// sit above the broader ones for the same game.
var reactions = []reaction{
	{regexp.MustCompile(`(?i)wordle \d+ [1-6]/6`), "🧠"},
	{regexp.MustCompile(`(?i)wordle \d+ X/6`), "🐌"},
	{regexp.MustCompile(`(?i)daily duotrigordle #\d+\nguesses: \d+/37`), "🧠"},
	{regexp.MustCompile(`(?i)daily duotrigordle #\d+\nguesses: X/37`), "🐌"},
	{regexp.MustCompile(`(?i)scholardle \d+ [1-6]/6`), "🎓"},
	{regexp.MustCompile(`(?i)scholardle \d+ X/6`), "🐌"},
	{regexp.MustCompile(`(?i)worldle #\d+ [1-6]/6 \(100%\)`), "🗺️"},
	{regexp.MustCompile(`(?i)worldle #\d+ X/6 \(\d+%\)`), "🐌"},
	{regexp.MustCompile(`(?i)waffle\d+ 5/5`), "⭐"},
	{regexp.MustCompile(`(?i)waffle\d+ [0-5]/5`), "🧇"},
	{regexp.MustCompile(`(?i)waffle\d+ X/5`), "🐌"},
	{regexp.MustCompile(`(?i)#wafflesilverteam`), "🥈"},
	{regexp.MustCompile(`(?i)#wafflegoldteam`), "🥇"},
	{regexp.MustCompile(`(?i)#wafflecenturion`), "🌟"},
	{regexp.MustCompile(`(?i)#wafflemaster`), "🏆"},
	{regexp.MustCompile(`(?i)flowdle \d+ \[\d+ moves\]`), "🚰"},
	{regexp.MustCompile(`(?i)flowdle \d+ \[failed\]`), "🐌"},
	{regexp.MustCompile(`(?i)jurassic wordle \(game #\d+\) - [1-8] / 8`), "🦕"},
	{regexp.MustCompile(`(?i)jurassic wordle \(game #\d+\) - X / 8`), "🐌"},
	{regexp.MustCompile(`(?i)jungdle \(game #\d+\) - [1-8] / 8`), "🦍"},
	{regexp.MustCompile(`(?i)jungdle \(game #\d+\) - X / 8`), "🐌"},
	{regexp.MustCompile(`(?i)dogsdle \(game #\d+\) - [1-8] / 8`), "🐶"},
	{regexp.MustCompile(`(?i)dogsdle \(game #\d+\) - X / 8`), "🐌"},
	{regexp.MustCompile(`(?i)framed #\d+.*\n+.*🎥 [🟥⬛ ]*🟩`), "🎬"},
	{regexp.MustCompile(`(?i)framed #\d+.*\n+.*🎥 [🟥⬛ ]+$`), "🐌"},
	{regexp.MustCompile(`(?i)moviedle #[\d-]+.*\n+.*🎥[🟥⬜⬛️ ]*🟩`), "🎬"},
	{regexp.MustCompile(`(?i)moviedle #[\d-]+.*\n+.*🎥[🟥⬜⬛️ ]+$`), "🐌"},
	{regexp.MustCompile(`(?i)posterdle #[\d-]+.*\n+ ⌛ .*\n 🍿.+🟩`), "📯"},
	{regexp.MustCompile(`(?i)posterdle #[\d-]+.*\n+ ⌛ .*\n 🍿 [⬜️🟥⬛️ ]+$`), "🐌"},
	{regexp.MustCompile(`(?i)namethatride #[\d-]+.*\n+ ⌛ .*\n 🚗.+🟩`), "🚙"},
	{regexp.MustCompile(`(?i)namethatride #[\d-]+.*\n+ ⌛ .*\n 🚗 [⬜️🟥⬛️ ]+$`), "🐌"},
	{regexp.MustCompile(`(?i)heardle #\d+.*\n+.*🟩`), "👂"},
	{regexp.MustCompile(`(?i)heardle #\d+.*\n+🔇`), "🐌"},
	{regexp.MustCompile(`(?i)flaggle .*\n+.*\d+ pts`), "⛳"},
	{regexp.MustCompile(`(?i)flaggle .*\n+.*gave up`), "🐌"},
	{regexp.MustCompile(`(?i)#Polygonle \d+ [1-6]/6[^🟧]+?🟩`), "🔷"},
	{regexp.MustCompile(`(?i)#Polygonle \d+ [1-6]/6[^🟩]+?🟧`), "🔶"},
	{regexp.MustCompile(`(?i)#Polygonle \d+ X/6`), "🐌"},
	{regexp.MustCompile(`(?i)#GuessTheGame #\d+.*\n+.*🎮[🟥⬛ ]*🟩`), "🎮"},
	{regexp.MustCompile(`(?i)#GuessTheGame #\d+.*\n+.*🎮 [🟥⬛ ]+$`), "🐌"},
	{regexp.MustCompile(`(?i)https://squaredle\.app/ \d+/\d+:`), "🟩"},
	{regexp.MustCompile(`(?i)https://squaredle\.app/ .*[^📖]*📖`), "📖"},
	{regexp.MustCompile(`(?i)https://squaredle\.app/ .*[^⏱️]*⏱️`), "⏱️"},
	{regexp.MustCompile(`(?i)https://squaredle\.app/ .*[^🎯]*🎯`), "🎯"},
	{regexp.MustCompile(`(?i)https://squaredle\.app/ .*[^🔥]*🔥`), "🔥"},
	{regexp.MustCompile(`(?i)Episode #\d+\n+📺 .*🟩`), "📺"},
	{regexp.MustCompile(`(?i)Episode #\d+\n+📺 [^🟩]+$`), "🐌"},
}

// matchReaction returns the emoji for the first pattern matching content.
func matchReaction(content string) (string, bool) {
	for _, r := range reactions {
		if r.pattern.MatchString(content) {
			return r.emoji, true
		}
	}
	return "", false
}

// HandleMessageReactions reacts to recognised puzzle results with a single
// emoji per message.
func HandleMessageReactions(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	emoji, ok := matchReaction(m.Content)
	if !ok {
		return
	}

	if err := s.MessageReactionAdd(m.ChannelID, m.ID, emoji); err != nil {
		log.Printf("Failed to react to message %s: %v", m.ID, err)
	}
}
