package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"

	"meatball-bot/utils/database"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// newStubSession returns a session whose HTTP client answers every request
// with an empty success body, so handlers can respond without a live API.
func newStubSession(t *testing.T) *discordgo.Session {
	t.Helper()

	s, err := discordgo.New("Bot test-token")
	require.NoError(t, err)

	s.Client = &http.Client{
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader("{}")),
				Header:     make(http.Header),
			}, nil
		}),
	}
	return s
}

// dmInteraction builds the shape Discord sends for a command invoked in a
// direct message: no Member, only a User.
func dmInteraction(name string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommand,
			User: &discordgo.User{ID: "200300400500600700"},
			Data: discordgo.ApplicationCommandInteractionData{Name: name},
		},
	}
}

func TestMeatballCommandsRejectDirectMessages(t *testing.T) {
	s := newStubSession(t)

	store, err := database.Open(filepath.Join(t.TempDir(), "meatball.db"))
	require.NoError(t, err)
	defer store.Close()

	handlers := map[string]func(*discordgo.Session, *discordgo.InteractionCreate, *database.Store){
		"meatball-save":    HandleMeatballSave,
		"meatball-lookup":  HandleMeatballLookup,
		"meatball-next":    HandleMeatballNext,
		"meatball-forget":  HandleMeatballForget,
		"meatball-role":    HandleMeatballRole,
		"meatball-channel": HandleMeatballChannel,
	}

	for name, handler := range handlers {
		t.Run(name, func(t *testing.T) {
			require.NotPanics(t, func() {
				handler(s, dmInteraction(name), store)
			})
		})
	}
}

func TestPingWorksWithoutMember(t *testing.T) {
	s := newStubSession(t)

	require.NotPanics(t, func() {
		HandlePing(s, dmInteraction("ping"))
	})
}
