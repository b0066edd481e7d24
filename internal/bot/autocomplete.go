package bot

import (
	"fmt"
	"strconv"
	"strings"

	"anthraxutils/internal/lifespan"
	"anthraxutils/internal/sticky"

	"github.com/bwmarrin/discordgo"
)

// MaxChoices is the number of suggestions Discord accepts in an autocomplete response.
const MaxChoices = 25

// Characters of content shown in a sticky message suggestion.
const previewLength = 30

// SpeciesChoices suggests the species matching what the user typed so far.
func SpeciesChoices(table *lifespan.Table, query string) []*discordgo.ApplicationCommandOptionChoice {
	choices := []*discordgo.ApplicationCommandOptionChoice{}
	for _, entry := range table.Search(strings.TrimSpace(query)) {
		name := lifespan.DisplayName(entry.Species)
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
		if len(choices) == MaxChoices {
			break
		}
	}
	return choices
}

// StickyChoices suggests the sticky messages of a channel whose id or content
// contains what the user typed so far.
func StickyChoices(snapshot *sticky.Snapshot, channelID int64, query string) []*discordgo.ApplicationCommandOptionChoice {
	query = strings.ToLower(strings.TrimSpace(query))
	choices := []*discordgo.ApplicationCommandOptionChoice{}

	for _, message := range snapshot.InChannel(channelID) {
		id := strconv.FormatInt(message.MessageID, 10)
		if !strings.Contains(id, query) && !strings.Contains(strings.ToLower(message.Content), query) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("ID: %s | Content: %s", id, preview(message.Content)),
			Value: id,
		})
		if len(choices) == MaxChoices {
			break
		}
	}
	return choices
}

func preview(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength]) + "..."
}
