package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

type staticHistory struct {
	messages []*discordgo.Message
	err      error
	limit    int
}

func (h *staticHistory) ChannelMessages(_ string, limit int, _, _, _ string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	h.limit = limit
	return h.messages, h.err
}

func TestSnowflakeAt(t *testing.T) {
	assert.Equal(t, "0", SnowflakeAt(time.UnixMilli(discordEpoch)))
	assert.Equal(t, "4194304", SnowflakeAt(time.UnixMilli(discordEpoch+1)))
	assert.Equal(t, "0", SnowflakeAt(time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSeasonFinder(t *testing.T) {
	ctx := context.Background()
	birth := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		messages []*discordgo.Message
		err      error
		expected string
	}{
		{"latest announcement wins", []*discordgo.Message{{Content: "WINTER is here"}, {Content: "summer"}}, nil, "Winter"},
		{"fall is autumn", []*discordgo.Message{{Content: "Welcome to fall"}}, nil, "Fall"},
		{"skips unrelated messages", []*discordgo.Message{{Content: "server restart"}, {Content: "Summer starts"}}, nil, "Summer"},
		{"nothing announced", []*discordgo.Message{{Content: "hello"}}, nil, "Unknown"},
		{"history unavailable", nil, errors.New("missing access"), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := NewSeasonFinder(&staticHistory{messages: tt.messages, err: tt.err}, seasonsID, 5)
			assert.Equal(t, tt.expected, finder.Find(ctx, birth).Name())
		})
	}
}

func TestSeasonFinderDefaults(t *testing.T) {
	history := &staticHistory{messages: []*discordgo.Message{{Content: "spring"}}}

	finder := NewSeasonFinder(history, seasonsID, 0)
	season := finder.Find(context.Background(), time.Now())
	assert.Equal(t, "Spring", season.Name())
	assert.Equal(t, ":cherry_blossom:", season.Emoji)
	assert.Equal(t, defaultHistoryLimit, history.limit)

	// Without a channel the lookup is skipped
	assert.Equal(t, Season{}, NewSeasonFinder(history, "", 5).Find(context.Background(), time.Now()))
}

func TestParseAgeRequest(t *testing.T) {
	request, err := ParseAgeRequest(discordgo.ApplicationCommandInteractionData{Options: []*discordgo.ApplicationCommandInteractionDataOption{
		intOption(OptionDay, 5), intOption(OptionMonth, 3), intOption(OptionYear, 2025), stringOption(OptionSpecies, "  raptor "),
	}})
	assert.NoError(t, err)
	assert.Equal(t, AgeRequest{Day: 5, Month: 3, Year: 2025, Species: "raptor"}, request)

	_, err = ParseAgeRequest(discordgo.ApplicationCommandInteractionData{})
	assert.ErrorIs(t, err, errMissingOption)
}

func TestSeasonName(t *testing.T) {
	assert.Equal(t, "Unknown", Season{}.Name())
	assert.Equal(t, "Autumn", Season{Key: "autumn"}.Name())
	for _, season := range seasons {
		assert.Regexp(t, "^[A-Z][a-z]+$", season.Name())
	}
}
