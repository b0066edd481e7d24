package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Milliseconds between the Unix epoch and the first second of 2015.
const discordEpoch = 1420070400000

// Messages fetched by default when looking for the birth season.
const defaultHistoryLimit = 20

// Season is an in-game season announced in the season channel.
type Season struct {
	Key   string
	Emoji string
}

var seasons = []Season{
	{Key: "spring", Emoji: ":cherry_blossom:"},
	{Key: "summer", Emoji: ":sun:"},
	{Key: "autumn", Emoji: ":maple_leaf:"},
	{Key: "fall", Emoji: ":maple_leaf:"},
	{Key: "winter", Emoji: ":snowflake:"},
}

// Name returns the capitalised season name, "Unknown" for the zero season.
func (s Season) Name() string {
	if s.Key == "" {
		return "Unknown"
	}
	return cases.Title(language.English).String(s.Key)
}

// HistoryReader reads the message history of a channel.
type HistoryReader interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

// SeasonFinder looks up the season a date fell in from the announcements
// posted in a channel.
type SeasonFinder struct {
	history   HistoryReader
	channelID string
	limit     int
}

func NewSeasonFinder(history HistoryReader, channelID string, limit int) SeasonFinder {
	if limit <= 0 || limit > 100 {
		limit = defaultHistoryLimit
	}
	return SeasonFinder{history: history, channelID: channelID, limit: limit}
}

// Find returns the season announced last before the end of the given day.
// Any failure yields the zero season.
func (f SeasonFinder) Find(ctx context.Context, date time.Time) Season {
	if f.channelID == "" || f.history == nil {
		return Season{}
	}

	// Announcements posted during the birth day count
	before := SnowflakeAt(date.AddDate(0, 0, 1))
	messages, err := f.history.ChannelMessages(f.channelID, f.limit, before, "", "", discordgo.WithContext(ctx))
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("channel_id", f.channelID).Msg("Could not read season history")
		return Season{}
	}

	// Newest first
	for _, message := range messages {
		if season, ok := seasonOf(message.Content); ok {
			return season
		}
	}
	return Season{}
}

// SnowflakeAt returns the smallest Discord id created at t.
func SnowflakeAt(t time.Time) string {
	ms := t.UnixMilli() - discordEpoch
	if ms < 0 {
		ms = 0
	}
	return strconv.FormatInt(ms<<22, 10)
}

func seasonOf(content string) (Season, bool) {
	content = strings.ToLower(content)
	for _, season := range seasons {
		if strings.Contains(content, season.Key) {
			return season, true
		}
	}
	return Season{}, false
}
