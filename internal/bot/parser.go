package bot

import (
	"errors"
	"fmt"
	"strings"

	"anthraxutils/internal/database/types"

	"github.com/bwmarrin/discordgo"
)

var errMissingOption = errors.New("missing option")

// AgeRequest holds the options of a calculate-age command.
type AgeRequest struct {
	Day     int
	Month   int
	Year    int
	Species string
}

func ParseAgeRequest(data discordgo.ApplicationCommandInteractionData) (AgeRequest, error) {

	options := optionMap(data.Options)
	var request AgeRequest

	for name, target := range map[string]*int{OptionDay: &request.Day, OptionMonth: &request.Month, OptionYear: &request.Year} {
		option, ok := options[name]
		if !ok {
			return AgeRequest{}, fmt.Errorf("%w: %s", errMissingOption, name)
		}
		*target = int(option.IntValue())
	}

	if option, ok := options[OptionSpecies]; ok {
		request.Species = strings.TrimSpace(option.StringValue())
	}
	return request, nil
}

// ParseMessageID reads the message id option of remove-sticky.
func ParseMessageID(data discordgo.ApplicationCommandInteractionData) (string, int64, error) {

	option, ok := optionMap(data.Options)[OptionMessageID]
	if !ok {
		return "", 0, fmt.Errorf("%w: %s", errMissingOption, OptionMessageID)
	}
	raw := strings.TrimSpace(option.StringValue())
	id, err := types.ParseSnowflake(raw)
	return raw, id, err
}

// ParseStickyContent reads the content field of a submitted sticky modal.
func ParseStickyContent(data discordgo.ModalSubmitInteractionData) (string, error) {

	for _, component := range data.Components {
		row, ok := component.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok && input.CustomID == StickyContentID {
				return input.Value, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", errMissingOption, StickyContentID)
}

// focusedOption returns the option the user is typing in.
func focusedOption(options []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	for _, option := range options {
		if option.Focused {
			return option
		}
	}
	return nil
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	byName := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, option := range options {
		byName[option.Name] = option
	}
	return byName
}
