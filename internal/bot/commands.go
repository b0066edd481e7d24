package bot

import (
	"github.com/bwmarrin/discordgo"
)

// Slash command names
const (
	CommandCalculateAge = "calculate-age"
	CommandHelp         = "help"
	CommandMakeSticky   = "make-sticky"
	CommandRemoveSticky = "remove-sticky"
)

// Option names
const (
	OptionDay       = "day"
	OptionMonth     = "month"
	OptionYear      = "year"
	OptionSpecies   = "species"
	OptionMessageID = "message_id"
)

// Modal identifiers
const (
	StickyModalID   = "sticky-modal"
	StickyContentID = "sticky-content"
)

// Commands returns the definition of every slash command the bot serves.
func Commands() []*discordgo.ApplicationCommand {
	minDay, minMonth, minYear := float64(1), float64(1), float64(1)
	guildOnly := false

	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandCalculateAge,
			Description: "Calculate the age of a dino in weeks and in-game years",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        OptionDay,
					Description: "Day of birth",
					Required:    true,
					MinValue:    &minDay,
					MaxValue:    31,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        OptionMonth,
					Description: "Month of birth",
					Required:    true,
					MinValue:    &minMonth,
					MaxValue:    12,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        OptionYear,
					Description: "Year of birth",
					Required:    true,
					MinValue:    &minYear,
				},
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         OptionSpecies,
					Description:  "Species of the dino, to show its life stages",
					Required:     false,
					Autocomplete: true,
				},
			},
		},
		{
			Name:        CommandHelp,
			Description: "List the available commands",
		},
		{
			Name:         CommandMakeSticky,
			Description:  "Create a message that stays at the bottom of this channel",
			DMPermission: &guildOnly,
		},
		{
			Name:         CommandRemoveSticky,
			Description:  "Remove a sticky message",
			DMPermission: &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         OptionMessageID,
					Description:  "Sticky message to remove",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
	}
}

// StickyModal is the form asking for the content of a new sticky message.
func StickyModal() *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: StickyModalID,
		Title:    "Create Sticky Message",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    StickyContentID,
						Label:       "Message",
						Style:       discordgo.TextInputParagraph,
						Placeholder: "Enter the message to keep at the bottom of the channel",
						Required:    true,
						MaxLength:   2000,
					},
				},
			},
		},
	}
}
