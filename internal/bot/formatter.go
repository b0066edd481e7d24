package bot

import (
	"fmt"
	"strings"

	"anthraxutils/internal/age"
	"anthraxutils/internal/lifespan"
	"anthraxutils/internal/sticky"

	"github.com/bwmarrin/discordgo"
)

// Use "greyple" color for the bot
const color int = 0x99AAB5

// Layout of the dates shown to users
const displayDate = "02-01-2006"

func HelpMessage() Response {

	embed := discordgo.MessageEmbed{Title: "Commands available", Color: color}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "`/calculate-age <day> <month> <year> [species]`",
		Value:  "Calculate the age of a dino in weeks and in-game years. Pick a species to also see its life stages",
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "`/make-sticky`",
		Value:  "Create a message that always stays at the bottom of the channel (administrators only)",
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "`/remove-sticky <message_id>`",
		Value:  "Remove a sticky message from the channel (administrators only)",
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "`/help`",
		Value:  "Print the usage of the different commands",
		Inline: false,
	})
	return ResponseEmbed{embed}
}

// AgeMessage renders an age calculation. species is empty when none was asked for.
func AgeMessage(result age.Age, species string, season Season, weeksPerYear int) Response {

	title := "Dinosaur's Age"
	if species != "" {
		name := lifespan.DisplayName(species)
		if result.CurrentStage != nil {
			title = fmt.Sprintf("%s %s's Age", result.CurrentStage.Title, name)
		} else {
			title = fmt.Sprintf("%s's Age", name)
		}
	}

	description := fmt.Sprintf("**Age in Weeks:** %d\n", result.Weeks)
	description += fmt.Sprintf("**Age in in-game years:** %d\n", result.Years)
	description += fmt.Sprintf("**Birth Season:** %s", season.Name())
	if season.Emoji != "" {
		description += " " + season.Emoji
	}

	embed := discordgo.MessageEmbed{Title: title, Description: description, Color: color}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Today's Date",
		Value:  result.Today.Format(displayDate),
		Inline: true,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Birthdate",
		Value:  result.Birth.Format(displayDate),
		Inline: true,
	})

	if species != "" {
		current := "None yet"
		if result.CurrentStage != nil {
			current = result.CurrentStage.Title
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Current Life Stage",
			Value:  current,
			Inline: false,
		})
		if len(result.ReachedStages) > 0 {
			reached := []string{}
			for _, stage := range result.ReachedStages {
				reached = append(reached, fmt.Sprintf("%s (%d weeks)", stage.Title, stage.MinAge))
			}
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:   "Life Stages Reached",
				Value:  strings.Join(reached, "\n"),
				Inline: false,
			})
		}
	}

	if result.DowntimeDays > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Server Downtime",
			Value:  fmt.Sprintf("%d days not counted", result.DowntimeDays),
			Inline: false,
		})
	}

	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Each in-game year is %d weeks long.", weeksPerYear)}
	return ResponseEmbed{embed}
}

func PermissionDenied() Response {
	return ResponseString{"You don't have permission to use this command."}
}

func InvalidDate() Response {
	return ResponseString{"Invalid date format. Please check that your inputs are actual dates!"}
}

func FutureBirthDate() Response {
	return ResponseString{"Birth date cannot be in the future!"}
}

func UnknownSpecies(species string) Response {
	return ResponseString{fmt.Sprintf("Unknown species `%s`. Pick one of the suggestions.", species)}
}

func StickyCreated() Response {
	return ResponseString{"Sticky message created!"}
}

func InvalidStickyContent() Response {
	return ResponseString{fmt.Sprintf("A sticky message cannot be empty or longer than %d characters.", sticky.MaxContentLength)}
}

func RemovingSticky() Response {
	return ResponseString{"Removing sticky message..."}
}

func StickyRemoved() Response {
	return ResponseString{"Sticky message removed!"}
}

func StickyNotFound(messageID string) Response {
	return ResponseString{fmt.Sprintf("No sticky message with ID `%s` was found.", messageID)}
}

func InvalidMessageID(messageID string) Response {
	return ResponseString{fmt.Sprintf("`%s` is not a valid message ID.", messageID)}
}

func GuildOnly() Response {
	return ResponseString{"This command can only be used in a server."}
}

func GenericError() Response {
	return ResponseString{"Something went wrong, please try again later."}
}
