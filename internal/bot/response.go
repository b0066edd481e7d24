package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

type ResponseString struct {
	string
}
type ResponseEmbed struct {
	discordgo.MessageEmbed
}

// Response is a reply to an interaction, only visible to the invoking user.
type Response interface {
	Data() *discordgo.InteractionResponseData
	Edit() *discordgo.WebhookEdit
}

func (response ResponseString) Data() *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{Content: response.string, Flags: discordgo.MessageFlagsEphemeral}
}

func (response ResponseString) Edit() *discordgo.WebhookEdit {
	content := response.string
	embeds := []*discordgo.MessageEmbed{}
	return &discordgo.WebhookEdit{Content: &content, Embeds: &embeds}
}

func (response ResponseEmbed) Data() *discordgo.InteractionResponseData {
	embed := response.MessageEmbed
	return &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{&embed}, Flags: discordgo.MessageFlagsEphemeral}
}

func (response ResponseEmbed) Edit() *discordgo.WebhookEdit {
	embed := response.MessageEmbed
	content := ""
	embeds := []*discordgo.MessageEmbed{&embed}
	return &discordgo.WebhookEdit{Content: &content, Embeds: &embeds}
}

func (bot *Bot) respond(ctx context.Context, interaction *discordgo.Interaction, response Response) {
	err := bot.session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: response.Data(),
	}, discordgo.WithContext(ctx))
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Could not respond to interaction")
	}
}

// deferResponse acknowledges the interaction so the reply can take longer
// than Discord's response window. The reply is sent later with edit.
func (bot *Bot) deferResponse(ctx context.Context, interaction *discordgo.Interaction) bool {
	err := bot.session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}, discordgo.WithContext(ctx))
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Could not defer interaction response")
		return false
	}
	return true
}

func (bot *Bot) edit(ctx context.Context, interaction *discordgo.Interaction, response Response) {
	if _, err := bot.session.InteractionResponseEdit(interaction, response.Edit(), discordgo.WithContext(ctx)); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Could not edit interaction response")
	}
}

func (bot *Bot) openModal(ctx context.Context, interaction *discordgo.Interaction, modal *discordgo.InteractionResponseData) {
	err := bot.session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: modal,
	}, discordgo.WithContext(ctx))
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Could not open modal")
	}
}

func (bot *Bot) suggest(ctx context.Context, interaction *discordgo.Interaction, choices []*discordgo.ApplicationCommandOptionChoice) {
	err := bot.session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	}, discordgo.WithContext(ctx))
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("Could not send autocomplete choices")
	}
}
