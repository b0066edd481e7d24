package bot

import (
	"context"
	"errors"

	"anthraxutils/internal/age"
	"anthraxutils/internal/database/types"
	"anthraxutils/internal/lifespan"
	"anthraxutils/internal/sticky"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Interact is the discordgo handler of every interaction.
func (bot *Bot) Interact(discord *discordgo.Session, interaction *discordgo.InteractionCreate) {
	bot.handle(interaction.Interaction)
}

func (bot *Bot) handle(interaction *discordgo.Interaction) {

	logger := log.With().
		Str("trace", uuid.NewString()).
		Str("guild_id", interaction.GuildID).
		Str("channel_id", interaction.ChannelID).
		Str("user_id", userID(interaction)).
		Logger()
	ctx := logger.WithContext(bot.ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Recovered from panic in interaction handler")
			if interaction.Type != discordgo.InteractionApplicationCommandAutocomplete {
				bot.respond(ctx, interaction, GenericError())
			}
		}
	}()

	switch interaction.Type {
	case discordgo.InteractionApplicationCommand:
		data := interaction.ApplicationCommandData()
		logger.Info().Str("command", data.Name).Msg("Received command")
		bot.command(ctx, interaction, data)
	case discordgo.InteractionApplicationCommandAutocomplete:
		bot.autocomplete(ctx, interaction, interaction.ApplicationCommandData())
	case discordgo.InteractionModalSubmit:
		data := interaction.ModalSubmitData()
		if data.CustomID == StickyModalID {
			bot.submitSticky(ctx, interaction, data)
		} else {
			logger.Warn().Str("custom_id", data.CustomID).Msg("Unknown modal submitted")
		}
	default:
		logger.Debug().Int("type", int(interaction.Type)).Msg("Ignoring interaction")
	}
}

func (bot *Bot) command(ctx context.Context, interaction *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {
	switch data.Name {
	case CommandCalculateAge:
		bot.calculateAge(ctx, interaction, data)
	case CommandHelp:
		bot.respond(ctx, interaction, HelpMessage())
	case CommandMakeSticky:
		bot.makeSticky(ctx, interaction)
	case CommandRemoveSticky:
		bot.removeSticky(ctx, interaction, data)
	default:
		zerolog.Ctx(ctx).Warn().Str("command", data.Name).Msg("Unknown command")
		bot.respond(ctx, interaction, GenericError())
	}
}

func (bot *Bot) autocomplete(ctx context.Context, interaction *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {

	choices := []*discordgo.ApplicationCommandOptionChoice{}
	option := focusedOption(data.Options)
	if option == nil {
		bot.suggest(ctx, interaction, choices)
		return
	}

	switch {
	case data.Name == CommandCalculateAge && option.Name == OptionSpecies:
		choices = SpeciesChoices(bot.lifespans, option.StringValue())
	case data.Name == CommandRemoveSticky && option.Name == OptionMessageID:
		// Do not reveal sticky messages to users who cannot remove them
		if !bot.policy.Allowed(interaction) {
			break
		}
		channelID, err := types.ParseSnowflake(interaction.ChannelID)
		if err != nil {
			break
		}
		choices = StickyChoices(bot.cache.Snapshot(), channelID, option.StringValue())
	}
	bot.suggest(ctx, interaction, choices)
}

func (bot *Bot) calculateAge(ctx context.Context, interaction *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {
	logger := zerolog.Ctx(ctx)

	request, err := ParseAgeRequest(data)
	if err != nil {
		logger.Warn().Err(err).Msg("Malformed calculate-age command")
		bot.respond(ctx, interaction, InvalidDate())
		return
	}

	birth, err := age.BirthDate(request.Day, request.Month, request.Year, bot.calculator.Location)
	if err != nil {
		bot.respond(ctx, interaction, InvalidDate())
		return
	}

	var stages []lifespan.Stage
	if request.Species != "" {
		entry, err := bot.lifespans.Find(request.Species)
		if err != nil {
			bot.respond(ctx, interaction, UnknownSpecies(request.Species))
			return
		}
		stages = entry.LifeStages
	}

	result, err := bot.calculator.Calculate(birth, bot.now(), stages)
	if errors.Is(err, age.ErrFutureBirthDate) {
		bot.respond(ctx, interaction, FutureBirthDate())
		return
	} else if err != nil {
		logger.Error().Err(err).Msg("Could not calculate age")
		bot.respond(ctx, interaction, GenericError())
		return
	}

	// Reading the season channel may take longer than the response window
	if !bot.deferResponse(ctx, interaction) {
		return
	}
	season := bot.seasons.Find(ctx, birth)

	weeksPerYear := bot.calculator.WeeksPerYear
	if weeksPerYear <= 0 {
		weeksPerYear = age.DefaultWeeksPerYear
	}
	logger.Debug().Int("weeks", result.Weeks).Str("season", season.Name()).Msg("Calculated age")
	bot.edit(ctx, interaction, AgeMessage(result, request.Species, season, weeksPerYear))
}

func (bot *Bot) makeSticky(ctx context.Context, interaction *discordgo.Interaction) {
	if interaction.GuildID == "" {
		bot.respond(ctx, interaction, GuildOnly())
		return
	}
	if !bot.policy.Allowed(interaction) {
		bot.respond(ctx, interaction, PermissionDenied())
		return
	}
	bot.openModal(ctx, interaction, StickyModal())
}

func (bot *Bot) submitSticky(ctx context.Context, interaction *discordgo.Interaction, data discordgo.ModalSubmitInteractionData) {
	logger := zerolog.Ctx(ctx)

	if interaction.GuildID == "" {
		bot.respond(ctx, interaction, GuildOnly())
		return
	}
	// Permissions may have changed since the modal was opened
	if !bot.policy.Allowed(interaction) {
		bot.respond(ctx, interaction, PermissionDenied())
		return
	}

	content, err := ParseStickyContent(data)
	if err != nil {
		logger.Warn().Err(err).Msg("Malformed sticky modal")
		bot.respond(ctx, interaction, InvalidStickyContent())
		return
	}

	_, err = bot.manager.Create(ctx, interaction.GuildID, interaction.ChannelID, content)
	if errors.Is(err, sticky.ErrInvalidContent) {
		bot.respond(ctx, interaction, InvalidStickyContent())
		return
	} else if err != nil {
		logger.Error().Err(err).Msg("Could not create sticky message")
		bot.respond(ctx, interaction, GenericError())
		return
	}
	bot.respond(ctx, interaction, StickyCreated())
}

func (bot *Bot) removeSticky(ctx context.Context, interaction *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {
	logger := zerolog.Ctx(ctx)

	if interaction.GuildID == "" {
		bot.respond(ctx, interaction, GuildOnly())
		return
	}
	if !bot.policy.Allowed(interaction) {
		bot.respond(ctx, interaction, PermissionDenied())
		return
	}

	raw, messageID, err := ParseMessageID(data)
	if err != nil {
		bot.respond(ctx, interaction, InvalidMessageID(raw))
		return
	}

	bot.respond(ctx, interaction, RemovingSticky())

	_, err = bot.manager.Remove(ctx, interaction.GuildID, messageID)
	if errors.Is(err, sticky.ErrNotFound) {
		bot.edit(ctx, interaction, StickyNotFound(raw))
		return
	} else if err != nil {
		logger.Error().Err(err).Int64("message_id", messageID).Msg("Could not remove sticky message")
		bot.edit(ctx, interaction, GenericError())
		return
	}
	bot.edit(ctx, interaction, StickyRemoved())
}

func userID(interaction *discordgo.Interaction) string {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User.ID
	}
	if interaction.User != nil {
		return interaction.User.ID
	}
	return ""
}
