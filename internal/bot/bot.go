package bot

import (
	"context"
	"fmt"
	"time"

	"anthraxutils/internal/age"
	"anthraxutils/internal/common"
	"anthraxutils/internal/database/types"
	"anthraxutils/internal/lifespan"
	"anthraxutils/internal/sticky"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// How often the refresh executor checks whether the cache is due.
const refreshResolution = time.Second

// Session is the part of the Discord session the handlers use.
type Session interface {
	sticky.Messenger
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Options gathers everything the bot needs besides the Discord session.
type Options struct {
	// Guild the commands are registered in, empty for global commands
	GuildID         string
	RefreshInterval time.Duration
	Store           sticky.Store
	Lifespans       *lifespan.Table
	Calculator      age.Calculator
	Policy          AuthorizationPolicy
	SeasonChannelID string
	SeasonLimit     int
}

type Bot struct {
	discord         *discordgo.Session
	session         Session
	guildID         string
	cache           *sticky.Cache
	manager         *sticky.Manager
	lifespans       *lifespan.Table
	calculator      age.Calculator
	policy          AuthorizationPolicy
	seasons         SeasonFinder
	refreshExecutor *common.TimedExecutor
	// Base context of every handler, cancelled on shutdown
	ctx context.Context
	now func() time.Time
}

func CreateBot(token string, options Options) (*Bot, error) {

	// Create session. Nothing connects until Run
	discord, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("could not create discord session: %w", err)
	}
	discord.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	bot := newBot(discord, options)
	bot.discord = discord
	return bot, nil
}

func newBot(session Session, options Options) *Bot {

	var bot Bot

	bot.session = session
	bot.guildID = options.GuildID
	// Sticky messages
	bot.cache = sticky.NewCache(options.Store)
	bot.manager = sticky.NewManager(options.Store, bot.cache, session)
	// Age calculation
	bot.lifespans = options.Lifespans
	if bot.lifespans == nil {
		bot.lifespans = lifespan.New(nil)
	}
	bot.calculator = options.Calculator
	bot.seasons = NewSeasonFinder(session, options.SeasonChannelID, options.SeasonLimit)
	bot.policy = options.Policy
	// Periodic cache refresh
	bot.refreshExecutor = common.NewTimedExecutor(options.RefreshInterval, func(ctx context.Context) {
		log.Debug().Msg("Refreshing cache...")
		bot.cache.Refresh(ctx)
	})
	bot.ctx = context.Background()
	bot.now = time.Now

	return &bot
}

// Run connects to Discord and serves events until the context is cancelled.
func (bot *Bot) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	bot.ctx = ctx

	// The cache must be filled before the first ready event bumps everything
	bot.cache.Refresh(ctx)
	bot.refreshExecutor.Reset()

	// Event handlers
	bot.discord.AddHandler(bot.Ready)
	bot.discord.AddHandler(bot.Receive)
	bot.discord.AddHandler(bot.Interact)

	// Open session
	if err := bot.discord.Open(); err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}
	defer func() {
		if err := bot.discord.Close(); err != nil {
			log.Error().Err(err).Msg("Could not close discord session")
		}
	}()

	if err := bot.registerCommands(); err != nil {
		return err
	}

	group.Go(func() error {
		bot.refreshExecutor.Run(ctx, refreshResolution)
		return nil
	})

	log.Info().Msg("Bot is running, waiting for a shutdown signal")
	<-ctx.Done()
	bot.shutdown()

	return group.Wait()
}

// shutdown stops bumping sticky messages for events still arriving before the
// session is closed.
func (bot *Bot) shutdown() {
	log.Info().Msg("Shutting down")
	bot.cache.Invalidate()
}

func (bot *Bot) registerCommands() error {
	appID := bot.discord.State.User.ID
	created, err := bot.discord.ApplicationCommandBulkOverwrite(appID, bot.guildID, Commands())
	if err != nil {
		return fmt.Errorf("could not register commands: %w", err)
	}

	if bot.guildID == "" {
		log.Info().Int("commands", len(created)).Msg("Commands synced globally")
	} else {
		log.Info().Int("commands", len(created)).Str("guild_id", bot.guildID).Msg("Commands synced to guild")
	}
	return nil
}

// Ready bumps every known sticky message once the gateway session is up.
func (bot *Bot) Ready(discord *discordgo.Session, ready *discordgo.Ready) {
	log.Info().Str("user", ready.User.Username).Int("guilds", len(ready.Guilds)).Msg("Logged in")
	bot.manager.BumpAll(bot.ctx)
}

// Receive bumps the sticky messages of the channel a message was posted in.
func (bot *Bot) Receive(discord *discordgo.Session, message *discordgo.MessageCreate) {

	// Reject my own messages, re-sent sticky messages included
	if message.Author == nil || message.Author.ID == discord.State.User.ID {
		return
	}
	bot.receive(message.Message)
}

func (bot *Bot) receive(message *discordgo.Message) {

	// Ignore messages from private channels
	if message.GuildID == "" {
		return
	}

	channelID, err := types.ParseSnowflake(message.ChannelID)
	if err != nil {
		log.Warn().Str("channel_id", message.ChannelID).Msg("Ignoring message with a malformed channel id")
		return
	}
	if !bot.cache.Snapshot().Watching(channelID) {
		return
	}

	log.Debug().Str("channel_id", message.ChannelID).Str("message_id", message.ID).Msg("Bumping sticky messages")
	// Errors are logged per record
	_ = bot.manager.Bump(bot.ctx, channelID)
}
