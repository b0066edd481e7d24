package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anthraxutils/internal/age"
	"anthraxutils/internal/bot"
	"anthraxutils/internal/config"
	"anthraxutils/internal/database"
	"anthraxutils/internal/lifespan"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app().Run(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("Exiting")
		stop()
		os.Exit(1)
	}
}

func app() *cli.Command {
	return &cli.Command{
		Name:  "anthraxutils",
		Usage: "Discord bot of the Anthrax dinosaur server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path of bot.toml, searched in the default locations when empty",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "path of the .env file holding the secrets",
			},
		},
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the bot until interrupted",
				Action: runAction,
			},
			{
				Name:  "migrate",
				Usage: "Apply pending datastore migrations",
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := setup(c, (*config.Config).RequireDatabaseURL)
					if err != nil {
						return err
					}
					// Migrations are applied explicitly below
					cfg.Datastore.AutoMigrate = false
					db, err := database.NewConnection(ctx, cfg.Datastore, cfg.DatabaseURL)
					if err != nil {
						return err
					}
					defer db.Close()
					return database.Migrate(ctx, db)
				},
			},
			{
				Name:  "version",
				Usage: "Print the version",
				Action: func(_ context.Context, _ *cli.Command) error {
					fmt.Println(version)
					return nil
				},
			},
		},
	}
}

// setup loads the secrets and the configuration, checks the secrets the
// command needs with require, and applies the log level.
func setup(c *cli.Command, require func(*config.Config) error) (*config.Config, error) {
	if err := config.LoadEnv(c.String("env-file")); err != nil {
		return nil, err
	}
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := require(cfg); err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zerolog.SetGlobalLevel(level)
	return cfg, nil
}

func runAction(ctx context.Context, c *cli.Command) error {
	log.Info().Str("version", version).Msg("Starting anthraxutils")

	cfg, err := setup(c, (*config.Config).RequireSecrets)
	if err != nil {
		return err
	}

	// Age calculation
	lifespans, err := lifespan.Load(cfg.Age.LifespansFile)
	if err != nil {
		return err
	}
	log.Info().Int("species", lifespans.Len()).Msg("Loaded lifespans")

	calculator, err := newCalculator(cfg)
	if err != nil {
		return err
	}

	// Datastore
	db, err := database.NewConnection(ctx, cfg.Datastore, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	// Create bot
	discordBot, err := bot.CreateBot(cfg.Token, bot.Options{
		GuildID:         cfg.Discord.GuildID,
		RefreshInterval: cfg.RefreshInterval(),
		Store:           database.NewStickyStore(db),
		Lifespans:       lifespans,
		Calculator:      calculator,
		Policy:          bot.NewAuthorizationPolicy(cfg.Authorization.AllowedUserIDs, cfg.Authorization.AllowedRoleIDs),
		SeasonChannelID: cfg.Season.ChannelID,
		SeasonLimit:     cfg.Season.HistoryLimit,
	})
	if err != nil {
		return err
	}

	// Run bot
	return discordBot.Run(ctx)
}

func newCalculator(cfg *config.Config) (age.Calculator, error) {
	loc, err := cfg.Location()
	if err != nil {
		return age.Calculator{}, err
	}

	downtimes := make([]age.Downtime, 0, len(cfg.Age.Downtimes))
	for _, downtime := range cfg.Age.Downtimes {
		// Validated when the config was loaded
		start, _ := time.ParseInLocation(config.DateLayout, downtime.Start, loc)
		end, _ := time.ParseInLocation(config.DateLayout, downtime.End, loc)
		downtimes = append(downtimes, age.Downtime{Start: start, End: end, Reason: downtime.Reason})
	}

	return age.Calculator{WeeksPerYear: cfg.Age.WeeksPerYear, Downtimes: downtimes, Location: loc}, nil
}
