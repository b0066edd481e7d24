package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
	ErrMissingToken          = errors.New("TOKEN is not set")
	ErrMissingDatabaseURL    = errors.New("DATABASE_URL is not set")
	ErrUnknownDriver         = errors.New("unknown datastore driver")
	ErrInvalidDowntime       = errors.New("invalid downtime")
)

// CurrentVersion is the version of bot.toml this build understands.
const CurrentVersion = 1

// Date layout used by downtime entries.
const DateLayout = "2006-01-02"

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config represents the entire bot configuration.
type Config struct {
	// Version of the config file.
	Version int `koanf:"version"`
	// Log level (trace, debug, info, warn, error).
	LogLevel      string        `koanf:"log_level"`
	Discord       Discord       `koanf:"discord"`
	Cache         Cache         `koanf:"cache"`
	Authorization Authorization `koanf:"authorization"`
	Age           Age           `koanf:"age"`
	Season        Season        `koanf:"season"`
	Datastore     Datastore     `koanf:"datastore"`

	// Secrets, read from the environment rather than the file.
	Token       string `koanf:"-"`
	DatabaseURL string `koanf:"-"`
}

// Discord contains gateway and command registration settings.
type Discord struct {
	// Guild to register commands in. Empty registers them globally.
	GuildID string `koanf:"guild_id"`
}

// Cache contains sticky message cache settings.
type Cache struct {
	// Seconds between two full refreshes.
	RefreshInterval int `koanf:"refresh_interval"`
}

// Authorization lists who may manage sticky messages besides administrators.
type Authorization struct {
	AllowedUserIDs []string `koanf:"allowed_user_ids"`
	AllowedRoleIDs []string `koanf:"allowed_role_ids"`
}

// Age contains settings of the age calculator.
type Age struct {
	// IANA timezone in which "today" is evaluated.
	Timezone string `koanf:"timezone"`
	// In-game year length in weeks.
	WeeksPerYear int `koanf:"weeks_per_year"`
	// Path of the species life stage table.
	LifespansFile string     `koanf:"lifespans_file"`
	Downtimes     []Downtime `koanf:"downtimes"`
}

// Downtime is a maintenance interval during which dinos did not age.
type Downtime struct {
	Start  string `koanf:"start"`
	End    string `koanf:"end"`
	Reason string `koanf:"reason"`
}

// Season contains settings of the birth season lookup.
type Season struct {
	// Reference channel announcing season changes. Empty disables the lookup.
	ChannelID    string `koanf:"channel_id"`
	HistoryLimit int    `koanf:"history_limit"`
}

// Datastore contains database connection settings.
type Datastore struct {
	Driver       string `koanf:"driver"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
	MaxOpenConns int    `koanf:"max_open_conns"`
}

// RefreshInterval returns the cache refresh period.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Cache.RefreshInterval) * time.Second
}

// Location returns the timezone the age calculator works in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Age.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Age.Timezone, err)
	}
	return loc, nil
}

// Default returns the configuration used for keys missing from bot.toml.
func Default() Config {
	return Config{
		LogLevel: "info",
		Cache:    Cache{RefreshInterval: 300},
		Age: Age{
			Timezone:      "UTC",
			WeeksPerYear:  4,
			LifespansFile: "config/lifespans.json",
		},
		Season:    Season{HistoryLimit: 20},
		Datastore: Datastore{Driver: DriverPostgres, MaxOpenConns: 4},
	}
}

// DefaultPaths are searched in order when no explicit config file is given.
func DefaultPaths() []string {
	paths := []string{"config", ".anthraxutils", "."}
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, homeDir+"/.anthraxutils")
	}
	return append(paths, "/etc/anthraxutils")
}

// Load reads bot.toml from the given path, or searches the default paths
// when path is empty. Secrets are read from the environment afterwards.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	candidates := []string{path}
	if path == "" {
		candidates = candidates[:0]
		for _, dir := range DefaultPaths() {
			candidates = append(candidates, dir+"/bot.toml")
		}
	}

	loaded := false
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if err := k.Load(file.Provider(candidate), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", candidate, err)
		}
		loaded = true
		break
	}
	if !loaded {
		return nil, fmt.Errorf("%w: bot.toml", ErrConfigFileNotFound)
	}

	// Keys absent from the file keep their default values
	config := Default()
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	config.Token = os.Getenv("TOKEN")
	config.DatabaseURL = os.Getenv("DATABASE_URL")

	return &config, nil
}

// LoadEnv loads a .env file into the process environment. A missing default
// file is not an error, a missing explicit one is.
func LoadEnv(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// RequireSecrets checks the secrets needed to run the bot are present.
func (c *Config) RequireSecrets() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	return c.RequireDatabaseURL()
}

// RequireDatabaseURL checks the datastore DSN is present. It is the only
// secret maintenance commands need.
func (c *Config) RequireDatabaseURL() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}

func (c *Config) validate() error {
	if c.Version == 0 {
		return fmt.Errorf("%w: bot.toml", ErrConfigVersionMissing)
	}
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: bot.toml (got: %d, expected: %d)", ErrConfigVersionMismatch, c.Version, CurrentVersion)
	}

	switch c.Datastore.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Datastore.Driver)
	}

	if c.Cache.RefreshInterval <= 0 {
		return fmt.Errorf("cache.refresh_interval must be positive, got %d", c.Cache.RefreshInterval)
	}
	if c.Age.WeeksPerYear <= 0 {
		return fmt.Errorf("age.weeks_per_year must be positive, got %d", c.Age.WeeksPerYear)
	}

	for i, downtime := range c.Age.Downtimes {
		start, err := time.Parse(DateLayout, downtime.Start)
		if err != nil {
			return fmt.Errorf("%w: entry %d start: %w", ErrInvalidDowntime, i, err)
		}
		end, err := time.Parse(DateLayout, downtime.End)
		if err != nil {
			return fmt.Errorf("%w: entry %d end: %w", ErrInvalidDowntime, i, err)
		}
		if !end.After(start) {
			return fmt.Errorf("%w: entry %d ends before it starts", ErrInvalidDowntime, i)
		}
	}

	return nil
}
