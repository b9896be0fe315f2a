// Package config reads the bot settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken   string   `env:"DISCORD_TOKEN,required,notEmpty"`
	CommandPrefix  string   `env:"COMMAND_PREFIX" envDefault:"!"`
	GuildBlacklist []string `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`

	YouTubeProxy       string        `env:"YOUTUBE_PROXY"`
	ResolveWorkers     int           `env:"RESOLVE_WORKERS" envDefault:"4"`
	ResolveTimeout     time.Duration `env:"RESOLVE_TIMEOUT" envDefault:"30s"`
	MaxAdvanceAttempts int           `env:"MAX_ADVANCE_ATTEMPTS" envDefault:"3"`
	RecommendationCap  int           `env:"RECOMMENDATION_LIMIT" envDefault:"10"`
	FFmpegPath         string        `env:"FFMPEG_PATH" envDefault:"ffmpeg"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile   string `env:"LOG_FILE"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"true"`
}

// Load reads .env files (a missing one is not an error) and parses the
// environment. loaded lists the .env files that were read.
func Load(files ...string) (cfg *Config, loaded []string, err error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, loaded, fmt.Errorf("load %s: %w", f, err)
		}
		loaded = append(loaded, f)
	}

	cfg, err = Parse()
	return cfg, loaded, err
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.CommandPrefix = strings.TrimSpace(c.CommandPrefix)
	if c.CommandPrefix == "" {
		return errors.New("COMMAND_PREFIX must not be blank")
	}
	if c.ResolveWorkers < 1 {
		return fmt.Errorf("RESOLVE_WORKERS must be at least 1, got %d", c.ResolveWorkers)
	}
	if c.ResolveTimeout <= 0 {
		return fmt.Errorf("RESOLVE_TIMEOUT must be positive, got %s", c.ResolveTimeout)
	}
	if c.MaxAdvanceAttempts < 1 {
		return fmt.Errorf("MAX_ADVANCE_ATTEMPTS must be at least 1, got %d", c.MaxAdvanceAttempts)
	}
	if c.RecommendationCap < 0 {
		return fmt.Errorf("RECOMMENDATION_LIMIT must not be negative, got %d", c.RecommendationCap)
	}

	blacklist := c.GuildBlacklist[:0]
	for _, id := range c.GuildBlacklist {
		if id = strings.TrimSpace(id); id != "" {
			blacklist = append(blacklist, id)
		}
	}
	c.GuildBlacklist = blacklist
	return nil
}

// IsGuildBlacklisted reports whether the bot must stay out of guildID.
func (c *Config) IsGuildBlacklisted(guildID string) bool {
	for _, id := range c.GuildBlacklist {
		if id == guildID {
			return true
		}
	}
	return false
}
