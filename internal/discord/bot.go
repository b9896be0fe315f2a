// Package discord runs the gateway session: it routes prefix commands to the
// registry, reports player events back to text channels and provides voice
// connections to the player.
package discord

import (
	"context"
	"fmt"
	"time"

	"djtoad/internal/command"
	"djtoad/internal/config"
	"djtoad/internal/music/player"
	"djtoad/pkg/cmd"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const commandTimeout = 2 * time.Minute

// Bot is a Discord bot
type Bot struct {
	dg        *discordgo.Session
	cfg       *config.Config
	log       zerolog.Logger
	registry  *cmd.Registry
	messenger command.Messenger
	reporter  *reporter
	voice     *voiceConnector

	// ctx is the Run context; commands derive their deadline from it.
	ctx context.Context
}

// New creates the session without connecting. Commands are looked up in
// cmd.DefaultRegistry.
func New(cfg *config.Config, log zerolog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsMessageContent

	log = log.With().Str("component", "discord").Logger()
	m := &sessionMessenger{dg: dg}
	b := &Bot{
		dg:        dg,
		cfg:       cfg,
		log:       log,
		registry:  cmd.DefaultRegistry,
		messenger: m,
		reporter:  newReporter(m, log),
		voice:     newVoiceConnector(dg, newEngine(cfg.FFmpegPath, log), log),
		ctx:       context.Background(),
	}

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onVoiceStateUpdate)
	return b, nil
}

// Reporter posts player events to the channel that asked for them.
func (b *Bot) Reporter() player.Reporter { return b.reporter }

// Run opens the gateway and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	<-ctx.Done()

	b.log.Info().Msg("❎ Shutdown signal received. Cleaning up...")
	b.reporter.close()
	if err := b.dg.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	for _, g := range r.Guilds {
		b.leaveIfBlacklisted(s, g.ID)
	}
	b.log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).
		Msg("✅ Discord bot is running")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if b.leaveIfBlacklisted(s, g.ID) {
		return
	}
	b.log.Debug().Str("guild", g.ID).Str("name", g.Name).Msg("guild available")
}

func (b *Bot) leaveIfBlacklisted(s *discordgo.Session, guildID string) bool {
	if !b.cfg.IsGuildBlacklisted(guildID) {
		return false
	}
	b.log.Info().Str("guild", guildID).Msg("leaving blacklisted guild")
	if err := s.GuildLeave(guildID); err != nil {
		b.log.Error().Err(err).Str("guild", guildID).Msg("failed to leave guild")
	}
	return true
}

// onMessageCreate is called when a message is created
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	selfID := ""
	if s.State != nil && s.State.User != nil {
		selfID = s.State.User.ID
	}
	ctx, cancel := context.WithTimeout(b.ctx, commandTimeout)
	defer cancel()
	b.handleMessage(ctx, s, m, selfID)
}

// handleMessage runs the command named by m, if any, and answers errors in
// the same channel.
func (b *Bot) handleMessage(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, selfID string) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == selfID {
		return
	}
	if m.GuildID != "" && b.cfg.IsGuildBlacklisted(m.GuildID) {
		return
	}
	inv, ok := cmd.Parse(b.cfg.CommandPrefix, m.Content)
	if !ok {
		return
	}
	c := b.registry.Get(inv.Name)
	if c == nil {
		return
	}

	mc := &command.MessageContext{
		Session:   s,
		Event:     m,
		Messenger: b.messenger,
		Prefix:    b.cfg.CommandPrefix,
	}
	inv.Data = mc

	if err := c.Run(ctx, inv); err != nil {
		if rerr := mc.Reply(player.ErrorText(err)); rerr != nil {
			b.log.Error().Err(rerr).Str("channel", m.ChannelID).Msg("failed to send error reply")
		}
	}
}
