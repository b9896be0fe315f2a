package discord

import (
	"errors"
	"fmt"
	"sync"

	"djtoad/internal/bot"
	"djtoad/internal/music/player"
	"djtoad/internal/music/stream"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"layeh.com/gopus"
)

func newEngine(ffmpegPath string, log zerolog.Logger) *stream.Engine {
	log = log.With().Str("component", "stream").Logger()
	return &stream.Engine{
		Source: stream.FFmpeg{Path: ffmpegPath, Logger: log},
		NewEncoder: func() (stream.Encoder, error) {
			return gopus.NewEncoder(stream.SampleRate, stream.Channels, gopus.Audio)
		},
		Logger: log,
	}
}

// FindUserVoiceState finds the voice state of a user
func (b *Bot) FindUserVoiceState(guildID, userID string) (*bot.VoiceState, error) {
	vs, err := b.dg.State.VoiceState(guildID, userID)
	switch {
	case errors.Is(err, discordgo.ErrStateNotFound):
		return nil, bot.ErrNotInVoice
	case err != nil:
		return nil, fmt.Errorf("voice state: %w", err)
	case vs.ChannelID == "":
		return nil, bot.ErrNotInVoice
	}
	return &bot.VoiceState{ChannelID: vs.ChannelID, UserID: vs.UserID}, nil
}

// Voice returns the player's view of this session's voice connections.
func (b *Bot) Voice() player.Connector { return b.voice }

// OnVoiceLost sets the function called with a guild id when the bot's voice
// connection there is closed from outside.
func (b *Bot) OnVoiceLost(fn func(guildID string)) {
	b.voice.mu.Lock()
	b.voice.lost = fn
	b.voice.mu.Unlock()
}

// onVoiceStateUpdate follows the bot's own voice state. The state cache is
// read again instead of trusting the event, because handlers may run out of
// order.
func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if s.State == nil || s.State.User == nil || v.UserID != s.State.User.ID {
		return
	}
	channelID := ""
	if vs, err := s.State.VoiceState(v.GuildID, v.UserID); err == nil {
		channelID = vs.ChannelID
	}
	b.voice.observe(v.GuildID, channelID)
}

type voiceConnector struct {
	dg     *discordgo.Session
	engine *stream.Engine
	log    zerolog.Logger

	mu    sync.Mutex
	conns map[string]*voiceConn
	lost  func(guildID string)
}

func newVoiceConnector(dg *discordgo.Session, engine *stream.Engine, log zerolog.Logger) *voiceConnector {
	return &voiceConnector{dg: dg, engine: engine, log: log, conns: make(map[string]*voiceConn)}
}

func (v *voiceConnector) Connect(guildID, channelID string) (player.Conn, error) {
	vc, err := v.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("join voice channel %s: %w", channelID, err)
	}
	c := &voiceConn{owner: v, guildID: guildID, vc: vc, channelID: channelID, engine: v.engine}
	v.mu.Lock()
	v.conns[guildID] = c
	v.mu.Unlock()
	return c, nil
}

// observe applies the bot's current voice channel in a guild, empty when it
// is in none.
func (v *voiceConnector) observe(guildID, channelID string) {
	v.mu.Lock()
	c := v.conns[guildID]
	if c == nil {
		v.mu.Unlock()
		return
	}
	if channelID != "" {
		v.mu.Unlock()
		c.setChannel(channelID)
		return
	}
	delete(v.conns, guildID)
	lost := v.lost
	v.mu.Unlock()

	c.markGone()
	v.log.Info().Str("guild", guildID).Msg("voice connection closed remotely")
	if lost != nil {
		lost(guildID)
	}
}

func (v *voiceConnector) forget(guildID string, c *voiceConn) {
	v.mu.Lock()
	if v.conns[guildID] == c {
		delete(v.conns, guildID)
	}
	v.mu.Unlock()
}

// voiceConn tracks its channel from the bot's voice state updates because
// discordgo does not report moves or kicks on the VoiceConnection.
type voiceConn struct {
	owner   *voiceConnector
	guildID string
	vc      *discordgo.VoiceConnection
	engine  *stream.Engine

	mu        sync.Mutex
	channelID string
	gone      bool
}

func (c *voiceConn) ChannelID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channelID
}

func (c *voiceConn) setChannel(channelID string) {
	c.mu.Lock()
	c.channelID = channelID
	c.mu.Unlock()
}

func (c *voiceConn) markGone() {
	c.mu.Lock()
	c.gone = true
	c.mu.Unlock()
}

func (c *voiceConn) Alive() bool {
	c.mu.Lock()
	gone := c.gone
	c.mu.Unlock()
	if gone {
		return false
	}
	c.vc.RLock()
	defer c.vc.RUnlock()
	return c.vc.Ready
}

func (c *voiceConn) Move(channelID string) error {
	if err := c.vc.ChangeChannel(channelID, false, true); err != nil {
		return fmt.Errorf("move to voice channel %s: %w", channelID, err)
	}
	c.setChannel(channelID)
	return nil
}

func (c *voiceConn) Disconnect() error {
	c.owner.forget(c.guildID, c)
	c.markGone()
	return c.vc.Disconnect()
}

func (c *voiceConn) Play(streamURL string, onDone func(error)) (player.Playback, error) {
	p, err := c.engine.Start(voiceSink{vc: c.vc}, streamURL, onDone)
	if err != nil {
		return nil, err
	}
	return p, nil
}

type voiceSink struct {
	vc *discordgo.VoiceConnection
}

func (s voiceSink) Speaking(on bool) error   { return s.vc.Speaking(on) }
func (s voiceSink) OpusSend() chan<- []byte { return s.vc.OpusSend }
