package discord

import (
	"sync"

	"djtoad/internal/music/player"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const reportBacklog = 64

type sessionMessenger struct {
	dg *discordgo.Session
}

func (m *sessionMessenger) Send(channelID, content string) error {
	_, err := m.dg.ChannelMessageSend(channelID, content)
	return err
}

func (m *sessionMessenger) SendEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	_, err := m.dg.ChannelMessageSendEmbed(channelID, embed)
	return err
}

type sender interface {
	Send(channelID, content string) error
}

// reporter sends player events from a single goroutine so guild executors
// never wait on Discord and messages keep their order. Events are dropped
// when the backlog is full.
type reporter struct {
	out    sender
	log    zerolog.Logger
	events chan player.Event
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newReporter(out sender, log zerolog.Logger) *reporter {
	r := &reporter{
		out:    out,
		log:    log,
		events: make(chan player.Event, reportBacklog),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *reporter) Report(e player.Event) {
	if e.ChannelID == "" {
		return
	}
	select {
	case <-r.quit:
	case r.events <- e:
	default:
		r.log.Warn().Str("guild", e.GuildID).Str("status", string(e.Status)).Msg("report backlog full, dropping event")
	}
}

func (r *reporter) loop() {
	defer close(r.done)
	for {
		select {
		case <-r.quit:
			return
		case e := <-r.events:
			if err := r.out.Send(e.ChannelID, e.Text()); err != nil {
				r.log.Error().Err(err).Str("guild", e.GuildID).Str("channel", e.ChannelID).Msg("failed to report event")
			}
		}
	}
}

func (r *reporter) close() {
	r.once.Do(func() { close(r.quit) })
	<-r.done
}
