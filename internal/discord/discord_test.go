package discord

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"djtoad/internal/command"
	"djtoad/internal/config"
	"djtoad/internal/music/player"
	"djtoad/internal/music/track"
	"djtoad/pkg/cmd"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

type message struct{ channel, content string }

type fakeMessenger struct {
	mu   sync.Mutex
	sent []message
}

func (f *fakeMessenger) Send(channelID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, message{channelID, content})
	return nil
}

func (f *fakeMessenger) SendEmbed(channelID string, _ *discordgo.MessageEmbed) error {
	return f.Send(channelID, "<embed>")
}

func (f *fakeMessenger) messages() []message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]message(nil), f.sent...)
}

type echoCommand struct {
	err  error
	args chan string
}

func (c *echoCommand) Name() string        { return "echo" }
func (c *echoCommand) Description() string { return "echo" }
func (c *echoCommand) Category() string    { return "test" }
func (c *echoCommand) Usage() string       { return "echo <text>" }
func (c *echoCommand) Aliases() []string   { return []string{"e"} }

func (c *echoCommand) Run(_ context.Context, mc *command.MessageContext, inv *cmd.Invocation) error {
	c.args <- inv.Text
	if c.err != nil {
		return c.err
	}
	return mc.Reply(inv.Text)
}

func newTestBot(t *testing.T, c command.DiscordCommand) (*Bot, *fakeMessenger) {
	t.Helper()
	reg := cmd.NewRegistry()
	command.RegisterCommandIn(reg, c)
	m := &fakeMessenger{}
	return &Bot{
		cfg:       &config.Config{CommandPrefix: "!", GuildBlacklist: []string{"banned"}},
		log:       zerolog.Nop(),
		registry:  reg,
		messenger: m,
		ctx:       context.Background(),
	}, m
}

func msg(guildID, authorID, content string, isBot bool) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		GuildID:   guildID,
		ChannelID: "text",
		Content:   content,
		Author:    &discordgo.User{ID: authorID, Bot: isBot},
	}}
}

func TestHandleMessage(t *testing.T) {
	tests := []struct {
		name    string
		m       *discordgo.MessageCreate
		wantRun bool
		wantArg string
	}{
		{name: "command", m: msg("g", "u", "!echo hello there", false), wantRun: true, wantArg: "hello there"},
		{name: "alias", m: msg("g", "u", "!E hi", false), wantRun: true, wantArg: "hi"},
		{name: "no prefix", m: msg("g", "u", "echo hi", false)},
		{name: "unknown", m: msg("g", "u", "!nope", false)},
		{name: "bot author", m: msg("g", "u", "!echo hi", true)},
		{name: "self", m: msg("g", "self", "!echo hi", false)},
		{name: "blacklisted guild", m: msg("banned", "u", "!echo hi", false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &echoCommand{args: make(chan string, 1)}
			b, m := newTestBot(t, c)
			b.handleMessage(context.Background(), nil, tt.m, "self")

			select {
			case got := <-c.args:
				if !tt.wantRun {
					t.Fatalf("command ran with %q", got)
				}
				if got != tt.wantArg {
					t.Errorf("args = %q, want %q", got, tt.wantArg)
				}
				if sent := m.messages(); len(sent) != 1 || sent[0].channel != "text" {
					t.Errorf("unexpected replies %v", sent)
				}
			default:
				if tt.wantRun {
					t.Fatal("command did not run")
				}
			}
		})
	}
}

func TestHandleMessageRepliesWithError(t *testing.T) {
	c := &echoCommand{args: make(chan string, 1), err: player.ErrNothingPlaying}
	b, m := newTestBot(t, c)
	b.handleMessage(context.Background(), nil, msg("g", "u", "!echo", false), "self")
	<-c.args

	sent := m.messages()
	if len(sent) != 1 {
		t.Fatalf("expected one reply, got %v", sent)
	}
	if sent[0].content != player.ErrorText(player.ErrNothingPlaying) {
		t.Errorf("reply = %q", sent[0].content)
	}

	c.err = errors.New("boom")
	b.handleMessage(context.Background(), nil, msg("g", "u", "!echo", false), "self")
	<-c.args
	sent = m.messages()
	if len(sent) != 2 || !strings.Contains(sent[1].content, "boom") {
		t.Errorf("expected generic error reply, got %v", sent)
	}
}

func TestReporterKeepsOrderAndSkipsSilentEvents(t *testing.T) {
	m := &fakeMessenger{}
	r := newReporter(m, zerolog.Nop())

	song := track.New("id", "Song")
	r.Report(player.Event{GuildID: "g", Status: player.StatusPlaying, Track: song})
	r.Report(player.Event{GuildID: "g", ChannelID: "c", Status: player.StatusPlaying, Track: song})
	r.Report(player.Event{GuildID: "g", ChannelID: "c", Status: player.StatusQueueLoaded, Count: 3})

	deadline := time.Now().Add(2 * time.Second)
	for len(m.messages()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	r.close()

	sent := m.messages()
	if len(sent) != 2 {
		t.Fatalf("expected 2 messages, got %v", sent)
	}
	if !strings.Contains(sent[0].content, "Song") {
		t.Errorf("first message = %q", sent[0].content)
	}
	if sent[1].content != (player.Event{Status: player.StatusQueueLoaded, Count: 3}).Text() {
		t.Errorf("second message = %q", sent[1].content)
	}

	// Reports after close are dropped without blocking.
	r.Report(player.Event{ChannelID: "c", Status: player.StatusStopped})
}

func TestVoiceConnectorFollowsOwnVoiceState(t *testing.T) {
	v := newVoiceConnector(nil, nil, zerolog.Nop())
	lost := make(chan string, 1)
	v.lost = func(guildID string) { lost <- guildID }

	c := &voiceConn{owner: v, guildID: "g", channelID: "v1"}
	v.conns["g"] = c

	v.observe("other", "")
	v.observe("g", "v2")
	if got := c.ChannelID(); got != "v2" {
		t.Errorf("channel = %q, want v2", got)
	}
	select {
	case id := <-lost:
		t.Fatalf("unexpected loss for %s", id)
	default:
	}

	v.observe("g", "")
	select {
	case id := <-lost:
		if id != "g" {
			t.Errorf("lost guild = %q", id)
		}
	default:
		t.Fatal("expected loss to be reported")
	}
	if c.Alive() {
		t.Error("expected a closed connection to report itself gone")
	}
	if _, ok := v.conns["g"]; ok {
		t.Error("expected the connection to be forgotten")
	}

	// later updates for the guild are ignored
	v.observe("g", "")
	if len(lost) != 0 {
		t.Error("expected a single loss report")
	}
}
