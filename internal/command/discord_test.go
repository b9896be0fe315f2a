package command

import (
	"context"
	"testing"

	"djtoad/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

type sink struct{ sent []string }

func (s *sink) Send(_, content string) error {
	s.sent = append(s.sent, content)
	return nil
}

func (s *sink) SendEmbed(_ string, e *discordgo.MessageEmbed) error {
	s.sent = append(s.sent, e.Description)
	return nil
}

type echo struct{}

func (echo) Name() string        { return "echo" }
func (echo) Description() string { return "Repeat after me" }
func (echo) Category() string    { return "Test" }
func (echo) Usage() string       { return "echo <text>" }
func (echo) Aliases() []string   { return []string{"say"} }

func (echo) Run(_ context.Context, mc *MessageContext, inv *cmd.Invocation) error {
	return mc.Reply(inv.Text)
}

func TestAdapterRunsWithMessageContext(t *testing.T) {
	r := cmd.NewRegistry()
	RegisterCommandIn(r, echo{})

	c := r.Get("say")
	if c == nil {
		t.Fatal("expected alias lookup to work through the adapter")
	}

	s := &sink{}
	mc := &MessageContext{
		Event: &discordgo.MessageCreate{Message: &discordgo.Message{
			ChannelID: "chan", GuildID: "guild", Author: &discordgo.User{ID: "u"},
		}},
		Messenger: s,
	}
	inv := &cmd.Invocation{Name: "say", Text: "croak", Data: mc}
	if err := c.Run(context.Background(), inv); err != nil {
		t.Fatal(err)
	}
	if len(s.sent) != 1 || s.sent[0] != "croak" {
		t.Errorf("expected [croak], got %v", s.sent)
	}

	meta, ok := cmd.Root(c).(DiscordMeta)
	if !ok || meta.Category() != "Test" {
		t.Error("expected adapter to expose DiscordMeta")
	}
}

func TestAdapterIgnoresForeignData(t *testing.T) {
	a := &DiscordAdapter{Cmd: echo{}}
	if err := a.Run(context.Background(), &cmd.Invocation{Data: "cli"}); err != nil {
		t.Errorf("expected nil for foreign data, got %v", err)
	}
}
