package core

import (
	"context"
	"strings"
	"testing"

	"djtoad/internal/command"
	"djtoad/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

type stub struct{ name, category string }

func (s stub) Name() string        { return s.name }
func (s stub) Description() string { return "does " + s.name }
func (s stub) Category() string    { return s.category }
func (s stub) Usage() string       { return s.name + " <x>" }
func (s stub) Run(context.Context, *command.MessageContext, *cmd.Invocation) error {
	return nil
}

type embeds struct{ got []*discordgo.MessageEmbed }

func (e *embeds) Send(string, string) error { return nil }
func (e *embeds) SendEmbed(_ string, m *discordgo.MessageEmbed) error {
	e.got = append(e.got, m)
	return nil
}

func TestHelpGroupsByCategory(t *testing.T) {
	reg := cmd.NewRegistry()
	command.RegisterCommandIn(reg, stub{"play", "🎵 Music"})
	command.RegisterCommandIn(reg, stub{"stop", "🎵 Music"})
	command.RegisterCommandIn(reg, stub{"dance1", "💃 Fun"})

	out := &embeds{}
	mc := &command.MessageContext{
		Event:     &discordgo.MessageCreate{Message: &discordgo.Message{ChannelID: "c"}},
		Messenger: out,
		Prefix:    "!",
	}
	help := &HelpCommand{Registry: reg}
	if err := help.Run(context.Background(), mc, &cmd.Invocation{}); err != nil {
		t.Fatal(err)
	}

	if len(out.got) != 1 {
		t.Fatalf("expected one embed, got %d", len(out.got))
	}
	fields := out.got[0].Fields
	if len(fields) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(fields))
	}
	var music string
	for _, f := range fields {
		if f.Name == "🎵 Music" {
			music = f.Value
		}
	}
	if !strings.Contains(music, "`!play <x>` does play") || !strings.Contains(music, "`!stop <x>`") {
		t.Errorf("unexpected music field %q", music)
	}
}
