package music

import (
	"context"

	"djtoad/internal/bot"
	"djtoad/internal/command"
	"djtoad/pkg/cmd"
)

type PlayCommand struct {
	Bot    bot.BotVoice
	Player Jukebox
}

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return "Play a song now and queue recommendations after it" }
func (c *PlayCommand) Category() string    { return category }
func (c *PlayCommand) Usage() string       { return "play <song name>" }
func (c *PlayCommand) Aliases() []string   { return []string{"p"} }

func (c *PlayCommand) Run(ctx context.Context, mc *command.MessageContext, inv *cmd.Invocation) error {
	if inv.Text == "" {
		return usage(mc, c)
	}
	req, err := request(c.Bot, mc, inv.Text)
	if err != nil {
		return err
	}
	_, err = c.Player.Play(ctx, req)
	return err
}
