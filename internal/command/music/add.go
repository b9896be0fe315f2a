package music

import (
	"context"

	"djtoad/internal/command"
	"djtoad/pkg/cmd"
)

type AddCommand struct {
	Player Jukebox
}

func (c *AddCommand) Name() string        { return "add" }
func (c *AddCommand) Description() string { return "Put a song at the front of the queue" }
func (c *AddCommand) Category() string    { return category }
func (c *AddCommand) Usage() string       { return "add <song name>" }

func (c *AddCommand) Run(ctx context.Context, mc *command.MessageContext, inv *cmd.Invocation) error {
	if inv.Text == "" {
		return usage(mc, c)
	}
	req, _ := request(nil, mc, inv.Text)
	_, err := c.Player.Add(ctx, req)
	return err
}
