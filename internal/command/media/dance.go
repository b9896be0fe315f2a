package media

import (
	"context"

	"djtoad/internal/command"
	"djtoad/internal/middleware"
	"djtoad/pkg/cmd"
)

const category = "💃 Fun"

// DanceCommand replies with a fixed dancing toad GIF.
type DanceCommand struct {
	name string
	gif  string
}

func (c *DanceCommand) Name() string        { return c.name }
func (c *DanceCommand) Description() string { return "Watch the toad dance" }
func (c *DanceCommand) Category() string    { return category }
func (c *DanceCommand) Usage() string       { return c.name }

func (c *DanceCommand) Run(_ context.Context, mc *command.MessageContext, _ *cmd.Invocation) error {
	return mc.Reply(c.gif)
}

var dances = []*DanceCommand{
	{
		name: "dance1",
		gif:  "https://media0.giphy.com/media/v1.Y2lkPTc5MGI3NjExNGQweHk5MmpidXJrZDJidzcwbGR6ZzFpZTE1ZzFuMGs3emtwOHFmaSZlcD12MV9pbnRlcm5hbF9naWZfYnlfaWQmY3Q9cw/pBDzxTAYdL6wRRdNTR/giphy.gif",
	},
	{
		name: "dance2",
		gif:  "https://media0.giphy.com/media/v1.Y2lkPTc5MGI3NjExaHBvc3h4ZmlqeWRhNmY1Y2wyaHFrY29jb3M1aDdpdjB6M3QzaWc3ciZlcD12MV9pbnRlcm5hbF9naWZfYnlfaWQmY3Q9cw/gmUM6ag84nFnwaumx8/giphy.gif",
	},
}

func init() {
	for _, d := range dances {
		command.RegisterCommand(d, middleware.WithCommandLogger())
	}
}
