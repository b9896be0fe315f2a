package music

import (
	"context"

	"djtoad/internal/command"
	"djtoad/pkg/cmd"
)

type NextCommand struct {
	Player Jukebox
}

func (c *NextCommand) Name() string        { return "next" }
func (c *NextCommand) Description() string { return "Skip to the next song in the queue" }
func (c *NextCommand) Category() string    { return category }
func (c *NextCommand) Usage() string       { return "next" }
func (c *NextCommand) Aliases() []string   { return []string{"skip"} }

func (c *NextCommand) Run(ctx context.Context, mc *command.MessageContext, _ *cmd.Invocation) error {
	return c.Player.Skip(ctx, mc.GuildID(), mc.ChannelID())
}

type PauseCommand struct {
	Player Jukebox
}

func (c *PauseCommand) Name() string        { return "pause" }
func (c *PauseCommand) Description() string { return "Pause the current song" }
func (c *PauseCommand) Category() string    { return category }
func (c *PauseCommand) Usage() string       { return "pause" }

func (c *PauseCommand) Run(ctx context.Context, mc *command.MessageContext, _ *cmd.Invocation) error {
	return c.Player.Pause(ctx, mc.GuildID(), mc.ChannelID())
}

type ResumeCommand struct {
	Player Jukebox
}

func (c *ResumeCommand) Name() string        { return "resume" }
func (c *ResumeCommand) Description() string { return "Resume the paused song" }
func (c *ResumeCommand) Category() string    { return category }
func (c *ResumeCommand) Usage() string       { return "resume" }

func (c *ResumeCommand) Run(ctx context.Context, mc *command.MessageContext, _ *cmd.Invocation) error {
	return c.Player.Resume(ctx, mc.GuildID(), mc.ChannelID())
}

type StopCommand struct {
	Player Jukebox
}

func (c *StopCommand) Name() string        { return "stop" }
func (c *StopCommand) Description() string { return "Stop the music, clear the queue and leave voice" }
func (c *StopCommand) Category() string    { return category }
func (c *StopCommand) Usage() string       { return "stop" }

func (c *StopCommand) Run(ctx context.Context, mc *command.MessageContext, _ *cmd.Invocation) error {
	return c.Player.Stop(ctx, mc.GuildID(), mc.ChannelID())
}
