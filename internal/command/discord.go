// Package command adapts Discord prefix commands to the transport-agnostic
// core in pkg/cmd.
package command

import (
	"context"

	"djtoad/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

// Messenger posts to a channel.
type Messenger interface {
	Send(channelID, content string) error
	SendEmbed(channelID string, embed *discordgo.MessageEmbed) error
}

// MessageContext is what the Discord runtime passes to a prefix command.
type MessageContext struct {
	Session   *discordgo.Session
	Event     *discordgo.MessageCreate
	Messenger Messenger
	Prefix    string
}

func (c *MessageContext) GuildID() string   { return c.Event.GuildID }
func (c *MessageContext) ChannelID() string { return c.Event.ChannelID }

func (c *MessageContext) AuthorID() string {
	if c.Event.Author == nil {
		return ""
	}
	return c.Event.Author.ID
}

func (c *MessageContext) AuthorName() string {
	if c.Event.Author == nil {
		return ""
	}
	return c.Event.Author.Username
}

// Reply answers in the channel the command came from.
func (c *MessageContext) Reply(content string) error {
	return c.Messenger.Send(c.ChannelID(), content)
}

func (c *MessageContext) ReplyEmbed(embed *discordgo.MessageEmbed) error {
	return c.Messenger.SendEmbed(c.ChannelID(), embed)
}

// DiscordMeta is exposed by the adapter so middleware and help can read
// command metadata without knowing the concrete command type.
type DiscordMeta interface {
	Category() string
	Usage() string
}

// DiscordCommand is what individual prefix commands implement.
type DiscordCommand interface {
	Name() string
	Description() string
	Category() string
	Usage() string
	Run(ctx context.Context, mc *MessageContext, inv *cmd.Invocation) error
}

// DiscordAdapter lets a DiscordCommand live in the universal registry.
type DiscordAdapter struct {
	Cmd DiscordCommand
}

func (a *DiscordAdapter) Name() string        { return a.Cmd.Name() }
func (a *DiscordAdapter) Description() string { return a.Cmd.Description() }
func (a *DiscordAdapter) Category() string    { return a.Cmd.Category() }
func (a *DiscordAdapter) Usage() string       { return a.Cmd.Usage() }

func (a *DiscordAdapter) Aliases() []string {
	if al, ok := a.Cmd.(cmd.Aliased); ok {
		return al.Aliases()
	}
	return nil
}

// Run ignores invocations that did not come from a Discord message.
func (a *DiscordAdapter) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, ok := inv.Data.(*MessageContext)
	if !ok {
		return nil
	}
	return a.Cmd.Run(ctx, mc, inv)
}

// RegisterCommand registers a Discord command with the default registry
// behind the given middlewares.
func RegisterCommand(discordCmd DiscordCommand, mws ...cmd.Middleware) {
	RegisterCommandIn(cmd.DefaultRegistry, discordCmd, mws...)
}

func RegisterCommandIn(r *cmd.Registry, discordCmd DiscordCommand, mws ...cmd.Middleware) {
	r.Register(cmd.Apply(&DiscordAdapter{Cmd: discordCmd}, mws...))
}
