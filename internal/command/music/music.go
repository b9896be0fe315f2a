// Package music holds the prefix commands that drive the guild player.
package music

import (
	"context"
	"errors"
	"fmt"

	"djtoad/internal/bot"
	"djtoad/internal/command"
	"djtoad/internal/music/player"
	"djtoad/internal/music/track"
	"djtoad/pkg/cmd"
)

const category = "🎵 Music"

// Jukebox is the part of the player the commands use.
type Jukebox interface {
	Play(ctx context.Context, req player.Request) (track.Track, error)
	Add(ctx context.Context, req player.Request) (track.Track, error)
	Skip(ctx context.Context, guildID, channelID string) error
	Pause(ctx context.Context, guildID, channelID string) error
	Resume(ctx context.Context, guildID, channelID string) error
	Stop(ctx context.Context, guildID, channelID string) error
	Snapshot(ctx context.Context, guildID string) (player.Snapshot, error)
}

// Register adds every music command to the default registry.
func Register(b bot.BotVoice, p Jukebox, mws ...cmd.Middleware) {
	for _, c := range Commands(b, p) {
		command.RegisterCommand(c, mws...)
	}
}

func Commands(b bot.BotVoice, p Jukebox) []command.DiscordCommand {
	return []command.DiscordCommand{
		&PlayCommand{Bot: b, Player: p},
		&AddCommand{Player: p},
		&NextCommand{Player: p},
		&ListCommand{Player: p},
		&PauseCommand{Player: p},
		&ResumeCommand{Player: p},
		&StopCommand{Player: p},
	}
}

// request builds a player request for the message author.
func request(b bot.BotVoice, mc *command.MessageContext, query string) (player.Request, error) {
	req := player.Request{
		GuildID:   mc.GuildID(),
		ChannelID: mc.ChannelID(),
		Query:     query,
	}
	if b == nil {
		return req, nil
	}
	vs, err := b.FindUserVoiceState(mc.GuildID(), mc.AuthorID())
	switch {
	case errors.Is(err, bot.ErrNotInVoice):
		return req, nil
	case err != nil:
		return req, fmt.Errorf("find voice state: %w", err)
	}
	req.VoiceChannelID = vs.ChannelID
	return req, nil
}

func usage(mc *command.MessageContext, c command.DiscordCommand) error {
	return mc.Reply(fmt.Sprintf("ℹ️ Usage: `%s%s`", mc.Prefix, c.Usage()))
}
