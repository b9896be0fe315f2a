package music

import (
	"context"
	"fmt"
	"strings"

	"djtoad/internal/command"
	"djtoad/internal/music/player"
	"djtoad/pkg/cmd"
)

// maxMessageLen keeps list replies under Discord's 2000 character limit.
const maxMessageLen = 1900

type ListCommand struct {
	Player Jukebox
}

func (c *ListCommand) Name() string        { return "list" }
func (c *ListCommand) Description() string { return "Show the current song and the queue" }
func (c *ListCommand) Category() string    { return category }
func (c *ListCommand) Usage() string       { return "list" }
func (c *ListCommand) Aliases() []string   { return []string{"queue", "q"} }

func (c *ListCommand) Run(ctx context.Context, mc *command.MessageContext, _ *cmd.Invocation) error {
	snap, err := c.Player.Snapshot(ctx, mc.GuildID())
	if err != nil {
		return err
	}
	return mc.Reply(formatSnapshot(snap))
}

func formatSnapshot(snap player.Snapshot) string {
	if snap.Current.IsZero() && len(snap.Queue) == 0 {
		return player.ErrorText(player.ErrQueueEmpty)
	}

	var b strings.Builder
	if !snap.Current.IsZero() {
		verb := "Now playing"
		if snap.State == player.StatePaused {
			verb = "Paused"
		}
		fmt.Fprintf(&b, "🎶 %s: **%s**\n", verb, snap.Current.Title)
	}
	if len(snap.Queue) == 0 {
		b.WriteString("📜 Nothing queued after this one. Croak!")
		return b.String()
	}

	b.WriteString("📜 Up next:\n")
	for i, t := range snap.Queue {
		line := fmt.Sprintf("%d. %s\n", i+1, t.Title)
		if b.Len()+len(line) > maxMessageLen {
			fmt.Fprintf(&b, "...and %d more", len(snap.Queue)-i)
			break
		}
		b.WriteString(line)
	}
	return strings.TrimRight(b.String(), "\n")
}
