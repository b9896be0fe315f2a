package middleware

import (
	"context"
	"time"

	"djtoad/internal/command"
	"djtoad/pkg/cmd"

	"github.com/rs/zerolog/log"
)

// WithCommandLogger logs every run with its outcome through the global
// zerolog logger.
func WithCommandLogger() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			ev := log.Info()
			if err != nil {
				ev = log.Warn().Err(err)
			}
			ev = ev.Str("component", "command").Str("command", c.Name()).Dur("took", time.Since(start))
			if inv.Name != "" && inv.Name != c.Name() {
				ev = ev.Str("alias", inv.Name)
			}
			if v, ok := inv.Data.(*command.MessageContext); ok {
				ev = ev.Str("guild", v.GuildID()).Str("channel", v.ChannelID()).
					Str("user", v.AuthorID()).Str("username", v.AuthorName())
			}
			if inv.Text != "" {
				ev = ev.Str("args", inv.Text)
			}
			ev.Msg("command handled")
			return err
		})
	}
}
