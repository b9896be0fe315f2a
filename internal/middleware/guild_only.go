package middleware

import (
	"context"

	"djtoad/internal/command"
	"djtoad/pkg/cmd"
)

// WithGuildOnly drops commands sent outside a server, telling the user why.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if v, ok := inv.Data.(*command.MessageContext); ok && v.GuildID() == "" {
				return v.Reply("🐸 This command only works inside a server. Croak!")
			}
			return c.Run(ctx, inv)
		})
	}
}
