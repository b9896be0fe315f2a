package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"djtoad/pkg/cmd"

	"github.com/rs/zerolog/log"
)

// WithRecover turns a panicking command into an error so one bad command
// cannot take the bot down.
func WithRecover() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Str("command", c.Name()).Interface("panic", r).
						Bytes("stack", debug.Stack()).Msg("command panicked")
					err = fmt.Errorf("command %s panicked: %v", c.Name(), r)
				}
			}()
			return c.Run(ctx, inv)
		})
	}
}
