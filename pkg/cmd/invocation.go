// Package cmd is a transport-agnostic command core: a command has a name, a
// description and Run(ctx, invocation). Adapters (Discord prefix messages, a
// CLI) decide how commands are found and what Data carries.
package cmd

import "context"

// Invocation is what a runner passes to a command.
type Invocation struct {
	// Name is the command name as typed, which may be an alias.
	Name string
	// Args are the whitespace-separated words after the name.
	Args []string
	// Text is everything after the name with surrounding space trimmed,
	// for commands taking free-form input such as a search query.
	Text string
	// Data is the adapter's context, e.g. a Discord message context.
	Data any
}

type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

// Aliased is implemented by commands reachable under extra names.
type Aliased interface {
	Aliases() []string
}
