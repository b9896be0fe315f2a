package player

import (
	"errors"

	"djtoad/internal/music/catalog"
	"djtoad/internal/music/resolver"
)

var (
	ErrNotInVoiceChannel = errors.New("requester is not in a voice channel")
	ErrNoSearchResults   = catalog.ErrNoSearchResults
	ErrSearchFailed      = catalog.ErrSearchFailed
	ErrResolveFailed     = resolver.ErrResolveFailed
	ErrQueueEmpty        = errors.New("queue is empty")
	ErrNothingPlaying    = errors.New("nothing is playing")
	ErrNothingPaused     = errors.New("nothing is paused")
	ErrNotConnected      = errors.New("not connected to a voice channel")
	ErrAdvanceFailed     = errors.New("could not start the next track")
	ErrClosed            = errors.New("player is shutting down")

	// errTaskPanicked is what a synchronous call returns when its task panics.
	errTaskPanicked = errors.New("player task panicked")
)
