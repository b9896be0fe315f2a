// Package resolver turns a YouTube video id into a direct, time-limited audio
// stream URL that ffmpeg can open.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ErrResolveFailed is returned, wrapped with the cause, whenever no stream URL
// could be obtained for a track.
var ErrResolveFailed = errors.New("audio resolution failed")

// Audio is the result of a successful resolution.
type Audio struct {
	StreamURL string
	Title     string
}

// Resolver resolves a video id to its audio stream.
type Resolver interface {
	Resolve(ctx context.Context, trackID string) (Audio, error)
}

// Backend is a named Resolver used inside a Chain.
type Backend interface {
	Resolver
	Name() string
}

// Chain tries each backend in order and returns the first success.
type Chain struct {
	backends []Backend
	log      zerolog.Logger
}

func NewChain(log zerolog.Logger, backends ...Backend) *Chain {
	return &Chain{backends: backends, log: log.With().Str("component", "resolver").Logger()}
}

func (c *Chain) Resolve(ctx context.Context, trackID string) (Audio, error) {
	if strings.TrimSpace(trackID) == "" {
		return Audio{}, fmt.Errorf("%w: empty track id", ErrResolveFailed)
	}

	var errs []error
	for _, b := range c.backends {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		audio, err := b.Resolve(ctx, trackID)
		if err == nil && audio.StreamURL != "" {
			c.log.Debug().Str("backend", b.Name()).Str("track", trackID).Msg("resolved")
			return audio, nil
		}
		if err == nil {
			err = errors.New("empty stream url")
		}
		c.log.Warn().Err(err).Str("backend", b.Name()).Str("track", trackID).Msg("backend failed")
		errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
	}
	if len(errs) == 0 {
		errs = append(errs, errors.New("no backends configured"))
	}
	return Audio{}, failed(trackID, errors.Join(errs...))
}

// failed wraps cause as an ErrResolveFailed for trackID, once.
func failed(trackID string, cause error) error {
	if errors.Is(cause, ErrResolveFailed) {
		return cause
	}
	return fmt.Errorf("%w: %s: %w", ErrResolveFailed, trackID, cause)
}
