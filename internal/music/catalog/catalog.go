// Package catalog looks songs up on YouTube Music and builds the
// recommendation list that follows a played track.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"djtoad/internal/music/track"
	"djtoad/pkg/retrylimit"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultRecommendationLimit caps the recommendation list.
const DefaultRecommendationLimit = 10

var (
	ErrNoSearchResults = errors.New("no search results")
	ErrSearchFailed    = errors.New("search failed")
)

// Searcher returns song hits for a free-text query, best match first.
type Searcher interface {
	SearchSongs(ctx context.Context, query string) ([]track.Track, error)
}

// Recommender returns tracks related to seedID in upstream order. The list
// may contain the seed itself and entries without an id.
type Recommender interface {
	Related(ctx context.Context, seedID string) ([]track.Track, error)
}

type Options struct {
	Limit  int
	Retry  retrylimit.Config
	Logger zerolog.Logger
}

// Catalog fronts the upstream search and recommendation sources with a shared
// adaptive rate limit and bounded retries.
type Catalog struct {
	searcher    Searcher
	recommender Recommender
	limiter     *retrylimit.AdaptiveLimiter
	retry       retrylimit.Config
	limit       int
	log         zerolog.Logger
}

func New(s Searcher, r Recommender, opts Options) *Catalog {
	if opts.Limit <= 0 {
		opts.Limit = DefaultRecommendationLimit
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retrylimit.DefaultConfig()
	}
	log := opts.Logger.With().Str("component", "catalog").Logger()
	opts.Retry.Logger = &log

	return &Catalog{
		searcher:    s,
		recommender: r,
		limiter:     retrylimit.NewAdaptiveLimiter(rate.Limit(5), 1, rate.Limit(10), 1, 0.5),
		retry:       opts.Retry,
		limit:       opts.Limit,
		log:         log,
	}
}

// Search returns the first song hit for query. A hit without an id counts as
// no result.
func (c *Catalog) Search(ctx context.Context, query string) (track.Track, error) {
	var hits []track.Track
	err := retrylimit.Do(ctx, c.limiter, c.retry, func(ctx context.Context) error {
		var err error
		hits, err = c.searcher.SearchSongs(ctx, query)
		return err
	})
	if err != nil {
		return track.Track{}, fmt.Errorf("%w: %q: %w", ErrSearchFailed, query, err)
	}
	if len(hits) == 0 || hits[0].IsZero() {
		return track.Track{}, fmt.Errorf("%w: %q", ErrNoSearchResults, query)
	}
	first := hits[0]
	return track.New(first.ID, first.Title), nil
}

// Recommendations returns up to the configured limit of tracks related to
// seedID, skipping excludeID. Upstream failures yield an empty list.
func (c *Catalog) Recommendations(ctx context.Context, seedID, excludeID string) []track.Track {
	var related []track.Track
	err := retrylimit.Do(ctx, c.limiter, c.retry, func(ctx context.Context) error {
		var err error
		related, err = c.recommender.Related(ctx, seedID)
		return err
	})
	if err != nil {
		c.log.Warn().Err(err).Str("seed", seedID).Msg("recommendations unavailable")
		return nil
	}
	return pick(related, excludeID, c.limit)
}

// pick keeps upstream order, drops entries without an id and the excluded id,
// and stops at limit. Skipped entries do not count against the limit.
func pick(related []track.Track, excludeID string, limit int) []track.Track {
	out := make([]track.Track, 0, min(len(related), limit))
	for _, t := range related {
		if len(out) == limit {
			break
		}
		if t.IsZero() || t.ID == excludeID {
			continue
		}
		out = append(out, track.New(t.ID, t.Title))
	}
	return out
}
