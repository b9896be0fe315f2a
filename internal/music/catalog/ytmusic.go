package catalog

import (
	"context"

	"djtoad/internal/music/track"

	"github.com/raitonoberu/ytmusic"
)

// YTMusic searches the songs shelf of YouTube Music.
type YTMusic struct{}

func (YTMusic) SearchSongs(ctx context.Context, query string) ([]track.Track, error) {
	type result struct {
		tracks []track.Track
		err    error
	}
	done := make(chan result, 1)

	// the ytmusic client takes no context; abandon the call when ctx ends
	go func() {
		res, err := ytmusic.TrackSearch(query).Next()
		if err != nil {
			done <- result{err: err}
			return
		}
		out := make([]track.Track, 0, len(res.Tracks))
		for _, t := range res.Tracks {
			out = append(out, track.Track{ID: t.VideoID, Title: t.Title})
		}
		done <- result{tracks: out}
	}()

	select {
	case r := <-done:
		return r.tracks, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
