package catalog

import (
	"context"
	"fmt"
	"strings"

	"djtoad/internal/music/track"

	"github.com/lrstanley/go-ytdlp"
)

// mixDepth is how many mix entries are listed; a few spare entries cover the
// seed and unavailable videos that get skipped.
const mixDepth = DefaultRecommendationLimit + 5

// Mix lists the YouTube radio mix seeded by a video, which is the same
// watch-next queue YouTube Music builds for a song.
type Mix struct {
	Proxy string
}

func (m Mix) Related(ctx context.Context, seedID string) ([]track.Track, error) {
	cmd := ytdlp.New().
		FlatPlaylist().
		Print("%(id)s\t%(title)s").
		PlaylistItems(fmt.Sprintf("1-%d", mixDepth)).
		NoWarnings().
		IgnoreConfig()
	if m.Proxy != "" {
		cmd.Proxy(m.Proxy)
	}

	res, err := cmd.Run(ctx, mixURL(seedID))
	if err != nil {
		if res != nil && res.Stderr != "" {
			return nil, fmt.Errorf("list mix for %s: %w: %s", seedID, err, strings.TrimSpace(res.Stderr))
		}
		return nil, fmt.Errorf("list mix for %s: %w", seedID, err)
	}
	return parseMix(res.Stdout), nil
}

func mixURL(seedID string) string {
	return track.WatchURL(seedID) + "&list=RD" + seedID
}

// parseMix reads "id<TAB>title" lines. Lines without an id are kept as zero
// tracks so callers see upstream order untouched.
func parseMix(out string) []track.Track {
	var tracks []track.Track
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		id, title, _ := strings.Cut(line, "\t")
		id = strings.TrimSpace(id)
		if id == "NA" {
			id = ""
		}
		if title == "NA" {
			title = ""
		}
		tracks = append(tracks, track.Track{ID: id, Title: strings.TrimSpace(title)})
	}
	return tracks
}
