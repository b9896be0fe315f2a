package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"djtoad/internal/music/track"

	"github.com/lrstanley/go-ytdlp"
)

// YTDLP resolves through the yt-dlp binary.
type YTDLP struct {
	Proxy string
}

func (YTDLP) Name() string { return "yt-dlp" }

func (y YTDLP) Resolve(ctx context.Context, trackID string) (Audio, error) {
	cmd := ytdlp.New().
		Format("bestaudio/best").
		Print("%(url)s\t%(title)s").
		NoPlaylist().
		SkipDownload().
		NoWarnings().
		IgnoreConfig()
	if y.Proxy != "" {
		cmd.Proxy(y.Proxy)
	}

	res, err := cmd.Run(ctx, track.WatchURL(trackID))
	if err != nil {
		if res != nil && res.Stderr != "" {
			return Audio{}, fmt.Errorf("%w: %s", err, strings.TrimSpace(res.Stderr))
		}
		return Audio{}, err
	}
	return parsePrint(res.Stdout)
}

// parsePrint reads the first "url<TAB>title" line printed by yt-dlp.
func parsePrint(out string) (Audio, error) {
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		url, title, _ := strings.Cut(strings.TrimSpace(line), "\t")
		if !strings.HasPrefix(url, "http") {
			continue
		}
		if title == "NA" {
			title = ""
		}
		return Audio{StreamURL: url, Title: strings.TrimSpace(title)}, nil
	}
	return Audio{}, errors.New("yt-dlp printed no stream url")
}
