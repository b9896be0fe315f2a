// Package track holds the song identity shared by the catalog, the resolver
// and the playback queue.
package track

import "strings"

// UntitledTitle is shown for tracks the catalog returned without a title.
const UntitledTitle = "Untitled"

const watchURLPrefix = "https://www.youtube.com/watch?v="

// Track is an immutable reference to a YouTube video.
type Track struct {
	ID    string
	Title string
}

// New builds a track, falling back to UntitledTitle for blank titles.
func New(id, title string) Track {
	title = strings.TrimSpace(title)
	if title == "" {
		title = UntitledTitle
	}
	return Track{ID: strings.TrimSpace(id), Title: title}
}

// WatchURL returns the YouTube page for the track.
func (t Track) WatchURL() string {
	return WatchURL(t.ID)
}

// WatchURL returns the YouTube page for a video id.
func WatchURL(id string) string {
	return watchURLPrefix + id
}

// IsZero reports whether the track carries no id.
func (t Track) IsZero() bool {
	return t.ID == ""
}

func (t Track) String() string {
	return t.Title
}
