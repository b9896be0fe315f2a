package player

import (
	"errors"
	"fmt"

	"djtoad/internal/music/track"
)

type Status string

const (
	StatusSearching     Status = "Searching"
	StatusSearchingAdd  Status = "Searching To Add"
	StatusPlaying       Status = "Playing"
	StatusFetchingRecs  Status = "Fetching Recommendations"
	StatusQueueLoaded   Status = "Queue Loaded"
	StatusAdded         Status = "Track Added"
	StatusSkipped       Status = "Skipped"
	StatusPaused        Status = "Playback Paused"
	StatusResumed       Status = "Playback Resumed"
	StatusStopped       Status = "Playback Stopped"
	StatusQueueEmpty    Status = "Queue Empty"
	StatusResolveFailed Status = "Resolve Failed"
	StatusAdvanceFailed Status = "Advance Failed"
	StatusDisconnected  Status = "Voice Disconnected"
)

func (s Status) StringEmoji() string {
	m := map[Status]string{
		StatusSearching:     "🔍",
		StatusSearchingAdd:  "🔍",
		StatusPlaying:       "🎶",
		StatusFetchingRecs:  "⏳",
		StatusQueueLoaded:   "✅",
		StatusAdded:         "✅",
		StatusSkipped:       "⏩",
		StatusPaused:        "⏸️",
		StatusResumed:       "▶️",
		StatusStopped:       "⏹️",
		StatusQueueEmpty:    "🚫",
		StatusResolveFailed: "❌",
		StatusAdvanceFailed: "❌",
		StatusDisconnected:  "👋",
	}
	return m[s]
}

// Event is a user-facing progress notification for one guild. ChannelID is
// empty when nobody asked to be told.
type Event struct {
	GuildID   string
	ChannelID string
	Status    Status
	Track     track.Track
	Query     string
	Count     int
	Err       error
}

// Reporter delivers events to users. Report is called from guild executors
// and request goroutines; it must be safe for concurrent use and must not
// call back into the Controller.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) { f(e) }

// Text renders the event as a chat message.
func (e Event) Text() string {
	emoji := e.Status.StringEmoji()
	switch e.Status {
	case StatusSearching:
		return fmt.Sprintf("%s Searching for '%s' and recommended songs... croak!", emoji, e.Query)
	case StatusSearchingAdd:
		return fmt.Sprintf("%s Searching for '%s' on YouTube Music... croak!", emoji, e.Query)
	case StatusPlaying:
		return fmt.Sprintf("%s Now playing: **%s**, croak!", emoji, e.Track.Title)
	case StatusFetchingRecs:
		return fmt.Sprintf("%s Fetching recommended songs... croak!", emoji)
	case StatusQueueLoaded:
		return fmt.Sprintf("%s Playlist loaded with %d songs. Croak!", emoji, e.Count)
	case StatusAdded:
		return fmt.Sprintf("%s '%s' was added to the front of the queue. Croak!", emoji, e.Track.Title)
	case StatusSkipped:
		return fmt.Sprintf("%s Skipping to the next song... croak!", emoji)
	case StatusPaused:
		return fmt.Sprintf("%s Playback paused. Croak!", emoji)
	case StatusResumed:
		return fmt.Sprintf("%s Playback resumed. Croak!", emoji)
	case StatusStopped:
		return fmt.Sprintf("%s Disconnected and queue cleared. Croak!", emoji)
	case StatusQueueEmpty:
		return fmt.Sprintf("%s No more songs in the queue. Disconnecting... croak!", emoji)
	case StatusResolveFailed:
		return fmt.Sprintf("%s Could not get audio for '%s', trying the next one... croak!", emoji, e.Track.Title)
	case StatusAdvanceFailed:
		return fmt.Sprintf("%s Could not play the next songs. Use play or add to try again. Croak!", emoji)
	case StatusDisconnected:
		return fmt.Sprintf("%s I was removed from the voice channel, so the queue is cleared. Croak!", emoji)
	}
	return fmt.Sprintf("%s %s", emoji, e.Status)
}

// ErrorText renders an error returned by the controller as a chat message.
func ErrorText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotInVoiceChannel):
		return "❌ You need to be in a voice channel first. Croak!"
	case errors.Is(err, ErrNoSearchResults):
		return "❌ No results found, croak!"
	case errors.Is(err, ErrSearchFailed):
		return "❌ YouTube Music is not answering right now, croak!"
	case errors.Is(err, ErrResolveFailed):
		return "❌ Could not get the audio for that song, croak!"
	case errors.Is(err, ErrNothingPlaying):
		return "🚫 No song is playing right now. Croak!"
	case errors.Is(err, ErrNothingPaused):
		return "🚫 There is no paused song to resume. Croak!"
	case errors.Is(err, ErrNotConnected):
		return "🚫 I'm not connected to any voice channel. Croak!"
	case errors.Is(err, ErrQueueEmpty):
		return "ℹ️ The queue is empty. Croak!"
	case errors.Is(err, ErrClosed):
		return "💤 I'm going to sleep, try again later. Croak!"
	}
	return fmt.Sprintf("Error running command: %v", err)
}
