package player

import (
	"djtoad/internal/music/queue"
	"djtoad/internal/music/track"
)

type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StatePlaying    State = "playing"
	StatePaused     State = "paused"
	StateAdvancing  State = "advancing"
	StateStopped    State = "stopped"
)

// session is a guild's voice presence. Only the guild executor touches it.
type session struct {
	conn     Conn
	state    State
	current  track.Track
	playback Playback
	// gen identifies the live playback; callbacks carrying an older
	// generation belong to superseded or stopped playbacks.
	gen uint64
	// channelID is the text channel that receives asynchronous reports.
	channelID string
}

// Snapshot is a point-in-time view of a guild, as shown by the list command.
type Snapshot struct {
	State State
	// Current is set only while a track is playing or paused.
	Current track.Track
	Queue   []track.Track
}

func (g *guild) snapshot() Snapshot {
	snap := Snapshot{State: StateIdle}
	if s := g.session; s != nil {
		snap.State = s.state
		if s.state == StatePlaying || s.state == StatePaused {
			snap.Current = s.current
		}
	}
	if g.queue != nil {
		snap.Queue = g.queue.PeekAll()
	}
	return snap
}

// ensureQueue creates the guild queue on first enqueue.
func (g *guild) ensureQueue() *queue.Queue {
	if g.queue == nil {
		g.queue = queue.New()
	}
	return g.queue
}

func (g *guild) popFront() (track.Track, bool) {
	if g.queue == nil {
		return track.Track{}, false
	}
	return g.queue.PopFront()
}

func (g *guild) idle() bool {
	return g.session == nil && g.queue == nil
}
