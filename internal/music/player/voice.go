package player

// Connector opens voice connections.
type Connector interface {
	Connect(guildID, channelID string) (Conn, error)
}

// Conn is one guild's voice connection.
type Conn interface {
	ChannelID() string
	// Alive is false once the connection was closed from outside (kicked,
	// dragged out, voice server lost).
	Alive() bool
	Move(channelID string) error
	Disconnect() error
	// Play starts streamURL. onDone must be called at most once, from any
	// goroutine, when the playback ends; it is never called if Play fails.
	Play(streamURL string, onDone func(error)) (Playback, error)
}

// Playback controls a running track. Stop must not block on the playback
// goroutine.
type Playback interface {
	Pause()
	Resume()
	Stop()
}
