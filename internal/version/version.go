package version

const (
	AppName        = "DJ Toad"
	AppDescription = "A croaking Discord DJ that plays YouTube Music in your voice channel"
	AppVersion     = "0.3.0"
)
