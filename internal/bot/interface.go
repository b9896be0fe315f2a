// Package bot holds the small contracts commands need from the running bot,
// so command packages do not import the Discord session wiring.
package bot

import "errors"

var ErrNotInVoice = errors.New("user not in any voice channel")

type VoiceState struct {
	ChannelID string
	UserID    string
}

// BotVoice reports where guild members are connected to voice.
type BotVoice interface {
	// FindUserVoiceState returns ErrNotInVoice when the user is not in a
	// voice channel of the guild.
	FindUserVoiceState(guildID, userID string) (*VoiceState, error)
}
