package resolver

import (
	"context"
	"errors"
	"net/http"
	"time"

	youtube "github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog"
)

const kkdaiTimeout = 15 * time.Second

// KKDAI resolves with the pure-Go kkdai/youtube client.
type KKDAI struct {
	client *youtube.Client
}

// NewKKDAI builds the client, routing it through proxyStr when set. An
// unusable proxy is logged and the client goes direct.
func NewKKDAI(proxyStr string, log zerolog.Logger) *KKDAI {
	httpClient := &http.Client{Timeout: kkdaiTimeout}
	if proxyStr != "" {
		transport, err := proxyTransport(proxyStr)
		if err != nil {
			log.Warn().Err(err).Msg("kkdai proxy unusable, going direct")
		} else {
			log.Info().Str("proxy", redactProxy(proxyStr)).Msg("kkdai using proxy")
			httpClient.Transport = transport
		}
	}
	return &KKDAI{client: &youtube.Client{HTTPClient: httpClient}}
}

func (KKDAI) Name() string { return "kkdai" }

func (k *KKDAI) Resolve(ctx context.Context, trackID string) (Audio, error) {
	video, err := k.client.GetVideoContext(ctx, trackID)
	if err != nil {
		return Audio{}, err
	}

	formats := video.Formats.Type("audio")
	if len(formats) == 0 {
		formats = video.Formats.WithAudioChannels()
	}
	if len(formats) == 0 {
		return Audio{}, errors.New("no audio formats")
	}
	formats.Sort()

	url, err := k.client.GetStreamURLContext(ctx, video, &formats[0])
	if err != nil {
		return Audio{}, err
	}
	return Audio{StreamURL: url, Title: video.Title}, nil
}
