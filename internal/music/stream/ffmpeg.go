package stream

import (
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

// FFmpeg decodes a remote stream URL to PCM with the ffmpeg binary.
type FFmpeg struct {
	Path   string
	Logger zerolog.Logger
}

func (f FFmpeg) Open(url string) (io.ReadCloser, func(), error) {
	bin := f.Path
	if bin == "" {
		bin = "ffmpeg"
	}
	cmd := exec.Command(bin,
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", url,
		"-vn",
		"-f", "s16le",
		"-ar", strconv.Itoa(SampleRate),
		"-ac", strconv.Itoa(Channels),
		"-loglevel", "warning",
		"pipe:1",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			_ = cmd.Process.Kill()
			if err := cmd.Wait(); err != nil {
				f.Logger.Debug().Err(err).Msg("ffmpeg exited")
			}
		})
	}
	return stdout, cleanup, nil
}
