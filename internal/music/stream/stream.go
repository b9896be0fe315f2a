// Package stream pumps decoded PCM audio through an opus encoder into a
// voice connection, one Playback per track.
package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

const (
	Channels   = 2
	SampleRate = 48000
	FrameSize  = 960 // 20ms at 48kHz

	maxOpusBytes = FrameSize * Channels * 2
)

// Encoder turns one frame of interleaved PCM into an opus packet.
type Encoder interface {
	Encode(pcm []int16, frameSize, maxBytes int) ([]byte, error)
}

// Source opens a PCM stream (s16le, 48kHz, stereo) for a URL. cleanup
// releases whatever produces the stream and is safe to call once.
type Source interface {
	Open(url string) (pcm io.ReadCloser, cleanup func(), err error)
}

// Sink is the voice connection side of the pump.
type Sink interface {
	Speaking(bool) error
	OpusSend() chan<- []byte
}

// Engine starts playbacks. NewEncoder is called once per playback.
type Engine struct {
	Source     Source
	NewEncoder func() (Encoder, error)
	Logger     zerolog.Logger
}

// Start opens url and begins sending to sink on a new goroutine. onDone is
// called exactly once when the playback ends for any reason, with a nil error
// on natural end or Stop. onDone is not called when Start itself fails.
func (e *Engine) Start(sink Sink, url string, onDone func(error)) (*Playback, error) {
	enc, err := e.NewEncoder()
	if err != nil {
		return nil, fmt.Errorf("opus encoder: %w", err)
	}
	pcm, cleanup, err := e.Source.Open(url)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}

	p := &Playback{
		sink: sink,
		stop: make(chan struct{}),
		done: make(chan struct{}),
		release: sync.OnceFunc(func() {
			pcm.Close()
			if cleanup != nil {
				cleanup()
			}
		}),
	}
	p.cond = sync.NewCond(&p.mu)

	go func() {
		defer close(p.done)
		err := p.pump(pcm, enc)
		p.release()
		if serr := sink.Speaking(false); serr != nil {
			e.Logger.Debug().Err(serr).Msg("speaking off")
		}
		if onDone != nil {
			onDone(err)
		}
	}()
	return p, nil
}

// Playback is a running track. All methods are safe for concurrent use and
// idempotent.
type Playback struct {
	sink Sink

	mu      sync.Mutex
	cond    *sync.Cond
	paused  bool
	stopped bool

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
	// release closes the source; Stop calls it to unblock a pending read.
	release func()
}

func (p *Playback) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
}

func (p *Playback) Resume() {
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()
	p.cond.Broadcast()
}

// Stop ends the playback without waiting for it; use Done to wait.
func (p *Playback) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()
		close(p.stop)
		p.cond.Broadcast()
		go p.release()
	})
}

// Done is closed after the completion callback has returned.
func (p *Playback) Done() <-chan struct{} {
	return p.done
}

// waitRunnable blocks while paused and reports whether playback may go on.
func (p *Playback) waitRunnable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	wasPaused := false
	for p.paused && !p.stopped {
		if !wasPaused {
			wasPaused = true
			_ = p.sink.Speaking(false)
		}
		p.cond.Wait()
	}
	if wasPaused && !p.stopped {
		_ = p.sink.Speaking(true)
	}
	return !p.stopped
}

func (p *Playback) pump(pcm io.Reader, enc Encoder) error {
	if err := p.sink.Speaking(true); err != nil {
		return fmt.Errorf("speaking: %w", err)
	}

	raw := make([]byte, FrameSize*Channels*2)
	samples := make([]int16, FrameSize*Channels)
	out := p.sink.OpusSend()

	for {
		if !p.waitRunnable() {
			return nil
		}

		if _, err := io.ReadFull(pcm, raw); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			select {
			case <-p.stop:
				return nil
			default:
			}
			return fmt.Errorf("read pcm: %w", err)
		}

		for i := range samples {
			samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
		}

		packet, err := enc.Encode(samples, FrameSize, maxOpusBytes)
		if err != nil {
			return fmt.Errorf("encode: %w", err)
		}

		select {
		case out <- packet:
		case <-p.stop:
			return nil
		}
	}
}
