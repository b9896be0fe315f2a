package resolver

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultWorkers = 4
	DefaultTimeout = 30 * time.Second
)

// ErrPoolClosed is wrapped into ErrResolveFailed for calls made after Close.
var ErrPoolClosed = errors.New("resolver pool closed")

type job struct {
	ctx     context.Context
	trackID string
	result  chan<- result
}

type result struct {
	audio Audio
	err   error
}

// Pool runs a Resolver on a fixed number of worker goroutines so slow
// extractions never run on the caller's goroutine and never pile up
// unbounded.
type Pool struct {
	backend Resolver
	timeout time.Duration
	jobs    chan job
	quit    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	log     zerolog.Logger
}

func NewPool(backend Resolver, workers int, timeout time.Duration, log zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	p := &Pool{
		backend: backend,
		timeout: timeout,
		jobs:    make(chan job),
		quit:    make(chan struct{}),
		log:     log.With().Str("component", "resolver-pool").Logger(),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	return p
}

// Resolve hands trackID to a worker and waits for the outcome. Every error
// matches ErrResolveFailed.
func (p *Pool) Resolve(ctx context.Context, trackID string) (Audio, error) {
	out := make(chan result, 1)
	select {
	case p.jobs <- job{ctx: ctx, trackID: trackID, result: out}:
	case <-ctx.Done():
		return Audio{}, failed(trackID, ctx.Err())
	case <-p.quit:
		return Audio{}, failed(trackID, ErrPoolClosed)
	}

	select {
	case r := <-out:
		return r.audio, r.err
	case <-ctx.Done():
		return Audio{}, failed(trackID, ctx.Err())
	}
}

// Close stops the workers after in-flight lookups finish.
func (p *Pool) Close() {
	p.once.Do(func() { close(p.quit) })
	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case j := <-p.jobs:
			j.result <- p.run(id, j)
		}
	}
}

func (p *Pool) run(id int, j job) (r result) {
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error().Interface("panic", rec).Str("track", j.trackID).Msg("resolver panicked")
			r = result{err: failed(j.trackID, errors.New("resolver panicked"))}
		}
	}()

	ctx, cancel := context.WithTimeout(j.ctx, p.timeout)
	defer cancel()

	start := time.Now()
	audio, err := p.backend.Resolve(ctx, j.trackID)
	if err != nil {
		p.log.Debug().Err(err).Int("worker", id).Str("track", j.trackID).Dur("took", time.Since(start)).Msg("resolve failed")
		return result{err: failed(j.trackID, err)}
	}
	p.log.Debug().Int("worker", id).Str("track", j.trackID).Dur("took", time.Since(start)).Msg("resolve done")
	return result{audio: audio}
}
