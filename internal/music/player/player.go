// Package player runs one playback state machine per guild: voice presence,
// the pending queue, and the hand-off from a finished track to the next one.
//
// Every mutation of a guild's queue or session happens on that guild's
// executor goroutine. Public methods either post a task and wait for it, or
// do slow network work (search, resolution) first and post the result.
package player

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"djtoad/internal/music/queue"
	"djtoad/internal/music/resolver"
	"djtoad/internal/music/track"

	"github.com/rs/zerolog"
)

const DefaultMaxAdvanceAttempts = 3

// Catalog finds songs and related songs.
type Catalog interface {
	Search(ctx context.Context, query string) (track.Track, error)
	Recommendations(ctx context.Context, seedID, excludeID string) []track.Track
}

// Resolver turns a track id into a playable stream URL.
type Resolver interface {
	Resolve(ctx context.Context, trackID string) (resolver.Audio, error)
}

type Options struct {
	Connector Connector
	Catalog   Catalog
	Resolver  Resolver
	Reporter  Reporter
	// MaxAdvanceAttempts bounds consecutive resolution failures while
	// advancing the queue.
	MaxAdvanceAttempts int
	Logger             zerolog.Logger
}

// Request identifies who asked for something and where to answer.
type Request struct {
	GuildID string
	// VoiceChannelID is the requester's current voice channel, empty when
	// the requester is not in voice.
	VoiceChannelID string
	// ChannelID is the text channel the command came from.
	ChannelID string
	Query     string
}

type Controller struct {
	connector   Connector
	catalog     Catalog
	resolver    Resolver
	reporter    Reporter
	maxAttempts int
	log         zerolog.Logger

	// ctx bounds work done on executors; cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	guilds map[string]*guild
	// parked holds the queues of guilds whose executor retired without a
	// voice session.
	parked map[string]*queue.Queue
	closed bool
	wg     sync.WaitGroup
}

func New(opts Options) *Controller {
	if opts.MaxAdvanceAttempts <= 0 {
		opts.MaxAdvanceAttempts = DefaultMaxAdvanceAttempts
	}
	if opts.Reporter == nil {
		opts.Reporter = ReporterFunc(func(Event) {})
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		connector:   opts.Connector,
		catalog:     opts.Catalog,
		resolver:    opts.Resolver,
		reporter:    opts.Reporter,
		maxAttempts: opts.MaxAdvanceAttempts,
		log:         opts.Logger.With().Str("component", "player").Logger(),
		ctx:         ctx,
		cancel:      cancel,
		guilds:      make(map[string]*guild),
		parked:      make(map[string]*queue.Queue),
	}
}

// do runs fn on the guild executor and waits for its result.
func (c *Controller) do(ctx context.Context, guildID string, fn func(g *guild) error) error {
	errCh := make(chan error, 1)
	ok := c.submit(guildID, func(g *guild) {
		err := errTaskPanicked
		defer func() { errCh <- err }()
		err = fn(g)
	})
	if !ok {
		return ErrClosed
	}
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) report(e Event) {
	c.reporter.Report(e)
}

// reportTo sends e to the session's report channel.
func (c *Controller) reportTo(g *guild, e Event) {
	e.GuildID = g.id
	if g.session != nil && e.ChannelID == "" {
		e.ChannelID = g.session.channelID
	}
	c.report(e)
}

// Join puts the bot in voiceChannelID, moving an existing connection when it
// sits elsewhere.
func (c *Controller) Join(ctx context.Context, guildID, voiceChannelID string) error {
	return c.do(ctx, guildID, func(g *guild) error {
		return c.join(g, voiceChannelID, "")
	})
}

func (c *Controller) join(g *guild, voiceChannelID, reportChannelID string) error {
	if voiceChannelID == "" {
		return ErrNotInVoiceChannel
	}

	if s := g.session; s != nil && !s.conn.Alive() {
		c.log.Info().Str("guild", g.id).Msg("voice connection lost, reconnecting")
		c.dropSession(g)
	}
	if s := g.session; s != nil {
		if reportChannelID != "" {
			s.channelID = reportChannelID
		}
		if s.conn.ChannelID() == voiceChannelID {
			return nil
		}
		if err := s.conn.Move(voiceChannelID); err != nil {
			return fmt.Errorf("move to voice channel %s: %w", voiceChannelID, err)
		}
		c.log.Info().Str("guild", g.id).Str("channel", voiceChannelID).Msg("moved voice connection")
		return nil
	}

	s := &session{state: StateConnecting, channelID: reportChannelID}
	g.session = s
	conn, err := c.connector.Connect(g.id, voiceChannelID)
	if err != nil {
		g.session = nil
		return fmt.Errorf("join voice channel %s: %w", voiceChannelID, err)
	}
	s.conn = conn
	s.state = StateStopped
	c.log.Info().Str("guild", g.id).Str("channel", voiceChannelID).Msg("joined voice channel")
	return nil
}

// playNow replaces whatever is playing with t. Must run on the executor.
func (c *Controller) playNow(g *guild, t track.Track, audio resolver.Audio) error {
	s := g.session
	if s == nil {
		return ErrNotConnected
	}
	c.halt(s)

	gen := s.gen
	var once sync.Once
	pb, err := s.conn.Play(audio.StreamURL, func(err error) {
		once.Do(func() { c.trackFinished(g.id, s, gen, err) })
	})
	if err != nil {
		s.state = StateStopped
		return fmt.Errorf("start %q: %w", t.Title, err)
	}

	s.playback = pb
	s.current = t
	s.state = StatePlaying
	c.log.Info().Str("guild", g.id).Str("track", t.ID).Str("title", t.Title).Msg("now playing")
	c.reportTo(g, Event{Status: StatusPlaying, Track: t})
	return nil
}

// halt stops the live playback and invalidates its callback.
func (c *Controller) halt(s *session) {
	s.gen++
	if s.playback == nil {
		return
	}
	pb := s.playback
	s.playback = nil
	s.current = track.Track{}
	pb.Stop()
}

// trackFinished runs on the audio engine's goroutine. It only posts work.
func (c *Controller) trackFinished(guildID string, s *session, gen uint64, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Str("guild", guildID).Interface("panic", r).Msg("completion callback panicked")
		}
	}()
	if err != nil {
		c.log.Warn().Err(err).Str("guild", guildID).Msg("playback ended with error")
	}
	c.submit(guildID, func(g *guild) {
		if g.session != s || s.gen != gen {
			return
		}
		s.playback = nil
		s.current = track.Track{}
		c.advance(g)
	})
}

// AdvanceQueue plays the next queued track, disconnecting when the queue is
// exhausted. Without a session it does nothing. It returns once the lookup
// has started; the track starts playing later.
func (c *Controller) AdvanceQueue(ctx context.Context, guildID string) error {
	return c.do(ctx, guildID, func(g *guild) error {
		c.advance(g)
		return nil
	})
}

func (c *Controller) advance(g *guild) {
	s := g.session
	if s == nil {
		return
	}
	c.halt(s)
	s.state = StateAdvancing
	c.resolveNext(g, s, 0)
}

// resolveNext pops the next track and looks it up on its own goroutine so the
// executor keeps serving commands meanwhile. The result is applied only while
// s is still the guild's session, still advancing, and no playback started in
// between; otherwise the popped track is dropped.
func (c *Controller) resolveNext(g *guild, s *session, attempt int) {
	if attempt >= c.maxAttempts {
		s.state = StateStopped
		if g.queue != nil && g.queue.Len() == 0 {
			g.queue = nil
		}
		c.log.Warn().Str("guild", g.id).Int("attempts", attempt).Msg("giving up on queue")
		c.reportTo(g, Event{Status: StatusAdvanceFailed, Err: ErrAdvanceFailed})
		return
	}
	if c.ctx.Err() != nil {
		return
	}
	next, ok := g.popFront()
	if !ok {
		c.reportTo(g, Event{Status: StatusQueueEmpty})
		c.teardown(g)
		return
	}

	gen := s.gen
	// the executor is running this task, so the wait group is above zero
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		audio, err := c.resolver.Resolve(c.ctx, next.ID)
		c.submit(g.id, func(g *guild) {
			if g.session != s || s.gen != gen || s.state != StateAdvancing {
				c.log.Debug().Str("guild", g.id).Str("track", next.ID).Msg("dropping superseded lookup")
				return
			}
			if err == nil {
				if next.Title == track.UntitledTitle && audio.Title != "" {
					next.Title = audio.Title
				}
				if err = c.playNow(g, next, audio); err == nil {
					return
				}
				s.state = StateAdvancing
			}
			c.log.Warn().Err(err).Str("guild", g.id).Str("track", next.ID).Int("attempt", attempt+1).Msg("skipping unplayable track")
			c.reportTo(g, Event{Status: StatusResolveFailed, Track: next, Err: err})
			c.resolveNext(g, s, attempt+1)
		})
	}()
}

// dropSession stops playback and leaves voice, keeping the queue.
func (c *Controller) dropSession(g *guild) {
	s := g.session
	if s == nil {
		return
	}
	c.halt(s)
	if err := s.conn.Disconnect(); err != nil {
		c.log.Warn().Err(err).Str("guild", g.id).Msg("voice disconnect failed")
	}
	c.log.Info().Str("guild", g.id).Msg("left voice channel")
	g.session = nil
}

// teardown stops playback, leaves voice and forgets the guild's state.
func (c *Controller) teardown(g *guild) {
	c.dropSession(g)
	g.queue = nil
}

// Disconnected tells the player that the guild's voice connection was closed
// from outside. The session and queue are dropped as if stopped. It never
// blocks, so gateway handlers may call it.
func (c *Controller) Disconnected(guildID string) {
	c.submit(guildID, func(g *guild) {
		s := g.session
		if s == nil || s.conn.Alive() {
			return
		}
		c.log.Info().Str("guild", g.id).Msg("voice connection closed remotely")
		c.reportTo(g, Event{Status: StatusDisconnected})
		c.teardown(g)
	})
}

// Play joins the requester's channel, plays the first search hit for
// req.Query right away and replaces the queue with recommendations seeded by
// it.
func (c *Controller) Play(ctx context.Context, req Request) (track.Track, error) {
	if err := c.do(ctx, req.GuildID, func(g *guild) error {
		return c.join(g, req.VoiceChannelID, req.ChannelID)
	}); err != nil {
		return track.Track{}, err
	}

	c.report(Event{GuildID: req.GuildID, ChannelID: req.ChannelID, Status: StatusSearching, Query: req.Query})
	seed, err := c.catalog.Search(ctx, req.Query)
	if err != nil {
		return track.Track{}, err
	}

	audio, err := c.resolver.Resolve(ctx, seed.ID)
	if err != nil {
		return seed, err
	}
	if seed.Title == track.UntitledTitle && audio.Title != "" {
		seed.Title = audio.Title
	}

	// the session may have been stopped or moved while searching
	if err := c.do(ctx, req.GuildID, func(g *guild) error {
		if err := c.join(g, req.VoiceChannelID, req.ChannelID); err != nil {
			return err
		}
		return c.playNow(g, seed, audio)
	}); err != nil {
		return seed, err
	}

	c.report(Event{GuildID: req.GuildID, ChannelID: req.ChannelID, Status: StatusFetchingRecs, Track: seed})
	recs := c.catalog.Recommendations(ctx, seed.ID, seed.ID)

	var loaded int
	err = c.do(ctx, req.GuildID, func(g *guild) error {
		if g.session == nil {
			return nil
		}
		g.ensureQueue().ReplaceAll(recs)
		loaded = len(recs)
		return nil
	})
	if err != nil {
		return seed, err
	}
	c.report(Event{GuildID: req.GuildID, ChannelID: req.ChannelID, Status: StatusQueueLoaded, Track: seed, Count: loaded})
	return seed, nil
}

// Add searches req.Query and puts the first hit at the head of the queue.
// It does not touch the current playback and does not need voice presence.
func (c *Controller) Add(ctx context.Context, req Request) (track.Track, error) {
	c.report(Event{GuildID: req.GuildID, ChannelID: req.ChannelID, Status: StatusSearchingAdd, Query: req.Query})
	t, err := c.catalog.Search(ctx, req.Query)
	if err != nil {
		return track.Track{}, err
	}
	if err := c.AddFront(ctx, req.GuildID, t); err != nil {
		return t, err
	}
	c.report(Event{GuildID: req.GuildID, ChannelID: req.ChannelID, Status: StatusAdded, Track: t})
	return t, nil
}

// AddFront inserts t at the head of the guild's queue.
func (c *Controller) AddFront(ctx context.Context, guildID string, t track.Track) error {
	return c.do(ctx, guildID, func(g *guild) error {
		g.ensureQueue().PushFront(t)
		return nil
	})
}

// Skip stops the current track; its completion advances the queue.
func (c *Controller) Skip(ctx context.Context, guildID, channelID string) error {
	return c.do(ctx, guildID, func(g *guild) error {
		s := g.session
		if s == nil || s.playback == nil || (s.state != StatePlaying && s.state != StatePaused) {
			return ErrNothingPlaying
		}
		s.state = StateAdvancing
		s.playback.Stop()
		c.report(Event{GuildID: g.id, ChannelID: channelID, Status: StatusSkipped, Track: s.current})
		return nil
	})
}

func (c *Controller) Pause(ctx context.Context, guildID, channelID string) error {
	return c.do(ctx, guildID, func(g *guild) error {
		s := g.session
		if s == nil || s.state != StatePlaying || s.playback == nil {
			return ErrNothingPlaying
		}
		s.playback.Pause()
		s.state = StatePaused
		c.report(Event{GuildID: g.id, ChannelID: channelID, Status: StatusPaused, Track: s.current})
		return nil
	})
}

func (c *Controller) Resume(ctx context.Context, guildID, channelID string) error {
	return c.do(ctx, guildID, func(g *guild) error {
		s := g.session
		if s == nil || s.state != StatePaused || s.playback == nil {
			return ErrNothingPaused
		}
		s.playback.Resume()
		s.state = StatePlaying
		c.report(Event{GuildID: g.id, ChannelID: channelID, Status: StatusResumed, Track: s.current})
		return nil
	})
}

// Stop ends playback, leaves voice and drops the queue.
func (c *Controller) Stop(ctx context.Context, guildID, channelID string) error {
	return c.do(ctx, guildID, func(g *guild) error {
		if g.idle() {
			return ErrNotConnected
		}
		c.teardown(g)
		c.report(Event{GuildID: g.id, ChannelID: channelID, Status: StatusStopped})
		return nil
	})
}

func (c *Controller) Snapshot(ctx context.Context, guildID string) (Snapshot, error) {
	var snap Snapshot
	err := c.do(ctx, guildID, func(g *guild) error {
		snap = g.snapshot()
		return nil
	})
	return snap, err
}

// Close tears down every guild and waits for the executors to exit.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.cancel()
	clear(c.parked)
	for _, g := range c.guilds {
		g.push(func(g *guild) { c.teardown(g) })
	}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("player executors still running"), ctx.Err())
	}
}
