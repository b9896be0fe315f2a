package player

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"djtoad/internal/music/resolver"
	"djtoad/internal/music/track"
)

type fakePlayback struct {
	url    string
	onDone func(error)

	mu      sync.Mutex
	paused  bool
	stopped bool

	once  sync.Once
	fired chan struct{}
}

func (p *fakePlayback) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
}

func (p *fakePlayback) Resume() {
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()
}

// Stop behaves like the audio engine: the callback arrives later, on another
// goroutine.
func (p *fakePlayback) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
	go p.finish(nil)
}

// finish simulates the end of the track.
func (p *fakePlayback) finish(err error) {
	p.once.Do(func() {
		p.onDone(err)
		close(p.fired)
	})
}

func (p *fakePlayback) isPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func (p *fakePlayback) isStopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

type fakeConn struct {
	mu           sync.Mutex
	channelID    string
	moves        []string
	plays        []*fakePlayback
	disconnected bool
	failPlay     bool
	gone         bool
}

func (c *fakeConn) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.gone && !c.disconnected
}

// drop simulates the bot being kicked from the channel.
func (c *fakeConn) drop() {
	c.mu.Lock()
	c.gone = true
	c.mu.Unlock()
}

func (c *fakeConn) ChannelID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channelID
}

func (c *fakeConn) Move(channelID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channelID = channelID
	c.moves = append(c.moves, channelID)
	return nil
}

func (c *fakeConn) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
	return nil
}

func (c *fakeConn) Play(url string, onDone func(error)) (Playback, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failPlay {
		return nil, errors.New("ffmpeg missing")
	}
	pb := &fakePlayback{url: url, onDone: onDone, fired: make(chan struct{})}
	c.plays = append(c.plays, pb)
	return pb, nil
}

func (c *fakeConn) playCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.plays)
}

func (c *fakeConn) last() *fakePlayback {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.plays) == 0 {
		return nil
	}
	return c.plays[len(c.plays)-1]
}

func (c *fakeConn) isDisconnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnected
}

type fakeConnector struct {
	mu    sync.Mutex
	conns []*fakeConn
	err   error
}

func (f *fakeConnector) Connect(guildID, channelID string) (Conn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	c := &fakeConn{channelID: channelID}
	f.conns = append(f.conns, c)
	return c, nil
}

func (f *fakeConnector) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conns)
}

func (f *fakeConnector) conn(i int) *fakeConn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conns[i]
}

type fakeCatalog struct {
	mu      sync.Mutex
	hits    map[string]track.Track
	related map[string][]track.Track
}

func (f *fakeCatalog) Search(ctx context.Context, query string) (track.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.hits[query]
	if !ok {
		return track.Track{}, ErrNoSearchResults
	}
	return t, nil
}

func (f *fakeCatalog) Recommendations(ctx context.Context, seedID, excludeID string) []track.Track {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []track.Track
	for _, t := range f.related[seedID] {
		if t.ID != excludeID {
			out = append(out, t)
		}
	}
	return out
}

type fakeResolver struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []string
	// gates holds lookups for an id until the channel is closed.
	gates map[string]chan struct{}
}

func (f *fakeResolver) Resolve(ctx context.Context, id string) (resolver.Audio, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	gate := f.gates[id]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return resolver.Audio{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[id] {
		return resolver.Audio{}, errors.Join(ErrResolveFailed, errors.New(id+" unavailable"))
	}
	return resolver.Audio{StreamURL: "https://audio/" + id, Title: "resolved " + id}, nil
}

func (f *fakeResolver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Report(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) count(status Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Status == status {
			n++
		}
	}
	return n
}

func (r *recorder) statuses() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Status, len(r.events))
	for i, e := range r.events {
		out[i] = e.Status
	}
	return out
}

type harness struct {
	ctrl      *Controller
	connector *fakeConnector
	catalog   *fakeCatalog
	resolver  *fakeResolver
	events    *recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		connector: &fakeConnector{},
		catalog:   &fakeCatalog{hits: map[string]track.Track{}, related: map[string][]track.Track{}},
		resolver:  &fakeResolver{fail: map[string]bool{}, gates: map[string]chan struct{}{}},
		events:    &recorder{},
	}
	h.ctrl = New(Options{
		Connector: h.connector,
		Catalog:   h.catalog,
		Resolver:  h.resolver,
		Reporter:  h.events,
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := h.ctrl.Close(ctx); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return h
}

func tracks(ids ...string) []track.Track {
	out := make([]track.Track, len(ids))
	for i, id := range ids {
		out[i] = track.New(id, "Song "+id)
	}
	return out
}

func queueIDs(snap Snapshot) []string {
	out := make([]string, len(snap.Queue))
	for i, t := range snap.Queue {
		out[i] = t.ID
	}
	return out
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func (h *harness) snapshot(t *testing.T, guildID string) Snapshot {
	t.Helper()
	snap, err := h.ctrl.Snapshot(context.Background(), guildID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return snap
}

func waitFired(t *testing.T, pb *fakePlayback) {
	t.Helper()
	select {
	case <-pb.fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("callback for %s never fired", pb.url)
	}
}
