package player

import (
	"sync"

	"djtoad/internal/music/queue"
)

type task func(g *guild)

// guild is the serialized executor for one guild. Tasks run one at a time,
// in submission order, on the executor goroutine; queue and session are
// owned by that goroutine.
type guild struct {
	id string

	mu    sync.Mutex
	tasks []task
	wake  chan struct{}

	queue   *queue.Queue
	session *session
}

func newGuild(id string) *guild {
	return &guild{id: id, wake: make(chan struct{}, 1)}
}

// push appends t to the mailbox without blocking.
func (g *guild) push(t task) {
	g.mu.Lock()
	g.tasks = append(g.tasks, t)
	g.mu.Unlock()

	select {
	case g.wake <- struct{}{}:
	default:
	}
}

func (g *guild) pop() (task, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.tasks) == 0 {
		return nil, false
	}
	t := g.tasks[0]
	g.tasks[0] = nil
	g.tasks = g.tasks[1:]
	return t, true
}

func (g *guild) pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tasks)
}

// submit posts t to the guild's executor, starting one if needed. It never
// blocks and is safe to call from any goroutine, including audio callbacks.
func (c *Controller) submit(guildID string, t task) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	g, ok := c.guilds[guildID]
	if !ok {
		g = newGuild(guildID)
		if q, parked := c.parked[guildID]; parked {
			g.queue = q
			delete(c.parked, guildID)
		}
		c.guilds[guildID] = g
		c.wg.Add(1)
		go c.runGuild(g)
	}
	g.push(t)
	return true
}

func (c *Controller) runGuild(g *guild) {
	defer c.wg.Done()
	log := c.log.With().Str("guild", g.id).Logger()
	log.Debug().Msg("executor started")

	for {
		t, ok := g.pop()
		if !ok {
			if c.retire(g) {
				log.Debug().Msg("executor retired")
				return
			}
			<-g.wake
			continue
		}
		c.runTask(g, t)
	}
}

// retire removes a guild without a voice session from the registry, parking
// its queue until the next task for the guild. The registry lock orders it
// against submit, so a task pushed concurrently is either seen here or lands
// on a fresh executor that picks the queue up again.
func (c *Controller) retire(g *guild) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g.session != nil || g.pending() > 0 {
		return false
	}
	if c.guilds[g.id] == g {
		delete(c.guilds, g.id)
		if g.queue != nil && g.queue.Len() > 0 && !c.closed {
			c.parked[g.id] = g.queue
		}
	}
	g.queue = nil
	return true
}

func (c *Controller) runTask(g *guild, t task) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Str("guild", g.id).Interface("panic", r).Msg("player task panicked")
		}
	}()
	t(g)
}
