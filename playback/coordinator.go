package playback

import (
	"fmt"
	"sync"

	"github.com/samber/mo"
	"github.com/tilawah-cli/tilawah/log"
)

// EventKind classifies an item outcome published through the Coordinator.
type EventKind int

const (
	// EventEnded means the item reached the natural end of its source.
	EventEnded EventKind = iota + 1

	// EventFailed means the item could not be played.
	EventFailed

	// EventStopped means the item was silenced by the user before it ended.
	EventStopped
)

func (k EventKind) String() string {
	switch k {
	case EventEnded:
		return "ended"
	case EventFailed:
		return "failed"
	case EventStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Event reports the outcome of an item's playback.
type Event struct {
	ID   ID
	Kind EventKind
	Err  error
}

// Coordinator is the single source of truth for which item may currently be audible.
//
// It never calls out while holding its own lock, so subscribers are free to call back into it.
type Coordinator struct {
	mu       sync.Mutex
	current  ID
	seq      uint64
	subs     map[uint64]func(ID)
	watchers map[uint64]func(Event)
	handles  map[ID]Handle
	noReplay bool
}

// NewCoordinator creates a coordinator with no holder. One is created per page.
func NewCoordinator() *Coordinator {
	return &Coordinator{
		subs:     make(map[uint64]func(ID)),
		watchers: make(map[uint64]func(Event)),
		handles:  make(map[ID]Handle),
	}
}

// RequestPlay makes id the holder. It is always granted.
// Subscribers are notified synchronously, so the previous holder has paused by the time it returns.
func (c *Coordinator) RequestPlay(id ID) {
	c.mu.Lock()
	if c.current == id {
		c.mu.Unlock()
		return
	}
	c.current = id
	subs := c.subscribers()
	c.mu.Unlock()

	log.Debugf("playback: %s holds the slot", id)
	for _, fn := range subs {
		fn(id)
	}
}

// Release clears the holder if it is still id. Stale releases are ignored.
func (c *Coordinator) Release(id ID) {
	c.mu.Lock()
	if id == None || c.current != id {
		c.mu.Unlock()
		return
	}
	c.current = None
	subs := c.subscribers()
	c.mu.Unlock()

	log.Debugf("playback: %s released the slot", id)
	for _, fn := range subs {
		fn(None)
	}
}

// Current returns the holder, or None.
func (c *Coordinator) Current() ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Holds reports whether id is the holder.
func (c *Coordinator) Holds(id ID) bool {
	return id != None && c.Current() == id
}

// Subscribe registers fn to be called with the new holder on every change.
func (c *Coordinator) Subscribe(fn func(holder ID)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	token := c.seq
	c.subs[token] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, token)
	}
}

// Watch registers fn to receive item outcome events.
func (c *Coordinator) Watch(fn func(Event)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	token := c.seq
	c.watchers[token] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.watchers, token)
	}
}

// Publish delivers an outcome event to every watcher.
func (c *Coordinator) Publish(event Event) {
	c.mu.Lock()
	watchers := make([]func(Event), 0, len(c.watchers))
	for _, fn := range c.watchers {
		watchers = append(watchers, fn)
	}
	c.mu.Unlock()

	for _, fn := range watchers {
		fn(event)
	}
}

// Register adds h to the registry so it can be found by ID.
func (c *Coordinator) Register(h Handle) (unregister func(), err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := h.ID()
	if _, exists := c.handles[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	c.handles[id] = h

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.handles[id] == h {
			delete(c.handles, id)
		}
	}, nil
}

// Lookup finds a registered handle by ID.
func (c *Coordinator) Lookup(id ID) mo.Option[Handle] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := c.handles[id]; ok {
		return mo.Some(h)
	}
	return mo.None[Handle]()
}

// SuppressReplay disables replay-on-end for every adapter while set.
// Sequential playback sets it for the duration of a run.
func (c *Coordinator) SuppressReplay(suppress bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.noReplay = suppress
}

// ReplaySuppressed reports whether replay-on-end is currently disabled.
func (c *Coordinator) ReplaySuppressed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.noReplay
}

// subscribers returns a snapshot of the subscriber callbacks. Callers hold c.mu.
func (c *Coordinator) subscribers() []func(ID) {
	subs := make([]func(ID), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	return subs
}
