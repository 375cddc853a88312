package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samber/mo"
	"github.com/tilawah-cli/tilawah/log"
)

// DefaultSettleDelay lets navigation (scrolling, cursor movement) finish before the next item starts.
const DefaultSettleDelay = 500 * time.Millisecond

// NavigateFunc brings the item with the given ID into view.
type NavigateFunc func(id ID)

// Playlist is a snapshot of a sequential run.
type Playlist struct {
	Items  []ID
	Index  int
	Active bool
}

// Current returns the item being played or about to be played.
func (p Playlist) Current() mo.Option[ID] {
	if !p.Active || p.Index < 0 || p.Index >= len(p.Items) {
		return mo.None[ID]()
	}
	return mo.Some(p.Items[p.Index])
}

// DriverOptions tunes a Driver. Zero values fall back to the defaults.
type DriverOptions struct {
	Clock       Clock
	SettleDelay time.Duration
	Navigate    NavigateFunc

	// OnChange is called after the playlist changed, outside of any lock.
	OnChange func(Playlist)

	// OnItemFailed is called when an item is skipped because it could not be played.
	OnItemFailed func(id ID, err error)
}

// Driver plays an ordered list of items one after another through a Coordinator.
//
// An item that fails to play is skipped after the settle delay; the run never halts on it.
// A play request for an item outside the run (a manual click) stops the run,
// and so does stopping the item the run is playing.
type Driver struct {
	coord        *Coordinator
	clock        Clock
	settle       time.Duration
	navigate     NavigateFunc
	onChange     func(Playlist)
	onItemFailed func(ID, error)

	mu     sync.Mutex
	items  []ID
	index  int
	active bool
	gen    uint64
	timer  Timer
	ctx    context.Context
	cancel context.CancelFunc

	unwatch     func()
	unsubscribe func()
}

// NewDriver creates a stopped driver bound to c.
func NewDriver(c *Coordinator, options DriverOptions) *Driver {
	d := &Driver{
		coord:        c,
		clock:        options.Clock,
		settle:       options.SettleDelay,
		navigate:     options.Navigate,
		onChange:     options.OnChange,
		onItemFailed: options.OnItemFailed,
	}

	if d.clock == nil {
		d.clock = SystemClock
	}
	if d.settle <= 0 {
		d.settle = DefaultSettleDelay
	}
	if d.navigate == nil {
		d.navigate = func(ID) {}
	}

	d.unwatch = c.Watch(d.onEvent)
	d.unsubscribe = c.Subscribe(d.onHolderChanged)
	return d
}

// Start begins a run over items, replacing any run in progress.
// The first item is navigated to and played immediately.
func (d *Driver) Start(ctx context.Context, items []ID) error {
	if len(items) == 0 {
		return ErrEmptyPlaylist
	}

	d.mu.Lock()
	d.haltLocked()
	d.gen++
	gen := d.gen
	d.items = append([]ID(nil), items...)
	d.index = 0
	d.active = true
	d.ctx, d.cancel = context.WithCancel(ctx)
	first := d.items[0]
	d.mu.Unlock()

	d.coord.SuppressReplay(true)
	log.Infof("sequential: starting run of %d items at %s", len(items), first)
	d.changed()

	d.navigate(first)
	d.playItem(gen, first)
	return nil
}

// Stop ends the run. Playback is left as it is; pausing is up to the caller.
// Pending advances never fire after Stop returns.
func (d *Driver) Stop() {
	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return
	}
	d.haltLocked()
	d.gen++
	d.active = false
	d.mu.Unlock()

	d.coord.SuppressReplay(false)
	log.Info("sequential: stopped")
	d.changed()
}

// Running reports whether a run is active.
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Playlist returns a snapshot of the current run.
func (d *Driver) Playlist() Playlist {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playlistLocked()
}

// Close stops the run and detaches the driver from its coordinator.
func (d *Driver) Close() {
	d.Stop()
	d.unwatch()
	d.unsubscribe()
}

func (d *Driver) onEvent(event Event) {
	d.mu.Lock()
	if !d.active || d.items[d.index] != event.ID {
		d.mu.Unlock()
		return
	}
	gen := d.gen
	d.mu.Unlock()

	if event.Kind == EventStopped {
		log.Infof("sequential: %s was stopped manually", event.ID)
		d.Stop()
		return
	}
	if event.Kind == EventFailed {
		d.reportFailure(event.ID, event.Err)
	}
	d.advance(gen)
}

func (d *Driver) onHolderChanged(holder ID) {
	if holder == None {
		return
	}

	d.mu.Lock()
	if !d.active || d.items[d.index] == holder {
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	log.Infof("sequential: %s was started manually", holder)
	d.Stop()
}

// advance moves to the next item, or completes the run after the last one.
func (d *Driver) advance(gen uint64) {
	d.mu.Lock()
	if d.gen != gen || !d.active {
		d.mu.Unlock()
		return
	}

	if d.index+1 >= len(d.items) {
		d.haltLocked()
		d.gen++
		d.active = false
		d.index = 0
		d.mu.Unlock()

		d.coord.SuppressReplay(false)
		log.Info("sequential: completed")
		d.changed()
		return
	}

	d.index++
	next := d.items[d.index]
	d.mu.Unlock()

	d.changed()
	d.navigate(next)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gen != gen || !d.active {
		return
	}
	d.stopTimerLocked()
	d.timer = d.clock.AfterFunc(d.settle, func() {
		d.fire(gen, next)
	})
}

// fire runs when the settle delay elapsed. Stale generations are ignored.
func (d *Driver) fire(gen uint64, id ID) {
	d.mu.Lock()
	if d.gen != gen || !d.active {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.playItem(gen, id)
}

func (d *Driver) playItem(gen uint64, id ID) {
	d.mu.Lock()
	if d.gen != gen || !d.active {
		d.mu.Unlock()
		return
	}
	ctx := d.ctx
	d.mu.Unlock()

	handle, ok := d.coord.Lookup(id).Get()
	if !ok {
		d.skip(gen, id, fmt.Errorf("%w for %s", ErrNoSource, id))
		return
	}

	// Failures are published by the adapter and picked up by onEvent.
	if err := handle.Play(ctx); err != nil {
		if errors.Is(err, ErrClosed) {
			d.skip(gen, id, err)
			return
		}
		log.Debugf("sequential: %s: %v", id, err)
	}
}

// skip reports id as failed and advances as if it had ended.
func (d *Driver) skip(gen uint64, id ID, err error) {
	log.Warnf("sequential: skipping %s: %v", id, err)
	d.reportFailure(id, err)
	d.advance(gen)
}

func (d *Driver) reportFailure(id ID, err error) {
	if d.onItemFailed != nil {
		d.onItemFailed(id, err)
	}
}

// haltLocked stops the pending timer and cancels the run context. Callers hold d.mu.
func (d *Driver) haltLocked() {
	d.stopTimerLocked()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

func (d *Driver) stopTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Driver) playlistLocked() Playlist {
	return Playlist{
		Items:  append([]ID(nil), d.items...),
		Index:  d.index,
		Active: d.active,
	}
}

func (d *Driver) changed() {
	if d.onChange != nil {
		d.onChange(d.Playlist())
	}
}
